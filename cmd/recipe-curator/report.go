// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/recipe-curator/internal/report"
	"github.com/pdiddy/recipe-curator/pkg/types"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show daily reports and build weekly summaries",
}

var reportShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the saved daily report for a date",
	RunE: func(cmd *cobra.Command, args []string) error {
		dateFlag, _ := cmd.Flags().GetString("date")
		date, err := parseDate(dateFlag)
		if err != nil {
			return err
		}
		r, err := report.NewStore(cfg.Reports.Dir).LoadDaily(date.Format(types.DateLayout))
		if err != nil {
			return err
		}
		report.FormatDaily(os.Stdout, r)
		return nil
	},
}

var reportWeeklyCmd = &cobra.Command{
	Use:   "weekly",
	Short: "Roll the seven daily reports ending on --as-of into a weekly summary",
	Long: `Weekly loads the daily reports for the seven days ending on --as-of
(default today), aggregates them, prints the summary, and saves it under
reports/weekly/<as-of>.yaml. Days without a report are skipped.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		asOfFlag, _ := cmd.Flags().GetString("as-of")
		asOf, err := parseDate(asOfFlag)
		if err != nil {
			return err
		}
		w, path, err := report.NewStore(cfg.Reports.Dir).BuildWeekly(asOf, cfg.Campaign.DailyQuota)
		if err != nil {
			return err
		}
		report.FormatWeekly(os.Stdout, w)
		fmt.Printf("\nSaved %s\n", path)
		return nil
	},
}

func init() {
	reportShowCmd.Flags().String("date", "", "report date, YYYY-MM-DD (default today)")
	reportWeeklyCmd.Flags().String("as-of", "", "last day of the week, YYYY-MM-DD (default today)")

	reportCmd.AddCommand(reportShowCmd)
	reportCmd.AddCommand(reportWeeklyCmd)
	rootCmd.AddCommand(reportCmd)
}
