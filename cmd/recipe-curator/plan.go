// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/recipe-curator/internal/campaign"
	"github.com/pdiddy/recipe-curator/internal/strategy"
	"github.com/pdiddy/recipe-curator/pkg/types"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show the strategies scheduled for a campaign day",
	Long: `Plan resolves the campaign day, phase, and strategies for --date
without calling the recipe source. The remaining quota accounts for the
recipes the campaign imported before that date.`,
	RunE: runPlan,
}

func runPlan(cmd *cobra.Command, args []string) error {
	dateFlag, _ := cmd.Flags().GetString("date")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	savePath, _ := cmd.Flags().GetString("save")

	c, err := configuredCampaign()
	if err != nil {
		return err
	}
	date, err := parseDate(dateFlag)
	if err != nil {
		return err
	}
	catalog, err := newCatalog()
	if err != nil {
		return err
	}
	lib, err := openLibrary()
	if err != nil {
		return err
	}
	defer lib.Close()
	progress, closeProgress, err := openProgress(lib)
	if err != nil {
		return err
	}
	defer closeProgress()

	before, err := campaign.ImportedBefore(context.Background(), progress, c.ID(), date)
	if err != nil {
		return err
	}
	plan, err := campaign.NewScheduler(catalog).PlanFor(c, date, before)
	if err != nil {
		return err
	}

	if savePath != "" {
		if err := strategy.WriteFile(savePath, plan); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Saved plan to %s\n", savePath)
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(plan)
	}
	formatPlan(os.Stdout, plan, before, c.Target())
	return nil
}

func formatPlan(w io.Writer, p types.Plan, importedBefore, target int) {
	fmt.Fprintf(w, "Date:       %s (day %d, weekday %d)\n", p.Date.Format(types.DateLayout), p.DayIndex, p.DayOfWeek)
	fmt.Fprintf(w, "Phase:      %s\n", p.Phase)
	fmt.Fprintf(w, "Progress:   %d of %d imported\n", importedBefore, target)
	fmt.Fprintf(w, "Quota:      %d\n\n", p.RemainingQuotaForDay)

	if len(p.Strategies) == 0 {
		fmt.Fprintln(w, "No strategies: campaign target reached.")
		return
	}
	fmt.Fprintf(w, "%-22s  %-9s  %6s  %-24s  %-12s  %s\n",
		"Strategy", "Category", "Target", "Keyword", "Diet", "Carbs")
	fmt.Fprintln(w, strings.Repeat("-", 92))
	for _, s := range p.Strategies {
		f := s.Filters
		fmt.Fprintf(w, "%-22s  %-9s  %6d  %-24s  %-12s  %.0f-%.0fg\n",
			s.Name, s.Category, s.TargetCount, f.Keyword, f.Diet, f.MinCarbs, f.MaxCarbs)
	}
	fmt.Fprintf(w, "\n%d strategies, %d candidates\n", len(p.Strategies), p.TargetTotal())
}

func init() {
	planCmd.Flags().String("date", "", "campaign date to plan, YYYY-MM-DD (default today)")
	planCmd.Flags().Bool("json", false, "output the plan as JSON")
	planCmd.Flags().String("save", "", "also write the strategies to this YAML file for import --strategies-file")

	rootCmd.AddCommand(planCmd)
}
