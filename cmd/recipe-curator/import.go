// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/recipe-curator/internal/campaign"
	"github.com/pdiddy/recipe-curator/internal/pipeline"
	"github.com/pdiddy/recipe-curator/internal/report"
	"github.com/pdiddy/recipe-curator/internal/source"
	"github.com/pdiddy/recipe-curator/internal/strategy"
	"github.com/pdiddy/recipe-curator/pkg/types"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Run the scheduled import for a campaign day",
	Long: `Import plans the strategies for --date (default today), pulls candidates
from the recipe source, and stores every accepted recipe in the library.
The daily report is printed and saved under reports/daily/.

Use --category to replace the scheduled strategies with one ad hoc
strategy, or --strategies-file to replay a file written by plan --save.
Re-running a day never imports the same recipe twice.`,
	RunE: runImport,
}

func runImport(cmd *cobra.Command, args []string) error {
	dateFlag, _ := cmd.Flags().GetString("date")
	metricsAddr, _ := cmd.Flags().GetString("metrics-addr")

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
	override, err := overrideFromFlags(cmd, c, catalog)
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

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := pipeline.NewMetrics(reg)
	if metricsAddr != "" {
		stop := serveMetrics(metricsAddr, reg)
		defer stop()
	}

	orch := pipeline.NewOrchestrator(source.NewSpoonacular(cfg.Source), lib, pipeline.Options{
		Guidelines:      cfg.Guidelines,
		MinQualityScore: cfg.Import.MinQualityScore,
		MaxRetries:      cfg.Import.MaxRetries,
		RetryBaseDelay:  cfg.Import.RetryBaseDelay,
		RateLimitDelay:  cfg.Import.RateLimitDelay,
		Metrics:         metrics,
		Logger:          logger,
	})
	importer := &pipeline.Importer{
		Orchestrator: orch,
		Scheduler:    campaign.NewScheduler(catalog),
		Progress:     progress,
		Reports:      report.NewStore(cfg.Reports.Dir),
		Logger:       logger,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	rep, err := importer.RunDay(ctx, c, date, override)
	if errors.Is(err, types.ErrOutOfCampaignRange) {
		fmt.Printf("%s is outside the campaign (%s, %d days); nothing to import.\n",
			date.Format(types.DateLayout), c.StartDate.Format(types.DateLayout), c.TotalDays)
		return nil
	}
	if rep.Date != "" {
		report.FormatDaily(os.Stdout, rep)
	}
	return err
}

// overrideFromFlags builds the explicit strategies requested with
// --strategies-file or --category.
func overrideFromFlags(cmd *cobra.Command, c types.Campaign, catalog *strategy.Catalog) ([]types.ImportStrategy, error) {
	file, _ := cmd.Flags().GetString("strategies-file")
	categoryFlag, _ := cmd.Flags().GetString("category")
	switch {
	case file != "" && categoryFlag != "":
		return nil, fmt.Errorf("--strategies-file and --category are mutually exclusive")
	case file != "":
		return catalog.LoadFile(file)
	case categoryFlag == "":
		return nil, nil
	}
	category, err := types.ParseCategory(categoryFlag)
	if err != nil {
		return nil, err
	}
	target, _ := cmd.Flags().GetInt("target")
	if target <= 0 {
		target = c.DailyQuota
	}
	keyword, _ := cmd.Flags().GetString("keyword")
	diet, _ := cmd.Flags().GetString("diet")

	s, err := catalog.CustomStrategy(category, target, types.FilterSet{Keyword: keyword, Diet: diet})
	if err != nil {
		return nil, err
	}
	return []types.ImportStrategy{s}, nil
}

// serveMetrics exposes reg on addr/metrics until the returned func is called.
func serveMetrics(addr string, reg *prometheus.Registry) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", zap.String("addr", addr), zap.Error(err))
		}
	}()
	logger.Info("serving metrics", zap.String("addr", addr))
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}

func init() {
	importCmd.Flags().String("date", "", "campaign date to import for, YYYY-MM-DD (default today)")
	importCmd.Flags().String("category", "", "run one ad hoc strategy for this category instead of the schedule")
	importCmd.Flags().Int("target", 0, "candidates to process for the ad hoc strategy (default daily quota)")
	importCmd.Flags().String("keyword", "", "search keyword for the ad hoc strategy")
	importCmd.Flags().String("diet", "", "dietary restriction for the ad hoc strategy")
	importCmd.Flags().String("strategies-file", "", "run the strategies in this YAML file instead of the schedule")
	importCmd.Flags().String("metrics-addr", "", "serve Prometheus metrics on this address during the run (e.g. :9090)")

	rootCmd.AddCommand(importCmd)
}
