// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/recipe-curator/internal/campaign"
	"github.com/pdiddy/recipe-curator/internal/report"
	"github.com/pdiddy/recipe-curator/pkg/types"
)

// Importer is the daily entry point: plan, run, record progress, and
// persist the report.
type Importer struct {
	Orchestrator *Orchestrator
	Scheduler    *campaign.Scheduler
	Progress     campaign.Progress
	Reports      *report.Store
	Logger       *zap.Logger
}

// RunDay imports for asOf. A non-empty override replaces the scheduled
// strategies. Without an override, a date outside the campaign returns
// an error wrapping types.ErrOutOfCampaignRange.
//
// The returned report covers this run only. It is merged into the day's
// saved report so re-runs accumulate rather than replace. When ctx is
// cancelled mid-run the partial report is still persisted and returned
// together with ctx.Err().
func (im *Importer) RunDay(ctx context.Context, c types.Campaign, asOf time.Time, override []types.ImportStrategy) (types.DailyReport, error) {
	logger := im.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var (
		rep    types.DailyReport
		runErr error
	)
	if len(override) > 0 {
		for _, s := range override {
			if err := s.Validate(); err != nil {
				return types.DailyReport{}, fmt.Errorf("strategy override: %w", err)
			}
		}
		rep, runErr = im.Orchestrator.Run(ctx, c, asOf, override)
	} else {
		before, err := campaign.ImportedBefore(ctx, im.Progress, c.ID(), asOf)
		if err != nil {
			return types.DailyReport{}, fmt.Errorf("reading campaign progress: %w", err)
		}
		plan, err := im.Scheduler.PlanFor(c, asOf, before)
		if err != nil {
			return types.DailyReport{}, err
		}
		if len(plan.Strategies) == 0 {
			logger.Info("campaign target reached, nothing to import",
				zap.Int("imported", before), zap.Int("target", c.Target()))
		}
		rep, runErr = im.Orchestrator.RunPlan(ctx, c, plan)
	}
	if rep.Date == "" {
		return types.DailyReport{}, runErr
	}

	// Bookkeeping survives a cancelled run.
	bg := context.WithoutCancel(ctx)
	if err := im.Progress.Add(bg, c.ID(), asOf, rep.Counts.Imported); err != nil {
		logger.Error("recording campaign progress failed", zap.Error(err))
	}
	day, path, err := im.Reports.MergeDaily(rep)
	if err != nil {
		return rep, fmt.Errorf("saving daily report: %w", err)
	}
	logger.Info("daily report saved",
		zap.String("path", path),
		zap.Int("runs", len(day.RunIDs)),
		zap.Int("imported_today", day.Counts.Imported))
	return rep, runErr
}
