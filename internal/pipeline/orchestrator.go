// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline drives one scheduled import run: it pages through the
// Recipe Source for each strategy, scores, deduplicates, and categorizes
// every candidate, persists the accepted ones, and aggregates the outcomes
// into a daily report.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/pdiddy/recipe-curator/internal/campaign"
	"github.com/pdiddy/recipe-curator/internal/categorize"
	"github.com/pdiddy/recipe-curator/internal/dedup"
	"github.com/pdiddy/recipe-curator/internal/library"
	"github.com/pdiddy/recipe-curator/internal/quality"
	"github.com/pdiddy/recipe-curator/internal/report"
	"github.com/pdiddy/recipe-curator/internal/retry"
	"github.com/pdiddy/recipe-curator/internal/source"
	"github.com/pdiddy/recipe-curator/pkg/types"
)

// Library is the part of the Recipe Library the orchestrator writes to.
type Library interface {
	AllExisting(ctx context.Context) ([]types.LibraryRecipe, error)
	Insert(ctx context.Context, e library.Entry) (string, error)
}

// Orchestrator runs import strategies against one source and library.
// Source calls are serialized and spaced by the rate limiter.
type Orchestrator struct {
	source      source.Source
	library     Library
	validator   *quality.Validator
	categorizer *categorize.Categorizer
	detector    *dedup.Detector
	retry       retry.Policy
	limiter     *rate.Limiter
	metrics     *Metrics
	logger      *zap.Logger
	now         func() time.Time
}

// Options configures an Orchestrator.
type Options struct {
	Guidelines      types.Guidelines
	MinQualityScore float64
	MaxRetries      int
	RetryBaseDelay  time.Duration
	RateLimitDelay  time.Duration
	Metrics         *Metrics
	Logger          *zap.Logger
}

// NewOrchestrator wires the pipeline stages around src and lib.
func NewOrchestrator(src source.Source, lib Library, opts Options) *Orchestrator {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	limit := rate.Inf
	if opts.RateLimitDelay > 0 {
		limit = rate.Every(opts.RateLimitDelay)
	}
	return &Orchestrator{
		source:      src,
		library:     lib,
		validator:   quality.New(opts.Guidelines, opts.MinQualityScore),
		categorizer: categorize.New(opts.Guidelines),
		detector:    dedup.NewDetector(),
		retry: retry.Policy{
			MaxRetries: opts.MaxRetries,
			BaseDelay:  opts.RetryBaseDelay,
			Retryable:  source.Retryable,
			Logger:     logger,
		},
		limiter: rate.NewLimiter(limit, 1),
		metrics: metrics,
		logger:  logger,
		now:     time.Now,
	}
}

// Run imports for date with the given strategies. The campaign day and
// phase are derived from the campaign when date falls inside it; ad hoc
// runs outside the campaign are reported as day 0, phase "manual".
func (o *Orchestrator) Run(ctx context.Context, c types.Campaign, date time.Time, strategies []types.ImportStrategy) (types.DailyReport, error) {
	plan := types.Plan{
		Date:                 date,
		Phase:                types.PhaseManual,
		Strategies:           strategies,
		RemainingQuotaForDay: c.DailyQuota,
	}
	if idx, err := campaign.DayIndex(c, date); err == nil {
		plan.DayIndex = idx
		plan.DayOfWeek = campaign.DayOfWeek(idx)
		plan.Phase = campaign.PhaseFor(idx)
	}
	return o.RunPlan(ctx, c, plan)
}

// run is the state of one RunPlan call.
type run struct {
	id         string
	campaignID string
	date       string
	index      *dedup.Index
	outcomes   []types.ImportOutcome
}

// RunPlan executes plan. A missing or rejected credential aborts with a
// types.ErrConfiguration error; the report is empty unless earlier
// strategies already produced outcomes, in which case it covers them.
// Cancellation is honoured
// between strategies: the partial report is returned with ctx.Err().
// Every other failure is recorded as an outcome and the run continues.
func (o *Orchestrator) RunPlan(ctx context.Context, c types.Campaign, plan types.Plan) (types.DailyReport, error) {
	if err := o.source.CheckCredential(); err != nil {
		o.logger.Error("source credential rejected", zap.Error(err))
		return types.DailyReport{}, types.NewImportError(types.ErrConfiguration, "checking source credential", err)
	}

	start := o.now()
	r := &run{
		id:         uuid.NewString(),
		campaignID: c.ID(),
		date:       plan.Date.Format(types.DateLayout),
	}
	logger := o.logger.With(zap.String("run_id", r.id), zap.String("date", r.date))

	names := make([]string, 0, len(plan.Strategies))
	for _, s := range plan.Strategies {
		names = append(names, s.Name)
	}

	existing, err := retry.Do(ctx, retry.Policy{MaxRetries: 1, BaseDelay: o.retry.BaseDelay, Logger: logger}, "load library",
		o.library.AllExisting)
	if err != nil {
		// Without the duplicate-check set nothing can be imported safely.
		err = types.NewImportError(types.ErrPersistence, "loading library for duplicate check", err)
		logger.Error("library unavailable, skipping every strategy", zap.Error(err))
		for _, s := range plan.Strategies {
			o.record(r, s.Category, types.ImportOutcome{Kind: types.OutcomeError, Strategy: s.Name, Reason: err.Error()})
		}
		return o.finish(r, plan, names, start, logger), nil
	}
	fps := make([]dedup.Fingerprint, 0, len(existing))
	for _, e := range existing {
		fps = append(fps, dedup.FromLibrary(e))
	}
	r.index = dedup.NewIndex(o.detector, fps)
	logger.Info("import run started",
		zap.Int("day", plan.DayIndex),
		zap.String("phase", string(plan.Phase)),
		zap.Int("strategies", len(plan.Strategies)),
		zap.Int("library_size", len(existing)))

	var runErr error
	for _, s := range plan.Strategies {
		if err := ctx.Err(); err != nil {
			logger.Warn("import run cancelled between strategies", zap.String("next", s.Name))
			runErr = err
			break
		}
		// A started strategy always runs to completion.
		if err := o.runStrategy(context.WithoutCancel(ctx), r, s, logger); err != nil {
			if len(r.outcomes) == 0 {
				return types.DailyReport{}, err
			}
			// Recipes already stored keep their audit trail.
			return o.finish(r, plan, names, start, logger), err
		}
	}

	return o.finish(r, plan, names, start, logger), runErr
}

// finish aggregates the run's outcomes into its daily report.
func (o *Orchestrator) finish(r *run, plan types.Plan, names []string, start time.Time, logger *zap.Logger) types.DailyReport {
	rep := report.Daily(report.DayInfo{
		RunID:       r.id,
		Date:        r.date,
		CampaignDay: plan.DayIndex,
		Phase:       plan.Phase,
		DailyQuota:  plan.RemainingQuotaForDay,
		Strategies:  names,
	}, r.outcomes)
	o.metrics.RunDuration.Observe(o.now().Sub(start).Seconds())
	logger.Info("import run finished",
		zap.Int("imported", rep.Counts.Imported),
		zap.Int("rejected_quality", rep.Counts.RejectedQuality),
		zap.Int("rejected_duplicate", rep.Counts.RejectedDuplicate),
		zap.Int("errors", rep.Counts.Errors))
	return rep
}

// runStrategy pages through the source until TargetCount candidates have
// been processed or the source is exhausted. Only a rejected credential
// is returned as an error; everything else becomes an outcome.
func (o *Orchestrator) runStrategy(ctx context.Context, r *run, s types.ImportStrategy, logger *zap.Logger) error {
	logger = logger.With(zap.String("strategy", s.Name), zap.String("category", string(s.Category)))
	processed := 0
	offset := 0
	for processed < s.TargetCount {
		q := source.Query{Category: s.Category, Filters: s.Filters, Offset: offset}
		page, err := call(ctx, o, "search", func(ctx context.Context) (source.Page, error) {
			return o.source.Search(ctx, q)
		})
		if err != nil {
			if fatal := o.fatal(err); fatal != nil {
				return fatal
			}
			logger.Error("search failed, skipping rest of strategy", zap.Int("offset", offset), zap.Error(err))
			o.record(r, s.Category, types.ImportOutcome{
				Kind:     types.OutcomeError,
				Strategy: s.Name,
				Reason:   fmt.Sprintf("search page at offset %d: %v", offset, err),
			})
			return nil
		}

		for _, hit := range page.Hits {
			if processed >= s.TargetCount {
				break
			}
			processed++

			if id, ok := r.index.HasSourceID(hit.SourceID); ok {
				o.record(r, s.Category, types.ImportOutcome{
					Kind:      types.OutcomeRejectedDuplicate,
					Strategy:  s.Name,
					SourceID:  hit.SourceID,
					Title:     hit.Title,
					MatchedID: id,
					MatchedBy: dedup.BySourceID,
				})
				logger.Debug("skipping known recipe", zap.String("source_id", hit.SourceID))
				continue
			}

			cand, err := call(ctx, o, "details", func(ctx context.Context) (types.CandidateRecipe, error) {
				return o.source.Details(ctx, hit.SourceID)
			})
			if err != nil {
				if fatal := o.fatal(err); fatal != nil {
					return fatal
				}
				o.record(r, s.Category, types.ImportOutcome{
					Kind:     types.OutcomeError,
					Strategy: s.Name,
					SourceID: hit.SourceID,
					Title:    hit.Title,
					Reason:   err.Error(),
				})
				var exhausted *retry.ExhaustedError
				if errors.As(err, &exhausted) {
					logger.Error("details fetch failed after retries, skipping rest of strategy",
						zap.String("source_id", hit.SourceID), zap.Error(err))
					return nil
				}
				logger.Warn("details fetch failed", zap.String("source_id", hit.SourceID), zap.Error(err))
				continue
			}

			o.record(r, s.Category, o.process(ctx, r, s, cand, logger))
		}

		if page.Exhausted() {
			logger.Info("source exhausted", zap.Int("processed", processed), zap.Int("target", s.TargetCount))
			return nil
		}
		offset += len(page.Hits)
	}
	return nil
}

// process takes one fetched candidate through validate, dedupe,
// categorize, and persist. Nothing is written unless every check passes.
func (o *Orchestrator) process(ctx context.Context, r *run, s types.ImportStrategy, c types.CandidateRecipe, logger *zap.Logger) types.ImportOutcome {
	out := types.ImportOutcome{Strategy: s.Name, SourceID: c.SourceID, Title: c.Title}
	logger = logger.With(zap.String("source_id", c.SourceID))

	score, err := o.validator.Score(c, s.Category)
	if err != nil {
		out.Kind = types.OutcomeRejectedQuality
		out.Reason = err.Error()
		logger.Debug("rejected: required fields", zap.Error(err))
		return out
	}
	o.metrics.QualityScore.Observe(score.Total)
	if !o.validator.Acceptable(score) {
		out.Kind = types.OutcomeRejectedQuality
		out.Score = &score
		out.Reason = fmt.Sprintf("quality %.1f below minimum %.0f", score.Total, o.validator.MinScore)
		logger.Debug("rejected: quality", zap.Float64("score", score.Total))
		return out
	}

	fp := dedup.FromCandidate(c)
	if m := r.index.Check(fp); m.Duplicate {
		out.Kind = types.OutcomeRejectedDuplicate
		out.Score = &score
		out.MatchedID = m.MatchedID
		out.MatchedBy = m.MatchedBy
		logger.Debug("rejected: duplicate", zap.String("matched_id", m.MatchedID), zap.String("matched_by", m.MatchedBy))
		return out
	}

	assignment := o.categorizer.Categorize(c)
	entry := library.Entry{
		Candidate:  c,
		Score:      score,
		Category:   assignment,
		CampaignID: r.campaignID,
		RunID:      r.id,
		ImportedOn: r.date,
	}
	persist := retry.Policy{
		MaxRetries: 1,
		BaseDelay:  o.retry.BaseDelay,
		Retryable:  func(err error) bool { return !errors.Is(err, library.ErrAlreadyStored) },
		Logger:     logger,
	}
	id, err := retry.Do(ctx, persist, "insert", func(ctx context.Context) (string, error) {
		return o.library.Insert(ctx, entry)
	})
	switch {
	case errors.Is(err, library.ErrAlreadyStored):
		out.Kind = types.OutcomeRejectedDuplicate
		out.Score = &score
		out.MatchedID = library.RecipeID(c.SourceID)
		out.MatchedBy = dedup.BySourceID
		logger.Debug("rejected: already stored")
		return out
	case err != nil:
		out.Kind = types.OutcomeError
		out.Reason = types.NewImportError(types.ErrPersistence, "inserting recipe", err).Error()
		logger.Error("persisting recipe failed", zap.Error(err))
		return out
	}

	fp.ID = id
	r.index.Add(fp)
	out.Kind = types.OutcomeImported
	out.RecipeID = id
	out.Score = &score
	out.Category = &assignment
	logger.Debug("imported",
		zap.String("recipe_id", id),
		zap.String("category", string(assignment.Primary)),
		zap.Float64("score", score.Total))
	return out
}

// fatal converts a rejected credential into the run-aborting error.
func (o *Orchestrator) fatal(err error) error {
	if !errors.Is(err, source.ErrInvalidCredential) {
		return nil
	}
	o.logger.Error("source rejected credential, aborting run", zap.Error(err))
	return types.NewImportError(types.ErrConfiguration, "calling recipe source", err)
}

func (o *Orchestrator) record(r *run, strategyCategory types.Category, out types.ImportOutcome) {
	cat := strategyCategory
	if out.Category != nil {
		cat = out.Category.Primary
	}
	o.metrics.Outcomes.WithLabelValues(string(out.Kind), string(cat)).Inc()
	r.outcomes = append(r.outcomes, out)
}

// call runs one source operation under the rate limiter and retry policy.
func call[T any](ctx context.Context, o *Orchestrator, op string, fn func(context.Context) (T, error)) (T, error) {
	v, err := retry.Do(ctx, o.retry, op, func(ctx context.Context) (T, error) {
		if err := o.limiter.Wait(ctx); err != nil {
			var zero T
			return zero, err
		}
		v, err := fn(ctx)
		o.metrics.SourceRequests.WithLabelValues(op, requestResult(err)).Inc()
		return v, err
	})
	if err != nil && source.Retryable(err) {
		err = types.NewImportError(types.ErrSourceUnavailable, op, err)
	}
	return v, err
}
