// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/pdiddy/recipe-curator/internal/source"
)

// Metrics are the pipeline's Prometheus collectors.
type Metrics struct {
	Outcomes       *prometheus.CounterVec
	SourceRequests *prometheus.CounterVec
	QualityScore   prometheus.Histogram
	RunDuration    prometheus.Histogram
}

// NewMetrics creates the collectors and registers them on reg. A nil reg
// leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Outcomes: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "recipe_import_outcomes_total",
				Help: "Candidates processed, by outcome kind and category",
			},
			[]string{"kind", "category"},
		),
		SourceRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "recipe_source_requests_total",
				Help: "Recipe source calls, by operation and result",
			},
			[]string{"op", "result"},
		),
		QualityScore: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "recipe_quality_score",
				Help:    "Total quality score of scored candidates",
				Buckets: []float64{40, 50, 60, 70, 80, 90, 100},
			},
		),
		RunDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "recipe_import_run_duration_seconds",
				Help:    "Wall time of one import run",
				Buckets: prometheus.ExponentialBuckets(1, 2, 12),
			},
		),
	}
}

// requestResult labels a source call result.
func requestResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, source.ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, source.ErrTransient):
		return "transient"
	case errors.Is(err, source.ErrInvalidCredential):
		return "invalid_credential"
	case errors.Is(err, source.ErrNotFound):
		return "not_found"
	case errors.Is(err, source.ErrMalformed):
		return "malformed"
	default:
		return "error"
	}
}
