// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"time"
)

// DateLayout is the calendar-date format used in config, flags, and reports.
const DateLayout = "2006-01-02"

// Phase is the campaign stage derived from the day index.
type Phase string

const (
	PhaseCore       Phase = "core"
	PhaseVariations Phase = "variations"
	PhaseSeasonal   Phase = "seasonal"

	// PhaseManual tags ad hoc runs that fall outside a campaign.
	PhaseManual Phase = "manual"
)

// Campaign is the fixed multi-day import schedule. It is read-only during
// a run; progress is derived from the date and a persisted import count.
type Campaign struct {
	StartDate  time.Time `json:"start_date" yaml:"start_date"`
	TotalDays  int       `json:"total_days" yaml:"total_days"`
	DailyQuota int       `json:"daily_quota" yaml:"daily_quota"`
}

// ID identifies the campaign in progress stores and library rows.
func (c Campaign) ID() string {
	return "campaign-" + c.StartDate.Format(DateLayout)
}

// Target returns the campaign-wide import target.
func (c Campaign) Target() int {
	return c.TotalDays * c.DailyQuota
}

// FilterSet constrains one Recipe Source search.
type FilterSet struct {
	Keyword string `json:"keyword" yaml:"keyword"`

	// Diet is an optional dietary restriction ("vegetarian", "gluten free").
	Diet string `json:"diet,omitempty" yaml:"diet,omitempty"`

	MinCarbs   float64 `json:"min_carbs" yaml:"min_carbs"`
	MaxCarbs   float64 `json:"max_carbs" yaml:"max_carbs"`
	MinProtein float64 `json:"min_protein" yaml:"min_protein"`
	MinFiber   float64 `json:"min_fiber" yaml:"min_fiber"`

	// MaxReadyMinutes caps prep+cook time; zero means no cap.
	MaxReadyMinutes int `json:"max_ready_minutes,omitempty" yaml:"max_ready_minutes,omitempty"`

	// Sort is the source's result ordering ("popularity", "healthiness").
	Sort string `json:"sort,omitempty" yaml:"sort,omitempty"`

	// PageSize is the number of hits requested per search call.
	PageSize int `json:"page_size" yaml:"page_size"`
}

// ImportStrategy is a named filter plus target count for one category.
type ImportStrategy struct {
	Name        string    `json:"name" yaml:"name"`
	Category    Category  `json:"category" yaml:"category"`
	TargetCount int       `json:"target_count" yaml:"target_count"`
	Filters     FilterSet `json:"filters" yaml:"filters"`
}

// Validate checks the strategy has a known category, a positive target,
// and a coherent carb range.
func (s ImportStrategy) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("strategy has no name")
	}
	if !s.Category.Valid() {
		return fmt.Errorf("strategy %s: unknown category %q", s.Name, s.Category)
	}
	if s.TargetCount <= 0 {
		return fmt.Errorf("strategy %s: target count must be positive, got %d", s.Name, s.TargetCount)
	}
	if s.Filters.MaxCarbs > 0 && s.Filters.MinCarbs > s.Filters.MaxCarbs {
		return fmt.Errorf("strategy %s: min carbs %.0f exceeds max carbs %.0f", s.Name, s.Filters.MinCarbs, s.Filters.MaxCarbs)
	}
	return nil
}

// Plan is the scheduler's answer for one calendar date.
type Plan struct {
	Date                 time.Time        `json:"date" yaml:"date"`
	DayIndex             int              `json:"day_index" yaml:"day_index"`
	DayOfWeek            int              `json:"day_of_week" yaml:"day_of_week"`
	Phase                Phase            `json:"phase" yaml:"phase"`
	Strategies           []ImportStrategy `json:"strategies" yaml:"strategies"`
	RemainingQuotaForDay int              `json:"remaining_quota_for_day" yaml:"remaining_quota_for_day"`
}

// TargetTotal sums the target counts of the plan's strategies.
func (p Plan) TargetTotal() int {
	total := 0
	for _, s := range p.Strategies {
		total += s.TargetCount
	}
	return total
}
