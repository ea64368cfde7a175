// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package campaign resolves a calendar date into the day's import plan and
// tracks cumulative campaign progress. The day index and phase are pure
// functions of the campaign start date and the date being planned.
package campaign

import (
	"fmt"
	"time"

	"github.com/pdiddy/recipe-curator/internal/strategy"
	"github.com/pdiddy/recipe-curator/pkg/types"
)

// Phase boundaries by day index (inclusive upper bounds).
const (
	coreLastDay       = 10
	variationsLastDay = 15
)

// Scheduler plans campaign days from the strategy catalog.
type Scheduler struct {
	catalog *strategy.Catalog
}

// NewScheduler returns a Scheduler backed by catalog.
func NewScheduler(catalog *strategy.Catalog) *Scheduler {
	return &Scheduler{catalog: catalog}
}

// DayIndex returns the 1-based campaign day of date. It fails with
// types.ErrOutOfCampaignRange before the start or after the last day.
func DayIndex(c types.Campaign, date time.Time) (int, error) {
	days := int(calendarDay(date).Sub(calendarDay(c.StartDate)).Hours() / 24)
	idx := days + 1
	if idx < 1 || idx > c.TotalDays {
		return 0, fmt.Errorf("%s is campaign day %d of %d: %w",
			date.Format(types.DateLayout), idx, c.TotalDays, types.ErrOutOfCampaignRange)
	}
	return idx, nil
}

// PhaseFor maps a day index to its phase: days 1-10 core, 11-15
// variations, and seasonal from day 16 on.
func PhaseFor(dayIndex int) types.Phase {
	switch {
	case dayIndex <= coreLastDay:
		return types.PhaseCore
	case dayIndex <= variationsLastDay:
		return types.PhaseVariations
	default:
		return types.PhaseSeasonal
	}
}

// DayOfWeek is the rotation day (1-7) for a day index. Day 1 of the
// campaign is rotation day 1 whatever the calendar weekday.
func DayOfWeek(dayIndex int) int {
	return (dayIndex-1)%strategy.DaysPerWeek + 1
}

// Season returns the northern-hemisphere season of date.
func Season(date time.Time) string {
	switch date.Month() {
	case time.March, time.April, time.May:
		return "spring"
	case time.June, time.July, time.August:
		return "summer"
	case time.September, time.October, time.November:
		return "fall"
	default:
		return "winter"
	}
}

// PlanFor returns the plan for date. importedBefore is the number of
// recipes the campaign imported on earlier days; it caps the day's
// remaining quota near the end of the campaign. Passing the same inputs
// always yields the same plan.
func (s *Scheduler) PlanFor(c types.Campaign, date time.Time, importedBefore int) (types.Plan, error) {
	idx, err := DayIndex(c, date)
	if err != nil {
		return types.Plan{}, err
	}
	phase := PhaseFor(idx)
	dow := DayOfWeek(idx)

	list, err := s.catalog.StrategiesFor(phase, dow)
	if err != nil {
		return types.Plan{}, fmt.Errorf("planning day %d: %w", idx, err)
	}
	if phase == types.PhaseSeasonal {
		season := Season(date)
		for i := range list {
			list[i].Filters.Keyword += " " + season
		}
	}

	remaining := min(c.DailyQuota, max(0, c.Target()-importedBefore))
	return types.Plan{
		Date:                 calendarDay(date),
		DayIndex:             idx,
		DayOfWeek:            dow,
		Phase:                phase,
		Strategies:           trim(list, remaining),
		RemainingQuotaForDay: remaining,
	}, nil
}

// trim fills quota with the strategies in list order so their targets do not
// sum past it. Strategies left with no target are dropped.
func trim(list []types.ImportStrategy, quota int) []types.ImportStrategy {
	out := make([]types.ImportStrategy, 0, len(list))
	left := quota
	for _, s := range list {
		if left <= 0 {
			break
		}
		if s.TargetCount > left {
			s.TargetCount = left
		}
		left -= s.TargetCount
		out = append(out, s)
	}
	return out
}

func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
