// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/recipe-curator/pkg/types"
)

func TestStore_DailyRoundTrip(t *testing.T) {
	s := NewStore(t.TempDir())
	r := Daily(DayInfo{RunID: "run-1", Date: "2026-01-07", CampaignDay: 3, Phase: types.PhaseCore, DailyQuota: 100},
		[]types.ImportOutcome{imported(types.Lunch, 80, 40), rejected(types.OutcomeRejectedDuplicate)})

	path, err := s.SaveDaily(r)
	require.NoError(t, err)
	assert.FileExists(t, path)

	got, err := s.LoadDaily("2026-01-07")
	require.NoError(t, err)
	assert.Equal(t, r.RunID, got.RunID)
	assert.Equal(t, r.Counts, got.Counts)
	assert.Equal(t, 1, got.CategoryDistribution[types.Lunch])
	require.Len(t, got.Outcomes, 2)
	assert.Equal(t, 80.0, got.Outcomes[0].Score.Total)
}

func TestStore_MergeDaily(t *testing.T) {
	s := NewStore(t.TempDir())
	first := Daily(DayInfo{RunID: "run-1", Date: "2026-01-07", CampaignDay: 3, Phase: types.PhaseCore, DailyQuota: 100,
		Strategies: []string{"lunch-salads"}},
		[]types.ImportOutcome{imported(types.Lunch, 80, 40), imported(types.Lunch, 70, 40)})
	got, _, err := s.MergeDaily(first)
	require.NoError(t, err)
	assert.Equal(t, []string{"run-1"}, got.RunIDs)
	assert.Equal(t, 2, got.Counts.Imported)

	rerun := Daily(DayInfo{RunID: "run-2", Date: "2026-01-07", CampaignDay: 3, Phase: types.PhaseCore, DailyQuota: 100,
		Strategies: []string{"lunch-salads", "dinner-poultry"}},
		[]types.ImportOutcome{rejected(types.OutcomeRejectedDuplicate), rejected(types.OutcomeRejectedDuplicate)})
	got, path, err := s.MergeDaily(rerun)
	require.NoError(t, err)
	assert.Equal(t, s.DailyPath("2026-01-07"), path)

	loaded, err := s.LoadDaily("2026-01-07")
	require.NoError(t, err)
	for _, r := range []types.DailyReport{got, loaded} {
		assert.Equal(t, []string{"run-1", "run-2"}, r.RunIDs)
		assert.Equal(t, "run-2", r.RunID)
		assert.Equal(t, 2, r.Counts.Imported)
		assert.Equal(t, 2, r.Counts.RejectedDuplicate)
		assert.Equal(t, 2, r.CategoryDistribution[types.Lunch])
		assert.Equal(t, []string{"lunch-salads", "dinner-poultry"}, r.Strategies)
		assert.Len(t, r.Outcomes, 4)
	}
}

func TestStore_MissingReport(t *testing.T) {
	_, err := NewStore(t.TempDir()).LoadDaily("2026-01-01")
	assert.ErrorIs(t, err, ErrNoReport)
}

func TestStore_LoadWeekSkipsMissingDays(t *testing.T) {
	s := NewStore(t.TempDir())
	for _, d := range []string{"2026-01-02", "2026-01-05", "2026-01-09", "2026-01-10"} {
		_, err := s.SaveDaily(types.DailyReport{Date: d})
		require.NoError(t, err)
	}

	week, err := s.LoadWeek(time.Date(2026, 1, 9, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, week, 2)
	assert.Equal(t, "2026-01-05", week[0].Date)
	assert.Equal(t, "2026-01-09", week[1].Date)
}

func TestStore_CorruptReport(t *testing.T) {
	s := NewStore(t.TempDir())
	_, err := s.SaveDaily(types.DailyReport{Date: "2026-01-05"})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(s.DailyPath("2026-01-05"), []byte("counts: [unclosed"), 0o644))

	_, err = s.LoadWeek(time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC))
	assert.Error(t, err)
}

func TestStore_Weekly(t *testing.T) {
	s := NewStore(t.TempDir())
	_, err := s.SaveWeekly(types.WeeklySummary{})
	assert.Error(t, err)

	w := Weekly([]types.DailyReport{{Date: "2026-01-05", DailyQuota: 100}}, 100)
	path, err := s.SaveWeekly(w)
	require.NoError(t, err)
	assert.Equal(t, s.WeeklyPath("2026-01-05"), path)

	got, err := s.LoadWeekly("2026-01-05")
	require.NoError(t, err)
	assert.Equal(t, w.Recommendations, got.Recommendations)
}

func TestStore_BuildWeekly(t *testing.T) {
	s := NewStore(t.TempDir())
	for _, date := range []string{"2026-01-07", "2026-01-09"} {
		_, err := s.SaveDaily(types.DailyReport{Date: date, DailyQuota: 100, Counts: types.OutcomeCounts{Imported: 90}})
		require.NoError(t, err)
	}
	asOf := time.Date(2026, 1, 9, 0, 0, 0, 0, time.UTC)

	w, path, err := s.BuildWeekly(asOf, 100)
	require.NoError(t, err)
	assert.Equal(t, s.WeeklyPath("2026-01-09"), path)
	assert.Equal(t, "2026-01-03", w.StartDate)
	assert.Equal(t, "2026-01-09", w.EndDate)
	assert.Equal(t, 2, w.Days)
	assert.Equal(t, 180, w.Counts.Imported)

	loaded, err := s.LoadWeekly("2026-01-09")
	require.NoError(t, err)
	assert.Equal(t, w.Counts, loaded.Counts)

	_, _, err = s.BuildWeekly(asOf.AddDate(0, 1, 0), 100)
	assert.ErrorIs(t, err, ErrNoReport)
}
