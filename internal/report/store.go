// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/recipe-curator/pkg/types"
)

const (
	dailyDir  = "daily"
	weeklyDir = "weekly"

	// WeekDays is the window rolled into a weekly summary.
	WeekDays = 7
)

// ErrNoReport is returned when no report exists for a date.
var ErrNoReport = errors.New("no report for date")

// Store persists reports as YAML under Dir/daily/<date>.yaml and
// Dir/weekly/<date>.yaml.
type Store struct {
	Dir string
}

// NewStore returns a Store rooted at dir.
func NewStore(dir string) *Store {
	if dir == "" {
		dir = "reports"
	}
	return &Store{Dir: dir}
}

// DailyPath returns the file a daily report for date is written to.
func (s *Store) DailyPath(date string) string {
	return filepath.Join(s.Dir, dailyDir, date+".yaml")
}

// WeeklyPath returns the file a weekly summary ending on date is written to.
func (s *Store) WeeklyPath(date string) string {
	return filepath.Join(s.Dir, weeklyDir, date+".yaml")
}

// SaveDaily writes r, replacing any earlier report for the same date.
func (s *Store) SaveDaily(r types.DailyReport) (string, error) {
	path := s.DailyPath(r.Date)
	return path, writeYAML(path, r)
}

// MergeDaily folds r into the report already saved for its date, if any,
// and writes the result. It returns the merged report.
func (s *Store) MergeDaily(r types.DailyReport) (types.DailyReport, string, error) {
	prev, err := s.LoadDaily(r.Date)
	switch {
	case errors.Is(err, ErrNoReport):
		r.RunIDs = runIDs(r)
	case err != nil:
		return types.DailyReport{}, "", err
	default:
		r = Merge(prev, r)
	}
	path, err := s.SaveDaily(r)
	return r, path, err
}

// LoadDaily reads the daily report for date.
func (s *Store) LoadDaily(date string) (types.DailyReport, error) {
	var r types.DailyReport
	if err := readYAML(s.DailyPath(date), &r); err != nil {
		return types.DailyReport{}, err
	}
	return r, nil
}

// LoadWeek reads the daily reports for the seven days ending on asOf.
// Days without a report are skipped.
func (s *Store) LoadWeek(asOf time.Time) ([]types.DailyReport, error) {
	var out []types.DailyReport
	for i := WeekDays - 1; i >= 0; i-- {
		date := asOf.AddDate(0, 0, -i).Format(types.DateLayout)
		r, err := s.LoadDaily(date)
		if errors.Is(err, ErrNoReport) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// SaveWeekly writes a weekly summary keyed by its end date.
func (s *Store) SaveWeekly(w types.WeeklySummary) (string, error) {
	if w.EndDate == "" {
		return "", fmt.Errorf("weekly summary has no end date")
	}
	path := s.WeeklyPath(w.EndDate)
	return path, writeYAML(path, w)
}

// BuildWeekly rolls the daily reports of the seven days ending on asOf
// into a WeeklySummary keyed by asOf and saves it.
func (s *Store) BuildWeekly(asOf time.Time, dailyQuota int) (types.WeeklySummary, string, error) {
	reports, err := s.LoadWeek(asOf)
	if err != nil {
		return types.WeeklySummary{}, "", err
	}
	if len(reports) == 0 {
		return types.WeeklySummary{}, "", fmt.Errorf("week ending %s: %w", asOf.Format(types.DateLayout), ErrNoReport)
	}
	w := Weekly(reports, dailyQuota)
	w.StartDate = asOf.AddDate(0, 0, -(WeekDays - 1)).Format(types.DateLayout)
	w.EndDate = asOf.Format(types.DateLayout)
	path, err := s.SaveWeekly(w)
	return w, path, err
}

// LoadWeekly reads the weekly summary ending on date.
func (s *Store) LoadWeekly(date string) (types.WeeklySummary, error) {
	var w types.WeeklySummary
	if err := readYAML(s.WeeklyPath(date), &w); err != nil {
		return types.WeeklySummary{}, err
	}
	return w, nil
}

func writeYAML(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating report directory: %w", err)
	}
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func readYAML(path string, v any) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%s: %w", filepath.Base(path), ErrNoReport)
	}
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}
