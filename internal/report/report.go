// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report aggregates import outcomes into daily reports and weekly
// summaries, derives threshold-based recommendations, and persists both
// as YAML files.
package report

import (
	"fmt"
	"math"
	"slices"
	"sort"

	"github.com/pdiddy/recipe-curator/pkg/types"
)

// Recommendation thresholds.
const (
	// QuotaShortfall flags days importing below this fraction of the quota.
	QuotaShortfall = 0.8

	// QualityTarget is the mean total score below which quality is flagged.
	QualityTarget = 60.0

	// UnderrepresentedShare flags categories below this share of imports.
	UnderrepresentedShare = 0.15

	// ErrorRateLimit flags weeks where errors exceed this share of outcomes.
	ErrorRateLimit = 0.10

	// majorityRejected flags a day where one rejection kind dominates.
	majorityRejected = 0.5
)

// qualityBands are the histogram bands of QualityStats.Buckets.
var qualityBands = []struct {
	name   string
	lo, hi float64
}{
	{"0-49", 0, 50},
	{"50-59", 50, 60},
	{"60-69", 60, 70},
	{"70-79", 70, 80},
	{"80-89", 80, 90},
	{"90-100", 90, math.Inf(1)},
}

// DayInfo carries the run metadata recorded on a DailyReport.
type DayInfo struct {
	RunID       string
	Date        string
	CampaignDay int
	Phase       types.Phase
	DailyQuota  int
	Strategies  []string
}

// Daily aggregates one run's outcomes. It is a pure function of its inputs.
func Daily(info DayInfo, outcomes []types.ImportOutcome) types.DailyReport {
	r := types.DailyReport{
		RunID:                info.RunID,
		Date:                 info.Date,
		CampaignDay:          info.CampaignDay,
		Phase:                info.Phase,
		DailyQuota:           info.DailyQuota,
		Strategies:           info.Strategies,
		CategoryDistribution: emptyDistribution(),
		Outcomes:             outcomes,
	}
	if r.Outcomes == nil {
		r.Outcomes = []types.ImportOutcome{}
	}

	var totals []float64
	fullGD := 0
	for _, o := range outcomes {
		switch o.Kind {
		case types.OutcomeImported:
			r.Counts.Imported++
			if o.Category != nil {
				r.CategoryDistribution[o.Category.Primary]++
			}
			if o.Score != nil {
				totals = append(totals, o.Score.Total)
				if o.Score.FullGDCredit() {
					fullGD++
				}
			}
		case types.OutcomeRejectedQuality:
			r.Counts.RejectedQuality++
		case types.OutcomeRejectedDuplicate:
			r.Counts.RejectedDuplicate++
		case types.OutcomeError:
			r.Counts.Errors++
		}
	}

	r.Quality = qualityStats(totals)
	if r.Counts.Imported > 0 {
		r.GDComplianceRate = float64(fullGD) / float64(r.Counts.Imported)
	}
	r.Recommendations = dailyRecommendations(r)
	return r
}

// Merge folds next, a later run on the same date, into prev. Outcomes
// are concatenated and every aggregate recomputed; the first run's quota
// is kept.
func Merge(prev, next types.DailyReport) types.DailyReport {
	quota := prev.DailyQuota
	if quota == 0 {
		quota = next.DailyQuota
	}
	strategies := append([]string(nil), prev.Strategies...)
	for _, name := range next.Strategies {
		if !slices.Contains(strategies, name) {
			strategies = append(strategies, name)
		}
	}
	outcomes := make([]types.ImportOutcome, 0, len(prev.Outcomes)+len(next.Outcomes))
	outcomes = append(outcomes, prev.Outcomes...)
	outcomes = append(outcomes, next.Outcomes...)

	m := Daily(DayInfo{
		RunID:       next.RunID,
		Date:        next.Date,
		CampaignDay: next.CampaignDay,
		Phase:       next.Phase,
		DailyQuota:  quota,
		Strategies:  strategies,
	}, outcomes)
	m.RunIDs = append(runIDs(prev), runIDs(next)...)
	return m
}

func runIDs(r types.DailyReport) []string {
	if len(r.RunIDs) > 0 {
		return append([]string(nil), r.RunIDs...)
	}
	if r.RunID == "" {
		return nil
	}
	return []string{r.RunID}
}

func emptyDistribution() map[types.Category]int {
	d := make(map[types.Category]int, len(types.Categories))
	for _, c := range types.Categories {
		d[c] = 0
	}
	return d
}

func qualityStats(totals []float64) types.QualityStats {
	s := types.QualityStats{Buckets: make(map[string]int, len(qualityBands))}
	for _, b := range qualityBands {
		s.Buckets[b.name] = 0
	}
	if len(totals) == 0 {
		return s
	}

	sorted := append([]float64(nil), totals...)
	sort.Float64s(sorted)

	var sum float64
	for _, v := range sorted {
		sum += v
		for _, b := range qualityBands {
			if v >= b.lo && v < b.hi {
				s.Buckets[b.name]++
				break
			}
		}
	}
	n := len(sorted)
	s.Mean = round2(sum / float64(n))
	s.Min = sorted[0]
	s.Max = sorted[n-1]
	if n%2 == 1 {
		s.Median = sorted[n/2]
	} else {
		s.Median = round2((sorted[n/2-1] + sorted[n/2]) / 2)
	}
	return s
}

func dailyRecommendations(r types.DailyReport) []string {
	var recs []string
	c := r.Counts
	if r.DailyQuota > 0 && float64(c.Imported) < float64(r.DailyQuota)*QuotaShortfall {
		recs = append(recs, fmt.Sprintf("daily import count below quota: imported %d of %d (%.0f%%)",
			c.Imported, r.DailyQuota, 100*float64(c.Imported)/float64(r.DailyQuota)))
	}
	if c.Imported > 0 && r.Quality.Mean < QualityTarget {
		recs = append(recs, fmt.Sprintf("average quality below target: %.1f < %.0f", r.Quality.Mean, QualityTarget))
	}
	if total := c.Total(); total > 0 {
		if float64(c.RejectedQuality) > float64(total)*majorityRejected {
			recs = append(recs, fmt.Sprintf("most candidates failed quality checks (%d of %d): tighten search filters or change keywords",
				c.RejectedQuality, total))
		}
		if float64(c.RejectedDuplicate) > float64(total)*majorityRejected {
			recs = append(recs, fmt.Sprintf("most candidates were duplicates (%d of %d): rotate keywords to reach new recipes",
				c.RejectedDuplicate, total))
		}
	}
	if c.Errors > 0 {
		recs = append(recs, fmt.Sprintf("%d source calls or candidates failed: check source availability and quota", c.Errors))
	}
	return recs
}

// Weekly rolls up to seven daily reports. dailyQuota drives the quota
// recommendation; zero falls back to the reports' own quota.
func Weekly(reports []types.DailyReport, dailyQuota int) types.WeeklySummary {
	s := types.WeeklySummary{
		Days:                 len(reports),
		CategoryDistribution: emptyDistribution(),
		Trend:                []types.DayImports{},
	}
	if len(reports) == 0 {
		return s
	}

	sorted := append([]types.DailyReport(nil), reports...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date < sorted[j].Date })
	s.StartDate = sorted[0].Date
	s.EndDate = sorted[len(sorted)-1].Date

	var qualitySum, gdSum float64
	for _, r := range sorted {
		s.Counts.Add(r.Counts)
		for cat, n := range r.CategoryDistribution {
			s.CategoryDistribution[cat] += n
		}
		qualitySum += r.Quality.Mean * float64(r.Counts.Imported)
		gdSum += r.GDComplianceRate * float64(r.Counts.Imported)
		s.Trend = append(s.Trend, types.DayImports{
			Date:         r.Date,
			Imported:     r.Counts.Imported,
			MeanQuality:  r.Quality.Mean,
			GDCompliance: r.GDComplianceRate,
		})
		if dailyQuota <= 0 {
			dailyQuota = r.DailyQuota
		}
	}

	s.AverageDailyImports = round2(float64(s.Counts.Imported) / float64(len(sorted)))
	if s.Counts.Imported > 0 {
		s.AverageQuality = round2(qualitySum / float64(s.Counts.Imported))
		s.GDComplianceRate = round2(gdSum / float64(s.Counts.Imported))
	}
	s.Recommendations = weeklyRecommendations(s, dailyQuota)
	return s
}

func weeklyRecommendations(s types.WeeklySummary, dailyQuota int) []string {
	var recs []string
	if dailyQuota > 0 && s.AverageDailyImports < float64(dailyQuota)*QuotaShortfall {
		recs = append(recs, fmt.Sprintf("daily import count below quota: averaged %.1f of %d per day",
			s.AverageDailyImports, dailyQuota))
	}
	if s.Counts.Imported > 0 && s.AverageQuality < QualityTarget {
		recs = append(recs, fmt.Sprintf("quality trending low: rolling average %.1f < %.0f", s.AverageQuality, QualityTarget))
	}
	if s.Counts.Imported > 0 {
		for _, cat := range types.Categories {
			n := s.CategoryDistribution[cat]
			share := float64(n) / float64(s.Counts.Imported)
			if share < UnderrepresentedShare {
				recs = append(recs, fmt.Sprintf("%s underrepresented: %d of %d imports (%.0f%%), schedule gap-fill strategies",
					cat, n, s.Counts.Imported, 100*share))
			}
		}
	}
	if total := s.Counts.Total(); total > 0 && float64(s.Counts.Errors) > float64(total)*ErrorRateLimit {
		recs = append(recs, fmt.Sprintf("error rate high: %d of %d outcomes failed", s.Counts.Errors, total))
	}
	return recs
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
