// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/recipe-curator/pkg/types"
)

// FormatDaily writes a human-readable summary of r.
func FormatDaily(w io.Writer, r types.DailyReport) {
	fmt.Fprintf(w, "Import report %s (campaign day %d, phase %s, run %s)\n",
		r.Date, r.CampaignDay, r.Phase, r.RunID)
	if len(r.Strategies) > 0 {
		fmt.Fprintf(w, "Strategies: %s\n", strings.Join(r.Strategies, ", "))
	}
	fmt.Fprintln(w)

	c := r.Counts
	fmt.Fprintf(w, "%-20s  %6s\n", "Outcome", "Count")
	fmt.Fprintln(w, strings.Repeat("-", 28))
	fmt.Fprintf(w, "%-20s  %6d\n", types.OutcomeImported, c.Imported)
	fmt.Fprintf(w, "%-20s  %6d\n", types.OutcomeRejectedQuality, c.RejectedQuality)
	fmt.Fprintf(w, "%-20s  %6d\n", types.OutcomeRejectedDuplicate, c.RejectedDuplicate)
	fmt.Fprintf(w, "%-20s  %6d\n", types.OutcomeError, c.Errors)
	if r.DailyQuota > 0 {
		fmt.Fprintf(w, "%-20s  %6d\n", "quota", r.DailyQuota)
	}
	fmt.Fprintln(w)

	formatDistribution(w, r.CategoryDistribution, c.Imported)
	fmt.Fprintf(w, "Quality: mean %.1f, median %.1f, min %.1f, max %.1f\n",
		r.Quality.Mean, r.Quality.Median, r.Quality.Min, r.Quality.Max)
	fmt.Fprintf(w, "GD compliance: %.0f%%\n", 100*r.GDComplianceRate)
	formatRecommendations(w, r.Recommendations)
}

// FormatWeekly writes a human-readable summary of s.
func FormatWeekly(w io.Writer, s types.WeeklySummary) {
	fmt.Fprintf(w, "Weekly summary %s to %s (%d days)\n\n", s.StartDate, s.EndDate, s.Days)

	fmt.Fprintf(w, "%-10s  %8s  %8s  %6s\n", "Date", "Imported", "Quality", "GD")
	fmt.Fprintln(w, strings.Repeat("-", 38))
	for _, d := range s.Trend {
		fmt.Fprintf(w, "%-10s  %8d  %8.1f  %5.0f%%\n", d.Date, d.Imported, d.MeanQuality, 100*d.GDCompliance)
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Imported %d (%.1f/day), rejected %d quality, %d duplicate, %d errors\n",
		s.Counts.Imported, s.AverageDailyImports, s.Counts.RejectedQuality, s.Counts.RejectedDuplicate, s.Counts.Errors)
	fmt.Fprintf(w, "Average quality %.1f, GD compliance %.0f%%\n\n", s.AverageQuality, 100*s.GDComplianceRate)
	formatDistribution(w, s.CategoryDistribution, s.Counts.Imported)
	formatRecommendations(w, s.Recommendations)
}

func formatDistribution(w io.Writer, dist map[types.Category]int, imported int) {
	fmt.Fprintf(w, "%-10s  %6s  %6s\n", "Category", "Count", "Share")
	fmt.Fprintln(w, strings.Repeat("-", 26))
	for _, cat := range types.Categories {
		n := dist[cat]
		share := 0.0
		if imported > 0 {
			share = 100 * float64(n) / float64(imported)
		}
		fmt.Fprintf(w, "%-10s  %6d  %5.0f%%\n", cat, n, share)
	}
	fmt.Fprintln(w)
}

func formatRecommendations(w io.Writer, recs []string) {
	if len(recs) == 0 {
		return
	}
	fmt.Fprintln(w, "\nRecommendations:")
	for _, rec := range recs {
		fmt.Fprintf(w, "  - %s\n", rec)
	}
}
