// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// OutcomeCounts tallies ImportOutcomes by kind.
type OutcomeCounts struct {
	Imported          int `json:"imported" yaml:"imported"`
	RejectedQuality   int `json:"rejected_quality" yaml:"rejected_quality"`
	RejectedDuplicate int `json:"rejected_duplicate" yaml:"rejected_duplicate"`
	Errors            int `json:"errors" yaml:"errors"`
}

// Total returns the number of outcomes counted.
func (c OutcomeCounts) Total() int {
	return c.Imported + c.RejectedQuality + c.RejectedDuplicate + c.Errors
}

// Add accumulates o into c.
func (c *OutcomeCounts) Add(o OutcomeCounts) {
	c.Imported += o.Imported
	c.RejectedQuality += o.RejectedQuality
	c.RejectedDuplicate += o.RejectedDuplicate
	c.Errors += o.Errors
}

// QualityStats summarises the quality scores of imported recipes.
type QualityStats struct {
	Mean   float64 `json:"mean" yaml:"mean"`
	Median float64 `json:"median" yaml:"median"`
	Min    float64 `json:"min" yaml:"min"`
	Max    float64 `json:"max" yaml:"max"`

	// Buckets counts totals by band: "0-49", "50-59", ..., "90-100".
	Buckets map[string]int `json:"buckets" yaml:"buckets"`
}

// DailyReport aggregates the outcomes of the runs on one date.
type DailyReport struct {
	RunID string `json:"run_id" yaml:"run_id"`
	// RunIDs lists every run merged into this report, oldest first.
	RunIDs []string `json:"run_ids,omitempty" yaml:"run_ids,omitempty"`

	Date        string `json:"date" yaml:"date"`
	CampaignDay int    `json:"campaign_day" yaml:"campaign_day"`
	Phase       Phase  `json:"phase" yaml:"phase"`
	DailyQuota  int    `json:"daily_quota" yaml:"daily_quota"`

	Strategies []string `json:"strategies" yaml:"strategies"`

	Counts               OutcomeCounts    `json:"counts" yaml:"counts"`
	CategoryDistribution map[Category]int `json:"category_distribution" yaml:"category_distribution"`
	Quality              QualityStats     `json:"quality" yaml:"quality"`

	// GDComplianceRate is imported-with-full-GD-credit / imported.
	GDComplianceRate float64 `json:"gd_compliance_rate" yaml:"gd_compliance_rate"`

	Recommendations []string        `json:"recommendations,omitempty" yaml:"recommendations,omitempty"`
	Outcomes        []ImportOutcome `json:"outcomes" yaml:"outcomes"`
}

// DayImports is one row of the weekly import trend.
type DayImports struct {
	Date         string  `json:"date" yaml:"date"`
	Imported     int     `json:"imported" yaml:"imported"`
	MeanQuality  float64 `json:"mean_quality" yaml:"mean_quality"`
	GDCompliance float64 `json:"gd_compliance_rate" yaml:"gd_compliance_rate"`
}

// WeeklySummary rolls up to seven DailyReports.
type WeeklySummary struct {
	StartDate string `json:"start_date" yaml:"start_date"`
	EndDate   string `json:"end_date" yaml:"end_date"`
	Days      int    `json:"days" yaml:"days"`

	Counts               OutcomeCounts    `json:"counts" yaml:"counts"`
	CategoryDistribution map[Category]int `json:"category_distribution" yaml:"category_distribution"`

	AverageDailyImports float64 `json:"average_daily_imports" yaml:"average_daily_imports"`
	AverageQuality      float64 `json:"average_quality" yaml:"average_quality"`
	GDComplianceRate    float64 `json:"gd_compliance_rate" yaml:"gd_compliance_rate"`

	Trend           []DayImports `json:"trend" yaml:"trend"`
	Recommendations []string     `json:"recommendations,omitempty" yaml:"recommendations,omitempty"`
}
