// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Sub-score ceilings for the quality score.
const (
	MaxGDCompliance = 40.0
	MaxPracticality = 30.0
	MaxPopularity   = 30.0
)

// Deduction records one reason a sub-score fell short of its ceiling.
type Deduction struct {
	// Component is "gd_compliance", "practicality", "popularity", or "required".
	Component string  `json:"component" yaml:"component"`
	Reason    string  `json:"reason" yaml:"reason"`
	Points    float64 `json:"points" yaml:"points"`
}

// QualityScore is the 0–100 suitability score of a candidate for a category.
type QualityScore struct {
	GDCompliance float64     `json:"gd_compliance" yaml:"gd_compliance"`
	Practicality float64     `json:"practicality" yaml:"practicality"`
	Popularity   float64     `json:"popularity" yaml:"popularity"`
	Total        float64     `json:"total" yaml:"total"`
	Breakdown    []Deduction `json:"breakdown,omitempty" yaml:"breakdown,omitempty"`
}

// FullGDCredit reports whether the GD-compliance sub-score is at its ceiling.
func (q QualityScore) FullGDCredit() bool {
	return q.GDCompliance >= MaxGDCompliance
}

// CategoryScore is a category with its combined confidence.
type CategoryScore struct {
	Category   Category `json:"category" yaml:"category"`
	Confidence float64  `json:"confidence" yaml:"confidence"`
}

// CategoryAssignment is the categorizer's verdict for one candidate.
type CategoryAssignment struct {
	Primary      Category        `json:"primary" yaml:"primary"`
	Confidence   float64         `json:"confidence" yaml:"confidence"`
	Alternatives []CategoryScore `json:"alternatives,omitempty" yaml:"alternatives,omitempty"`
}

// OutcomeKind classifies what happened to one candidate in a run.
type OutcomeKind string

const (
	OutcomeImported          OutcomeKind = "imported"
	OutcomeRejectedQuality   OutcomeKind = "rejected-quality"
	OutcomeRejectedDuplicate OutcomeKind = "rejected-duplicate"
	OutcomeError             OutcomeKind = "error"
)

// ImportOutcome is the record of one candidate (or one failed page fetch)
// processed in a run.
type ImportOutcome struct {
	Kind     OutcomeKind `json:"kind" yaml:"kind"`
	Strategy string      `json:"strategy" yaml:"strategy"`
	SourceID string      `json:"source_id,omitempty" yaml:"source_id,omitempty"`
	Title    string      `json:"title,omitempty" yaml:"title,omitempty"`

	// RecipeID is the library id for imported candidates.
	RecipeID string `json:"recipe_id,omitempty" yaml:"recipe_id,omitempty"`

	Score    *QualityScore       `json:"score,omitempty" yaml:"score,omitempty"`
	Category *CategoryAssignment `json:"category,omitempty" yaml:"category,omitempty"`

	// MatchedID and MatchedBy identify the existing recipe a duplicate hit.
	MatchedID string `json:"matched_id,omitempty" yaml:"matched_id,omitempty"`
	MatchedBy string `json:"matched_by,omitempty" yaml:"matched_by,omitempty"`

	// Reason carries the rejection or error detail.
	Reason string `json:"reason,omitempty" yaml:"reason,omitempty"`
}
