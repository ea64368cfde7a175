// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the recipe-curator pipeline.
// Implements: recipe import and curation records (CandidateRecipe,
//
//	QualityScore, CategoryAssignment, ImportOutcome, DailyReport,
//	WeeklySummary), campaign and strategy configuration values.
package types

import (
	"fmt"
	"strings"
)

// Category is a meal slot a recipe is curated for.
type Category string

const (
	Breakfast Category = "breakfast"
	Lunch     Category = "lunch"
	Dinner    Category = "dinner"
	Snack     Category = "snack"
)

// Categories lists every category in tie-break precedence order.
var Categories = []Category{Breakfast, Lunch, Dinner, Snack}

// Precedence returns the tie-break rank of c (lower wins). Unknown
// categories sort last.
func (c Category) Precedence() int {
	for i, k := range Categories {
		if k == c {
			return i
		}
	}
	return len(Categories)
}

// Valid reports whether c is one of the four known categories.
func (c Category) Valid() bool {
	return c.Precedence() < len(Categories)
}

// ParseCategory accepts a category name case-insensitively. "snacks" is
// accepted as an alias for snack.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if c == "snacks" {
		c = Snack
	}
	if !c.Valid() {
		return "", fmt.Errorf("unknown category %q: want breakfast, lunch, dinner, or snack", s)
	}
	return c, nil
}

// Nutrition holds per-serving nutrition facts as reported by the source.
// A nil field means the source did not report that nutrient.
type Nutrition struct {
	Calories *float64 `json:"calories,omitempty" yaml:"calories,omitempty"`
	Carbs    *float64 `json:"carbs,omitempty" yaml:"carbs,omitempty"`
	Protein  *float64 `json:"protein,omitempty" yaml:"protein,omitempty"`
	Fat      *float64 `json:"fat,omitempty" yaml:"fat,omitempty"`
	Fiber    *float64 `json:"fiber,omitempty" yaml:"fiber,omitempty"`
	Sugar    *float64 `json:"sugar,omitempty" yaml:"sugar,omitempty"`
}

// Missing returns the names of required nutrients the source did not
// report. Sugar is optional.
func (n Nutrition) Missing() []string {
	var missing []string
	for _, f := range []struct {
		name string
		v    *float64
	}{
		{"calories", n.Calories},
		{"carbs", n.Carbs},
		{"protein", n.Protein},
		{"fat", n.Fat},
		{"fiber", n.Fiber},
	} {
		if f.v == nil {
			missing = append(missing, f.name)
		}
	}
	return missing
}

// Facts returns the reported values with unreported nutrients as zero.
// Callers that must distinguish "zero" from "unreported" use Missing first.
func (n Nutrition) Facts() NutritionFacts {
	return NutritionFacts{
		Calories: deref(n.Calories),
		Carbs:    deref(n.Carbs),
		Protein:  deref(n.Protein),
		Fat:      deref(n.Fat),
		Fiber:    deref(n.Fiber),
		Sugar:    deref(n.Sugar),
	}
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// Grams returns a pointer to v, for building Nutrition literals.
func Grams(v float64) *float64 { return &v }

// NutritionFacts is a fully populated nutrition record as stored in the
// library.
type NutritionFacts struct {
	Calories float64 `json:"calories" yaml:"calories"`
	Carbs    float64 `json:"carbs" yaml:"carbs"`
	Protein  float64 `json:"protein" yaml:"protein"`
	Fat      float64 `json:"fat" yaml:"fat"`
	Fiber    float64 `json:"fiber" yaml:"fiber"`
	Sugar    float64 `json:"sugar" yaml:"sugar"`
}

// CandidateRecipe is one recipe as returned by the Recipe Source. It exists
// only for the duration of one validate/dedup/categorize pass.
type CandidateRecipe struct {
	// SourceID is the source-qualified identifier (e.g. "spoonacular:715538").
	SourceID string `json:"source_id" yaml:"source_id"`

	Title        string    `json:"title" yaml:"title"`
	Summary      string    `json:"summary,omitempty" yaml:"summary,omitempty"`
	Ingredients  []string  `json:"ingredients" yaml:"ingredients"`
	Instructions []string  `json:"instructions" yaml:"instructions"`
	Nutrition    Nutrition `json:"nutrition" yaml:"nutrition"`

	PrepMinutes  int `json:"prep_minutes" yaml:"prep_minutes"`
	CookMinutes  int `json:"cook_minutes" yaml:"cook_minutes"`
	ReadyMinutes int `json:"ready_minutes" yaml:"ready_minutes"`
	Servings     int `json:"servings" yaml:"servings"`

	// Rating is on a 0–5 scale; ReviewCount is the number of ratings behind it.
	Rating      float64 `json:"rating" yaml:"rating"`
	ReviewCount int     `json:"review_count" yaml:"review_count"`

	// Difficulty is the source's complexity signal ("easy", "medium",
	// "hard"), empty when the source does not report one.
	Difficulty string `json:"difficulty,omitempty" yaml:"difficulty,omitempty"`

	SourceURL string `json:"source_url,omitempty" yaml:"source_url,omitempty"`
}

// TotalMinutes returns prep+cook time, falling back to the source's
// ready-in time when the split is not reported. Zero means unknown.
func (c CandidateRecipe) TotalMinutes() int {
	if t := c.PrepMinutes + c.CookMinutes; t > 0 {
		return t
	}
	return c.ReadyMinutes
}

// LibraryRecipe is the projection of a stored recipe used for duplicate
// checks and library queries.
type LibraryRecipe struct {
	ID          string         `json:"id" yaml:"id"`
	SourceID    string         `json:"source_id" yaml:"source_id"`
	Title       string         `json:"title" yaml:"title"`
	Category    Category       `json:"category" yaml:"category"`
	Confidence  float64        `json:"confidence" yaml:"confidence"`
	Quality     float64        `json:"quality" yaml:"quality"`
	Ingredients []string       `json:"ingredients" yaml:"ingredients"`
	Nutrition   NutritionFacts `json:"nutrition" yaml:"nutrition"`
	CampaignID  string         `json:"campaign_id,omitempty" yaml:"campaign_id,omitempty"`
	RunID       string         `json:"run_id,omitempty" yaml:"run_id,omitempty"`

	// ImportedOn is the run date (YYYY-MM-DD) that accepted the recipe.
	ImportedOn string `json:"imported_on,omitempty" yaml:"imported_on,omitempty"`
}
