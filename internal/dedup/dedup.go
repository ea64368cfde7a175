// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dedup decides whether a candidate recipe is already present in a
// set of existing recipes. Checks run in order and stop at the first hit:
// exact source id, near-identical title, then a composite of title,
// ingredient, and nutrition similarity.
package dedup

import (
	"github.com/pdiddy/recipe-curator/internal/similarity"
	"github.com/pdiddy/recipe-curator/pkg/types"
)

// Match strategies reported in Result.MatchedBy.
const (
	BySourceID  = "source-id"
	ByTitle     = "title"
	ByComposite = "composite"
)

// Default thresholds and composite weights.
const (
	DefaultTitleThreshold     = 0.95
	DefaultCompositeThreshold = 0.80
)

// Fingerprint is the comparable form of a recipe. Title is normalized and
// Ingredients is the sorted normalized ingredient-name set.
type Fingerprint struct {
	ID          string
	SourceID    string
	Title       string
	Ingredients []string
	Nutrition   types.NutritionFacts
}

// FromCandidate fingerprints a recipe returned by the source. The ID is
// empty until the recipe is stored.
func FromCandidate(c types.CandidateRecipe) Fingerprint {
	return Fingerprint{
		SourceID:    c.SourceID,
		Title:       similarity.NormalizeTitle(c.Title),
		Ingredients: similarity.IngredientSet(c.Ingredients),
		Nutrition:   c.Nutrition.Facts(),
	}
}

// FromLibrary fingerprints a stored recipe.
func FromLibrary(r types.LibraryRecipe) Fingerprint {
	return Fingerprint{
		ID:          r.ID,
		SourceID:    r.SourceID,
		Title:       similarity.NormalizeTitle(r.Title),
		Ingredients: similarity.IngredientSet(r.Ingredients),
		Nutrition:   r.Nutrition,
	}
}

// Result is the outcome of a duplicate check.
type Result struct {
	Duplicate bool
	MatchedID string
	MatchedBy string
	Score     float64
}

// Weights blends the composite similarity. They sum to 1.
type Weights struct {
	Title      float64
	Ingredient float64
	Nutrition  float64
}

// DefaultWeights is 0.4 title, 0.4 ingredients, 0.2 nutrition.
var DefaultWeights = Weights{Title: 0.4, Ingredient: 0.4, Nutrition: 0.2}

// Detector holds the thresholds used by IsDuplicate.
type Detector struct {
	TitleThreshold     float64
	CompositeThreshold float64
	Weights            Weights
}

// NewDetector returns a Detector with the default thresholds.
func NewDetector() *Detector {
	return &Detector{
		TitleThreshold:     DefaultTitleThreshold,
		CompositeThreshold: DefaultCompositeThreshold,
		Weights:            DefaultWeights,
	}
}

// IsDuplicate checks fp against every recipe in existing.
func (d *Detector) IsDuplicate(fp Fingerprint, existing []Fingerprint) Result {
	if fp.SourceID != "" {
		for _, e := range existing {
			if e.SourceID == fp.SourceID {
				return Result{Duplicate: true, MatchedID: e.ID, MatchedBy: BySourceID, Score: 1}
			}
		}
	}
	for _, e := range existing {
		if s := similarity.String(fp.Title, e.Title); s >= d.TitleThreshold {
			return Result{Duplicate: true, MatchedID: e.ID, MatchedBy: ByTitle, Score: s}
		}
	}
	for _, e := range existing {
		if s := d.Composite(fp, e); s >= d.CompositeThreshold {
			return Result{Duplicate: true, MatchedID: e.ID, MatchedBy: ByComposite, Score: s}
		}
	}
	return Result{}
}

// Composite returns the weighted title, ingredient, and nutrition similarity
// of a and b.
func (d *Detector) Composite(a, b Fingerprint) float64 {
	w := d.Weights
	return w.Title*similarity.String(a.Title, b.Title) +
		w.Ingredient*similarity.Jaccard(a.Ingredients, b.Ingredients) +
		w.Nutrition*NutritionCloseness(a.Nutrition, b.Nutrition)
}

// NutritionCloseness averages the closeness of calories, carbs, protein,
// and fat, skipping pairs where both values are zero. It is 0 when no pair
// is comparable.
func NutritionCloseness(a, b types.NutritionFacts) float64 {
	pairs := [][2]float64{
		{a.Calories, b.Calories},
		{a.Carbs, b.Carbs},
		{a.Protein, b.Protein},
		{a.Fat, b.Fat},
	}
	var sum float64
	n := 0
	for _, p := range pairs {
		if s, ok := similarity.Closeness(p[0], p[1]); ok {
			sum += s
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
