// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package quality scores candidate recipes for GD suitability and
// practicality. Scores are deterministic pure functions of the candidate,
// the category, and the configured guidelines.
package quality

import (
	"fmt"
	"math"
	"strings"

	"github.com/pdiddy/recipe-curator/pkg/types"
)

// Split of the GD-compliance ceiling across its three checks.
const (
	carbPoints    = 24.0
	proteinPoints = 8.0
	fiberPoints   = 8.0
)

// Split of the practicality ceiling.
const (
	timePoints          = 15.0
	ingredientPoints    = 15.0
	perExtraIngredient  = 1.5
	difficultyDeduction = 5.0
)

// Split of the popularity ceiling.
const (
	ratingPoints = 20.0
	volumePoints = 10.0
)

// Defaults for the tunable constants.
const (
	DefaultMinScore        = 50.0
	DefaultCarbTolerance   = 15.0 // one carb choice
	DefaultReviewThreshold = 200
	minIngredients         = 3
)

// Validator scores candidates against per-category guidelines.
type Validator struct {
	Guidelines types.Guidelines

	// MinScore is the acceptance threshold on the total.
	MinScore float64

	// CarbTolerance is how far (in grams) carbs may sit outside the
	// category range before carb credit reaches zero.
	CarbTolerance float64

	// ReviewThreshold is the review count at which popularity confidence
	// saturates; growth before it is logarithmic.
	ReviewThreshold int
}

// New returns a Validator with default tolerances. minScore is used as
// given; 0 accepts every candidate that passes the required-field check.
func New(g types.Guidelines, minScore float64) *Validator {
	return &Validator{
		Guidelines:      g,
		MinScore:        minScore,
		CarbTolerance:   DefaultCarbTolerance,
		ReviewThreshold: DefaultReviewThreshold,
	}
}

// Acceptable reports whether s clears the acceptance threshold.
func (v *Validator) Acceptable(s types.QualityScore) bool {
	return s.Total >= v.MinScore
}

// CheckRequired rejects candidates that cannot be scored: no title, fewer
// than three ingredients, no instructions, or unreported nutrition. The
// returned error wraps types.ErrMissingNutrition when nutrients are absent.
func CheckRequired(c types.CandidateRecipe) error {
	var problems []string
	if strings.TrimSpace(c.Title) == "" {
		problems = append(problems, "missing title")
	}
	if len(c.Ingredients) < minIngredients {
		problems = append(problems, fmt.Sprintf("too few ingredients (%d, minimum %d)", len(c.Ingredients), minIngredients))
	}
	if len(c.Instructions) == 0 {
		problems = append(problems, "missing instructions")
	}
	missing := c.Nutrition.Missing()
	if len(missing) > 0 {
		problems = append(problems, "nutrition not reported: "+strings.Join(missing, ", "))
	}
	if len(problems) == 0 {
		return nil
	}
	err := fmt.Errorf("candidate %s: %s", c.SourceID, strings.Join(problems, "; "))
	if len(missing) > 0 {
		return fmt.Errorf("%w: %w", types.ErrMissingNutrition, err)
	}
	return err
}

// Score computes the quality score of c for category. It returns an error
// only when CheckRequired fails; the breakdown lists every deduction.
func (v *Validator) Score(c types.CandidateRecipe, category types.Category) (types.QualityScore, error) {
	if err := CheckRequired(c); err != nil {
		return types.QualityScore{}, err
	}
	g := v.Guidelines.For(category)

	var s types.QualityScore
	s.GDCompliance = v.gdCompliance(c.Nutrition.Facts(), g, &s.Breakdown)
	s.Practicality = v.practicality(c, g, &s.Breakdown)
	s.Popularity = v.popularity(c, &s.Breakdown)
	s.Total = clamp(s.GDCompliance+s.Practicality+s.Popularity, 0, 100)
	return s, nil
}

func (v *Validator) gdCompliance(n types.NutritionFacts, g types.CategoryGuideline, out *[]types.Deduction) float64 {
	carbs := carbPoints
	if off := outside(n.Carbs, g.MinCarbs, g.MaxCarbs); off > 0 {
		tol := v.CarbTolerance
		if tol <= 0 {
			tol = DefaultCarbTolerance
		}
		carbs = carbPoints * math.Max(0, 1-off/tol)
		deduct(out, "gd_compliance", carbPoints-carbs,
			"carbs %.0fg outside %.0f-%.0fg range", n.Carbs, g.MinCarbs, g.MaxCarbs)
	}

	protein := ratioCredit(n.Protein, g.MinProtein, proteinPoints)
	deduct(out, "gd_compliance", proteinPoints-protein,
		"protein %.0fg below %.0fg minimum", n.Protein, g.MinProtein)

	fiber := ratioCredit(n.Fiber, g.MinFiber, fiberPoints)
	deduct(out, "gd_compliance", fiberPoints-fiber,
		"fiber %.0fg below %.0fg minimum", n.Fiber, g.MinFiber)

	return clamp(carbs+protein+fiber, 0, types.MaxGDCompliance)
}

func (v *Validator) practicality(c types.CandidateRecipe, g types.CategoryGuideline, out *[]types.Deduction) float64 {
	minutes := c.TotalMinutes()
	timeCredit := timePoints
	switch {
	case minutes <= 0:
		timeCredit = timePoints / 2
		deduct(out, "practicality", timePoints-timeCredit, "prep and cook time not reported")
	case minutes > g.MaxTotalMinutes:
		over := float64(minutes-g.MaxTotalMinutes) / float64(g.MaxTotalMinutes)
		timeCredit = timePoints * math.Max(0, 1-over)
		deduct(out, "practicality", timePoints-timeCredit,
			"total time %d min exceeds %d min", minutes, g.MaxTotalMinutes)
	}

	count := len(c.Ingredients)
	ingCredit := ingredientPoints
	if extra := count - g.MaxIngredients; extra > 0 {
		ingCredit = math.Max(0, ingredientPoints-perExtraIngredient*float64(extra))
		deduct(out, "practicality", ingredientPoints-ingCredit,
			"%d ingredients exceeds %d", count, g.MaxIngredients)
	}

	total := timeCredit + ingCredit
	difficulty := strings.ToLower(strings.TrimSpace(c.Difficulty))
	switch {
	case difficulty == "hard":
		total -= difficultyDeduction
		deduct(out, "practicality", difficultyDeduction, "source rates recipe hard")
	case difficulty == "" && count > g.MaxIngredients:
		total -= difficultyDeduction
		deduct(out, "practicality", difficultyDeduction, "difficulty unknown with a long ingredient list")
	}
	return clamp(total, 0, types.MaxPracticality)
}

// popularity scales the rating by a review-volume confidence that grows
// logarithmically and saturates at ReviewThreshold reviews.
func (v *Validator) popularity(c types.CandidateRecipe, out *[]types.Deduction) float64 {
	threshold := v.ReviewThreshold
	if threshold <= 0 {
		threshold = DefaultReviewThreshold
	}
	reviews := max(c.ReviewCount, 0)
	confidence := math.Min(1, math.Log1p(float64(reviews))/math.Log1p(float64(threshold)))
	rating := clamp(c.Rating, 0, 5)

	ratingCredit := ratingPoints * (rating / 5) * confidence
	volumeCredit := volumePoints * confidence
	if reviews == 0 {
		deduct(out, "popularity", types.MaxPopularity, "no ratings reported")
		return 0
	}
	deduct(out, "popularity", ratingPoints*confidence-ratingCredit, "rating %.1f of 5", rating)
	deduct(out, "popularity", (ratingPoints+volumePoints)*(1-confidence),
		"%d reviews below %d review threshold", reviews, threshold)
	return clamp(ratingCredit+volumeCredit, 0, types.MaxPopularity)
}

// outside returns how far x sits outside [lo,hi], zero when inside.
func outside(x, lo, hi float64) float64 {
	switch {
	case x < lo:
		return lo - x
	case hi > 0 && x > hi:
		return x - hi
	default:
		return 0
	}
}

// ratioCredit grants full points at or above floor, proportional credit below.
func ratioCredit(x, floor, points float64) float64 {
	if floor <= 0 || x >= floor {
		return points
	}
	if x <= 0 {
		return 0
	}
	return points * x / floor
}

func deduct(out *[]types.Deduction, component string, points float64, format string, args ...any) {
	if points < 0.005 {
		return
	}
	*out = append(*out, types.Deduction{
		Component: component,
		Reason:    fmt.Sprintf(format, args...),
		Points:    math.Round(points*100) / 100,
	})
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
