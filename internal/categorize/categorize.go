// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package categorize assigns a meal category and confidence to a candidate
// recipe from nutrition, keyword, ingredient, and complexity signals.
package categorize

import (
	"math"
	"sort"
	"strings"

	"github.com/pdiddy/recipe-curator/internal/similarity"
	"github.com/pdiddy/recipe-curator/pkg/types"
)

// Weights combines the four per-category signals. They sum to 1.
type Weights struct {
	Nutrition  float64
	Keyword    float64
	Ingredient float64
	Complexity float64
}

// DefaultWeights are the fixed signal weights.
var DefaultWeights = Weights{Nutrition: 0.35, Keyword: 0.30, Ingredient: 0.20, Complexity: 0.15}

// keywords are category-indicative words matched against title and summary.
var keywords = map[types.Category][]string{
	types.Breakfast: {"breakfast", "pancake", "waffle", "french toast", "oatmeal", "overnight oats",
		"porridge", "omelet", "omelette", "frittata", "scrambled", "granola", "smoothie",
		"muffin", "morning", "brunch", "parfait", "hash"},
	types.Lunch: {"lunch", "soup", "salad", "sandwich", "wrap", "bowl", "pita", "quesadilla", "lettuce cups"},
	types.Dinner: {"dinner", "chili", "risotto", "pasta", "casserole", "stew", "curry", "roast",
		"grilled", "stir fry", "stir-fry", "salmon", "steak", "tacos", "enchilada", "lasagna",
		"meatloaf", "sheet pan", "skillet"},
	types.Snack: {"snack", "hummus", "dip", "bar", "bars", "bite", "bites", "balls", "trail mix",
		"crackers", "popcorn", "energy", "roll-ups", "chips", "deviled eggs", "jerky", "edamame"},
}

// ingredients are category-typical normalized ingredient names.
var ingredients = map[types.Category][]string{
	types.Breakfast: {"egg", "oat", "yogurt", "greek yogurt", "berry", "blueberry", "strawberry",
		"chia seed", "cottage cheese", "wheat bread", "almond milk", "milk", "banana"},
	types.Lunch: {"lettuce", "mixed green", "tortilla", "chickpea", "quinoa", "cucumber",
		"tuna", "turkey", "tomato", "avocado", "black bean", "feta"},
	types.Dinner: {"chicken breast", "chicken", "salmon", "beef", "pork", "shrimp", "brown rice",
		"broccoli", "zucchini", "onion", "garlic", "wheat pasta", "lentil", "sweet potato"},
	types.Snack: {"almond", "walnut", "peanut butter", "almond butter", "apple", "celery",
		"carrot", "hummus", "cheese", "date", "dark chocolate", "pumpkin seed", "edamame"},
}

// Categorizer scores a candidate against every category.
type Categorizer struct {
	Guidelines types.Guidelines
	Weights    Weights
}

// New returns a Categorizer using DefaultWeights.
func New(g types.Guidelines) *Categorizer {
	return &Categorizer{Guidelines: g, Weights: DefaultWeights}
}

// Signals is the per-category breakdown behind a confidence.
type Signals struct {
	Nutrition  float64
	Keyword    float64
	Ingredient float64
	Complexity float64
}

// Categorize returns the highest-scoring category as primary and the other
// three, sorted by descending confidence, as alternatives. Ties resolve by
// breakfast > lunch > dinner > snack.
func (c *Categorizer) Categorize(r types.CandidateRecipe) types.CategoryAssignment {
	scores := make([]types.CategoryScore, 0, len(types.Categories))
	for _, cat := range types.Categories {
		scores = append(scores, types.CategoryScore{
			Category:   cat,
			Confidence: c.combine(c.Signals(r, cat)),
		})
	}
	sort.SliceStable(scores, func(i, j int) bool {
		if scores[i].Confidence != scores[j].Confidence {
			return scores[i].Confidence > scores[j].Confidence
		}
		return scores[i].Category.Precedence() < scores[j].Category.Precedence()
	})
	return types.CategoryAssignment{
		Primary:      scores[0].Category,
		Confidence:   scores[0].Confidence,
		Alternatives: scores[1:],
	}
}

func (c *Categorizer) combine(s Signals) float64 {
	w := c.Weights
	v := w.Nutrition*s.Nutrition + w.Keyword*s.Keyword + w.Ingredient*s.Ingredient + w.Complexity*s.Complexity
	// Round to remove float noise so equal evidence ties exactly.
	return math.Round(math.Max(0, math.Min(1, v))*1e6) / 1e6
}

// Signals computes the four raw signals, each in [0,1], of r for cat.
func (c *Categorizer) Signals(r types.CandidateRecipe, cat types.Category) Signals {
	g := c.Guidelines.For(cat)
	return Signals{
		Nutrition:  nutritionMatch(r.Nutrition.Facts(), g),
		Keyword:    keywordMatch(r.Title+" "+r.Summary, cat),
		Ingredient: ingredientMatch(similarity.IngredientSet(r.Ingredients), cat),
		Complexity: complexityFit(r.TotalMinutes(), g, cat),
	}
}

// nutritionMatch averages how closely calories and carbs sit within the
// category's ranges. Distance outside a range decays over one range width.
func nutritionMatch(n types.NutritionFacts, g types.CategoryGuideline) float64 {
	carbs := rangeFit(n.Carbs, g.MinCarbs, g.MaxCarbs)
	if g.MaxCalories <= 0 {
		return carbs
	}
	calories := rangeFit(n.Calories, g.MinCalories, g.MaxCalories)
	return (carbs + calories) / 2
}

func rangeFit(x, lo, hi float64) float64 {
	width := hi - lo
	if width <= 0 {
		width = math.Max(hi, 1)
	}
	var off float64
	switch {
	case x < lo:
		off = lo - x
	case x > hi:
		off = x - hi
	default:
		return 1
	}
	return math.Max(0, 1-off/width)
}

// keywordMatch scores 1 when the category name itself or two indicative
// words appear, 0.5 for a single indicative word.
func keywordMatch(text string, cat types.Category) float64 {
	text = " " + similarity.NormalizeTitle(text) + " "
	if strings.Contains(text, " "+string(cat)+" ") {
		return 1
	}
	hits := 0
	for _, kw := range keywords[cat] {
		if strings.Contains(text, " "+similarity.NormalizeTitle(kw)+" ") {
			hits++
		}
	}
	return math.Min(1, float64(hits)/2)
}

// ingredientMatch scores 1 at three or more category-typical ingredients.
func ingredientMatch(names []string, cat types.Category) float64 {
	typical := make(map[string]bool, len(ingredients[cat]))
	for _, n := range ingredients[cat] {
		typical[n] = true
	}
	hits := 0
	for _, n := range names {
		if typical[n] {
			hits++
			continue
		}
		// "cheddar cheese" counts for "cheese".
		if i := strings.LastIndexByte(n, ' '); i >= 0 && typical[n[i+1:]] {
			hits++
		}
	}
	return math.Min(1, float64(hits)/3)
}

// complexityFit penalizes long preparation for snacks sharply, for
// breakfast and lunch gently, and not at all for dinner.
func complexityFit(minutes int, g types.CategoryGuideline, cat types.Category) float64 {
	if minutes <= 0 {
		return 0.5
	}
	ceiling := float64(g.MaxTotalMinutes)
	if ceiling <= 0 || float64(minutes) <= ceiling {
		return 1
	}
	over := (float64(minutes) - ceiling) / ceiling
	switch cat {
	case types.Dinner:
		return 1
	case types.Snack:
		return math.Max(0, 1-over)
	default:
		return math.Max(0, 1-over/2)
	}
}
