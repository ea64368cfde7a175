// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package strategy holds the declarative import rotation: which named
// filter strategies run on each day of the week, and how the campaign
// phase adjusts their filters.
package strategy

import (
	"fmt"

	"github.com/pdiddy/recipe-curator/pkg/types"
)

// DaysPerWeek is the length of the rotation.
const DaysPerWeek = 7

// DefaultPageSize is the number of search hits requested per call when the
// catalog is built without one.
const DefaultPageSize = 10

// entry is one row of the rotation table.
type entry struct {
	name     string
	category types.Category
	target   int
	keyword  string
}

// rotation is indexed by day of week minus one. Days 1-2 weight breakfast,
// days 3-4 split lunch and dinner, days 5-6 weight snacks, and day 7 tops
// up every category.
var rotation = [DaysPerWeek][]entry{
	{
		{name: "breakfast-classics", category: types.Breakfast, target: 50, keyword: "breakfast"},
		{name: "breakfast-eggs", category: types.Breakfast, target: 50, keyword: "eggs"},
	},
	{
		{name: "breakfast-oats", category: types.Breakfast, target: 60, keyword: "oatmeal"},
		{name: "breakfast-bakes", category: types.Breakfast, target: 40, keyword: "frittata"},
	},
	{
		{name: "lunch-salads", category: types.Lunch, target: 30, keyword: "salad"},
		{name: "dinner-poultry", category: types.Dinner, target: 30, keyword: "chicken"},
	},
	{
		{name: "lunch-soups", category: types.Lunch, target: 30, keyword: "soup"},
		{name: "dinner-seafood", category: types.Dinner, target: 30, keyword: "salmon"},
	},
	{
		{name: "snack-bites", category: types.Snack, target: 60, keyword: "energy bites"},
		{name: "snack-dips", category: types.Snack, target: 40, keyword: "hummus"},
	},
	{
		{name: "snack-bars", category: types.Snack, target: 50, keyword: "protein bars"},
		{name: "snack-savory", category: types.Snack, target: 50, keyword: "snack"},
	},
	{
		{name: "gap-fill-breakfast", category: types.Breakfast, target: 20, keyword: "breakfast"},
		{name: "gap-fill-lunch", category: types.Lunch, target: 20, keyword: "lunch"},
		{name: "gap-fill-dinner", category: types.Dinner, target: 20, keyword: "dinner"},
		{name: "gap-fill-snack", category: types.Snack, target: 20, keyword: "snack"},
	},
}

// variationDiets is the dietary restriction the variations phase adds.
var variationDiets = map[types.Category]string{
	types.Breakfast: "vegetarian",
	types.Lunch:     "vegetarian",
	types.Dinner:    "vegetarian",
	types.Snack:     "gluten free",
}

// Catalog resolves the rotation into concrete strategies whose nutrient
// filters come from the GD guidelines.
type Catalog struct {
	guidelines types.Guidelines
	pageSize   int
}

// New builds a Catalog and validates every strategy it can produce, so a
// bad guideline surfaces at startup rather than mid-run.
func New(g types.Guidelines, pageSize int) (*Catalog, error) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	c := &Catalog{guidelines: g, pageSize: pageSize}
	for _, phase := range []types.Phase{types.PhaseCore, types.PhaseVariations, types.PhaseSeasonal} {
		for dow := 1; dow <= DaysPerWeek; dow++ {
			list, err := c.StrategiesFor(phase, dow)
			if err != nil {
				return nil, err
			}
			for _, s := range list {
				if err := s.Validate(); err != nil {
					return nil, fmt.Errorf("building catalog: %w", err)
				}
			}
		}
	}
	return c, nil
}

// StrategiesFor returns the ordered strategies for a phase and day of the
// week (1-7). The phase changes filters, never the rotation shape.
func (c *Catalog) StrategiesFor(phase types.Phase, dayOfWeek int) ([]types.ImportStrategy, error) {
	if dayOfWeek < 1 || dayOfWeek > DaysPerWeek {
		return nil, fmt.Errorf("day of week %d outside 1-%d", dayOfWeek, DaysPerWeek)
	}
	switch phase {
	case types.PhaseCore, types.PhaseVariations, types.PhaseSeasonal:
	default:
		return nil, fmt.Errorf("no rotation for phase %q", phase)
	}

	rows := rotation[dayOfWeek-1]
	out := make([]types.ImportStrategy, 0, len(rows))
	for _, e := range rows {
		f := c.baseFilters(e.category)
		f.Keyword = e.keyword
		switch phase {
		case types.PhaseVariations:
			f.Diet = variationDiets[e.category]
		case types.PhaseSeasonal:
			f.Sort = "popularity"
		}
		out = append(out, types.ImportStrategy{
			Name:        e.name,
			Category:    e.category,
			TargetCount: e.target,
			Filters:     f,
		})
	}
	return out, nil
}

// CustomStrategy builds a one-off strategy outside the rotation. Zero
// nutrient bounds and page size are filled from the category guideline.
func (c *Catalog) CustomStrategy(category types.Category, targetCount int, filters types.FilterSet) (types.ImportStrategy, error) {
	return c.Complete(types.ImportStrategy{
		Name:        "custom-" + string(category),
		Category:    category,
		TargetCount: targetCount,
		Filters:     filters,
	})
}

// Complete fills s's zero nutrient bounds and page size from the category
// guideline and validates the result.
func (c *Catalog) Complete(s types.ImportStrategy) (types.ImportStrategy, error) {
	if !s.Category.Valid() {
		return types.ImportStrategy{}, fmt.Errorf("strategy %s: unknown category %q", s.Name, s.Category)
	}
	base := c.baseFilters(s.Category)
	f := &s.Filters
	if f.MinCarbs == 0 && f.MaxCarbs == 0 {
		f.MinCarbs, f.MaxCarbs = base.MinCarbs, base.MaxCarbs
	}
	if f.MinProtein == 0 {
		f.MinProtein = base.MinProtein
	}
	if f.MinFiber == 0 {
		f.MinFiber = base.MinFiber
	}
	if f.PageSize <= 0 {
		f.PageSize = c.pageSize
	}
	if err := s.Validate(); err != nil {
		return types.ImportStrategy{}, err
	}
	return s, nil
}

func (c *Catalog) baseFilters(cat types.Category) types.FilterSet {
	g := c.guidelines.For(cat)
	return types.FilterSet{
		MinCarbs:        g.MinCarbs,
		MaxCarbs:        g.MaxCarbs,
		MinProtein:      g.MinProtein,
		MinFiber:        g.MinFiber,
		MaxReadyMinutes: g.MaxTotalMinutes,
		PageSize:        c.pageSize,
	}
}
