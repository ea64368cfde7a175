// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "fmt"

// CategoryGuideline is the externally supplied GD target for one category.
// Values are per serving.
type CategoryGuideline struct {
	MinCarbs    float64 `json:"min_carbs" yaml:"min_carbs" mapstructure:"min_carbs"`
	MaxCarbs    float64 `json:"max_carbs" yaml:"max_carbs" mapstructure:"max_carbs"`
	MinProtein  float64 `json:"min_protein" yaml:"min_protein" mapstructure:"min_protein"`
	MinFiber    float64 `json:"min_fiber" yaml:"min_fiber" mapstructure:"min_fiber"`
	MinCalories float64 `json:"min_calories" yaml:"min_calories" mapstructure:"min_calories"`
	MaxCalories float64 `json:"max_calories" yaml:"max_calories" mapstructure:"max_calories"`

	// MaxTotalMinutes is the comfortable prep+cook ceiling.
	MaxTotalMinutes int `json:"max_total_minutes" yaml:"max_total_minutes" mapstructure:"max_total_minutes"`

	// MaxIngredients is the comfortable ingredient-count ceiling.
	MaxIngredients int `json:"max_ingredients" yaml:"max_ingredients" mapstructure:"max_ingredients"`
}

// Guidelines maps each category to its GD targets.
type Guidelines struct {
	Breakfast CategoryGuideline `json:"breakfast" yaml:"breakfast" mapstructure:"breakfast"`
	Lunch     CategoryGuideline `json:"lunch" yaml:"lunch" mapstructure:"lunch"`
	Dinner    CategoryGuideline `json:"dinner" yaml:"dinner" mapstructure:"dinner"`
	Snack     CategoryGuideline `json:"snack" yaml:"snack" mapstructure:"snack"`
}

// For returns the guideline for c. Unknown categories get the lunch values.
func (g Guidelines) For(c Category) CategoryGuideline {
	switch c {
	case Breakfast:
		return g.Breakfast
	case Dinner:
		return g.Dinner
	case Snack:
		return g.Snack
	default:
		return g.Lunch
	}
}

// Validate checks every category has a usable carb range and ceilings.
func (g Guidelines) Validate() error {
	for _, c := range Categories {
		cg := g.For(c)
		if cg.MaxCarbs <= 0 || cg.MinCarbs < 0 || cg.MinCarbs > cg.MaxCarbs {
			return fmt.Errorf("guidelines.%s: invalid carb range %.0f-%.0f", c, cg.MinCarbs, cg.MaxCarbs)
		}
		if cg.MaxCalories > 0 && cg.MinCalories > cg.MaxCalories {
			return fmt.Errorf("guidelines.%s: invalid calorie range %.0f-%.0f", c, cg.MinCalories, cg.MaxCalories)
		}
		if cg.MaxTotalMinutes <= 0 || cg.MaxIngredients <= 0 {
			return fmt.Errorf("guidelines.%s: time and ingredient ceilings must be positive", c)
		}
	}
	return nil
}

// DefaultGuidelines returns the built-in per-serving GD targets.
func DefaultGuidelines() Guidelines {
	return Guidelines{
		Breakfast: CategoryGuideline{
			MinCarbs: 15, MaxCarbs: 30, MinProtein: 7, MinFiber: 3,
			MinCalories: 200, MaxCalories: 400,
			MaxTotalMinutes: 30, MaxIngredients: 12,
		},
		Lunch: CategoryGuideline{
			MinCarbs: 30, MaxCarbs: 45, MinProtein: 15, MinFiber: 4,
			MinCalories: 350, MaxCalories: 550,
			MaxTotalMinutes: 45, MaxIngredients: 12,
		},
		Dinner: CategoryGuideline{
			MinCarbs: 30, MaxCarbs: 45, MinProtein: 20, MinFiber: 4,
			MinCalories: 400, MaxCalories: 650,
			MaxTotalMinutes: 60, MaxIngredients: 14,
		},
		Snack: CategoryGuideline{
			MinCarbs: 10, MaxCarbs: 20, MinProtein: 5, MinFiber: 2,
			MinCalories: 100, MaxCalories: 250,
			MaxTotalMinutes: 20, MaxIngredients: 8,
		},
	}
}
