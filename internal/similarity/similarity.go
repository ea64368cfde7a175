// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package similarity provides the pure string and set similarity measures
// used by deduplication and categorization. Every measure returns a value
// in [0,1], is symmetric, and is 1.0 for two empty inputs and 0.0 when
// exactly one input is empty.
package similarity

import (
	"sort"
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
	"github.com/jinzhu/inflection"
)

// Normalize lower-cases s and collapses runs of whitespace to single spaces.
func Normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// NormalizeTitle is Normalize with punctuation removed, so that
// "Banana-Oat Pancakes!" and "banana oat pancakes" compare equal.
func NormalizeTitle(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// String returns 1 − editDistance/maxLen over the normalized inputs,
// measured in runes.
func String(a, b string) float64 {
	a, b = Normalize(a), Normalize(b)
	switch {
	case a == "" && b == "":
		return 1
	case a == "" || b == "":
		return 0
	case a == b:
		return 1
	}
	maxLen := max(len([]rune(a)), len([]rune(b)))
	d := levenshtein.ComputeDistance(a, b)
	return clamp01(1 - float64(d)/float64(maxLen))
}

// Jaccard returns |a∩b| / |a∪b| over two token sets. Duplicate tokens are
// counted once.
func Jaccard(a, b []string) float64 {
	setA, setB := toSet(a), toSet(b)
	switch {
	case len(setA) == 0 && len(setB) == 0:
		return 1
	case len(setA) == 0 || len(setB) == 0:
		return 0
	}
	inter := 0
	for k := range setA {
		if _, ok := setB[k]; ok {
			inter++
		}
	}
	union := len(setA) + len(setB) - inter
	return float64(inter) / float64(union)
}

// IngredientJaccard normalizes both ingredient lists with IngredientSet
// before computing Jaccard similarity.
func IngredientJaccard(a, b []string) float64 {
	return Jaccard(IngredientSet(a), IngredientSet(b))
}

func toSet(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		if t != "" {
			set[t] = struct{}{}
		}
	}
	return set
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

// unitWords are measurement and packaging words stripped from ingredient names.
var unitWords = map[string]bool{
	"cup": true, "c": true, "tablespoon": true, "tbsp": true, "tbs": true,
	"teaspoon": true, "tsp": true, "ounce": true, "oz": true, "pound": true,
	"lb": true, "gram": true, "g": true, "kilogram": true, "kg": true,
	"milliliter": true, "ml": true, "liter": true, "l": true, "pinch": true,
	"dash": true, "clove": true, "slice": true, "can": true, "package": true,
	"pkg": true, "stick": true, "handful": true, "piece": true, "quart": true,
	"pint": true, "of": true, "to": true, "taste": true, "and": true, "or": true,
}

// descriptorWords are preparation and size words that do not change what
// the ingredient is.
var descriptorWords = map[string]bool{
	"fresh": true, "frozen": true, "canned": true, "dried": true,
	"chopped": true, "diced": true, "sliced": true, "minced": true,
	"ground": true, "whole": true, "large": true, "small": true,
	"medium": true, "organic": true, "low-fat": true, "fat-free": true,
	"lowfat": true, "nonfat": true, "boneless": true, "skinless": true,
	"cooked": true, "raw": true, "unsalted": true, "salted": true,
	"finely": true, "roughly": true, "grated": true, "shredded": true,
	"peeled": true, "ripe": true, "plain": true, "extra": true, "virgin": true,
	"divided": true, "optional": true, "packed": true, "softened": true,
	"melted": true, "rolled": true,
}

// Ingredient reduces one ingredient line to its comparable name: quantities,
// units, descriptors, and parenthetical notes are removed and each word is
// folded to its singular form. It returns "" when nothing remains.
func Ingredient(line string) string {
	s := stripParens(strings.ToLower(line))
	if i := strings.IndexByte(s, ','); i >= 0 {
		s = s[:i]
	}
	words := strings.FieldsFunc(s, func(r rune) bool {
		return !(unicode.IsLetter(r) || r == '-')
	})
	kept := words[:0]
	for _, w := range words {
		w = strings.Trim(w, "-")
		if w == "" || descriptorWords[w] {
			continue
		}
		w = inflection.Singular(w)
		if unitWords[w] {
			continue
		}
		kept = append(kept, w)
	}
	return strings.Join(kept, " ")
}

// stripParens drops parenthetical notes such as "(15 oz)" or "(optional)".
func stripParens(s string) string {
	var b strings.Builder
	depth := 0
	for _, r := range s {
		switch {
		case r == '(':
			depth++
		case r == ')' && depth > 0:
			depth--
		case depth == 0:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// IngredientSet returns the sorted, de-duplicated normalized names of lines.
func IngredientSet(lines []string) []string {
	set := make(map[string]struct{}, len(lines))
	for _, l := range lines {
		if n := Ingredient(l); n != "" {
			set[n] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Closeness returns 1 − |a−b|/max(a,b) for two non-negative quantities.
// The ok result is false when both are zero and the pair carries no signal.
func Closeness(a, b float64) (score float64, ok bool) {
	if a < 0 {
		a = 0
	}
	if b < 0 {
		b = 0
	}
	m := max(a, b)
	if m == 0 {
		return 0, false
	}
	d := a - b
	if d < 0 {
		d = -d
	}
	return clamp01(1 - d/m), true
}
