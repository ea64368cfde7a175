// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/recipe-curator/pkg/types"
)

// DefaultBaseURL is the Spoonacular API root.
const DefaultBaseURL = "https://api.spoonacular.com"

const (
	spoonacularPrefix  = "spoonacular:"
	defaultTimeout     = 30 * time.Second
	maxSpoonacularPage = 100
)

// mealTypes maps a category to the Spoonacular "type" filter. Lunch has no
// dedicated type and relies on the keyword.
var mealTypes = map[types.Category]string{
	types.Breakfast: "breakfast",
	types.Dinner:    "main course",
	types.Snack:     "snack",
}

// Spoonacular queries a Spoonacular-compatible recipe API.
type Spoonacular struct {
	Client    *http.Client
	BaseURL   string
	APIKey    string
	UserAgent string

	// Timeout bounds each call.
	Timeout time.Duration
}

// NewSpoonacular builds a client from cfg.
func NewSpoonacular(cfg types.SourceConfig) *Spoonacular {
	base := cfg.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Spoonacular{
		Client:    &http.Client{},
		BaseURL:   strings.TrimRight(base, "/"),
		APIKey:    cfg.APIKey,
		UserAgent: cfg.UserAgent,
		Timeout:   timeout,
	}
}

// Name returns the source identifier.
func (s *Spoonacular) Name() string { return "spoonacular" }

// CheckCredential implements Source.
func (s *Spoonacular) CheckCredential() error {
	if strings.TrimSpace(s.APIKey) == "" {
		return fmt.Errorf("spoonacular: no API key: %w", ErrInvalidCredential)
	}
	return nil
}

// Search runs one complexSearch page.
func (s *Spoonacular) Search(ctx context.Context, q Query) (Page, error) {
	f := q.Filters
	number := f.PageSize
	if number <= 0 {
		number = 10
	}
	number = min(number, maxSpoonacularPage)

	params := url.Values{
		"number":               {strconv.Itoa(number)},
		"offset":               {strconv.Itoa(q.Offset)},
		"addRecipeInformation": {"true"},
	}
	setIf := func(key, val string) {
		if val != "" {
			params.Set(key, val)
		}
	}
	setNum := func(key string, v float64) {
		if v > 0 {
			params.Set(key, strconv.FormatFloat(v, 'f', -1, 64))
		}
	}
	setIf("query", f.Keyword)
	setIf("type", mealTypes[q.Category])
	setIf("diet", f.Diet)
	setIf("sort", f.Sort)
	setNum("minCarbs", f.MinCarbs)
	setNum("maxCarbs", f.MaxCarbs)
	setNum("minProtein", f.MinProtein)
	setNum("minFiber", f.MinFiber)
	if f.MaxReadyMinutes > 0 {
		params.Set("maxReadyTime", strconv.Itoa(f.MaxReadyMinutes))
	}

	var sr searchResponse
	if err := s.get(ctx, "search", "/recipes/complexSearch", params, func(body []byte) error {
		return json.Unmarshal(body, &sr)
	}); err != nil {
		return Page{}, err
	}

	// Exhaustion is judged against the offset we asked for.
	page := Page{Offset: q.Offset, TotalResults: sr.TotalResults}
	for _, r := range sr.Results {
		page.Hits = append(page.Hits, Hit{
			SourceID: spoonacularPrefix + strconv.Itoa(r.ID),
			Title:    r.Title,
			Summary:  strings.TrimSpace(htmlTag.ReplaceAllString(r.Summary, "")),
		})
	}
	return page, nil
}

// Details fetches the full record, with nutrition, for sourceID.
func (s *Spoonacular) Details(ctx context.Context, sourceID string) (types.CandidateRecipe, error) {
	id := strings.TrimPrefix(sourceID, spoonacularPrefix)
	if _, err := strconv.Atoi(id); err != nil {
		return types.CandidateRecipe{}, fmt.Errorf("details: %q is not a spoonacular id: %w", sourceID, ErrNotFound)
	}

	params := url.Values{"includeNutrition": {"true"}}
	var info recipeInfo
	if err := s.get(ctx, "details", "/recipes/"+id+"/information", params, func(body []byte) error {
		if err := validateDetail(body); err != nil {
			return err
		}
		return json.Unmarshal(body, &info)
	}); err != nil {
		return types.CandidateRecipe{}, err
	}
	return info.candidate(), nil
}

// get performs one GET under the per-call timeout and hands a 200 body to
// decode. Failures map onto the source error kinds.
func (s *Spoonacular) get(ctx context.Context, op, path string, params url.Values, decode func([]byte) error) error {
	callCtx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	reqURL := s.BaseURL + path + "?" + params.Encode()
	req, err := http.NewRequestWithContext(callCtx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("creating %s request: %w", op, err)
	}
	if s.UserAgent != "" {
		req.Header.Set("User-Agent", s.UserAgent)
	}
	req.Header.Set("x-api-key", s.APIKey)

	resp, err := s.Client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%s: %w: %v", op, ErrTransient, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return &StatusError{Op: op, Status: resp.StatusCode, Kind: kindForStatus(resp.StatusCode)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s: reading body: %w: %v", op, ErrTransient, err)
	}
	if err := decode(body); err != nil {
		if errors.Is(err, ErrMalformed) {
			return fmt.Errorf("%s: %w", op, err)
		}
		return fmt.Errorf("%s: %w: %v", op, ErrMalformed, err)
	}
	return nil
}

// Spoonacular JSON structures.
type searchResponse struct {
	Results []struct {
		ID      int    `json:"id"`
		Title   string `json:"title"`
		Summary string `json:"summary"`
	} `json:"results"`
	Offset       int `json:"offset"`
	Number       int `json:"number"`
	TotalResults int `json:"totalResults"`
}

type recipeInfo struct {
	ID                  int     `json:"id"`
	Title               string  `json:"title"`
	Summary             string  `json:"summary"`
	ReadyInMinutes      int     `json:"readyInMinutes"`
	PreparationMinutes  *int    `json:"preparationMinutes"`
	CookingMinutes      *int    `json:"cookingMinutes"`
	Servings            int     `json:"servings"`
	SourceURL           string  `json:"sourceUrl"`
	SpoonacularScore    float64 `json:"spoonacularScore"`
	AggregateLikes      int     `json:"aggregateLikes"`
	Instructions        string  `json:"instructions"`
	ExtendedIngredients []struct {
		Original string `json:"original"`
	} `json:"extendedIngredients"`
	AnalyzedInstructions []struct {
		Steps []struct {
			Step string `json:"step"`
		} `json:"steps"`
	} `json:"analyzedInstructions"`
	Nutrition *struct {
		Nutrients []struct {
			Name   string  `json:"name"`
			Amount float64 `json:"amount"`
		} `json:"nutrients"`
	} `json:"nutrition"`
}

var htmlTag = regexp.MustCompile(`<[^>]*>`)

func (r recipeInfo) candidate() types.CandidateRecipe {
	c := types.CandidateRecipe{
		SourceID:     spoonacularPrefix + strconv.Itoa(r.ID),
		Title:        strings.TrimSpace(r.Title),
		Summary:      strings.TrimSpace(htmlTag.ReplaceAllString(r.Summary, "")),
		ReadyMinutes: r.ReadyInMinutes,
		Servings:     r.Servings,
		SourceURL:    r.SourceURL,
		ReviewCount:  r.AggregateLikes,
	}
	// spoonacularScore is 0-100; ratings are 0-5.
	c.Rating = max(0, min(5, r.SpoonacularScore/20))
	if r.PreparationMinutes != nil && *r.PreparationMinutes > 0 {
		c.PrepMinutes = *r.PreparationMinutes
	}
	if r.CookingMinutes != nil && *r.CookingMinutes > 0 {
		c.CookMinutes = *r.CookingMinutes
	}

	for _, ing := range r.ExtendedIngredients {
		if line := strings.TrimSpace(ing.Original); line != "" {
			c.Ingredients = append(c.Ingredients, line)
		}
	}

	for _, block := range r.AnalyzedInstructions {
		for _, st := range block.Steps {
			if step := strings.TrimSpace(st.Step); step != "" {
				c.Instructions = append(c.Instructions, step)
			}
		}
	}
	if len(c.Instructions) == 0 {
		if text := strings.TrimSpace(htmlTag.ReplaceAllString(r.Instructions, "\n")); text != "" {
			for _, line := range strings.Split(text, "\n") {
				if line = strings.TrimSpace(line); line != "" {
					c.Instructions = append(c.Instructions, line)
				}
			}
		}
	}

	if r.Nutrition != nil {
		for _, n := range r.Nutrition.Nutrients {
			v := n.Amount
			switch n.Name {
			case "Calories":
				c.Nutrition.Calories = &v
			case "Carbohydrates":
				c.Nutrition.Carbs = &v
			case "Protein":
				c.Nutrition.Protein = &v
			case "Fat":
				c.Nutrition.Fat = &v
			case "Fiber":
				c.Nutrition.Fiber = &v
			case "Sugar":
				c.Nutrition.Sugar = &v
			}
		}
	}
	return c
}
