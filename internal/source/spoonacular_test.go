// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/recipe-curator/pkg/types"
)

const detailJSON = `{
  "id": 715538,
  "title": "Banana Oat Pancakes",
  "summary": "A <b>fluffy</b> breakfast stack.",
  "readyInMinutes": 25,
  "preparationMinutes": 10,
  "cookingMinutes": 10,
  "servings": 2,
  "sourceUrl": "https://example.com/pancakes",
  "spoonacularScore": 90,
  "aggregateLikes": 310,
  "extendedIngredients": [
    {"original": "2 ripe bananas"},
    {"original": "1 cup rolled oats"},
    {"original": "2 eggs"}
  ],
  "analyzedInstructions": [
    {"steps": [{"step": "Blend everything."}, {"step": "Cook on a griddle."}]}
  ],
  "nutrition": {
    "nutrients": [
      {"name": "Calories", "amount": 320, "unit": "kcal"},
      {"name": "Carbohydrates", "amount": 28, "unit": "g"},
      {"name": "Protein", "amount": 12, "unit": "g"},
      {"name": "Fat", "amount": 8, "unit": "g"},
      {"name": "Fiber", "amount": 5, "unit": "g"},
      {"name": "Sugar", "amount": 9, "unit": "g"}
    ]
  }
}`

func testClient(ts *httptest.Server) *Spoonacular {
	s := NewSpoonacular(types.SourceConfig{
		HTTPConfig: types.HTTPConfig{Timeout: 2 * time.Second, UserAgent: "recipe-curator/test"},
		BaseURL:    ts.URL,
		APIKey:     "test-key",
	})
	s.Client = ts.Client()
	return s
}

func TestSearch_RequestParams(t *testing.T) {
	var captured *http.Request
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = r
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"results":[{"id":1,"title":"A","summary":"A <b>quick</b> bowl."},{"id":2,"title":"B"}],"offset":20,"number":2,"totalResults":22}`)
	}))
	defer ts.Close()

	page, err := testClient(ts).Search(context.Background(), Query{
		Category: types.Breakfast,
		Offset:   20,
		Filters: types.FilterSet{
			Keyword: "oatmeal", Diet: "vegetarian", MinCarbs: 15, MaxCarbs: 30,
			MinProtein: 7, MinFiber: 3, MaxReadyMinutes: 30, Sort: "popularity", PageSize: 2,
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "/recipes/complexSearch", captured.URL.Path)
	q := captured.URL.Query()
	assert.Equal(t, "oatmeal", q.Get("query"))
	assert.Equal(t, "breakfast", q.Get("type"))
	assert.Equal(t, "vegetarian", q.Get("diet"))
	assert.Equal(t, "15", q.Get("minCarbs"))
	assert.Equal(t, "30", q.Get("maxCarbs"))
	assert.Equal(t, "7", q.Get("minProtein"))
	assert.Equal(t, "3", q.Get("minFiber"))
	assert.Equal(t, "30", q.Get("maxReadyTime"))
	assert.Equal(t, "popularity", q.Get("sort"))
	assert.Equal(t, "2", q.Get("number"))
	assert.Equal(t, "20", q.Get("offset"))
	assert.Equal(t, "true", q.Get("addRecipeInformation"))
	assert.Equal(t, "test-key", captured.Header.Get("x-api-key"))
	assert.Equal(t, "recipe-curator/test", captured.Header.Get("User-Agent"))

	require.Len(t, page.Hits, 2)
	assert.Equal(t, "spoonacular:1", page.Hits[0].SourceID)
	assert.Equal(t, "B", page.Hits[1].Title)
	assert.Equal(t, "A quick bowl.", page.Hits[0].Summary)
	assert.Empty(t, page.Hits[1].Summary)
	assert.True(t, page.Exhausted())
}

func TestSearch_ExhaustionUsesRequestedOffset(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		exhausted bool
	}{
		{"offset missing from response", `{"results":[{"id":1,"title":"A"},{"id":2,"title":"B"}],"totalResults":22}`, true},
		{"offset echoed wrong", `{"results":[{"id":1,"title":"A"},{"id":2,"title":"B"}],"offset":0,"totalResults":22}`, true},
		{"more pages", `{"results":[{"id":1,"title":"A"},{"id":2,"title":"B"}],"offset":20,"totalResults":30}`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				fmt.Fprint(w, tt.body)
			}))
			defer ts.Close()

			page, err := testClient(ts).Search(context.Background(), Query{Category: types.Lunch, Offset: 20})
			require.NoError(t, err)
			assert.Equal(t, 20, page.Offset)
			assert.Equal(t, tt.exhausted, page.Exhausted())
		})
	}
}

func TestSearch_LunchHasNoType(t *testing.T) {
	var captured *http.Request
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = r
		fmt.Fprint(w, `{"results":[],"offset":0,"number":10,"totalResults":0}`)
	}))
	defer ts.Close()

	page, err := testClient(ts).Search(context.Background(), Query{Category: types.Lunch, Filters: types.FilterSet{Keyword: "soup"}})
	require.NoError(t, err)
	assert.False(t, captured.URL.Query().Has("type"))
	assert.False(t, captured.URL.Query().Has("diet"))
	assert.True(t, page.Exhausted())
}

func TestDetails_MapsRecord(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/recipes/715538/information", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("includeNutrition"))
		fmt.Fprint(w, detailJSON)
	}))
	defer ts.Close()

	c, err := testClient(ts).Details(context.Background(), "spoonacular:715538")
	require.NoError(t, err)

	assert.Equal(t, "spoonacular:715538", c.SourceID)
	assert.Equal(t, "Banana Oat Pancakes", c.Title)
	assert.Equal(t, "A fluffy breakfast stack.", c.Summary)
	assert.Equal(t, []string{"2 ripe bananas", "1 cup rolled oats", "2 eggs"}, c.Ingredients)
	assert.Equal(t, []string{"Blend everything.", "Cook on a griddle."}, c.Instructions)
	assert.Equal(t, 20, c.TotalMinutes())
	assert.InDelta(t, 4.5, c.Rating, 1e-9)
	assert.Equal(t, 310, c.ReviewCount)
	assert.Empty(t, c.Nutrition.Missing())
	assert.Equal(t, 28.0, *c.Nutrition.Carbs)
	assert.Equal(t, 9.0, *c.Nutrition.Sugar)
}

func TestDetails_MissingNutritionIsNotMalformed(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"id":5,"title":"Toast","extendedIngredients":[{"original":"1 slice bread"}],"instructions":"<ol><li>Toast it.</li><li>Eat.</li></ol>"}`)
	}))
	defer ts.Close()

	c, err := testClient(ts).Details(context.Background(), "spoonacular:5")
	require.NoError(t, err)
	assert.Equal(t, []string{"Toast it.", "Eat."}, c.Instructions)
	assert.Len(t, c.Nutrition.Missing(), 5)
}

func TestDetails_SchemaViolation(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"id":"abc","extendedIngredients":"none"}`)
	}))
	defer ts.Close()

	_, err := testClient(ts).Details(context.Background(), "spoonacular:5")
	assert.ErrorIs(t, err, ErrMalformed)
	assert.False(t, Retryable(err))
}

func TestDetails_RejectsForeignID(t *testing.T) {
	s := NewSpoonacular(types.SourceConfig{})
	_, err := s.Details(context.Background(), "edamam:abc")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		status    int
		want      error
		retryable bool
	}{
		{http.StatusUnauthorized, ErrInvalidCredential, false},
		{http.StatusForbidden, ErrInvalidCredential, false},
		{http.StatusPaymentRequired, ErrRateLimited, true},
		{http.StatusTooManyRequests, ErrRateLimited, true},
		{http.StatusNotFound, ErrNotFound, false},
		{http.StatusBadGateway, ErrTransient, true},
		{http.StatusServiceUnavailable, ErrTransient, true},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer ts.Close()

			_, err := testClient(ts).Search(context.Background(), Query{Category: types.Snack})
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, tt.retryable, Retryable(err))

			var se *StatusError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, tt.status, se.Status)
		})
	}
}

func TestPerCallTimeoutIsTransient(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer ts.Close()

	s := testClient(ts)
	s.Timeout = 20 * time.Millisecond
	_, err := s.Search(context.Background(), Query{Category: types.Snack})
	assert.ErrorIs(t, err, ErrTransient)
	assert.True(t, Retryable(err))
}

func TestCancelledContextIsNotTransient(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{}`)
	}))
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := testClient(ts).Search(ctx, Query{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, Retryable(err))
}

func TestCheckCredential(t *testing.T) {
	assert.ErrorIs(t, NewSpoonacular(types.SourceConfig{}).CheckCredential(), ErrInvalidCredential)
	assert.ErrorIs(t, NewSpoonacular(types.SourceConfig{APIKey: "  "}).CheckCredential(), ErrInvalidCredential)
	assert.NoError(t, NewSpoonacular(types.SourceConfig{APIKey: "k"}).CheckCredential())
}
