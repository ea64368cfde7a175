// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package library

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/recipe-curator/pkg/types"
)

// --- test helpers ---

func testStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	s, err := Open(types.LibraryConfig{
		Driver:    types.DriverSQLite,
		DSN:       filepath.Join(dir, "db", "recipes.db"),
		ExportDir: filepath.Join(dir, "export"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func entry(sourceID, title string, cat types.Category, total float64) Entry {
	return Entry{
		Candidate: types.CandidateRecipe{
			SourceID:     sourceID,
			Title:        title,
			Summary:      "summary of " + title,
			Ingredients:  []string{"2 eggs", "1 cup oats", "1 banana"},
			Instructions: []string{"Mix.", "Cook."},
			Nutrition: types.Nutrition{
				Calories: types.Grams(300), Carbs: types.Grams(25), Protein: types.Grams(10),
				Fat: types.Grams(9), Fiber: types.Grams(4),
			},
			PrepMinutes: 5, CookMinutes: 10, Servings: 2,
			Rating: 4.5, ReviewCount: 120,
		},
		Score: types.QualityScore{GDCompliance: 40, Practicality: 30, Popularity: total - 70, Total: total},
		Category: types.CategoryAssignment{
			Primary: cat, Confidence: 0.8,
			Alternatives: []types.CategoryScore{{Category: types.Snack, Confidence: 0.4}},
		},
		CampaignID: "campaign-2026-01-05",
		RunID:      "run-1",
		ImportedOn: "2026-01-07",
	}
}

// --- tests ---

func TestRecipeID_Stable(t *testing.T) {
	a := RecipeID("spoonacular:1")
	assert.Equal(t, a, RecipeID("spoonacular:1"))
	assert.NotEqual(t, a, RecipeID("spoonacular:2"))
	assert.Len(t, a, 36)
}

func TestInsertAndGet(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)

	id, err := s.Insert(ctx, entry("spoonacular:1", "Banana Oat Pancakes", types.Breakfast, 95))
	require.NoError(t, err)
	assert.Equal(t, RecipeID("spoonacular:1"), id)

	ok, err := s.Exists(ctx, id)
	require.NoError(t, err)
	assert.True(t, ok)

	r, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Banana Oat Pancakes", r.Title)
	assert.Equal(t, types.Breakfast, r.Category)
	assert.Equal(t, 95.0, r.Quality)
	assert.Equal(t, 95.0, r.Score.Total)
	assert.Equal(t, []string{"2 eggs", "1 cup oats", "1 banana"}, r.Ingredients)
	assert.Equal(t, []string{"Mix.", "Cook."}, r.Instructions)
	assert.Equal(t, 15, r.TotalMinutes)
	assert.Equal(t, 25.0, r.Nutrition.Carbs)
	assert.Equal(t, "campaign-2026-01-05", r.CampaignID)
	require.Len(t, r.Alternatives, 1)
	assert.False(t, r.CreatedAt.IsZero())
}

func TestInsert_SecondInsertIsRejected(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)

	_, err := s.Insert(ctx, entry("spoonacular:1", "Banana Oat Pancakes", types.Breakfast, 95))
	require.NoError(t, err)
	id, err := s.Insert(ctx, entry("spoonacular:1", "Banana Oat Pancakes", types.Breakfast, 95))
	assert.ErrorIs(t, err, ErrAlreadyStored)
	assert.Equal(t, RecipeID("spoonacular:1"), id)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestCorruptJSONColumnIsAnError(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)
	id, err := s.Insert(ctx, entry("spoonacular:1", "Banana Oat Pancakes", types.Breakfast, 95))
	require.NoError(t, err)
	_, err = s.db.ExecContext(ctx, `UPDATE recipes SET ingredients = '["2 eggs", ' WHERE id = ?`, id)
	require.NoError(t, err)

	_, err = s.AllExisting(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ingredients")

	_, err = s.Get(ctx, id)
	require.Error(t, err)
	assert.Contains(t, err.Error(), id)
}

func TestGet_NotFound(t *testing.T) {
	_, err := testStore(t).Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestQueries(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)
	for _, e := range []Entry{
		entry("s:1", "Oatmeal", types.Breakfast, 90),
		entry("s:2", "Frittata", types.Breakfast, 70),
		entry("s:3", "Hummus Plate", types.Snack, 60),
		entry("s:4", "Lentil Soup", types.Lunch, 80),
	} {
		_, err := s.Insert(ctx, e)
		require.NoError(t, err)
	}

	counts, err := s.CountByCategory(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[types.Category]int{
		types.Breakfast: 2, types.Lunch: 1, types.Dinner: 0, types.Snack: 1,
	}, counts)

	breakfasts, err := s.ByCategory(ctx, types.Breakfast, 0)
	require.NoError(t, err)
	require.Len(t, breakfasts, 2)
	assert.Equal(t, "Oatmeal", breakfasts[0].Title, "best quality first")

	top, err := s.List(ctx, ListOptions{MinQuality: 75, Limit: 1})
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, "Oatmeal", top[0].Title)

	all, err := s.AllExisting(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 4)
	assert.Equal(t, []string{"2 eggs", "1 cup oats", "1 banana"}, all[0].Ingredients)

	n, err := s.CountByCampaign(ctx, "campaign-2026-01-05", "")
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	n, err = s.CountByCampaign(ctx, "campaign-2026-01-05", "2026-01-08")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestExport(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)
	_, err := s.Insert(ctx, entry("s:1", "Oatmeal", types.Breakfast, 90))
	require.NoError(t, err)
	_, err = s.Insert(ctx, entry("s:2", "Trail Mix", types.Snack, 65))
	require.NoError(t, err)

	path, err := s.ExportYAML(ctx, ListOptions{Category: types.Snack})
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var fromYAML []Recipe
	require.NoError(t, yaml.Unmarshal(data, &fromYAML))
	require.Len(t, fromYAML, 1)
	assert.Equal(t, "Trail Mix", fromYAML[0].Title)
	assert.Equal(t, types.Snack, fromYAML[0].Category)

	path, err = s.ExportJSON(ctx, ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, "export.json", filepath.Base(path))
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	var fromJSON []Recipe
	require.NoError(t, json.Unmarshal(data, &fromJSON))
	assert.Len(t, fromJSON, 2)
}

func TestRebind(t *testing.T) {
	pg := &Store{driver: types.DriverPostgres}
	assert.Equal(t, "a = $1 AND b = $2", pg.rebind("a = ? AND b = ?"))
	lite := &Store{driver: types.DriverSQLite}
	assert.Equal(t, "a = ?", lite.rebind("a = ?"))
}

func TestInsert_PostgresPlaceholdersAndErrors(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := New(db, types.DriverPostgres, t.TempDir())
	mock.ExpectExec(`(?s)INSERT INTO recipes .* VALUES \(\$1, \$2, .*\$26\)`).
		WillReturnError(errors.New("connection reset"))

	_, err = s.Insert(context.Background(), entry("s:9", "Chili", types.Dinner, 80))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(types.LibraryConfig{Driver: "mysql", DSN: "x"})
	assert.Error(t, err)
}
