// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/pdiddy/recipe-curator/internal/library"
	"github.com/pdiddy/recipe-curator/internal/source"
	"github.com/pdiddy/recipe-curator/pkg/types"
)

func lunch(id, title string, ings ...string) types.CandidateRecipe {
	return types.CandidateRecipe{
		SourceID:     "spoonacular:" + id,
		Title:        title,
		Ingredients:  ings,
		Instructions: []string{"Prep the ingredients.", "Combine and serve."},
		Nutrition: types.Nutrition{
			Calories: types.Grams(420),
			Carbs:    types.Grams(38),
			Protein:  types.Grams(18),
			Fat:      types.Grams(12),
			Fiber:    types.Grams(8),
		},
		PrepMinutes: 10,
		CookMinutes: 15,
		Servings:    2,
		Rating:      4.5,
		ReviewCount: 300,
	}
}

func lunchFixtures() []types.CandidateRecipe {
	return []types.CandidateRecipe{
		lunch("101", "Chickpea Quinoa Salad", "chickpeas", "quinoa", "cucumber", "tomato", "lemon juice", "olive oil"),
		lunch("102", "Turkey Hummus Wrap", "turkey breast", "hummus", "tortilla", "lettuce", "carrot"),
		lunch("103", "Lentil Vegetable Soup", "lentils", "celery", "onion", "vegetable broth", "spinach"),
		lunch("104", "Black Bean Burrito Bowl", "black beans", "brown rice", "salsa", "avocado", "corn"),
	}
}

// lavaCake fails the GD and practicality checks.
func lavaCake() types.CandidateRecipe {
	return types.CandidateRecipe{
		SourceID:     "spoonacular:900",
		Title:        "Triple Chocolate Lava Cake",
		Ingredients:  []string{"dark chocolate", "butter", "sugar", "eggs", "flour"},
		Instructions: []string{"Melt.", "Bake."},
		Nutrition: types.Nutrition{
			Calories: types.Grams(620),
			Carbs:    types.Grams(90),
			Protein:  types.Grams(4),
			Fat:      types.Grams(38),
			Fiber:    types.Grams(1),
		},
		PrepMinutes: 30,
		CookMinutes: 90,
	}
}

// fakeSource serves recipes per category. Search and detail failures are
// injected per category and per source id.
type fakeSource struct {
	mu          sync.Mutex
	credErr     error
	pageSize    int
	byCategory  map[types.Category][]types.CandidateRecipe
	searchErr   map[types.Category]error
	detailErr   map[string]error
	onSearch    func(types.Category)
	searches    int
	detailCalls map[string]int
}

func newFakeSource(pageSize int) *fakeSource {
	return &fakeSource{
		pageSize:    pageSize,
		byCategory:  map[types.Category][]types.CandidateRecipe{},
		searchErr:   map[types.Category]error{},
		detailErr:   map[string]error{},
		detailCalls: map[string]int{},
	}
}

func (f *fakeSource) Name() string { return "fake" }

func (f *fakeSource) CheckCredential() error { return f.credErr }

func (f *fakeSource) Search(_ context.Context, q source.Query) (source.Page, error) {
	f.mu.Lock()
	f.searches++
	hook := f.onSearch
	err := f.searchErr[q.Category]
	all := f.byCategory[q.Category]
	f.mu.Unlock()
	if hook != nil {
		hook(q.Category)
	}
	if err != nil {
		return source.Page{}, err
	}
	end := min(q.Offset+f.pageSize, len(all))
	page := source.Page{Offset: q.Offset, TotalResults: len(all)}
	for _, c := range all[min(q.Offset, end):end] {
		page.Hits = append(page.Hits, source.Hit{SourceID: c.SourceID, Title: c.Title})
	}
	return page, nil
}

func (f *fakeSource) Details(_ context.Context, id string) (types.CandidateRecipe, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.detailCalls[id]++
	if err := f.detailErr[id]; err != nil {
		return types.CandidateRecipe{}, err
	}
	for _, list := range f.byCategory {
		for _, c := range list {
			if c.SourceID == id {
				return c, nil
			}
		}
	}
	return types.CandidateRecipe{}, source.ErrNotFound
}

func (f *fakeSource) totalDetailCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, v := range f.detailCalls {
		n += v
	}
	return n
}

// failingLibrary rejects every insert.
type failingLibrary struct {
	inserts int
}

func (l *failingLibrary) AllExisting(context.Context) ([]types.LibraryRecipe, error) {
	return nil, nil
}

func (l *failingLibrary) Insert(context.Context, library.Entry) (string, error) {
	l.inserts++
	return "", errors.New("disk I/O error")
}

// flakyLibrary fails the first insert and then delegates.
type flakyLibrary struct {
	Library
	failed bool
}

func (l *flakyLibrary) Insert(ctx context.Context, e library.Entry) (string, error) {
	if !l.failed {
		l.failed = true
		return "", errors.New("database is locked")
	}
	return l.Library.Insert(ctx, e)
}

func openLibrary(t *testing.T) *library.Store {
	t.Helper()
	dir := t.TempDir()
	lib, err := library.Open(types.LibraryConfig{
		Driver:    types.DriverSQLite,
		DSN:       filepath.Join(dir, "recipes.db"),
		ExportDir: dir,
	})
	require.NoError(t, err)
	t.Cleanup(func() { lib.Close() })
	return lib
}

func newTestOrchestrator(t *testing.T, src *fakeSource, lib Library) (*Orchestrator, *Metrics) {
	t.Helper()
	m := NewMetrics(prometheus.NewRegistry())
	o := NewOrchestrator(src, lib, Options{
		Guidelines:      types.DefaultGuidelines(),
		MinQualityScore: 50,
		MaxRetries:      2,
		RetryBaseDelay:  time.Millisecond,
		Metrics:         m,
		Logger:          zaptest.NewLogger(t),
	})
	return o, m
}

func testCampaign() types.Campaign {
	return types.Campaign{
		StartDate:  time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
		TotalDays:  20,
		DailyQuota: 100,
	}
}

func lunchStrategy(name string, target int) types.ImportStrategy {
	return types.ImportStrategy{
		Name:        name,
		Category:    types.Lunch,
		TargetCount: target,
		Filters:     types.FilterSet{Keyword: "salad", MinCarbs: 30, MaxCarbs: 45, PageSize: 2},
	}
}
