// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package strategy

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/recipe-curator/pkg/types"
)

func TestStrategyFileRoundTrip(t *testing.T) {
	c := newCatalog(t)
	list, err := c.StrategiesFor(types.PhaseVariations, 3)
	require.NoError(t, err)
	p := types.Plan{
		Date:                 time.Date(2026, 1, 17, 0, 0, 0, 0, time.UTC),
		DayIndex:             13,
		Phase:                types.PhaseVariations,
		Strategies:           list,
		RemainingQuotaForDay: 100,
	}
	path := filepath.Join(t.TempDir(), "plan.yaml")
	require.NoError(t, WriteFile(path, p))

	f, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "2026-01-17", f.Plan.Date)
	assert.Equal(t, 13, f.Plan.DayIndex)
	assert.Equal(t, types.PhaseVariations, f.Plan.Phase)

	loaded, err := c.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, list, loaded)
}

func TestLoadFileCompletesFilters(t *testing.T) {
	c := newCatalog(t)
	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
strategies:
  - name: snack-hummus
    category: snack
    target_count: 15
    filters:
      keyword: hummus
`), 0o644))

	list, err := c.LoadFile(path)
	require.NoError(t, err)
	require.Len(t, list, 1)
	g := types.DefaultGuidelines().Snack
	assert.Equal(t, "snack-hummus", list[0].Name)
	assert.Equal(t, g.MinCarbs, list[0].Filters.MinCarbs)
	assert.Equal(t, g.MaxCarbs, list[0].Filters.MaxCarbs)
	assert.Equal(t, g.MinProtein, list[0].Filters.MinProtein)
	assert.Equal(t, 10, list[0].Filters.PageSize)
}

func TestLoadFileErrors(t *testing.T) {
	c := newCatalog(t)
	dir := t.TempDir()
	tests := []struct {
		name    string
		content string
		errMsg  string
	}{
		{"no strategies", "strategies: []\n", "lists no strategies"},
		{"unknown category", "strategies:\n  - {name: x, category: brunch, target_count: 5}\n", "unknown category"},
		{"zero target", "strategies:\n  - {name: x, category: lunch}\n", "target count must be positive"},
		{"not yaml", "strategies: [", "parsing strategy file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))
			_, err := c.LoadFile(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}

	_, err := c.LoadFile(filepath.Join(dir, "missing.yaml"))
	assert.ErrorContains(t, err, "reading strategy file")
}
