// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package strategy

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/recipe-curator/pkg/types"
)

// File is the on-disk form of a saved plan. It can be edited by hand and
// replayed as an explicit strategy override.
type File struct {
	Plan       PlanInfo               `yaml:"plan"`
	Strategies []types.ImportStrategy `yaml:"strategies"`
	Saved      time.Time              `yaml:"saved"`
}

// PlanInfo records where the saved strategies came from.
type PlanInfo struct {
	Date           string      `yaml:"date"`
	DayIndex       int         `yaml:"day_index"`
	Phase          types.Phase `yaml:"phase"`
	RemainingQuota int         `yaml:"remaining_quota"`
}

// WriteFile saves p's strategies to a YAML file.
func WriteFile(path string, p types.Plan) error {
	f := File{
		Plan: PlanInfo{
			Date:           p.Date.Format(types.DateLayout),
			DayIndex:       p.DayIndex,
			Phase:          p.Phase,
			RemainingQuota: p.RemainingQuotaForDay,
		},
		Strategies: p.Strategies,
		Saved:      time.Now().UTC(),
	}
	data, err := yaml.Marshal(&f)
	if err != nil {
		return fmt.Errorf("marshaling strategy file: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadFile loads a strategy file.
func ReadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading strategy file: %w", err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing strategy file: %w", err)
	}
	return &f, nil
}

// LoadFile reads a strategy file and completes every strategy against
// the catalog's guidelines. An empty file is an error.
func (c *Catalog) LoadFile(path string) ([]types.ImportStrategy, error) {
	f, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(f.Strategies) == 0 {
		return nil, fmt.Errorf("strategy file %s lists no strategies", path)
	}
	out := make([]types.ImportStrategy, 0, len(f.Strategies))
	for i, s := range f.Strategies {
		done, err := c.Complete(s)
		if err != nil {
			return nil, fmt.Errorf("strategy file %s, entry %d: %w", path, i+1, err)
		}
		out = append(out, done)
	}
	return out, nil
}
