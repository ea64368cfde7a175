// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package library

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"
)

// ExportYAML writes the recipes matching opts to <exportDir>/export.yaml
// and returns the path written.
func (s *Store) ExportYAML(ctx context.Context, opts ListOptions) (string, error) {
	return s.export(ctx, opts, "export.yaml", func(v any) ([]byte, error) {
		return yaml.Marshal(v)
	})
}

// ExportJSON writes the recipes matching opts to <exportDir>/export.json
// and returns the path written.
func (s *Store) ExportJSON(ctx context.Context, opts ListOptions) (string, error) {
	return s.export(ctx, opts, "export.json", func(v any) ([]byte, error) {
		return json.MarshalIndent(v, "", "  ")
	})
}

func (s *Store) export(ctx context.Context, opts ListOptions, name string, marshal func(any) ([]byte, error)) (string, error) {
	recipes, err := s.List(ctx, opts)
	if err != nil {
		return "", fmt.Errorf("querying for export: %w", err)
	}
	if recipes == nil {
		recipes = []Recipe{}
	}
	data, err := marshal(recipes)
	if err != nil {
		return "", fmt.Errorf("marshaling %s: %w", name, err)
	}
	if err := os.MkdirAll(s.exportDir, 0o755); err != nil {
		return "", fmt.Errorf("creating export directory: %w", err)
	}
	path := filepath.Join(s.exportDir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}
