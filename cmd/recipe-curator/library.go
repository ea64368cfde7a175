// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/recipe-curator/internal/library"
	"github.com/pdiddy/recipe-curator/pkg/types"
)

var libraryCmd = &cobra.Command{
	Use:   "library",
	Short: "Query and export the recipe library",
}

// --- stats subcommand ---

var libraryStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print library size, category balance, and campaign progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		lib, err := openLibrary()
		if err != nil {
			return err
		}
		defer lib.Close()

		total, err := lib.Count(ctx)
		if err != nil {
			return err
		}
		byCat, err := lib.CountByCategory(ctx)
		if err != nil {
			return err
		}

		fmt.Printf("%-10s  %6s  %6s\n", "Category", "Count", "Share")
		fmt.Println(strings.Repeat("-", 26))
		for _, cat := range types.Categories {
			share := 0.0
			if total > 0 {
				share = 100 * float64(byCat[cat]) / float64(total)
			}
			fmt.Printf("%-10s  %6d  %5.1f%%\n", cat, byCat[cat], share)
		}
		fmt.Printf("\n%d recipes\n", total)

		if c, err := configuredCampaign(); err == nil {
			progress, closeProgress, err := openProgress(lib)
			if err != nil {
				return err
			}
			defer closeProgress()
			n, err := progress.Imported(ctx, c.ID())
			if err != nil {
				return err
			}
			fmt.Printf("Campaign %s: %d of %d imported\n", c.ID(), n, c.Target())
		}
		return nil
	},
}

// --- list subcommand ---

var libraryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored recipes, best quality first",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := listOptsFromFlags(cmd)
		if err != nil {
			return err
		}
		lib, err := openLibrary()
		if err != nil {
			return err
		}
		defer lib.Close()

		recipes, err := lib.List(context.Background(), opts)
		if err != nil {
			return err
		}

		jsonOutput, _ := cmd.Flags().GetBool("json")
		if jsonOutput {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(recipes)
		}
		if len(recipes) == 0 {
			fmt.Println("No recipes found.")
			return nil
		}
		fmt.Printf("%-4s  %-44s  %-9s  %7s  %5s  %s\n", "Rank", "Title", "Category", "Quality", "Conf", "Source")
		fmt.Println(strings.Repeat("-", 96))
		for i, r := range recipes {
			title := truncate(r.Title, 44)
			fmt.Printf("%-4d  %-44s  %-9s  %7.1f  %5.2f  %s\n",
				i+1, title, r.Category, r.Quality, r.Confidence, r.SourceID)
		}
		fmt.Printf("\n%d recipes\n", len(recipes))
		return nil
	},
}

// --- show subcommand ---

var libraryShowCmd = &cobra.Command{
	Use:   "show <recipe-id>",
	Short: "Print one stored recipe as YAML",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lib, err := openLibrary()
		if err != nil {
			return err
		}
		defer lib.Close()

		r, err := lib.Get(context.Background(), args[0])
		if err != nil {
			return err
		}
		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(r)
	},
}

// --- export subcommand ---

var libraryExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the library to YAML or JSON",
	Long: `Export writes the library (or a filtered subset) to export.yaml or
export.json under library.export_dir.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		opts, err := listOptsFromFlags(cmd)
		if err != nil {
			return err
		}
		lib, err := openLibrary()
		if err != nil {
			return err
		}
		defer lib.Close()

		var path string
		switch format {
		case "yaml", "":
			path, err = lib.ExportYAML(context.Background(), opts)
		case "json":
			path, err = lib.ExportJSON(context.Background(), opts)
		default:
			return fmt.Errorf("unsupported format %q: use yaml or json", format)
		}
		if err != nil {
			return err
		}
		fmt.Println("Exported to", path)
		return nil
	},
}

func listOptsFromFlags(cmd *cobra.Command) (library.ListOptions, error) {
	categoryFlag, _ := cmd.Flags().GetString("category")
	minQuality, _ := cmd.Flags().GetFloat64("min-quality")
	limit, _ := cmd.Flags().GetInt("limit")

	opts := library.ListOptions{MinQuality: minQuality, Limit: limit}
	if categoryFlag != "" {
		cat, err := types.ParseCategory(categoryFlag)
		if err != nil {
			return library.ListOptions{}, err
		}
		opts.Category = cat
	}
	return opts, nil
}

func init() {
	for _, c := range []*cobra.Command{libraryListCmd, libraryExportCmd} {
		c.Flags().String("category", "", "filter by category: breakfast, lunch, dinner, snack")
		c.Flags().Float64("min-quality", 0, "minimum quality score")
	}
	libraryListCmd.Flags().Int("limit", 20, "maximum recipes to list (0 = all)")
	libraryListCmd.Flags().Bool("json", false, "output recipes as JSON")
	libraryExportCmd.Flags().Int("limit", 0, "maximum recipes to export (0 = all)")
	libraryExportCmd.Flags().String("format", "yaml", "export format: yaml or json")

	libraryCmd.AddCommand(libraryStatsCmd)
	libraryCmd.AddCommand(libraryListCmd)
	libraryCmd.AddCommand(libraryShowCmd)
	libraryCmd.AddCommand(libraryExportCmd)
	rootCmd.AddCommand(libraryCmd)
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}
