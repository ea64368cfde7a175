// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package library is the Recipe Library: a durable store of accepted
// recipes keyed by a stable id derived from the source id, queryable by id
// and by category. SQLite is the default backend; PostgreSQL is supported
// through lib/pq.
package library

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/recipe-curator/pkg/types"
)

// Library errors.
var (
	ErrNotFound = errors.New("recipe not found")

	// ErrAlreadyStored is returned by Insert when the id or source id is
	// already present. Nothing is written.
	ErrAlreadyStored = errors.New("recipe already stored")
)

// recipeNamespace seeds the name-based recipe ids.
var recipeNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/pdiddy/recipe-curator/recipes"))

// RecipeID returns the stable library id for a source id. The same source
// recipe always maps to the same id.
func RecipeID(sourceID string) string {
	return uuid.NewSHA1(recipeNamespace, []byte(sourceID)).String()
}

// Recipe is a stored recipe with its scoring and categorization.
type Recipe struct {
	types.LibraryRecipe `yaml:",inline"`

	Summary      string                `json:"summary,omitempty" yaml:"summary,omitempty"`
	Instructions []string              `json:"instructions" yaml:"instructions"`
	Score        types.QualityScore    `json:"score" yaml:"score"`
	Alternatives []types.CategoryScore `json:"alternatives,omitempty" yaml:"alternatives,omitempty"`
	TotalMinutes int                   `json:"total_minutes" yaml:"total_minutes"`
	Servings     int                   `json:"servings" yaml:"servings"`
	Rating       float64               `json:"rating" yaml:"rating"`
	ReviewCount  int                   `json:"review_count" yaml:"review_count"`
	SourceURL    string                `json:"source_url,omitempty" yaml:"source_url,omitempty"`
	CreatedAt    time.Time             `json:"created_at" yaml:"created_at"`
}

// Entry is what the pipeline persists for one accepted candidate.
type Entry struct {
	Candidate  types.CandidateRecipe
	Score      types.QualityScore
	Category   types.CategoryAssignment
	CampaignID string
	RunID      string
	ImportedOn string
}

// Store manages the recipe library database.
type Store struct {
	db        *sql.DB
	driver    string
	exportDir string
	now       func() time.Time
}

// Open opens the configured backend and creates the schema if needed.
func Open(cfg types.LibraryConfig) (*Store, error) {
	var dsn string
	switch cfg.Driver {
	case types.DriverSQLite, "":
		cfg.Driver = types.DriverSQLite
		if dir := filepath.Dir(cfg.DSN); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("creating library directory: %w", err)
			}
		}
		dsn = cfg.DSN + "?_journal_mode=WAL&_busy_timeout=5000"
	case types.DriverPostgres:
		dsn = cfg.DSN
	default:
		return nil, fmt.Errorf("unsupported library driver %q", cfg.Driver)
	}

	db, err := sql.Open(cfg.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	s := New(db, cfg.Driver, cfg.ExportDir)
	if err := s.Migrate(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// New wraps an open database handle without touching the schema.
func New(db *sql.DB, driver, exportDir string) *Store {
	if exportDir == "" {
		exportDir = "data"
	}
	return &Store{db: db, driver: driver, exportDir: exportDir, now: time.Now}
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Migrate creates the recipes table and its indexes.
func (s *Store) Migrate(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS recipes (
			id TEXT PRIMARY KEY,
			source_id TEXT NOT NULL UNIQUE,
			title TEXT NOT NULL,
			summary TEXT,
			category TEXT NOT NULL,
			confidence DOUBLE PRECISION,
			alternatives TEXT,
			quality_total DOUBLE PRECISION,
			score TEXT,
			ingredients TEXT,
			instructions TEXT,
			calories DOUBLE PRECISION,
			carbs DOUBLE PRECISION,
			protein DOUBLE PRECISION,
			fat DOUBLE PRECISION,
			fiber DOUBLE PRECISION,
			sugar DOUBLE PRECISION,
			total_minutes INTEGER,
			servings INTEGER,
			rating DOUBLE PRECISION,
			review_count INTEGER,
			source_url TEXT,
			campaign_id TEXT,
			run_id TEXT,
			imported_on TEXT,
			created_at TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_recipes_category ON recipes(category)`,
		`CREATE INDEX IF NOT EXISTS idx_recipes_campaign ON recipes(campaign_id, imported_on)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// rebind rewrites ? placeholders as $1, $2, ... for PostgreSQL.
func (s *Store) rebind(q string) string {
	if s.driver != types.DriverPostgres {
		return q
	}
	var b strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Insert stores an accepted candidate and returns its library id.
func (s *Store) Insert(ctx context.Context, e Entry) (string, error) {
	c := e.Candidate
	id := RecipeID(c.SourceID)
	n := c.Nutrition.Facts()

	ingredients, _ := json.Marshal(c.Ingredients)
	instructions, _ := json.Marshal(c.Instructions)
	alternatives, _ := json.Marshal(e.Category.Alternatives)
	score, _ := json.Marshal(e.Score)

	res, err := s.db.ExecContext(ctx, s.rebind(
		`INSERT INTO recipes (id, source_id, title, summary, category, confidence, alternatives,
			quality_total, score, ingredients, instructions,
			calories, carbs, protein, fat, fiber, sugar,
			total_minutes, servings, rating, review_count, source_url,
			campaign_id, run_id, imported_on, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT DO NOTHING`),
		id, c.SourceID, c.Title, c.Summary, string(e.Category.Primary), e.Category.Confidence, string(alternatives),
		e.Score.Total, string(score), string(ingredients), string(instructions),
		n.Calories, n.Carbs, n.Protein, n.Fat, n.Fiber, n.Sugar,
		c.TotalMinutes(), c.Servings, c.Rating, c.ReviewCount, c.SourceURL,
		e.CampaignID, e.RunID, e.ImportedOn, s.now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return "", fmt.Errorf("inserting recipe %s: %w", c.SourceID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return "", fmt.Errorf("inserting recipe %s: %w", c.SourceID, err)
	}
	if affected == 0 {
		return id, fmt.Errorf("%s: %w", c.SourceID, ErrAlreadyStored)
	}
	return id, nil
}

// Exists reports whether id is stored.
func (s *Store) Exists(ctx context.Context, id string) (bool, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, s.rebind(`SELECT count(*) FROM recipes WHERE id = ?`), id).Scan(&n); err != nil {
		return false, fmt.Errorf("checking recipe %s: %w", id, err)
	}
	return n > 0, nil
}

// AllExisting returns the projection of every stored recipe used to build
// the duplicate-check set.
func (s *Store) AllExisting(ctx context.Context) ([]types.LibraryRecipe, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source_id, title, category, ingredients, calories, carbs, protein, fat, fiber, sugar
		 FROM recipes ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("listing recipes: %w", err)
	}
	defer rows.Close()

	var out []types.LibraryRecipe
	for rows.Next() {
		var r types.LibraryRecipe
		var cat, ingredients string
		if err := rows.Scan(&r.ID, &r.SourceID, &r.Title, &cat, &ingredients,
			&r.Nutrition.Calories, &r.Nutrition.Carbs, &r.Nutrition.Protein,
			&r.Nutrition.Fat, &r.Nutrition.Fiber, &r.Nutrition.Sugar); err != nil {
			return nil, fmt.Errorf("scanning recipe: %w", err)
		}
		r.Category = types.Category(cat)
		if err := decodeColumn("ingredients", r.ID, ingredients, &r.Ingredients); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

const recipeColumns = `id, source_id, title, summary, category, confidence, alternatives,
	quality_total, score, ingredients, instructions,
	calories, carbs, protein, fat, fiber, sugar,
	total_minutes, servings, rating, review_count, source_url,
	campaign_id, run_id, imported_on, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanRecipe(sc scanner) (Recipe, error) {
	var r Recipe
	var summary, alternatives, score, ingredients, instructions, sourceURL sql.NullString
	var campaignID, runID, importedOn, createdAt sql.NullString
	var cat string
	err := sc.Scan(&r.ID, &r.SourceID, &r.Title, &summary, &cat, &r.Confidence, &alternatives,
		&r.Quality, &score, &ingredients, &instructions,
		&r.Nutrition.Calories, &r.Nutrition.Carbs, &r.Nutrition.Protein,
		&r.Nutrition.Fat, &r.Nutrition.Fiber, &r.Nutrition.Sugar,
		&r.TotalMinutes, &r.Servings, &r.Rating, &r.ReviewCount, &sourceURL,
		&campaignID, &runID, &importedOn, &createdAt)
	if err != nil {
		return Recipe{}, err
	}
	r.Category = types.Category(cat)
	r.Summary = summary.String
	r.SourceURL = sourceURL.String
	r.CampaignID = campaignID.String
	r.RunID = runID.String
	r.ImportedOn = importedOn.String
	if t, err := time.Parse(time.RFC3339, createdAt.String); err == nil {
		r.CreatedAt = t
	}
	for _, c := range []struct {
		name string
		raw  sql.NullString
		dst  any
	}{
		{"ingredients", ingredients, &r.Ingredients},
		{"instructions", instructions, &r.Instructions},
		{"alternatives", alternatives, &r.Alternatives},
		{"score", score, &r.Score},
	} {
		if err := decodeColumn(c.name, r.ID, c.raw.String, c.dst); err != nil {
			return Recipe{}, err
		}
	}
	return r, nil
}

// decodeColumn unmarshals a JSON column. NULL and empty columns leave dst
// untouched.
func decodeColumn(name, id, raw string, dst any) error {
	if raw == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return fmt.Errorf("recipe %s: decoding %s column: %w", id, name, err)
	}
	return nil
}

// Get returns the recipe stored under id.
func (s *Store) Get(ctx context.Context, id string) (Recipe, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(`SELECT `+recipeColumns+` FROM recipes WHERE id = ?`), id)
	r, err := scanRecipe(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Recipe{}, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Recipe{}, fmt.Errorf("reading recipe %s: %w", id, err)
	}
	return r, nil
}

// ListOptions filters List. Zero values mean no filter.
type ListOptions struct {
	Category   types.Category
	MinQuality float64
	Limit      int
}

// List returns recipes, best quality first.
func (s *Store) List(ctx context.Context, opts ListOptions) ([]Recipe, error) {
	var where []string
	var args []any
	if opts.Category != "" {
		where = append(where, "category = ?")
		args = append(args, string(opts.Category))
	}
	if opts.MinQuality > 0 {
		where = append(where, "quality_total >= ?")
		args = append(args, opts.MinQuality)
	}
	q := `SELECT ` + recipeColumns + ` FROM recipes`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY quality_total DESC, id"
	if opts.Limit > 0 {
		q += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	rows, err := s.db.QueryContext(ctx, s.rebind(q), args...)
	if err != nil {
		return nil, fmt.Errorf("listing recipes: %w", err)
	}
	defer rows.Close()

	var out []Recipe
	for rows.Next() {
		r, err := scanRecipe(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning recipe: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ByCategory returns up to limit recipes of one category.
func (s *Store) ByCategory(ctx context.Context, cat types.Category, limit int) ([]Recipe, error) {
	return s.List(ctx, ListOptions{Category: cat, Limit: limit})
}

// Count returns the number of stored recipes.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM recipes`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting recipes: %w", err)
	}
	return n, nil
}

// CountByCategory returns per-category counts. Every category is present.
func (s *Store) CountByCategory(ctx context.Context) (map[types.Category]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT category, count(*) FROM recipes GROUP BY category`)
	if err != nil {
		return nil, fmt.Errorf("counting by category: %w", err)
	}
	defer rows.Close()

	out := make(map[types.Category]int, len(types.Categories))
	for _, c := range types.Categories {
		out[c] = 0
	}
	for rows.Next() {
		var cat string
		var n int
		if err := rows.Scan(&cat, &n); err != nil {
			return nil, fmt.Errorf("scanning category count: %w", err)
		}
		out[types.Category(cat)] = n
	}
	return out, rows.Err()
}

// CountByCampaign counts rows imported for campaignID, restricted to one
// run date when importedOn is non-empty.
func (s *Store) CountByCampaign(ctx context.Context, campaignID, importedOn string) (int, error) {
	q := `SELECT count(*) FROM recipes WHERE campaign_id = ?`
	args := []any{campaignID}
	if importedOn != "" {
		q += ` AND imported_on = ?`
		args = append(args, importedOn)
	}
	var n int
	if err := s.db.QueryRowContext(ctx, s.rebind(q), args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting campaign %s: %w", campaignID, err)
	}
	return n, nil
}
