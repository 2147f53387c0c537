package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/recipescout/internal/model"
)

// FileName is the database file created inside the data directory.
const FileName = "recipes.db"

// SchemaVersion is stored in the user_version pragma of every database.
const SchemaVersion = 1

// Search fields accepted by SearchByField.
const (
	FieldTitle      = "title"
	FieldIngredient = "ingredient"
	FieldHost       = "host"
	FieldMaxTime    = "max_time"
)

var (
	// ErrRecipeNotFound is returned when no recipe matches an id or URL.
	ErrRecipeNotFound = errors.New("recipe not found")

	// ErrInvalidField is returned for unknown search fields and
	// for queries that do not fit their field.
	ErrInvalidField = errors.New("invalid search field")

	// ErrRunNotFound is returned when no run statistics are stored under an id.
	ErrRunNotFound = errors.New("run not found")
)

// RecipeDB stores recipes, their ingredients and run statistics in SQLite.
// Several RecipeDB values may share one file; writers wait on each other
// through the busy timeout.
type RecipeDB struct {
	db     *sql.DB
	dbPath string

	// fts is false when the SQLite build lacks FTS5.
	fts bool
}

// Options configures RecipeDB behavior.
type Options struct {
	// CreateIfNotExists creates the directory and database file if missing.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging so readers do not block the
	// site workers writing recipes.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the recipe database in dbDir.
func Open(dbDir string, opts Options) (*RecipeDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (run build-library or import first)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else if err := os.MkdirAll(dbDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	mode := "rw"
	if opts.CreateIfNotExists {
		mode = "rwc"
	}
	dsn := dbPath + "?mode=" + mode + "&_pragma=foreign_keys(1)&_pragma=busy_timeout(10000)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite has a single writer; one connection also keeps the pragmas in effect.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	rdb := &RecipeDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := rdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return rdb, nil
}

// Path returns the database file path.
func (rdb *RecipeDB) Path() string {
	return rdb.dbPath
}

// Close closes the database connection.
func (rdb *RecipeDB) Close() error {
	return rdb.db.Close()
}

// createTables creates the schema if it doesn't exist.
func (rdb *RecipeDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS recipes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		url TEXT NOT NULL UNIQUE,
		title TEXT NOT NULL,
		total_time INTEGER,
		yields TEXT,
		instructions TEXT,
		image TEXT,
		host TEXT,
		nutrients TEXT,
		notes TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_recipes_host ON recipes(host);
	CREATE INDEX IF NOT EXISTS idx_recipes_total_time ON recipes(total_time);

	CREATE TABLE IF NOT EXISTS ingredients (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		recipe_id INTEGER NOT NULL REFERENCES recipes(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		measurement TEXT,
		unit_type TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_ingredients_recipe ON ingredients(recipe_id);
	CREATE INDEX IF NOT EXISTS idx_ingredients_name ON ingredients(name);

	-- Run statistics of build-library runs
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		started_at TEXT NOT NULL,
		stats TEXT NOT NULL
	);
	`
	ctx := context.Background()
	if _, err := rdb.db.ExecContext(ctx, schema); err != nil {
		return err
	}
	if _, err := rdb.db.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", SchemaVersion)); err != nil {
		return fmt.Errorf("failed to set schema version: %w", err)
	}

	fts := `
	CREATE VIRTUAL TABLE IF NOT EXISTS recipes_fts USING fts5(
		title, instructions, content='recipes', content_rowid='id'
	);

	CREATE TRIGGER IF NOT EXISTS recipes_ai AFTER INSERT ON recipes BEGIN
		INSERT INTO recipes_fts(rowid, title, instructions) VALUES (new.id, new.title, new.instructions);
	END;

	CREATE TRIGGER IF NOT EXISTS recipes_ad AFTER DELETE ON recipes BEGIN
		INSERT INTO recipes_fts(recipes_fts, rowid, title, instructions) VALUES ('delete', old.id, old.title, old.instructions);
	END;

	CREATE TRIGGER IF NOT EXISTS recipes_au AFTER UPDATE ON recipes BEGIN
		INSERT INTO recipes_fts(recipes_fts, rowid, title, instructions) VALUES ('delete', old.id, old.title, old.instructions);
		INSERT INTO recipes_fts(rowid, title, instructions) VALUES (new.id, new.title, new.instructions);
	END;
	`
	// Title search falls back to LIKE without FTS5.
	if _, err := rdb.db.ExecContext(ctx, fts); err == nil {
		rdb.fts = true
	}
	return nil
}

// Add inserts a recipe or, when its URL is already stored, replaces the
// stored fields and ingredients. It returns the recipe id and sets r.ID.
func (rdb *RecipeDB) Add(ctx context.Context, r *model.Recipe) (int64, error) {
	if r == nil || r.URL == "" {
		return 0, errors.New("recipe has no url")
	}

	nutrients, err := json.Marshal(nonNilMap(r.Nutrients))
	if err != nil {
		return 0, fmt.Errorf("failed to serialize nutrients: %w", err)
	}
	notes, err := json.Marshal(nonNilMap(r.Notes))
	if err != nil {
		return 0, fmt.Errorf("failed to serialize notes: %w", err)
	}

	tx, err := rdb.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }() //nolint:errcheck

	now := time.Now().UTC().Format(time.RFC3339Nano)
	created := now
	if !r.CreatedAt.IsZero() {
		created = r.CreatedAt.UTC().Format(time.RFC3339Nano)
	}

	query := `
	INSERT INTO recipes (url, title, total_time, yields, instructions, image, host, nutrients, notes, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(url) DO UPDATE SET
		title = excluded.title,
		total_time = excluded.total_time,
		yields = excluded.yields,
		instructions = excluded.instructions,
		image = excluded.image,
		host = excluded.host,
		nutrients = excluded.nutrients,
		notes = excluded.notes,
		updated_at = excluded.updated_at
	RETURNING id
	`

	var id int64
	err = tx.QueryRowContext(ctx, query,
		r.URL,
		r.Title,
		nullInt(r.TotalTime),
		r.Yields,
		r.Instructions,
		r.Image,
		r.Host,
		string(nutrients),
		string(notes),
		created,
		now,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert recipe: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM ingredients WHERE recipe_id = ?", id); err != nil {
		return 0, fmt.Errorf("failed to replace ingredients: %w", err)
	}
	for _, ing := range r.Ingredients {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO ingredients (recipe_id, name, measurement, unit_type) VALUES (?, ?, ?, ?)",
			id, ing.Name, nullString(ing.Measurement), nullString(ing.UnitType),
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert ingredient: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit recipe: %w", err)
	}

	r.ID = id
	return id, nil
}

// Delete removes a recipe and its ingredients.
func (rdb *RecipeDB) Delete(ctx context.Context, id int64) error {
	result, err := rdb.db.ExecContext(ctx, "DELETE FROM recipes WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete recipe: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: id %d", ErrRecipeNotFound, id)
	}
	return nil
}

const recipeColumns = `id, url, title, total_time, yields, instructions, image, host, nutrients, notes, created_at, updated_at`

// Get retrieves a recipe by id.
func (rdb *RecipeDB) Get(ctx context.Context, id int64) (*model.Recipe, error) {
	recipes, err := rdb.query(ctx, "SELECT "+recipeColumns+" FROM recipes WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(recipes) == 0 {
		return nil, fmt.Errorf("%w: id %d", ErrRecipeNotFound, id)
	}
	return recipes[0], nil
}

// GetByURL retrieves a recipe by its source URL.
func (rdb *RecipeDB) GetByURL(ctx context.Context, rawURL string) (*model.Recipe, error) {
	recipes, err := rdb.query(ctx, "SELECT "+recipeColumns+" FROM recipes WHERE url = ?", rawURL)
	if err != nil {
		return nil, err
	}
	if len(recipes) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrRecipeNotFound, rawURL)
	}
	return recipes[0], nil
}

// List returns recipes in insertion order. A limit of zero or less means no limit.
func (rdb *RecipeDB) List(ctx context.Context, limit int) ([]*model.Recipe, error) {
	return rdb.query(ctx, "SELECT "+recipeColumns+" FROM recipes ORDER BY id LIMIT ?", sqlLimit(limit))
}

// Count returns the number of stored recipes.
func (rdb *RecipeDB) Count(ctx context.Context) (int, error) {
	var n int
	if err := rdb.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM recipes").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count recipes: %w", err)
	}
	return n, nil
}

// SearchByField finds recipes by one field:
//   - title: full-text match, falling back to a substring match
//   - ingredient: substring of any ingredient name
//   - host: exact host, "www." ignored
//   - max_time: total time of at most query minutes, quickest first
func (rdb *RecipeDB) SearchByField(ctx context.Context, field, query string, limit int) ([]*model.Recipe, error) {
	query = strings.TrimSpace(query)
	lim := sqlLimit(limit)

	switch strings.ToLower(field) {
	case FieldTitle:
		if rdb.fts {
			recipes, err := rdb.query(ctx,
				"SELECT "+recipeColumns+" FROM recipes WHERE id IN (SELECT rowid FROM recipes_fts WHERE recipes_fts MATCH ?) ORDER BY id LIMIT ?",
				"title : "+ftsPhrase(query), lim)
			if err == nil && len(recipes) > 0 {
				return recipes, nil
			}
		}
		return rdb.query(ctx,
			"SELECT "+recipeColumns+" FROM recipes WHERE title LIKE ? ESCAPE '\\' ORDER BY id LIMIT ?",
			likePattern(query), lim)

	case FieldIngredient:
		return rdb.query(ctx,
			"SELECT "+recipeColumns+" FROM recipes WHERE id IN (SELECT recipe_id FROM ingredients WHERE name LIKE ? ESCAPE '\\') ORDER BY id LIMIT ?",
			likePattern(query), lim)

	case FieldHost:
		host := strings.TrimPrefix(strings.ToLower(query), "www.")
		return rdb.query(ctx,
			"SELECT "+recipeColumns+" FROM recipes WHERE host = ? ORDER BY id LIMIT ?",
			host, lim)

	case FieldMaxTime:
		minutes, err := strconv.Atoi(query)
		if err != nil || minutes < 0 {
			return nil, fmt.Errorf("%w: max_time needs a number of minutes, got %q", ErrInvalidField, query)
		}
		return rdb.query(ctx,
			"SELECT "+recipeColumns+" FROM recipes WHERE total_time > 0 AND total_time <= ? ORDER BY total_time, id LIMIT ?",
			minutes, lim)
	}

	return nil, fmt.Errorf("%w: %q (use %s, %s, %s or %s)", ErrInvalidField, field, FieldTitle, FieldIngredient, FieldHost, FieldMaxTime)
}

// Export writes up to limit recipes as an indented JSON array.
func (rdb *RecipeDB) Export(ctx context.Context, w io.Writer, limit int) (int, error) {
	recipes, err := rdb.List(ctx, limit)
	if err != nil {
		return 0, err
	}
	if recipes == nil {
		recipes = []*model.Recipe{}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(recipes); err != nil {
		return 0, fmt.Errorf("failed to encode recipes: %w", err)
	}
	return len(recipes), nil
}

// Import reads a JSON array of recipes, as written by Export, and adds
// each one. Entries without URL or title are skipped. Ids in the input are
// ignored; recipes are matched by URL.
func (rdb *RecipeDB) Import(ctx context.Context, r io.Reader) (int, error) {
	var recipes []*model.Recipe
	if err := json.NewDecoder(r).Decode(&recipes); err != nil {
		return 0, fmt.Errorf("failed to decode recipes: %w", err)
	}

	var n int
	for _, recipe := range recipes {
		if recipe == nil || recipe.URL == "" || recipe.Title == "" {
			continue
		}
		recipe.ID = 0
		if recipe.Host == "" {
			recipe.Host = model.HostFromURL(recipe.URL)
		}
		if _, err := rdb.Add(ctx, recipe); err != nil {
			return n, fmt.Errorf("failed to import %s: %w", recipe.URL, err)
		}
		n++
	}
	return n, nil
}

// SaveRun stores the statistics of a build-library run, replacing any
// earlier statistics with the same run id.
func (rdb *RecipeDB) SaveRun(ctx context.Context, stats *model.RunStatistics) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to serialize run statistics: %w", err)
	}

	query := `
	INSERT INTO runs (id, started_at, stats) VALUES (?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET started_at = excluded.started_at, stats = excluded.stats
	`
	if _, err := rdb.db.ExecContext(ctx, query, stats.RunID, stats.StartedAt.UTC().Format(time.RFC3339Nano), string(data)); err != nil {
		return fmt.Errorf("failed to save run statistics: %w", err)
	}
	return nil
}

// GetRun retrieves the statistics of a run. An empty id selects the latest run.
func (rdb *RecipeDB) GetRun(ctx context.Context, id string) (*model.RunStatistics, error) {
	query := "SELECT stats FROM runs WHERE id = ?"
	args := []any{id}
	if id == "" {
		query = "SELECT stats FROM runs ORDER BY started_at DESC LIMIT 1"
		args = nil
	}

	var data string
	err := rdb.db.QueryRowContext(ctx, query, args...).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %q", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run statistics: %w", err)
	}

	var stats model.RunStatistics
	if err := json.Unmarshal([]byte(data), &stats); err != nil {
		return nil, fmt.Errorf("failed to parse run statistics: %w", err)
	}
	return &stats, nil
}

// query runs a recipe query and loads the ingredients of every row.
// Rows are closed before ingredients are read: the pool has one connection.
func (rdb *RecipeDB) query(ctx context.Context, query string, args ...any) ([]*model.Recipe, error) {
	rows, err := rdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query recipes: %w", err)
	}

	var recipes []*model.Recipe
	for rows.Next() {
		r, err := scanRecipe(rows)
		if err != nil {
			_ = rows.Close()
			return nil, err
		}
		recipes = append(recipes, r)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("failed to read recipes: %w", err)
	}
	_ = rows.Close()

	for _, r := range recipes {
		if r.Ingredients, err = rdb.ingredients(ctx, r.ID); err != nil {
			return nil, err
		}
	}
	return recipes, nil
}

func (rdb *RecipeDB) ingredients(ctx context.Context, recipeID int64) ([]model.Ingredient, error) {
	rows, err := rdb.db.QueryContext(ctx,
		"SELECT name, measurement, unit_type FROM ingredients WHERE recipe_id = ? ORDER BY id", recipeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query ingredients: %w", err)
	}
	defer rows.Close()

	ingredients := []model.Ingredient{}
	for rows.Next() {
		var ing model.Ingredient
		var measurement, unit sql.NullString
		if err := rows.Scan(&ing.Name, &measurement, &unit); err != nil {
			return nil, fmt.Errorf("failed to scan ingredient: %w", err)
		}
		if measurement.Valid {
			ing.Measurement = &measurement.String
		}
		if unit.Valid {
			ing.UnitType = &unit.String
		}
		ingredients = append(ingredients, ing)
	}
	return ingredients, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecipe(s scanner) (*model.Recipe, error) {
	var r model.Recipe
	var totalTime sql.NullInt64
	var yields, instructions, image, host sql.NullString
	var nutrients, notes sql.NullString
	var createdAt, updatedAt string
	err := s.Scan(&r.ID, &r.URL, &r.Title, &totalTime, &yields, &instructions, &image, &host,
		&nutrients, &notes, &createdAt, &updatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to scan recipe: %w", err)
	}

	if totalTime.Valid {
		n := int(totalTime.Int64)
		r.TotalTime = &n
	}
	r.Yields = yields.String
	r.Instructions = instructions.String
	r.Image = image.String
	r.Host = host.String
	r.CreatedAt = parseTimestamp(createdAt)
	r.UpdatedAt = parseTimestamp(updatedAt)

	r.Nutrients = map[string]any{}
	if nutrients.String != "" {
		if err := json.Unmarshal([]byte(nutrients.String), &r.Nutrients); err != nil {
			return nil, fmt.Errorf("failed to parse nutrients: %w", err)
		}
	}
	r.Notes = map[string]any{}
	if notes.String != "" {
		if err := json.Unmarshal([]byte(notes.String), &r.Notes); err != nil {
			return nil, fmt.Errorf("failed to parse notes: %w", err)
		}
	}
	return &r, nil
}

// timestampFormats contains the timestamp formats that may be stored.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func nullInt(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}

func nullString(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func nonNilMap(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}

// sqlLimit maps "no limit" to SQLite's -1.
func sqlLimit(limit int) int {
	if limit <= 0 {
		return -1
	}
	return limit
}

// ftsPhrase quotes q as a single FTS5 phrase.
func ftsPhrase(q string) string {
	return `"` + strings.ReplaceAll(q, `"`, `""`) + `"`
}

// likePattern builds a case-insensitive substring pattern with LIKE
// wildcards in q escaped.
func likePattern(q string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(q) + "%"
}
