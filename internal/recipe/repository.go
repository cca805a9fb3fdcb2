package recipe

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Repository is a database-backed repository for recipes.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new Repository.
func NewRepository(d *sql.DB) *Repository {
	return &Repository{db: d}
}

// Create inserts a new recipe, assigning an ID when none is set.
func (r *Repository) Create(ctx context.Context, rec *Recipe) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	tagsJSON, err := json.Marshal(emptyIfNil(rec.Tags))
	if err != nil {
		return fmt.Errorf("failed to marshal tags: %w", err)
	}
	ingredientsJSON, err := json.Marshal(emptyIfNil(rec.Ingredients))
	if err != nil {
		return fmt.Errorf("failed to marshal ingredients: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO recipes
		   (id, title, source_url, notes, tags, ingredients, time_minutes, difficulty, is_active, created_by, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, 1, ?, ?)`,
		rec.ID, rec.Title, rec.SourceURL, rec.Notes, string(tagsJSON), string(ingredientsJSON),
		rec.TimeMinutes, rec.Difficulty, rec.CreatedBy, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert recipe: %w", err)
	}
	rec.IsActive = true
	return nil
}

// Get retrieves a recipe by its ID, or nil if it does not exist.
func (r *Repository) Get(ctx context.Context, id string) (*Recipe, error) {
	row := r.db.QueryRowContext(ctx, selectColumns+` FROM recipes WHERE id = ?`, id)
	rec, err := scanRecipe(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get recipe by ID: %w", err)
	}
	return rec, nil
}

// GetBySourceURL retrieves a recipe by its source URL, or nil if none exists.
func (r *Repository) GetBySourceURL(ctx context.Context, sourceURL string) (*Recipe, error) {
	row := r.db.QueryRowContext(ctx, selectColumns+` FROM recipes WHERE source_url = ? LIMIT 1`, sourceURL)
	rec, err := scanRecipe(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get recipe by source URL: %w", err)
	}
	return rec, nil
}

// List retrieves active recipes, newest first, optionally filtered by a
// case-insensitive title substring.
func (r *Repository) List(ctx context.Context, limit int, titleQuery string) ([]Recipe, error) {
	query := selectColumns + ` FROM recipes WHERE is_active = 1`
	args := []any{}
	if titleQuery != "" {
		query += ` AND title LIKE ? COLLATE NOCASE`
		args = append(args, "%"+titleQuery+"%")
	}
	query += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}
	defer rows.Close()

	return collectRecipes(rows)
}

// ListActive retrieves every active recipe.
func (r *Repository) ListActive(ctx context.Context) ([]Recipe, error) {
	rows, err := r.db.QueryContext(ctx, selectColumns+` FROM recipes WHERE is_active = 1`)
	if err != nil {
		return nil, fmt.Errorf("failed to list active recipes: %w", err)
	}
	defer rows.Close()

	return collectRecipes(rows)
}

// ListActiveTags returns the distinct tags across active recipes.
func (r *Repository) ListActiveTags(ctx context.Context) ([]string, error) {
	recipes, err := r.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var tags []string
	for _, rec := range recipes {
		for _, tag := range rec.Tags {
			if tag == "" {
				continue
			}
			if _, ok := seen[tag]; ok {
				continue
			}
			seen[tag] = struct{}{}
			tags = append(tags, tag)
		}
	}
	return tags, nil
}

// Update applies a partial update and returns the stored recipe, or nil
// if the recipe does not exist.
func (r *Repository) Update(ctx context.Context, id string, upd Update) (*Recipe, error) {
	rec, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, nil
	}

	if upd.Title != nil {
		rec.Title = *upd.Title
	}
	if upd.SourceURL != nil {
		rec.SourceURL = *upd.SourceURL
	}
	if upd.Notes != nil {
		rec.Notes = *upd.Notes
	}
	if upd.Tags != nil {
		rec.Tags = *upd.Tags
	}
	if upd.Ingredients != nil {
		rec.Ingredients = *upd.Ingredients
	}
	if upd.TimeMinutes != nil {
		rec.TimeMinutes = *upd.TimeMinutes
	}
	if upd.Difficulty != nil {
		rec.Difficulty = *upd.Difficulty
	}
	if upd.IsActive != nil {
		rec.IsActive = *upd.IsActive
	}

	tagsJSON, err := json.Marshal(emptyIfNil(rec.Tags))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tags: %w", err)
	}
	ingredientsJSON, err := json.Marshal(emptyIfNil(rec.Ingredients))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal ingredients: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`UPDATE recipes
		 SET title = ?, source_url = ?, notes = ?, tags = ?, ingredients = ?,
		     time_minutes = ?, difficulty = ?, is_active = ?
		 WHERE id = ?`,
		rec.Title, rec.SourceURL, rec.Notes, string(tagsJSON), string(ingredientsJSON),
		rec.TimeMinutes, rec.Difficulty, rec.IsActive, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update recipe: %w", err)
	}
	return rec, nil
}

// Archive soft-deletes a recipe, reporting whether it existed.
func (r *Repository) Archive(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE recipes SET is_active = 0 WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to archive recipe: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return n > 0, nil
}

const selectColumns = `SELECT id, title, source_url, notes, tags, ingredients, time_minutes, difficulty, is_active, created_by, created_at`

type scannable interface {
	Scan(dest ...any) error
}

func scanRecipe(row scannable) (*Recipe, error) {
	var rec Recipe
	var sourceURL, notes, createdBy sql.NullString
	var timeMinutes, difficulty sql.NullInt64
	var tagsJSON, ingredientsJSON string

	err := row.Scan(&rec.ID, &rec.Title, &sourceURL, &notes, &tagsJSON, &ingredientsJSON,
		&timeMinutes, &difficulty, &rec.IsActive, &createdBy, &rec.CreatedAt)
	if err != nil {
		return nil, err
	}

	rec.SourceURL = sourceURL.String
	rec.Notes = notes.String
	rec.CreatedBy = createdBy.String
	rec.TimeMinutes = int(timeMinutes.Int64)
	rec.Difficulty = int(difficulty.Int64)

	if err := json.Unmarshal([]byte(tagsJSON), &rec.Tags); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tags: %w", err)
	}
	if err := json.Unmarshal([]byte(ingredientsJSON), &rec.Ingredients); err != nil {
		return nil, fmt.Errorf("failed to unmarshal ingredients: %w", err)
	}
	return &rec, nil
}

func collectRecipes(rows *sql.Rows) ([]Recipe, error) {
	var recipes []Recipe
	for rows.Next() {
		rec, err := scanRecipe(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recipe: %w", err)
		}
		recipes = append(recipes, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate recipes: %w", err)
	}
	return recipes, nil
}

func emptyIfNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
