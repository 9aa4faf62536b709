package recipe

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"matplan/internal/tag"
)

var (
	// ErrNotFound is returned when a recipe does not exist.
	ErrNotFound = errors.New("recipe not found")
	// ErrReadOnly is returned when a caller tries to modify a system recipe.
	ErrReadOnly = errors.New("system recipes are read-only")
)

// Repository is a database-backed repository for recipes.
type Repository struct {
	db   *sqlx.DB
	tags *tag.Repository
}

// NewRepository creates a new Repository.
func NewRepository(db *sqlx.DB, tags *tag.Repository) *Repository {
	return &Repository{db: db, tags: tags}
}

type recipeRow struct {
	ID           string         `db:"id"`
	HouseholdID  sql.NullString `db:"household_id"`
	Title        string         `db:"title"`
	Servings     float64        `db:"servings"`
	Icon         int            `db:"icon"`
	Description  string         `db:"description"`
	SourceURL    string         `db:"source_url"`
	Ingredients  string         `db:"ingredients"`
	Instructions string         `db:"instructions"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

const recipeColumns = `id, household_id, title, servings, icon, description, source_url, ingredients, instructions, created_at, updated_at`

func (r *Repository) scanRecipe(ctx context.Context, row recipeRow) (*Recipe, error) {
	rec := &Recipe{
		ID:          row.ID,
		HouseholdID: row.HouseholdID.String,
		Title:       row.Title,
		Servings:    row.Servings,
		Icon:        row.Icon,
		Description: row.Description,
		SourceURL:   row.SourceURL,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}

	if err := json.Unmarshal([]byte(row.Ingredients), &rec.Ingredients); err != nil {
		return nil, fmt.Errorf("malformed ingredients for recipe %s: %w", row.ID, err)
	}
	if err := json.Unmarshal([]byte(row.Instructions), &rec.Instructions); err != nil {
		return nil, fmt.Errorf("malformed instructions for recipe %s: %w", row.ID, err)
	}

	tags, err := r.tags.NamesForRecipe(ctx, row.ID)
	if err != nil {
		return nil, err
	}
	rec.Tags = tags

	return rec, nil
}

// Save inserts or updates a household recipe, registering any new tag names
// in the household's registry. System recipes cannot be saved through here.
func (r *Repository) Save(ctx context.Context, rec *Recipe) error {
	if rec.IsSystem() {
		return ErrReadOnly
	}
	if err := rec.Validate(); err != nil {
		return err
	}

	if rec.ID == "" {
		rec.ID = uuid.NewString()
		rec.CreatedAt = time.Now().UTC()
	}
	rec.UpdatedAt = time.Now().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = rec.UpdatedAt
	}

	ingredientsJSON, err := json.Marshal(rec.Ingredients)
	if err != nil {
		return fmt.Errorf("failed to marshal ingredients: %w", err)
	}
	instructionsJSON, err := json.Marshal(rec.Instructions)
	if err != nil {
		return fmt.Errorf("failed to marshal instructions: %w", err)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO recipes (id, household_id, title, servings, icon, description, source_url, ingredients, instructions, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			title = excluded.title,
			servings = excluded.servings,
			icon = excluded.icon,
			description = excluded.description,
			source_url = excluded.source_url,
			ingredients = excluded.ingredients,
			instructions = excluded.instructions,
			updated_at = excluded.updated_at`,
		rec.ID, rec.HouseholdID, rec.Title, rec.Servings, rec.Icon, rec.Description,
		rec.SourceURL, string(ingredientsJSON), string(instructionsJSON), rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save recipe: %w", err)
	}

	tagIDs, err := r.tags.Ensure(ctx, tx, rec.HouseholdID, rec.Tags)
	if err != nil {
		return err
	}
	if err := r.tags.SetRecipeTags(ctx, tx, rec.ID, tagIDs); err != nil {
		return err
	}

	return tx.Commit()
}

// SaveSystem inserts a recipe into the shared system catalog. System recipes
// carry no tags in a household registry.
func (r *Repository) SaveSystem(ctx context.Context, rec *Recipe) error {
	rec.HouseholdID = ""
	if err := rec.Validate(); err != nil {
		return err
	}

	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now

	ingredientsJSON, err := json.Marshal(rec.Ingredients)
	if err != nil {
		return fmt.Errorf("failed to marshal ingredients: %w", err)
	}
	instructionsJSON, err := json.Marshal(rec.Instructions)
	if err != nil {
		return fmt.Errorf("failed to marshal instructions: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO recipes (id, household_id, title, servings, icon, description, source_url, ingredients, instructions, created_at, updated_at)
		VALUES (?, NULL, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			title = excluded.title,
			servings = excluded.servings,
			icon = excluded.icon,
			description = excluded.description,
			source_url = excluded.source_url,
			ingredients = excluded.ingredients,
			instructions = excluded.instructions,
			updated_at = excluded.updated_at`,
		rec.ID, rec.Title, rec.Servings, rec.Icon, rec.Description,
		rec.SourceURL, string(ingredientsJSON), string(instructionsJSON), rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save system recipe: %w", err)
	}
	return nil
}

// Get retrieves a recipe by its ID, regardless of owner.
func (r *Repository) Get(ctx context.Context, id string) (*Recipe, error) {
	var row recipeRow
	err := r.db.GetContext(ctx, &row, `SELECT `+recipeColumns+` FROM recipes WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get recipe: %w", err)
	}
	return r.scanRecipe(ctx, row)
}

// GetSystem retrieves a recipe from the shared system catalog. Household
// recipes are not reachable through here.
func (r *Repository) GetSystem(ctx context.Context, id string) (*Recipe, error) {
	rec, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !rec.IsSystem() {
		return nil, ErrNotFound
	}
	return rec, nil
}

// GetForHousehold retrieves a recipe and verifies it belongs to the household.
func (r *Repository) GetForHousehold(ctx context.Context, id, householdID string) (*Recipe, error) {
	rec, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.HouseholdID != householdID {
		return nil, ErrNotFound
	}
	return rec, nil
}

// ListByHousehold retrieves the household's recipes, newest first. When
// tagFilter is non-empty only recipes carrying that tag are returned.
func (r *Repository) ListByHousehold(ctx context.Context, householdID, tagFilter string) ([]Recipe, error) {
	var rows []recipeRow
	var err error

	if tagFilter != "" {
		err = r.db.SelectContext(ctx, &rows, `
			SELECT DISTINCT r.id, r.household_id, r.title, r.servings, r.icon, r.description, r.source_url,
				r.ingredients, r.instructions, r.created_at, r.updated_at
			FROM recipes r
			JOIN recipe_tags rt ON rt.recipe_id = r.id
			JOIN tags t ON t.id = rt.tag_id
			WHERE r.household_id = ? AND lower(t.name) = ?
			ORDER BY r.created_at DESC`,
			householdID, tag.Normalize(tagFilter))
	} else {
		err = r.db.SelectContext(ctx, &rows,
			`SELECT `+recipeColumns+` FROM recipes WHERE household_id = ? ORDER BY created_at DESC`, householdID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}

	return r.scanRecipes(ctx, rows)
}

// ListSystem retrieves the shared system catalog, ordered by title.
func (r *Repository) ListSystem(ctx context.Context) ([]Recipe, error) {
	var rows []recipeRow
	err := r.db.SelectContext(ctx, &rows,
		`SELECT `+recipeColumns+` FROM recipes WHERE household_id IS NULL ORDER BY title`)
	if err != nil {
		return nil, fmt.Errorf("failed to list system recipes: %w", err)
	}
	return r.scanRecipes(ctx, rows)
}

func (r *Repository) scanRecipes(ctx context.Context, rows []recipeRow) ([]Recipe, error) {
	recipes := make([]Recipe, 0, len(rows))
	for _, row := range rows {
		rec, err := r.scanRecipe(ctx, row)
		if err != nil {
			return nil, err
		}
		recipes = append(recipes, *rec)
	}
	return recipes, nil
}

// Delete removes a household recipe.
func (r *Repository) Delete(ctx context.Context, id, householdID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM recipes WHERE id = ? AND household_id = ?`, id, householdID)
	if err != nil {
		return fmt.Errorf("failed to delete recipe: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// CopyToHousehold clones a system recipe into a household's collection by
// value. The copy gets a fresh ID and keeps no link back to the original.
func (r *Repository) CopyToHousehold(ctx context.Context, systemID, householdID string) (*Recipe, error) {
	src, err := r.Get(ctx, systemID)
	if err != nil {
		return nil, err
	}
	if !src.IsSystem() {
		return nil, ErrNotFound
	}

	cp := *src
	cp.ID = ""
	cp.HouseholdID = householdID
	cp.Ingredients = append([]string(nil), src.Ingredients...)
	cp.Instructions = append([]Instruction(nil), src.Instructions...)
	cp.Tags = append([]string(nil), src.Tags...)

	if err := r.Save(ctx, &cp); err != nil {
		return nil, err
	}
	return &cp, nil
}
