package tag

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var (
	// ErrNotFound is returned when a tag does not exist.
	ErrNotFound = errors.New("tag not found")
	// ErrDuplicate is returned when renaming would collide with an existing tag.
	ErrDuplicate = errors.New("tag name already exists")
)

// Repository handles the per-household tag registry and the recipe-tag join.
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates a new tag repository.
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// ListByHousehold returns the household's registry ordered by name.
func (r *Repository) ListByHousehold(ctx context.Context, householdID string) ([]Tag, error) {
	var tags []Tag
	err := r.db.SelectContext(ctx, &tags,
		`SELECT id, household_id, name FROM tags WHERE household_id = ? ORDER BY name`, householdID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	return tags, nil
}

// Ensure looks up the given names in the household's registry, creating any
// that are missing, and returns the tag IDs in input order. Lookup is
// case-insensitive; names are stored normalized.
func (r *Repository) Ensure(ctx context.Context, ext sqlx.ExtContext, householdID string, names []string) ([]string, error) {
	ids := make([]string, 0, len(names))
	seen := make(map[string]string)

	for _, raw := range names {
		name := Normalize(raw)
		if name == "" {
			continue
		}
		if id, ok := seen[name]; ok {
			ids = append(ids, id)
			continue
		}

		var id string
		err := sqlx.GetContext(ctx, ext, &id,
			`SELECT id FROM tags WHERE household_id = ? AND lower(name) = ?`, householdID, name)
		if err != nil {
			if !errors.Is(err, sql.ErrNoRows) {
				return nil, fmt.Errorf("failed to look up tag %q: %w", name, err)
			}
			id = uuid.NewString()
			_, err = ext.ExecContext(ctx,
				`INSERT INTO tags (id, household_id, name) VALUES (?, ?, ?)`, id, householdID, name)
			if err != nil {
				return nil, fmt.Errorf("failed to create tag %q: %w", name, err)
			}
		}

		seen[name] = id
		ids = append(ids, id)
	}

	return ids, nil
}

// Rename changes a tag's name. Recipes referencing the tag follow automatically
// through the join table.
func (r *Repository) Rename(ctx context.Context, householdID, tagID, newName string) error {
	name := Normalize(newName)
	if name == "" {
		return fmt.Errorf("tag name must not be empty")
	}

	var existingID string
	err := r.db.GetContext(ctx, &existingID,
		`SELECT id FROM tags WHERE household_id = ? AND lower(name) = ?`, householdID, name)
	if err == nil && existingID != tagID {
		return ErrDuplicate
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE tags SET name = ? WHERE id = ? AND household_id = ?`, name, tagID, householdID)
	if err != nil {
		return fmt.Errorf("failed to rename tag: %w", err)
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

// Delete removes a tag from the registry. Join rows cascade, so the tag
// disappears from every recipe referencing it.
func (r *Repository) Delete(ctx context.Context, householdID, tagID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM tags WHERE id = ? AND household_id = ?`, tagID, householdID)
	if err != nil {
		return fmt.Errorf("failed to delete tag: %w", err)
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

// SetRecipeTags replaces the join rows for a recipe.
func (r *Repository) SetRecipeTags(ctx context.Context, ext sqlx.ExtContext, recipeID string, tagIDs []string) error {
	if _, err := ext.ExecContext(ctx, `DELETE FROM recipe_tags WHERE recipe_id = ?`, recipeID); err != nil {
		return fmt.Errorf("failed to clear recipe tags: %w", err)
	}
	for _, tagID := range tagIDs {
		_, err := ext.ExecContext(ctx,
			`INSERT OR IGNORE INTO recipe_tags (recipe_id, tag_id) VALUES (?, ?)`, recipeID, tagID)
		if err != nil {
			return fmt.Errorf("failed to insert recipe tag: %w", err)
		}
	}
	return nil
}

// NamesForRecipe returns the tag names attached to a recipe, ordered by name.
func (r *Repository) NamesForRecipe(ctx context.Context, recipeID string) ([]string, error) {
	var names []string
	err := r.db.SelectContext(ctx, &names,
		`SELECT t.name FROM tags t JOIN recipe_tags rt ON rt.tag_id = t.id WHERE rt.recipe_id = ? ORDER BY t.name`,
		recipeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipe tags: %w", err)
	}
	return names, nil
}
