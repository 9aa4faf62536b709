package household

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var (
	// ErrNotFound is returned when a household does not exist.
	ErrNotFound = errors.New("household not found")
	// ErrFull is returned when a household already has MaxMembers members.
	ErrFull = errors.New("household is full")
	// ErrAlreadyMember is returned when the user already belongs to the household.
	ErrAlreadyMember = errors.New("user is already a member")
)

// Repository handles persistence of households and their members.
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates a new household repository.
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

type householdRow struct {
	ID              string    `db:"id"`
	Name            string    `db:"name"`
	DefaultServings int       `db:"default_servings"`
	Categories      string    `db:"categories"`
	CreatedAt       time.Time `db:"created_at"`
}

func (r *Repository) scanHousehold(row householdRow) (*Household, error) {
	var categories []string
	if err := json.Unmarshal([]byte(row.Categories), &categories); err != nil {
		return nil, fmt.Errorf("malformed categories for household %s: %w", row.ID, err)
	}

	return &Household{
		ID:              row.ID,
		Name:            row.Name,
		DefaultServings: row.DefaultServings,
		Categories:      categories,
		CreatedAt:       row.CreatedAt,
	}, nil
}

// Create inserts a new household and registers the creator as its first member.
func (r *Repository) Create(ctx context.Context, name, creatorUserID string) (*Household, error) {
	h := &Household{
		ID:              uuid.NewString(),
		Name:            name,
		DefaultServings: 4,
		Categories:      append([]string(nil), DefaultCategories...),
		CreatedAt:       time.Now().UTC(),
	}
	if err := h.Validate(); err != nil {
		return nil, err
	}

	categoriesJSON, err := json.Marshal(h.Categories)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal categories: %w", err)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO households (id, name, default_servings, categories, created_at) VALUES (?, ?, ?, ?, ?)`,
		h.ID, h.Name, h.DefaultServings, string(categoriesJSON), h.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert household: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO household_members (household_id, user_id, joined_at) VALUES (?, ?, ?)`,
		h.ID, creatorUserID, h.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert creator membership: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return h, nil
}

// Get retrieves a household by its ID.
func (r *Repository) Get(ctx context.Context, id string) (*Household, error) {
	var row householdRow
	err := r.db.GetContext(ctx, &row, `SELECT id, name, default_servings, categories, created_at FROM households WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get household: %w", err)
	}
	return r.scanHousehold(row)
}

// UpdateSettings replaces the default servings and the ordered category names.
func (r *Repository) UpdateSettings(ctx context.Context, id string, defaultServings int, categories []string) (*Household, error) {
	h, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	h.DefaultServings = defaultServings
	h.Categories = categories
	if err := h.Validate(); err != nil {
		return nil, err
	}

	categoriesJSON, err := json.Marshal(h.Categories)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal categories: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`UPDATE households SET default_servings = ?, categories = ? WHERE id = ?`,
		h.DefaultServings, string(categoriesJSON), id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update household: %w", err)
	}

	return h, nil
}

// Members lists the members of a household.
func (r *Repository) Members(ctx context.Context, householdID string) ([]Member, error) {
	var members []Member
	err := r.db.SelectContext(ctx, &members,
		`SELECT household_id, user_id, joined_at FROM household_members WHERE household_id = ? ORDER BY joined_at`,
		householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	return members, nil
}

// AddMember adds a user to the household, enforcing the member cap. The count
// and the insert run in one transaction so concurrent joins cannot exceed the cap.
func (r *Repository) AddMember(ctx context.Context, householdID, userID string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.GetContext(ctx, &exists, `SELECT COUNT(*) FROM households WHERE id = ?`, householdID)
	if err != nil {
		return fmt.Errorf("failed to check household: %w", err)
	}
	if exists == 0 {
		return ErrNotFound
	}

	var member int
	err = tx.GetContext(ctx, &member,
		`SELECT COUNT(*) FROM household_members WHERE household_id = ? AND user_id = ?`, householdID, userID)
	if err != nil {
		return fmt.Errorf("failed to check membership: %w", err)
	}
	if member > 0 {
		return ErrAlreadyMember
	}

	var count int
	err = tx.GetContext(ctx, &count, `SELECT COUNT(*) FROM household_members WHERE household_id = ?`, householdID)
	if err != nil {
		return fmt.Errorf("failed to count members: %w", err)
	}
	if count >= MaxMembers {
		return ErrFull
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO household_members (household_id, user_id, joined_at) VALUES (?, ?, ?)`,
		householdID, userID, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert member: %w", err)
	}

	return tx.Commit()
}
