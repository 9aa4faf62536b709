package shopping

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
	// ErrNotFound is returned when no list matches the given id or token.
	ErrNotFound = errors.New("shopping list not found")
	// ErrNotReady is returned when a mutation targets a list whose document
	// has not been generated yet.
	ErrNotReady = errors.New("shopping list is not ready")
)

// Repository handles persistence of shopping lists.
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates a new shopping list repository.
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

type listRow struct {
	ID          string         `db:"id"`
	HouseholdID string         `db:"household_id"`
	Title       string         `db:"title"`
	Status      string         `db:"status"`
	Error       string         `db:"error"`
	Selections  string         `db:"selections"`
	ListJSON    sql.NullString `db:"list_json"`
	ShareToken  sql.NullString `db:"share_token"`
	CreatedAt   time.Time      `db:"created_at"`
}

const listColumns = `id, household_id, title, status, error, selections, list_json, share_token, created_at`

func scanList(row listRow) (*List, error) {
	l := &List{
		ID:          row.ID,
		HouseholdID: row.HouseholdID,
		Title:       row.Title,
		Status:      Status(row.Status),
		Error:       row.Error,
		ShareToken:  row.ShareToken.String,
		CreatedAt:   row.CreatedAt,
	}

	if err := json.Unmarshal([]byte(row.Selections), &l.Selections); err != nil {
		return nil, fmt.Errorf("malformed selections for list %s: %w", row.ID, err)
	}

	if row.ListJSON.Valid {
		var doc Document
		if err := json.Unmarshal([]byte(row.ListJSON.String), &doc); err != nil {
			return nil, fmt.Errorf("malformed document for list %s: %w", row.ID, err)
		}
		if err := ValidateDocument(&doc); err != nil {
			return nil, fmt.Errorf("invalid document for list %s: %w", row.ID, err)
		}
		l.Document = &doc
	}

	return l, nil
}

// Create inserts a new pending list and returns it.
func (r *Repository) Create(ctx context.Context, householdID, title string, selections []Selection) (*List, error) {
	l := &List{
		ID:          uuid.NewString(),
		HouseholdID: householdID,
		Title:       title,
		Status:      StatusPending,
		Selections:  selections,
		CreatedAt:   time.Now().UTC(),
	}

	selectionsJSON, err := json.Marshal(selections)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal selections: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO shopping_lists (id, household_id, title, status, selections, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		l.ID, l.HouseholdID, l.Title, string(l.Status), string(selectionsJSON), l.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert shopping list: %w", err)
	}

	return l, nil
}

// Get retrieves a list by its ID.
func (r *Repository) Get(ctx context.Context, id string) (*List, error) {
	var row listRow
	err := r.db.GetContext(ctx, &row, `SELECT `+listColumns+` FROM shopping_lists WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get shopping list: %w", err)
	}
	return scanList(row)
}

// GetByToken retrieves a list by its share token. A cleared or unknown token
// yields ErrNotFound.
func (r *Repository) GetByToken(ctx context.Context, token string) (*List, error) {
	if token == "" {
		return nil, ErrNotFound
	}
	var row listRow
	err := r.db.GetContext(ctx, &row, `SELECT `+listColumns+` FROM shopping_lists WHERE share_token = ?`, token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get shopping list by token: %w", err)
	}
	return scanList(row)
}

// ListByHousehold retrieves all of the household's lists, newest first.
func (r *Repository) ListByHousehold(ctx context.Context, householdID string) ([]List, error) {
	var rows []listRow
	err := r.db.SelectContext(ctx, &rows,
		`SELECT `+listColumns+` FROM shopping_lists WHERE household_id = ? ORDER BY created_at DESC`, householdID)
	if err != nil {
		return nil, fmt.Errorf("failed to list shopping lists: %w", err)
	}

	lists := make([]List, 0, len(rows))
	for _, row := range rows {
		l, err := scanList(row)
		if err != nil {
			return nil, err
		}
		lists = append(lists, *l)
	}
	return lists, nil
}

// Delete removes a list owned by the household.
func (r *Repository) Delete(ctx context.Context, id, householdID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM shopping_lists WHERE id = ? AND household_id = ?`, id, householdID)
	if err != nil {
		return fmt.Errorf("failed to delete shopping list: %w", err)
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

// SetDocument stores a generated document and marks the list ready.
func (r *Repository) SetDocument(ctx context.Context, id string, doc *Document) error {
	if err := ValidateDocument(doc); err != nil {
		return err
	}
	docJSON, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	return r.updateStatus(ctx, id, StatusReady, "", string(docJSON))
}

// SetFailed marks the list's generation as failed with an error message.
func (r *Repository) SetFailed(ctx context.Context, id, message string) error {
	return r.updateStatus(ctx, id, StatusFailed, message, "")
}

// SetPending resets a list to pending for a retry, clearing any old error.
func (r *Repository) SetPending(ctx context.Context, id string) error {
	return r.updateStatus(ctx, id, StatusPending, "", "")
}

func (r *Repository) updateStatus(ctx context.Context, id string, status Status, message, docJSON string) error {
	var res sql.Result
	var err error
	if docJSON != "" {
		res, err = r.db.ExecContext(ctx,
			`UPDATE shopping_lists SET status = ?, error = ?, list_json = ? WHERE id = ?`,
			string(status), message, docJSON, id)
	} else {
		res, err = r.db.ExecContext(ctx,
			`UPDATE shopping_lists SET status = ?, error = ? WHERE id = ?`,
			string(status), message, id)
	}
	if err != nil {
		return fmt.Errorf("failed to update shopping list status: %w", err)
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

// EnableSharing sets a share token on the list and returns it. Enabling an
// already-shared list returns the existing token unchanged.
func (r *Repository) EnableSharing(ctx context.Context, id, householdID string) (string, error) {
	l, err := r.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if l.HouseholdID != householdID {
		return "", ErrNotFound
	}
	if l.Shared() {
		return l.ShareToken, nil
	}

	token := uuid.NewString()
	_, err = r.db.ExecContext(ctx,
		`UPDATE shopping_lists SET share_token = ? WHERE id = ?`, token, id)
	if err != nil {
		return "", fmt.Errorf("failed to set share token: %w", err)
	}
	return token, nil
}

// RevokeSharing clears the share token. Every previously distributed link
// stops resolving immediately.
func (r *Repository) RevokeSharing(ctx context.Context, id, householdID string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE shopping_lists SET share_token = NULL WHERE id = ? AND household_id = ?`, id, householdID)
	if err != nil {
		return fmt.Errorf("failed to clear share token: %w", err)
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

// Key addresses a list either by its ID (owner path, with the session's
// household checked against the row) or by its share token (anonymous path).
type Key struct {
	ID          string
	HouseholdID string
	Token       string
}

// Mutate applies fn to the list's document inside a single transaction:
// the row is read, the pure mutation applied, and the result written back,
// so each mutation is an atomic read-modify-write at row granularity. The
// updated list is returned as the canonical state for the client to adopt.
func (r *Repository) Mutate(ctx context.Context, key Key, fn func(Document) (Document, error)) (*List, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var row listRow
	if key.Token != "" {
		err = tx.GetContext(ctx, &row, `SELECT `+listColumns+` FROM shopping_lists WHERE share_token = ?`, key.Token)
	} else {
		err = tx.GetContext(ctx, &row, `SELECT `+listColumns+` FROM shopping_lists WHERE id = ?`, key.ID)
	}
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read shopping list: %w", err)
	}

	l, err := scanList(row)
	if err != nil {
		return nil, err
	}
	if key.Token == "" && key.HouseholdID != "" && l.HouseholdID != key.HouseholdID {
		return nil, ErrNotFound
	}
	if l.Document == nil {
		return nil, ErrNotReady
	}

	updated, err := fn(*l.Document)
	if err != nil {
		return nil, err
	}
	if err := ValidateDocument(&updated); err != nil {
		return nil, err
	}

	docJSON, err := json.Marshal(updated)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal document: %w", err)
	}

	_, err = tx.ExecContext(ctx, `UPDATE shopping_lists SET list_json = ? WHERE id = ?`, string(docJSON), l.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to write shopping list: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	l.Document = &updated
	return l, nil
}
