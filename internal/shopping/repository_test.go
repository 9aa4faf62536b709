package shopping

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matplan/internal/database"
	"matplan/internal/household"
)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := database.NewDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return db.SQL
}

func newTestHousehold(t *testing.T, db *sqlx.DB) *household.Household {
	t.Helper()

	h, err := household.NewRepository(db).Create(context.Background(), "Testfamilien", "user-1")
	require.NoError(t, err)
	return h
}

func readyList(t *testing.T, repo *Repository, householdID string) *List {
	t.Helper()
	ctx := context.Background()

	l, err := repo.Create(ctx, householdID, "Ukeshandel", []Selection{{RecipeID: "r1", Table: "household", Servings: 4}})
	require.NoError(t, err)

	doc := sampleDocument()
	require.NoError(t, repo.SetDocument(ctx, l.ID, &doc))

	l, err = repo.Get(ctx, l.ID)
	require.NoError(t, err)
	return l
}

func TestRepositoryLifecycle(t *testing.T) {
	db := newTestDB(t)
	h := newTestHousehold(t, db)
	repo := NewRepository(db)
	ctx := context.Background()

	l, err := repo.Create(ctx, h.ID, "Ukeshandel", []Selection{{RecipeID: "r1", Servings: 2}})
	require.NoError(t, err)
	assert.Equal(t, StatusPending, l.Status)
	assert.Nil(t, l.Document)

	got, err := repo.Get(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ukeshandel", got.Title)
	assert.Len(t, got.Selections, 1)

	doc := sampleDocument()
	require.NoError(t, repo.SetDocument(ctx, l.ID, &doc))

	got, err = repo.Get(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusReady, got.Status)
	require.NotNil(t, got.Document)
	assert.Len(t, got.Document.Categories, 2)

	require.NoError(t, repo.SetFailed(ctx, l.ID, "boom"))
	got, err = repo.Get(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, got.Status)
	assert.Equal(t, "boom", got.Error)

	require.NoError(t, repo.Delete(ctx, l.ID, h.ID))
	_, err = repo.Get(ctx, l.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRepositorySharing(t *testing.T) {
	db := newTestDB(t)
	h := newTestHousehold(t, db)
	repo := NewRepository(db)
	ctx := context.Background()

	l := readyList(t, repo, h.ID)

	token, err := repo.EnableSharing(ctx, l.ID, h.ID)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	t.Run("enabling again returns the same token", func(t *testing.T) {
		again, err := repo.EnableSharing(ctx, l.ID, h.ID)
		require.NoError(t, err)
		assert.Equal(t, token, again)
	})

	t.Run("token resolves the list", func(t *testing.T) {
		got, err := repo.GetByToken(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, l.ID, got.ID)
	})

	t.Run("wrong household cannot share", func(t *testing.T) {
		_, err := repo.EnableSharing(ctx, l.ID, "other-household")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("toggle through one actor is visible on the next token lookup", func(t *testing.T) {
		_, err := repo.Mutate(ctx, Key{ID: l.ID, HouseholdID: h.ID}, func(doc Document) (Document, error) {
			return Toggle(doc, "4 dl melk"), nil
		})
		require.NoError(t, err)

		got, err := repo.GetByToken(ctx, token)
		require.NoError(t, err)
		assert.True(t, got.Document.Checked("4 dl melk"))
	})

	t.Run("revoke cuts off every distributed link", func(t *testing.T) {
		require.NoError(t, repo.RevokeSharing(ctx, l.ID, h.ID))

		_, err := repo.GetByToken(ctx, token)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestRepositoryMutate(t *testing.T) {
	db := newTestDB(t)
	h := newTestHousehold(t, db)
	repo := NewRepository(db)
	ctx := context.Background()

	t.Run("pending list cannot be mutated", func(t *testing.T) {
		l, err := repo.Create(ctx, h.ID, "Venter", []Selection{{RecipeID: "r1", Servings: 2}})
		require.NoError(t, err)

		_, err = repo.Mutate(ctx, Key{ID: l.ID, HouseholdID: h.ID}, func(doc Document) (Document, error) {
			return doc, nil
		})
		assert.ErrorIs(t, err, ErrNotReady)
	})

	t.Run("wrong household is not found", func(t *testing.T) {
		l := readyList(t, repo, h.ID)

		_, err := repo.Mutate(ctx, Key{ID: l.ID, HouseholdID: "other"}, func(doc Document) (Document, error) {
			return doc, nil
		})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("mutation error leaves the row unchanged", func(t *testing.T) {
		l := readyList(t, repo, h.ID)

		_, err := repo.Mutate(ctx, Key{ID: l.ID, HouseholdID: h.ID}, func(doc Document) (Document, error) {
			return Edit(doc, "Meieri", 99, "x")
		})
		assert.ErrorIs(t, err, ErrIndexOutOfRange)

		got, err := repo.Get(ctx, l.ID)
		require.NoError(t, err)
		assert.Equal(t, sampleDocument().Categories, got.Document.Categories)
	})

	t.Run("interleaved stale mutations keep the document well-formed", func(t *testing.T) {
		l := readyList(t, repo, h.ID)
		key := Key{ID: l.ID, HouseholdID: h.ID}

		_, err := repo.Mutate(ctx, key, func(doc Document) (Document, error) {
			return Remove(doc, "Meieri", 1)
		})
		require.NoError(t, err)

		// A second actor edits by a now-stale index.
		_, err = repo.Mutate(ctx, key, func(doc Document) (Document, error) {
			return Edit(doc, "Meieri", 1, "300 g smør")
		})
		assert.ErrorIs(t, err, ErrIndexOutOfRange)

		got, err := repo.Get(ctx, l.ID)
		require.NoError(t, err)
		require.NoError(t, ValidateDocument(got.Document))
	})
}

func TestRepositoryListByHousehold(t *testing.T) {
	db := newTestDB(t)
	h := newTestHousehold(t, db)
	repo := NewRepository(db)
	ctx := context.Background()

	_, err := repo.Create(ctx, h.ID, "Første", []Selection{{RecipeID: "a", Servings: 2}})
	require.NoError(t, err)
	_, err = repo.Create(ctx, h.ID, "Andre", []Selection{{RecipeID: "b", Servings: 2}})
	require.NoError(t, err)

	lists, err := repo.ListByHousehold(ctx, h.ID)
	require.NoError(t, err)
	assert.Len(t, lists, 2)

	other, err := repo.ListByHousehold(ctx, "unknown")
	require.NoError(t, err)
	assert.Empty(t, other)
}
