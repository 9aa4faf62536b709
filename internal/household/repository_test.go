package household

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matplan/internal/database"
)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := database.NewDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return db.SQL
}

func TestCreate(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	ctx := context.Background()

	h, err := repo.Create(ctx, "Testfamilien", "user-1")
	require.NoError(t, err)
	assert.Equal(t, 4, h.DefaultServings)
	assert.Equal(t, DefaultCategories, h.Categories)

	members, err := repo.Members(ctx, h.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "user-1", members[0].UserID)
}

func TestUpdateSettings(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	ctx := context.Background()

	h, err := repo.Create(ctx, "Testfamilien", "user-1")
	require.NoError(t, err)

	t.Run("replaces servings and category order", func(t *testing.T) {
		updated, err := repo.UpdateSettings(ctx, h.ID, 6, []string{"Meieri", "Annet"})
		require.NoError(t, err)
		assert.Equal(t, 6, updated.DefaultServings)
		assert.Equal(t, []string{"Meieri", "Annet"}, updated.Categories)

		got, err := repo.Get(ctx, h.ID)
		require.NoError(t, err)
		assert.Equal(t, updated.Categories, got.Categories)
	})

	t.Run("rejects invalid settings", func(t *testing.T) {
		_, err := repo.UpdateSettings(ctx, h.ID, 0, []string{"Meieri"})
		assert.Error(t, err)

		_, err = repo.UpdateSettings(ctx, h.ID, 4, nil)
		assert.Error(t, err)

		_, err = repo.UpdateSettings(ctx, h.ID, 4, []string{"Meieri", "meieri"})
		assert.Error(t, err, "duplicate category names differing only in case")
	})

	t.Run("unknown household", func(t *testing.T) {
		_, err := repo.UpdateSettings(ctx, "nope", 4, []string{"Meieri"})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestAddMember(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	ctx := context.Background()

	h, err := repo.Create(ctx, "Testfamilien", "user-1")
	require.NoError(t, err)

	t.Run("adds up to the cap", func(t *testing.T) {
		for i := 2; i <= MaxMembers; i++ {
			require.NoError(t, repo.AddMember(ctx, h.ID, fmt.Sprintf("user-%d", i)))
		}

		members, err := repo.Members(ctx, h.ID)
		require.NoError(t, err)
		assert.Len(t, members, MaxMembers)
	})

	t.Run("rejects the ninth member", func(t *testing.T) {
		err := repo.AddMember(ctx, h.ID, "user-9")
		assert.ErrorIs(t, err, ErrFull)
	})

	t.Run("rejects duplicate membership", func(t *testing.T) {
		err := repo.AddMember(ctx, h.ID, "user-1")
		assert.ErrorIs(t, err, ErrAlreadyMember)
	})

	t.Run("unknown household", func(t *testing.T) {
		err := repo.AddMember(ctx, "nope", "user-1")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
