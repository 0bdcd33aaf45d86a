package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice")
	createTestUser(t, db, "alicia")
	createTestUser(t, db, "bob")

	t.Run("lookups", func(t *testing.T) {
		byID, err := repo.GetByID(ctx, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, "alice", byID.Username)

		byName, err := repo.GetByUsername(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, alice.ID, byName.ID)

		byWallet, err := repo.GetByWallet(ctx, alice.WalletAddress)
		require.NoError(t, err)
		assert.Equal(t, alice.ID, byWallet.ID)
	})

	t.Run("search matches username and display name", func(t *testing.T) {
		users, total, err := repo.Search(ctx, "ALI", 1, 10)
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		require.Len(t, users, 2)
		assert.Equal(t, "alice", users[0].Username)
		assert.Equal(t, "alicia", users[1].Username)
	})

	t.Run("resolve usernames drops unknown names", func(t *testing.T) {
		users, err := repo.ResolveUsernames(ctx, []string{"alice", "bob", "ghost"})
		require.NoError(t, err)
		assert.Len(t, users, 2)

		users, err = repo.ResolveUsernames(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, users)
	})

	t.Run("deactivate stamps without deleting", func(t *testing.T) {
		require.NoError(t, repo.Deactivate(ctx, alice.ID))

		fetched, err := repo.GetByUsername(ctx, "alice")
		require.NoError(t, err)
		assert.True(t, fetched.IsDeactivated())
	})
}
