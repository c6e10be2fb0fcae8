package memory

import (
	"context"
	"testing"

	"github.com/fixmarket/backend/internal/domain/relay"
	"github.com/fixmarket/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinkRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("put and find both directions", func(t *testing.T) {
		repo := NewLinkRepository()
		a, b := relay.NewPair("cust1", "exec1", 1)
		require.NoError(t, repo.Put(ctx, a, b))

		link, err := repo.Find(ctx, "cust1")
		require.NoError(t, err)
		assert.Equal(t, "exec1", link.PeerID)

		link, err = repo.Find(ctx, "exec1")
		require.NoError(t, err)
		assert.Equal(t, "cust1", link.PeerID)
	})

	t.Run("delete removes both entries", func(t *testing.T) {
		repo := NewLinkRepository()
		a, b := relay.NewPair("cust1", "exec1", 1)
		require.NoError(t, repo.Put(ctx, a, b))
		require.NoError(t, repo.Delete(ctx, "cust1", "exec1"))

		_, err := repo.Find(ctx, "cust1")
		assert.ErrorIs(t, err, shared.ErrNotFound)
		_, err = repo.Find(ctx, "exec1")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("dump and restore", func(t *testing.T) {
		repo := NewLinkRepository()
		a, b := relay.NewPair("cust1", "exec1", 1)
		require.NoError(t, repo.Put(ctx, a, b))

		restored := NewLinkRepository()
		restored.Restore(repo.Dump())

		all, err := restored.All(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})
}

func TestRevealRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("save and find", func(t *testing.T) {
		repo := NewRevealRepository()
		state := relay.NewRevealState(1, "cust1", "exec1")
		require.NoError(t, state.Request("cust1"))
		require.NoError(t, repo.Save(ctx, state))

		found, err := repo.Find(ctx, 1)
		require.NoError(t, err)
		assert.True(t, found.Requested["cust1"])

		_, err = repo.Find(ctx, 2)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("stored state never aliases caller state", func(t *testing.T) {
		repo := NewRevealRepository()
		state := relay.NewRevealState(1, "cust1", "exec1")
		require.NoError(t, repo.Save(ctx, state))

		require.NoError(t, state.Request("cust1"))
		found, err := repo.Find(ctx, 1)
		require.NoError(t, err)
		assert.False(t, found.Requested["cust1"])
	})

	t.Run("dump and restore", func(t *testing.T) {
		repo := NewRevealRepository()
		state := relay.NewRevealState(1, "cust1", "exec1")
		state.Override()
		require.NoError(t, repo.Save(ctx, state))

		restored := NewRevealRepository()
		restored.Restore(repo.Dump())

		found, err := restored.Find(ctx, 1)
		require.NoError(t, err)
		assert.True(t, found.Granted())
	})
}
