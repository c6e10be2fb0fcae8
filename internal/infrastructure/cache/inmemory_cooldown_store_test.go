package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryCooldownStore(t *testing.T) {
	ctx := context.Background()

	t.Run("records and returns the last acceptance", func(t *testing.T) {
		store := NewInMemoryCooldownStore(time.Hour)
		at := time.Now()

		_, ok, err := store.LastAccepted(ctx, "u1")
		require.NoError(t, err)
		assert.False(t, ok)

		require.NoError(t, store.RecordAccepted(ctx, "u1", at))

		got, ok, err := store.LastAccepted(ctx, "u1")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, at, got)
	})

	t.Run("later acceptance replaces the earlier one", func(t *testing.T) {
		store := NewInMemoryCooldownStore(time.Hour)
		first := time.Now()
		second := first.Add(time.Minute)

		require.NoError(t, store.RecordAccepted(ctx, "u1", first))
		require.NoError(t, store.RecordAccepted(ctx, "u1", second))

		got, ok, err := store.LastAccepted(ctx, "u1")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, second, got)
	})

	t.Run("prunes entries past the retention window", func(t *testing.T) {
		store := NewInMemoryCooldownStore(time.Minute)
		stale := time.Now().Add(-time.Hour)
		require.NoError(t, store.RecordAccepted(ctx, "old", stale))

		// A write far enough past the last prune sweeps stale entries
		require.NoError(t, store.RecordAccepted(ctx, "fresh", time.Now().Add(2*time.Minute)))

		_, ok, err := store.LastAccepted(ctx, "old")
		require.NoError(t, err)
		assert.False(t, ok)
		_, ok, err = store.LastAccepted(ctx, "fresh")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("non-positive retention falls back to a sane window", func(t *testing.T) {
		store := NewInMemoryCooldownStore(0)
		require.NoError(t, store.RecordAccepted(ctx, "u1", time.Now()))

		_, ok, err := store.LastAccepted(ctx, "u1")
		require.NoError(t, err)
		assert.True(t, ok)
	})
}
