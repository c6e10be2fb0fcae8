package snapshot

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/fixmarket/backend/internal/domain/contact"
	"github.com/fixmarket/backend/internal/domain/identity"
	"github.com/fixmarket/backend/internal/domain/order"
	"github.com/fixmarket/backend/internal/domain/relay"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildSnapshot(t *testing.T) Snapshot {
	participant, err := identity.NewParticipant("u1", "alice", "Alice")
	require.NoError(t, err)

	loc, err := order.NewAddressLocation("5 Oak St")
	require.NoError(t, err)
	addressOrder, err := order.NewOrder(1, "u1", "paint wall", nil, loc)
	require.NoError(t, err)
	require.NoError(t, addressOrder.PlaceBid("exec1", decimal.RequireFromString("100.50")))

	geoOrder, err := order.NewOrder(2, "u2", "fix sink", nil, order.NewGeoLocation(53.9, 27.56667))
	require.NoError(t, err)

	a, b := relay.NewPair("u1", "exec1", 1)

	reveal := relay.NewRevealState(1, "u1", "exec1")
	require.NoError(t, reveal.Request("u1"))

	request, err := contact.NewRequest(1, "u1", "Alice", "5551234", contact.SourceFreeText)
	require.NoError(t, err)

	return Snapshot{
		Participants:  []identity.Participant{*participant},
		Orders:        []order.Order{*addressOrder, *geoOrder},
		NextOrderID:   3,
		Links:         []relay.Link{a, b},
		Reveals:       []relay.RevealState{*reveal},
		Contacts:      []contact.Request{*request},
		NextContactID: 2,
	}
}

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "snapshot.db")

	store, err := New(path)
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, buildSnapshot(t)))

	// Reopen the file the way a restarted process would
	reopened, err := New(path)
	require.NoError(t, err)
	loaded, err := reopened.Load(ctx)
	require.NoError(t, err)

	require.Len(t, loaded.Participants, 1)
	assert.Equal(t, "alice", loaded.Participants[0].Handle)

	require.Len(t, loaded.Orders, 2)
	byID := make(map[int64]order.Order, 2)
	for _, o := range loaded.Orders {
		byID[o.ID] = o
	}
	assert.Equal(t, "5 Oak St", byID[1].Location.Display())
	require.Len(t, byID[1].Bids, 1)
	assert.True(t, byID[1].Bids[0].NetPrice.Equal(decimal.RequireFromString("100.50")))
	assert.Equal(t, "geo point 53.90000, 27.56667", byID[2].Location.Display())
	assert.Equal(t, int64(3), loaded.NextOrderID)

	require.Len(t, loaded.Links, 2)
	require.Len(t, loaded.Reveals, 1)
	assert.True(t, loaded.Reveals[0].Requested["u1"])

	require.Len(t, loaded.Contacts, 1)
	assert.Equal(t, "5551234", loaded.Contacts[0].Phone)
	assert.Equal(t, int64(2), loaded.NextContactID)
}

func TestStore_SaveOverwrites(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "snapshot.db")

	store, err := New(path)
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, buildSnapshot(t)))

	// A later save fully replaces the earlier one
	require.NoError(t, store.Save(ctx, Snapshot{NextOrderID: 10, NextContactID: 5}))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, loaded.Participants)
	assert.Empty(t, loaded.Orders)
	assert.Equal(t, int64(10), loaded.NextOrderID)
	assert.Equal(t, int64(5), loaded.NextContactID)
}

func TestStore_LoadEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.db")
	store, err := New(path)
	require.NoError(t, err)

	loaded, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, loaded.Orders)
	assert.Equal(t, int64(1), loaded.NextOrderID)
	assert.Equal(t, int64(1), loaded.NextContactID)
}
