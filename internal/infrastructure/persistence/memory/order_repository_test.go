package memory

import (
	"context"
	"testing"
	"time"

	"github.com/fixmarket/backend/internal/domain/order"
	"github.com/fixmarket/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func storeOrder(t *testing.T, repo *OrderRepository, customerID string, at *time.Time) *order.Order {
	ctx := context.Background()
	id, err := repo.NextID(ctx)
	require.NoError(t, err)

	loc, err := order.NewAddressLocation("5 Oak St")
	require.NoError(t, err)
	o, err := order.NewOrder(id, customerID, "paint wall", at, loc)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, o))
	return o
}

func TestOrderRepository_FindByID(t *testing.T) {
	repo := NewOrderRepository()
	stored := storeOrder(t, repo, "cust1", nil)

	found, err := repo.FindByID(context.Background(), stored.ID)
	require.NoError(t, err)
	assert.Equal(t, "cust1", found.CustomerID)

	// Mutating the returned copy must not touch stored state
	require.NoError(t, found.PlaceBid("exec1", decimal.NewFromInt(100)))
	again, err := repo.FindByID(context.Background(), stored.ID)
	require.NoError(t, err)
	assert.Empty(t, again.Bids)

	_, err = repo.FindByID(context.Background(), 999)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestOrderRepository_FindOpen_Sorting(t *testing.T) {
	repo := NewOrderRepository()
	later := time.Now().Add(48 * time.Hour)
	sooner := time.Now().Add(2 * time.Hour)

	unscheduled := storeOrder(t, repo, "cust1", nil)
	laterOrder := storeOrder(t, repo, "cust2", &later)
	soonerOrder := storeOrder(t, repo, "cust3", &sooner)

	open, err := repo.FindOpen(context.Background())
	require.NoError(t, err)
	require.Len(t, open, 3)
	assert.Equal(t, soonerOrder.ID, open[0].ID)
	assert.Equal(t, laterOrder.ID, open[1].ID)
	assert.Equal(t, unscheduled.ID, open[2].ID)
}

func TestOrderRepository_FindOpen_SkipsNonOpen(t *testing.T) {
	ctx := context.Background()
	repo := NewOrderRepository()
	o := storeOrder(t, repo, "cust1", nil)
	storeOrder(t, repo, "cust2", nil)

	fresh, err := repo.FindByID(ctx, o.ID)
	require.NoError(t, err)
	fresh.Close()
	require.NoError(t, repo.Save(ctx, fresh))

	open, err := repo.FindOpen(ctx)
	require.NoError(t, err)
	assert.Len(t, open, 1)
}

func TestOrderRepository_Save_VersionConflict(t *testing.T) {
	ctx := context.Background()
	repo := NewOrderRepository()
	o := storeOrder(t, repo, "cust1", nil)

	first, err := repo.FindByID(ctx, o.ID)
	require.NoError(t, err)
	second, err := repo.FindByID(ctx, o.ID)
	require.NoError(t, err)

	require.NoError(t, repo.Save(ctx, first))
	assert.ErrorIs(t, repo.Save(ctx, second), shared.ErrConcurrencyConflict)
}

func TestOrderRepository_DumpRestore(t *testing.T) {
	repo := NewOrderRepository()
	storeOrder(t, repo, "cust1", nil)
	storeOrder(t, repo, "cust2", nil)

	orders, nextID := repo.Dump()

	restored := NewOrderRepository()
	restored.Restore(orders, nextID)

	id, err := restored.NextID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), id)

	open, err := restored.FindOpen(context.Background())
	require.NoError(t, err)
	assert.Len(t, open, 2)
}
