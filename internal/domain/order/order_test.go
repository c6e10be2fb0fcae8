package order

import (
	"testing"
	"time"

	"github.com/fixmarket/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOrder(t *testing.T) *Order {
	loc, err := NewAddressLocation("5 Oak St")
	require.NoError(t, err)
	o, err := NewOrder(1, "cust1", "paint wall", nil, loc)
	require.NoError(t, err)
	return o
}

func TestStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from     Status
		to       Status
		canTrans bool
	}{
		{StatusOpen, StatusMatched, true},
		{StatusOpen, StatusClosed, true},
		{StatusMatched, StatusClosed, true},
		{StatusMatched, StatusOpen, false},
		{StatusClosed, StatusOpen, false},
		{StatusClosed, StatusMatched, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"_to_"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.canTrans, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestNewOrder(t *testing.T) {
	loc, _ := NewAddressLocation("5 Oak St")

	t.Run("creates open order with event", func(t *testing.T) {
		at := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
		o, err := NewOrder(7, "cust1", "  paint wall  ", &at, loc)
		require.NoError(t, err)
		assert.Equal(t, StatusOpen, o.Status)
		assert.Equal(t, "paint wall", o.Description)
		assert.Equal(t, at, *o.ScheduledAt)

		events := o.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeOrderCreated, events[0].EventType())
	})

	t.Run("rejects bad input", func(t *testing.T) {
		_, err := NewOrder(0, "cust1", "paint wall", nil, loc)
		assert.Error(t, err)
		_, err = NewOrder(1, "", "paint wall", nil, loc)
		assert.Error(t, err)
		_, err = NewOrder(1, "cust1", "  ", nil, loc)
		assert.Error(t, err)
		_, err = NewOrder(1, "cust1", "paint wall", nil, Location{})
		assert.Error(t, err)
	})
}

func TestOrder_PlaceBid(t *testing.T) {
	t.Run("accepts bids while open", func(t *testing.T) {
		o := newTestOrder(t)
		require.NoError(t, o.PlaceBid("exec1", decimal.NewFromInt(100)))
		require.NoError(t, o.PlaceBid("exec2", decimal.NewFromInt(90)))
		assert.Len(t, o.Bids, 2)
	})

	t.Run("later bid from same executor replaces earlier", func(t *testing.T) {
		o := newTestOrder(t)
		require.NoError(t, o.PlaceBid("exec1", decimal.NewFromInt(100)))
		require.NoError(t, o.PlaceBid("exec1", decimal.NewFromInt(80)))

		assert.Len(t, o.Bids, 1)
		bid, ok := o.BidBy("exec1")
		require.True(t, ok)
		assert.True(t, bid.NetPrice.Equal(decimal.NewFromInt(80)))
	})

	t.Run("rejects non-positive prices", func(t *testing.T) {
		o := newTestOrder(t)
		assert.ErrorIs(t, o.PlaceBid("exec1", decimal.Zero), shared.ErrInvalidPrice)
		assert.ErrorIs(t, o.PlaceBid("exec1", decimal.NewFromInt(-5)), shared.ErrInvalidPrice)
	})

	t.Run("rejects bids once not open", func(t *testing.T) {
		o := newTestOrder(t)
		require.NoError(t, o.PlaceBid("exec1", decimal.NewFromInt(100)))
		require.NoError(t, o.SelectBid("cust1", "exec1"))
		assert.ErrorIs(t, o.PlaceBid("exec2", decimal.NewFromInt(90)), shared.ErrOrderUnavailable)

		closed := newTestOrder(t)
		closed.Close()
		assert.ErrorIs(t, closed.PlaceBid("exec1", decimal.NewFromInt(100)), shared.ErrOrderUnavailable)
	})
}

func TestOrder_SelectBid(t *testing.T) {
	t.Run("matches with the chosen executor", func(t *testing.T) {
		o := newTestOrder(t)
		require.NoError(t, o.PlaceBid("exec1", decimal.NewFromInt(100)))
		require.NoError(t, o.PlaceBid("exec2", decimal.NewFromInt(90)))

		require.NoError(t, o.SelectBid("cust1", "exec1"))
		assert.Equal(t, StatusMatched, o.Status)
		assert.Equal(t, "exec1", o.ChosenExecutorID)
		// Losing bids stay on record
		assert.Len(t, o.Bids, 2)
	})

	t.Run("only the owning customer may select", func(t *testing.T) {
		o := newTestOrder(t)
		require.NoError(t, o.PlaceBid("exec1", decimal.NewFromInt(100)))
		assert.ErrorIs(t, o.SelectBid("stranger", "exec1"), shared.ErrForbidden)
	})

	t.Run("rejects executor without a bid", func(t *testing.T) {
		o := newTestOrder(t)
		require.NoError(t, o.PlaceBid("exec1", decimal.NewFromInt(100)))
		assert.ErrorIs(t, o.SelectBid("cust1", "exec9"), shared.ErrBidNotFound)
	})

	t.Run("rejects selection on a non-open order", func(t *testing.T) {
		o := newTestOrder(t)
		require.NoError(t, o.PlaceBid("exec1", decimal.NewFromInt(100)))
		require.NoError(t, o.SelectBid("cust1", "exec1"))
		assert.ErrorIs(t, o.SelectBid("cust1", "exec1"), shared.ErrOrderUnavailable)
	})
}

func TestOrder_Close(t *testing.T) {
	o := newTestOrder(t)
	o.ClearDomainEvents()

	o.Close()
	assert.Equal(t, StatusClosed, o.Status)
	assert.Len(t, o.GetDomainEvents(), 1)

	// Idempotent: closing again raises no second event
	o.Close()
	assert.Len(t, o.GetDomainEvents(), 1)
}

func TestOrder_AddAttachment(t *testing.T) {
	o := newTestOrder(t)
	o.AddAttachment()
	o.AddAttachment()
	assert.Equal(t, 2, o.AttachmentCount)
}
