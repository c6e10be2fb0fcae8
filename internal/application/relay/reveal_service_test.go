package relay

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/fixmarket/backend/internal/application/keylock"
	"github.com/fixmarket/backend/internal/application/notify"
	"github.com/fixmarket/backend/internal/domain/identity"
	"github.com/fixmarket/backend/internal/domain/order"
	"github.com/fixmarket/backend/internal/domain/relay"
	"github.com/fixmarket/backend/internal/domain/shared"
	"github.com/fixmarket/backend/internal/infrastructure/auth"
	"github.com/fixmarket/backend/internal/infrastructure/persistence/memory"
	"github.com/fixmarket/backend/internal/infrastructure/transport"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAudience []identity.Participant

func (a stubAudience) Operators(ctx context.Context) ([]identity.Participant, error) {
	return a, nil
}

type revealFixture struct {
	svc    *RevealService
	links  *memory.LinkRepository
	orders *memory.OrderRepository
	rec    *transport.Recorder
}

func newRevealFixture(t *testing.T) *revealFixture {
	rec := transport.NewRecorder()
	f := newRevealFixtureWith(t, rec)
	f.rec = rec
	return f
}

func newRevealFixtureWith(t *testing.T, tr notify.Transport) *revealFixture {
	ctx := context.Background()

	participants := memory.NewParticipantRepository()
	for _, p := range []struct{ id, handle, name string }{
		{"cust1", "alice", "Alice"},
		{"exec1", "bob", "Bob"},
		{"op1", "olga", "Olga"},
	} {
		participant, err := identity.NewParticipant(p.id, p.handle, p.name)
		require.NoError(t, err)
		require.NoError(t, participants.Save(ctx, participant))
	}
	operator, err := participants.FindByID(ctx, "op1")
	require.NoError(t, err)

	links := memory.NewLinkRepository()
	orders := memory.NewOrderRepository()
	dispatcher := notify.NewDispatcher(tr, nil)

	svc := NewRevealService(
		memory.NewRevealRepository(),
		links,
		orders,
		participants,
		auth.NewAllowList([]string{"op1"}),
		stubAudience{*operator},
		dispatcher,
		keylock.New(),
		nil,
	)
	return &revealFixture{svc: svc, links: links, orders: orders}
}

// matchedSession stores a matched order with its relay pair in place
func (f *revealFixture) matchedSession(t *testing.T) int64 {
	ctx := context.Background()
	id, err := f.orders.NextID(ctx)
	require.NoError(t, err)

	loc, err := order.NewAddressLocation("5 Oak St")
	require.NoError(t, err)
	o, err := order.NewOrder(id, "cust1", "paint wall", nil, loc)
	require.NoError(t, err)
	require.NoError(t, o.PlaceBid("exec1", decimal.NewFromInt(100)))
	require.NoError(t, o.SelectBid("cust1", "exec1"))
	require.NoError(t, f.orders.Save(ctx, o))

	a, b := relay.NewPair("cust1", "exec1", id)
	require.NoError(t, f.links.Put(ctx, a, b))
	return id
}

func TestRevealService_Request(t *testing.T) {
	t.Run("requires an active session", func(t *testing.T) {
		f := newRevealFixture(t)
		_, err := f.svc.Request(context.Background(), "cust1")
		assert.ErrorIs(t, err, shared.ErrNoActiveSession)
	})

	t.Run("first request leaves the reveal pending", func(t *testing.T) {
		f := newRevealFixture(t)
		orderID := f.matchedSession(t)

		resp, err := f.svc.Request(context.Background(), "cust1")
		require.NoError(t, err)
		assert.Equal(t, RevealPending, resp.Status)
		assert.Equal(t, orderID, resp.OrderID)
		assert.Empty(t, resp.Peer)

		// The peer is invited to agree and the operators are told
		peerMsgs := f.rec.MessagesTo("exec1")
		require.Len(t, peerMsgs, 1)
		assert.Contains(t, peerMsgs[0].Message, "asked to reveal contacts")
		assert.NotEmpty(t, f.rec.MessagesTo("op1"))
	})

	t.Run("mutual requests grant with mentions", func(t *testing.T) {
		f := newRevealFixture(t)
		f.matchedSession(t)

		_, err := f.svc.Request(context.Background(), "cust1")
		require.NoError(t, err)
		resp, err := f.svc.Request(context.Background(), "exec1")
		require.NoError(t, err)

		assert.Equal(t, RevealGranted, resp.Status)
		assert.Equal(t, "@alice", resp.Peer)

		custMsgs := f.rec.MessagesTo("cust1")
		require.NotEmpty(t, custMsgs)
		assert.Contains(t, custMsgs[len(custMsgs)-1].Message, "The executor is @bob")
	})

	t.Run("repeat request after grant raises no new notices", func(t *testing.T) {
		f := newRevealFixture(t)
		f.matchedSession(t)

		_, err := f.svc.Request(context.Background(), "cust1")
		require.NoError(t, err)
		_, err = f.svc.Request(context.Background(), "exec1")
		require.NoError(t, err)
		delivered := len(f.rec.Notifications)

		resp, err := f.svc.Request(context.Background(), "cust1")
		require.NoError(t, err)
		assert.Equal(t, RevealGranted, resp.Status)
		assert.Equal(t, "@bob", resp.Peer)
		assert.Len(t, f.rec.Notifications, delivered)
	})
}

// stallTransport holds the first delivery in flight until released and
// accepts everything after it.
type stallTransport struct {
	mu      sync.Mutex
	stalled chan struct{}
	release chan struct{}
	first   bool
}

func newStallTransport() *stallTransport {
	return &stallTransport{
		stalled: make(chan struct{}),
		release: make(chan struct{}),
	}
}

func (s *stallTransport) Notify(ctx context.Context, n notify.Notification) error {
	s.mu.Lock()
	first := !s.first
	s.first = true
	s.mu.Unlock()
	if first {
		close(s.stalled)
		<-s.release
	}
	return nil
}

func (s *stallTransport) RelayRaw(ctx context.Context, fromID, toID string, payload json.RawMessage) error {
	return nil
}

func TestRevealService_Request_SlowDeliveryDoesNotBlockPeer(t *testing.T) {
	ctx := context.Background()
	tr := newStallTransport()
	f := newRevealFixtureWith(t, tr)
	f.matchedSession(t)

	firstDone := make(chan error, 1)
	go func() {
		_, err := f.svc.Request(ctx, "cust1")
		firstDone <- err
	}()
	<-tr.stalled

	// The first request has committed and its pending notices are
	// still in flight; the peer's agreeing request must not wait.
	var resp *RevealResponse
	secondDone := make(chan error, 1)
	go func() {
		r, err := f.svc.Request(ctx, "exec1")
		resp = r
		secondDone <- err
	}()
	select {
	case err := <-secondDone:
		require.NoError(t, err)
		assert.Equal(t, RevealGranted, resp.Status)
	case <-time.After(2 * time.Second):
		t.Fatal("peer request waited for the first side's notification delivery")
	}

	close(tr.release)
	require.NoError(t, <-firstDone)
}

func TestRevealService_OperatorOverride(t *testing.T) {
	t.Run("grants without consent", func(t *testing.T) {
		f := newRevealFixture(t)
		orderID := f.matchedSession(t)

		resp, err := f.svc.OperatorOverride(context.Background(), "op1", orderID)
		require.NoError(t, err)
		assert.Equal(t, RevealGranted, resp.Status)

		custMsgs := f.rec.MessagesTo("cust1")
		require.Len(t, custMsgs, 1)
		assert.Contains(t, custMsgs[0].Message, "Contacts revealed")
	})

	t.Run("only allow-listed operators", func(t *testing.T) {
		f := newRevealFixture(t)
		orderID := f.matchedSession(t)

		_, err := f.svc.OperatorOverride(context.Background(), "cust1", orderID)
		assert.ErrorIs(t, err, shared.ErrForbidden)
	})

	t.Run("repeat override is a no-op", func(t *testing.T) {
		f := newRevealFixture(t)
		orderID := f.matchedSession(t)

		_, err := f.svc.OperatorOverride(context.Background(), "op1", orderID)
		require.NoError(t, err)
		delivered := len(f.rec.Notifications)

		resp, err := f.svc.OperatorOverride(context.Background(), "op1", orderID)
		require.NoError(t, err)
		assert.Equal(t, RevealGranted, resp.Status)
		assert.Len(t, f.rec.Notifications, delivered)
	})

	t.Run("rejects an unmatched order", func(t *testing.T) {
		f := newRevealFixture(t)
		ctx := context.Background()

		id, err := f.orders.NextID(ctx)
		require.NoError(t, err)
		loc, err := order.NewAddressLocation("5 Oak St")
		require.NoError(t, err)
		o, err := order.NewOrder(id, "cust1", "paint wall", nil, loc)
		require.NoError(t, err)
		require.NoError(t, f.orders.Save(ctx, o))

		_, err = f.svc.OperatorOverride(ctx, "op1", id)
		var derr *shared.DomainError
		require.ErrorAs(t, err, &derr)
		assert.Equal(t, "ORDER_NOT_MATCHED", derr.Code)
	})
}
