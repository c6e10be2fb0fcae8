package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/fixmarket/backend/internal/application/keylock"
	"github.com/fixmarket/backend/internal/application/notify"
	"github.com/fixmarket/backend/internal/domain/order"
	"github.com/fixmarket/backend/internal/domain/relay"
	"github.com/fixmarket/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// relayTopologyKey serializes all link-table mutations under one lock.
// Each mutation touches two mirrored entries, so per-participant locks
// would have to be taken in pairs; a single key keeps the ordering
// trivial. The lock is released before any order lock is taken.
const relayTopologyKey = "relay:topology"

// Pair is one active session as shown on the operator panel
type Pair struct {
	CustomerID    string `json:"customer_id"`
	ExecutorID    string `json:"executor_id"`
	OrderID       int64  `json:"order_id"`
	EstablishedAt string `json:"established_at"`
}

// Manager owns the anonymized relay sessions: establishing them on a
// match, forwarding messages between the two sides and tearing them
// down.
type Manager struct {
	links      relay.LinkRepository
	orders     order.Repository
	dispatcher *notify.Dispatcher
	eventBus   shared.EventPublisher
	locks      *keylock.KeyedMutex
	logger     *zap.Logger
}

// NewManager creates a new relay Manager
func NewManager(
	links relay.LinkRepository,
	orders order.Repository,
	dispatcher *notify.Dispatcher,
	eventBus shared.EventPublisher,
	locks *keylock.KeyedMutex,
	logger *zap.Logger,
) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		links:      links,
		orders:     orders,
		dispatcher: dispatcher,
		eventBus:   eventBus,
		locks:      locks,
		logger:     logger,
	}
}

// Establish wires the two directed entries of a new session. If either
// participant already sits in a session, that session is replaced
// without telling them; only the displaced peer on the far side gets an
// ended notice. Notifications are queued on q for the caller to
// dispatch after its own state has committed.
func (m *Manager) Establish(ctx context.Context, customerID, executorID string, orderID int64, q *notify.Queue) error {
	unlock := m.locks.Lock(relayTopologyKey)
	defer unlock()

	for _, id := range []string{customerID, executorID} {
		if err := m.displace(ctx, id, customerID, executorID, q); err != nil {
			return err
		}
	}

	a, b := relay.NewPair(customerID, executorID, orderID)
	if err := m.links.Put(ctx, a, b); err != nil {
		return err
	}

	m.logger.Info("relay session established",
		zap.Int64("order_id", orderID),
	)
	return nil
}

// displace removes the participant's existing session, if any, and
// queues an ended notice for the old peer unless that peer is part of
// the new session too.
func (m *Manager) displace(ctx context.Context, participantID, newA, newB string, q *notify.Queue) error {
	link, err := m.links.Find(ctx, participantID)
	if errors.Is(err, shared.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := m.links.Delete(ctx, link.ParticipantID, link.PeerID); err != nil {
		return err
	}
	if link.PeerID != newA && link.PeerID != newB {
		q.Add(link.PeerID, "The relay session has ended.")
	}
	return nil
}

// Relay forwards the sender's message to their session peer unchanged.
// Without an active session nothing happens and nothing is reported:
// the sender may just be typing outside any flow. A delivery failure is
// reported back to the sender but leaves the session intact.
func (m *Manager) Relay(ctx context.Context, fromID string, payload json.RawMessage) (bool, error) {
	link, err := m.links.Find(ctx, fromID)
	if errors.Is(err, shared.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := m.dispatcher.Transport().RelayRaw(ctx, fromID, link.PeerID, payload); err != nil {
		m.logger.Warn("relay delivery failed",
			zap.Int64("order_id", link.OrderID),
			zap.Error(err),
		)
		var q notify.Queue
		q.Add(fromID, "Delivery failed. Your message did not reach the other side, please try again.")
		m.dispatcher.Dispatch(ctx, &q)
	}
	return true, nil
}

// Active reports whether the participant currently sits in a session
func (m *Manager) Active(ctx context.Context, participantID string) (bool, error) {
	_, err := m.links.Find(ctx, participantID)
	if errors.Is(err, shared.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// End tears down the participant's session and closes its order. Either
// side may end; the peer is notified after the teardown has committed.
func (m *Manager) End(ctx context.Context, participantID string) (int64, error) {
	unlock := m.locks.Lock(relayTopologyKey)

	link, err := m.links.Find(ctx, participantID)
	if errors.Is(err, shared.ErrNotFound) {
		unlock()
		return 0, shared.ErrNoActiveSession
	}
	if err != nil {
		unlock()
		return 0, err
	}
	if err := m.links.Delete(ctx, link.ParticipantID, link.PeerID); err != nil {
		unlock()
		return 0, err
	}
	unlock()

	if err := m.closeOrder(ctx, link.OrderID); err != nil {
		// The session is already gone; the order close is retried by
		// nobody, so log loudly.
		m.logger.Error("failed to close order on relay end",
			zap.Int64("order_id", link.OrderID),
			zap.Error(err),
		)
	}

	var q notify.Queue
	q.Add(link.PeerID, fmt.Sprintf("The relay session for order #%d has ended.", link.OrderID))
	m.dispatcher.Dispatch(ctx, &q)

	m.logger.Info("relay session ended",
		zap.Int64("order_id", link.OrderID),
	)
	return link.OrderID, nil
}

func (m *Manager) closeOrder(ctx context.Context, orderID int64) error {
	unlock := m.locks.Lock("order:" + strconv.FormatInt(orderID, 10))
	defer unlock()

	o, err := m.orders.FindByID(ctx, orderID)
	if err != nil {
		return err
	}
	o.Close()
	if err := m.orders.Save(ctx, o); err != nil {
		return err
	}
	if m.eventBus != nil {
		for _, event := range o.GetDomainEvents() {
			if err := m.eventBus.Publish(ctx, event); err != nil {
				m.logger.Error("failed to publish domain event",
					zap.String("event_type", event.EventType()),
					zap.Error(err),
				)
			}
		}
		o.ClearDomainEvents()
	}
	return nil
}

// ActivePairs lists the current sessions, one row per pair. The two
// mirrored entries of each session are collapsed into the row whose
// customer side matches the order.
func (m *Manager) ActivePairs(ctx context.Context) ([]Pair, error) {
	links, err := m.links.All(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(links)/2)
	pairs := make([]Pair, 0, len(links)/2)
	for _, l := range links {
		key := pairKey(l.ParticipantID, l.PeerID)
		if seen[key] {
			continue
		}
		seen[key] = true

		p := Pair{
			CustomerID:    l.ParticipantID,
			ExecutorID:    l.PeerID,
			OrderID:       l.OrderID,
			EstablishedAt: l.EstablishedAt.Format("2006-01-02 15:04:05"),
		}
		if o, err := m.orders.FindByID(ctx, l.OrderID); err == nil && o.CustomerID == l.PeerID {
			p.CustomerID, p.ExecutorID = l.PeerID, l.ParticipantID
		}
		pairs = append(pairs, p)
	}
	return pairs, nil
}

func pairKey(a, b string) string {
	if a < b {
		a, b = b, a
	}
	return a + "|" + b
}
