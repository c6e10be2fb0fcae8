package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/fixmarket/backend/internal/domain/order"
	"github.com/fixmarket/backend/internal/domain/shared"
)

// OrderRepository is the in-memory order.Repository
type OrderRepository struct {
	mu     sync.RWMutex
	orders map[int64]order.Order
	nextID int64
}

// NewOrderRepository creates a new OrderRepository
func NewOrderRepository() *OrderRepository {
	return &OrderRepository{orders: make(map[int64]order.Order), nextID: 1}
}

// NextID allocates the next monotonic order identifier
func (r *OrderRepository) NextID(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.nextID
	r.nextID++
	return id, nil
}

// FindByID finds an order by ID
func (r *OrderRepository) FindByID(ctx context.Context, id int64) (*order.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.orders[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := copyOrder(o)
	return &copied, nil
}

// FindOpen finds all open orders sorted by scheduled time ascending,
// unscheduled orders last. Ties break on order ID.
func (r *OrderRepository) FindOpen(ctx context.Context) ([]order.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var open []order.Order
	for _, o := range r.orders {
		if o.Status == order.StatusOpen {
			open = append(open, copyOrder(o))
		}
	}

	sort.Slice(open, func(i, j int) bool {
		a, b := open[i].ScheduledAt, open[j].ScheduledAt
		switch {
		case a == nil && b == nil:
			return open[i].ID < open[j].ID
		case a == nil:
			return false
		case b == nil:
			return true
		case a.Equal(*b):
			return open[i].ID < open[j].ID
		default:
			return a.Before(*b)
		}
	})
	return open, nil
}

// FindOpenByCustomer finds the customer's open orders
func (r *OrderRepository) FindOpenByCustomer(ctx context.Context, customerID string) ([]order.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var open []order.Order
	for _, o := range r.orders {
		if o.Status == order.StatusOpen && o.CustomerID == customerID {
			open = append(open, copyOrder(o))
		}
	}
	sort.Slice(open, func(i, j int) bool { return open[i].ID < open[j].ID })
	return open, nil
}

// Save creates or updates an order with an optimistic version check
func (r *OrderRepository) Save(ctx context.Context, o *order.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if stored, ok := r.orders[o.ID]; ok && stored.Version != o.Version {
		return shared.ErrConcurrencyConflict
	}

	o.IncrementVersion()
	r.orders[o.ID] = copyOrder(*o)
	if o.ID >= r.nextID {
		r.nextID = o.ID + 1
	}
	return nil
}

// Dump returns a copy of every stored order and the sequence cursor
func (r *OrderRepository) Dump() ([]order.Order, int64) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]order.Order, 0, len(r.orders))
	for _, o := range r.orders {
		out = append(out, copyOrder(o))
	}
	return out, r.nextID
}

// Restore replaces the store's contents and sequence cursor
func (r *OrderRepository) Restore(orders []order.Order, nextID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.orders = make(map[int64]order.Order, len(orders))
	for _, o := range orders {
		r.orders[o.ID] = copyOrder(o)
		if o.ID >= nextID {
			nextID = o.ID + 1
		}
	}
	if nextID < 1 {
		nextID = 1
	}
	r.nextID = nextID
}

// copyOrder deep-copies the slice and pointer fields so stored state
// never aliases caller state
func copyOrder(o order.Order) order.Order {
	if o.ScheduledAt != nil {
		at := *o.ScheduledAt
		o.ScheduledAt = &at
	}
	if o.Bids != nil {
		bids := make([]order.Bid, len(o.Bids))
		copy(bids, o.Bids)
		o.Bids = bids
	}
	return o
}

var _ order.Repository = (*OrderRepository)(nil)
