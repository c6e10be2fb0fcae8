package order

import "context"

// Repository defines the interface for order persistence
type Repository interface {
	// NextID allocates the next monotonic order identifier
	NextID(ctx context.Context) (int64, error)

	// FindByID finds an order by ID
	FindByID(ctx context.Context, id int64) (*Order, error)

	// FindOpen finds all open orders sorted by scheduled time ascending,
	// unscheduled orders last
	FindOpen(ctx context.Context) ([]Order, error)

	// FindOpenByCustomer finds the customer's open orders
	FindOpenByCustomer(ctx context.Context, customerID string) ([]Order, error)

	// Save creates or updates an order with an optimistic version check
	Save(ctx context.Context, o *Order) error
}
