package order

import (
	"strings"
	"time"

	"github.com/fixmarket/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Status represents the status of an order
type Status string

const (
	StatusOpen    Status = "OPEN"
	StatusMatched Status = "MATCHED"
	StatusClosed  Status = "CLOSED"
)

// IsValid checks if the status is a valid Status
func (s Status) IsValid() bool {
	switch s {
	case StatusOpen, StatusMatched, StatusClosed:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status.
// Transitions are forward-only: open -> matched -> closed or open -> closed.
// There is no reopen.
func (s Status) CanTransitionTo(target Status) bool {
	switch s {
	case StatusOpen:
		return target == StatusMatched || target == StatusClosed
	case StatusMatched:
		return target == StatusClosed
	case StatusClosed:
		return false
	}
	return false
}

// Bid is an executor's proposed net price for an order
type Bid struct {
	ExecutorID string
	NetPrice   decimal.Decimal
	PlacedAt   time.Time
}

// Order is a posted service request aggregate. It collects executor bids
// while open, records the chosen executor on match and retains all bids
// afterwards for audit.
type Order struct {
	shared.AggregateRoot
	ID               int64
	CustomerID       string
	Description      string
	ScheduledAt      *time.Time
	Location         Location
	AttachmentCount  int
	Status           Status
	Bids             []Bid
	ChosenExecutorID string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NewOrder creates a new open order
func NewOrder(id int64, customerID, description string, scheduledAt *time.Time, loc Location) (*Order, error) {
	if id <= 0 {
		return nil, shared.NewDomainError("INVALID_ORDER_ID", "Order ID must be positive")
	}
	if strings.TrimSpace(customerID) == "" {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if strings.TrimSpace(description) == "" {
		return nil, shared.NewDomainError("INVALID_DESCRIPTION", "Order description cannot be empty")
	}
	if loc.IsZero() {
		return nil, shared.NewDomainError("INVALID_LOCATION", "Order location is required")
	}

	now := time.Now()
	o := &Order{
		AggregateRoot: shared.NewAggregateRoot(),
		ID:            id,
		CustomerID:    customerID,
		Description:   strings.TrimSpace(description),
		ScheduledAt:   scheduledAt,
		Location:      loc,
		Status:        StatusOpen,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	o.AddDomainEvent(NewOrderCreatedEvent(o))

	return o, nil
}

// AddAttachment increments the attachment count
func (o *Order) AddAttachment() {
	o.AttachmentCount++
	o.UpdatedAt = time.Now()
}

// PlaceBid upserts the executor's net price. A later bid from the same
// executor overwrites the earlier one. Bids are only accepted while the
// order is open.
func (o *Order) PlaceBid(executorID string, netPrice decimal.Decimal) error {
	if o.Status != StatusOpen {
		return shared.ErrOrderUnavailable
	}
	if netPrice.LessThanOrEqual(decimal.Zero) {
		return shared.ErrInvalidPrice
	}

	now := time.Now()
	placed := false
	for i := range o.Bids {
		if o.Bids[i].ExecutorID == executorID {
			o.Bids[i].NetPrice = netPrice
			o.Bids[i].PlacedAt = now
			placed = true
			break
		}
	}
	if !placed {
		o.Bids = append(o.Bids, Bid{ExecutorID: executorID, NetPrice: netPrice, PlacedAt: now})
	}
	o.UpdatedAt = now

	o.AddDomainEvent(NewBidPlacedEvent(o, executorID, netPrice))

	return nil
}

// BidBy returns the bid of the given executor, if any
func (o *Order) BidBy(executorID string) (Bid, bool) {
	for _, b := range o.Bids {
		if b.ExecutorID == executorID {
			return b, true
		}
	}
	return Bid{}, false
}

// SelectBid marks the order matched with the chosen executor. Only the
// owning customer may select, only while open, and only an executor
// that actually placed a bid.
func (o *Order) SelectBid(customerID, executorID string) error {
	if o.CustomerID != customerID {
		return shared.ErrForbidden
	}
	if o.Status != StatusOpen {
		return shared.ErrOrderUnavailable
	}
	if _, ok := o.BidBy(executorID); !ok {
		return shared.ErrBidNotFound
	}

	o.Status = StatusMatched
	o.ChosenExecutorID = executorID
	o.UpdatedAt = time.Now()

	o.AddDomainEvent(NewOrderMatchedEvent(o))

	return nil
}

// Close moves the order to closed. Idempotent if already closed.
func (o *Order) Close() {
	if o.Status == StatusClosed {
		return
	}
	o.Status = StatusClosed
	o.UpdatedAt = time.Now()

	o.AddDomainEvent(NewOrderClosedEvent(o))
}

// IsOpen returns true if the order is open for bids
func (o *Order) IsOpen() bool {
	return o.Status == StatusOpen
}

// IsMatched returns true if an executor has been chosen
func (o *Order) IsMatched() bool {
	return o.Status == StatusMatched
}

// IsClosed returns true if the order is closed
func (o *Order) IsClosed() bool {
	return o.Status == StatusClosed
}
