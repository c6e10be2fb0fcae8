package order

import (
	"strconv"

	"github.com/fixmarket/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeOrder = "Order"

// Event type constants
const (
	EventTypeOrderCreated = "OrderCreated"
	EventTypeBidPlaced    = "BidPlaced"
	EventTypeOrderMatched = "OrderMatched"
	EventTypeOrderClosed  = "OrderClosed"
)

func orderKey(id int64) string {
	return strconv.FormatInt(id, 10)
}

// OrderCreatedEvent is raised when a customer posts a new order
type OrderCreatedEvent struct {
	shared.BaseDomainEvent
	OrderID    int64  `json:"order_id"`
	CustomerID string `json:"customer_id"`
}

// NewOrderCreatedEvent creates a new OrderCreatedEvent
func NewOrderCreatedEvent(o *Order) *OrderCreatedEvent {
	return &OrderCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderCreated, AggregateTypeOrder, orderKey(o.ID)),
		OrderID:         o.ID,
		CustomerID:      o.CustomerID,
	}
}

// BidPlacedEvent is raised when an executor places or replaces a bid
type BidPlacedEvent struct {
	shared.BaseDomainEvent
	OrderID    int64           `json:"order_id"`
	ExecutorID string          `json:"executor_id"`
	NetPrice   decimal.Decimal `json:"net_price"`
}

// NewBidPlacedEvent creates a new BidPlacedEvent
func NewBidPlacedEvent(o *Order, executorID string, netPrice decimal.Decimal) *BidPlacedEvent {
	return &BidPlacedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBidPlaced, AggregateTypeOrder, orderKey(o.ID)),
		OrderID:         o.ID,
		ExecutorID:      executorID,
		NetPrice:        netPrice,
	}
}

// OrderMatchedEvent is raised when the customer selects a winning bid
type OrderMatchedEvent struct {
	shared.BaseDomainEvent
	OrderID    int64  `json:"order_id"`
	CustomerID string `json:"customer_id"`
	ExecutorID string `json:"executor_id"`
}

// NewOrderMatchedEvent creates a new OrderMatchedEvent
func NewOrderMatchedEvent(o *Order) *OrderMatchedEvent {
	return &OrderMatchedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderMatched, AggregateTypeOrder, orderKey(o.ID)),
		OrderID:         o.ID,
		CustomerID:      o.CustomerID,
		ExecutorID:      o.ChosenExecutorID,
	}
}

// OrderClosedEvent is raised when an order is closed
type OrderClosedEvent struct {
	shared.BaseDomainEvent
	OrderID int64 `json:"order_id"`
}

// NewOrderClosedEvent creates a new OrderClosedEvent
func NewOrderClosedEvent(o *Order) *OrderClosedEvent {
	return &OrderClosedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderClosed, AggregateTypeOrder, orderKey(o.ID)),
		OrderID:         o.ID,
	}
}
