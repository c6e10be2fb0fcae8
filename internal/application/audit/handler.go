// Package audit subscribes to order lifecycle events and writes a
// structured trail of them. It is the only event consumer shipped by
// default; others can subscribe on the same bus.
package audit

import (
	"context"

	"github.com/fixmarket/backend/internal/domain/order"
	"github.com/fixmarket/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Handler logs order lifecycle events
type Handler struct {
	logger *zap.Logger
}

// NewHandler creates a new audit Handler
func NewHandler(logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{logger: logger.Named("audit")}
}

// EventTypes returns the event types this handler subscribes to
func (h *Handler) EventTypes() []string {
	return []string{
		order.EventTypeOrderCreated,
		order.EventTypeBidPlaced,
		order.EventTypeOrderMatched,
		order.EventTypeOrderClosed,
	}
}

// Handle writes one audit line per event
func (h *Handler) Handle(ctx context.Context, event shared.DomainEvent) error {
	fields := []zap.Field{
		zap.String("event_id", event.EventID().String()),
		zap.String("aggregate_key", event.AggregateKey()),
		zap.Time("occurred_at", event.OccurredAt()),
	}

	switch e := event.(type) {
	case *order.OrderCreatedEvent:
		fields = append(fields, zap.String("customer_id", e.CustomerID))
	case *order.BidPlacedEvent:
		fields = append(fields,
			zap.String("executor_id", e.ExecutorID),
			zap.String("net_price", e.NetPrice.String()),
		)
	case *order.OrderMatchedEvent:
		fields = append(fields,
			zap.String("customer_id", e.CustomerID),
			zap.String("executor_id", e.ExecutorID),
		)
	}

	h.logger.Info(event.EventType(), fields...)
	return nil
}
