package order

import (
	"time"

	"github.com/fixmarket/backend/internal/domain/order"
	"github.com/fixmarket/backend/internal/domain/pricing"
)

// CreateOrderRequest carries the data for posting a new order.
// Exactly one of Address or Coordinates must be set. The customer is
// the authenticated participant.
type CreateOrderRequest struct {
	CustomerID  string             `json:"-"`
	Description string             `json:"description" binding:"required"`
	ScheduledAt *time.Time         `json:"scheduled_at,omitempty"`
	Address     string             `json:"address,omitempty"`
	Coordinates *order.Coordinates `json:"coordinates,omitempty"`
}

// PlaceBidRequest carries an executor's net price proposal. The
// executor is the authenticated participant.
type PlaceBidRequest struct {
	ExecutorID string `json:"-"`
	NetPrice   string `json:"net_price" binding:"required"`
}

// SelectBidRequest carries the customer's choice of executor. The
// customer is the authenticated participant.
type SelectBidRequest struct {
	CustomerID string `json:"-"`
	ExecutorID string `json:"executor_id" binding:"required"`
}

// BidView is one bid as shown to the customer: the executor's net price
// combined with the commission quote the customer actually pays.
type BidView struct {
	ExecutorID string    `json:"executor_id"`
	Total      string    `json:"total"`
	PlacedAt   time.Time `json:"placed_at"`
}

// OrderResponse is the outward view of an order
type OrderResponse struct {
	ID               int64      `json:"id"`
	CustomerID       string     `json:"customer_id"`
	Description      string     `json:"description"`
	ScheduledAt      *time.Time `json:"scheduled_at,omitempty"`
	Location         string     `json:"location"`
	AttachmentCount  int        `json:"attachment_count"`
	Status           string     `json:"status"`
	Bids             []BidView  `json:"bids,omitempty"`
	ChosenExecutorID string     `json:"chosen_executor_id,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

// QuoteResponse echoes the price breakdown after a bid is placed
type QuoteResponse struct {
	OrderID    int64  `json:"order_id"`
	Net        string `json:"net"`
	Commission string `json:"commission"`
	Total      string `json:"total"`
}

// ToOrderResponse converts an order to its response form. Bid net
// prices are converted to customer-facing totals with the calculator.
func ToOrderResponse(o *order.Order, calc pricing.Calculator) OrderResponse {
	resp := OrderResponse{
		ID:               o.ID,
		CustomerID:       o.CustomerID,
		Description:      o.Description,
		ScheduledAt:      o.ScheduledAt,
		Location:         o.Location.Display(),
		AttachmentCount:  o.AttachmentCount,
		Status:           o.Status.String(),
		ChosenExecutorID: o.ChosenExecutorID,
		CreatedAt:        o.CreatedAt,
	}
	for _, b := range o.Bids {
		view := BidView{ExecutorID: b.ExecutorID, PlacedAt: b.PlacedAt}
		if q, err := calc.Quote(b.NetPrice); err == nil {
			view.Total = q.Total.StringFixed(2)
		}
		resp.Bids = append(resp.Bids, view)
	}
	return resp
}
