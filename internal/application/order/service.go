package order

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/fixmarket/backend/internal/application/keylock"
	"github.com/fixmarket/backend/internal/application/notify"
	"github.com/fixmarket/backend/internal/domain/order"
	"github.com/fixmarket/backend/internal/domain/pricing"
	"github.com/fixmarket/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SessionEstablisher opens the anonymized relay session once a customer
// selects an executor's bid.
type SessionEstablisher interface {
	Establish(ctx context.Context, customerID, executorID string, orderID int64, q *notify.Queue) error
}

// Service handles the order lifecycle: posting, bidding, matching and
// closing
type Service struct {
	orders     order.Repository
	calc       pricing.Calculator
	sessions   SessionEstablisher
	dispatcher *notify.Dispatcher
	eventBus   shared.EventPublisher
	locks      *keylock.KeyedMutex
	logger     *zap.Logger
}

// NewService creates a new order Service
func NewService(
	orders order.Repository,
	calc pricing.Calculator,
	sessions SessionEstablisher,
	dispatcher *notify.Dispatcher,
	eventBus shared.EventPublisher,
	locks *keylock.KeyedMutex,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		orders:     orders,
		calc:       calc,
		sessions:   sessions,
		dispatcher: dispatcher,
		eventBus:   eventBus,
		locks:      locks,
		logger:     logger,
	}
}

// Create posts a new open order. A customer may hold at most one open
// order at a time.
func (s *Service) Create(ctx context.Context, req CreateOrderRequest) (*OrderResponse, error) {
	unlock := s.locks.Lock("customer:" + req.CustomerID)
	defer unlock()

	existing, err := s.orders.FindOpenByCustomer(ctx, req.CustomerID)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return nil, shared.ErrOrderAlreadyOpen
	}

	loc, err := locationFromRequest(req)
	if err != nil {
		return nil, err
	}

	id, err := s.orders.NextID(ctx)
	if err != nil {
		return nil, err
	}

	o, err := order.NewOrder(id, req.CustomerID, req.Description, req.ScheduledAt, loc)
	if err != nil {
		return nil, err
	}

	if err := s.orders.Save(ctx, o); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, o)

	s.logger.Info("order created",
		zap.Int64("order_id", o.ID),
		zap.String("customer_id", o.CustomerID),
	)

	resp := ToOrderResponse(o, s.calc)
	return &resp, nil
}

func locationFromRequest(req CreateOrderRequest) (order.Location, error) {
	hasAddress := req.Address != ""
	hasCoords := req.Coordinates != nil
	switch {
	case hasAddress && hasCoords:
		return order.Location{}, shared.NewDomainError("INVALID_LOCATION", "Provide either an address or coordinates, not both")
	case hasAddress:
		return order.NewAddressLocation(req.Address)
	case hasCoords:
		return order.NewGeoLocation(req.Coordinates.Lat, req.Coordinates.Lon), nil
	default:
		return order.Location{}, shared.ErrInvalidLocation
	}
}

// AddAttachment records one more attachment on an open order. Only the
// owning customer may attach, and only while the order is open.
func (s *Service) AddAttachment(ctx context.Context, orderID int64, customerID string) (*OrderResponse, error) {
	unlock := s.locks.Lock("order:" + strconv.FormatInt(orderID, 10))
	defer unlock()

	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.CustomerID != customerID {
		return nil, shared.ErrForbidden
	}
	if !o.IsOpen() {
		return nil, shared.ErrOrderUnavailable
	}

	o.AddAttachment()
	if err := s.orders.Save(ctx, o); err != nil {
		return nil, err
	}

	resp := ToOrderResponse(o, s.calc)
	return &resp, nil
}

// PlaceBid records (or replaces) the executor's net price on an open
// order and tells the customer the total they would pay. The returned
// quote echoes the commission breakdown to the executor. The customer
// notice goes out after the order lock is released, so a slow delivery
// never stalls other bidders.
func (s *Service) PlaceBid(ctx context.Context, orderID int64, req PlaceBidRequest) (*QuoteResponse, error) {
	unlock := s.locks.Lock("order:" + strconv.FormatInt(orderID, 10))

	o, err := s.orders.FindByID(ctx, orderID)
	if errors.Is(err, shared.ErrNotFound) {
		// A vanished order reads the same as a closed one to a bidder.
		unlock()
		return nil, shared.ErrOrderUnavailable
	}
	if err != nil {
		unlock()
		return nil, err
	}
	if o.CustomerID == req.ExecutorID {
		unlock()
		return nil, shared.NewDomainError("OWN_ORDER_BID", "Cannot bid on your own order")
	}

	net, err := decimal.NewFromString(req.NetPrice)
	if err != nil {
		unlock()
		return nil, shared.ErrInvalidPrice
	}
	quote, err := s.calc.Quote(net)
	if err != nil {
		unlock()
		return nil, err
	}

	if err := o.PlaceBid(req.ExecutorID, net); err != nil {
		unlock()
		return nil, err
	}
	if err := s.orders.Save(ctx, o); err != nil {
		unlock()
		return nil, err
	}
	s.publishEvents(ctx, o)
	unlock()

	var q notify.Queue
	q.Add(o.CustomerID,
		fmt.Sprintf("New offer on order #%d: %s", o.ID, quote.Total.String()),
		notify.Action{Label: "Accept", Command: fmt.Sprintf("select:%d:%s", o.ID, req.ExecutorID)},
	)
	s.dispatcher.Dispatch(ctx, &q)

	return &QuoteResponse{
		OrderID:    o.ID,
		Net:        quote.Net.StringFixed(2),
		Commission: quote.Commission.StringFixed(2),
		Total:      quote.Total.StringFixed(2),
	}, nil
}

// SelectBid matches the order with the chosen executor and opens the
// anonymized relay session between the two sides. Both participants are
// notified after the match has committed and the order lock is
// released.
func (s *Service) SelectBid(ctx context.Context, orderID int64, req SelectBidRequest) (*OrderResponse, error) {
	unlock := s.locks.Lock("order:" + strconv.FormatInt(orderID, 10))

	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		unlock()
		return nil, err
	}
	if err := o.SelectBid(req.CustomerID, req.ExecutorID); err != nil {
		unlock()
		return nil, err
	}
	if err := s.orders.Save(ctx, o); err != nil {
		unlock()
		return nil, err
	}
	s.publishEvents(ctx, o)

	var q notify.Queue
	if err := s.sessions.Establish(ctx, o.CustomerID, o.ChosenExecutorID, o.ID, &q); err != nil {
		// The match has committed; a failed session bootstrap is
		// reported but does not roll the order back.
		s.logger.Error("relay session bootstrap failed",
			zap.Int64("order_id", o.ID),
			zap.Error(err),
		)
	}
	unlock()

	q.Add(o.CustomerID, fmt.Sprintf("Order #%d matched. You are now connected to the executor through the relay.", o.ID))
	q.Add(o.ChosenExecutorID, fmt.Sprintf("Your offer on order #%d was accepted. You are now connected to the customer through the relay.", o.ID))
	s.dispatcher.Dispatch(ctx, &q)

	s.logger.Info("order matched",
		zap.Int64("order_id", o.ID),
		zap.String("executor_id", o.ChosenExecutorID),
	)

	resp := ToOrderResponse(o, s.calc)
	return &resp, nil
}

// Close moves the order to its terminal state. Idempotent.
func (s *Service) Close(ctx context.Context, orderID int64, requesterID string) (*OrderResponse, error) {
	unlock := s.locks.Lock("order:" + strconv.FormatInt(orderID, 10))
	defer unlock()

	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.CustomerID != requesterID && o.ChosenExecutorID != requesterID {
		return nil, shared.ErrForbidden
	}

	o.Close()
	if err := s.orders.Save(ctx, o); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, o)

	resp := ToOrderResponse(o, s.calc)
	return &resp, nil
}

// Get returns one order
func (s *Service) Get(ctx context.Context, orderID int64) (*OrderResponse, error) {
	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	resp := ToOrderResponse(o, s.calc)
	return &resp, nil
}

// OpenFeed lists all open orders for executors to browse, soonest
// scheduled first and unscheduled last.
func (s *Service) OpenFeed(ctx context.Context) ([]OrderResponse, error) {
	open, err := s.orders.FindOpen(ctx)
	if err != nil {
		return nil, err
	}
	feed := make([]OrderResponse, 0, len(open))
	for i := range open {
		resp := ToOrderResponse(&open[i], s.calc)
		// Executors browsing the feed see the order, not each
		// other's prices.
		resp.Bids = nil
		feed = append(feed, resp)
	}
	return feed, nil
}

// CustomerOffers shows the customer their open order with the received
// bids priced as totals.
func (s *Service) CustomerOffers(ctx context.Context, customerID string) ([]OrderResponse, error) {
	open, err := s.orders.FindOpenByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	offers := make([]OrderResponse, 0, len(open))
	for i := range open {
		offers = append(offers, ToOrderResponse(&open[i], s.calc))
	}
	return offers, nil
}

func (s *Service) publishEvents(ctx context.Context, o *order.Order) {
	if s.eventBus == nil {
		return
	}
	for _, event := range o.GetDomainEvents() {
		if err := s.eventBus.Publish(ctx, event); err != nil {
			s.logger.Error("failed to publish domain event",
				zap.String("event_type", event.EventType()),
				zap.Error(err),
			)
		}
	}
	o.ClearDomainEvents()
}
