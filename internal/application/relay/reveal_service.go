package relay

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/fixmarket/backend/internal/application/keylock"
	"github.com/fixmarket/backend/internal/application/notify"
	"github.com/fixmarket/backend/internal/domain/identity"
	"github.com/fixmarket/backend/internal/domain/order"
	"github.com/fixmarket/backend/internal/domain/relay"
	"github.com/fixmarket/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Reveal consensus outcomes
const (
	RevealPending = "PENDING"
	RevealGranted = "GRANTED"
)

// RevealResponse reports the consensus state after a request or
// override. Peer carries the other side's mention once granted.
type RevealResponse struct {
	OrderID int64  `json:"order_id"`
	Status  string `json:"status"`
	Peer    string `json:"peer,omitempty"`
}

// OperatorAudience lists the operators that receive triage broadcasts
type OperatorAudience interface {
	Operators(ctx context.Context) ([]identity.Participant, error)
}

// RevealService runs the identity-reveal consensus for matched pairs.
// Identities are disclosed only when both sides ask, or when an
// operator overrides.
type RevealService struct {
	reveals      relay.RevealRepository
	links        relay.LinkRepository
	orders       order.Repository
	participants identity.Repository
	operators    identity.OperatorDirectory
	audience     OperatorAudience
	dispatcher   *notify.Dispatcher
	locks        *keylock.KeyedMutex
	logger       *zap.Logger
}

// NewRevealService creates a new RevealService
func NewRevealService(
	reveals relay.RevealRepository,
	links relay.LinkRepository,
	orders order.Repository,
	participants identity.Repository,
	operators identity.OperatorDirectory,
	audience OperatorAudience,
	dispatcher *notify.Dispatcher,
	locks *keylock.KeyedMutex,
	logger *zap.Logger,
) *RevealService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RevealService{
		reveals:      reveals,
		links:        links,
		orders:       orders,
		participants: participants,
		operators:    operators,
		audience:     audience,
		dispatcher:   dispatcher,
		locks:        locks,
		logger:       logger,
	}
}

// Request records that the participant wants to disclose identities on
// their active session. With both sides on record the reveal is granted
// and each side receives the other's mention; with one side on record
// the peer and the operators are told a request is waiting. Notices go
// out after the consensus state has committed.
func (s *RevealService) Request(ctx context.Context, participantID string) (*RevealResponse, error) {
	link, err := s.links.Find(ctx, participantID)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, shared.ErrNoActiveSession
	}
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock("reveal:" + strconv.FormatInt(link.OrderID, 10))

	state, err := s.loadOrCreate(ctx, link.OrderID)
	if err != nil {
		unlock()
		return nil, err
	}

	alreadyGranted := state.Granted()
	if err := state.Request(participantID); err != nil {
		unlock()
		return nil, err
	}
	if err := s.reveals.Save(ctx, state); err != nil {
		unlock()
		return nil, err
	}
	unlock()

	resp := &RevealResponse{OrderID: state.OrderID, Status: RevealPending}
	var q notify.Queue
	if state.Granted() {
		resp.Status = RevealGranted
		resp.Peer, err = s.mention(ctx, state.PeerOf(participantID))
		if err != nil {
			return nil, err
		}
		if !alreadyGranted {
			s.queueGrantNotices(ctx, state, &q)
		}
	} else {
		q.Add(state.PeerOf(participantID),
			fmt.Sprintf("The other side of order #%d asked to reveal contacts. Send your own reveal request to agree.", state.OrderID))
		s.queueOperatorNotices(ctx, &q,
			fmt.Sprintf("Reveal requested on order #%d, waiting for the second side.", state.OrderID))
	}
	s.dispatcher.Dispatch(ctx, &q)

	return resp, nil
}

// OperatorOverride grants the reveal on an order regardless of consent.
// Only allow-listed operators may override; repeating an override is a
// no-op.
func (s *RevealService) OperatorOverride(ctx context.Context, operatorID string, orderID int64) (*RevealResponse, error) {
	if !s.operators.IsOperator(operatorID) {
		return nil, shared.ErrForbidden
	}

	unlock := s.locks.Lock("reveal:" + strconv.FormatInt(orderID, 10))

	state, err := s.loadOrCreate(ctx, orderID)
	if err != nil {
		unlock()
		return nil, err
	}

	alreadyGranted := state.Granted()
	state.Override()
	if err := s.reveals.Save(ctx, state); err != nil {
		unlock()
		return nil, err
	}
	unlock()

	if !alreadyGranted {
		var q notify.Queue
		s.queueGrantNotices(ctx, state, &q)
		s.dispatcher.Dispatch(ctx, &q)
		s.logger.Info("reveal granted by operator override",
			zap.Int64("order_id", orderID),
			zap.String("operator_id", operatorID),
		)
	}

	return &RevealResponse{OrderID: orderID, Status: RevealGranted}, nil
}

// loadOrCreate returns the order's reveal state, creating it from the
// matched pair on first use.
func (s *RevealService) loadOrCreate(ctx context.Context, orderID int64) (*relay.RevealState, error) {
	state, err := s.reveals.Find(ctx, orderID)
	if err == nil {
		return state, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.ChosenExecutorID == "" {
		return nil, shared.NewDomainError("ORDER_NOT_MATCHED", "Order has no matched pair to reveal")
	}
	return relay.NewRevealState(o.ID, o.CustomerID, o.ChosenExecutorID), nil
}

// queueGrantNotices tells each side who the other is
func (s *RevealService) queueGrantNotices(ctx context.Context, state *relay.RevealState, q *notify.Queue) {
	customer, errC := s.mention(ctx, state.CustomerID)
	executor, errE := s.mention(ctx, state.ExecutorID)
	if errC != nil || errE != nil {
		s.logger.Error("failed to resolve mentions for reveal grant",
			zap.Int64("order_id", state.OrderID),
		)
		return
	}
	q.Add(state.CustomerID, fmt.Sprintf("Contacts revealed for order #%d. The executor is %s.", state.OrderID, executor))
	q.Add(state.ExecutorID, fmt.Sprintf("Contacts revealed for order #%d. The customer is %s.", state.OrderID, customer))
}

func (s *RevealService) queueOperatorNotices(ctx context.Context, q *notify.Queue, message string) {
	ops, err := s.audience.Operators(ctx)
	if err != nil {
		s.logger.Error("failed to list operators for reveal notice", zap.Error(err))
		return
	}
	for _, op := range ops {
		q.Add(op.ID, message)
	}
}

func (s *RevealService) mention(ctx context.Context, participantID string) (string, error) {
	p, err := s.participants.FindByID(ctx, participantID)
	if err != nil {
		return "", err
	}
	return p.Mention(), nil
}
