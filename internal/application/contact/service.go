package contact

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/fixmarket/backend/internal/application/keylock"
	"github.com/fixmarket/backend/internal/application/notify"
	"github.com/fixmarket/backend/internal/domain/contact"
	"github.com/fixmarket/backend/internal/domain/identity"
	"github.com/fixmarket/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// OperatorAudience lists the operators that receive triage broadcasts
type OperatorAudience interface {
	Operators(ctx context.Context) ([]identity.Participant, error)
}

// Service handles the phone callback queue: accepting submissions under
// a per-requester cooldown, broadcasting them to operators and marking
// them worked off.
type Service struct {
	requests     contact.Repository
	cooldowns    contact.CooldownStore
	participants identity.Repository
	operators    identity.OperatorDirectory
	audience     OperatorAudience
	dispatcher   *notify.Dispatcher
	locks        *keylock.KeyedMutex
	logger       *zap.Logger

	cooldown     time.Duration
	doneLimit    int
	supportPhone string
}

// NewService creates a new contact Service
func NewService(
	requests contact.Repository,
	cooldowns contact.CooldownStore,
	participants identity.Repository,
	operators identity.OperatorDirectory,
	audience OperatorAudience,
	dispatcher *notify.Dispatcher,
	locks *keylock.KeyedMutex,
	logger *zap.Logger,
	cooldown time.Duration,
	doneLimit int,
	supportPhone string,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		requests:     requests,
		cooldowns:    cooldowns,
		participants: participants,
		operators:    operators,
		audience:     audience,
		dispatcher:   dispatcher,
		locks:        locks,
		logger:       logger,
		cooldown:     cooldown,
		doneLimit:    doneLimit,
		supportPhone: supportPhone,
	}
}

// Submit accepts a callback request unless the requester is still in
// cooldown from their last accepted one. An accepted request is
// broadcast to every operator with a shortcut to mark it done; the
// broadcast goes out after the requester lock is released.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (*RequestResponse, error) {
	unlock := s.locks.Lock("requester:" + req.RequesterID)

	now := time.Now()
	last, ok, err := s.cooldowns.LastAccepted(ctx, req.RequesterID)
	if err != nil {
		unlock()
		return nil, err
	}
	if ok && now.Sub(last) < s.cooldown {
		unlock()
		return nil, shared.ErrRateLimited
	}

	id, err := s.requests.NextID(ctx)
	if err != nil {
		unlock()
		return nil, err
	}

	name := req.RequesterName
	if name == "" {
		if p, err := s.participants.FindByID(ctx, req.RequesterID); err == nil {
			name = p.DisplayName
		}
	}

	r, err := contact.NewRequest(id, req.RequesterID, name, req.Phone, contact.Source(req.Source))
	if err != nil {
		unlock()
		return nil, err
	}
	if err := s.requests.Save(ctx, r); err != nil {
		unlock()
		return nil, err
	}
	if err := s.cooldowns.RecordAccepted(ctx, req.RequesterID, now); err != nil {
		// The request is stored; a lost cooldown mark only lets the
		// requester resubmit early.
		s.logger.Warn("failed to record contact cooldown",
			zap.String("requester_id", req.RequesterID),
			zap.Error(err),
		)
	}
	unlock()

	var q notify.Queue
	s.broadcastToOperators(ctx, &q, r)
	s.dispatcher.Dispatch(ctx, &q)

	s.logger.Info("contact request accepted",
		zap.Int64("request_id", r.ID),
		zap.String("source", string(r.Source)),
	)

	resp := ToRequestResponse(r)
	return &resp, nil
}

func (s *Service) broadcastToOperators(ctx context.Context, q *notify.Queue, r *contact.Request) {
	ops, err := s.audience.Operators(ctx)
	if err != nil {
		s.logger.Error("failed to list operators for contact broadcast", zap.Error(err))
		return
	}

	who := r.RequesterName
	if who == "" {
		who = "id " + r.RequesterID
	}
	message := fmt.Sprintf("Callback request #%d from %s: %s", r.ID, who, r.Phone)
	action := notify.Action{
		Label:   "Mark done",
		Command: "contact_done:" + strconv.FormatInt(r.ID, 10),
	}
	for _, op := range ops {
		q.Add(op.ID, message, action)
	}
}

// MarkDone moves a request to done. Operator-only; repeating it on a
// done request changes nothing.
func (s *Service) MarkDone(ctx context.Context, operatorID string, requestID int64) (*RequestResponse, error) {
	if !s.operators.IsOperator(operatorID) {
		return nil, shared.ErrForbidden
	}

	unlock := s.locks.Lock("contact:" + strconv.FormatInt(requestID, 10))
	defer unlock()

	r, err := s.requests.FindByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	r.MarkDone()
	if err := s.requests.Save(ctx, r); err != nil {
		return nil, err
	}

	resp := ToRequestResponse(r)
	return &resp, nil
}

// ListNew returns the full open triage backlog, newest first.
// Operator-only.
func (s *Service) ListNew(ctx context.Context, operatorID string) ([]RequestResponse, error) {
	return s.list(ctx, operatorID, contact.StatusNew, 0)
}

// ListDone returns the most recently worked-off requests, newest first
// and capped. Operator-only.
func (s *Service) ListDone(ctx context.Context, operatorID string) ([]RequestResponse, error) {
	return s.list(ctx, operatorID, contact.StatusDone, s.doneLimit)
}

func (s *Service) list(ctx context.Context, operatorID string, status contact.Status, limit int) ([]RequestResponse, error) {
	if !s.operators.IsOperator(operatorID) {
		return nil, shared.ErrForbidden
	}
	requests, err := s.requests.FindByStatus(ctx, status, limit)
	if err != nil {
		return nil, err
	}
	out := make([]RequestResponse, 0, len(requests))
	for i := range requests {
		out = append(out, ToRequestResponse(&requests[i]))
	}
	return out, nil
}

// Support returns the static support contact card
func (s *Service) Support(ctx context.Context) SupportCard {
	return SupportCard{
		Phone:   s.supportPhone,
		Message: "Call us or leave your number and we will call you back.",
	}
}
