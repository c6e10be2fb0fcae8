package identity

import (
	"context"
	"errors"

	"github.com/fixmarket/backend/internal/application/keylock"
	"github.com/fixmarket/backend/internal/domain/identity"
	"github.com/fixmarket/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// OperatorRoster is the allow-list with its membership enumerable, the
// source of truth for who counts as an operator.
type OperatorRoster interface {
	identity.OperatorDirectory
	IDs() []string
}

// Service handles participant registration, profile refresh and role
// switching
type Service struct {
	participants identity.Repository
	operators    OperatorRoster
	locks        *keylock.KeyedMutex
	logger       *zap.Logger
}

// NewService creates a new identity Service
func NewService(participants identity.Repository, operators OperatorRoster, locks *keylock.KeyedMutex, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		participants: participants,
		operators:    operators,
		locks:        locks,
		logger:       logger,
	}
}

// Ensure creates the participant on first contact or refreshes the
// profile on a later one. A stored operator role that no longer appears
// on the allow-list degrades to unset here.
func (s *Service) Ensure(ctx context.Context, id, handle, displayName string) (*ParticipantResponse, error) {
	unlock := s.locks.Lock("participant:" + id)
	defer unlock()

	p, err := s.participants.FindByID(ctx, id)
	switch {
	case err == nil:
		p.RefreshProfile(handle, displayName)
		if p.DegradeIfRevoked(s.operators) {
			s.logger.Info("operator role degraded, identifier no longer allow-listed",
				zap.String("participant_id", id))
		}
	case errors.Is(err, shared.ErrNotFound):
		p, err = identity.NewParticipant(id, handle, displayName)
		if err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	if err := s.participants.Save(ctx, p); err != nil {
		return nil, err
	}

	resp := ToParticipantResponse(p, s.operators)
	return &resp, nil
}

// Get returns a participant's profile
func (s *Service) Get(ctx context.Context, id string) (*ParticipantResponse, error) {
	p, err := s.participants.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToParticipantResponse(p, s.operators)
	return &resp, nil
}

// SwitchRole changes the participant's declared role. Switching to
// operator requires allow-list membership.
func (s *Service) SwitchRole(ctx context.Context, id string, role identity.Role) (*ParticipantResponse, error) {
	unlock := s.locks.Lock("participant:" + id)
	defer unlock()

	p, err := s.participants.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := p.SwitchRole(role, s.operators); err != nil {
		if errors.Is(err, shared.ErrForbidden) {
			s.logger.Warn("operator role denied, identifier not allow-listed",
				zap.String("participant_id", id))
		}
		return nil, err
	}
	if err := s.participants.Save(ctx, p); err != nil {
		return nil, err
	}

	resp := ToParticipantResponse(p, s.operators)
	return &resp, nil
}

// SetAvailability stores the executor's free-text availability note
func (s *Service) SetAvailability(ctx context.Context, id, text string) (*ParticipantResponse, error) {
	unlock := s.locks.Lock("participant:" + id)
	defer unlock()

	p, err := s.participants.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	p.SetAvailability(text)
	if err := s.participants.Save(ctx, p); err != nil {
		return nil, err
	}

	resp := ToParticipantResponse(p, s.operators)
	return &resp, nil
}

// RequireOperator verifies the participant may perform operator-gated
// actions. Membership is checked against the allow-list at the call
// boundary, never inferred from a stored role claim.
func (s *Service) RequireOperator(ctx context.Context, id string) error {
	if !s.operators.IsOperator(id) {
		return shared.ErrForbidden
	}
	return nil
}

// Operators returns the triage broadcast audience: every allow-listed
// identifier, decorated with the stored profile when that participant
// has registered. Membership alone makes an operator reachable; no
// registration or role switch is required.
func (s *Service) Operators(ctx context.Context) ([]identity.Participant, error) {
	ids := s.operators.IDs()
	listed := make([]identity.Participant, 0, len(ids))
	for _, id := range ids {
		if p, err := s.participants.FindByID(ctx, id); err == nil {
			listed = append(listed, *p)
			continue
		}
		listed = append(listed, identity.Participant{ID: id})
	}
	return listed, nil
}
