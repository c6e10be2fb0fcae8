package identity

import (
	"fmt"
	"strings"
	"time"

	"github.com/fixmarket/backend/internal/domain/shared"
)

// Role represents a participant's declared role on the platform
type Role string

const (
	RoleUnset    Role = "UNSET"
	RoleCustomer Role = "CUSTOMER"
	RoleExecutor Role = "EXECUTOR"
	RoleOperator Role = "OPERATOR"
)

// IsValid checks if the role is a valid Role
func (r Role) IsValid() bool {
	switch r {
	case RoleUnset, RoleCustomer, RoleExecutor, RoleOperator:
		return true
	}
	return false
}

// String returns the string representation of Role
func (r Role) String() string {
	return string(r)
}

// OperatorDirectory answers whether a participant identifier is on the
// static operator allow-list. It is consulted at every role transition
// to operator and re-checked at every operator-gated action, so an
// identifier removed from the list loses operator powers without
// re-authentication.
type OperatorDirectory interface {
	IsOperator(participantID string) bool
}

// Participant is a known platform user. Created on first contact, never
// deleted; the profile is refreshed on every inbound event.
type Participant struct {
	shared.AggregateRoot
	ID           string
	Handle       string
	DisplayName  string
	Role         Role
	Availability string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewParticipant creates a participant from platform-supplied identity data
func NewParticipant(id, handle, displayName string) (*Participant, error) {
	if strings.TrimSpace(id) == "" {
		return nil, shared.NewDomainError("INVALID_PARTICIPANT", "Participant ID cannot be empty")
	}
	if strings.TrimSpace(displayName) == "" {
		displayName = "Participant"
	}

	now := time.Now()
	return &Participant{
		AggregateRoot: shared.NewAggregateRoot(),
		ID:            id,
		Handle:        handle,
		DisplayName:   displayName,
		Role:          RoleUnset,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// RefreshProfile updates handle and display name from the latest inbound
// event. Empty values never overwrite known ones.
func (p *Participant) RefreshProfile(handle, displayName string) {
	if handle != "" {
		p.Handle = handle
	}
	if strings.TrimSpace(displayName) != "" {
		p.DisplayName = displayName
	}
	p.UpdatedAt = time.Now()
}

// SwitchRole changes the declared role. The operator role is only
// reachable for identifiers on the allow-list.
func (p *Participant) SwitchRole(role Role, ops OperatorDirectory) error {
	if !role.IsValid() {
		return shared.NewDomainError("INVALID_ROLE", fmt.Sprintf("Unknown role %q", role))
	}
	if role == RoleOperator && !ops.IsOperator(p.ID) {
		return shared.ErrForbidden
	}

	p.Role = role
	p.UpdatedAt = time.Now()
	return nil
}

// EffectiveRole returns the role after re-validating operator membership.
// A participant holding the operator role while absent from the
// allow-list degrades to unset.
func (p *Participant) EffectiveRole(ops OperatorDirectory) Role {
	if p.Role == RoleOperator && !ops.IsOperator(p.ID) {
		return RoleUnset
	}
	return p.Role
}

// DegradeIfRevoked applies the allow-list degradation to the stored
// role. Returns true if the role changed.
func (p *Participant) DegradeIfRevoked(ops OperatorDirectory) bool {
	if p.Role == RoleOperator && !ops.IsOperator(p.ID) {
		p.Role = RoleUnset
		p.UpdatedAt = time.Now()
		return true
	}
	return false
}

// SetAvailability stores the executor's free-text availability note
func (p *Participant) SetAvailability(text string) {
	p.Availability = strings.TrimSpace(text)
	p.UpdatedAt = time.Now()
}

// Mention returns the participant's public reference for reveal
// notifications: the handle when one is set, otherwise the display name
// with the platform identifier.
func (p *Participant) Mention() string {
	if p.Handle != "" {
		return "@" + p.Handle
	}
	return fmt.Sprintf("%s (id %s)", p.DisplayName, p.ID)
}
