package relay

import (
	"time"

	"github.com/fixmarket/backend/internal/domain/shared"
)

// RevealState tracks the consent negotiation for disclosing real
// identities on one order. Reveal is granted iff both relay participants
// have requested it, or an operator has overridden. Once granted the
// grant is idempotent: further requests restate it without starting a
// new negotiation.
type RevealState struct {
	OrderID          int64
	CustomerID       string
	ExecutorID       string
	Requested        map[string]bool
	OperatorOverride bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NewRevealState creates the reveal state for an order's relay pair
func NewRevealState(orderID int64, customerID, executorID string) *RevealState {
	now := time.Now()
	return &RevealState{
		OrderID:    orderID,
		CustomerID: customerID,
		ExecutorID: executorID,
		Requested:  make(map[string]bool),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Request records that a relay participant asked for the reveal.
// Only the two relay participants may request.
func (r *RevealState) Request(participantID string) error {
	if participantID != r.CustomerID && participantID != r.ExecutorID {
		return shared.ErrForbidden
	}
	r.Requested[participantID] = true
	r.UpdatedAt = time.Now()
	return nil
}

// Override sets the operator override flag. Idempotent.
func (r *RevealState) Override() {
	r.OperatorOverride = true
	r.UpdatedAt = time.Now()
}

// Granted reports whether identities may be disclosed
func (r *RevealState) Granted() bool {
	if r.OperatorOverride {
		return true
	}
	return r.Requested[r.CustomerID] && r.Requested[r.ExecutorID]
}

// PeerOf returns the other relay participant for the given one
func (r *RevealState) PeerOf(participantID string) string {
	if participantID == r.CustomerID {
		return r.ExecutorID
	}
	return r.CustomerID
}
