package relay

import "context"

// LinkRepository defines the interface for relay link persistence.
// Implementations must apply Put and Delete atomically so that the two
// mirrored entries of a session never become visible half-written.
type LinkRepository interface {
	// Find returns the directed entry for the participant, or
	// shared.ErrNotFound if the participant has no active link
	Find(ctx context.Context, participantID string) (*Link, error)

	// Put stores directed entries, replacing any existing entries for
	// the same participants
	Put(ctx context.Context, links ...Link) error

	// Delete removes the directed entries of the given participants
	Delete(ctx context.Context, participantIDs ...string) error

	// All returns every directed entry (operator projection)
	All(ctx context.Context) ([]Link, error)
}

// RevealRepository defines the interface for reveal state persistence
type RevealRepository interface {
	// Find returns the reveal state for an order, or shared.ErrNotFound
	Find(ctx context.Context, orderID int64) (*RevealState, error)

	// Save creates or updates a reveal state
	Save(ctx context.Context, state *RevealState) error
}
