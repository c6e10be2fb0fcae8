package identity

import "context"

// Repository defines the interface for participant persistence
type Repository interface {
	// FindByID finds a participant by platform identifier
	FindByID(ctx context.Context, id string) (*Participant, error)

	// Save creates or updates a participant with an optimistic version check
	Save(ctx context.Context, p *Participant) error
}
