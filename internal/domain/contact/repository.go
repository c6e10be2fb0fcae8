package contact

import (
	"context"
	"time"
)

// Repository defines the interface for contact request persistence
type Repository interface {
	// NextID allocates the next monotonic request identifier
	NextID(ctx context.Context) (int64, error)

	// FindByID finds a contact request by ID
	FindByID(ctx context.Context, id int64) (*Request, error)

	// FindByStatus returns requests with the given status sorted by
	// timestamp descending. A limit <= 0 means no limit.
	FindByStatus(ctx context.Context, status Status, limit int) ([]Request, error)

	// Save creates or updates a contact request
	Save(ctx context.Context, r *Request) error
}

// CooldownStore tracks each requester's last accepted submission time.
// Expiry is evaluated lazily at submission time; there is no timer.
type CooldownStore interface {
	// LastAccepted returns the requester's last accepted submission
	// time; ok is false if the requester never had one recorded
	LastAccepted(ctx context.Context, requesterID string) (t time.Time, ok bool, err error)

	// RecordAccepted stores the requester's accepted submission time
	RecordAccepted(ctx context.Context, requesterID string, at time.Time) error
}
