package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/fixmarket/backend/internal/domain/contact"
	"github.com/fixmarket/backend/internal/domain/shared"
)

// ContactRepository is the in-memory contact.Repository
type ContactRepository struct {
	mu       sync.RWMutex
	requests map[int64]contact.Request
	nextID   int64
}

// NewContactRepository creates a new ContactRepository
func NewContactRepository() *ContactRepository {
	return &ContactRepository{requests: make(map[int64]contact.Request), nextID: 1}
}

// NextID allocates the next monotonic request identifier
func (r *ContactRepository) NextID(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.nextID
	r.nextID++
	return id, nil
}

// FindByID finds a contact request by ID
func (r *ContactRepository) FindByID(ctx context.Context, id int64) (*contact.Request, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	req, ok := r.requests[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := req
	return &copied, nil
}

// FindByStatus returns requests with the given status sorted by
// timestamp descending, ties broken on ID descending. A limit <= 0
// means no limit.
func (r *ContactRepository) FindByStatus(ctx context.Context, status contact.Status, limit int) ([]contact.Request, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []contact.Request
	for _, req := range r.requests {
		if req.Status == status {
			out = append(out, req)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Save creates or updates a contact request
func (r *ContactRepository) Save(ctx context.Context, req *contact.Request) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.requests[req.ID] = *req
	if req.ID >= r.nextID {
		r.nextID = req.ID + 1
	}
	return nil
}

// Dump returns a copy of every stored request and the sequence cursor
func (r *ContactRepository) Dump() ([]contact.Request, int64) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]contact.Request, 0, len(r.requests))
	for _, req := range r.requests {
		out = append(out, req)
	}
	return out, r.nextID
}

// Restore replaces the store's contents and sequence cursor
func (r *ContactRepository) Restore(requests []contact.Request, nextID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.requests = make(map[int64]contact.Request, len(requests))
	for _, req := range requests {
		r.requests[req.ID] = req
		if req.ID >= nextID {
			nextID = req.ID + 1
		}
	}
	if nextID < 1 {
		nextID = 1
	}
	r.nextID = nextID
}

var _ contact.Repository = (*ContactRepository)(nil)
