package memory

import (
	"context"
	"sync"

	"github.com/fixmarket/backend/internal/domain/relay"
	"github.com/fixmarket/backend/internal/domain/shared"
)

// LinkRepository is the in-memory relay.LinkRepository. Put and Delete
// run under one lock, so the two mirrored entries of a session are
// always visible together.
type LinkRepository struct {
	mu    sync.RWMutex
	links map[string]relay.Link
}

// NewLinkRepository creates a new LinkRepository
func NewLinkRepository() *LinkRepository {
	return &LinkRepository{links: make(map[string]relay.Link)}
}

// Find returns the directed entry for the participant
func (r *LinkRepository) Find(ctx context.Context, participantID string) (*relay.Link, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	l, ok := r.links[participantID]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := l
	return &copied, nil
}

// Put stores directed entries, replacing any existing entries for the
// same participants
func (r *LinkRepository) Put(ctx context.Context, links ...relay.Link) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, l := range links {
		r.links[l.ParticipantID] = l
	}
	return nil
}

// Delete removes the directed entries of the given participants
func (r *LinkRepository) Delete(ctx context.Context, participantIDs ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range participantIDs {
		delete(r.links, id)
	}
	return nil
}

// All returns every directed entry
func (r *LinkRepository) All(ctx context.Context) ([]relay.Link, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]relay.Link, 0, len(r.links))
	for _, l := range r.links {
		out = append(out, l)
	}
	return out, nil
}

// Dump returns a copy of every directed entry
func (r *LinkRepository) Dump() []relay.Link {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]relay.Link, 0, len(r.links))
	for _, l := range r.links {
		out = append(out, l)
	}
	return out
}

// Restore replaces the store's contents
func (r *LinkRepository) Restore(links []relay.Link) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.links = make(map[string]relay.Link, len(links))
	for _, l := range links {
		r.links[l.ParticipantID] = l
	}
}

var _ relay.LinkRepository = (*LinkRepository)(nil)

// RevealRepository is the in-memory relay.RevealRepository
type RevealRepository struct {
	mu      sync.RWMutex
	reveals map[int64]relay.RevealState
}

// NewRevealRepository creates a new RevealRepository
func NewRevealRepository() *RevealRepository {
	return &RevealRepository{reveals: make(map[int64]relay.RevealState)}
}

// Find returns the reveal state for an order
func (r *RevealRepository) Find(ctx context.Context, orderID int64) (*relay.RevealState, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.reveals[orderID]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := copyRevealState(s)
	return &copied, nil
}

// Save creates or updates a reveal state
func (r *RevealRepository) Save(ctx context.Context, state *relay.RevealState) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.reveals[state.OrderID] = copyRevealState(*state)
	return nil
}

// Dump returns a copy of every reveal state
func (r *RevealRepository) Dump() []relay.RevealState {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]relay.RevealState, 0, len(r.reveals))
	for _, s := range r.reveals {
		out = append(out, copyRevealState(s))
	}
	return out
}

// Restore replaces the store's contents
func (r *RevealRepository) Restore(states []relay.RevealState) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.reveals = make(map[int64]relay.RevealState, len(states))
	for _, s := range states {
		r.reveals[s.OrderID] = copyRevealState(s)
	}
}

// copyRevealState deep-copies the request map
func copyRevealState(s relay.RevealState) relay.RevealState {
	requested := make(map[string]bool, len(s.Requested))
	for k, v := range s.Requested {
		requested[k] = v
	}
	s.Requested = requested
	return s
}

var _ relay.RevealRepository = (*RevealRepository)(nil)
