// Package memory provides the in-memory repositories backing the
// coordinator. State lives in maps guarded by RWMutexes; aggregates are
// deep-copied on the way in and out so callers never share memory with
// the store. Saves apply an optimistic version check. Each repository
// exposes Dump/Restore for the snapshot collaborator.
package memory

import (
	"context"
	"sync"

	"github.com/fixmarket/backend/internal/domain/identity"
	"github.com/fixmarket/backend/internal/domain/shared"
)

// ParticipantRepository is the in-memory identity.Repository
type ParticipantRepository struct {
	mu           sync.RWMutex
	participants map[string]identity.Participant
}

// NewParticipantRepository creates a new ParticipantRepository
func NewParticipantRepository() *ParticipantRepository {
	return &ParticipantRepository{participants: make(map[string]identity.Participant)}
}

// FindByID finds a participant by platform identifier
func (r *ParticipantRepository) FindByID(ctx context.Context, id string) (*identity.Participant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.participants[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := p
	return &copied, nil
}

// Save creates or updates a participant with an optimistic version check
func (r *ParticipantRepository) Save(ctx context.Context, p *identity.Participant) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if stored, ok := r.participants[p.ID]; ok && stored.Version != p.Version {
		return shared.ErrConcurrencyConflict
	}

	p.IncrementVersion()
	r.participants[p.ID] = *p
	return nil
}

// Dump returns a copy of every stored participant
func (r *ParticipantRepository) Dump() []identity.Participant {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]identity.Participant, 0, len(r.participants))
	for _, p := range r.participants {
		out = append(out, p)
	}
	return out
}

// Restore replaces the store's contents
func (r *ParticipantRepository) Restore(participants []identity.Participant) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.participants = make(map[string]identity.Participant, len(participants))
	for _, p := range participants {
		r.participants[p.ID] = p
	}
}

var _ identity.Repository = (*ParticipantRepository)(nil)
