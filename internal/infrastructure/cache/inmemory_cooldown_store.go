package cache

import (
	"context"
	"sync"
	"time"

	"github.com/fixmarket/backend/internal/domain/contact"
)

// InMemoryCooldownStore tracks last accepted contact submissions in a
// map. Entries older than the retention window are pruned on write so
// the map does not grow with every requester ever seen.
type InMemoryCooldownStore struct {
	mu        sync.RWMutex
	accepted  map[string]time.Time
	retention time.Duration
	lastPrune time.Time
}

// NewInMemoryCooldownStore creates a new in-memory cooldown store.
// Retention should be at least the cooldown window; entries past it are
// irrelevant for throttling.
func NewInMemoryCooldownStore(retention time.Duration) *InMemoryCooldownStore {
	if retention <= 0 {
		retention = time.Hour
	}
	return &InMemoryCooldownStore{
		accepted:  make(map[string]time.Time),
		retention: retention,
		lastPrune: time.Now(),
	}
}

// LastAccepted returns the requester's last accepted submission time
func (s *InMemoryCooldownStore) LastAccepted(ctx context.Context, requesterID string) (time.Time, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.accepted[requesterID]
	return t, ok, nil
}

// RecordAccepted stores the requester's accepted submission time
func (s *InMemoryCooldownStore) RecordAccepted(ctx context.Context, requesterID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.accepted[requesterID] = at
	s.pruneLocked(at)
	return nil
}

// pruneLocked drops entries older than the retention window, at most
// once per window
func (s *InMemoryCooldownStore) pruneLocked(now time.Time) {
	if now.Sub(s.lastPrune) < s.retention {
		return
	}
	s.lastPrune = now
	for id, t := range s.accepted {
		if now.Sub(t) > s.retention {
			delete(s.accepted, id)
		}
	}
}

var _ contact.CooldownStore = (*InMemoryCooldownStore)(nil)
