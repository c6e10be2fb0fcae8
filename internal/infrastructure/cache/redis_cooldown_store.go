package cache

import (
	"context"
	"errors"
	"time"

	"github.com/fixmarket/backend/internal/domain/contact"
	"github.com/redis/go-redis/v9"
)

// RedisCooldownStore tracks last accepted contact submissions in Redis
// so the throttle survives restarts and is shared across instances.
// Keys expire on their own after the retention window.
type RedisCooldownStore struct {
	client    *redis.Client
	retention time.Duration
}

// NewRedisCooldownStore creates a new Redis-backed cooldown store
func NewRedisCooldownStore(client *redis.Client, retention time.Duration) *RedisCooldownStore {
	if retention <= 0 {
		retention = time.Hour
	}
	return &RedisCooldownStore{client: client, retention: retention}
}

func cooldownKey(requesterID string) string {
	return "contact:cooldown:" + requesterID
}

// LastAccepted returns the requester's last accepted submission time
func (s *RedisCooldownStore) LastAccepted(ctx context.Context, requesterID string) (time.Time, bool, error) {
	val, err := s.client.Get(ctx, cooldownKey(requesterID)).Result()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}

	t, err := time.Parse(time.RFC3339Nano, val)
	if err != nil {
		return time.Time{}, false, err
	}
	return t, true, nil
}

// RecordAccepted stores the requester's accepted submission time
func (s *RedisCooldownStore) RecordAccepted(ctx context.Context, requesterID string, at time.Time) error {
	return s.client.Set(ctx, cooldownKey(requesterID), at.Format(time.RFC3339Nano), s.retention).Err()
}

var _ contact.CooldownStore = (*RedisCooldownStore)(nil)
