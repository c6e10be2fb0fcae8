package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/fixmarket/backend/internal/domain/contact"
	"github.com/fixmarket/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// NewCooldownStore builds the contact cooldown store from configuration.
// With Redis enabled and reachable the store is shared and durable;
// otherwise it falls back to process memory.
func NewCooldownStore(cfg config.RedisConfig, retention time.Duration, logger *zap.Logger) contact.CooldownStore {
	if logger == nil {
		logger = zap.NewNop()
	}

	if !cfg.Enabled {
		logger.Info("using in-memory cooldown store")
		return NewInMemoryCooldownStore(retention)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn(fmt.Sprintf("redis unreachable at %s, falling back to in-memory cooldown store", cfg.Addr()),
			zap.Error(err),
		)
		return NewInMemoryCooldownStore(retention)
	}

	logger.Info("using redis cooldown store", zap.String("addr", cfg.Addr()))
	return NewRedisCooldownStore(client, retention)
}
