package cache

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/travelpkg/backend/internal/domain/shared"
	"github.com/travelpkg/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Factory builds the redis-backed stores when a client is available and the
// in-memory ones otherwise
type Factory struct {
	client *redis.Client
	logger *zap.Logger
}

// Connect returns a Factory for cfg. When redis is disabled or unreachable the
// factory falls back to in-memory stores and logs a warning.
func Connect(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) *Factory {
	if logger == nil {
		logger = zap.NewNop()
	}
	f := &Factory{logger: logger}
	if !cfg.Enabled {
		logger.Info("redis disabled, using in-memory caches")
		return f
	}
	client, err := NewRedisClient(ctx, cfg)
	if err != nil {
		logger.Warn("redis unavailable, falling back to in-memory caches. "+
			"Idempotency keys will not be shared between instances.",
			zap.Error(err),
		)
		return f
	}
	logger.Info("using redis caches", zap.String("addr", cfg.Addr()))
	f.client = client
	return f
}

// NewFactory wraps an existing client; nil selects the in-memory stores
func NewFactory(client *redis.Client, logger *zap.Logger) *Factory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Factory{client: client, logger: logger}
}

// Redis returns the underlying client, nil in in-memory mode
func (f *Factory) Redis() *redis.Client {
	return f.client
}

// IdempotencyStore returns the store used for reservation idempotency keys
func (f *Factory) IdempotencyStore() shared.IdempotencyStore {
	if f.client != nil {
		return NewRedisIdempotencyStore(f.client, "")
	}
	return NewInMemoryIdempotencyStore(0)
}

// DashboardCache returns the cache used for dashboard snapshots
func (f *Factory) DashboardCache() DashboardCache {
	if f.client != nil {
		return NewRedisDashboardCache(f.client, "")
	}
	return NewInMemoryDashboardCache()
}

// Close closes the redis client, if any
func (f *Factory) Close() error {
	if f.client == nil {
		return nil
	}
	return f.client.Close()
}
