package cache

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/travelpkg/backend/internal/domain/report"
	"github.com/travelpkg/backend/internal/domain/shared"
)

const defaultDashboardPrefix = "travel:dashboard:"

// DashboardCache stores computed dashboard snapshots for a short time
type DashboardCache interface {
	Get(ctx context.Context, key string) (*report.DashboardStats, bool, error)
	Set(ctx context.Context, key string, stats report.DashboardStats, ttl time.Duration) error
}

// RedisDashboardCache stores snapshots as JSON strings
type RedisDashboardCache struct {
	client    redis.Cmdable
	keyPrefix string
}

// NewRedisDashboardCache wraps an existing client
func NewRedisDashboardCache(client redis.Cmdable, keyPrefix string) *RedisDashboardCache {
	if keyPrefix == "" {
		keyPrefix = defaultDashboardPrefix
	}
	return &RedisDashboardCache{client: client, keyPrefix: keyPrefix}
}

// Get returns the cached snapshot for key, if any
func (c *RedisDashboardCache) Get(ctx context.Context, key string) (*report.DashboardStats, bool, error) {
	raw, err := c.client.Get(ctx, c.keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, shared.NewRetryableError(err)
	}
	var stats report.DashboardStats
	if err := json.Unmarshal(raw, &stats); err != nil {
		return nil, false, shared.NewFatalError(err)
	}
	return &stats, true, nil
}

// Set stores stats under key for ttl
func (c *RedisDashboardCache) Set(ctx context.Context, key string, stats report.DashboardStats, ttl time.Duration) error {
	raw, err := json.Marshal(stats)
	if err != nil {
		return shared.NewFatalError(err)
	}
	if err := c.client.Set(ctx, c.keyPrefix+key, raw, ttl).Err(); err != nil {
		return shared.NewRetryableError(err)
	}
	return nil
}

type dashboardEntry struct {
	stats     report.DashboardStats
	expiresAt time.Time
}

// InMemoryDashboardCache keeps snapshots in process memory
type InMemoryDashboardCache struct {
	mu      sync.RWMutex
	entries map[string]dashboardEntry
	now     func() time.Time
}

// NewInMemoryDashboardCache creates an empty cache
func NewInMemoryDashboardCache() *InMemoryDashboardCache {
	return &InMemoryDashboardCache{entries: make(map[string]dashboardEntry), now: time.Now}
}

// Get returns the unexpired snapshot for key, if any
func (c *InMemoryDashboardCache) Get(_ context.Context, key string) (*report.DashboardStats, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	if !ok || !c.now().Before(e.expiresAt) {
		return nil, false, nil
	}
	stats := e.stats
	return &stats, true, nil
}

// Set stores stats under key for ttl
func (c *InMemoryDashboardCache) Set(_ context.Context, key string, stats report.DashboardStats, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = dashboardEntry{stats: stats, expiresAt: c.now().Add(ttl)}
	return nil
}

var (
	_ DashboardCache = (*RedisDashboardCache)(nil)
	_ DashboardCache = (*InMemoryDashboardCache)(nil)
)
