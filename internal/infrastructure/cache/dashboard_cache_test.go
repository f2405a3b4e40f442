package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travelpkg/backend/internal/domain/report"
	"github.com/travelpkg/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

func TestInMemoryDashboardCache(t *testing.T) {
	c := NewInMemoryDashboardCache()
	now := time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	_, ok, err := c.Get(ctx, "stats")
	require.NoError(t, err)
	assert.False(t, ok)

	stats := report.EmptyDashboardStats(now)
	stats.TotalRevenue = 1200000
	require.NoError(t, c.Set(ctx, "stats", stats, time.Minute))

	got, ok, err := c.Get(ctx, "stats")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(1200000), got.TotalRevenue)
	assert.Len(t, got.MonthlyStats, report.MonthlyBuckets)

	now = now.Add(time.Minute)
	_, ok, err = c.Get(ctx, "stats")
	require.NoError(t, err)
	assert.False(t, ok, "entry expires at ttl")
}

func TestFactory_InMemoryFallback(t *testing.T) {
	t.Run("disabled redis", func(t *testing.T) {
		f := Connect(context.Background(), config.RedisConfig{Enabled: false}, zap.NewNop())
		defer f.Close()

		assert.Nil(t, f.Redis())
		assert.IsType(t, &InMemoryIdempotencyStore{}, f.IdempotencyStore())
		assert.IsType(t, &InMemoryDashboardCache{}, f.DashboardCache())
	})

	t.Run("unreachable redis", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		f := Connect(ctx, config.RedisConfig{Enabled: true, Host: "127.0.0.1", Port: 1}, zap.NewNop())
		defer f.Close()

		assert.Nil(t, f.Redis())
		assert.IsType(t, &InMemoryDashboardCache{}, f.DashboardCache())
	})
}
