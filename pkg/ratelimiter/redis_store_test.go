package ratelimiter_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/authgateway/pkg/ratelimiter"
)

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisStoreCapacityThenRefill(t *testing.T) {
	t.Parallel()

	mr, client := setupRedis(t)
	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	mr.SetTime(base)

	cfg := ratelimiter.Config{Capacity: 3, RefillRate: 3, RefillInterval: time.Minute}
	b, err := ratelimiter.NewBucket(ratelimiter.NewRedisStore(client), cfg)
	require.NoError(t, err)
	ctx := context.Background()

	for i := range cfg.Capacity {
		res, err := b.Allow(ctx, "rate_limit:/api/v1/auth/login:1.2.3.4")
		require.NoError(t, err)
		require.True(t, res.Allowed(), "request %d", i+1)
		assert.Equal(t, cfg.Capacity-i-1, res.Remaining)
	}

	res, err := b.Allow(ctx, "rate_limit:/api/v1/auth/login:1.2.3.4")
	require.NoError(t, err)
	assert.False(t, res.Allowed())
	assert.Positive(t, res.RetryAfter())

	mr.SetTime(base.Add(cfg.RefillInterval))
	for i := range cfg.RefillRate {
		res, err := b.Allow(ctx, "rate_limit:/api/v1/auth/login:1.2.3.4")
		require.NoError(t, err)
		assert.True(t, res.Allowed(), "refilled request %d", i+1)
	}
}

func TestRedisStoreUnavailable(t *testing.T) {
	t.Parallel()

	mr, client := setupRedis(t)
	mr.Close()

	b, err := ratelimiter.NewBucket(ratelimiter.NewRedisStore(client), ratelimiter.Config{
		Capacity: 1, RefillRate: 1, RefillInterval: time.Minute,
	})
	require.NoError(t, err)

	_, err = b.Allow(context.Background(), "k")
	assert.ErrorIs(t, err, ratelimiter.ErrStoreUnavailable)

	out := b.Decide(context.Background(), "k")
	assert.Equal(t, ratelimiter.DecisionUnavailable, out.Decision)
	assert.True(t, out.Decision.Permits())
}
