package ratelimiter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis_rate/v10"
	"github.com/redis/go-redis/v9"
)

// RedisStore keeps bucket state in Redis so every gateway replica shares it.
// Consumption runs as a single Lua script (GCRA), so concurrent requests for
// the same key never double-spend a token.
type RedisStore struct {
	limiter *redis_rate.Limiter
}

// NewRedisStore creates a Redis-backed store.
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{limiter: redis_rate.NewLimiter(client)}
}

// ConsumeTokens maps the bucket onto GCRA: Burst is the capacity and
// RefillRate tokens become available every RefillInterval.
func (s *RedisStore) ConsumeTokens(ctx context.Context, key string, tokens int, config Config) (int, time.Time, error) {
	limit := redis_rate.Limit{
		Rate:   config.RefillRate,
		Burst:  config.Capacity,
		Period: config.RefillInterval,
	}

	res, err := s.limiter.AllowN(ctx, key, limit, tokens)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return 0, time.Time{}, fmt.Errorf("%w: %w", ErrContextCancelled, err)
		}
		return 0, time.Time{}, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	now := time.Now()
	if tokens > 0 && res.Allowed == 0 {
		return -1, now.Add(res.RetryAfter), nil
	}
	return res.Remaining, now.Add(res.ResetAfter), nil
}
