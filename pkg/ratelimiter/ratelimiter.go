package ratelimiter

import (
	"context"
	"fmt"
)

// Bucket implements a token bucket rate limiter over a Store.
type Bucket struct {
	store  Store
	config Config
}

// NewBucket creates a new token bucket rate limiter.
func NewBucket(store Store, config Config) (*Bucket, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: store is required", ErrInvalidConfig)
	}
	if err := config.validate(); err != nil {
		return nil, err
	}

	return &Bucket{
		store:  store,
		config: config,
	}, nil
}

// Config returns the bucket definition.
func (tb *Bucket) Config() Config {
	return tb.config
}

// Allow consumes one token for key.
func (tb *Bucket) Allow(ctx context.Context, key string) (*Result, error) {
	return tb.consume(ctx, key, 1)
}

// Decide consumes one token for key and classifies the answer.
// Store failures yield DecisionUnavailable with the cause in Outcome.Err.
func (tb *Bucket) Decide(ctx context.Context, key string) Outcome {
	out := Outcome{Key: key}

	res, err := tb.Allow(ctx, key)
	switch {
	case err != nil:
		out.Decision = DecisionUnavailable
		out.Err = err
	case !res.Allowed():
		out.Decision = DecisionReject
		out.Result = res
	default:
		out.Decision = DecisionAdmit
		out.Result = res
	}
	return out
}

func (tb *Bucket) consume(ctx context.Context, key string, n int) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrContextCancelled, err)
	}

	remaining, resetAt, err := tb.store.ConsumeTokens(ctx, key, n, tb.config)
	if err != nil {
		return nil, err
	}

	return &Result{
		Limit:     tb.config.Capacity,
		Remaining: remaining,
		ResetAt:   resetAt,
	}, nil
}

func (c Config) validate() error {
	if c.Capacity <= 0 {
		return fmt.Errorf("%w: capacity must be positive, got %d", ErrInvalidConfig, c.Capacity)
	}
	if c.RefillRate <= 0 {
		return fmt.Errorf("%w: refill rate must be positive, got %d", ErrInvalidConfig, c.RefillRate)
	}
	if c.RefillInterval <= 0 {
		return fmt.Errorf("%w: refill interval must be positive, got %v", ErrInvalidConfig, c.RefillInterval)
	}
	return nil
}
