package ratelimiter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/dmitrymomot/authgateway/pkg/logger"
)

// BreakerConfig tunes the circuit breaker placed in front of a Store.
type BreakerConfig struct {
	// ConsecutiveFailures opens the breaker once reached.
	ConsecutiveFailures uint32 `env:"RATE_LIMIT_BREAKER_FAILURES" envDefault:"5"`
	// OpenTimeout is how long the breaker stays open before probing again.
	OpenTimeout time.Duration `env:"RATE_LIMIT_BREAKER_OPEN_TIMEOUT" envDefault:"30s"`
	// Interval resets failure counts while closed. Zero keeps counts until a state change.
	Interval time.Duration `env:"RATE_LIMIT_BREAKER_INTERVAL" envDefault:"1m"`
}

type consumed struct {
	remaining int
	resetAt   time.Time
}

// BreakerStore short-circuits calls to a failing Store.
// While open, calls fail fast with ErrStoreUnavailable instead of waiting on
// the backend timeout for every request.
type BreakerStore struct {
	next Store
	cb   *gobreaker.CircuitBreaker[consumed]
}

// NewBreakerStore wraps next with a circuit breaker.
func NewBreakerStore(next Store, cfg BreakerConfig, log *slog.Logger) *BreakerStore {
	if log == nil {
		log = slog.Default()
	}
	if cfg.ConsecutiveFailures == 0 {
		cfg.ConsecutiveFailures = 5
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 30 * time.Second
	}

	st := gobreaker.Settings{
		Name:        "ratelimiter-store",
		MaxRequests: 1,
		Interval:    cfg.Interval,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.ConsecutiveFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("rate limiter store breaker state changed",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
				logger.Component("ratelimiter"),
			)
		},
		// Caller cancellations say nothing about backend health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrContextCancelled)
		},
	}

	return &BreakerStore{
		next: next,
		cb:   gobreaker.NewCircuitBreaker[consumed](st),
	}
}

func (b *BreakerStore) ConsumeTokens(ctx context.Context, key string, tokens int, config Config) (int, time.Time, error) {
	res, err := b.cb.Execute(func() (consumed, error) {
		remaining, resetAt, err := b.next.ConsumeTokens(ctx, key, tokens, config)
		return consumed{remaining: remaining, resetAt: resetAt}, err
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return 0, time.Time{}, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
		}
		return 0, time.Time{}, err
	}
	return res.remaining, res.resetAt, nil
}

// State reports the breaker state.
func (b *BreakerStore) State() gobreaker.State {
	return b.cb.State()
}
