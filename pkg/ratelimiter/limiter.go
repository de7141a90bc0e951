package ratelimiter

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dmitrymomot/authgateway/pkg/logger"
)

// Category names a protected endpoint group.
type Category string

const (
	CategoryLogin    Category = "login"
	CategoryRegister Category = "register"
)

// DefaultTimeout bounds a single store round trip.
const DefaultTimeout = 500 * time.Millisecond

// LimiterConfig is the environment-facing configuration of the endpoint gate.
type LimiterConfig struct {
	Enabled bool          `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	Timeout time.Duration `env:"RATE_LIMIT_TIMEOUT" envDefault:"500ms"`
	// Backend selects the store: "redis" or "memory".
	Backend string `env:"RATE_LIMIT_BACKEND" envDefault:"redis"`

	LoginCapacity     int           `env:"RATE_LIMIT_LOGIN_CAPACITY" envDefault:"5"`
	LoginRefillTokens int           `env:"RATE_LIMIT_LOGIN_REFILL_TOKENS" envDefault:"5"`
	LoginRefillPeriod time.Duration `env:"RATE_LIMIT_LOGIN_REFILL_PERIOD" envDefault:"1m"`

	RegisterCapacity     int           `env:"RATE_LIMIT_REGISTER_CAPACITY" envDefault:"3"`
	RegisterRefillTokens int           `env:"RATE_LIMIT_REGISTER_REFILL_TOKENS" envDefault:"3"`
	RegisterRefillPeriod time.Duration `env:"RATE_LIMIT_REGISTER_REFILL_PERIOD" envDefault:"10m"`

	Breaker BreakerConfig
}

// Limits returns the bucket definition per category.
// A category with zero capacity is left unprotected.
func (c LimiterConfig) Limits() map[Category]Config {
	limits := make(map[Category]Config, 2)
	if c.LoginCapacity > 0 {
		limits[CategoryLogin] = Config{
			Capacity:       c.LoginCapacity,
			RefillRate:     c.LoginRefillTokens,
			RefillInterval: c.LoginRefillPeriod,
		}
	}
	if c.RegisterCapacity > 0 {
		limits[CategoryRegister] = Config{
			Capacity:       c.RegisterCapacity,
			RefillRate:     c.RegisterRefillTokens,
			RefillInterval: c.RegisterRefillPeriod,
		}
	}
	return limits
}

// Limiter gates requests per endpoint category and client address.
type Limiter struct {
	enabled bool
	timeout time.Duration
	buckets map[Category]*Bucket
	logger  *slog.Logger
}

// LimiterOption configures a Limiter.
type LimiterOption func(*Limiter)

// WithEnabled toggles the gate. A disabled limiter admits everything without
// categorising the request or touching the store.
func WithEnabled(enabled bool) LimiterOption {
	return func(l *Limiter) { l.enabled = enabled }
}

// WithTimeout bounds each store call.
func WithTimeout(d time.Duration) LimiterOption {
	return func(l *Limiter) {
		if d > 0 {
			l.timeout = d
		}
	}
}

// WithLimiterLogger sets the logger used for reject and outage events.
func WithLimiterLogger(log *slog.Logger) LimiterOption {
	return func(l *Limiter) {
		if log != nil {
			l.logger = log
		}
	}
}

// NewLimiter builds a gate with one bucket per category.
func NewLimiter(store Store, limits map[Category]Config, opts ...LimiterOption) (*Limiter, error) {
	l := &Limiter{
		enabled: true,
		timeout: DefaultTimeout,
		buckets: make(map[Category]*Bucket, len(limits)),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}

	for cat, cfg := range limits {
		b, err := NewBucket(store, cfg)
		if err != nil {
			return nil, fmt.Errorf("%s bucket: %w", cat, err)
		}
		l.buckets[cat] = b
	}
	return l, nil
}

// NewLimiterFromConfig builds a gate from environment configuration.
func NewLimiterFromConfig(store Store, cfg LimiterConfig, opts ...LimiterOption) (*Limiter, error) {
	base := []LimiterOption{WithEnabled(cfg.Enabled), WithTimeout(cfg.Timeout)}
	return NewLimiter(store, cfg.Limits(), append(base, opts...)...)
}

// Enabled reports whether the gate is active.
func (l *Limiter) Enabled() bool {
	return l.enabled
}

// Categorize matches the request path against the protected categories by suffix.
func (l *Limiter) Categorize(path string) (Category, bool) {
	for cat := range l.buckets {
		if strings.HasSuffix(path, "/"+string(cat)) {
			return cat, true
		}
	}
	return "", false
}

// BucketKey builds the shared counter key for a path and client address.
func BucketKey(path, clientAddress string) string {
	return "rate_limit:" + path + ":" + clientAddress
}

// Admit decides whether a request to path from clientAddress may proceed.
// Uncategorised paths are admitted without a store call. Store failures
// produce DecisionUnavailable, which Permits.
func (l *Limiter) Admit(ctx context.Context, path, clientAddress string) Outcome {
	if !l.enabled {
		return Outcome{Decision: DecisionAdmit}
	}

	cat, ok := l.Categorize(path)
	if !ok {
		return Outcome{Decision: DecisionAdmit}
	}

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	out := l.buckets[cat].Decide(ctx, BucketKey(path, clientAddress))
	out.Category = cat

	switch out.Decision {
	case DecisionReject:
		l.logger.WarnContext(ctx, "rate limit exceeded",
			logger.ClientIP(clientAddress),
			slog.String("path", path),
			slog.String("category", string(cat)),
			logger.Component("ratelimiter"),
		)
	case DecisionUnavailable:
		l.logger.ErrorContext(ctx, "rate limiter unavailable, allowing request",
			logger.Error(out.Err),
			logger.ClientIP(clientAddress),
			slog.String("path", path),
			logger.Component("ratelimiter"),
		)
	}
	return out
}
