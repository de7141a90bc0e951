package ratelimiter

import (
	"context"
	"time"
)

// Store defines the interface for rate limit storage backends.
// Implementations must make consume-if-available atomic per key.
type Store interface {
	// ConsumeTokens attempts to consume the specified number of tokens.
	// Returns the remaining tokens and reset time. A negative remaining value
	// means the request is denied and nothing was consumed.
	ConsumeTokens(ctx context.Context, key string, tokens int, config Config) (remaining int, resetAt time.Time, err error)
}
