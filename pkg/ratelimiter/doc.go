// Package ratelimiter implements the token bucket gate placed in front of the
// gateway's sensitive endpoints.
//
// A Bucket pairs a Config (capacity C, RefillRate R per RefillInterval P) with
// a Store that performs atomic consume-if-available. Tokens accrue
// continuously and are capped at C: a fresh bucket admits exactly C requests,
// and after one full period at least R more.
//
// Stores:
//
//   - RedisStore shares state across replicas using redis_rate (GCRA in a Lua script).
//   - MemoryStore keeps state in process, for single-instance use and tests.
//   - BreakerStore wraps another store with a circuit breaker so an outage fails fast.
//
// # Endpoint gate
//
// Limiter categorises a request by path suffix (/login, /register) and keys
// the bucket by "rate_limit:{path}:{clientAddress}". Uncategorised paths and a
// disabled limiter never touch the store.
//
//	limiter, err := ratelimiter.NewLimiterFromConfig(
//		ratelimiter.NewBreakerStore(ratelimiter.NewRedisStore(rdb), cfg.Breaker, log),
//		cfg,
//		ratelimiter.WithLimiterLogger(log),
//	)
//	router.Use(ratelimiter.Middleware(limiter))
//
// # Failure policy
//
// Every check yields a Decision: DecisionAdmit, DecisionReject or
// DecisionUnavailable. A store error or timeout is DecisionUnavailable, which
// Permits the request and is logged. Rate limiting is never the reason a
// request fails while the shared counter service is down.
//
// Rejected requests receive 429 with Retry-After and X-RateLimit-* headers.
package ratelimiter
