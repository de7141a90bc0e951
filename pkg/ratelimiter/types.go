package ratelimiter

import "time"

// Result contains the result of a rate limit check.
type Result struct {
	Limit     int       // Maximum tokens (bucket capacity)
	Remaining int       // Tokens remaining; negative when the request was denied
	ResetAt   time.Time // When the denied request could succeed, or when the bucket is full again
}

// Allowed returns whether the request is allowed based on remaining tokens.
func (r *Result) Allowed() bool {
	return r.Remaining >= 0
}

// RetryAfter returns how long to wait before the next request.
// Returns 0 if the request was allowed.
func (r *Result) RetryAfter() time.Duration {
	if r.Allowed() {
		return 0
	}
	return max(0, time.Until(r.ResetAt))
}

// Config defines the token bucket configuration.
type Config struct {
	Capacity       int           // Maximum tokens the bucket can hold (burst limit)
	RefillRate     int           // Number of tokens added per refill interval
	RefillInterval time.Duration // Period over which RefillRate tokens accrue
}

// Decision is the outcome of a limiter check.
// Unavailable is distinct from Reject so the fail-open policy stays visible at the call site.
type Decision int

const (
	DecisionAdmit Decision = iota
	DecisionReject
	DecisionUnavailable
)

// Permits reports whether the request may proceed.
// A backend outage permits the request.
func (d Decision) Permits() bool {
	switch d {
	case DecisionAdmit, DecisionUnavailable:
		return true
	default:
		return false
	}
}

func (d Decision) String() string {
	switch d {
	case DecisionAdmit:
		return "admit"
	case DecisionReject:
		return "reject"
	case DecisionUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// Outcome describes a single gate decision.
type Outcome struct {
	Decision Decision
	Category Category // empty for uncategorised requests
	Key      string   // bucket key, empty when no bucket was consulted
	Result   *Result  // nil unless the store answered
	Err      error    // set when Decision is DecisionUnavailable
}
