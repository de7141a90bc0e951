package ratelimiter

import (
	"math"
	"net/http"
	"strconv"

	"github.com/dmitrymomot/authgateway/pkg/clientip"
)

// KeyFunc extracts a rate limit key component from the request.
type KeyFunc func(r *http.Request) string

// RejectHandler writes the response for a rejected request.
type RejectHandler func(w http.ResponseWriter, r *http.Request, out Outcome)

type middlewareConfig struct {
	clientAddress KeyFunc
	onReject      RejectHandler
}

// MiddlewareOption configures Middleware.
type MiddlewareOption func(*middlewareConfig)

// WithClientAddress overrides how the client address is derived.
func WithClientAddress(fn KeyFunc) MiddlewareOption {
	return func(c *middlewareConfig) {
		if fn != nil {
			c.clientAddress = fn
		}
	}
}

// WithRejectHandler sets the response writer for rejected requests.
func WithRejectHandler(h RejectHandler) MiddlewareOption {
	return func(c *middlewareConfig) {
		if h != nil {
			c.onReject = h
		}
	}
}

// Middleware gates requests through the limiter.
// Rejected requests never reach next; an unavailable store lets them through.
func Middleware(l *Limiter, opts ...MiddlewareOption) func(http.Handler) http.Handler {
	cfg := &middlewareConfig{
		clientAddress: defaultClientAddress,
		onReject:      defaultRejectHandler,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.Enabled() {
				next.ServeHTTP(w, r)
				return
			}

			out := l.Admit(r.Context(), r.URL.Path, cfg.clientAddress(r))
			if out.Result != nil {
				setHeaders(w, out.Result)
			}

			if !out.Decision.Permits() {
				cfg.onReject(w, r, out)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func setHeaders(w http.ResponseWriter, res *Result) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(max(0, res.Remaining)))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(res.ResetAt.Unix(), 10))

	if !res.Allowed() {
		// Round up so clients never retry early.
		secs := int(math.Ceil(res.RetryAfter().Seconds()))
		w.Header().Set("Retry-After", strconv.Itoa(max(1, secs)))
	}
}

func defaultClientAddress(r *http.Request) string {
	if ip := clientip.GetIPFromContext(r.Context()); ip != "" {
		return ip
	}
	return clientip.GetIP(r)
}

func defaultRejectHandler(w http.ResponseWriter, _ *http.Request, _ Outcome) {
	http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
}
