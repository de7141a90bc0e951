package ratelimiter_test

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/authgateway/pkg/clientip"
	"github.com/dmitrymomot/authgateway/pkg/ratelimiter"
)

func newTestHandler(t *testing.T, l *ratelimiter.Limiter, opts ...ratelimiter.MiddlewareOption) (http.Handler, *int) {
	t.Helper()
	hits := new(int)
	h := clientip.Middleware(ratelimiter.Middleware(l, opts...)(
		http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			*hits++
			w.WriteHeader(http.StatusOK)
		}),
	))
	return h, hits
}

func loginRequest(ip string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
	req.Header.Set("X-Forwarded-For", ip)
	return req
}

func TestMiddlewareRejectsOverCapacity(t *testing.T) {
	t.Parallel()

	l, err := ratelimiter.NewLimiter(newMemoryStore(t, newFakeClock()), map[ratelimiter.Category]ratelimiter.Config{
		ratelimiter.CategoryLogin: {Capacity: 1, RefillRate: 1, RefillInterval: time.Minute},
	}, ratelimiter.WithLimiterLogger(discardLogger()))
	require.NoError(t, err)

	h, hits := newTestHandler(t, l)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, loginRequest("1.2.3.4"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, loginRequest("1.2.3.4"))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, 1, *hits, "rejected request must not reach the handler")

	retry, err := strconv.Atoi(rec.Header().Get("Retry-After"))
	require.NoError(t, err)
	assert.Positive(t, retry)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, loginRequest("5.6.7.8"))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMiddlewareCustomRejectHandler(t *testing.T) {
	t.Parallel()

	l, err := ratelimiter.NewLimiter(newMemoryStore(t, newFakeClock()), map[ratelimiter.Category]ratelimiter.Config{
		ratelimiter.CategoryLogin: {Capacity: 1, RefillRate: 1, RefillInterval: time.Minute},
	}, ratelimiter.WithLimiterLogger(discardLogger()))
	require.NoError(t, err)

	var rejected ratelimiter.Outcome
	h, _ := newTestHandler(t, l,
		ratelimiter.WithClientAddress(func(*http.Request) string { return "fixed" }),
		ratelimiter.WithRejectHandler(func(w http.ResponseWriter, _ *http.Request, out ratelimiter.Outcome) {
			rejected = out
			w.WriteHeader(http.StatusTeapot)
		}),
	)

	h.ServeHTTP(httptest.NewRecorder(), loginRequest("1.2.3.4"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, loginRequest("5.6.7.8"))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, "rate_limit:/api/v1/auth/login:fixed", rejected.Key)
	assert.Equal(t, ratelimiter.DecisionReject, rejected.Decision)
}

func TestMiddlewareFailsOpen(t *testing.T) {
	t.Parallel()

	l, err := ratelimiter.NewLimiter(failingStore{err: ratelimiter.ErrStoreUnavailable}, testLimits,
		ratelimiter.WithLimiterLogger(discardLogger()))
	require.NoError(t, err)

	h, hits := newTestHandler(t, l)
	for range 5 {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, loginRequest("1.2.3.4"))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
	}
	assert.Equal(t, 5, *hits)
}
