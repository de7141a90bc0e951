package ratelimiter

import (
	"context"
	"math"
	"sync"
	"time"
)

// epsilon absorbs float rounding in accrued token counts.
const epsilon = 1e-9

// bucket represents a token bucket state.
type bucket struct {
	tokens     float64
	updatedAt  time.Time
	lastAccess time.Time // Used by cleanup to identify stale buckets
}

// MemoryStore implements Store in process memory.
// It suits single-instance deployments and tests; state is not shared between replicas.
type MemoryStore struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	now     func() time.Time

	cleanupInterval time.Duration
	staleAfter      time.Duration
	stopCleanup     chan struct{}
	closeOnce       sync.Once
}

// MemoryStoreOption configures a MemoryStore.
type MemoryStoreOption func(*MemoryStore)

// WithCleanupInterval sets the cleanup interval for removing stale buckets.
// Set to 0 to disable automatic cleanup.
func WithCleanupInterval(interval time.Duration) MemoryStoreOption {
	return func(ms *MemoryStore) {
		ms.cleanupInterval = interval
	}
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) MemoryStoreOption {
	return func(ms *MemoryStore) {
		if now != nil {
			ms.now = now
		}
	}
}

// NewMemoryStore creates a new in-memory store with optional cleanup.
func NewMemoryStore(opts ...MemoryStoreOption) *MemoryStore {
	ms := &MemoryStore{
		buckets:         make(map[string]*bucket),
		now:             time.Now,
		cleanupInterval: 5 * time.Minute,
		staleAfter:      time.Hour,
		stopCleanup:     make(chan struct{}),
	}

	for _, opt := range opts {
		opt(ms)
	}

	if ms.cleanupInterval > 0 {
		go ms.cleanup()
	}

	return ms
}

// ConsumeTokens accrues tokens continuously at RefillRate per RefillInterval,
// capped at Capacity, then consumes only if enough tokens are available.
func (ms *MemoryStore) ConsumeTokens(_ context.Context, key string, tokens int, config Config) (int, time.Time, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	now := ms.now()
	capacity := float64(config.Capacity)
	rate := float64(config.RefillRate)
	period := float64(config.RefillInterval)

	b, exists := ms.buckets[key]
	if !exists {
		b = &bucket{tokens: capacity, updatedAt: now}
		ms.buckets[key] = b
	} else if elapsed := now.Sub(b.updatedAt); elapsed > 0 {
		b.tokens = math.Min(capacity, b.tokens+float64(elapsed)*rate/period)
		b.updatedAt = now
	}
	b.lastAccess = now

	need := float64(tokens)
	if b.tokens+epsilon < need {
		wait := time.Duration(math.Ceil((need - b.tokens) * period / rate))
		return -1, now.Add(wait), nil
	}

	b.tokens = math.Max(0, b.tokens-need)
	untilFull := time.Duration(math.Ceil((capacity - b.tokens) * period / rate))
	return int(math.Floor(b.tokens + epsilon)), now.Add(untilFull), nil
}

func (ms *MemoryStore) cleanup() {
	ticker := time.NewTicker(ms.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ms.removeStale()
		case <-ms.stopCleanup:
			return
		}
	}
}

func (ms *MemoryStore) removeStale() {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	now := ms.now()
	for key, b := range ms.buckets {
		if now.Sub(b.lastAccess) > ms.staleAfter {
			delete(ms.buckets, key)
		}
	}
}

// Close stops the cleanup goroutine. Safe to call multiple times.
func (ms *MemoryStore) Close() error {
	ms.closeOnce.Do(func() { close(ms.stopCleanup) })
	return nil
}
