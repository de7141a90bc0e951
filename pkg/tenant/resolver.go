package tenant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dmitrymomot/authgateway/pkg/logger"
)

// Resolver maps a tenant key to an active tenant.
type Resolver interface {
	// Resolve returns the active tenant for key.
	// Returns ErrTenantNotFound if the key is unknown or the tenant is inactive.
	Resolve(ctx context.Context, key string) (*Tenant, error)
}

// CachedResolver is a read-through cache in front of a Provider.
type CachedResolver struct {
	provider Provider
	cache    Cache
	logger   *slog.Logger
}

// ResolverOption configures a CachedResolver.
type ResolverOption func(*CachedResolver)

// WithCache sets a custom cache implementation.
func WithCache(cache Cache) ResolverOption {
	return func(r *CachedResolver) {
		if cache != nil {
			r.cache = cache
		}
	}
}

// WithResolverLogger sets the logger used for resolution diagnostics.
func WithResolverLogger(log *slog.Logger) ResolverOption {
	return func(r *CachedResolver) {
		if log != nil {
			r.logger = log
		}
	}
}

// NewResolver creates a resolver backed by provider.
// Defaults to an in-memory cache with DefaultCacheTTL.
func NewResolver(provider Provider, opts ...ResolverOption) *CachedResolver {
	if provider == nil {
		panic("tenant: provider cannot be nil")
	}

	r := &CachedResolver{
		provider: provider,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.cache == nil {
		r.cache = NewMemoryCache(DefaultCacheSize, DefaultCacheTTL)
	}
	return r
}

// Resolve implements Resolver.
func (r *CachedResolver) Resolve(ctx context.Context, key string) (*Tenant, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, ErrMissingTenantKey
	}

	if cached, ok := r.cache.Get(ctx, key); ok {
		if cached == nil {
			return nil, notFound(key)
		}
		return cached, nil
	}

	r.logger.DebugContext(ctx, "resolving tenant from provider", logger.TenantKey(key))

	t, err := r.provider.Lookup(ctx, key)
	switch {
	case errors.Is(err, ErrTenantNotFound):
		r.cache.Set(ctx, key, nil)
		return nil, notFound(key)
	case err != nil:
		// Transient provider failures are not cached.
		return nil, fmt.Errorf("resolve tenant %q: %w", key, err)
	case t == nil || !t.Active:
		r.cache.Set(ctx, key, nil)
		return nil, notFound(key)
	}

	r.cache.Set(ctx, key, t)
	return t, nil
}

// Invalidate drops any cached entry for key so the next Resolve hits the provider.
func (r *CachedResolver) Invalidate(ctx context.Context, key string) {
	r.cache.Delete(ctx, key)
}

// Close releases the underlying cache.
func (r *CachedResolver) Close() error {
	return r.cache.Close()
}

func notFound(key string) error {
	return fmt.Errorf("%w or inactive: %s", ErrTenantNotFound, key)
}
