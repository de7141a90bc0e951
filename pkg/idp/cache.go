package idp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/dmitrymomot/authgateway/pkg/logger"
	"github.com/dmitrymomot/authgateway/pkg/tenant"
)

// Factory builds the client for a tenant.
type Factory func(ctx context.Context, t *tenant.Tenant) (Client, error)

// NewFactory returns a Factory producing HTTPClient instances.
func NewFactory(cfg Config, log *slog.Logger) Factory {
	return func(_ context.Context, t *tenant.Tenant) (Client, error) {
		return NewHTTPClient(t, cfg, log)
	}
}

// DefaultBuildTimeout bounds a single client construction.
const DefaultBuildTimeout = 30 * time.Second

// ClientCache memoizes one Client per tenant id for the life of the process.
//
// Concurrent first use of a tenant runs the factory once; every caller gets
// the same instance. Failed constructions are not cached.
type ClientCache struct {
	factory      Factory
	buildTimeout time.Duration
	logger       *slog.Logger

	clients sync.Map // int64 -> Client
	group   singleflight.Group

	mu     sync.RWMutex // guards closed against concurrent stores
	closed bool
}

// CacheOption configures a ClientCache.
type CacheOption func(*ClientCache)

// WithBuildTimeout bounds a single factory call.
func WithBuildTimeout(d time.Duration) CacheOption {
	return func(c *ClientCache) {
		if d > 0 {
			c.buildTimeout = d
		}
	}
}

// WithCacheLogger sets the logger.
func WithCacheLogger(log *slog.Logger) CacheOption {
	return func(c *ClientCache) {
		if log != nil {
			c.logger = log
		}
	}
}

// NewClientCache creates an empty cache backed by factory.
func NewClientCache(factory Factory, opts ...CacheOption) *ClientCache {
	if factory == nil {
		panic("idp: factory cannot be nil")
	}
	c := &ClientCache{
		factory:      factory,
		buildTimeout: DefaultBuildTimeout,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetOrCreate returns the tenant's client, constructing it on first use.
// A caller whose ctx ends stops waiting; the construction itself continues
// for the other waiters.
func (c *ClientCache) GetOrCreate(ctx context.Context, t *tenant.Tenant) (Client, error) {
	if t == nil {
		return nil, ErrInvalidTenant
	}
	if c.isClosed() {
		return nil, ErrCacheClosed
	}
	if v, ok := c.clients.Load(t.ID); ok {
		return v.(Client), nil
	}

	ch := c.group.DoChan(strconv.FormatInt(t.ID, 10), func() (any, error) {
		return c.build(ctx, t)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(Client), nil
	}
}

func (c *ClientCache) build(ctx context.Context, t *tenant.Tenant) (Client, error) {
	// A racing flight may have stored the client after our fast-path miss.
	if v, ok := c.clients.Load(t.ID); ok {
		return v.(Client), nil
	}

	buildCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.buildTimeout)
	defer cancel()

	start := time.Now()
	client, err := c.factory(buildCtx, t)
	if err != nil {
		c.logger.ErrorContext(ctx, "failed to create identity provider client",
			logger.TenantKey(t.Key),
			logger.Error(err),
			logger.Component("idp_cache"),
		)
		return nil, fmt.Errorf("create client for tenant %q: %w", t.Key, err)
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		_ = client.Close()
		return nil, ErrCacheClosed
	}
	c.clients.Store(t.ID, client)

	c.logger.InfoContext(ctx, "created identity provider client",
		logger.TenantKey(t.Key),
		logger.TenantID(t.ID),
		logger.Duration(time.Since(start)),
		logger.Component("idp_cache"),
	)
	return client, nil
}

// Len returns the number of cached clients.
func (c *ClientCache) Len() int {
	n := 0
	c.clients.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// Close releases every cached client and empties the cache.
// A failing client is logged and does not stop the others from being released.
// The returned error joins every release failure.
func (c *ClientCache) Close(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	var (
		errs  []error
		count int
	)
	c.clients.Range(func(k, v any) bool {
		count++
		if err := closeClient(v.(Client)); err != nil {
			c.logger.WarnContext(ctx, "error closing identity provider client",
				logger.TenantID(k.(int64)),
				logger.Error(err),
				logger.Component("idp_cache"),
			)
			errs = append(errs, fmt.Errorf("tenant %d: %w", k.(int64), err))
		}
		c.clients.Delete(k)
		return true
	})

	c.logger.InfoContext(ctx, "closed identity provider clients",
		slog.Int("count", count),
		slog.Int("failed", len(errs)),
		logger.Component("idp_cache"),
	)
	return errors.Join(errs...)
}

func (c *ClientCache) isClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

func closeClient(client Client) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic during close: %v", r)
		}
	}()
	return client.Close()
}
