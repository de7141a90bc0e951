package tenant

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/authgateway/pkg/logger"
)

// Cache stores resolved tenants for a bounded time.
//
// A nil tenant is a valid cached value: it records that the key is unknown
// or inactive, so repeated misses do not reach the provider.
type Cache interface {
	// Get returns the cached value and whether the key was present.
	Get(ctx context.Context, key string) (*Tenant, bool)

	// Set stores the tenant (or nil for a negative entry) under key.
	Set(ctx context.Context, key string, tenant *Tenant)

	// Delete removes a key from cache.
	Delete(ctx context.Context, key string)

	// Close releases any resources held by the cache.
	Close() error
}

const (
	// DefaultCacheSize is the default maximum number of items in the in-memory cache.
	DefaultCacheSize = 1000

	// DefaultCacheTTL bounds how long a deactivated tenant can keep resolving.
	DefaultCacheTTL = time.Minute
)

// memoryCache keeps entries in a size-bounded LRU with per-entry expiry.
type memoryCache struct {
	lru *expirable.LRU[string, *Tenant]
}

// NewMemoryCache creates an in-memory cache. Non-positive arguments fall back to defaults.
func NewMemoryCache(size int, ttl time.Duration) Cache {
	if size <= 0 {
		size = DefaultCacheSize
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &memoryCache{lru: expirable.NewLRU[string, *Tenant](size, nil, ttl)}
}

func (c *memoryCache) Get(_ context.Context, key string) (*Tenant, bool) {
	return c.lru.Get(key)
}

func (c *memoryCache) Set(_ context.Context, key string, tenant *Tenant) {
	c.lru.Add(key, tenant)
}

func (c *memoryCache) Delete(_ context.Context, key string) {
	c.lru.Remove(key)
}

func (c *memoryCache) Close() error {
	c.lru.Purge()
	return nil
}

// negativeMarker is stored in Redis for keys known to be absent or inactive.
const negativeMarker = "null"

// redisRecord is what a positive entry holds in Redis. Credentials are not
// part of it; the tenant is re-joined from the local source on read.
type redisRecord struct {
	ID  int64  `json:"id"`
	Key string `json:"key"`
}

// redisCache shares resolution results between gateway instances.
// Redis failures degrade to cache misses; the provider stays the source of truth.
type redisCache struct {
	client redis.UniversalClient
	source Provider
	prefix string
	ttl    time.Duration
	log    *slog.Logger
}

// NewRedisCache creates a Redis-backed cache. Keys are stored as prefix+tenantKey.
// Only the tenant ID and key are written to Redis; hits are completed from
// source, which must be local (typically the *Registry).
func NewRedisCache(client redis.UniversalClient, source Provider, prefix string, ttl time.Duration, log *slog.Logger) Cache {
	if source == nil {
		panic("tenant: redis cache source cannot be nil")
	}
	if prefix == "" {
		prefix = "tenant:"
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if log == nil {
		log = slog.Default()
	}
	return &redisCache{client: client, source: source, prefix: prefix, ttl: ttl, log: log}
}

func (c *redisCache) Get(ctx context.Context, key string) (*Tenant, bool) {
	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.WarnContext(ctx, "tenant cache read failed", logger.Error(err), logger.TenantKey(key))
		}
		return nil, false
	}

	if string(data) == negativeMarker {
		return nil, true
	}

	var rec redisRecord
	if err := json.Unmarshal(data, &rec); err != nil || rec.Key != key {
		c.log.WarnContext(ctx, "tenant cache entry is corrupted", logger.Error(err), logger.TenantKey(key))
		return nil, false
	}

	t, err := c.source.Lookup(ctx, key)
	switch {
	case err != nil:
		return nil, false
	case t == nil || t.ID != rec.ID:
		// Written by an instance with a different registry; let the resolver decide.
		return nil, false
	case !t.Active:
		return nil, true
	}
	return t, true
}

func (c *redisCache) Set(ctx context.Context, key string, tenant *Tenant) {
	value := []byte(negativeMarker)
	if tenant != nil {
		data, err := json.Marshal(redisRecord{ID: tenant.ID, Key: tenant.Key})
		if err != nil {
			return
		}
		value = data
	}

	if err := c.client.Set(ctx, c.prefix+key, value, c.ttl).Err(); err != nil {
		c.log.WarnContext(ctx, "tenant cache write failed", logger.Error(err), logger.TenantKey(key))
	}
}

func (c *redisCache) Delete(ctx context.Context, key string) {
	if err := c.client.Del(ctx, c.prefix+key).Err(); err != nil {
		c.log.WarnContext(ctx, "tenant cache delete failed", logger.Error(err), logger.TenantKey(key))
	}
}

// Close is a no-op: the Redis client is owned by the caller.
func (c *redisCache) Close() error {
	return nil
}

// noOpCache is a cache that doesn't cache anything.
// Useful for testing or when caching should be disabled.
type noOpCache struct{}

// NewNoOpCache creates a cache that doesn't cache.
func NewNoOpCache() Cache {
	return noOpCache{}
}

func (noOpCache) Get(context.Context, string) (*Tenant, bool) { return nil, false }
func (noOpCache) Set(context.Context, string, *Tenant)        {}
func (noOpCache) Delete(context.Context, string)              {}
func (noOpCache) Close() error                                { return nil }
