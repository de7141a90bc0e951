package idp_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/authgateway/pkg/idp"
	"github.com/dmitrymomot/authgateway/pkg/tenant"
)

// stubClient satisfies idp.Client and records Close calls.
type stubClient struct {
	idp.Client
	tenantID int64
	closeErr error
	closed   atomic.Int32
}

func (s *stubClient) Close() error {
	s.closed.Add(1)
	return s.closeErr
}

type countingFactory struct {
	calls atomic.Int32
	delay time.Duration
	fail  atomic.Bool

	mu      sync.Mutex
	clients []*stubClient
}

func (f *countingFactory) build(_ context.Context, t *tenant.Tenant) (idp.Client, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.fail.Load() {
		return nil, errors.New("provider unreachable")
	}
	c := &stubClient{tenantID: t.ID}
	f.mu.Lock()
	f.clients = append(f.clients, c)
	f.mu.Unlock()
	return c, nil
}

func newTenant(id int64, key string) *tenant.Tenant {
	return &tenant.Tenant{ID: id, Key: key, Active: true}
}

func TestClientCache_ConcurrentFirstUse(t *testing.T) {
	t.Parallel()

	factory := &countingFactory{delay: 50 * time.Millisecond}
	cache := idp.NewClientCache(factory.build, idp.WithCacheLogger(discardLogger()))
	defer cache.Close(context.Background())

	const callers = 32
	acme := newTenant(1, "acme")

	results := make([]idp.Client, callers)
	var wg sync.WaitGroup
	for i := range callers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c, err := cache.GetOrCreate(context.Background(), acme)
			assert.NoError(t, err)
			results[i] = c
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), factory.calls.Load())
	for _, c := range results {
		assert.Same(t, results[0], c)
	}
	assert.Equal(t, 1, cache.Len())
}

func TestClientCache_PerTenantInstances(t *testing.T) {
	t.Parallel()

	factory := &countingFactory{}
	cache := idp.NewClientCache(factory.build, idp.WithCacheLogger(discardLogger()))
	defer cache.Close(context.Background())
	ctx := context.Background()

	a1, err := cache.GetOrCreate(ctx, newTenant(1, "acme"))
	require.NoError(t, err)
	b, err := cache.GetOrCreate(ctx, newTenant(2, "globex"))
	require.NoError(t, err)
	a2, err := cache.GetOrCreate(ctx, newTenant(1, "acme"))
	require.NoError(t, err)

	assert.Same(t, a1, a2)
	assert.NotSame(t, a1, b)
	assert.Equal(t, int32(2), factory.calls.Load())
	assert.Equal(t, 2, cache.Len())
}

func TestClientCache_FailureNotCached(t *testing.T) {
	t.Parallel()

	factory := &countingFactory{}
	factory.fail.Store(true)
	cache := idp.NewClientCache(factory.build, idp.WithCacheLogger(discardLogger()))
	defer cache.Close(context.Background())
	ctx := context.Background()
	acme := newTenant(1, "acme")

	_, err := cache.GetOrCreate(ctx, acme)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "provider unreachable")
	assert.Equal(t, 0, cache.Len())

	factory.fail.Store(false)
	c, err := cache.GetOrCreate(ctx, acme)
	require.NoError(t, err)
	assert.NotNil(t, c)
	assert.Equal(t, int32(2), factory.calls.Load())
}

func TestClientCache_NilTenant(t *testing.T) {
	t.Parallel()

	cache := idp.NewClientCache((&countingFactory{}).build)
	_, err := cache.GetOrCreate(context.Background(), nil)
	assert.ErrorIs(t, err, idp.ErrInvalidTenant)
}

func TestClientCache_CallerCancellation(t *testing.T) {
	t.Parallel()

	factory := &countingFactory{delay: 100 * time.Millisecond}
	cache := idp.NewClientCache(factory.build, idp.WithCacheLogger(discardLogger()))
	defer cache.Close(context.Background())
	acme := newTenant(1, "acme")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := cache.GetOrCreate(ctx, acme)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// The abandoned construction still completes and is reused.
	assert.Eventually(t, func() bool { return cache.Len() == 1 }, time.Second, 5*time.Millisecond)
	_, err = cache.GetOrCreate(context.Background(), acme)
	require.NoError(t, err)
	assert.Equal(t, int32(1), factory.calls.Load())
}

func TestClientCache_Close(t *testing.T) {
	t.Parallel()

	failing := &stubClient{tenantID: 2, closeErr: errors.New("connection reset")}
	healthy := []*stubClient{{tenantID: 1}, {tenantID: 3}}

	factory := func(_ context.Context, t *tenant.Tenant) (idp.Client, error) {
		switch t.ID {
		case 1:
			return healthy[0], nil
		case 2:
			return failing, nil
		default:
			return healthy[1], nil
		}
	}
	cache := idp.NewClientCache(factory, idp.WithCacheLogger(discardLogger()))
	ctx := context.Background()

	for i, key := range []string{"acme", "globex", "initech"} {
		_, err := cache.GetOrCreate(ctx, newTenant(int64(i+1), key))
		require.NoError(t, err)
	}
	require.Equal(t, 3, cache.Len())

	err := cache.Close(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")

	assert.Equal(t, int32(1), failing.closed.Load())
	for _, c := range healthy {
		assert.Equal(t, int32(1), c.closed.Load())
	}
	assert.Equal(t, 0, cache.Len())

	_, err = cache.GetOrCreate(ctx, newTenant(1, "acme"))
	assert.ErrorIs(t, err, idp.ErrCacheClosed)

	assert.NoError(t, cache.Close(ctx))
}

type panickyClient struct{ idp.Client }

func (panickyClient) Close() error { panic("boom") }

func TestClientCache_ClosePanicIsolated(t *testing.T) {
	t.Parallel()

	other := &stubClient{tenantID: 2}
	factory := func(_ context.Context, t *tenant.Tenant) (idp.Client, error) {
		if t.ID == 1 {
			return panickyClient{}, nil
		}
		return other, nil
	}
	cache := idp.NewClientCache(factory, idp.WithCacheLogger(discardLogger()))
	ctx := context.Background()

	_, err := cache.GetOrCreate(ctx, newTenant(1, "acme"))
	require.NoError(t, err)
	_, err = cache.GetOrCreate(ctx, newTenant(2, "globex"))
	require.NoError(t, err)

	err = cache.Close(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panic during close")
	assert.Equal(t, int32(1), other.closed.Load())
}

func TestClientCache_WithHTTPFactory(t *testing.T) {
	t.Parallel()

	realm := newFakeRealm(t)
	cache := idp.NewClientCache(idp.NewFactory(idp.DefaultConfig(), discardLogger()), idp.WithCacheLogger(discardLogger()))
	defer cache.Close(context.Background())

	c, err := cache.GetOrCreate(context.Background(), realm.tenant())
	require.NoError(t, err)

	tokens, err := c.PasswordGrant(context.Background(), "alice@example.com", "correct")
	require.NoError(t, err)
	assert.Equal(t, "user-access", tokens.AccessToken)

	_, err = cache.GetOrCreate(context.Background(), &tenant.Tenant{ID: 99, Key: "broken"})
	assert.ErrorIs(t, err, idp.ErrInvalidTenant)
}
