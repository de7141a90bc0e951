package audit_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/authgateway/pkg/audit"
)

type ctxKey string

func fromCtx(key ctxKey) func(context.Context) (string, bool) {
	return func(ctx context.Context) (string, bool) {
		v, ok := ctx.Value(key).(string)
		return v, ok
	}
}

func newTestLogger(storage audit.Storage) audit.Logger {
	return audit.NewLogger(storage,
		audit.WithTenantExtractor(fromCtx("tenant")),
		audit.WithRequestIDExtractor(fromCtx("request")),
		audit.WithIPExtractor(fromCtx("ip")),
	)
}

func requestContext() context.Context {
	ctx := context.WithValue(context.Background(), ctxKey("tenant"), "acme")
	ctx = context.WithValue(ctx, ctxKey("request"), "req-1")
	return context.WithValue(ctx, ctxKey("ip"), "203.0.113.7")
}

func TestLogger_Log(t *testing.T) {
	t.Parallel()

	storage := audit.NewMemoryStorage()
	log := newTestLogger(storage)

	err := log.Log(requestContext(), audit.ActionUserLogin,
		audit.WithUser("alice@example.com"),
		audit.WithClient("", "curl/8.0"),
	)
	require.NoError(t, err)

	events := storage.Events()
	require.Len(t, events, 1)
	e := events[0]
	assert.NotEmpty(t, e.ID)
	assert.False(t, e.CreatedAt.IsZero())
	assert.Equal(t, audit.ActionUserLogin, e.Action)
	assert.Equal(t, audit.ResultSuccess, e.Result)
	assert.True(t, e.Success())
	assert.Equal(t, "acme", e.TenantKey)
	assert.Equal(t, "alice@example.com", e.UserEmail)
	assert.Equal(t, "req-1", e.RequestID)
	assert.Equal(t, "203.0.113.7", e.IP)
	assert.Equal(t, "curl/8.0", e.UserAgent)
	assert.Empty(t, e.Error)
}

func TestLogger_LogError(t *testing.T) {
	t.Parallel()

	storage := audit.NewMemoryStorage()
	log := newTestLogger(storage)

	err := log.LogError(requestContext(), audit.ActionTokenRefresh, errors.New("invalid or expired refresh token"))
	require.NoError(t, err)

	events := storage.Find(audit.ActionTokenRefresh)
	require.Len(t, events, 1)
	assert.Equal(t, audit.ResultFailure, events[0].Result)
	assert.False(t, events[0].Success())
	assert.Equal(t, "invalid or expired refresh token", events[0].Error)

	require.NoError(t, log.LogError(requestContext(), audit.ActionUserLogout, nil))
	assert.Equal(t, "unknown error", storage.Find(audit.ActionUserLogout)[0].Error)
}

func TestLogger_ExplicitOptionsOverrideContext(t *testing.T) {
	t.Parallel()

	storage := audit.NewMemoryStorage()
	log := newTestLogger(storage)

	err := log.Log(requestContext(), audit.ActionUserRegister,
		audit.WithTenant("globex"),
		audit.WithClient("198.51.100.1", "Mozilla/5.0"),
	)
	require.NoError(t, err)

	e := storage.Events()[0]
	assert.Equal(t, "globex", e.TenantKey)
	assert.Equal(t, "198.51.100.1", e.IP)
	assert.Equal(t, "Mozilla/5.0", e.UserAgent)
}

func TestLogger_FiltersMetadata(t *testing.T) {
	t.Parallel()

	storage := audit.NewMemoryStorage()
	log := audit.NewLogger(storage,
		audit.WithTenantExtractor(fromCtx("tenant")),
		audit.WithMetadataFilter(audit.NewMetadataFilter(
			audit.WithCustomField("first_name", audit.FilterActionMask),
		)),
	)

	err := log.Log(requestContext(), audit.ActionUserRegister,
		audit.WithMetadata("realm", "acme"),
		audit.WithMetadata("first_name", "Alexandra"),
		audit.WithMetadata("refresh_token", "eyJhbGciOi"),
	)
	require.NoError(t, err)

	md := storage.Events()[0].Metadata
	assert.Equal(t, "acme", md["realm"])
	assert.Equal(t, "Al*****ra", md["first_name"])
	assert.NotContains(t, md, "refresh_token")
}

func TestLogger_RequiresTenant(t *testing.T) {
	t.Parallel()

	storage := audit.NewMemoryStorage()
	log := audit.NewLogger(storage)

	err := log.Log(context.Background(), audit.ActionUserLogin)
	assert.ErrorIs(t, err, audit.ErrEventValidation)
	assert.Empty(t, storage.Events())
}

func TestLogger_ScrubsMetadata(t *testing.T) {
	t.Parallel()

	storage := audit.NewMemoryStorage()
	log := newTestLogger(storage)

	err := log.Log(requestContext(), audit.ActionUserLogin,
		audit.WithMetadata("password", "hunter22"),
		audit.WithMetadata("refresh_token", "rt"),
		audit.WithMetadata("attempt", 2),
	)
	require.NoError(t, err)

	md := storage.Events()[0].Metadata
	assert.NotContains(t, md, "password")
	assert.NotContains(t, md, "refresh_token")
	assert.Equal(t, 2, md["attempt"])
}

func TestNewLogger_NilStoragePanics(t *testing.T) {
	t.Parallel()
	assert.Panics(t, func() { audit.NewLogger(nil) })
}
