package tenant_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/authgateway/pkg/tenant"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewRegistry(t *testing.T) {
	t.Parallel()

	inactive := false
	reg := tenant.NewRegistry([]tenant.Entry{
		{Key: "acme", Name: "Acme", RealmName: "acme", ClientID: "gw", ClientSecret: "s", BaseURL: "http://kc/"},
		{Key: "  ", Name: "blank"},
		{Key: "globex", Name: "Globex", Active: &inactive},
	}, discardLogger())

	assert.Equal(t, 2, reg.Len())
	assert.Equal(t, []string{"acme", "globex"}, reg.Keys())

	acme, err := reg.Lookup(context.Background(), "acme")
	require.NoError(t, err)
	assert.Equal(t, int64(1), acme.ID)
	assert.True(t, acme.Active)
	assert.Equal(t, "http://kc", acme.BaseURL)

	globex, err := reg.Lookup(context.Background(), "globex")
	require.NoError(t, err)
	assert.Equal(t, int64(2), globex.ID)
	assert.False(t, globex.Active)

	_, err = reg.Lookup(context.Background(), "initech")
	assert.ErrorIs(t, err, tenant.ErrTenantNotFound)
}

func TestNewRegistryDuplicateKeyLastWins(t *testing.T) {
	t.Parallel()

	reg := tenant.NewRegistry([]tenant.Entry{
		{Key: "acme", Name: "first"},
		{Key: "acme", Name: "second"},
		{Key: "globex", Name: "Globex"},
	}, discardLogger())

	got, err := reg.Lookup(context.Background(), "acme")
	require.NoError(t, err)
	assert.Equal(t, "second", got.Name)
	assert.EqualValues(t, 1, got.ID)
	assert.Equal(t, 2, reg.Len())

	globex, err := reg.Lookup(context.Background(), "globex")
	require.NoError(t, err)
	assert.EqualValues(t, 2, globex.ID)
}

func TestParseEntries(t *testing.T) {
	t.Setenv("ACME_SECRET", "s3cr3t")

	entries, err := tenant.ParseEntries([]byte(`
tenants:
  - key: acme
    name: Acme Corp
    realm_name: acme
    client_id: gateway
    client_secret: ${ACME_SECRET}
    base_url: http://localhost:8080
  - key: globex
    active: false
`))
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "s3cr3t", entries[0].ClientSecret)
	assert.Nil(t, entries[0].Active)
	require.NotNil(t, entries[1].Active)
	assert.False(t, *entries[1].Active)
}

func TestParseEntriesInvalid(t *testing.T) {
	t.Parallel()

	_, err := tenant.ParseEntries([]byte("tenants: [unclosed"))
	assert.ErrorIs(t, err, tenant.ErrInvalidTenantConfig)

	_, err = tenant.LoadEntries("/nonexistent/tenants.yaml")
	assert.ErrorIs(t, err, tenant.ErrInvalidTenantConfig)
}
