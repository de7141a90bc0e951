package tenant

import (
	"context"
)

// Tenant is an identity-provider connection profile. Values handed out by
// the registry and resolver are shared and must be treated as read-only.
// ClientSecret never leaves the process in JSON form.
type Tenant struct {
	ID           int64  `json:"id"`
	Key          string `json:"key"`
	Name         string `json:"name"`
	RealmName    string `json:"realm_name"`
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"-"`
	BaseURL      string `json:"base_url"`
	Active       bool   `json:"active"`
}

// Clone returns an independent copy of the tenant.
func (t *Tenant) Clone() *Tenant {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

// Provider loads tenant records by their external key.
type Provider interface {
	// Lookup returns the tenant registered under key.
	// Returns ErrTenantNotFound if no tenant matches the key.
	// Inactive tenants are returned as-is; the resolver decides what to do with them.
	Lookup(ctx context.Context, key string) (*Tenant, error)
}

// ProviderFunc is an adapter to allow the use of ordinary functions as Providers.
type ProviderFunc func(ctx context.Context, key string) (*Tenant, error)

// Lookup calls the function.
func (f ProviderFunc) Lookup(ctx context.Context, key string) (*Tenant, error) {
	return f(ctx, key)
}
