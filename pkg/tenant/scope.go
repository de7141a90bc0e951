package tenant

import (
	"context"
	"sync"
)

// Scope holds the tenant bound to a single in-flight request.
//
// A scope moves EMPTY -> BOUND -> EMPTY. Once cleared, every holder of the
// request context (including goroutines that outlive the request) observes
// no tenant. Use Detach to hand a tenant to work that must outlive the request.
type Scope struct {
	mu     sync.RWMutex
	tenant *Tenant
}

type scopeKey struct{}

// NewScope attaches an empty scope to ctx.
func NewScope(ctx context.Context) (context.Context, *Scope) {
	s := &Scope{}
	return context.WithValue(ctx, scopeKey{}, s), s
}

// ScopeFromContext returns the request scope, if any.
func ScopeFromContext(ctx context.Context) (*Scope, bool) {
	s, ok := ctx.Value(scopeKey{}).(*Scope)
	return s, ok && s != nil
}

// Set binds t to the scope. Binding an already bound scope fails with
// ErrTenantAlreadyBound and leaves the current binding intact.
func (s *Scope) Set(t *Tenant) error {
	if t == nil {
		return ErrNilTenant
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tenant != nil {
		return ErrTenantAlreadyBound
	}
	s.tenant = t
	return nil
}

// Get returns the bound tenant.
func (s *Scope) Get() (*Tenant, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tenant, s.tenant != nil
}

// Clear unbinds the tenant. Safe to call multiple times.
func (s *Scope) Clear() {
	s.mu.Lock()
	s.tenant = nil
	s.mu.Unlock()
}
