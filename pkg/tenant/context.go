package tenant

import (
	"context"
	"log/slog"
)

// contextKey is a private type to prevent collisions with other context keys.
type contextKey struct{}

// WithTenant adds a tenant to the context as a plain value.
// Prefer the request Scope inside HTTP handling; WithTenant is meant for
// background work and tests where no scope exists.
func WithTenant(ctx context.Context, tenant *Tenant) context.Context {
	return context.WithValue(ctx, contextKey{}, tenant)
}

// FromContext retrieves the current tenant.
// A request scope takes precedence over a plain value: once the scope is
// cleared, FromContext reports no tenant even if a value is also present.
func FromContext(ctx context.Context) (*Tenant, bool) {
	if s, ok := ScopeFromContext(ctx); ok {
		return s.Get()
	}
	t, ok := ctx.Value(contextKey{}).(*Tenant)
	return t, ok && t != nil
}

// KeyFromContext returns the current tenant key, if any.
func KeyFromContext(ctx context.Context) (string, bool) {
	t, ok := FromContext(ctx)
	if !ok {
		return "", false
	}
	return t.Key, true
}

// MustFromContext retrieves the tenant from the context.
// Panics if no tenant is found. Use this only in handlers
// that absolutely require a tenant to function.
func MustFromContext(ctx context.Context) *Tenant {
	t, ok := FromContext(ctx)
	if !ok {
		panic("tenant: no tenant in context")
	}
	return t
}

// Detach returns a context that carries the current tenant as a plain value,
// without the request scope or its cancellation. Work started from the
// returned context keeps the tenant after the request completes.
func Detach(ctx context.Context) context.Context {
	detached := context.WithoutCancel(ctx)
	t, ok := FromContext(ctx)
	// Shadow the scope so a later Clear does not leak into detached work.
	detached = context.WithValue(detached, scopeKey{}, (*Scope)(nil))
	if !ok {
		return detached
	}
	return WithTenant(detached, t.Clone())
}

// LoggerExtractor returns a ContextExtractor for the logger that extracts the tenant key from context.
func LoggerExtractor() func(ctx context.Context) (slog.Attr, bool) {
	return func(ctx context.Context) (slog.Attr, bool) {
		if key, ok := KeyFromContext(ctx); ok {
			return slog.String("tenant_key", key), true
		}
		return slog.Attr{}, false
	}
}
