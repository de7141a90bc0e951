// Package tenant identifies the tenant behind each gateway request and keeps
// it available for exactly the lifetime of that request.
//
// Tenants are declared in configuration and loaded once into a Registry.
// A CachedResolver sits in front of any Provider and remembers both hits and
// misses for a bounded TTL, so a deactivated tenant stops resolving within
// one TTL window. Call Invalidate to drop an entry immediately.
//
// # Usage
//
//	entries, err := tenant.LoadEntries("tenants.yaml")
//	if err != nil {
//		return err
//	}
//	registry := tenant.NewRegistry(entries, log)
//	resolver := tenant.NewResolver(registry,
//		tenant.WithCache(tenant.NewMemoryCache(0, time.Minute)),
//	)
//
//	router.With(tenant.Middleware(resolver)).Post("/login", login)
//
//	func handler(w http.ResponseWriter, r *http.Request) {
//		t := tenant.MustFromContext(r.Context())
//		// ...
//	}
//
// # Request scope
//
// The middleware binds the tenant to a Scope stored in the request context
// and clears it when the handler returns. Goroutines that captured the
// request context observe no tenant afterwards. Background work that must
// keep the tenant should be started with Detach:
//
//	go audit(tenant.Detach(r.Context()))
//
// # Errors
//
//   - ErrTenantNotFound: key is unknown or the tenant is inactive
//   - ErrMissingTenantKey: request carries no X-Tenant-Key (wraps ErrTenantNotFound)
//   - ErrTenantAlreadyBound: a scope was bound twice
//   - ErrNoTenantInContext: a tenant was required but not present
package tenant
