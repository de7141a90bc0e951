package tenant

import (
	"errors"
	"fmt"
)

var (
	// ErrTenantNotFound is returned when a tenant key is unknown or the tenant is inactive.
	ErrTenantNotFound = errors.New("tenant not found")

	// ErrMissingTenantKey is returned when the request carries no tenant key.
	ErrMissingTenantKey = fmt.Errorf("%w: X-Tenant-Key header is required", ErrTenantNotFound)

	// ErrNoTenantInContext is returned when no tenant is found in context.
	ErrNoTenantInContext = errors.New("no tenant in context")

	// ErrTenantAlreadyBound is returned when a request scope already holds a tenant.
	ErrTenantAlreadyBound = errors.New("tenant already bound to request scope")

	// ErrNilTenant is returned when binding a nil tenant.
	ErrNilTenant = errors.New("nil tenant")

	// ErrInvalidTenantConfig is returned when the tenants file cannot be read or parsed.
	ErrInvalidTenantConfig = errors.New("invalid tenant configuration")
)
