package auth

import (
	"errors"
	"fmt"

	"github.com/dmitrymomot/authgateway/pkg/idp"
)

// Domain errors surfaced to the HTTP layer. Provider errors are returned
// wrapped, so match them with errors.Is.
var (
	ErrAuthenticationFailed = idp.ErrAuthenticationFailed
	ErrInvalidCredentials   = idp.ErrInvalidCredentials
	ErrInvalidRefreshToken  = idp.ErrInvalidRefreshToken
	ErrUserAlreadyExists    = idp.ErrUserAlreadyExists
	ErrUserNotFound         = idp.ErrUserNotFound
)

var (
	ErrNoTenant = errors.New("auth: tenant is required")

	// ErrInvalidTokenFormat is returned when the provider issues an access token
	// that is not a three-segment JWT.
	ErrInvalidTokenFormat = fmt.Errorf("%w: invalid JWT format", ErrAuthenticationFailed)
)
