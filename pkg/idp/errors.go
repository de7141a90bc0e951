package idp

import (
	"errors"
	"fmt"
)

// Authentication errors
var (
	// ErrAuthenticationFailed covers any rejected or failed token exchange.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrInvalidCredentials is returned when the provider rejects a username/password pair.
	ErrInvalidCredentials = fmt.Errorf("%w: invalid credentials", ErrAuthenticationFailed)

	// ErrInvalidRefreshToken is returned when the provider rejects a refresh token.
	ErrInvalidRefreshToken = fmt.Errorf("%w: invalid or expired refresh token", ErrAuthenticationFailed)
)

// User management errors
var (
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrUserNotFound      = errors.New("user not found")
)

// Client lifecycle errors
var (
	// ErrInvalidTenant is returned when a tenant lacks the fields needed to reach its realm.
	ErrInvalidTenant = errors.New("tenant is missing identity provider settings")

	// ErrClientClosed is returned by calls on a released client.
	ErrClientClosed = errors.New("identity provider client is closed")

	// ErrCacheClosed is returned by GetOrCreate after the cache was closed.
	ErrCacheClosed = errors.New("client cache is closed")

	// ErrUnexpectedResponse is returned for provider responses outside the documented contract.
	ErrUnexpectedResponse = errors.New("unexpected identity provider response")
)
