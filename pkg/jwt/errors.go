package jwt

import "errors"

var (
	ErrInvalidToken  = errors.New("jwt: invalid token")
	ErrExpiredToken  = errors.New("jwt: token is expired")
	ErrInvalidClaims = errors.New("jwt: invalid claims")
	ErrMissingClaims = errors.New("jwt: missing claims")
)
