package auth

import (
	"github.com/dmitrymomot/authgateway/pkg/jwt"
)

// profile holds the display claims surfaced on login.
type profile struct {
	Email     string
	FirstName string
	LastName  string
}

// decodeProfile reads display claims from an access token obtained from the
// tenant's provider within the same call. The signature is not verified.
// A payload that cannot be decoded yields an empty profile with fallbackEmail.
func decodeProfile(token jwt.Segments, fallbackEmail string) (profile, error) {
	p := profile{Email: fallbackEmail}

	var claims jwt.ProfileClaims
	if err := token.DecodeClaims(&claims); err != nil {
		return p, err
	}

	if claims.Email != "" {
		p.Email = claims.Email
	}
	p.FirstName = claims.GivenName
	p.LastName = claims.FamilyName
	return p, nil
}
