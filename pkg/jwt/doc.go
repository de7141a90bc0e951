// Package jwt reads JSON Web Tokens issued by an external identity provider.
//
// The gateway relays tokens it has just received from the provider's token
// endpoint, so it only needs their payload: Split checks the compact
// serialization and Decode unmarshals the claims without signature
// verification. ProfileClaims mirrors the OIDC profile claims the gateway
// surfaces to clients.
//
//	var claims jwt.ProfileClaims
//	if err := jwt.Decode(accessToken, &claims); err != nil {
//		// handle malformed token
//	}
//
// Encode produces unsigned tokens and exists for fakes and fixtures.
package jwt
