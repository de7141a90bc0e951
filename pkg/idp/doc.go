// Package idp is the gateway's client for an external OAuth2/OIDC identity
// provider exposing a Keycloak-style REST surface.
//
// HTTPClient is bound to one tenant: its realm, client credentials and base
// URL. It owns a pooled transport with bounded connect and response timeouts.
// Token grants go through golang.org/x/oauth2 with client credentials sent in
// the form body. Admin API calls (user search, creation, password reset) use
// a client-credentials token that x/oauth2 caches and refreshes.
//
// ClientCache keeps one client per tenant id:
//
//	cache := idp.NewClientCache(idp.NewFactory(cfg, log), idp.WithCacheLogger(log))
//	defer cache.Close(ctx)
//
//	client, err := cache.GetOrCreate(ctx, t)
//
// Endpoints used, relative to the tenant base URL:
//
//	/realms/{realm}/protocol/openid-connect/token
//	/realms/{realm}/protocol/openid-connect/logout
//	/admin/realms/{realm}/users
//
// Token endpoint rejections are reported as ErrInvalidCredentials or
// ErrInvalidRefreshToken; both wrap ErrAuthenticationFailed.
package idp
