// Package auth orchestrates the account flows of the gateway: register,
// login, refresh and logout against the identity provider of the tenant
// bound to the request.
//
// Each operation takes the resolved tenant, obtains that tenant's client from
// a ClientProvider (normally *idp.ClientCache) and reports its outcome to an
// audit.Logger with the failure reason. Errors propagate unchanged to the
// caller, except for Logout which always succeeds from the caller's view.
//
// Login reads display claims (email, given and family name) from the access
// token it just received from the provider. The token is not verified, and a
// token whose claims cannot be read falls back to the requested email.
package auth
