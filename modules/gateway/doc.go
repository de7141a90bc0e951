// Package gateway exposes the account API over HTTP.
//
// Router mounts register, login, refresh and logout under APIPrefix behind
// the rate limiter and tenant middleware, plus liveness and readiness probes
// under /health. Translate is the single mapping from domain errors to
// status codes and error envelopes.
package gateway
