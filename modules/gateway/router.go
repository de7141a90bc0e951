package gateway

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/authgateway/handler"
	"github.com/dmitrymomot/authgateway/pkg/binder"
	"github.com/dmitrymomot/authgateway/pkg/clientip"
	"github.com/dmitrymomot/authgateway/pkg/httpserver"
	"github.com/dmitrymomot/authgateway/pkg/ratelimiter"
	"github.com/dmitrymomot/authgateway/pkg/requestid"
	"github.com/dmitrymomot/authgateway/pkg/tenant"
	"github.com/dmitrymomot/authgateway/svc/auth"
)

const (
	// APIPrefix is the versioned prefix of the account API.
	APIPrefix = "/api/v1/auth"

	healthPrefix = "/health"
)

// Options holds the collaborators of the gateway router.
type Options struct {
	Auth     AuthService
	Resolver tenant.Resolver
	// Limiter is optional. Without it no endpoint is rate limited.
	Limiter *ratelimiter.Limiter
	// HealthChecks are run by the readiness probe.
	HealthChecks map[string]httpserver.CheckFunc
	Logger       *slog.Logger
}

// Router builds the HTTP surface of the gateway:
//
//	POST /api/v1/auth/register   201
//	POST /api/v1/auth/login      200
//	POST /api/v1/auth/refresh    200
//	POST /api/v1/auth/logout     200
//	GET  /health/live
//	GET  /health/ready
//
// Every request gets a request id and a client address. Once method and
// path match an API route, the rate limiter and tenant resolution run
// before the handler. The tenant scope is cleared when the handler
// returns or panics; panics answer with a 500 envelope.
func Router(opts Options) chi.Router {
	if opts.Auth == nil {
		panic("gateway: auth service cannot be nil")
	}
	if opts.Resolver == nil {
		panic("gateway: tenant resolver cannot be nil")
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	r.Use(accessLog(log))
	r.Use(recoverer(log))
	r.Use(clientip.Middleware)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		handler.WriteError(w, r, handler.NewHTTPError(http.StatusNotFound, "Not found", ""))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		handler.WriteError(w, r, handler.NewHTTPError(http.StatusMethodNotAllowed, "Method not allowed", ""))
	})

	r.Route(healthPrefix, func(hr chi.Router) {
		hr.Get("/live", httpserver.LivenessHandler())
		hr.Get("/ready", httpserver.ReadinessHandler(log, opts.HealthChecks))
	})

	errHandler := handler.NewErrorHandler(log, Translate)
	h := &authHandlers{svc: opts.Auth}

	// Inline middlewares run only for matched routes, so a wrong method is
	// answered with 405 without spending a token or resolving a tenant.
	var gates []func(http.Handler) http.Handler
	if opts.Limiter != nil {
		gates = append(gates, ratelimiter.Middleware(opts.Limiter,
			ratelimiter.WithRejectHandler(rateLimitRejectHandler(log)),
		))
	}
	gates = append(gates, tenant.Middleware(opts.Resolver,
		tenant.WithErrorHandler(tenantErrorHandler),
		tenant.WithLogger(log),
	))

	r.Route(APIPrefix, func(api chi.Router) {
		api = api.With(gates...)

		api.Post("/register", handler.Wrap(h.register,
			handler.WithBinders[auth.RegisterRequest](binder.JSON()),
			handler.WithErrorHandler[auth.RegisterRequest](errHandler),
		))
		api.Post("/login", handler.Wrap(h.login,
			handler.WithBinders[auth.LoginRequest](binder.JSON()),
			handler.WithErrorHandler[auth.LoginRequest](errHandler),
		))
		api.Post("/refresh", handler.Wrap(h.refresh,
			handler.WithBinders[auth.RefreshTokenRequest](binder.JSON()),
			handler.WithErrorHandler[auth.RefreshTokenRequest](errHandler),
		))
		api.Post("/logout", handler.Wrap(h.logout,
			handler.WithBinders[auth.RefreshTokenRequest](binder.JSON()),
			handler.WithErrorHandler[auth.RefreshTokenRequest](errHandler),
		))
	})

	return r
}
