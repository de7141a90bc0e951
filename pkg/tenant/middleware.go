package tenant

import (
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/authgateway/pkg/logger"
)

// Middleware resolves the tenant for each request and binds it to a fresh
// request Scope. The scope is cleared when the handler chain returns,
// whether it completed normally, failed or panicked.
func Middleware(resolver Resolver, opts ...Option) func(http.Handler) http.Handler {
	if resolver == nil {
		panic("tenant: resolver cannot be nil")
	}

	cfg := &config{
		extractor:    HeaderExtractor(DefaultHeader),
		errorHandler: defaultErrorHandler,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, scope := NewScope(r.Context())
			defer scope.Clear()

			key := cfg.extractor(r)
			if key == "" {
				cfg.logger.WarnContext(ctx, "request without tenant key",
					slog.String("path", r.URL.Path),
					logger.Component("tenant_middleware"),
				)
				cfg.errorHandler(w, r, ErrMissingTenantKey)
				return
			}

			t, err := resolver.Resolve(ctx, key)
			if err != nil {
				cfg.logger.WarnContext(ctx, "tenant resolution failed",
					logger.TenantKey(key),
					logger.Error(err),
					logger.Component("tenant_middleware"),
				)
				cfg.errorHandler(w, r, err)
				return
			}

			if err := scope.Set(t); err != nil {
				cfg.errorHandler(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

