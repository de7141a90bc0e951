package tenant

import (
	"errors"
	"log/slog"
	"net/http"
)

// ErrorHandler handles errors that occur during tenant resolution.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// config holds middleware configuration.
type config struct {
	extractor    KeyExtractor
	errorHandler ErrorHandler
	logger       *slog.Logger
}

// Option configures the middleware.
type Option func(*config)

// WithExtractor sets how the tenant key is read from the request.
func WithExtractor(extractor KeyExtractor) Option {
	return func(c *config) {
		if extractor != nil {
			c.extractor = extractor
		}
	}
}

// WithErrorHandler sets a custom error handler.
func WithErrorHandler(handler ErrorHandler) Option {
	return func(c *config) {
		if handler != nil {
			c.errorHandler = handler
		}
	}
}

// WithLogger sets a custom logger for the middleware.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func defaultErrorHandler(w http.ResponseWriter, _ *http.Request, err error) {
	switch {
	case errors.Is(err, ErrTenantNotFound):
		http.Error(w, "Invalid or missing tenant key", http.StatusUnauthorized)
	default:
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
