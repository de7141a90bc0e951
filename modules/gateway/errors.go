package gateway

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/authgateway/handler"
	"github.com/dmitrymomot/authgateway/pkg/binder"
	"github.com/dmitrymomot/authgateway/pkg/logger"
	"github.com/dmitrymomot/authgateway/pkg/ratelimiter"
	"github.com/dmitrymomot/authgateway/pkg/tenant"
	"github.com/dmitrymomot/authgateway/pkg/validator"
	"github.com/dmitrymomot/authgateway/svc/auth"
)

const (
	detailsTenant     = "Invalid or missing tenant key"
	detailsAuth       = "Authentication failed"
	detailsRateLimit  = "Too many requests. Please try again later."
	detailsValidation = "One or more fields have validation errors"
	detailsBadRequest = "Invalid request parameters"
)

// Translate maps an error raised anywhere below the HTTP layer to its
// public representation. It is the only place where domain errors meet
// status codes. Unknown errors become a generic 500.
func Translate(err error) *handler.HTTPError {
	if err == nil {
		return nil
	}
	if e, ok := handler.AsHTTPError(err); ok {
		return e
	}

	var e *handler.HTTPError
	switch {
	case validator.IsValidationError(err):
		e = handler.NewHTTPError(http.StatusBadRequest, "Validation failed", detailsValidation)
		e.FieldErrors = validator.ExtractValidationErrors(err).FieldErrors()

	case errors.Is(err, binder.ErrMissingContentType), errors.Is(err, binder.ErrUnsupportedMediaType):
		e = handler.NewHTTPError(http.StatusUnsupportedMediaType, "Content-Type must be application/json", detailsBadRequest)
	case errors.Is(err, binder.ErrBodyTooLarge):
		e = handler.NewHTTPError(http.StatusRequestEntityTooLarge, "Request body too large", detailsBadRequest)
	case errors.Is(err, binder.ErrFailedToParseJSON):
		e = handler.NewHTTPError(http.StatusBadRequest, "Malformed request body", detailsBadRequest)

	case errors.Is(err, tenant.ErrMissingTenantKey):
		e = handler.NewHTTPError(http.StatusUnauthorized, "Tenant key is required", detailsTenant)
	case errors.Is(err, tenant.ErrTenantNotFound), errors.Is(err, tenant.ErrNoTenantInContext):
		e = handler.NewHTTPError(http.StatusUnauthorized, "Tenant not found", detailsTenant)

	case errors.Is(err, auth.ErrInvalidCredentials):
		e = handler.NewHTTPError(http.StatusUnauthorized, "Invalid credentials", detailsAuth)
	case errors.Is(err, auth.ErrInvalidRefreshToken):
		e = handler.NewHTTPError(http.StatusUnauthorized, "Invalid or expired refresh token", detailsAuth)
	case errors.Is(err, auth.ErrAuthenticationFailed):
		e = handler.NewHTTPError(http.StatusUnauthorized, "Authentication failed", detailsAuth)

	case errors.Is(err, auth.ErrUserAlreadyExists):
		e = handler.NewHTTPError(http.StatusConflict, "User already exists", "User with this email already exists")
	case errors.Is(err, auth.ErrUserNotFound):
		e = handler.NewHTTPError(http.StatusNotFound, "User not found", "User not found")

	case errors.Is(err, ratelimiter.ErrRateLimitExceeded):
		e = handler.NewHTTPError(http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.", detailsRateLimit)

	default:
		e = handler.InternalError()
	}

	e.Err = err
	return e
}

// tenantErrorHandler renders tenant resolution failures as error envelopes.
func tenantErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	handler.WriteError(w, r, Translate(err))
}

// rateLimitRejectHandler renders the 429 envelope for a rejected request.
// The limiter has already set Retry-After and X-RateLimit-* headers.
func rateLimitRejectHandler(log *slog.Logger) ratelimiter.RejectHandler {
	return func(w http.ResponseWriter, r *http.Request, out ratelimiter.Outcome) {
		log.DebugContext(r.Context(), "request rejected by rate limiter",
			slog.String("category", string(out.Category)),
			logger.Component("gateway"),
		)
		handler.WriteError(w, r, Translate(ratelimiter.ErrRateLimitExceeded))
	}
}
