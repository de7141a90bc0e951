package handler

import (
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/authgateway/pkg/logger"
	"github.com/dmitrymomot/authgateway/pkg/requestid"
)

// Translator maps an error to its public representation.
type Translator func(err error) *HTTPError

// NewErrorHandler creates an error handler that translates errors, logs
// them and renders an error envelope. Client errors are logged at warn
// level, server errors at error level.
func NewErrorHandler(log *slog.Logger, translate Translator) ErrorHandler {
	if log == nil {
		log = slog.Default()
	}
	if translate == nil {
		translate = defaultTranslator
	}

	return func(ctx Context, err error) {
		r := ctx.Request()
		e := translate(err)
		if e == nil {
			e = InternalError()
		}

		level := slog.LevelWarn
		if e.Status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		log.LogAttrs(r.Context(), level, "request error",
			logger.RequestID(requestid.FromContext(r.Context())),
			logger.Error(err),
			logger.StatusCode(e.Status),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			logger.Component("error_handler"),
		)

		WriteError(ctx.ResponseWriter(), r, e)
	}
}

func defaultTranslator(err error) *HTTPError {
	if e, ok := AsHTTPError(err); ok {
		return e
	}
	return InternalError()
}
