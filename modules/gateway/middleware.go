package gateway

import (
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/authgateway/handler"
	"github.com/dmitrymomot/authgateway/pkg/logger"
)

// accessLog logs one line per request once the response is written.
func accessLog(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			level := slog.LevelInfo
			if status >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			log.LogAttrs(r.Context(), level, "http request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				logger.StatusCode(status),
				slog.Int("bytes", ww.BytesWritten()),
				logger.Duration(time.Since(start)),
				logger.Component("gateway"),
			)
		})
	}
}

// recoverer turns a handler panic into a 500 error envelope.
// http.ErrAbortHandler is re-raised so net/http can abort the connection.
func recoverer(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			defer func() {
				rvr := recover()
				if rvr == nil {
					return
				}
				if rvr == http.ErrAbortHandler {
					panic(rvr)
				}

				log.ErrorContext(r.Context(), "panic recovered",
					slog.Any("panic", rvr),
					slog.String("stack", string(debug.Stack())),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					logger.Component("gateway"),
				)

				// Headers already sent; nothing sensible can be written.
				if ww.Status() != 0 {
					return
				}
				handler.WriteError(ww, r, handler.InternalError())
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
