package requestid

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/authgateway/pkg/logger"
)

// LoggerExtractor returns a logger.ContextExtractor adding "request_id".
func LoggerExtractor() func(ctx context.Context) (slog.Attr, bool) {
	return func(ctx context.Context) (slog.Attr, bool) {
		if id, ok := Lookup(ctx); ok {
			return logger.RequestID(id), true
		}
		return slog.Attr{}, false
	}
}
