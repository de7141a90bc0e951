package requestid

import "context"

type contextKey struct{}

// WithContext stores the request id in ctx.
func WithContext(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, contextKey{}, requestID)
}

// FromContext returns the request id, or "" when none is set.
func FromContext(ctx context.Context) string {
	id, _ := Lookup(ctx)
	return id
}

// Lookup returns the request id and whether a non-empty one is set.
func Lookup(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, ok := ctx.Value(contextKey{}).(string)
	return id, ok && id != ""
}
