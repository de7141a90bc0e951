package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Logger records audited gateway actions.
type Logger interface {
	// Log records a successful action.
	Log(ctx context.Context, action Action, opts ...EventOption) error

	// LogError records a failed action together with its reason.
	LogError(ctx context.Context, action Action, reason error, opts ...EventOption) error
}

// Storage persists audit events.
type Storage interface {
	Store(ctx context.Context, event Event) error
}

// BatchWriter persists several events in one round trip.
type BatchWriter interface {
	Storage
	StoreBatch(ctx context.Context, events []Event) error
}

// contextExtractor extracts string values from context.
// It returns (value, found) where found indicates if extraction succeeded.
type contextExtractor func(context.Context) (string, bool)

type auditLogger struct {
	storage            Storage
	filter             *MetadataFilter
	tenantExtractor    contextExtractor
	requestIDExtractor contextExtractor
	ipExtractor        contextExtractor
	now                func() time.Time
}

// Option configures Logger behavior during initialization
type Option func(*auditLogger)

// Context extractors populate events from the request context.
// Explicit EventOptions passed to Log take precedence over extracted values.

func WithTenantExtractor(fn func(context.Context) (string, bool)) Option {
	return func(l *auditLogger) {
		l.tenantExtractor = fn
	}
}

func WithRequestIDExtractor(fn func(context.Context) (string, bool)) Option {
	return func(l *auditLogger) {
		l.requestIDExtractor = fn
	}
}

func WithIPExtractor(fn func(context.Context) (string, bool)) Option {
	return func(l *auditLogger) {
		l.ipExtractor = fn
	}
}

// WithMetadataFilter scrubs event metadata before it is stored.
func WithMetadataFilter(f *MetadataFilter) Option {
	return func(l *auditLogger) {
		l.filter = f
	}
}

// NewLogger creates a new audit logger
func NewLogger(storage Storage, opts ...Option) Logger {
	if storage == nil {
		panic("audit: storage cannot be nil")
	}

	l := &auditLogger{
		storage: storage,
		filter:  NewMetadataFilter(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Log records a successful action
func (l *auditLogger) Log(ctx context.Context, action Action, opts ...EventOption) error {
	return l.record(ctx, action, ResultSuccess, "", opts)
}

// LogError records a failed action
func (l *auditLogger) LogError(ctx context.Context, action Action, reason error, opts ...EventOption) error {
	msg := "unknown error"
	if reason != nil {
		msg = reason.Error()
	}
	return l.record(ctx, action, ResultFailure, msg, opts)
}

func (l *auditLogger) record(ctx context.Context, action Action, result Result, reason string, opts []EventOption) error {
	event := l.eventFromContext(ctx)
	event.ID = uuid.New().String()
	event.CreatedAt = l.now()
	event.Action = action
	event.Result = result
	event.Error = reason

	for _, opt := range opts {
		opt(&event)
	}

	if l.filter != nil {
		event.Metadata = l.filter.Filter(event.Metadata)
	}

	if err := event.Validate(); err != nil {
		return err
	}

	return l.storage.Store(ctx, event)
}

// eventFromContext extracts event data from context
func (l *auditLogger) eventFromContext(ctx context.Context) Event {
	event := Event{}

	if l.tenantExtractor != nil {
		if key, ok := l.tenantExtractor(ctx); ok {
			event.TenantKey = key
		}
	}

	if l.requestIDExtractor != nil {
		if requestID, ok := l.requestIDExtractor(ctx); ok {
			event.RequestID = requestID
		}
	}

	if l.ipExtractor != nil {
		if ip, ok := l.ipExtractor(ctx); ok {
			event.IP = ip
		}
	}

	return event
}
