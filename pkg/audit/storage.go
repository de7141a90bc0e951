package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/authgateway/pkg/logger"
)

// Config selects and tunes the audit backend.
type Config struct {
	Backend        string        `env:"AUDIT_BACKEND" envDefault:"log"` // log, redis or memory
	Stream         string        `env:"AUDIT_REDIS_STREAM" envDefault:"audit:events"`
	StreamMaxLen   int64         `env:"AUDIT_REDIS_STREAM_MAXLEN" envDefault:"100000"`
	BufferSize     int           `env:"AUDIT_BUFFER_SIZE" envDefault:"1000"`
	BatchSize      int           `env:"AUDIT_BATCH_SIZE" envDefault:"100"`
	BatchTimeout   time.Duration `env:"AUDIT_BATCH_TIMEOUT" envDefault:"100ms"`
	StorageTimeout time.Duration `env:"AUDIT_STORAGE_TIMEOUT" envDefault:"5s"`
}

// AsyncOptions returns the batching settings of cfg.
func (c Config) AsyncOptions(log *slog.Logger) AsyncOptions {
	return AsyncOptions{
		BufferSize:     c.BufferSize,
		BatchSize:      c.BatchSize,
		BatchTimeout:   c.BatchTimeout,
		StorageTimeout: c.StorageTimeout,
		Logger:         log,
	}
}

// NewStorage builds the backend named by cfg.Backend. The redis backend requires client.
func NewStorage(cfg Config, client redis.UniversalClient, log *slog.Logger) (BatchWriter, error) {
	switch cfg.Backend {
	case "", "log":
		return NewSlogStorage(log), nil
	case "memory":
		return NewMemoryStorage(), nil
	case "redis":
		if client == nil {
			return nil, fmt.Errorf("%w: redis backend requires a redis client", ErrUnknownBackend)
		}
		return NewRedisStreamStorage(client, cfg.Stream, cfg.StreamMaxLen), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}

// SlogStorage writes each event as a structured log record.
type SlogStorage struct {
	log *slog.Logger
}

// NewSlogStorage creates a storage writing to log.
func NewSlogStorage(log *slog.Logger) *SlogStorage {
	if log == nil {
		log = slog.Default()
	}
	return &SlogStorage{log: log.With(logger.Component("audit"))}
}

// Store implements Storage.
func (s *SlogStorage) Store(ctx context.Context, e Event) error {
	attrs := []slog.Attr{
		slog.String("audit_id", e.ID),
		logger.Action(string(e.Action)),
		logger.Email(e.UserEmail),
		logger.TenantKey(e.TenantKey),
		logger.ClientIP(e.IP),
		slog.String("user_agent", e.UserAgent),
		slog.Bool("success", e.Success()),
	}
	if e.Error != "" {
		attrs = append(attrs, slog.String("error", e.Error))
	}
	if e.RequestID != "" {
		attrs = append(attrs, logger.RequestID(e.RequestID))
	}
	if len(e.Metadata) > 0 {
		attrs = append(attrs, slog.Any("metadata", e.Metadata))
	}
	s.log.LogAttrs(ctx, slog.LevelInfo, "audit", attrs...)
	return nil
}

// StoreBatch implements BatchWriter.
func (s *SlogStorage) StoreBatch(ctx context.Context, events []Event) error {
	for _, e := range events {
		if err := s.Store(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

// MemoryStorage keeps events in process memory.
type MemoryStorage struct {
	mu     sync.RWMutex
	events []Event
}

// NewMemoryStorage creates an empty in-memory storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

// Store implements Storage.
func (m *MemoryStorage) Store(_ context.Context, e Event) error {
	m.mu.Lock()
	m.events = append(m.events, e)
	m.mu.Unlock()
	return nil
}

// StoreBatch implements BatchWriter.
func (m *MemoryStorage) StoreBatch(_ context.Context, events []Event) error {
	m.mu.Lock()
	m.events = append(m.events, events...)
	m.mu.Unlock()
	return nil
}

// Events returns a copy of the stored events in insertion order.
func (m *MemoryStorage) Events() []Event {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.events)
}

// Find returns stored events for the given action.
func (m *MemoryStorage) Find(action Action) []Event {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Event
	for _, e := range m.events {
		if e.Action == action {
			out = append(out, e)
		}
	}
	return out
}

// RedisStreamStorage appends events to a capped Redis stream.
type RedisStreamStorage struct {
	client redis.UniversalClient
	stream string
	maxLen int64
}

// NewRedisStreamStorage creates a stream storage. The stream is trimmed
// approximately to maxLen entries; zero disables trimming.
func NewRedisStreamStorage(client redis.UniversalClient, stream string, maxLen int64) *RedisStreamStorage {
	if stream == "" {
		stream = "audit:events"
	}
	return &RedisStreamStorage{client: client, stream: stream, maxLen: maxLen}
}

// Store implements Storage.
func (s *RedisStreamStorage) Store(ctx context.Context, e Event) error {
	args, err := s.args(e)
	if err != nil {
		return err
	}
	if err := s.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrStorageNotAvailable, err)
	}
	return nil
}

// StoreBatch implements BatchWriter using a single pipeline.
func (s *RedisStreamStorage) StoreBatch(ctx context.Context, events []Event) error {
	if len(events) == 0 {
		return nil
	}
	_, err := s.client.Pipelined(ctx, func(p redis.Pipeliner) error {
		for _, e := range events {
			args, err := s.args(e)
			if err != nil {
				return err
			}
			p.XAdd(ctx, args)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStorageNotAvailable, err)
	}
	return nil
}

func (s *RedisStreamStorage) args(e Event) (*redis.XAddArgs, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal audit event: %w", err)
	}
	return &redis.XAddArgs{
		Stream: s.stream,
		MaxLen: s.maxLen,
		Approx: s.maxLen > 0,
		Values: map[string]any{
			"action": string(e.Action),
			"tenant": e.TenantKey,
			"result": string(e.Result),
			"event":  payload,
		},
	}, nil
}
