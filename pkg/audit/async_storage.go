package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/dmitrymomot/authgateway/pkg/logger"
)

// AsyncOptions configures batching and buffering.
type AsyncOptions struct {
	BufferSize     int           // events queued before Store falls back to a synchronous write
	BatchSize      int           // events per StoreBatch call
	BatchTimeout   time.Duration // max time a partial batch waits
	StorageTimeout time.Duration // per-batch storage deadline
	Logger         *slog.Logger  // receives batch write failures
}

// AsyncWriter queues events and writes them in batches from a background goroutine.
// Store returns once the event is queued; batch failures are logged, not returned.
type AsyncWriter struct {
	batchWriter BatchWriter
	options     AsyncOptions
	log         *slog.Logger

	events chan Event
	wg     sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// NewAsyncWriter starts the background writer. The returned function stops it,
// flushing queued events; call it during shutdown.
func NewAsyncWriter(bw BatchWriter, opts AsyncOptions) (*AsyncWriter, func(context.Context) error) {
	if bw == nil {
		panic("audit: batch writer cannot be nil")
	}

	if opts.BufferSize <= 0 {
		opts.BufferSize = 1000
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 100
	}
	if opts.BatchTimeout <= 0 {
		opts.BatchTimeout = 100 * time.Millisecond
	}
	if opts.StorageTimeout <= 0 {
		opts.StorageTimeout = 5 * time.Second
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	aw := &AsyncWriter{
		batchWriter: bw,
		options:     opts,
		log:         log,
		events:      make(chan Event, opts.BufferSize),
	}

	aw.wg.Add(1)
	go aw.worker()

	return aw, aw.Close
}

// Store implements Storage.
func (aw *AsyncWriter) Store(ctx context.Context, event Event) error {
	aw.mu.RLock()
	defer aw.mu.RUnlock()

	if aw.closed {
		return ErrStorageNotAvailable
	}

	select {
	case aw.events <- event:
		return nil
	default:
		// Buffer full: write through rather than drop the event.
		return aw.batchWriter.StoreBatch(ctx, []Event{event})
	}
}

func (aw *AsyncWriter) worker() {
	defer aw.wg.Done()

	batch := make([]Event, 0, aw.options.BatchSize)
	ticker := time.NewTicker(aw.options.BatchTimeout)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}

		// Detached from request contexts: the requests have usually completed.
		ctx, cancel := context.WithTimeout(context.Background(), aw.options.StorageTimeout)
		defer cancel()

		if err := aw.batchWriter.StoreBatch(ctx, batch); err != nil {
			aw.log.Error("failed to write audit batch",
				logger.Error(err),
				slog.Int("events", len(batch)),
				logger.Component("audit"),
			)
		}
		clear(batch)
		batch = batch[:0]
	}

	for {
		select {
		case event, ok := <-aw.events:
			if !ok {
				flush()
				return
			}
			batch = append(batch, event)
			if len(batch) >= aw.options.BatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		}
	}
}

// Close stops accepting events and waits for queued ones to be written.
// If ctx ends first, Close returns its error and the remaining events may be lost.
func (aw *AsyncWriter) Close(ctx context.Context) error {
	aw.mu.Lock()
	if aw.closed {
		aw.mu.Unlock()
		return nil
	}
	aw.closed = true
	close(aw.events)
	aw.mu.Unlock()

	done := make(chan struct{})
	go func() {
		aw.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
