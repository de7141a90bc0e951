package binder

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
)

// DefaultMaxJSONSize is the default maximum size for JSON request bodies (1MB).
const DefaultMaxJSONSize = 1 << 20

// Normalizer is implemented by request types that clean up their fields
// after decoding (trimming whitespace, lowercasing, etc).
type Normalizer interface {
	Normalize()
}

// Option configures the JSON binder.
type Option func(*jsonBinder)

// WithMaxSize limits the accepted body size in bytes.
func WithMaxSize(n int64) Option {
	return func(b *jsonBinder) {
		if n > 0 {
			b.maxSize = n
		}
	}
}

// WithStrictFields rejects bodies carrying fields unknown to the target type.
func WithStrictFields() Option {
	return func(b *jsonBinder) {
		b.strict = true
	}
}

type jsonBinder struct {
	maxSize int64
	strict  bool
}

// JSON creates a binder that decodes a single JSON object from the request body.
// Unknown fields are ignored unless WithStrictFields is set. After decoding,
// targets implementing Normalizer are normalized.
//
//	var req LoginRequest
//	if err := binder.JSON()(r, &req); err != nil {
//		// 400
//	}
func JSON(opts ...Option) func(r *http.Request, v any) error {
	b := &jsonBinder{maxSize: DefaultMaxJSONSize}
	for _, opt := range opts {
		opt(b)
	}

	return func(r *http.Request, v any) error {
		contentType := r.Header.Get("Content-Type")
		if contentType == "" {
			return fmt.Errorf("%w: expected application/json", ErrMissingContentType)
		}

		mediaType, _, err := mime.ParseMediaType(contentType)
		if err != nil || mediaType != "application/json" {
			return fmt.Errorf("%w: got %s, expected application/json", ErrUnsupportedMediaType, contentType)
		}

		body, err := io.ReadAll(io.LimitReader(r.Body, b.maxSize+1))
		if err != nil {
			return fmt.Errorf("%w: read body: %w", ErrFailedToParseJSON, err)
		}
		if int64(len(body)) > b.maxSize {
			return fmt.Errorf("%w: max %d bytes", ErrBodyTooLarge, b.maxSize)
		}
		if len(body) == 0 {
			return fmt.Errorf("%w: empty body", ErrFailedToParseJSON)
		}

		dec := json.NewDecoder(bytes.NewReader(body))
		if b.strict {
			dec.DisallowUnknownFields()
		}
		if err := dec.Decode(v); err != nil {
			return fmt.Errorf("%w: %w", ErrFailedToParseJSON, err)
		}

		var extra json.RawMessage
		if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: unexpected data after JSON object", ErrFailedToParseJSON)
		}

		if n, ok := v.(Normalizer); ok {
			n.Normalize()
		}
		return nil
	}
}
