package audit

import "errors"

var (
	// ErrStorageNotAvailable indicates the storage backend is unavailable
	ErrStorageNotAvailable = errors.New("storage backend is unavailable")

	// ErrEventValidation indicates event validation failed
	ErrEventValidation = errors.New("event validation failed")

	// ErrUnknownBackend indicates an unsupported AUDIT_BACKEND value
	ErrUnknownBackend = errors.New("unknown audit backend")
)
