package handler

import (
	"encoding/json"
	"net/http"
	"time"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Envelope wraps every successful response body.
type Envelope struct {
	Status    string    `json:"status"`
	Message   string    `json:"message,omitempty"`
	Data      any       `json:"data,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// ErrorEnvelope is the body of every error response.
type ErrorEnvelope struct {
	Status      string            `json:"status"`
	Message     string            `json:"message"`
	Code        int               `json:"code"`
	Details     string            `json:"details,omitempty"`
	FieldErrors map[string]string `json:"fieldErrors,omitempty"`
	Timestamp   time.Time         `json:"timestamp"`
}

// now is replaced in tests.
var now = func() time.Time { return time.Now().UTC() }

type jsonResponse struct {
	status int
	body   any
}

func (j jsonResponse) Render(w http.ResponseWriter, _ *http.Request) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(j.status)
	return json.NewEncoder(w).Encode(j.body)
}

// JSONOption configures a success response.
type JSONOption func(*jsonResponse)

// WithStatus sets a custom HTTP status code.
func WithStatus(status int) JSONOption {
	return func(r *jsonResponse) {
		r.status = status
	}
}

// Success creates a success envelope. The status defaults to 200.
func Success(message string, data any, opts ...JSONOption) Response {
	r := &jsonResponse{
		status: http.StatusOK,
		body: Envelope{
			Status:    StatusSuccess,
			Message:   message,
			Data:      data,
			Timestamp: now(),
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Error creates an error envelope from e.
func Error(e *HTTPError) Response {
	if e == nil {
		e = InternalError()
	}
	return jsonResponse{
		status: e.Status,
		body: ErrorEnvelope{
			Status:      StatusError,
			Message:     e.Message,
			Code:        e.Status,
			Details:     e.Details,
			FieldErrors: e.FieldErrors,
			Timestamp:   now(),
		},
	}
}

// WriteError renders e directly. Middleware uses it outside of Wrap.
func WriteError(w http.ResponseWriter, r *http.Request, e *HTTPError) {
	_ = Error(e).Render(w, r)
}
