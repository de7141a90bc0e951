package audit

import (
	"fmt"
	"time"
)

// Action names the audited gateway operation.
type Action string

const (
	ActionUserRegister Action = "USER_REGISTER"
	ActionUserLogin    Action = "USER_LOGIN"
	ActionTokenRefresh Action = "TOKEN_REFRESH"
	ActionUserLogout   Action = "USER_LOGOUT"
)

// Result represents the outcome of an audited action
type Result string

const (
	ResultSuccess Result = "success"
	ResultFailure Result = "failure"
)

// Event represents a single audit log entry
type Event struct {
	ID        string         `json:"id"`
	TenantKey string         `json:"tenant_key"`
	UserEmail string         `json:"user_email,omitempty"`
	Action    Action         `json:"action"`
	Result    Result         `json:"result"`
	Error     string         `json:"error,omitempty"`
	RequestID string         `json:"request_id,omitempty"`
	IP        string         `json:"ip,omitempty"`
	UserAgent string         `json:"user_agent,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// Success reports whether the event records a successful action.
func (e Event) Success() bool {
	return e.Result == ResultSuccess
}

// Validate checks if the event has all required fields
func (e *Event) Validate() error {
	if e.Action == "" {
		return fmt.Errorf("%w: action is required", ErrEventValidation)
	}
	if e.TenantKey == "" {
		return fmt.Errorf("%w: tenant key is required", ErrEventValidation)
	}
	return nil
}

// EventOption applies configuration to an Event during creation.
type EventOption func(*Event)
