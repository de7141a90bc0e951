package handler

import "time"

// SetNow overrides the envelope clock for the duration of a test.
func SetNow(fn func() time.Time) (restore func()) {
	prev := now
	now = fn
	return func() { now = prev }
}
