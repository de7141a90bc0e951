// Package binder decodes HTTP request bodies into typed request values.
//
// JSON accepts a single JSON object with an application/json content type,
// bounded by DefaultMaxJSONSize. Types implementing Normalizer get a chance
// to clean up their fields after decoding. All failures wrap one of the
// package sentinels so callers can map them to 400 responses with errors.Is.
package binder
