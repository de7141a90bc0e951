// Package requestid assigns a correlation id to every request.
//
// Middleware keeps a client supplied X-Request-ID when it is at most 128
// characters of [a-zA-Z0-9_-], otherwise it generates a UUID. The id is
// echoed in the response header and stored in the request context, where
// LoggerExtractor adds it to log records and Lookup feeds audit events.
package requestid
