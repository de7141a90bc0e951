// Package clientip resolves the originating client address of a request
// that may have passed through reverse proxies.
//
// Headers are examined in priority order until a usable value is found:
//
//  1. X-Forwarded-For     (first comma-separated entry)
//  2. Proxy-Client-IP
//  3. WL-Proxy-Client-IP
//  4. X-Real-IP
//  5. RemoteAddr          (transport peer, port stripped)
//
// Empty values and the literal "unknown" are skipped. The result feeds the
// rate limiter key and audit records, so Middleware stores it in the request
// context once and downstream code reads it with GetIPFromContext.
package clientip
