package tenant

import (
	"net/http"
	"strings"
)

// DefaultHeader is the request header carrying the tenant key.
const DefaultHeader = "X-Tenant-Key"

// KeyExtractor pulls a tenant key out of an HTTP request.
// An empty result means the request carries no key.
type KeyExtractor func(r *http.Request) string

// HeaderExtractor reads the tenant key from the given header.
// Falls back to DefaultHeader when header is empty.
func HeaderExtractor(header string) KeyExtractor {
	if header == "" {
		header = DefaultHeader
	}
	return func(r *http.Request) string {
		return strings.TrimSpace(r.Header.Get(header))
	}
}
