package clientip

import (
	"net"
	"net/http"
	"strings"
)

// forwardingHeaders are consulted in order before falling back to RemoteAddr.
var forwardingHeaders = []string{
	"X-Forwarded-For",
	"Proxy-Client-IP",
	"WL-Proxy-Client-IP",
	"X-Real-IP",
}

const unknownValue = "unknown"

// GetIP returns the client's address from an HTTP request.
// Forwarding headers are checked in priority order; for comma-separated
// values only the first entry counts. Empty values and the literal
// "unknown" are skipped. RemoteAddr (without port) is the fallback.
func GetIP(r *http.Request) string {
	for _, h := range forwardingHeaders {
		v := strings.TrimSpace(r.Header.Get(h))
		if v == "" || strings.EqualFold(v, unknownValue) {
			continue
		}
		first, _, _ := strings.Cut(v, ",")
		if ip := normalize(first); ip != "" {
			return ip
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return normalize(r.RemoteAddr)
	}
	return normalize(host)
}

// normalize canonicalizes valid IPs and passes other non-empty tokens through,
// so a proxy that forwards hostnames still yields a stable limiter key.
func normalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, unknownValue) {
		return ""
	}
	if ip := net.ParseIP(s); ip != nil {
		return ip.String()
	}
	return s
}

// UserAgent returns the User-Agent header or "Unknown" when absent.
func UserAgent(r *http.Request) string {
	if ua := strings.TrimSpace(r.UserAgent()); ua != "" {
		return ua
	}
	return "Unknown"
}
