package clientip_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/authgateway/pkg/clientip"
)

func TestGetIP(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		headers    map[string]string
		remoteAddr string
		expected   string
	}{
		{
			name:       "single forwarded for",
			headers:    map[string]string{"X-Forwarded-For": "192.168.1.1"},
			remoteAddr: "10.0.0.9:1234",
			expected:   "192.168.1.1",
		},
		{
			name:       "forwarded for takes first entry",
			headers:    map[string]string{"X-Forwarded-For": "10.0.0.1, 10.0.0.2, 10.0.0.3"},
			remoteAddr: "10.0.0.9:1234",
			expected:   "10.0.0.1",
		},
		{
			name: "unknown is skipped",
			headers: map[string]string{
				"X-Forwarded-For": "unknown",
				"Proxy-Client-IP": "172.16.0.1",
			},
			remoteAddr: "10.0.0.9:1234",
			expected:   "172.16.0.1",
		},
		{
			name: "weblogic header",
			headers: map[string]string{
				"Proxy-Client-IP":    "UNKNOWN",
				"WL-Proxy-Client-IP": "172.16.0.2",
				"X-Real-IP":          "172.16.0.3",
			},
			remoteAddr: "10.0.0.9:1234",
			expected:   "172.16.0.2",
		},
		{
			name:       "real ip",
			headers:    map[string]string{"X-Real-IP": "203.0.113.7"},
			remoteAddr: "10.0.0.9:1234",
			expected:   "203.0.113.7",
		},
		{
			name:       "remote addr fallback",
			remoteAddr: "127.0.0.1:54321",
			expected:   "127.0.0.1",
		},
		{
			name:       "remote addr without port",
			remoteAddr: "127.0.0.1",
			expected:   "127.0.0.1",
		},
		{
			name:       "ipv6 normalized",
			headers:    map[string]string{"X-Forwarded-For": "2001:0db8:0000:0000:0000:0000:0000:0001"},
			remoteAddr: "[::1]:80",
			expected:   "2001:db8::1",
		},
		{
			name:       "ipv6 remote addr",
			remoteAddr: "[::1]:8080",
			expected:   "::1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.expected, clientip.GetIP(req))
		})
	}
}

func TestUserAgent(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("User-Agent", "Mozilla/5.0")
	assert.Equal(t, "Mozilla/5.0", clientip.UserAgent(req))

	req.Header.Del("User-Agent")
	assert.Equal(t, "Unknown", clientip.UserAgent(req))
}

func TestMiddleware(t *testing.T) {
	t.Parallel()

	var got string
	h := clientip.Middleware(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		got = clientip.GetIPFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "1.2.3.4, 5.6.7.8")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "1.2.3.4", got)
}

func TestLoggerExtractor(t *testing.T) {
	t.Parallel()

	_, ok := clientip.LoggerExtractor()(context.Background())
	assert.False(t, ok)

	attr, ok := clientip.LoggerExtractor()(clientip.SetIPToContext(context.Background(), "1.2.3.4"))
	require.True(t, ok)
	assert.Equal(t, "client_ip", attr.Key)
	assert.Equal(t, "1.2.3.4", attr.Value.String())
}
