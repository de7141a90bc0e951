package requestid_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/authgateway/pkg/requestid"
)

func serve(t *testing.T, header string) (*httptest.ResponseRecorder, string) {
	t.Helper()

	var seen string
	handler := requestid.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = requestid.FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set(requestid.Header, header)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	return rec, seen
}

func TestMiddleware(t *testing.T) {
	t.Parallel()

	t.Run("generates id when absent", func(t *testing.T) {
		t.Parallel()
		rec, id := serve(t, "")
		_, err := uuid.Parse(id)
		assert.NoError(t, err)
		assert.Equal(t, id, rec.Header().Get(requestid.Header))
	})

	t.Run("keeps valid inbound id", func(t *testing.T) {
		t.Parallel()
		rec, id := serve(t, "edge-42_abc")
		assert.Equal(t, "edge-42_abc", id)
		assert.Equal(t, "edge-42_abc", rec.Header().Get(requestid.Header))
	})

	t.Run("replaces malformed id", func(t *testing.T) {
		t.Parallel()
		for _, bad := range []string{"a b", "x/y", "<script>", strings.Repeat("a", 129)} {
			rec, id := serve(t, bad)
			assert.NotEqual(t, bad, id)
			assert.Equal(t, id, rec.Header().Get(requestid.Header))
		}
	})
}

func TestContext(t *testing.T) {
	t.Parallel()

	_, ok := requestid.Lookup(context.Background())
	assert.False(t, ok)
	assert.Empty(t, requestid.FromContext(context.Background()))

	_, ok = requestid.Lookup(requestid.WithContext(context.Background(), ""))
	assert.False(t, ok)

	ctx := requestid.WithContext(context.Background(), "req-1")
	id, ok := requestid.Lookup(ctx)
	assert.True(t, ok)
	assert.Equal(t, "req-1", id)
}

func TestLoggerExtractor(t *testing.T) {
	t.Parallel()

	extract := requestid.LoggerExtractor()

	_, ok := extract(context.Background())
	assert.False(t, ok)

	attr, ok := extract(requestid.WithContext(context.Background(), "req-1"))
	require.True(t, ok)
	assert.Equal(t, "request_id", attr.Key)
	assert.Equal(t, "req-1", attr.Value.String())
}
