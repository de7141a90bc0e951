package httpserver_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/authgateway/pkg/httpserver"
)

func TestServer_RunAndShutdown(t *testing.T) {
	t.Parallel()

	srv := httpserver.New(
		httpserver.WithAddr("127.0.0.1:0"),
		httpserver.WithShutdownTimeout(time.Second),
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- srv.Run(ctx, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, "pong")
		}))
	}()

	addrCtx, addrCancel := context.WithTimeout(context.Background(), time.Second)
	defer addrCancel()
	addr, err := srv.Addr(addrCtx)
	require.NoError(t, err)

	resp, err := http.Get("http://" + addr)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, "pong", string(body))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop")
	}

	assert.NoError(t, srv.Shutdown(context.Background()))
}

func TestServer_InFlightRequestCompletes(t *testing.T) {
	t.Parallel()

	srv := httpserver.New(httpserver.WithAddr("127.0.0.1:0"), httpserver.WithShutdownTimeout(2*time.Second))
	started := make(chan struct{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- srv.Run(ctx, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			close(started)
			time.Sleep(100 * time.Millisecond)
			w.WriteHeader(http.StatusNoContent)
		}))
	}()

	addr, err := srv.Addr(context.Background())
	require.NoError(t, err)

	respCh := make(chan int, 1)
	go func() {
		resp, err := http.Get("http://" + addr)
		if err != nil {
			respCh <- 0
			return
		}
		_ = resp.Body.Close()
		respCh <- resp.StatusCode
	}()

	<-started
	cancel()

	assert.Equal(t, http.StatusNoContent, <-respCh)
	assert.NoError(t, <-done)
}

func TestServer_StartFailure(t *testing.T) {
	t.Parallel()

	srv := httpserver.New(httpserver.WithAddr("256.0.0.1:0"))
	err := srv.Run(context.Background(), nil)
	assert.ErrorIs(t, err, httpserver.ErrStart)
}

func TestNewFromConfig(t *testing.T) {
	t.Parallel()

	srv := httpserver.NewFromConfig(httpserver.Config{Addr: "127.0.0.1:0"})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx, nil) }()

	addr, err := srv.Addr(context.Background())
	require.NoError(t, err)
	resp, err := http.Get("http://" + addr)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	cancel()
	assert.NoError(t, <-done)
}

func TestOptionsPanicOnInvalidValues(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { httpserver.WithAddr("") })
	assert.Panics(t, func() { httpserver.WithReadTimeout(0) })
	assert.Panics(t, func() { httpserver.WithReadHeaderTimeout(-1) })
	assert.Panics(t, func() { httpserver.WithWriteTimeout(0) })
	assert.Panics(t, func() { httpserver.WithIdleTimeout(0) })
	assert.Panics(t, func() { httpserver.WithShutdownTimeout(0) })
}

func TestHealthHandlers(t *testing.T) {
	t.Parallel()

	decode := func(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
		t.Helper()
		var out map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
		return out
	}

	t.Run("liveness", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		httpserver.LivenessHandler()(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "ALIVE", decode(t, rec)["status"])
	})

	t.Run("ready", func(t *testing.T) {
		t.Parallel()
		h := httpserver.ReadinessHandler(nil, map[string]httpserver.CheckFunc{
			"redis": func(context.Context) error { return nil },
		})
		rec := httptest.NewRecorder()
		h(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		body := decode(t, rec)
		assert.Equal(t, "READY", body["status"])
		assert.Equal(t, map[string]any{"redis": "OK"}, body["checks"])
	})

	t.Run("not ready", func(t *testing.T) {
		t.Parallel()
		h := httpserver.ReadinessHandler(nil, map[string]httpserver.CheckFunc{
			"redis":  func(context.Context) error { return errors.New("connection refused") },
			"config": func(context.Context) error { return nil },
		})
		rec := httptest.NewRecorder()
		h(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		body := decode(t, rec)
		assert.Equal(t, "NOT_READY", body["status"])
		assert.Equal(t, map[string]any{"redis": "FAIL", "config": "OK"}, body["checks"])
	})

	t.Run("checks receive a deadline", func(t *testing.T) {
		t.Parallel()
		var hasDeadline bool
		h := httpserver.ReadinessHandler(nil, map[string]httpserver.CheckFunc{
			"probe": func(ctx context.Context) error {
				_, hasDeadline = ctx.Deadline()
				return nil
			},
		})
		h(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health/ready", nil))
		assert.True(t, hasDeadline)
	})
}
