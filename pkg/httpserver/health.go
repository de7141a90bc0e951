package httpserver

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/dmitrymomot/authgateway/pkg/logger"
)

// CheckFunc reports whether a dependency is usable.
type CheckFunc func(context.Context) error

// DefaultCheckTimeout bounds each readiness check.
const DefaultCheckTimeout = 2 * time.Second

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// LivenessHandler always answers 200 while the process serves requests.
func LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeHealth(w, http.StatusOK, healthResponse{Status: "ALIVE"})
	}
}

// ReadinessHandler runs every named check with DefaultCheckTimeout and
// answers 200 when all pass, 503 otherwise.
func ReadinessHandler(log *slog.Logger, checks map[string]CheckFunc) http.HandlerFunc {
	if log == nil {
		log = slog.Default()
	}
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	slices.Sort(names)

	return func(w http.ResponseWriter, r *http.Request) {
		resp := healthResponse{Status: "READY", Checks: make(map[string]string, len(checks))}
		status := http.StatusOK

		for _, name := range names {
			ctx, cancel := context.WithTimeout(r.Context(), DefaultCheckTimeout)
			err := checks[name](ctx)
			cancel()

			if err != nil {
				log.ErrorContext(r.Context(), "readiness check failed",
					slog.String("check", name),
					logger.Error(err),
					logger.Component("httpserver"),
				)
				resp.Checks[name] = "FAIL"
				resp.Status = "NOT_READY"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = "OK"
		}

		writeHealth(w, status, resp)
	}
}

func writeHealth(w http.ResponseWriter, status int, resp healthResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
