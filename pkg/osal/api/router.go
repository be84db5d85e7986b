// Package api exposes a read-only chi-routed HTTP surface over
// pkg/osal's introspection snapshots, grounded on the teacher's
// pkg/controlplane/api router (request-id/real-ip/recoverer/timeout
// middleware stack, one handler per resource, RFC 7807 error bodies).
// Nothing under this package ever calls a mutating osal method.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/benhaub/abstractionlayer/internal/cli/health"
	"github.com/benhaub/abstractionlayer/internal/logger"
	"github.com/benhaub/abstractionlayer/pkg/osal"
)

// NewRouter builds the admin introspection router over os.
//
// Routes:
//   - GET /health      - liveness probe
//   - GET /threads     - every registered thread
//   - GET /semaphores  - every registered semaphore
//   - GET /queues      - every registered queue
//   - GET /timers      - every registered timer
//   - GET /status      - aggregate OperatingSystemStatus
func NewRouter(os *osal.Service) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(5 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, healthResponse(os))
	})
	r.Get("/threads", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, os.Threads())
	})
	r.Get("/semaphores", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, os.Semaphores())
	})
	r.Get("/queues", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, os.Queues())
	})
	r.Get("/timers", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, os.Timers())
	})
	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, os.Status(true))
	})

	return r
}

// healthResponse adapts an OperatingSystemStatus snapshot to the
// shared health.Response shape.
func healthResponse(os *osal.Service) health.Response {
	st := os.Status(true)
	uptime := time.Duration(st.UpTime) * time.Millisecond
	now := time.Now()

	var resp health.Response
	resp.Status = "ok"
	resp.Timestamp = now.Format(time.RFC3339)
	resp.Data.Service = "alhost"
	resp.Data.StartedAt = now.Add(-uptime).Format(time.RFC3339)
	resp.Data.Uptime = uptime.String()
	resp.Data.UptimeSec = int64(uptime.Seconds())
	return resp
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logger.Debug("osal/api: request",
			"path", r.URL.Path,
			logger.DurationMs(float64(time.Since(start).Microseconds())/1000),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("osal/api: failed to encode response", "error", err)
	}
}
