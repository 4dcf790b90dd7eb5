package rest

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/bibbank/fraudscore/pkg/postgres"
)

// HealthHandler provides liveness and readiness endpoints.
type HealthHandler struct {
	service   string
	db        postgres.Pinger
	logger    *slog.Logger
	startTime time.Time
}

// NewHealthHandler creates a health handler. A nil db skips the database check.
func NewHealthHandler(service string, db postgres.Pinger, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		service:   service,
		db:        db,
		logger:    logger,
		startTime: time.Now(),
	}
}

// HealthResponse is the JSON response for health checks.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Uptime  string `json:"uptime"`
}

// ReadinessResponse is the JSON response for readiness checks.
type ReadinessResponse struct {
	Status  string            `json:"status"`
	Service string            `json:"service"`
	Checks  map[string]string `json:"checks"`
}

// RegisterRoutes registers health endpoints on the provided ServeMux.
func (h *HealthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", h.Healthz)
	mux.HandleFunc("GET /readyz", h.Readyz)
}

// Healthz handles liveness probe requests.
func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "healthy",
		Service: h.service,
		Uptime:  time.Since(h.startTime).Round(time.Second).String(),
	})
}

// Readyz reports ready only when the database answers a ping.
func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	resp := ReadinessResponse{
		Status:  "ready",
		Service: h.service,
		Checks:  map[string]string{"database": "ok"},
	}
	code := http.StatusOK

	if h.db == nil {
		resp.Checks["database"] = "disabled"
	} else {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := postgres.HealthCheck(ctx, h.db); err != nil {
			h.logger.WarnContext(r.Context(), "readiness check failed", "error", err)
			resp.Status = "unavailable"
			resp.Checks["database"] = "unreachable"
			code = http.StatusServiceUnavailable
		}
	}

	writeJSON(w, code, resp)
}
