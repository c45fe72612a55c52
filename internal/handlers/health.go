package handlers

import (
	"net/http"
	"time"
)

// ReadinessProbe reports whether the service can serve catalog traffic.
type ReadinessProbe func() error

// HealthHandlers exposes liveness and readiness endpoints.
type HealthHandlers struct {
	started time.Time
	probe   ReadinessProbe
}

// NewHealthHandlers constructs health handlers. A nil probe means always
// ready.
func NewHealthHandlers(probe ReadinessProbe) *HealthHandlers {
	return &HealthHandlers{started: time.Now(), probe: probe}
}

// Healthz reports process liveness.
func (h *HealthHandlers) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"uptime":    time.Since(h.started).String(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Readyz reports whether the dataset snapshot is loaded and serving.
func (h *HealthHandlers) Readyz(w http.ResponseWriter, r *http.Request) {
	if h.probe != nil {
		if err := h.probe(); err != nil {
			writeJSONResponse(w, http.StatusServiceUnavailable, map[string]any{
				"status": "unavailable",
				"reason": err.Error(),
			})
			return
		}
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"status": "ready"})
}
