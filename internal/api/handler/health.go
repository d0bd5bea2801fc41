package handler

import (
	"context"
	"net/http"
)

type HealthResponse struct {
	Status string `json:"status"`
}

// Health reports process liveness only.
func Health(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
	})
}

// Pinger reports reachability of one backing dependency.
type Pinger interface {
	Ping(ctx context.Context) error
}

type ReadinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// ReadinessHandler reports whether the hard dependencies are reachable.
// The shared cache tier is deliberately excluded: it is fail-open and
// its outage does not make the service unready.
type ReadinessHandler struct {
	checks map[string]Pinger
}

// NewReadinessHandler creates a handler over named dependency checks.
func NewReadinessHandler(checks map[string]Pinger) *ReadinessHandler {
	return &ReadinessHandler{checks: checks}
}

// Ready handles GET /ready, returning 503 when any check fails.
func (h *ReadinessHandler) Ready(w http.ResponseWriter, r *http.Request) {
	resp := ReadinessResponse{
		Status: "ready",
		Checks: make(map[string]string, len(h.checks)),
	}
	status := http.StatusOK

	for name, pinger := range h.checks {
		if err := pinger.Ping(r.Context()); err != nil {
			resp.Checks[name] = "unavailable"
			resp.Status = "unready"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[name] = "ok"
	}

	JSON(w, status, resp)
}
