package api

import (
	"net/http"

	"github.com/studygen/studygen-api/internal/api/shared"
	"github.com/studygen/studygen-api/internal/provider"
)

// HealthResponse reports overall service status plus per-provider health.
type HealthResponse struct {
	Status    string                        `json:"status"`
	Providers []provider.DescriptorSnapshot `json:"providers"`
}

// HealthHandler handles service health checks.
type HealthHandler struct {
	table *provider.Table
}

// NewHealthHandler creates a new HealthHandler over the provider health table.
func NewHealthHandler(table *provider.Table) *HealthHandler {
	return &HealthHandler{
		table: table,
	}
}

// Healthz handles GET /healthz. The service reports degraded when any
// provider is below healthy, and unavailable when none are usable.
func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	snapshots := h.table.Snapshots()

	healthy := 0
	usable := 0
	for _, s := range snapshots {
		if s.State == provider.StateHealthy {
			healthy++
		}
		if s.State != provider.StateUnhealthy {
			usable++
		}
	}

	status := "ok"
	code := http.StatusOK
	switch {
	case len(snapshots) == 0 || usable == 0:
		status = "unavailable"
		code = http.StatusServiceUnavailable
	case healthy < len(snapshots):
		status = "degraded"
	}

	shared.RespondWithJSON(w, r, code, HealthResponse{
		Status:    status,
		Providers: snapshots,
	})
}
