package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/pavelchuchma/vkct/internal/adapters/repository"
	"github.com/pavelchuchma/vkct/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// InfoDependencies exposes the published run summary.
type InfoDependencies interface {
	Info(ctx context.Context) (repository.Info, error)
}

// HealthHandler handles health check and metrics requests.
type HealthHandler struct {
	deps InfoDependencies
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(deps InfoDependencies) *HealthHandler {
	return &HealthHandler{deps: deps}
}

type healthResponse struct {
	Status string           `json:"status"`
	Run    *repository.Info `json:"run,omitempty"`
}

// HandleHealth handles GET /healthz. The service is healthy once a run has
// been published.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	info, err := h.deps.Info(r.Context())
	switch {
	case errors.Is(err, repository.ErrEmpty):
		writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "starting"})
	case err != nil:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	default:
		writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Run: &info})
	}
}

// MetricsHandler serves the custom metrics registry.
func (h *HealthHandler) MetricsHandler() http.Handler {
	return promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{})
}
