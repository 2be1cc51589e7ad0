// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"

	"github.com/okian/sensorsink/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type healthResponse struct {
	Status     string `json:"status"`
	Service    string `json:"service"`
	UploadsDir string `json:"uploads_dir"`
}

// HealthHandler handles health check requests.
type HealthHandler struct {
	resp healthResponse
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(info Info) *HealthHandler {
	return &HealthHandler{resp: healthResponse{
		Status:     "ok",
		Service:    info.Service,
		UploadsDir: info.UploadsDir,
	}}
}

// HandleHealth handles GET /health requests. The response does not depend on
// upload history.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.resp)
}

// NewMetricsHandler serves the Prometheus exposition of our custom registry.
func NewMetricsHandler() http.Handler {
	return promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{})
}
