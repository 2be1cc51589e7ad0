package api

import (
	"net/http"
)

type rootResponse struct {
	Service   string            `json:"service"`
	Version   string            `json:"version"`
	Endpoints map[string]string `json:"endpoints"`
	Usage     usage             `json:"usage"`
}

type usage struct {
	Upload  string `json:"upload"`
	Example string `json:"example"`
}

// RootHandler describes the service and its endpoints.
type RootHandler struct {
	info Info
}

// NewRootHandler creates a new root handler.
func NewRootHandler(info Info) *RootHandler {
	return &RootHandler{info: info}
}

// HandleRoot handles GET / requests. Any other path under / is not found.
func (h *RootHandler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" || (r.Method != http.MethodGet && r.Method != http.MethodHead) {
		http.NotFound(w, r)
		return
	}

	base := "http://" + r.Host
	writeJSON(w, http.StatusOK, rootResponse{
		Service: h.info.Service,
		Version: h.info.Version,
		Endpoints: map[string]string{
			"POST /upload":      "Upload sensor data from Watch app",
			"GET /health":       "Health check",
			"GET /metrics":      "Prometheus metrics",
			"GET /openapi.yaml": "OpenAPI description",
			"GET /api-docs":     "API documentation",
			"GET /":             "This information",
		},
		Usage: usage{
			Upload: "POST /upload with JSON body and X-Filename header",
			Example: "curl -X POST " + base + "/upload -H \"Content-Type: application/json\" " +
				"-H \"X-Filename: test.json\" -d @sample-data.json",
		},
	})
}
