// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/sensorsink/internal/domain/upload"
)

// Uploader is the business dependency behind POST /upload.
type Uploader interface {
	Upload(ctx context.Context, filenameHint string, body []byte) (upload.Receipt, error)
}

// Info is the static service metadata reported by GET / and GET /health.
type Info struct {
	Service    string
	Version    string
	UploadsDir string
}

// Server wires HTTP routes for the business API.
type Server struct {
	uploadHandler  *UploadHandler
	healthHandler  *HealthHandler
	rootHandler    *RootHandler
	metricsHandler http.Handler
}

// NewServer creates a new API server with all handlers. maxBodyBytes caps
// the accepted upload body.
func NewServer(deps Uploader, info Info, maxBodyBytes int64) *Server {
	return &Server{
		uploadHandler:  NewUploadHandler(deps, maxBodyBytes),
		healthHandler:  NewHealthHandler(info),
		rootHandler:    NewRootHandler(info),
		metricsHandler: NewMetricsHandler(),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.HandleFunc("/upload", MetricsMiddleware(s.uploadHandler.HandleUpload, "upload"))
	mux.HandleFunc("/health", MetricsMiddleware(s.healthHandler.HandleHealth, "health"))
	mux.Handle("/metrics", s.metricsHandler)
	mux.HandleFunc("/", MetricsMiddleware(s.rootHandler.HandleRoot, "root"))
}

// Handler wraps mux with the cross-cutting middleware shared by all routes.
func Handler(mux http.Handler, allowedOrigins []string) http.Handler {
	return Recover(RequestID(CORS(allowedOrigins)(mux)))
}

// failureResponse is the envelope for every failed upload.
type failureResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		status = http.StatusInternalServerError
		buf.Reset()
		_ = json.NewEncoder(&buf).Encode(failureResponse{Success: false, Error: err.Error()})
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func writeFailure(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, failureResponse{Success: false, Error: msg})
}
