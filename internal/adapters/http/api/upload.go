// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/okian/sensorsink/internal/domain/upload"
	"github.com/okian/sensorsink/pkg/logger"
)

const uploadSuccessMessage = "File uploaded successfully"

// uploadResponse mirrors the OpenAPI schema for a successful POST /upload.
type uploadResponse struct {
	Success      bool              `json:"success"`
	Message      string            `json:"message"`
	Filename     string            `json:"filename"`
	FileSize     int64             `json:"fileSize"`
	Statistics   upload.Statistics `json:"statistics"`
	TotalSamples int               `json:"totalSamples"`
}

// UploadHandler handles sensor payload uploads.
type UploadHandler struct {
	deps         Uploader
	maxBodyBytes int64
}

// NewUploadHandler creates a new upload handler.
func NewUploadHandler(deps Uploader, maxBodyBytes int64) *UploadHandler {
	return &UploadHandler{deps: deps, maxBodyBytes: maxBodyBytes}
}

// HandleUpload handles POST and OPTIONS /upload requests.
func (h *UploadHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	const op = "api.upload"
	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusOK)
		return
	case http.MethodPost:
	default:
		w.Header().Set("Allow", "POST, OPTIONS")
		writeFailure(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var reader io.Reader = r.Body
	if h.maxBodyBytes > 0 {
		reader = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			err = upload.WrapKind(op, upload.ErrPayloadTooLarge, err)
		}
		h.fail(w, r, err)
		return
	}

	receipt, err := h.deps.Upload(r.Context(), r.Header.Get(upload.FilenameHeader), body)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, uploadResponse{
		Success:      true,
		Message:      uploadSuccessMessage,
		Filename:     receipt.Filename,
		FileSize:     receipt.FileSize,
		Statistics:   receipt.Statistics,
		TotalSamples: receipt.TotalSamples,
	})
}

func (h *UploadHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := FailureFor(err)
	if status >= http.StatusInternalServerError {
		logger.Named("api").Error(r.Context(), "upload failed", logger.Int("status", status), logger.Error(err))
	}
	writeFailure(w, status, msg)
}
