package api

import (
	"errors"
	"net/http"

	"github.com/okian/sensorsink/internal/domain/upload"
)

// FailureFor maps an upload error to its HTTP status and the client-facing
// error text. Errors of no known kind are reported verbatim as 500.
func FailureFor(err error) (int, string) {
	switch {
	case errors.Is(err, upload.ErrInvalidJSON):
		return http.StatusBadRequest, "Invalid JSON: " + upload.Detail(err)
	case errors.Is(err, upload.ErrNoData):
		return http.StatusBadRequest, "No data received"
	case errors.Is(err, upload.ErrInvalidFilename):
		return http.StatusBadRequest, "Invalid filename: " + upload.Detail(err)
	case errors.Is(err, upload.ErrPayloadTooLarge):
		return http.StatusRequestEntityTooLarge, "Payload too large: " + upload.Detail(err)
	default:
		return http.StatusInternalServerError, err.Error()
	}
}
