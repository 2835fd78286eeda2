// Package shared centralizes domain error translation to HTTP responses so
// every handler emits the same JSON error envelope.
package shared

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	dErrors "velofit/pkg/domain-errors"
	httpErrors "velofit/pkg/http-errors"
)

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// WriteError maps a domain error onto an HTTP status and JSON envelope.
// Rate limited responses additionally carry a Retry-After hint.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeInternal
	message := ""

	var domainErr *dErrors.Error
	if errors.As(err, &domainErr) {
		code = domainErr.Code
		message = domainErr.Message
	}

	status := httpErrors.ToHTTPStatus(code)
	if status == http.StatusInternalServerError {
		// Never leak internals to clients.
		message = ""
	}
	if code == dErrors.CodeRateLimited {
		w.Header().Set("Retry-After", strconv.Itoa(60))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: string(code), Message: message})
}
