package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/pkordes/haul-slips/internal/domain"
)

// errorDetail is the body of every non-2xx JSON response.
type errorDetail struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Fields  []string `json:"fields,omitempty"`
}

type errorResponse struct {
	Error errorDetail `json:"error"`
}

// writeJSON encodes v as the response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string, fields []string) {
	writeJSON(w, status, errorResponse{Error: errorDetail{Code: code, Message: message, Fields: fields}})
}

// writeServiceError maps a service error onto its HTTP status and error code.
// Unrecognised errors are logged and reported as 500 without their cause.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var missing *domain.MissingFieldsError
	switch {
	case errors.As(err, &missing):
		writeError(w, http.StatusBadRequest, "missing_fields", missing.Error(), missing.Fields)
	case errors.Is(err, domain.ErrInvalidTimeOrder):
		writeError(w, http.StatusBadRequest, "invalid_time_order", unwrapMessage(err), nil)
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusBadRequest, "validation_error", unwrapMessage(err), nil)
	case errors.Is(err, domain.ErrNotConfigured):
		writeError(w, http.StatusServiceUnavailable, "not_configured", sentinelMessage(err, domain.ErrNotConfigured), nil)
	case errors.Is(err, domain.ErrUpstream):
		writeError(w, http.StatusBadGateway, "upstream_error", upstreamMessage(err), nil)
	default:
		s.log.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error", nil)
	}
}

// unwrapMessage extracts the human-readable part from a wrapped validation error.
// e.g. "service.LookupService.Projects: validation error: clientId is required" → "clientId is required"
func unwrapMessage(err error) string {
	msg := err.Error()
	prefix := domain.ErrValidation.Error() + ": "
	if i := strings.LastIndex(msg, prefix); i >= 0 {
		return msg[i+len(prefix):]
	}
	return msg
}

// sentinelMessage returns err's text from the sentinel onwards, dropping the
// "pkg.Type.Method: " wrapping added on the way up.
func sentinelMessage(err, sentinel error) string {
	msg := err.Error()
	if i := strings.Index(msg, sentinel.Error()); i >= 0 {
		return msg[i:]
	}
	return sentinel.Error()
}

// upstreamMessage returns the UpstreamError text without the service wrapping.
func upstreamMessage(err error) string {
	var ue *domain.UpstreamError
	if errors.As(err, &ue) {
		return ue.Error()
	}
	return sentinelMessage(err, domain.ErrUpstream)
}
