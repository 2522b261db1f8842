package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/oapi-codegen/runtime"

	"github.com/pkordes/haul-slips/internal/domain"
	"github.com/pkordes/haul-slips/internal/export"
)

// CreateSlip handles POST /api/slips.
// Any validation failure is reported as 400; the slip is never stored or exported.
func (s *Server) CreateSlip(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "payload_too_large", "request body too large", nil)
			return
		}
		writeError(w, http.StatusBadRequest, "validation_error", "could not read request body", nil)
		return
	}

	slip, err := s.slips.Create(r.Context(), decodeSubmission(body))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, slip)
}

// ListSlips handles GET /api/slips.
// Supports ?limit= (default 100). A limit that is not an integer falls back
// to the default rather than failing the request.
func (s *Server) ListSlips(w http.ResponseWriter, r *http.Request) {
	var limit *int
	if err := runtime.BindQueryParameter("form", true, false, "limit", r.URL.Query(), &limit); err != nil {
		limit = nil
	}

	slips, err := s.slips.List(r.Context(), domain.NewListParams(limit))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, slips)
}

// ExportSlips handles GET /api/slips/export.csv.
// It returns every stored slip as a CSV attachment.
func (s *Server) ExportSlips(w http.ResponseWriter, r *http.Request) {
	data, err := s.slips.ExportCSV(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename="+export.ExportFilename)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// decodeSubmission parses a JSON object body. A body that is empty, not JSON,
// or not an object yields an empty submission, which the validator then
// reports as missing every required field.
func decodeSubmission(body []byte) domain.Submission {
	var sub domain.Submission
	if err := json.Unmarshal(body, &sub); err != nil || sub == nil {
		return domain.Submission{}
	}
	return sub
}
