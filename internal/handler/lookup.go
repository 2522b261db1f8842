package handler

import (
	"net/http"

	"github.com/oapi-codegen/runtime"
)

// ListClients handles GET /api/clients.
func (s *Server) ListClients(w http.ResponseWriter, r *http.Request) {
	items, err := s.lookups.Clients(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// ListProjects handles GET /api/projects?clientId=.
// A missing or empty clientId is rejected by the service before any upstream call.
func (s *Server) ListProjects(w http.ResponseWriter, r *http.Request) {
	var clientID *string
	if err := runtime.BindQueryParameter("form", true, false, "clientId", r.URL.Query(), &clientID); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "invalid clientId", nil)
		return
	}

	var id string
	if clientID != nil {
		id = *clientID
	}
	items, err := s.lookups.Projects(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}
