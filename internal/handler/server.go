// Package handler implements the HTTP transport for the haul slip service.
// Handlers are thin: they decode the request, call a service, and map the
// result or error onto a JSON response. Methods are split into domain-specific
// files (slip.go, lookup.go, health.go) but share the same Server struct.
package handler

import (
	"context"
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/pkordes/haul-slips/internal/domain"
)

// SlipServicer defines the ingestion operations the slip handlers depend on.
// Defining the interface here (in the consumer package) lets handler tests
// inject a mock without touching the database or the CSV mirror.
type SlipServicer interface {
	Create(ctx context.Context, sub domain.Submission) (domain.Slip, error)
	List(ctx context.Context, p domain.ListParams) ([]domain.Slip, error)
	ExportCSV(ctx context.Context) ([]byte, error)
}

// LookupServicer defines the cached upstream lookups the lookup handlers depend on.
type LookupServicer interface {
	Clients(ctx context.Context) ([]domain.LookupItem, error)
	Projects(ctx context.Context, clientID string) ([]domain.LookupItem, error)
}

// Server holds the dependencies shared by every handler.
type Server struct {
	slips   SlipServicer
	lookups LookupServicer
	log     *slog.Logger
}

// NewServer constructs the Server with all its dependencies.
func NewServer(slips SlipServicer, lookups LookupServicer, log *slog.Logger) *Server {
	return &Server{slips: slips, lookups: lookups, log: log}
}

// Register mounts every API route on r. Router-wide middleware, /metrics and
// static assets are the caller's concern.
func (s *Server) Register(r chi.Router) {
	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", s.GetOpenAPI)

	r.Route("/api", func(r chi.Router) {
		r.Post("/slips", s.CreateSlip)
		r.Get("/slips", s.ListSlips)
		r.Get("/slips/export.csv", s.ExportSlips)
		r.Get("/clients", s.ListClients)
		r.Get("/projects", s.ListProjects)
	})
}

// Routes returns a router with only the API routes registered.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	s.Register(r)
	return r
}
