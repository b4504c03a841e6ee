// Package handler implements the HTTP handlers for the Trip Planner API.
// All handlers are methods on Server. Methods are split into domain-specific
// files (health.go, trip.go, export.go) but share the same Server struct so
// they can access its dependencies.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tripplanner/backend/internal/domain"
	"github.com/tripplanner/backend/spec"
)

// TripServicer defines the business operations the trip handlers depend on.
// Defining the interface here (in the consumer package) follows the Go
// convention: "accept interfaces, return concrete types". It lets handler
// tests inject a mock without touching the database or service layer.
type TripServicer interface {
	Create(ctx context.Context, in domain.TripInput) (domain.Trip, error)
	GetByID(ctx context.Context, id string) (domain.Trip, error)
	List(ctx context.Context, q domain.TripQuery) (domain.TripPage, error)
	Update(ctx context.Context, id string, in domain.TripInput) (domain.Trip, error)
	Export(ctx context.Context, f domain.TripFilter) ([]domain.Trip, error)
}

// Server holds the dependencies shared by every endpoint.
type Server struct {
	trips TripServicer
	log   *slog.Logger
	now   func() time.Time

	// dbConnected is the outcome of the startup ping. It is set once and
	// never updated.
	dbConnected bool
}

// NewServer constructs the Server with all its dependencies.
func NewServer(trips TripServicer, dbConnected bool, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{trips: trips, log: log, now: time.Now, dbConnected: dbConnected}
}

// Routes registers every endpoint on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.GetHealth)
	r.Get("/openapi.yaml", serveOpenAPI)

	r.Route("/api/trips", func(r chi.Router) {
		r.Post("/", s.CreateTrip)
		r.Get("/", s.ListTrips)
		r.Get("/export", s.ExportTrips)
		r.Get("/{id}", s.GetTrip)
		r.Put("/{id}", s.UpdateTrip)
	})
}

// Handler returns a bare router serving Routes, without middleware.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	s.Routes(r)
	return r
}

func serveOpenAPI(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(spec.OpenAPI)
}
