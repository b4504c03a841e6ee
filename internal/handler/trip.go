package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tripplanner/backend/internal/domain"
)

// CreateTrip handles POST /api/trips.
func (s *Server) CreateTrip(w http.ResponseWriter, r *http.Request) {
	in, ok := decodeTripInput(w, r)
	if !ok {
		return
	}

	created, err := s.trips.Create(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// ListTrips handles GET /api/trips.
// Supports ?page= and ?limit= (defaults: page=1, limit=10, max=100) plus the
// destination, search, minBudget and maxBudget filters.
func (s *Server) ListTrips(w http.ResponseWriter, r *http.Request) {
	page, err := s.trips.List(r.Context(), tripQuery(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// GetTrip handles GET /api/trips/{id}.
func (s *Server) GetTrip(w http.ResponseWriter, r *http.Request) {
	trip, err := s.trips.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, trip)
}

// UpdateTrip handles PUT /api/trips/{id}. Only the fields present in the body
// are changed.
func (s *Server) UpdateTrip(w http.ResponseWriter, r *http.Request) {
	in, ok := decodeTripInput(w, r)
	if !ok {
		return
	}

	updated, err := s.trips.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// decodeTripInput reads a single JSON object from the request body. On
// failure it has already written the response and returns false.
func decodeTripInput(w http.ResponseWriter, r *http.Request) (domain.TripInput, bool) {
	var in domain.TripInput
	if r.Body == nil || r.Body == http.NoBody {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: msgInvalidBody})
		return in, false
	}

	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(&in); err != nil {
		writeDecodeError(w, err)
		return domain.TripInput{}, false
	}
	if dec.More() {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: msgInvalidBody})
		return domain.TripInput{}, false
	}
	return in, true
}
