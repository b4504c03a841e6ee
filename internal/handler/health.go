package handler

import (
	"net/http"
	"time"
)

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status    string         `json:"status"`
	Timestamp time.Time      `json:"timestamp"`
	Database  DatabaseHealth `json:"database"`
}

// DatabaseHealth reports the outcome of the startup connection check.
type DatabaseHealth struct {
	Connected bool   `json:"connected"`
	Status    string `json:"status"`
}

// GetHealth handles GET /health.
// It always returns 200: a store that was unreachable at startup is reported,
// not treated as a failed process.
func (s *Server) GetHealth(w http.ResponseWriter, _ *http.Request) {
	db := DatabaseHealth{Connected: s.dbConnected, Status: "Disconnected"}
	if s.dbConnected {
		db.Status = "Connected"
	}
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "OK",
		Timestamp: s.now().UTC(),
		Database:  db,
	})
}
