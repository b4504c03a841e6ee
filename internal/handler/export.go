package handler

import (
	"bytes"
	"encoding/csv"
	"net/http"
	"strconv"
	"time"

	"github.com/tripplanner/backend/internal/domain"
)

// csvHeaders defines the column names written as the first row of any CSV export.
var csvHeaders = []string{"id", "title", "destination", "days", "budget", "created_at"}

// ExportTrips handles GET /api/trips/export.
// It returns every trip matching the listing filters, newest first, without
// pagination. Use ?format=csv to receive CSV; default is JSON.
func (s *Server) ExportTrips(w http.ResponseWriter, r *http.Request) {
	trips, err := s.trips.Export(r.Context(), tripFilter(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if format := queryParam[string](r, "format"); format != nil && *format == "csv" {
		writeCSV(w, trips)
		return
	}
	writeJSON(w, http.StatusOK, trips)
}

// writeCSV encodes trips as CSV with a header row.
func writeCSV(w http.ResponseWriter, trips []domain.Trip) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)

	//nolint:errcheck // bytes.Buffer.Write never returns an error.
	cw.Write(csvHeaders)
	for _, t := range trips {
		//nolint:errcheck
		cw.Write(tripToCSVRecord(t))
	}
	cw.Flush()

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="trips.csv"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// tripToCSVRecord encodes a trip as a flat string slice.
// Budgets use the shortest decimal form; createdAt is RFC 3339 in UTC.
func tripToCSVRecord(t domain.Trip) []string {
	return []string{
		t.ID,
		t.Title,
		t.Destination,
		strconv.Itoa(t.Days),
		strconv.FormatFloat(t.Budget, 'f', -1, 64),
		t.CreatedAt.UTC().Format(time.RFC3339),
	}
}
