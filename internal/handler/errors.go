package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"reflect"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/tripplanner/backend/internal/domain"
)

// Error body messages. Clients match on these strings.
const (
	msgValidation  = "Validation failed"
	msgInvalidBody = "Invalid request body"
	msgNotFound    = "Trip not found"
	msgInternal    = "Internal server error"
	msgTooLarge    = "Request body too large"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string              `json:"error"`
	Details []domain.FieldError `json:"details,omitempty"`
}

// writeJSON encodes v as the response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps err onto a status and body:
//
//	*domain.ValidationError → 400 with field details
//	domain.ErrNotFound      → 404
//	anything else           → 500, logged with the request id
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: msgValidation, Details: verr.Fields})
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: msgNotFound})
	default:
		s.log.ErrorContext(r.Context(), "request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("request_id", chimiddleware.GetReqID(r.Context())),
			slog.Any("error", err),
		)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: msgInternal})
	}
}

// writeDecodeError answers a request whose JSON body could not be decoded.
// A well-formed body with a wrongly typed field is a validation failure on
// that field; anything else is an invalid body.
func writeDecodeError(w http.ResponseWriter, err error) {
	var (
		typeErr *json.UnmarshalTypeError
		sizeErr *http.MaxBytesError
	)
	switch {
	case errors.As(err, &sizeErr):
		writeJSON(w, http.StatusRequestEntityTooLarge, ErrorResponse{Error: msgTooLarge})
	case errors.As(err, &typeErr) && typeErr.Field != "":
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error: msgValidation,
			Details: []domain.FieldError{{
				Field:   typeErr.Field,
				Message: typeErr.Field + " must be " + jsonKind(typeErr.Type),
			}},
		})
	default:
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: msgInvalidBody})
	}
}

// jsonKind names t the way a JSON client would think of it.
func jsonKind(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "an integer"
	case reflect.Float32, reflect.Float64:
		return "a number"
	case reflect.String:
		return "a string"
	case reflect.Bool:
		return "a boolean"
	default:
		return "a " + t.Kind().String()
	}
}
