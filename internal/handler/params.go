package handler

import (
	"math"
	"net/http"
	"strings"

	"github.com/oapi-codegen/runtime"

	"github.com/tripplanner/backend/internal/domain"
)

// queryParam binds the optional form-style query parameter name into dest.
// A missing or unparsable value leaves dest nil: listing parameters are
// normalised, never rejected.
func queryParam[T any](r *http.Request, name string) *T {
	var dest *T
	if err := runtime.BindQueryParameter("form", true, false, name, r.URL.Query(), &dest); err != nil {
		return nil
	}
	return dest
}

// tripFilter reads the listing predicates shared by list and export.
// Blank strings are treated as absent.
func tripFilter(r *http.Request) domain.TripFilter {
	var f domain.TripFilter
	if v := queryParam[string](r, "destination"); v != nil {
		f.Destination = strings.TrimSpace(*v)
	}
	if v := queryParam[string](r, "search"); v != nil {
		f.Search = strings.TrimSpace(*v)
	}
	f.MinBudget = finite(queryParam[float64](r, "minBudget"))
	f.MaxBudget = finite(queryParam[float64](r, "maxBudget"))
	return f
}

// finite drops NaN and infinite bounds, which strconv accepts but no budget matches.
func finite(v *float64) *float64 {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return nil
	}
	return v
}

// tripQuery reads the filter plus page and limit, applying defaults.
func tripQuery(r *http.Request) domain.TripQuery {
	return domain.TripQuery{
		Filter: tripFilter(r),
		Page:   domain.NewPaginationParams(queryParam[int](r, "page"), queryParam[int](r, "limit")),
	}
}
