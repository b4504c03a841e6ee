package domain

import (
	"strconv"
	"strings"
)

// TripFilter holds the optional predicates of a trip listing.
// Empty strings and nil bounds mean "not set". All predicates are ANDed.
type TripFilter struct {
	// Destination is a case-insensitive substring of the destination.
	Destination string
	// Search is a case-insensitive substring of the title OR the destination.
	Search string
	// MinBudget and MaxBudget are inclusive bounds on the budget.
	MinBudget *float64
	MaxBudget *float64
}

// IsEmpty reports whether the filter matches every trip.
func (f TripFilter) IsEmpty() bool {
	return f.Destination == "" && f.Search == "" && f.MinBudget == nil && f.MaxBudget == nil
}

// TripQuery is a filter plus the page to return.
type TripQuery struct {
	Filter TripFilter
	Page   PaginationParams
}

// CacheKey returns a stable string identifying the query, for use as a cache key suffix.
func (q TripQuery) CacheKey() string {
	var b strings.Builder
	b.WriteString("p=")
	b.WriteString(strconv.Itoa(q.Page.Page))
	b.WriteString("&l=")
	b.WriteString(strconv.Itoa(q.Page.Limit))
	b.WriteString("&d=")
	b.WriteString(strconv.Quote(q.Filter.Destination))
	b.WriteString("&s=")
	b.WriteString(strconv.Quote(q.Filter.Search))
	b.WriteString("&min=")
	b.WriteString(formatBound(q.Filter.MinBudget))
	b.WriteString("&max=")
	b.WriteString(formatBound(q.Filter.MaxBudget))
	return b.String()
}

func formatBound(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'g', -1, 64)
}
