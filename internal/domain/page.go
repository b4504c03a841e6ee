package domain

import "math"

// Pagination defaults shared by the HTTP layer and the client.
const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// PaginationParams carries page/limit values from the HTTP layer to the repo layer.
// Page is 1-indexed. Limit is capped at MaxLimit by NewPaginationParams.
type PaginationParams struct {
	// Page is the current page number, starting at 1.
	Page int
	// Limit is the maximum number of items to return.
	Limit int
}

// NewPaginationParams builds a PaginationParams from optional HTTP query params.
// Nil pointers and values below 1 fall back to the defaults (page=1, limit=10),
// so a limit of 0 never reaches the store. The limit is capped at 100 and the
// page is capped so Offset cannot overflow.
func NewPaginationParams(page, limit *int) PaginationParams {
	p := PaginationParams{Page: DefaultPage, Limit: DefaultLimit}
	if page != nil && *page >= 1 {
		p.Page = *page
	}
	if limit != nil && *limit >= 1 {
		p.Limit = *limit
		if p.Limit > MaxLimit {
			p.Limit = MaxLimit
		}
	}
	if maxPage := math.MaxInt / p.Limit; p.Page > maxPage {
		p.Page = maxPage
	}
	return p
}

// Offset returns the zero-based number of records to skip.
func (p PaginationParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

// TripPage is one page of a filtered trip listing.
type TripPage struct {
	Trips      []Trip `json:"trips"`
	Total      int64  `json:"total"`
	Page       int    `json:"page"`
	Limit      int    `json:"limit"`
	TotalPages int    `json:"totalPages"`
}

// NewTripPage assembles a TripPage and derives TotalPages = ceil(total / limit).
// Trips is never nil so the JSON encoding is always an array.
func NewTripPage(trips []Trip, total int64, p PaginationParams) TripPage {
	if trips == nil {
		trips = []Trip{}
	}
	return TripPage{
		Trips:      trips,
		Total:      total,
		Page:       p.Page,
		Limit:      p.Limit,
		TotalPages: TotalPages(total, p.Limit),
	}
}

// TotalPages returns ceil(total / limit). A non-positive limit yields 0.
func TotalPages(total int64, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	l := int64(limit)
	return int((total + l - 1) / l)
}
