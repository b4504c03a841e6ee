// Package domain contains the core data types for the Trip Planner application.
// It is imported by every other internal package (repo, service, handler, client)
// and depends on nothing but the standard library.
package domain

import (
	"strings"
	"time"
)

// Trip represents one planned trip.
// ID and CreatedAt are assigned by the store on creation and never change.
type Trip struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Destination string    `json:"destination"`
	Days        int       `json:"days"`
	Budget      float64   `json:"budget"`
	CreatedAt   time.Time `json:"createdAt"`
}

// TripInput carries the client-supplied fields of a trip.
// A nil field was absent from the request: Create requires every field,
// Update applies only the fields that are present.
type TripInput struct {
	Title       *string  `json:"title,omitempty"`
	Destination *string  `json:"destination,omitempty"`
	Days        *int     `json:"days,omitempty"`
	Budget      *float64 `json:"budget,omitempty"`
}

// Normalize returns a copy of the input with surrounding whitespace removed
// from the text fields. The pointed-to values of the receiver are not modified.
func (in TripInput) Normalize() TripInput {
	out := in
	if in.Title != nil {
		t := strings.TrimSpace(*in.Title)
		out.Title = &t
	}
	if in.Destination != nil {
		d := strings.TrimSpace(*in.Destination)
		out.Destination = &d
	}
	return out
}

// IsEmpty reports whether no field is present.
func (in TripInput) IsEmpty() bool {
	return in.Title == nil && in.Destination == nil && in.Days == nil && in.Budget == nil
}

// ToTrip builds a Trip from a fully populated input.
// Absent fields become zero values; callers validate before calling.
func (in TripInput) ToTrip() Trip {
	var t Trip
	if in.Title != nil {
		t.Title = *in.Title
	}
	if in.Destination != nil {
		t.Destination = *in.Destination
	}
	if in.Days != nil {
		t.Days = *in.Days
	}
	if in.Budget != nil {
		t.Budget = *in.Budget
	}
	return t
}

// Apply returns t with every present field of in copied over it.
// ID and CreatedAt are never touched.
func (in TripInput) Apply(t Trip) Trip {
	if in.Title != nil {
		t.Title = *in.Title
	}
	if in.Destination != nil {
		t.Destination = *in.Destination
	}
	if in.Days != nil {
		t.Days = *in.Days
	}
	if in.Budget != nil {
		t.Budget = *in.Budget
	}
	return t
}
