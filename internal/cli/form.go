package cli

import (
	"math"
	"strconv"
	"strings"

	"github.com/tripplanner/backend/internal/domain"
)

// tripForm is the raw text entered for a trip.
type tripForm struct {
	title, destination, days, budget string
}

// input converts the form to a TripInput. With partial set, blank fields are
// left absent; otherwise they are reported as errors. Messages match the
// API's validation messages.
func (f tripForm) input(partial bool) (domain.TripInput, []domain.FieldError) {
	var (
		in   domain.TripInput
		errs []domain.FieldError
	)
	fail := func(field, msg string) {
		errs = append(errs, domain.FieldError{Field: field, Message: msg})
	}

	if v := strings.TrimSpace(f.title); v != "" {
		in.Title = &v
	} else if !partial {
		fail("title", "Title is required")
	}

	if v := strings.TrimSpace(f.destination); v != "" {
		in.Destination = &v
	} else if !partial {
		fail("destination", "Destination is required")
	}

	if v := strings.TrimSpace(f.days); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			fail("days", "Days must be a positive integer")
		} else {
			in.Days = &n
		}
	} else if !partial {
		fail("days", "Days must be a positive integer")
	}

	if v := strings.TrimSpace(f.budget); v != "" {
		b, err := strconv.ParseFloat(v, 64)
		if err != nil || b < 0 || math.IsNaN(b) || math.IsInf(b, 0) {
			fail("budget", "Budget must be a non-negative number")
		} else {
			in.Budget = &b
		}
	} else if !partial {
		fail("budget", "Budget must be a non-negative number")
	}

	return in, errs
}
