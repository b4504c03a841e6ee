// Package events publishes trip lifecycle notifications to a message broker.
// Publishing happens after a write has been committed; a broker outage never
// fails the write that triggered it.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/tripplanner/backend/internal/domain"
)

// Event types.
const (
	TripCreated = "trip.created"
	TripUpdated = "trip.updated"
)

// TripEvent is the message body published for every successful write.
type TripEvent struct {
	ID         uuid.UUID   `json:"id"`
	Type       string      `json:"type"`
	Trip       domain.Trip `json:"trip"`
	OccurredAt time.Time   `json:"occurredAt"`
}

// NewTripEvent stamps a fresh message id and the current time.
func NewTripEvent(eventType string, trip domain.Trip) TripEvent {
	return TripEvent{
		ID:         uuid.New(),
		Type:       eventType,
		Trip:       trip,
		OccurredAt: time.Now().UTC(),
	}
}

// Publisher delivers trip events.
type Publisher interface {
	Publish(ctx context.Context, ev TripEvent) error
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(context.Context, TripEvent) error { return nil }
