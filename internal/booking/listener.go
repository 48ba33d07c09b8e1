package booking

import (
	"context"
	"time"

	"eventBooking/internal/models"
)

type ChangeKind string

const (
	BookingCreated   ChangeKind = "booking.created"
	BookingCancelled ChangeKind = "booking.cancelled"
	EventCreated     ChangeKind = "event.created"
	EventUpdated     ChangeKind = "event.updated"
	EventDeleted     ChangeKind = "event.deleted"
)

// Change describes a committed unit of work. Event holds the row state after
// commit (or right before deletion).
type Change struct {
	Kind       ChangeKind      `json:"kind"`
	Event      models.Event    `json:"event"`
	Booking    *models.Booking `json:"booking,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// Listener is notified after commit. Its error is logged and never affects
// the outcome of the operation.
type Listener interface {
	Notify(ctx context.Context, change Change) error
}
