package booking

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"eventBooking/internal/lib/logger/sl"
	"eventBooking/internal/models"
	"eventBooking/internal/storage"
)

type CreateEventInput struct {
	Name       string
	TotalSeats int
	EventDate  time.Time
}

func (in CreateEventInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return invalid("name", "is required")
	}

	if in.TotalSeats <= 0 {
		return invalid("total_seats", "must be greater than 0")
	}

	if in.EventDate.IsZero() {
		return invalid("event_date", "is required")
	}

	return nil
}

// CreateEvent opens a new event with every seat available.
func (c *Coordinator) CreateEvent(ctx context.Context, in CreateEventInput) (*models.Event, error) {
	const op = "booking.CreateEvent"

	log := c.log.With(slog.String("op", op))

	if err := in.validate(); err != nil {
		log.Info("event rejected", sl.Err(err))
		return nil, err
	}

	ev := &models.Event{
		Name:           strings.TrimSpace(in.Name),
		TotalSeats:     in.TotalSeats,
		AvailableSeats: in.TotalSeats,
		EventDate:      in.EventDate,
	}

	err := c.inTx(ctx, func(ctx context.Context) error {
		return c.repo.InsertEvent(ctx, ev)
	})
	if err != nil {
		return nil, c.fail(log, op, err)
	}

	log.Info("event created", slog.Int64("event_id", ev.ID), slog.Int("total_seats", ev.TotalSeats))

	c.notify(ctx, Change{Kind: EventCreated, Event: *ev})

	return ev, nil
}

// UpdateEventInput carries the fields to change; nil fields are left as they
// are. Available seats are never set directly: a new total is applied through
// the ledger, which keeps the booked count intact.
type UpdateEventInput struct {
	ID         int64
	Name       *string
	EventDate  *time.Time
	TotalSeats *int
}

func (in UpdateEventInput) validate() error {
	if in.ID <= 0 {
		return invalid("id", "must be a positive integer")
	}

	if in.Name == nil && in.EventDate == nil && in.TotalSeats == nil {
		return invalid("body", "no fields to update")
	}

	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return invalid("name", "must not be blank")
	}

	if in.EventDate != nil && in.EventDate.IsZero() {
		return invalid("event_date", "must not be zero")
	}

	if in.TotalSeats != nil && *in.TotalSeats <= 0 {
		return invalid("total_seats", "must be greater than 0")
	}

	return nil
}

func (c *Coordinator) UpdateEvent(ctx context.Context, in UpdateEventInput) (*models.Event, error) {
	const op = "booking.UpdateEvent"

	log := c.log.With(slog.String("op", op), slog.Int64("event_id", in.ID))

	if err := in.validate(); err != nil {
		log.Info("update rejected", sl.Err(err))
		return nil, err
	}

	var updated models.Event

	err := c.inTx(ctx, func(ctx context.Context) error {
		ev, err := c.ledger.LockForUpdate(ctx, in.ID)
		if err != nil {
			return err
		}

		if in.TotalSeats != nil && *in.TotalSeats != ev.TotalSeats {
			if err = c.ledger.Resize(ctx, ev, *in.TotalSeats); err != nil {
				return err
			}
		}

		if in.Name != nil || in.EventDate != nil {
			if in.Name != nil {
				ev.Name = strings.TrimSpace(*in.Name)
			}
			if in.EventDate != nil {
				ev.EventDate = *in.EventDate
			}

			if err = c.repo.UpdateEventDetails(ctx, ev.ID, ev.Name, ev.EventDate); err != nil {
				return err
			}
		}

		updated = *ev

		return nil
	})
	if err != nil {
		return nil, c.fail(log, op, err)
	}

	log.Info("event updated",
		slog.Int("total_seats", updated.TotalSeats),
		slog.Int("available_seats", updated.AvailableSeats),
	)

	c.notify(ctx, Change{Kind: EventUpdated, Event: updated})

	return &updated, nil
}

// DeleteEvent removes an event that has no live bookings.
func (c *Coordinator) DeleteEvent(ctx context.Context, eventID int64) error {
	const op = "booking.DeleteEvent"

	log := c.log.With(slog.String("op", op), slog.Int64("event_id", eventID))

	if eventID <= 0 {
		err := invalid("id", "must be a positive integer")
		log.Info("delete rejected", sl.Err(err))
		return err
	}

	var deleted models.Event

	err := c.inTx(ctx, func(ctx context.Context) error {
		ev, err := c.ledger.LockForUpdate(ctx, eventID)
		if err != nil {
			return err
		}

		n, err := c.repo.CountBookings(ctx, eventID)
		if err != nil {
			return err
		}

		if n > 0 {
			return fmt.Errorf("%w: %d live bookings", storage.ErrEventHasBookings, n)
		}

		if err = c.repo.DeleteEvent(ctx, eventID); err != nil {
			return err
		}

		deleted = *ev

		return nil
	})
	if err != nil {
		return c.fail(log, op, err)
	}

	log.Info("event deleted")

	c.notify(ctx, Change{Kind: EventDeleted, Event: deleted})

	return nil
}
