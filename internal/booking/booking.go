// Package booking executes bookings, cancellations and capacity-affecting
// event changes as single units of work against the seat ledger.
package booking

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"eventBooking/internal/ledger"
	"eventBooking/internal/lib/logger/sl"
	"eventBooking/internal/models"
	"eventBooking/internal/storage"
)

const (
	defaultTxTimeout = 5 * time.Second
	listenerTimeout  = 3 * time.Second
)

// Repository is the transactional storage the coordinator runs on. Every
// method except WithTx must be called with the ctx handed to fn.
type Repository interface {
	ledger.Rows

	WithTx(ctx context.Context, fn func(ctx context.Context) error) error

	InsertBooking(ctx context.Context, b *models.Booking) error
	GetBookingForUpdate(ctx context.Context, bookingID int64) (*models.Booking, error)
	DeleteBooking(ctx context.Context, bookingID int64) error

	InsertEvent(ctx context.Context, ev *models.Event) error
	UpdateEventDetails(ctx context.Context, eventID int64, name string, eventDate time.Time) error
	CountBookings(ctx context.Context, eventID int64) (int, error)
	DeleteEvent(ctx context.Context, eventID int64) error
}

type Coordinator struct {
	repo      Repository
	ledger    *ledger.Ledger
	log       *slog.Logger
	txTimeout time.Duration
	listeners []Listener
	now       func() time.Time
}

type Option func(*Coordinator)

func WithTxTimeout(d time.Duration) Option {
	return func(c *Coordinator) {
		if d > 0 {
			c.txTimeout = d
		}
	}
}

func WithListeners(listeners ...Listener) Option {
	return func(c *Coordinator) {
		c.listeners = append(c.listeners, listeners...)
	}
}

func New(repo Repository, log *slog.Logger, opts ...Option) *Coordinator {
	c := &Coordinator{
		repo:      repo,
		ledger:    ledger.New(repo),
		log:       log,
		txTimeout: defaultTxTimeout,
		now:       time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

type CreateBookingInput struct {
	EventID      int64
	CustomerName string
	SeatsBooked  int
}

func (in CreateBookingInput) validate() error {
	if in.EventID <= 0 {
		return invalid("event_id", "must be a positive integer")
	}

	if strings.TrimSpace(in.CustomerName) == "" {
		return invalid("customer_name", "is required")
	}

	if in.SeatsBooked <= 0 {
		return invalid("seats_booked", "must be greater than 0")
	}

	return nil
}

// CreateBooking reserves seats for a customer. The event row is locked before
// availability is read, so concurrent bookings for one event are serialized.
func (c *Coordinator) CreateBooking(ctx context.Context, in CreateBookingInput) (*models.Booking, error) {
	const op = "booking.CreateBooking"

	log := c.log.With(
		slog.String("op", op),
		slog.Int64("event_id", in.EventID),
		slog.Int("seats", in.SeatsBooked),
	)

	if err := in.validate(); err != nil {
		log.Info("booking rejected", sl.Err(err))
		return nil, err
	}

	var (
		created *models.Booking
		event   models.Event
	)

	err := c.inTx(ctx, func(ctx context.Context) error {
		ev, err := c.ledger.LockForUpdate(ctx, in.EventID)
		if err != nil {
			return err
		}

		if err = c.ledger.DecrementAvailable(ctx, ev, in.SeatsBooked); err != nil {
			return err
		}

		b := &models.Booking{
			EventID:      ev.ID,
			CustomerName: strings.TrimSpace(in.CustomerName),
			SeatsBooked:  in.SeatsBooked,
		}

		if err = c.repo.InsertBooking(ctx, b); err != nil {
			return err
		}

		b.EventName = ev.Name
		created = b
		event = *ev

		return nil
	})
	if err != nil {
		return nil, c.fail(log, op, err)
	}

	log.Info("booking created",
		slog.Int64("booking_id", created.ID),
		slog.Int("available_seats", event.AvailableSeats),
	)

	c.notify(ctx, Change{Kind: BookingCreated, Event: event, Booking: created})

	return created, nil
}

// CancelBooking removes a booking and returns its seats to the event. The
// booking row is locked first so that two cancellations of the same booking
// cannot both restore seats.
func (c *Coordinator) CancelBooking(ctx context.Context, bookingID int64) error {
	const op = "booking.CancelBooking"

	log := c.log.With(
		slog.String("op", op),
		slog.Int64("booking_id", bookingID),
	)

	if bookingID <= 0 {
		err := invalid("booking_id", "must be a positive integer")
		log.Info("cancellation rejected", sl.Err(err))
		return err
	}

	var (
		cancelled *models.Booking
		event     models.Event
	)

	err := c.inTx(ctx, func(ctx context.Context) error {
		b, err := c.repo.GetBookingForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}

		// A booking whose event is gone is an integrity fault; it is surfaced,
		// not repaired.
		ev, err := c.ledger.LockForUpdate(ctx, b.EventID)
		if err != nil {
			return err
		}

		if err = c.ledger.IncrementAvailable(ctx, ev, b.SeatsBooked); err != nil {
			return err
		}

		if err = c.repo.DeleteBooking(ctx, b.ID); err != nil {
			return err
		}

		b.EventName = ev.Name
		cancelled = b
		event = *ev

		return nil
	})
	if err != nil {
		return c.fail(log, op, err)
	}

	log.Info("booking cancelled",
		slog.Int64("event_id", event.ID),
		slog.Int("seats", cancelled.SeatsBooked),
		slog.Int("available_seats", event.AvailableSeats),
	)

	c.notify(ctx, Change{Kind: BookingCancelled, Event: event, Booking: cancelled})

	return nil
}

func (c *Coordinator) inTx(ctx context.Context, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, c.txTimeout)
	defer cancel()

	return c.repo.WithTx(ctx, fn)
}

// fail logs err at a level matching its kind and converts unknown failures
// into a *storage.TransactionError. Nothing is retried.
func (c *Coordinator) fail(log *slog.Logger, op string, err error) error {
	err = asTransactionFailure(op, err)

	switch {
	case errors.Is(err, storage.ErrTransactionFailure), errors.Is(err, ledger.ErrInvariantViolated):
		log.Error("unit of work rolled back", sl.Err(err))
	default:
		log.Info("unit of work rejected", sl.Err(err))
	}

	return err
}

// notify runs after commit. Listeners see a context detached from the
// caller's cancellation and bounded by listenerTimeout.
func (c *Coordinator) notify(ctx context.Context, change Change) {
	if len(c.listeners) == 0 {
		return
	}

	change.OccurredAt = c.now().UTC()

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), listenerTimeout)
	defer cancel()

	for _, l := range c.listeners {
		if err := l.Notify(ctx, change); err != nil {
			c.log.Warn("change listener failed",
				slog.String("kind", string(change.Kind)),
				slog.Int64("event_id", change.Event.ID),
				sl.Err(err),
			)
		}
	}
}
