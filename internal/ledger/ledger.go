// Package ledger owns the seat counters of events. Every mutation goes through
// a row that the caller has locked inside an open transaction.
package ledger

import (
	"context"
	"fmt"

	"eventBooking/internal/models"
)

// Rows is the storage primitive set the ledger is built on. All methods run
// inside the transaction carried by ctx.
type Rows interface {
	LockEventForUpdate(ctx context.Context, eventID int64) (*models.Event, error)
	UpdateAvailable(ctx context.Context, eventID int64, delta int) error
	UpdateCapacity(ctx context.Context, eventID int64, total, available int) error
}

type Ledger struct {
	rows Rows
}

func New(rows Rows) *Ledger {
	return &Ledger{rows: rows}
}

// LockForUpdate takes the exclusive row lock on the event; it is held until
// the enclosing transaction ends.
func (l *Ledger) LockForUpdate(ctx context.Context, eventID int64) (*models.Event, error) {
	const op = "ledger.LockForUpdate"

	ev, err := l.rows.LockEventForUpdate(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err = CheckInvariant(*ev); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return ev, nil
}

// DecrementAvailable takes count seats from a locked event. The event is
// updated in place on success.
func (l *Ledger) DecrementAvailable(ctx context.Context, ev *models.Event, count int) error {
	const op = "ledger.DecrementAvailable"

	if count <= 0 {
		return fmt.Errorf("%s: %w", op, ErrNonPositiveCount)
	}

	if ev.AvailableSeats < count {
		return &InsufficientCapacityError{
			EventID:   ev.ID,
			Available: ev.AvailableSeats,
			Requested: count,
		}
	}

	if err := l.rows.UpdateAvailable(ctx, ev.ID, -count); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	ev.AvailableSeats -= count

	return nil
}

// IncrementAvailable returns count seats to a locked event. Overflowing the
// total is a data fault and is reported, not capped.
func (l *Ledger) IncrementAvailable(ctx context.Context, ev *models.Event, count int) error {
	const op = "ledger.IncrementAvailable"

	if count <= 0 {
		return fmt.Errorf("%s: %w", op, ErrNonPositiveCount)
	}

	if ev.AvailableSeats+count > ev.TotalSeats {
		return fmt.Errorf("%s: event %d: available %d + %d exceeds total %d: %w",
			op, ev.ID, ev.AvailableSeats, count, ev.TotalSeats, ErrInvariantViolated)
	}

	if err := l.rows.UpdateAvailable(ctx, ev.ID, count); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	ev.AvailableSeats += count

	return nil
}

// Resize changes the capacity of a locked event while keeping the booked
// seat count intact.
func (l *Ledger) Resize(ctx context.Context, ev *models.Event, total int) error {
	const op = "ledger.Resize"

	if total <= 0 {
		return fmt.Errorf("%s: %w", op, ErrNonPositiveCount)
	}

	booked := ev.BookedSeats()
	if total < booked {
		return &CapacityBelowBookedError{
			EventID:   ev.ID,
			Booked:    booked,
			Requested: total,
		}
	}

	available := total - booked

	if err := l.rows.UpdateCapacity(ctx, ev.ID, total, available); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	ev.TotalSeats = total
	ev.AvailableSeats = available

	return nil
}

func CheckInvariant(ev models.Event) error {
	if ev.AvailableSeats < 0 || ev.AvailableSeats > ev.TotalSeats {
		return fmt.Errorf("event %d: available %d outside [0, %d]: %w",
			ev.ID, ev.AvailableSeats, ev.TotalSeats, ErrInvariantViolated)
	}

	return nil
}
