package ledger

import (
	"errors"
	"fmt"
)

var (
	ErrInsufficientCapacity = errors.New("insufficient capacity")
	ErrCapacityBelowBooked  = errors.New("capacity below booked seats")
	ErrInvariantViolated    = errors.New("seat ledger invariant violated")
	ErrNonPositiveCount     = errors.New("seat count must be positive")
)

// InsufficientCapacityError carries the seat count observed under the row lock.
type InsufficientCapacityError struct {
	EventID   int64
	Available int
	Requested int
}

func (e *InsufficientCapacityError) Error() string {
	return fmt.Sprintf("insufficient capacity for event %d: available %d, requested %d",
		e.EventID, e.Available, e.Requested)
}

func (e *InsufficientCapacityError) Is(target error) bool {
	return target == ErrInsufficientCapacity
}

type CapacityBelowBookedError struct {
	EventID   int64
	Booked    int
	Requested int
}

func (e *CapacityBelowBookedError) Error() string {
	return fmt.Sprintf("event %d has %d booked seats, cannot shrink capacity to %d",
		e.EventID, e.Booked, e.Requested)
}

func (e *CapacityBelowBookedError) Is(target error) bool {
	return target == ErrCapacityBelowBooked
}
