package booking

import (
	"context"
	"errors"
	"fmt"

	"eventBooking/internal/ledger"
	"eventBooking/internal/storage"
)

var ErrValidation = errors.New("validation failed")

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// expected reports errors that already carry a meaning callers branch on.
// They are returned as they are.
func expected(err error) bool {
	switch {
	case errors.Is(err, ErrValidation),
		errors.Is(err, storage.ErrEventNotFound),
		errors.Is(err, storage.ErrBookingNotFound),
		errors.Is(err, storage.ErrEventHasBookings),
		errors.Is(err, storage.ErrTransactionFailure),
		errors.Is(err, ledger.ErrInsufficientCapacity),
		errors.Is(err, ledger.ErrCapacityBelowBooked),
		errors.Is(err, ledger.ErrInvariantViolated):
		return true
	}

	return false
}

// asTransactionFailure wraps anything unexpected so callers can branch on
// storage.ErrTransactionFailure.
func asTransactionFailure(op string, err error) error {
	if expected(err) {
		return err
	}

	kind := storage.FailureUnknown

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		kind = storage.FailureTimeout
	case errors.Is(err, context.Canceled):
		kind = storage.FailureCanceled
	}

	return &storage.TransactionError{Op: op, Kind: kind, Err: err}
}
