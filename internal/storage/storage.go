package storage

import (
	"errors"
	"fmt"
)

var (
	ErrEventNotFound    = errors.New("event not found")
	ErrBookingNotFound  = errors.New("booking not found")
	ErrEventHasBookings = errors.New("event has bookings")
	ErrNoTransaction    = errors.New("operation requires an open transaction")

	// ErrTransactionFailure matches every *TransactionError via errors.Is.
	ErrTransactionFailure = errors.New("transaction failure")
)

type FailureKind string

const (
	FailureSerialization FailureKind = "serialization_failure"
	FailureDeadlock      FailureKind = "deadlock"
	FailureConnection    FailureKind = "connection"
	FailureTimeout       FailureKind = "timeout"
	FailureCanceled      FailureKind = "canceled"
	FailureUnknown       FailureKind = "unknown"
)

// TransactionError reports that a unit of work could not be completed for
// infrastructure reasons. Nothing it touched was committed.
type TransactionError struct {
	Op   string
	Kind FailureKind
	Err  error
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("%s: transaction failure (%s): %v", e.Op, e.Kind, e.Err)
}

func (e *TransactionError) Unwrap() error {
	return e.Err
}

func (e *TransactionError) Is(target error) bool {
	return target == ErrTransactionFailure
}
