package postgres

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"

	"eventBooking/internal/ledger"
	"eventBooking/internal/storage"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

const (
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeLockNotAvailable     = "55P03"
	codeQueryCanceled        = "57014"
	codeForeignKeyViolation  = "23503"
	codeCheckViolation       = "23514"
	classConnection          = "08"
)

// sqlState extracts the SQLSTATE from either driver's error type.
func sqlState(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}

	return ""
}

func classify(err error) storage.FailureKind {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return storage.FailureTimeout
	case errors.Is(err, context.Canceled):
		return storage.FailureCanceled
	case errors.Is(err, driver.ErrBadConn):
		return storage.FailureConnection
	}

	code := sqlState(err)
	switch {
	case code == codeSerializationFailure:
		return storage.FailureSerialization
	case code == codeDeadlockDetected:
		return storage.FailureDeadlock
	case code == codeLockNotAvailable:
		return storage.FailureTimeout
	case code == codeQueryCanceled:
		return storage.FailureCanceled
	case len(code) == 5 && code[:2] == classConnection:
		return storage.FailureConnection
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return storage.FailureConnection
	}

	return storage.FailureUnknown
}

// dbErr maps a driver error onto the storage error taxonomy.
func dbErr(op string, err error) error {
	if sqlState(err) == codeCheckViolation {
		return fmt.Errorf("%s: %w: %v", op, ledger.ErrInvariantViolated, err)
	}

	return &storage.TransactionError{Op: op, Kind: classify(err), Err: err}
}

func isForeignKeyViolation(err error) bool {
	return sqlState(err) == codeForeignKeyViolation
}
