package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"eventBooking/internal/models"
	"eventBooking/internal/storage"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/jmoiron/sqlx"
)

const (
	tableBookings = "bookings"

	colEventID      = "event_id"
	colCustomerName = "customer_name"
	colSeatsBooked  = "seats_booked"
)

var bookingColumns = []interface{}{colID, colEventID, colCustomerName, colSeatsBooked, colCreatedAt}

// bookingsWithEventName selects bookings joined with the name of their event.
func bookingsWithEventName() *goqu.SelectDataset {
	return dialect.From(goqu.T(tableBookings).As("b")).Prepared(true).
		Join(goqu.T(tableEvents).As("e"), goqu.On(goqu.I("b."+colEventID).Eq(goqu.I("e."+colID)))).
		Select(
			goqu.I("b."+colID),
			goqu.I("b."+colEventID),
			goqu.I("e."+colName).As("event_name"),
			goqu.I("b."+colCustomerName),
			goqu.I("b."+colSeatsBooked),
			goqu.I("b."+colCreatedAt),
		)
}

func lockBookingQuery(bookingID int64) (string, []interface{}, error) {
	return dialect.From(tableBookings).Prepared(true).
		Select(bookingColumns...).
		Where(goqu.C(colID).Eq(bookingID)).
		ForUpdate(exp.Wait).
		ToSQL()
}

func (s *Storage) InsertBooking(ctx context.Context, b *models.Booking) error {
	const op = "storage.postgres.InsertBooking"

	tx, err := mustTx(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	query, args, err := dialect.Insert(tableBookings).Prepared(true).
		Rows(goqu.Record{
			colEventID:      b.EventID,
			colCustomerName: b.CustomerName,
			colSeatsBooked:  b.SeatsBooked,
		}).
		Returning(colID, colCreatedAt).
		ToSQL()
	if err != nil {
		return fmt.Errorf("%s: build query: %w", op, err)
	}

	if err = tx.QueryRowxContext(ctx, query, args...).Scan(&b.ID, &b.CreatedAt); err != nil {
		if isForeignKeyViolation(err) {
			return storage.ErrEventNotFound
		}
		return dbErr(op, err)
	}

	return nil
}

// GetBookingForUpdate reads the booking row with an exclusive lock held
// until the transaction in ctx ends.
func (s *Storage) GetBookingForUpdate(ctx context.Context, bookingID int64) (*models.Booking, error) {
	const op = "storage.postgres.GetBookingForUpdate"

	tx, err := mustTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	query, args, err := lockBookingQuery(bookingID)
	if err != nil {
		return nil, fmt.Errorf("%s: build query: %w", op, err)
	}

	var b models.Booking
	if err = sqlx.GetContext(ctx, tx, &b, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrBookingNotFound
		}
		return nil, dbErr(op, err)
	}

	return &b, nil
}

func (s *Storage) DeleteBooking(ctx context.Context, bookingID int64) error {
	const op = "storage.postgres.DeleteBooking"

	query, args, err := dialect.Delete(tableBookings).Prepared(true).
		Where(goqu.C(colID).Eq(bookingID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("%s: build query: %w", op, err)
	}

	return s.execOne(ctx, op, storage.ErrBookingNotFound, query, args...)
}

func (s *Storage) GetBooking(ctx context.Context, bookingID int64) (*models.Booking, error) {
	const op = "storage.postgres.GetBooking"

	query, args, err := bookingsWithEventName().
		Where(goqu.I("b." + colID).Eq(bookingID)).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("%s: build query: %w", op, err)
	}

	var b models.Booking
	if err = sqlx.GetContext(ctx, s.ext(ctx), &b, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrBookingNotFound
		}
		return nil, dbErr(op, err)
	}

	return &b, nil
}

func (s *Storage) ListBookings(ctx context.Context) ([]models.Booking, error) {
	const op = "storage.postgres.ListBookings"

	query, args, err := bookingsWithEventName().
		Order(goqu.I("b."+colCreatedAt).Desc(), goqu.I("b."+colID).Desc()).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("%s: build query: %w", op, err)
	}

	return s.selectBookings(ctx, op, query, args)
}

// ListEventBookings lists the bookings of one event, newest first. An
// unknown event is reported rather than returned as an empty list.
func (s *Storage) ListEventBookings(ctx context.Context, eventID int64) ([]models.Booking, error) {
	const op = "storage.postgres.ListEventBookings"

	if _, err := s.GetEvent(ctx, eventID); err != nil {
		return nil, err
	}

	query, args, err := bookingsWithEventName().
		Where(goqu.I("b." + colEventID).Eq(eventID)).
		Order(goqu.I("b."+colCreatedAt).Desc(), goqu.I("b."+colID).Desc()).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("%s: build query: %w", op, err)
	}

	return s.selectBookings(ctx, op, query, args)
}

func (s *Storage) selectBookings(ctx context.Context, op, query string, args []interface{}) ([]models.Booking, error) {
	bookings := make([]models.Booking, 0)
	if err := sqlx.SelectContext(ctx, s.ext(ctx), &bookings, query, args...); err != nil {
		return nil, dbErr(op, err)
	}

	return bookings, nil
}
