package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"eventBooking/internal/models"
	"eventBooking/internal/storage"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/jmoiron/sqlx"
)

const (
	tableEvents = "events"

	colID             = "id"
	colName           = "name"
	colTotalSeats     = "total_seats"
	colAvailableSeats = "available_seats"
	colEventDate      = "event_date"
	colCreatedAt      = "created_at"
)

var eventColumns = []interface{}{colID, colName, colTotalSeats, colAvailableSeats, colEventDate, colCreatedAt}

func lockEventQuery(eventID int64) (string, []interface{}, error) {
	return dialect.From(tableEvents).Prepared(true).
		Select(eventColumns...).
		Where(goqu.C(colID).Eq(eventID)).
		ForUpdate(exp.Wait).
		ToSQL()
}

func updateAvailableQuery(eventID int64, delta int) (string, []interface{}, error) {
	return dialect.Update(tableEvents).Prepared(true).
		Set(goqu.Record{colAvailableSeats: goqu.L(colAvailableSeats+" + ?", delta)}).
		Where(goqu.C(colID).Eq(eventID)).
		ToSQL()
}

// LockEventForUpdate reads the event row with an exclusive lock held until
// the transaction in ctx ends.
func (s *Storage) LockEventForUpdate(ctx context.Context, eventID int64) (*models.Event, error) {
	const op = "storage.postgres.LockEventForUpdate"

	tx, err := mustTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	query, args, err := lockEventQuery(eventID)
	if err != nil {
		return nil, fmt.Errorf("%s: build query: %w", op, err)
	}

	var ev models.Event
	if err = sqlx.GetContext(ctx, tx, &ev, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrEventNotFound
		}
		return nil, dbErr(op, err)
	}

	return &ev, nil
}

func (s *Storage) UpdateAvailable(ctx context.Context, eventID int64, delta int) error {
	const op = "storage.postgres.UpdateAvailable"

	query, args, err := updateAvailableQuery(eventID, delta)
	if err != nil {
		return fmt.Errorf("%s: build query: %w", op, err)
	}

	return s.execOne(ctx, op, storage.ErrEventNotFound, query, args...)
}

func (s *Storage) UpdateCapacity(ctx context.Context, eventID int64, total, available int) error {
	const op = "storage.postgres.UpdateCapacity"

	query, args, err := dialect.Update(tableEvents).Prepared(true).
		Set(goqu.Record{colTotalSeats: total, colAvailableSeats: available}).
		Where(goqu.C(colID).Eq(eventID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("%s: build query: %w", op, err)
	}

	return s.execOne(ctx, op, storage.ErrEventNotFound, query, args...)
}

func (s *Storage) UpdateEventDetails(ctx context.Context, eventID int64, name string, eventDate time.Time) error {
	const op = "storage.postgres.UpdateEventDetails"

	query, args, err := dialect.Update(tableEvents).Prepared(true).
		Set(goqu.Record{colName: name, colEventDate: eventDate}).
		Where(goqu.C(colID).Eq(eventID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("%s: build query: %w", op, err)
	}

	return s.execOne(ctx, op, storage.ErrEventNotFound, query, args...)
}

func (s *Storage) InsertEvent(ctx context.Context, ev *models.Event) error {
	const op = "storage.postgres.InsertEvent"

	query, args, err := dialect.Insert(tableEvents).Prepared(true).
		Rows(goqu.Record{
			colName:           ev.Name,
			colTotalSeats:     ev.TotalSeats,
			colAvailableSeats: ev.AvailableSeats,
			colEventDate:      ev.EventDate,
		}).
		Returning(colID, colCreatedAt).
		ToSQL()
	if err != nil {
		return fmt.Errorf("%s: build query: %w", op, err)
	}

	if err = s.ext(ctx).QueryRowxContext(ctx, query, args...).Scan(&ev.ID, &ev.CreatedAt); err != nil {
		return dbErr(op, err)
	}

	return nil
}

func (s *Storage) CountBookings(ctx context.Context, eventID int64) (int, error) {
	const op = "storage.postgres.CountBookings"

	query, args, err := dialect.From(tableBookings).Prepared(true).
		Select(goqu.COUNT(goqu.Star())).
		Where(goqu.C(colEventID).Eq(eventID)).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("%s: build query: %w", op, err)
	}

	var n int
	if err = sqlx.GetContext(ctx, s.ext(ctx), &n, query, args...); err != nil {
		return 0, dbErr(op, err)
	}

	return n, nil
}

func (s *Storage) DeleteEvent(ctx context.Context, eventID int64) error {
	const op = "storage.postgres.DeleteEvent"

	query, args, err := dialect.Delete(tableEvents).Prepared(true).
		Where(goqu.C(colID).Eq(eventID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("%s: build query: %w", op, err)
	}

	err = s.execOne(ctx, op, storage.ErrEventNotFound, query, args...)
	if isForeignKeyViolation(err) {
		return storage.ErrEventHasBookings
	}

	return err
}

func (s *Storage) GetEvent(ctx context.Context, eventID int64) (*models.Event, error) {
	const op = "storage.postgres.GetEvent"

	query, args, err := dialect.From(tableEvents).Prepared(true).
		Select(eventColumns...).
		Where(goqu.C(colID).Eq(eventID)).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("%s: build query: %w", op, err)
	}

	var ev models.Event
	if err = sqlx.GetContext(ctx, s.ext(ctx), &ev, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrEventNotFound
		}
		return nil, dbErr(op, err)
	}

	return &ev, nil
}

func (s *Storage) ListEvents(ctx context.Context) ([]models.Event, error) {
	const op = "storage.postgres.ListEvents"

	query, args, err := dialect.From(tableEvents).Prepared(true).
		Select(eventColumns...).
		Order(goqu.C(colEventDate).Asc(), goqu.C(colID).Asc()).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("%s: build query: %w", op, err)
	}

	events := make([]models.Event, 0)
	if err = sqlx.SelectContext(ctx, s.ext(ctx), &events, query, args...); err != nil {
		return nil, dbErr(op, err)
	}

	return events, nil
}

// execOne runs a write that must hit exactly one row inside the transaction
// in ctx. Zero affected rows is reported as notFound.
func (s *Storage) execOne(ctx context.Context, op string, notFound error, query string, args ...interface{}) error {
	tx, err := mustTx(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return dbErr(op, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return dbErr(op, err)
	}

	if n == 0 {
		return notFound
	}

	return nil
}
