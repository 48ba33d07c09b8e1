package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"eventBooking/internal/config"
	"eventBooking/internal/lib/logger/sl"
	"eventBooking/internal/storage"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

var dialect = goqu.Dialect("postgres")

type Storage struct {
	db *sqlx.DB
}

// InitDB opens the pool and waits for the database to answer, retrying
// while it is still starting up.
func InitDB(ctx context.Context, dbCfg *config.Database, log *slog.Logger) (*Storage, error) {
	const op = "storage.postgres.InitDB"

	log = log.With(slog.String("op", op), slog.String("driver", dbCfg.Driver))

	db, err := sqlx.Open(dbCfg.Driver, dbCfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("%s: failed to open database: %w", op, err)
	}

	db.SetMaxOpenConns(dbCfg.MaxOpenConns)
	db.SetMaxIdleConns(dbCfg.MaxIdleConns)
	db.SetConnMaxLifetime(dbCfg.ConnMaxLifetime)

	retries := dbCfg.ConnectRetries
	if retries < 1 {
		retries = 1
	}

	for attempt := 1; ; attempt++ {
		err = db.PingContext(ctx)
		if err == nil {
			break
		}

		if attempt >= retries {
			_ = db.Close()
			return nil, fmt.Errorf("%s: failed to connect to the database after %d attempts: %w", op, attempt, err)
		}

		log.Warn("database not ready, retrying",
			slog.Int("attempt", attempt),
			slog.Duration("retry_in", dbCfg.RetryInterval),
			sl.Err(err),
		)

		select {
		case <-ctx.Done():
			_ = db.Close()
			return nil, fmt.Errorf("%s: %w", op, ctx.Err())
		case <-time.After(dbCfg.RetryInterval):
		}
	}

	log.Info("connected to database")

	return &Storage{db: db}, nil
}

// New wraps an already opened pool.
func New(db *sqlx.DB) *Storage {
	return &Storage{db: db}
}

func (s *Storage) DB() *sqlx.DB {
	return s.db
}

func (s *Storage) Close() error {
	return s.db.Close()
}

func (s *Storage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

type txKey struct{}

// WithTx runs fn inside one transaction carried by the ctx handed to fn.
// A nested call joins the outer transaction. The transaction is rolled back
// unless fn returns nil and the commit succeeds.
func (s *Storage) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	const op = "storage.postgres.WithTx"

	if txFromContext(ctx) != nil {
		return fn(ctx)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return dbErr(op, err)
	}
	defer tx.Rollback()

	if err = fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return dbErr(op, err)
	}

	return nil
}

func txFromContext(ctx context.Context) *sqlx.Tx {
	tx, _ := ctx.Value(txKey{}).(*sqlx.Tx)
	return tx
}

// mustTx returns the transaction bound to ctx. Locking reads and writes are
// only valid inside one.
func mustTx(ctx context.Context) (*sqlx.Tx, error) {
	tx := txFromContext(ctx)
	if tx == nil {
		return nil, storage.ErrNoTransaction
	}
	return tx, nil
}

// ext picks the open transaction if there is one, the pool otherwise.
func (s *Storage) ext(ctx context.Context) sqlx.ExtContext {
	if tx := txFromContext(ctx); tx != nil {
		return tx
	}
	return s.db
}
