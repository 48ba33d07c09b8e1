// Package cached puts a look-aside Redis cache in front of event reads and
// drops the affected keys after every committed change.
package cached

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"eventBooking/internal/booking"
	"eventBooking/internal/cache"
	"eventBooking/internal/lib/logger/sl"
	"eventBooking/internal/models"
)

const keyAllEvents = "events:all"

type EventReader interface {
	GetEvent(ctx context.Context, eventID int64) (*models.Event, error)
	ListEvents(ctx context.Context) ([]models.Event, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}) error
	Delete(ctx context.Context, keys ...string) error
}

type Events struct {
	next  EventReader
	cache Cache
	log   *slog.Logger

	// generation is bumped by every Notify. A read that loaded from the
	// database across a bump does not write its copy back.
	generation atomic.Uint64
}

func NewEvents(next EventReader, c Cache, log *slog.Logger) *Events {
	return &Events{
		next:  next,
		cache: c,
		log:   log.With(slog.String("component", "cached/events")),
	}
}

func eventKey(id int64) string {
	return fmt.Sprintf("event:%d", id)
}

// GetEvent serves from cache when possible. Cache errors fall through to
// the database.
func (e *Events) GetEvent(ctx context.Context, eventID int64) (*models.Event, error) {
	key := eventKey(eventID)

	var ev models.Event
	if e.lookup(ctx, key, &ev) {
		return &ev, nil
	}

	gen := e.generation.Load()

	got, err := e.next.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	e.store(ctx, gen, key, got)

	return got, nil
}

func (e *Events) ListEvents(ctx context.Context) ([]models.Event, error) {
	var events []models.Event
	if e.lookup(ctx, keyAllEvents, &events) {
		return events, nil
	}

	gen := e.generation.Load()

	got, err := e.next.ListEvents(ctx)
	if err != nil {
		return nil, err
	}

	e.store(ctx, gen, keyAllEvents, got)

	return got, nil
}

// Notify drops the cached copies touched by a committed change.
func (e *Events) Notify(ctx context.Context, change booking.Change) error {
	e.generation.Add(1)

	if err := e.cache.Delete(ctx, eventKey(change.Event.ID), keyAllEvents); err != nil {
		return fmt.Errorf("cached.Events.Notify: %w", err)
	}

	return nil
}

func (e *Events) lookup(ctx context.Context, key string, dest interface{}) bool {
	err := e.cache.Get(ctx, key, dest)
	switch {
	case err == nil:
		return true
	case errors.Is(err, cache.ErrMiss):
		e.log.Debug("cache miss", slog.String("key", key))
	default:
		e.log.Warn("cache read failed", slog.String("key", key), sl.Err(err))
	}

	return false
}

func (e *Events) store(ctx context.Context, gen uint64, key string, value interface{}) {
	if e.generation.Load() != gen {
		e.log.Debug("skipping cache fill after invalidation", slog.String("key", key))
		return
	}

	if err := e.cache.Set(ctx, key, value); err != nil {
		e.log.Warn("cache write failed", slog.String("key", key), sl.Err(err))
	}
}
