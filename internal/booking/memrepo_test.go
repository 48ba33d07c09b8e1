package booking

import (
	"context"
	"fmt"
	"sync"
	"time"

	"eventBooking/internal/models"
	"eventBooking/internal/storage"
)

// memRepo keeps rows in maps and emulates row locks with one mutex per row.
// Locks are held until the transaction ends; a failed transaction replays
// its undo log.
type memRepo struct {
	mu          sync.Mutex
	events      map[int64]*models.Event
	bookings    map[int64]*models.Booking
	rowLocks    map[string]*sync.Mutex
	nextEvent   int64
	nextBooking int64

	insertBookingErr error
	storageCalls     int
}

type memTx struct {
	held map[string]bool
	undo []func()
}

type memTxKey struct{}

func newMemRepo() *memRepo {
	return &memRepo{
		events:   make(map[int64]*models.Event),
		bookings: make(map[int64]*models.Booking),
		rowLocks: make(map[string]*sync.Mutex),
	}
}

func (r *memRepo) seedEvent(name string, total, available int) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextEvent++
	r.events[r.nextEvent] = &models.Event{
		ID:             r.nextEvent,
		Name:           name,
		TotalSeats:     total,
		AvailableSeats: available,
		EventDate:      time.Date(2026, 12, 1, 19, 0, 0, 0, time.UTC),
	}

	return r.nextEvent
}

func (r *memRepo) event(id int64) models.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return *r.events[id]
}

func (r *memRepo) hasEvent(id int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.events[id]
	return ok
}

func (r *memRepo) bookedSeats(eventID int64) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	sum := 0
	for _, b := range r.bookings {
		if b.EventID == eventID {
			sum += b.SeatsBooked
		}
	}
	return sum
}

func (r *memRepo) bookingCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.bookings)
}

func (r *memRepo) calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.storageCalls
}

func (r *memRepo) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	r.mu.Lock()
	r.storageCalls++
	r.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	tx := &memTx{held: make(map[string]bool)}
	err := fn(context.WithValue(ctx, memTxKey{}, tx))

	if err != nil {
		r.mu.Lock()
		for i := len(tx.undo) - 1; i >= 0; i-- {
			tx.undo[i]()
		}
		r.mu.Unlock()
	}

	for key := range tx.held {
		r.rowLock(key).Unlock()
	}

	return err
}

func (r *memRepo) rowLock(key string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.rowLocks[key]
	if !ok {
		m = &sync.Mutex{}
		r.rowLocks[key] = m
	}
	return m
}

func (r *memRepo) lock(ctx context.Context, key string) (*memTx, error) {
	tx, ok := ctx.Value(memTxKey{}).(*memTx)
	if !ok {
		return nil, storage.ErrNoTransaction
	}

	if !tx.held[key] {
		r.rowLock(key).Lock()
		tx.held[key] = true
	}

	return tx, nil
}

func (r *memRepo) txFrom(ctx context.Context) (*memTx, error) {
	tx, ok := ctx.Value(memTxKey{}).(*memTx)
	if !ok {
		return nil, storage.ErrNoTransaction
	}
	return tx, nil
}

func (r *memRepo) LockEventForUpdate(ctx context.Context, eventID int64) (*models.Event, error) {
	if _, err := r.lock(ctx, fmt.Sprintf("event:%d", eventID)); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	ev, ok := r.events[eventID]
	if !ok {
		return nil, storage.ErrEventNotFound
	}

	cp := *ev
	return &cp, nil
}

func (r *memRepo) UpdateAvailable(ctx context.Context, eventID int64, delta int) error {
	tx, err := r.txFrom(ctx)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	ev := r.events[eventID]
	ev.AvailableSeats += delta
	tx.undo = append(tx.undo, func() { ev.AvailableSeats -= delta })

	return nil
}

func (r *memRepo) UpdateCapacity(ctx context.Context, eventID int64, total, available int) error {
	tx, err := r.txFrom(ctx)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	ev := r.events[eventID]
	prevTotal, prevAvailable := ev.TotalSeats, ev.AvailableSeats
	ev.TotalSeats, ev.AvailableSeats = total, available
	tx.undo = append(tx.undo, func() { ev.TotalSeats, ev.AvailableSeats = prevTotal, prevAvailable })

	return nil
}

func (r *memRepo) InsertBooking(ctx context.Context, b *models.Booking) error {
	tx, err := r.txFrom(ctx)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.insertBookingErr != nil {
		return r.insertBookingErr
	}

	r.nextBooking++
	b.ID = r.nextBooking
	b.CreatedAt = time.Now().UTC()

	cp := *b
	r.bookings[b.ID] = &cp
	id := b.ID
	tx.undo = append(tx.undo, func() { delete(r.bookings, id) })

	return nil
}

func (r *memRepo) GetBookingForUpdate(ctx context.Context, bookingID int64) (*models.Booking, error) {
	if _, err := r.lock(ctx, fmt.Sprintf("booking:%d", bookingID)); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.bookings[bookingID]
	if !ok {
		return nil, storage.ErrBookingNotFound
	}

	cp := *b
	return &cp, nil
}

func (r *memRepo) DeleteBooking(ctx context.Context, bookingID int64) error {
	tx, err := r.txFrom(ctx)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.bookings[bookingID]
	if !ok {
		return storage.ErrBookingNotFound
	}

	delete(r.bookings, bookingID)
	tx.undo = append(tx.undo, func() { r.bookings[bookingID] = b })

	return nil
}

func (r *memRepo) InsertEvent(ctx context.Context, ev *models.Event) error {
	tx, err := r.txFrom(ctx)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextEvent++
	ev.ID = r.nextEvent
	ev.CreatedAt = time.Now().UTC()

	cp := *ev
	r.events[ev.ID] = &cp
	id := ev.ID
	tx.undo = append(tx.undo, func() { delete(r.events, id) })

	return nil
}

func (r *memRepo) UpdateEventDetails(ctx context.Context, eventID int64, name string, eventDate time.Time) error {
	tx, err := r.txFrom(ctx)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	ev := r.events[eventID]
	prevName, prevDate := ev.Name, ev.EventDate
	ev.Name, ev.EventDate = name, eventDate
	tx.undo = append(tx.undo, func() { ev.Name, ev.EventDate = prevName, prevDate })

	return nil
}

func (r *memRepo) CountBookings(ctx context.Context, eventID int64) (int, error) {
	if _, err := r.txFrom(ctx); err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, b := range r.bookings {
		if b.EventID == eventID {
			n++
		}
	}
	return n, nil
}

func (r *memRepo) DeleteEvent(ctx context.Context, eventID int64) error {
	tx, err := r.txFrom(ctx)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	ev, ok := r.events[eventID]
	if !ok {
		return storage.ErrEventNotFound
	}

	delete(r.events, eventID)
	tx.undo = append(tx.undo, func() { r.events[eventID] = ev })

	return nil
}
