package ledger

import (
	"context"
	"errors"
	"testing"

	"eventBooking/internal/models"
	"eventBooking/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRows struct {
	events    map[int64]*models.Event
	updateErr error
	calls     int
}

func newFakeRows(events ...models.Event) *fakeRows {
	f := &fakeRows{events: make(map[int64]*models.Event)}
	for _, ev := range events {
		ev := ev
		f.events[ev.ID] = &ev
	}
	return f
}

func (f *fakeRows) LockEventForUpdate(_ context.Context, id int64) (*models.Event, error) {
	ev, ok := f.events[id]
	if !ok {
		return nil, storage.ErrEventNotFound
	}
	cp := *ev
	return &cp, nil
}

func (f *fakeRows) UpdateAvailable(_ context.Context, id int64, delta int) error {
	f.calls++
	if f.updateErr != nil {
		return f.updateErr
	}
	f.events[id].AvailableSeats += delta
	return nil
}

func (f *fakeRows) UpdateCapacity(_ context.Context, id int64, total, available int) error {
	f.calls++
	if f.updateErr != nil {
		return f.updateErr
	}
	f.events[id].TotalSeats = total
	f.events[id].AvailableSeats = available
	return nil
}

func TestLockForUpdate(t *testing.T) {
	t.Parallel()

	rows := newFakeRows(
		models.Event{ID: 1, TotalSeats: 100, AvailableSeats: 70},
		models.Event{ID: 2, TotalSeats: 10, AvailableSeats: 11},
	)
	l := New(rows)
	ctx := context.Background()

	ev, err := l.LockForUpdate(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 70, ev.AvailableSeats)

	_, err = l.LockForUpdate(ctx, 9999)
	assert.ErrorIs(t, err, storage.ErrEventNotFound)

	_, err = l.LockForUpdate(ctx, 2)
	assert.ErrorIs(t, err, ErrInvariantViolated)
}

func TestDecrementAvailable(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name      string
		available int
		count     int
		wantErr   error
		wantLeft  int
		wantCalls int
	}{
		{name: "Partial", available: 100, count: 30, wantLeft: 70, wantCalls: 1},
		{name: "Exact", available: 5, count: 5, wantLeft: 0, wantCalls: 1},
		{name: "Insufficient", available: 70, count: 80, wantErr: ErrInsufficientCapacity, wantLeft: 70},
		{name: "Zero count", available: 10, count: 0, wantErr: ErrNonPositiveCount, wantLeft: 10},
		{name: "Negative count", available: 10, count: -1, wantErr: ErrNonPositiveCount, wantLeft: 10},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			rows := newFakeRows(models.Event{ID: 1, TotalSeats: 100, AvailableSeats: tc.available})
			l := New(rows)

			ev, err := l.LockForUpdate(context.Background(), 1)
			require.NoError(t, err)

			err = l.DecrementAvailable(context.Background(), ev, tc.count)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
			} else {
				assert.NoError(t, err)
			}

			assert.Equal(t, tc.wantLeft, ev.AvailableSeats)
			assert.Equal(t, tc.wantLeft, rows.events[1].AvailableSeats)
			assert.Equal(t, tc.wantCalls, rows.calls)
		})
	}
}

func TestDecrementAvailableReportsCounts(t *testing.T) {
	t.Parallel()

	l := New(newFakeRows())
	ev := &models.Event{ID: 3, TotalSeats: 100, AvailableSeats: 70}

	err := l.DecrementAvailable(context.Background(), ev, 80)

	var capErr *InsufficientCapacityError
	require.True(t, errors.As(err, &capErr))
	assert.Equal(t, int64(3), capErr.EventID)
	assert.Equal(t, 70, capErr.Available)
	assert.Equal(t, 80, capErr.Requested)
}

func TestIncrementAvailable(t *testing.T) {
	t.Parallel()

	rows := newFakeRows(models.Event{ID: 1, TotalSeats: 100, AvailableSeats: 50})
	l := New(rows)
	ctx := context.Background()

	ev, err := l.LockForUpdate(ctx, 1)
	require.NoError(t, err)

	require.NoError(t, l.IncrementAvailable(ctx, ev, 20))
	assert.Equal(t, 70, ev.AvailableSeats)
	assert.Equal(t, 70, rows.events[1].AvailableSeats)

	err = l.IncrementAvailable(ctx, ev, 31)
	assert.ErrorIs(t, err, ErrInvariantViolated)
	assert.Equal(t, 70, rows.events[1].AvailableSeats)
}

func TestUpdateFailureLeavesEventUntouched(t *testing.T) {
	t.Parallel()

	boom := errors.New("connection reset")
	rows := newFakeRows(models.Event{ID: 1, TotalSeats: 10, AvailableSeats: 10})
	rows.updateErr = boom
	l := New(rows)

	ev, err := l.LockForUpdate(context.Background(), 1)
	require.NoError(t, err)

	err = l.DecrementAvailable(context.Background(), ev, 2)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 10, ev.AvailableSeats)
}

func TestResize(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name          string
		total         int
		wantErr       error
		wantTotal     int
		wantAvailable int
	}{
		{name: "Grow", total: 150, wantTotal: 150, wantAvailable: 120},
		{name: "Shrink to booked", total: 30, wantTotal: 30, wantAvailable: 0},
		{name: "Below booked", total: 29, wantErr: ErrCapacityBelowBooked, wantTotal: 100, wantAvailable: 70},
		{name: "Zero", total: 0, wantErr: ErrNonPositiveCount, wantTotal: 100, wantAvailable: 70},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			rows := newFakeRows(models.Event{ID: 1, TotalSeats: 100, AvailableSeats: 70})
			l := New(rows)

			ev, err := l.LockForUpdate(context.Background(), 1)
			require.NoError(t, err)

			err = l.Resize(context.Background(), ev, tc.total)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
			} else {
				assert.NoError(t, err)
			}

			assert.Equal(t, tc.wantTotal, rows.events[1].TotalSeats)
			assert.Equal(t, tc.wantAvailable, rows.events[1].AvailableSeats)
			assert.Equal(t, 30, rows.events[1].BookedSeats())
		})
	}
}

func TestCheckInvariant(t *testing.T) {
	t.Parallel()

	assert.NoError(t, CheckInvariant(models.Event{TotalSeats: 1, AvailableSeats: 0}))
	assert.NoError(t, CheckInvariant(models.Event{TotalSeats: 1, AvailableSeats: 1}))
	assert.ErrorIs(t, CheckInvariant(models.Event{TotalSeats: 1, AvailableSeats: -1}), ErrInvariantViolated)
	assert.ErrorIs(t, CheckInvariant(models.Event{TotalSeats: 1, AvailableSeats: 2}), ErrInvariantViolated)
}
