package getBooking

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"eventBooking/internal/http-server/handlers/booking/getBooking/mocks"
	"eventBooking/internal/lib/logger/handlers/slogdiscard"
	"eventBooking/internal/models"
	"eventBooking/internal/storage"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestGetBookingHandler(t *testing.T) {
	t.Parallel()

	logger := slogdiscard.NewDiscardLogger()

	testCases := []struct {
		name           string
		bookingID      string
		mockSetup      func(m *mocks.BookingGetter)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:      "Success",
			bookingID: "3",
			mockSetup: func(m *mocks.BookingGetter) {
				m.On("GetBooking", mock.Anything, int64(3)).Return(&models.Booking{
					ID: 3, EventID: 1, EventName: "Concert", CustomerName: "Alice", SeatsBooked: 2,
					CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
				}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody: `{"status":"OK","booking":{"id":3,"event_id":1,"event_name":"Concert",` +
				`"customer_name":"Alice","seats_booked":2,"created_at":"2026-01-02T03:04:05Z"}}`,
		},
		{
			name:           "Invalid id",
			bookingID:      "0",
			mockSetup:      func(m *mocks.BookingGetter) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"invalid booking id format"}`,
		},
		{
			name:      "Not found",
			bookingID: "99",
			mockSetup: func(m *mocks.BookingGetter) {
				m.On("GetBooking", mock.Anything, int64(99)).Return(nil, storage.ErrBookingNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"status":"Error","error":"booking not found"}`,
		},
		{
			name:      "Storage error",
			bookingID: "4",
			mockSetup: func(m *mocks.BookingGetter) {
				m.On("GetBooking", mock.Anything, int64(4)).Return(nil, errors.New("db down"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"status":"Error","error":"failed to get booking"}`,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			getter := mocks.NewBookingGetter(t)
			tc.mockSetup(getter)

			router := chi.NewRouter()
			router.Get("/bookings/{id}", New(logger, getter))

			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/bookings/"+tc.bookingID, nil))

			assert.Equal(t, tc.expectedStatus, rr.Code)
			assert.JSONEq(t, tc.expectedBody, rr.Body.String())
		})
	}
}
