package createBooking

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"eventBooking/internal/booking"
	"eventBooking/internal/http-server/handlers/booking/createBooking/mocks"
	"eventBooking/internal/ledger"
	"eventBooking/internal/lib/logger/handlers/slogdiscard"
	"eventBooking/internal/models"
	"eventBooking/internal/storage"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCreateBookingHandler(t *testing.T) {
	t.Parallel()

	logger := slogdiscard.NewDiscardLogger()
	createdAt := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

	input := booking.CreateBookingInput{EventID: 1, CustomerName: "Alice", SeatsBooked: 30}

	testCases := []struct {
		name           string
		requestBody    string
		mockSetup      func(m *mocks.BookingCreator)
		expectedStatus int
		expectedBody   string
		checkBody      func(t *testing.T, body string)
	}{
		{
			name:        "Success",
			requestBody: `{"event_id": 1, "customer_name": "Alice", "seats_booked": 30}`,
			mockSetup: func(m *mocks.BookingCreator) {
				m.On("CreateBooking", mock.Anything, input).Return(&models.Booking{
					ID:           7,
					EventID:      1,
					EventName:    "Concert",
					CustomerName: "Alice",
					SeatsBooked:  30,
					CreatedAt:    createdAt,
				}, nil)
			},
			expectedStatus: http.StatusCreated,
			expectedBody: `{"status":"OK","booking":{"id":7,"event_id":1,"event_name":"Concert",` +
				`"customer_name":"Alice","seats_booked":30,"created_at":"2026-10-19T12:00:00Z"}}`,
		},
		{
			name:           "Invalid JSON",
			requestBody:    `invalid json`,
			mockSetup:      func(m *mocks.BookingCreator) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"failed to decode request"}`,
		},
		{
			name:           "Missing customer name",
			requestBody:    `{"event_id": 1, "seats_booked": 2}`,
			mockSetup:      func(m *mocks.BookingCreator) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"field CustomerName is a required field"}`,
		},
		{
			name:           "Zero seats",
			requestBody:    `{"event_id": 1, "customer_name": "Alice", "seats_booked": 0}`,
			mockSetup:      func(m *mocks.BookingCreator) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"field SeatsBooked must be at least 1"}`,
		},
		{
			name:           "Negative seats",
			requestBody:    `{"event_id": 1, "customer_name": "Alice", "seats_booked": -4}`,
			mockSetup:      func(m *mocks.BookingCreator) {},
			expectedStatus: http.StatusBadRequest,
			checkBody: func(t *testing.T, body string) {
				assert.Contains(t, body, `"status":"Error"`)
				assert.Contains(t, body, "SeatsBooked")
			},
		},
		{
			name:           "Missing event id",
			requestBody:    `{"customer_name": "Alice", "seats_booked": 1}`,
			mockSetup:      func(m *mocks.BookingCreator) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"field EventID is a required field"}`,
		},
		{
			name:        "Insufficient capacity",
			requestBody: `{"event_id": 1, "customer_name": "Bob", "seats_booked": 80}`,
			mockSetup: func(m *mocks.BookingCreator) {
				m.On("CreateBooking", mock.Anything, booking.CreateBookingInput{EventID: 1, CustomerName: "Bob", SeatsBooked: 80}).
					Return(nil, &ledger.InsufficientCapacityError{EventID: 1, Available: 70, Requested: 80})
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   `{"status":"Error","error":"not enough seats available","available":70,"requested":80}`,
		},
		{
			name:        "Event not found",
			requestBody: `{"event_id": 9999, "customer_name": "Alice", "seats_booked": 1}`,
			mockSetup: func(m *mocks.BookingCreator) {
				m.On("CreateBooking", mock.Anything, booking.CreateBookingInput{EventID: 9999, CustomerName: "Alice", SeatsBooked: 1}).
					Return(nil, storage.ErrEventNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"status":"Error","error":"event not found"}`,
		},
		{
			name:        "Blank name rejected by coordinator",
			requestBody: `{"event_id": 1, "customer_name": "  ", "seats_booked": 1}`,
			mockSetup: func(m *mocks.BookingCreator) {
				m.On("CreateBooking", mock.Anything, booking.CreateBookingInput{EventID: 1, CustomerName: "  ", SeatsBooked: 1}).
					Return(nil, &booking.ValidationError{Field: "customer_name", Reason: "is required"})
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"invalid customer_name: is required"}`,
		},
		{
			name:        "Transaction failure",
			requestBody: `{"event_id": 1, "customer_name": "Alice", "seats_booked": 30}`,
			mockSetup: func(m *mocks.BookingCreator) {
				m.On("CreateBooking", mock.Anything, input).
					Return(nil, &storage.TransactionError{Op: "op", Kind: storage.FailureDeadlock, Err: errors.New("deadlock")})
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"status":"Error","error":"failed to book event"}`,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			creator := mocks.NewBookingCreator(t)
			tc.mockSetup(creator)

			router := chi.NewRouter()
			router.Post("/bookings", New(logger, creator))

			req, err := http.NewRequest(http.MethodPost, "/bookings", bytes.NewBufferString(tc.requestBody))
			require.NoError(t, err)

			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			assert.Equal(t, tc.expectedStatus, rr.Code, "Status code mismatch")

			if tc.expectedBody != "" {
				assert.JSONEq(t, tc.expectedBody, rr.Body.String(), "Response body mismatch")
			} else if tc.checkBody != nil {
				tc.checkBody(t, rr.Body.String())
			}
		})
	}
}
