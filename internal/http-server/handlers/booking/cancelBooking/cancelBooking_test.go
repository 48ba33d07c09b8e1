package cancelBooking

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"eventBooking/internal/http-server/handlers/booking/cancelBooking/mocks"
	"eventBooking/internal/lib/logger/handlers/slogdiscard"
	"eventBooking/internal/storage"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestCancelBookingHandler(t *testing.T) {
	t.Parallel()

	logger := slogdiscard.NewDiscardLogger()

	testCases := []struct {
		name           string
		bookingID      string
		mockSetup      func(m *mocks.BookingCanceller)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:      "Success",
			bookingID: "5",
			mockSetup: func(m *mocks.BookingCanceller) {
				m.On("CancelBooking", mock.Anything, int64(5)).Return(nil)
			},
			expectedStatus: http.StatusNoContent,
		},
		{
			name:           "Invalid id",
			bookingID:      "five",
			mockSetup:      func(m *mocks.BookingCanceller) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"invalid booking id format"}`,
		},
		{
			name:      "Booking not found",
			bookingID: "404",
			mockSetup: func(m *mocks.BookingCanceller) {
				m.On("CancelBooking", mock.Anything, int64(404)).Return(storage.ErrBookingNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"status":"Error","error":"booking not found"}`,
		},
		{
			name:      "Event missing",
			bookingID: "6",
			mockSetup: func(m *mocks.BookingCanceller) {
				m.On("CancelBooking", mock.Anything, int64(6)).Return(storage.ErrEventNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"status":"Error","error":"event not found"}`,
		},
		{
			name:      "Transaction failure",
			bookingID: "7",
			mockSetup: func(m *mocks.BookingCanceller) {
				m.On("CancelBooking", mock.Anything, int64(7)).
					Return(&storage.TransactionError{Op: "op", Kind: storage.FailureConnection, Err: errors.New("reset")})
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"status":"Error","error":"failed to cancel booking"}`,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			canceller := mocks.NewBookingCanceller(t)
			tc.mockSetup(canceller)

			router := chi.NewRouter()
			router.Delete("/bookings/{id}", New(logger, canceller))

			req := httptest.NewRequest(http.MethodDelete, "/bookings/"+tc.bookingID, nil)
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			assert.Equal(t, tc.expectedStatus, rr.Code)
			if tc.expectedBody != "" {
				assert.JSONEq(t, tc.expectedBody, rr.Body.String())
			} else {
				assert.Empty(t, rr.Body.String())
			}
		})
	}
}

func TestHandlerWithoutChiContext(t *testing.T) {
	t.Parallel()

	handler := New(slogdiscard.NewDiscardLogger(), mocks.NewBookingCanceller(t))

	req := httptest.NewRequest(http.MethodDelete, "/", nil).WithContext(context.Background())
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "booking id is required")
}
