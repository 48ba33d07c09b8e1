package createBooking

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"eventBooking/internal/booking"
	"eventBooking/internal/ledger"
	"eventBooking/internal/lib/api/response"
	"eventBooking/internal/lib/logger/sl"
	"eventBooking/internal/models"
	"eventBooking/internal/storage"

	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

type BookingRequest struct {
	EventID      int64  `json:"event_id" validate:"required,gt=0"`
	CustomerName string `json:"customer_name" validate:"required,max=255"`
	SeatsBooked  int    `json:"seats_booked" validate:"gt=0"`
}

type BookingResponse struct {
	response.Response
	Booking *models.Booking `json:"booking"`
}

type CapacityResponse struct {
	response.Response
	Available int `json:"available"`
	Requested int `json:"requested"`
}

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=BookingCreator
type BookingCreator interface {
	CreateBooking(ctx context.Context, in booking.CreateBookingInput) (*models.Booking, error)
}

func New(log *slog.Logger, creator BookingCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.booking.createBooking.New"

		log := log.With(slog.String("op", op))

		var req BookingRequest

		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			log.Error("failed to decode request body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("failed to decode request"))
			return
		}

		log.Info("request body decoded", slog.Any("request", req))

		if err = validator.New().Struct(req); err != nil {
			log.Error("invalid request", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Invalid(err))
			return
		}

		created, err := creator.CreateBooking(r.Context(), booking.CreateBookingInput{
			EventID:      req.EventID,
			CustomerName: req.CustomerName,
			SeatsBooked:  req.SeatsBooked,
		})
		if err != nil {
			var capErr *ledger.InsufficientCapacityError

			switch {
			case errors.As(err, &capErr):
				log.Info("not enough seats", slog.Int("available", capErr.Available), slog.Int("requested", capErr.Requested))
				render.Status(r, http.StatusConflict)
				render.JSON(w, r, CapacityResponse{
					Response:  response.Error("not enough seats available"),
					Available: capErr.Available,
					Requested: capErr.Requested,
				})
			case errors.Is(err, booking.ErrValidation):
				log.Info("booking rejected", sl.Err(err))
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.Error(err.Error()))
			case errors.Is(err, storage.ErrEventNotFound):
				log.Info("event not found", slog.Int64("event_id", req.EventID))
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.Error("event not found"))
			default:
				log.Error("failed to book event", sl.Err(err))
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.Error("failed to book event"))
			}
			return
		}

		log.Info("event booked successfully", slog.Int64("booking_id", created.ID))

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, BookingResponse{
			Response: response.OK(),
			Booking:  created,
		})
	}
}
