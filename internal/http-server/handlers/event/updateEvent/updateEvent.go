package updateEvent

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"eventBooking/internal/booking"
	"eventBooking/internal/ledger"
	"eventBooking/internal/lib/api/request"
	"eventBooking/internal/lib/api/response"
	"eventBooking/internal/lib/logger/sl"
	"eventBooking/internal/models"
	"eventBooking/internal/storage"

	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

// UpdateRequest is a partial update. AvailableSeats is decoded only so that
// clients trying to set it get a clear rejection.
type UpdateRequest struct {
	Name           *string    `json:"name" validate:"omitempty,min=1,max=255"`
	EventDate      *time.Time `json:"event_date"`
	TotalSeats     *int       `json:"total_seats" validate:"omitempty,gt=0"`
	AvailableSeats *int       `json:"available_seats"`
}

type EventResponse struct {
	response.Response
	Event *models.Event `json:"event"`
}

type CapacityResponse struct {
	response.Response
	Booked    int `json:"booked"`
	Requested int `json:"requested"`
}

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=EventUpdater
type EventUpdater interface {
	UpdateEvent(ctx context.Context, in booking.UpdateEventInput) (*models.Event, error)
}

func New(log *slog.Logger, updater EventUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.event.updateEvent.New"

		log := log.With(slog.String("op", op))

		eventID, err := request.ID(r, "id", "event")
		if err != nil {
			log.Error("bad event id", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error(err.Error()))
			return
		}

		log = log.With(slog.Int64("event_id", eventID))

		var req UpdateRequest

		if err = render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("failed to decode request body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("failed to decode request"))
			return
		}

		if req.AvailableSeats != nil {
			log.Info("rejected direct write to available seats")
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("available_seats cannot be set directly"))
			return
		}

		if err = validator.New().Struct(req); err != nil {
			log.Error("invalid request", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Invalid(err))
			return
		}

		ev, err := updater.UpdateEvent(r.Context(), booking.UpdateEventInput{
			ID:         eventID,
			Name:       req.Name,
			EventDate:  req.EventDate,
			TotalSeats: req.TotalSeats,
		})
		if err != nil {
			var below *ledger.CapacityBelowBookedError

			switch {
			case errors.Is(err, booking.ErrValidation):
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.Error(err.Error()))
			case errors.Is(err, storage.ErrEventNotFound):
				log.Info("event not found")
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.Error("event not found"))
			case errors.As(err, &below):
				log.Info("capacity below booked seats",
					slog.Int("booked", below.Booked),
					slog.Int("requested", below.Requested),
				)
				render.Status(r, http.StatusConflict)
				render.JSON(w, r, CapacityResponse{
					Response:  response.Error("total seats cannot be lower than booked seats"),
					Booked:    below.Booked,
					Requested: below.Requested,
				})
			default:
				log.Error("failed to update event", sl.Err(err))
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.Error("failed to update event"))
			}
			return
		}

		log.Info("event updated")

		render.JSON(w, r, EventResponse{
			Response: response.OK(),
			Event:    ev,
		})
	}
}
