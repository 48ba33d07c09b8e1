package health

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"eventBooking/internal/lib/logger/sl"

	"github.com/go-chi/render"
)

const (
	statusUp   = "UP"
	statusDown = "DOWN"

	serviceName = "event-booker"
	pingTimeout = 2 * time.Second
)

type Response struct {
	Status   string `json:"status"`
	Service  string `json:"service"`
	Database string `json:"database"`
}

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=Pinger
type Pinger interface {
	Ping(ctx context.Context) error
}

func New(log *slog.Logger, db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.health.New"

		log := log.With(slog.String("op", op))

		ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
		defer cancel()

		resp := Response{Status: statusUp, Service: serviceName, Database: statusUp}

		if err := db.Ping(ctx); err != nil {
			log.Error("database ping failed", sl.Err(err))

			resp.Status = statusDown
			resp.Database = statusDown
			render.Status(r, http.StatusServiceUnavailable)
		}

		render.JSON(w, r, resp)
	}
}
