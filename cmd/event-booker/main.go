package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"eventBooking/internal/booking"
	"eventBooking/internal/cache"
	"eventBooking/internal/config"
	"eventBooking/internal/http-server/handlers/booking/cancelBooking"
	"eventBooking/internal/http-server/handlers/booking/createBooking"
	"eventBooking/internal/http-server/handlers/booking/getAllBookings"
	"eventBooking/internal/http-server/handlers/booking/getBooking"
	"eventBooking/internal/http-server/handlers/event/createEvent"
	"eventBooking/internal/http-server/handlers/event/deleteEvent"
	"eventBooking/internal/http-server/handlers/event/getAllEvents"
	"eventBooking/internal/http-server/handlers/event/getEventBookings"
	"eventBooking/internal/http-server/handlers/event/getEventInfo"
	"eventBooking/internal/http-server/handlers/event/updateEvent"
	"eventBooking/internal/http-server/handlers/health"
	"eventBooking/internal/http-server/middleware/mwlogger"
	"eventBooking/internal/lib/logger/handlers/slogpretty"
	"eventBooking/internal/lib/logger/sl"
	"eventBooking/internal/messaging"
	"eventBooking/internal/publisher"
	"eventBooking/internal/storage/cached"
	"eventBooking/internal/storage/postgres"
	"eventBooking/migrations"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	cfg := config.MustLoad()

	log := setupLogger(cfg.Env)

	log.Info("Starting event booker", slog.String("env", cfg.Env))
	log.Debug("Debug messages are enabled")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	storage, err := postgres.InitDB(ctx, &cfg.Database, log)
	if err != nil {
		log.Error("failed to init storage", sl.Err(err))
		os.Exit(1)
	}

	if err = migrations.Apply(ctx, storage.DB()); err != nil {
		log.Error("failed to apply migrations", sl.Err(err))
		_ = storage.Close()
		os.Exit(1)
	}

	var (
		events    getAllEvents.EventsGetter = storage
		eventInfo getEventInfo.EventGetter  = storage
		listeners []booking.Listener
		closers   []func() error
	)

	if cfg.Redis.Enabled {
		redisCache, err := cache.Connect(ctx, cfg.Redis)
		if err != nil {
			log.Error("failed to connect to redis, serving events uncached", sl.Err(err))
		} else {
			cachedEvents := cached.NewEvents(storage, redisCache, log)
			events, eventInfo = cachedEvents, cachedEvents
			listeners = append(listeners, cachedEvents)
			closers = append(closers, redisCache.Close)
			log.Info("event cache enabled", slog.String("addr", cfg.Redis.Addr))
		}
	}

	if cfg.Broker.Enabled {
		mq, err := messaging.NewRabbitMQ(cfg.Broker.URL, log)
		if err != nil {
			log.Error("failed to connect to broker, changes will not be published", sl.Err(err))
		} else {
			changes, err := publisher.NewChangePublisher(mq, cfg.Broker.Queue)
			if err != nil {
				log.Error("failed to declare change queue", sl.Err(err))
				_ = mq.Close()
			} else {
				listeners = append(listeners, changes)
				closers = append(closers, mq.Close)
			}
		}
	}

	coordinator := booking.New(storage, log,
		booking.WithTxTimeout(cfg.Booking.TxTimeout),
		booking.WithListeners(listeners...),
	)

	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(mwlogger.New(log))
	router.Use(middleware.Recoverer)
	router.Use(middleware.URLFormat)

	router.Get("/health", health.New(log, storage))

	router.Route("/events", func(r chi.Router) {
		r.Get("/", getAllEvents.New(log, events))
		r.Post("/", createEvent.New(log, coordinator))
		r.Get("/{id}", getEventInfo.New(log, eventInfo))
		r.Put("/{id}", updateEvent.New(log, coordinator))
		r.Delete("/{id}", deleteEvent.New(log, coordinator))
		r.Get("/{id}/bookings", getEventBookings.New(log, storage))
	})

	router.Route("/bookings", func(r chi.Router) {
		r.Get("/", getAllBookings.New(log, storage))
		r.Post("/", createBooking.New(log, coordinator))
		r.Get("/{id}", getBooking.New(log, storage))
		r.Delete("/{id}", cancelBooking.New(log, coordinator))
	})

	log.Info("starting server", slog.String("address", cfg.HTTPServer.Address))

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("failed to start server", sl.Err(err))
			stop()
		}
	}()

	<-ctx.Done()

	log.Info("application stopping")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPServer.ShutdownTimeout)
	defer cancel()

	if err = srv.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to shutdown server", sl.Err(err))
	}

	log.Info("application stopped")

	for _, closeFn := range closers {
		if err = closeFn(); err != nil {
			log.Error("failed to close connection", sl.Err(err))
		}
	}

	if err = storage.Close(); err != nil {
		log.Error("failed to close postgres connection", sl.Err(err))
	}

	log.Info("postgres connection closed")
}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = setupPrettySlog()
	case envDev:
		log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envProd:
		log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}

	return log
}

func setupPrettySlog() *slog.Logger {
	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}

	h := opts.NewPrettyHandler(os.Stdout)

	return slog.New(h)
}
