package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/osteovet/clinic-backend/api/routes"
	"github.com/osteovet/clinic-backend/internal/animals"
	"github.com/osteovet/clinic-backend/internal/appointments"
	"github.com/osteovet/clinic-backend/internal/auditlog"
	"github.com/osteovet/clinic-backend/internal/auth"
	"github.com/osteovet/clinic-backend/internal/blog"
	"github.com/osteovet/clinic-backend/internal/booking"
	"github.com/osteovet/clinic-backend/internal/catalog"
	"github.com/osteovet/clinic-backend/internal/reminders"
	"github.com/osteovet/clinic-backend/internal/todos"
	"github.com/osteovet/clinic-backend/internal/treatmentnotes"
	"github.com/osteovet/clinic-backend/internal/users"
	"github.com/osteovet/clinic-backend/pkg/auth/session"
	"github.com/osteovet/clinic-backend/pkg/config"
	"github.com/osteovet/clinic-backend/pkg/db"
	"github.com/osteovet/clinic-backend/pkg/instance"
	"github.com/osteovet/clinic-backend/pkg/logger"
	"github.com/osteovet/clinic-backend/pkg/metrics"
	"github.com/osteovet/clinic-backend/pkg/migrate"
	"github.com/osteovet/clinic-backend/pkg/redis"
)

const (
	serviceName     = "clinic-api"
	shutdownTimeout = 15 * time.Second
)

func main() {
	logg := logger.New(logger.Options{ServiceName: serviceName})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: serviceName,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logg); err != nil {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) error {
	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return err
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		return err
	}

	params, err := buildRouterParams(cfg, logg, dbClient, redisClient, sessionManager)
	if err != nil {
		return err
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(params),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logg.Info(logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "addr": addr, "instance": instance.ID()}), "starting api server")
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	logg.Info(shutdownCtx, "shutting down api server")
	return server.Shutdown(shutdownCtx)
}

func buildRouterParams(cfg *config.Config, logg *logger.Logger, dbClient *db.Client, redisClient *redis.Client, sessionManager *session.Manager) (routes.Params, error) {
	offsets, err := cfg.Reminders.BookingOffsets()
	if err != nil {
		return routes.Params{}, err
	}

	userService, err := users.NewService(users.ServiceParams{DB: dbClient})
	if err != nil {
		return routes.Params{}, err
	}
	authService, err := auth.NewService(auth.ServiceParams{
		DB:             dbClient,
		SessionManager: sessionManager,
		Users:          userService,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
		Logger:         logg,
	})
	if err != nil {
		return routes.Params{}, err
	}
	animalService, err := animals.NewService(dbClient)
	if err != nil {
		return routes.Params{}, err
	}
	noteService, err := treatmentnotes.NewService(dbClient)
	if err != nil {
		return routes.Params{}, err
	}
	catalogService, err := catalog.NewService(dbClient)
	if err != nil {
		return routes.Params{}, err
	}
	appointmentService, err := appointments.NewService(dbClient)
	if err != nil {
		return routes.Params{}, err
	}
	bookingService, err := booking.NewService(booking.ServiceParams{DB: dbClient, BookingOffsets: offsets})
	if err != nil {
		return routes.Params{}, err
	}
	reminderService, err := reminders.NewService(reminders.ServiceParams{DB: dbClient, BookingOffsets: offsets})
	if err != nil {
		return routes.Params{}, err
	}
	todoService, err := todos.NewService(dbClient)
	if err != nil {
		return routes.Params{}, err
	}
	blogService, err := blog.NewService(dbClient)
	if err != nil {
		return routes.Params{}, err
	}
	auditService, err := auditlog.NewService(auditlog.NewRepository(dbClient.DB()))
	if err != nil {
		return routes.Params{}, err
	}

	return routes.Params{
		Config:         cfg,
		Logger:         logg,
		DB:             dbClient,
		Redis:          redisClient,
		Sessions:       sessionManager,
		Accounts:       users.NewRepository(dbClient.DB()),
		Gatherer:       prometheus.DefaultGatherer,
		Metrics:        metrics.NewHTTPMetrics(prometheus.DefaultRegisterer),
		Auth:           authService,
		Users:          userService,
		Animals:        animalService,
		TreatmentNotes: noteService,
		Catalog:        catalogService,
		Appointments:   appointmentService,
		Booking:        bookingService,
		Reminders:      reminderService,
		Todos:          todoService,
		Blog:           blogService,
		AuditLog:       auditService,
	}, nil
}
