package main

import (
	"fmt"
	"log/slog"

	"github.com/371050/study-pwa/internal/config"
	"github.com/371050/study-pwa/internal/events"
	"github.com/371050/study-pwa/internal/metrics"
	"github.com/371050/study-pwa/internal/service"
	"github.com/371050/study-pwa/internal/service/auth"
	"github.com/371050/study-pwa/internal/service/ingest"
	"github.com/371050/study-pwa/internal/service/snapshot"
	"github.com/371050/study-pwa/internal/store"
)

// application holds the shared dependencies of the server and releases
// them on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	store  store.Store

	subjects  service.SubjectService
	ledger    service.LedgerService
	schedule  service.ScheduleService
	entries   *ingest.Service
	snapshots *snapshot.Service

	// jwtService is nil when authentication is disabled.
	jwtService auth.JWTService
	// metrics is nil when the metrics endpoint is disabled.
	metrics *metrics.Metrics

	eventEmitter *events.InMemoryEventEmitter
}

// newApplication wires the services over an open store. The application
// takes ownership of st.
func newApplication(cfg *config.Config, logger *slog.Logger, st store.Store) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		store:  st,
	}

	loc, err := cfg.Schedule.Location()
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone: %w", err)
	}

	app.eventEmitter = events.NewInMemoryEventEmitter(logger)
	if cfg.Metrics.Enabled {
		app.metrics = metrics.New()
		app.eventEmitter.RegisterHandler(app.metrics)
	}

	if cfg.Auth.Enabled() {
		app.jwtService, err = auth.NewJWTService(cfg.Auth)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
		}
		logger.Info("API authentication enabled",
			slog.Int("token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes))
	}

	opts := []service.Option{
		service.WithLocation(loc),
		service.WithEmitter(app.eventEmitter),
	}

	if app.subjects, err = service.NewSubjectService(st, logger, opts...); err != nil {
		return nil, fmt.Errorf("failed to create subject service: %w", err)
	}
	if app.ledger, err = service.NewLedgerService(st, logger, opts...); err != nil {
		return nil, fmt.Errorf("failed to create ledger service: %w", err)
	}
	if app.schedule, err = service.NewScheduleService(st, logger, opts...); err != nil {
		return nil, fmt.Errorf("failed to create schedule service: %w", err)
	}
	if app.entries, err = ingest.NewService(st, logger, opts...); err != nil {
		return nil, fmt.Errorf("failed to create ingest service: %w", err)
	}
	if app.snapshots, err = snapshot.NewService(st, logger, opts...); err != nil {
		return nil, fmt.Errorf("failed to create snapshot service: %w", err)
	}

	logger.Info("application initialized")
	return app, nil
}

// cleanup releases the store.
func (app *application) cleanup() {
	if app.store != nil {
		if err := app.store.Close(); err != nil {
			app.logger.Error("error closing store", slog.String("error", err.Error()))
		}
	}
	app.logger.Info("application shutdown completed")
}
