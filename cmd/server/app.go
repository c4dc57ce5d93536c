package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/oriontask/orion-api/internal/config"
	"github.com/oriontask/orion-api/internal/domain/policy"
	"github.com/oriontask/orion-api/internal/platform/postgres"
	"github.com/oriontask/orion-api/internal/service"
	"github.com/oriontask/orion-api/internal/service/auth"
	"github.com/oriontask/orion-api/internal/store"
	"github.com/oriontask/orion-api/internal/task"
)

// application holds the shared application dependencies so wiring and
// shutdown live in one place.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	userStore   store.UserStore
	taskStore   store.TaskStore
	dharmaStore store.DharmaStore

	jwtService     auth.JWTService
	passwordHasher *auth.BcryptVerifier

	taskService   *service.TaskService
	dharmaService *service.DharmaService

	scheduler *task.Scheduler
}

// newApplication creates an application instance with all dependencies
// initialized. Configuration, logging, and the database connection must be
// established by the caller first.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	app.passwordHasher = auth.NewBcryptVerifier()

	app.userStore = postgres.NewPostgresUserStore(db, logger)
	app.taskStore = postgres.NewPostgresTaskStore(db, logger)
	app.dharmaStore = postgres.NewPostgresDharmaStore(db, logger)

	transitionPolicy := policy.New(policy.Config{
		MaxNowTasks:    cfg.Scheduler.MaxNowTasks,
		SnoozeDuration: cfg.Scheduler.SnoozeDuration,
	})

	app.taskService = service.NewTaskService(db, app.taskStore, app.dharmaStore, transitionPolicy, logger)
	app.dharmaService = service.NewDharmaService(db, app.dharmaStore, app.taskStore, logger)

	app.scheduler = task.NewScheduler(app.taskService, cfg.Scheduler.PromoteInterval, logger)

	logger.Info("Application initialized successfully")
	return app, nil
}

// Run starts the background scheduler and the HTTP server, blocking until
// shutdown.
func (app *application) Run(ctx context.Context) error {
	if err := app.scheduler.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	router := app.setupRouter()
	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup(ctx context.Context) {
	if app.scheduler != nil {
		if err := app.scheduler.Stop(ctx); err != nil {
			app.logger.Error("Error stopping scheduler", "error", err)
		}
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}
