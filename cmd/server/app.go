package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/tasksvc/tasksvc-api/internal/config"
	"github.com/tasksvc/tasksvc-api/internal/platform/postgres"
	"github.com/tasksvc/tasksvc-api/internal/service"
	"github.com/tasksvc/tasksvc-api/internal/service/auth"
	"github.com/tasksvc/tasksvc-api/internal/store"
)

// application holds the shared application dependencies so wiring happens in
// one place and cleanup can release everything on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	userStore     store.UserStore
	taskStore     store.TaskStore
	categoryStore store.CategoryStore
	tagStore      store.TagStore

	jwtService auth.JWTService
	hasher     *auth.BcryptHasher

	userService     *service.UserService
	taskService     *service.TaskService
	categoryService *service.CategoryService
	tagService      *service.TagService
}

// newApplication wires all dependencies. The caller supplies the core pieces
// that must exist before anything else: config, logger, and the database.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
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
	logger.Info("JWT service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes,
		"refresh_token_lifetime_minutes", cfg.Auth.RefreshTokenLifetimeMinutes)

	app.hasher = auth.NewBcryptHasher(cfg.Auth.BCryptCost)

	app.userStore = postgres.NewPostgresUserStore(db, app.hasher)
	app.taskStore = postgres.NewPostgresTaskStore(db)
	app.categoryStore = postgres.NewPostgresCategoryStore(db)
	app.tagStore = postgres.NewPostgresTagStore(db)

	app.userService = service.NewUserService(app.userStore, app.jwtService, app.hasher, cfg.Auth)
	app.taskService = service.NewTaskService(
		store.SQLTransactor{DB: db}, app.taskStore, app.categoryStore, app.tagStore)
	app.categoryService = service.NewCategoryService(app.categoryStore)
	app.tagService = service.NewTagService(app.tagStore)

	logger.Info("application initialized")
	return app, nil
}

// Run starts the HTTP server and blocks until shutdown.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup releases application resources on shutdown.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", "error", err)
		}
	}
	app.logger.Info("application shutdown completed")
}
