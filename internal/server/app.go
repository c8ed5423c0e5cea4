// Package server initializes and runs the MoodMapper backend: it connects
// to PostgreSQL, applies migrations, and serves the HTTP API until a
// termination signal arrives.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/moodmapper/moodmapper/internal/logging"
	"github.com/moodmapper/moodmapper/internal/server/config"
	"github.com/moodmapper/moodmapper/internal/server/httpapi"
	"github.com/moodmapper/moodmapper/internal/server/repositories/repomanager"
	"github.com/moodmapper/moodmapper/internal/server/services"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	server *httpapi.Server
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	userService := services.NewUserService(db, rm, c)
	docService := services.NewDocumentService(db, rm)

	handler := httpapi.NewHandler(userService, docService, logger)
	server := httpapi.NewServer(c.EndpointAddr, handler, logger)

	return &App{config: c, logger: logger, db: db, server: server}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	if err := app.server.Run(ctx); err != nil {
		app.logger.Error(ctx, "http server error", "error", err)
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
}
