// Package server initializes and runs the backend application: database,
// migrations, services, session transport, and the HTTP API, with graceful
// shutdown on OS signals.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/ficomdev/ficomtest/internal/logging"
	"github.com/ficomdev/ficomtest/internal/server/config"
	"github.com/ficomdev/ficomtest/internal/server/httpapi"
	"github.com/ficomdev/ficomtest/internal/server/repositories/repomanager"
	"github.com/ficomdev/ficomtest/internal/server/services"
	"github.com/ficomdev/ficomtest/internal/server/session"
)

type App struct {
	config *config.Config
	logger logging.Logger
	server *httpapi.Server
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	// A misconfigured session secret must stop the server before it
	// accepts a single request.
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	sessions, err := session.NewManager(cfg.SessionSecret, cfg.IsProduction())
	if err != nil {
		return nil, err
	}

	db, err := repomanager.InitDB(cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	users := services.NewUserService(db, rm, cfg)
	srv := httpapi.NewServer(cfg, users, sessions, logger)

	return &App{config: cfg, logger: logger, server: srv}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "starting app", "addr", app.config.EndpointAddr, "env", app.config.Environment)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.server.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}()

	wg.Wait()
}
