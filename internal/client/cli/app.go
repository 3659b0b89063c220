package cli

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/ficomdev/ficomtest/internal/client/cache"
	"github.com/ficomdev/ficomtest/internal/client/client"
	"github.com/ficomdev/ficomtest/internal/client/config"
	"github.com/ficomdev/ficomtest/internal/client/guard"
	"github.com/ficomdev/ficomtest/internal/client/repositories/credentials"
	"github.com/ficomdev/ficomtest/internal/client/services"
	"github.com/ficomdev/ficomtest/internal/client/state"
	"github.com/ficomdev/ficomtest/internal/common"
	"github.com/ficomdev/ficomtest/internal/filex"
	"github.com/ficomdev/ficomtest/internal/logging"
)

type App struct {
	config        *config.Config
	authState     *state.Context
	authService   services.AuthService
	viewerService services.ViewerService
	guard         *guard.Guard
	reader        *bufio.Reader
	stopWatch     func()
}

func NewApp(c *config.Config) (*App, error) {
	ctx := context.Background()

	dataDir, err := filex.EnsureSubdDir("data")
	if err != nil {
		return nil, fmt.Errorf("error preparing data directory: %w", err)
	}

	db, err := client.InitDatabase(ctx, filepath.Join(dataDir, c.CredentialDB))
	if err != nil {
		return nil, fmt.Errorf("error initializing credential database: %w", err)
	}

	store := credentials.NewSQLiteRepository(db)
	responses := cache.New()

	authState, err := state.New(store, responses)
	if err != nil {
		return nil, err
	}

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	app := &App{
		config:    c,
		authState: authState,
		guard:     guard.New(),
		reader:    bufio.NewReader(os.Stdin),
	}

	api := client.NewGraphQLClient(c.ServerURL, authState, app, responses, logger)
	api.SetHTTPClient(&http.Client{Timeout: c.RequestTimeout})

	app.authService = services.NewAuthService(api, authState)
	app.viewerService = services.NewViewerService(api)

	return app, nil
}

// Navigate implements the guard/gateway navigation effect. In the CLI the
// login entry point is the anonymous prompt.
func (a *App) Navigate(path string) {
	if path == common.LoginPath {
		fmt.Println("Please log in to continue.")
	}
}

func (a *App) isLoggedIn() bool {
	return a.authState.Snapshot().Authenticated()
}

func (a *App) Run(ctx context.Context) {
	restoreCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	if err := a.authState.Restore(restoreCtx); err != nil {
		fmt.Printf("Could not restore saved session: %s\n", err.Error())
	}
	cancel()

	a.stopWatch = guard.Watch(a.authState, a.guard, a)
	defer a.stopWatch()

	a.Root(ctx)
}
