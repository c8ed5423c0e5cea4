package cli

import (
	"bufio"
	"context"
	"log/slog"
	"os"

	_ "modernc.org/sqlite"

	"github.com/moodmapper/moodmapper/internal/client/client"
	"github.com/moodmapper/moodmapper/internal/client/config"
	"github.com/moodmapper/moodmapper/internal/client/quotes"
	"github.com/moodmapper/moodmapper/internal/client/repositories/metadata"
	"github.com/moodmapper/moodmapper/internal/client/services"
	"github.com/moodmapper/moodmapper/internal/client/store"
	scl "github.com/moodmapper/moodmapper/internal/client/sync"
	"github.com/moodmapper/moodmapper/internal/logging"
)

// App wires the client together: local store, remote client, auth,
// reconciler and watcher, driven by a small REPL.
type App struct {
	config      *config.Config
	store       *store.Store
	api         *client.HTTPClient
	authService services.AuthService
	reconciler  *scl.Reconciler
	watcher     *client.Watcher
	quotes      *quotes.Service
	logger      logging.Logger
	reader      *bufio.Reader

	stopWatcher context.CancelFunc
}

// NewApp opens the local database and wires every collaborator. Sync does
// not start until Run.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	st, err := store.Open(ctx, c.DatabasePath)
	if err != nil {
		logger.Error(ctx, "error initializing database", "error", err)
		return nil, err
	}

	api := client.NewHTTPClient(c.ServerEndpointAddr)
	authService := services.NewAuthService(api, st.DB())

	reconciler := scl.New(st, api, api, scl.Options{
		PullDebounce: c.PullDebounce,
		SyncRecency:  c.SyncRecency,
	}, logger)

	cursor := metadata.NewPullCursor(metadata.NewSQLiteRepository(st.DB()))
	watcher := client.NewWatcher(api, api, cursor, reconciler.HandleRemoteBatch, c.PollInterval, logger)

	return &App{
		config:      c,
		store:       st,
		api:         api,
		authService: authService,
		reconciler:  reconciler,
		watcher:     watcher,
		quotes:      quotes.New(),
		logger:      logger,
		reader:      bufio.NewReader(os.Stdin),
	}, nil
}

// Run restores a persisted session if any, starts the sync machinery, and
// enters the REPL until the user exits.
func (a *App) Run(ctx context.Context) {
	defer a.shutdown()

	if ok, err := a.authService.RestoreSession(ctx); err != nil {
		a.logger.Warn(ctx, "failed to restore session", "error", err)
	} else if ok {
		a.logger.Info(ctx, "session restored", "user", a.api.UserID())
	}

	a.startSync(ctx)
	a.Root(ctx)
}

// startSync attaches the reconciler to the store feed and starts the
// remote watcher.
func (a *App) startSync(ctx context.Context) {
	a.reconciler.Start()
	wctx, cancel := context.WithCancel(ctx)
	a.stopWatcher = cancel
	go a.watcher.Run(wctx)
}

func (a *App) shutdown() {
	if a.stopWatcher != nil {
		a.stopWatcher()
	}
	a.reconciler.Stop()
	_ = a.store.Close()
}

func (a *App) isLoggedIn() bool {
	return !a.api.IsAnonymous()
}
