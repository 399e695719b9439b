package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"sitebuilder/internal/api"
	"sitebuilder/internal/auth"
	"sitebuilder/internal/catalog"
	"sitebuilder/internal/config"
	"sitebuilder/internal/domain"
	"sitebuilder/internal/logging"
	mcpserver "sitebuilder/internal/mcp"
	"sitebuilder/internal/monitoring"
	"sitebuilder/internal/service"
	"sitebuilder/internal/storage"
)

// App owns every long-lived component of the builder and wires them together.
// The HTTP server and the MCP stdio server are two front ends over the same
// Session.
type App struct {
	cfg    *config.Config
	logger *zap.Logger

	state    domain.StateStore
	library  *catalog.Library
	projects *service.ProjectStore
	session  *service.Session
	events   *service.Broadcaster
	metrics  *monitoring.Metrics
	auth     *auth.Client
	backups  *service.BackupService

	catalogWatcher *catalog.Watcher
	stateWatcher   *stateWatcher
}

// New opens storage and builds the services described by cfg.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	state, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	a := &App{
		cfg:     cfg,
		logger:  logger,
		state:   state,
		events:  service.NewBroadcaster(),
		metrics: monitoring.New(),
	}

	if err := a.loadCatalog(); err != nil {
		state.Close()
		return nil, err
	}

	a.projects = service.NewProjectStore(state, logger)
	a.session = service.NewSession(service.SessionDeps{
		Library:       a.library,
		Projects:      a.projects,
		Emitter:       a.events,
		Logger:        logger,
		Metrics:       a.metrics,
		AutosaveDelay: cfg.Autosave.Delay,
	})
	a.auth = auth.NewClient(cfg.Auth, logger, a.metrics)
	a.backups = service.NewBackupService(a.projects, cfg.Backup.Dir, cfg.Backup.Keep, logger, a.metrics)

	logger.Info("builder initialized",
		zap.String("storage", cfg.Storage.Driver),
		zap.String("data_dir", cfg.DataDir),
		zap.Int("components", len(a.library.Components())),
		zap.Int("templates", len(a.library.Templates())),
	)
	return a, nil
}

// loadCatalog builds the component library, applying the override file when
// one is configured. With Catalog.Watch set the override is reloaded on change.
func (a *App) loadCatalog() error {
	base, err := catalog.Default()
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	path := a.cfg.Catalog.OverridePath
	if path == "" {
		a.library = base
		return nil
	}

	if !a.cfg.Catalog.Watch {
		lib, err := catalog.LoadOverride(base, path)
		if err != nil {
			return err
		}
		a.library = lib
		return nil
	}

	lib, err := catalog.Default()
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	w, err := catalog.Watch(lib, base, path, a.logger)
	if err != nil {
		return err
	}
	w.OnReload(func() {
		a.events.Emit(context.Background(), service.EventCatalogChanged, map[string]int{
			"components": len(lib.Components()),
			"templates":  len(lib.Templates()),
		})
	})
	a.library = lib
	a.catalogWatcher = w
	return nil
}

func (a *App) Config() *config.Config { return a.cfg }
func (a *App) Logger() *zap.Logger { return a.logger }
func (a *App) Library() *catalog.Library { return a.library }
func (a *App) Projects() *service.ProjectStore { return a.projects }
func (a *App) Session() *service.Session { return a.session }
func (a *App) Backups() *service.BackupService { return a.backups }
func (a *App) Events() *service.Broadcaster { return a.events }

// Handler builds the HTTP API.
func (a *App) Handler() http.Handler {
	return api.NewRouter(api.Deps{
		Session: a.session,
		Auth:    a.auth,
		Events:  a.events,
		Logger:  a.logger,
		Metrics: a.metrics,
		Login: api.RateLimitConfig{
			RequestsPerSecond: a.cfg.HTTP.LoginRate,
			Burst:             a.cfg.HTTP.LoginBurst,
		},
	})
}

// ServeHTTP runs the HTTP API, scheduled backups and the external-change
// watcher until ctx is cancelled, then shuts them down gracefully.
func (a *App) ServeHTTP(ctx context.Context) error {
	if err := a.backups.Start(a.cfg.Backup.Schedule); err != nil {
		return err
	}
	a.stateWatcher = newStateWatcher(a.projects, a.events, a.logger, time.Second)
	a.stateWatcher.Start()

	srv := &http.Server{
		Addr:              a.cfg.HTTP.Addr,
		Handler:           a.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

// ServeMCP runs the MCP server on stdin/stdout. Logs must not go to stdout in
// this mode; the CLI points the logger at stderr.
func (a *App) ServeMCP(ctx context.Context) error {
	srv := mcpserver.New(mcpserver.Deps{
		Session: a.session,
		Logger:  a.logger,
	})
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ServeStdio() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return nil
	}
}

// Close flushes the pending autosave and releases every resource.
func (a *App) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if a.stateWatcher != nil {
		a.stateWatcher.Stop()
	}
	if a.catalogWatcher != nil {
		a.catalogWatcher.Close()
	}
	a.backups.Stop(ctx)
	a.session.Close()
	if err := a.state.Close(); err != nil {
		a.logger.Warn("close storage", zap.Error(err))
	}
	_ = a.logger.Sync()
}
