// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/outliner/internal/api"
	"github.com/starford/outliner/internal/assets"
	"github.com/starford/outliner/internal/mcpserver"
	"github.com/starford/outliner/internal/snapshot"
	"github.com/starford/outliner/internal/sse"
	"github.com/starford/outliner/internal/storage"
	"github.com/starford/outliner/internal/workspace"
)

func newApplication(opts []Option) (*application, error) {
	app := &application{logOutput: os.Stdout}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

func (a *application) logger() *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(a.logOutput, &slog.HandlerOptions{
		Level: a.config.App.LogLevel,
	}))
	slog.SetDefault(logger)
	return logger
}

// openWorkspace opens the graph and its snapshot and loads every page.
// The returned cleanup releases the snapshot database.
func openWorkspace(ctx context.Context, cfg *Config, logger *slog.Logger) (*workspace.Service, func(), error) {
	if err := os.MkdirAll(cfg.Graph.Path, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create graph dir: %w", err)
	}
	store, err := storage.NewFS(cfg.Graph.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("init storage: %w", err)
	}

	var snap snapshot.Store
	cleanup := func() {}
	if cfg.SQLite.Enabled() {
		db, err := snapshot.Open(cfg.SQLite.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("init snapshot: %w", err)
		}
		snap = db
		cleanup = func() {
			if err := db.Close(); err != nil {
				logger.Warn("snapshot close failed", slog.String("error", err.Error()))
			}
		}
	}

	svc := workspace.NewService(store, assets.NewCache(store, cfg.Assets.MaxInlineSize), snap, logger)
	if err := svc.Load(ctx); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("load graph: %w", err)
	}
	return svc, cleanup, nil
}

func health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config
	logger := app.logger()

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("graph_path", cfg.Graph.Path),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.Bool("watch", cfg.Graph.Watch),
		slog.String("log_level", cfg.App.LogLevel.String()))

	svc, cleanup, err := openWorkspace(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	broker := sse.NewBroker(cfg.Events.IndexThrottle)
	defer broker.Close()
	svc.OnChange(broker.PublishPageEvent)

	apiRouter := api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", health)
	r.Get("/health/ready", health)

	r.Mount("/api", apiRouter)

	// Rendered pages link assets from the site root.
	r.With(api.AuthMiddleware(cfg.Auth.AuthEnabled(), cfg.Auth.Token)).
		Get("/assets/{name}", api.NewHandler(svc).ServeAsset)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	if cfg.Graph.Watch {
		g.Go(func() error {
			if err := svc.Watch(gCtx, cfg.Graph.Path); err != nil {
				logger.Warn("file watcher stopped", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		// SSE streams end once the broker closes their channels.
		broker.Close()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown cancels the group so that the watcher stops with the server.
var errShutdown = errors.New("shutdown")

// RunMCP serves the graph over the Model Context Protocol on stdio.
func RunMCP(ctx context.Context, opts ...Option) error {
	app, err := newApplication(append([]Option{WithLogOutput(os.Stderr)}, opts...))
	if err != nil {
		return err
	}
	cfg := app.config
	logger := app.logger()

	svc, cleanup, err := openWorkspace(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	logger.Info("MCP server starting", slog.String("graph_path", cfg.Graph.Path))
	return mcpserver.New(svc).ServeStdio()
}
