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

	"github.com/mimahin/gmgbd/internal/api"
	"github.com/mimahin/gmgbd/internal/assets"
	"github.com/mimahin/gmgbd/internal/mcpserver"
	"github.com/mimahin/gmgbd/internal/page"
	"github.com/mimahin/gmgbd/internal/sse"
)

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	// Initialize structured JSON logger.
	logger := newLogger(cfg, os.Stdout)
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("base_path", assets.NormalizeBasePath(cfg.Site.BasePath)),
		slog.String("assets_dir", cfg.Assets.Dir),
		slog.Int("max_views", cfg.Views.MaxViews),
		slog.String("log_level", cfg.App.LogLevel.String()))

	c, err := buildComponents(cfg, logger)
	if err != nil {
		return err
	}
	logger.Info("Catalog loaded",
		slog.String("version", c.catalog.Version()),
		slog.Int("visualizations", len(c.catalog.Visualizations())),
		slog.Int("columns", len(c.catalog.DataFeatures())))

	if c.store != nil {
		rep, _ := c.svc.CheckAssets(ctx)
		assets.LogReport(ctx, logger, rep)
	}

	pages, err := page.New()
	if err != nil {
		return err
	}

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	basePath := c.resolver.BasePath
	siteRouter := api.NewRouter(c.svc, pages, api.Site{Title: cfg.Site.Title, BasePath: basePath}, broker, c.store)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints.
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount the site under the deployment base path.
	if basePath == "" {
		r.Mount("/", siteRouter)
	} else {
		r.Get("/", func(w http.ResponseWriter, req *http.Request) {
			http.Redirect(w, req, basePath+"/", http.StatusFound)
		})
		r.Mount(basePath, siteRouter)
	}

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Start asset watcher with SSE callback.
	if cfg.Assets.Watch && c.store != nil {
		g.Go(func() error {
			err := assets.Watch(gCtx, c.store, logger, func(kind, path string) {
				broker.PublishAssetEvent(kind, path)
				if rep, err := c.svc.CheckAssets(gCtx); err == nil {
					assets.LogReport(gCtx, logger, rep)
				}
			})
			if err != nil {
				logger.Warn("asset watcher stopped", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
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

		logger.Info("Shutting down server...",
			slog.Int("live_views", c.svc.LiveViews()),
			slog.Int("event_streams", broker.ClientCount()))

		// Open SSE streams end when the broker closes their channels.
		broker.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
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

// errShutdown cancels the group context so the watcher stops with the server.
var errShutdown = errors.New("shutdown")

// RunMCP serves the catalog over MCP on stdin/stdout. Logs go to stderr, since
// stdout carries the protocol.
func RunMCP(_ context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	logger := newLogger(app.config, os.Stderr)
	slog.SetDefault(logger)

	c, err := buildComponents(app.config, logger)
	if err != nil {
		return err
	}
	logger.Info("MCP server starting", slog.String("catalog_version", c.catalog.Version()))
	return mcpserver.New(c.svc, app.version).ServeStdio()
}
