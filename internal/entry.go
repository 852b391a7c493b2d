// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/obweb/internal/api"
	"github.com/starford/obweb/internal/catalog"
	"github.com/starford/obweb/internal/dataset"
	"github.com/starford/obweb/internal/expiry"
	"github.com/starford/obweb/internal/knowledge"
	"github.com/starford/obweb/internal/loader"
	"github.com/starford/obweb/internal/models"
	"github.com/starford/obweb/internal/objectservice"
	"github.com/starford/obweb/internal/provider"
	"github.com/starford/obweb/internal/sse"
	"github.com/starford/obweb/internal/storage"
	"github.com/starford/obweb/internal/watch"
)

func newApplication(opts []Option) (*application, error) {
	app := &application{out: os.Stdout}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

func newLogger(level slog.Level, w io.Writer) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
	return logger
}

// loaded is the data layer after the first build.
type loaded struct {
	ds     *dataset.Dataset
	fs     *storage.FS
	reg    *provider.Registry
	report *loader.Report
}

// openDataset creates the data provider and builds the first store. onChange
// may be nil.
func openDataset(cfg *Config, logger *slog.Logger, onChange func(models.Change)) (*loaded, error) {
	if err := os.MkdirAll(cfg.Data.Path, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	fs, err := storage.NewFS(cfg.Data.Path)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	reg, err := provider.Default()
	if err != nil {
		return nil, fmt.Errorf("init providers: %w", err)
	}
	ds := dataset.New(fs, reg, dataset.Options{
		InitFile:     cfg.Data.InitFile,
		StoreOptions: cfg.Cache.StoreOptions(),
		OnChange:     onChange,
	}, logger)
	rep, err := ds.Load()
	if err != nil {
		return nil, fmt.Errorf("load data: %w", err)
	}
	return &loaded{ds: ds, fs: fs, reg: reg, report: rep}, nil
}

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	logger := newLogger(cfg.App.LogLevel, os.Stdout)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("data_path", cfg.Data.Path),
		slog.String("init_file", cfg.Data.InitFile),
		slog.String("catalog_path", cfg.Catalog.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	db, err := catalog.Open(cfg.Catalog.Path)
	if err != nil {
		return fmt.Errorf("init catalog: %w", err)
	}
	defer db.Close()

	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	var ds *dataset.Dataset
	hook := changeHook(func() *knowledge.Store { return ds.Store() }, db, broker, logger)
	data, err := openDataset(cfg, logger, hook)
	if err != nil {
		return err
	}
	ds = data.ds

	if err := catalog.Sync(db, ds.Store(), logger); err != nil {
		logger.Warn("initial catalog sync failed", slog.String("error", err.Error()))
	}

	svc := objectservice.NewService(ds.Ref(), db)
	apiRouter := api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprintf(w, `{"status":"ok","objects":%d}`, ds.Store().Len())
	})

	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	g, gCtx := errgroup.WithContext(ctx)

	if cfg.Data.Watch {
		onChange := reloader(ds, db, broker, logger)
		g.Go(func() error {
			if err := watch.Watch(gCtx, data.fs.Root(), watch.DefaultDebounce, logger, onChange); err != nil {
				return fmt.Errorf("watcher: %w", err)
			}
			return nil
		})
	}

	if cfg.Cache.SweepSchedule != "" {
		sweeper, err := expiry.NewSweeper(cfg.Cache.SweepSchedule, ds.Ref(), logger)
		if err != nil {
			return err
		}
		g.Go(func() error {
			return sweeper.Run(gCtx)
		})
	}

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

		logger.Info("Shutting down server...")

		// SSE handlers block until their subscription closes.
		broker.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}
