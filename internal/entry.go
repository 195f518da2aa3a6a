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
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	prom "github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/adyingdeath/blog/internal/api"
	"github.com/adyingdeath/blog/internal/compiler"
	"github.com/adyingdeath/blog/internal/highlight"
	"github.com/adyingdeath/blog/internal/mcpserver"
	"github.com/adyingdeath/blog/internal/metrics"
	"github.com/adyingdeath/blog/internal/output"
	"github.com/adyingdeath/blog/internal/render"
	"github.com/adyingdeath/blog/internal/site"
	"github.com/adyingdeath/blog/internal/sse"
	"github.com/adyingdeath/blog/internal/storage"
	"github.com/adyingdeath/blog/internal/watch"
)

// env is the state shared by every command.
type env struct {
	cfg      *Config
	app      *application
	logger   *slog.Logger
	builder  *site.Builder
	renderer *render.PostRenderer
}

func setup(opts []Option, recorder metrics.Recorder) (*env, error) {
	app := &application{version: "dev", logOutput: os.Stdout}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(app.logOutput, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("content_dir", cfg.Content.Dir),
		slog.String("output_dir", cfg.Site.OutputDir),
		slog.String("base_url", cfg.Site.BaseURL),
		slog.Int("workers", cfg.Build.Workers),
		slog.String("log_level", cfg.App.LogLevel.String()))

	store, err := storage.NewFS(cfg.Content.Dir)
	if err != nil {
		return nil, fmt.Errorf("init content storage: %w", err)
	}

	hl, err := highlight.New(cfg.Highlight.Style)
	if err != nil {
		return nil, fmt.Errorf("init highlighter: %w", err)
	}

	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}

	builder := site.NewBuilder(store,
		compiler.New(compiler.WithSummaryPlaceholder(cfg.Content.SummaryPlaceholder)),
		logger,
		site.WithProjectsFile(cfg.Content.ProjectsFile),
		site.WithWorkers(cfg.Build.Workers),
		site.WithRecorder(recorder),
		site.WithSettings(site.Settings{
			BaseURL:      cfg.Site.BaseURL,
			PageSize:     cfg.Content.PageSize,
			RecentCount:  cfg.Content.RecentCount,
			FeaturedPath: cfg.Content.FeaturedPath,
		}),
	)

	return &env{
		cfg:      cfg,
		app:      app,
		logger:   logger,
		builder:  builder,
		renderer: render.New(hl),
	}, nil
}

// Build compiles the content directory once and writes the static output.
func Build(ctx context.Context, opts ...Option) error {
	rt, err := setup(opts, nil)
	if err != nil {
		return err
	}
	cfg := rt.cfg

	s, err := rt.builder.Build(ctx)
	if err != nil {
		return err
	}
	report := s.Report()
	for _, f := range report.Failures {
		rt.logger.Error("document rejected", slog.String("source", f.Source), slog.String("error", f.Reason))
	}
	if (cfg.Build.Strict || rt.app.strict) && len(report.Failures) > 0 {
		return fmt.Errorf("%d document(s) failed: %w", len(report.Failures), report.Err())
	}

	if err := os.MkdirAll(cfg.Site.OutputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	sink, err := storage.NewFS(cfg.Site.OutputDir)
	if err != nil {
		return fmt.Errorf("init output storage: %w", err)
	}
	if _, err := output.NewWriter(sink, rt.renderer, rt.logger).Write(s); err != nil {
		return err
	}

	rt.logger.Info("Build complete",
		slog.String("build_id", report.BuildID),
		slog.Int("posts", report.Compiled),
		slog.Int("failures", len(report.Failures)),
		slog.String("output_dir", cfg.Site.OutputDir))
	return nil
}

// ServeMCP builds the site once and serves the read-only MCP tools on stdio.
// Logs go to stderr unless redirected, since stdout carries the protocol.
func ServeMCP(ctx context.Context, opts ...Option) error {
	opts = append([]Option{WithLogOutput(os.Stderr)}, opts...)
	rt, err := setup(opts, nil)
	if err != nil {
		return err
	}
	s, err := rt.builder.Build(ctx)
	if err != nil {
		return err
	}
	return mcpserver.New(site.NewHolder(s), rt.app.version).ServeStdio()
}

// Run builds the site, then serves it over HTTP while rebuilding on content
// changes until a shutdown signal arrives.
func Run(ctx context.Context, opts ...Option) error {
	promReg := prom.NewRegistry()
	rt, err := setup(opts, metrics.NewPrometheusRecorder(promReg))
	if err != nil {
		return err
	}
	cfg, logger := rt.cfg, rt.logger

	initial, err := rt.builder.Build(ctx)
	if err != nil {
		return fmt.Errorf("initial build: %w", err)
	}
	holder := site.NewHolder(initial)

	// SSE broker.
	broker := sse.NewBroker(15 * time.Second)
	defer broker.Close()

	// Rebuilds are serialized; readers keep the previous site until the swap.
	var mu sync.Mutex
	rebuild := func(ctx context.Context, changed []string) (*site.Site, error) {
		mu.Lock()
		defer mu.Unlock()
		s, err := rt.builder.Build(ctx)
		if err != nil {
			logger.Error("rebuild failed", slog.String("error", err.Error()))
			broker.PublishBuildEvent(sse.BuildEvent{Changed: changed, Error: err.Error()})
			return nil, err
		}
		holder.Store(s)
		report := s.Report()
		broker.PublishBuildEvent(sse.BuildEvent{
			BuildID:  report.BuildID,
			Posts:    report.Compiled,
			Failures: len(report.Failures),
			Changed:  changed,
		})
		return s, nil
	}

	h := api.NewHandler(holder, rt.renderer, func(ctx context.Context) (*site.Site, error) {
		return rebuild(ctx, nil)
	})
	apiRouter := api.NewRouter(h, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	// Build chi router.
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
		if holder.Load() == nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"building"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Handle("/metrics", metrics.HTTPHandler(promReg))
	r.Get("/sitemap.xml", h.Sitemap)

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	// Rebuild on content changes.
	g.Go(func() error {
		return watch.Watch(gCtx, cfg.Content.Dir, logger, func(ctx context.Context, changed []string) {
			_, _ = rebuild(ctx, changed)
		}, watch.WithFiles(cfg.Content.ProjectsFile))
	})

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

		logger.Info("Shutting down server...")

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

// errShutdown stops the remaining goroutines once a signal is handled.
var errShutdown = errors.New("shutdown")
