package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"newsdesk/internal/app"
	"newsdesk/internal/common/pagination"
	"newsdesk/internal/config"
	hhttp "newsdesk/internal/handler/http"
	"newsdesk/internal/handler/http/entry"
	"newsdesk/internal/handler/http/requestid"
	"newsdesk/internal/infra/db"
	"newsdesk/internal/observability/logging"
	"newsdesk/internal/observability/tracing"
)

// outboxWarn degrades /health once this many entries wait for indexing.
const outboxWarn = 1000

const poolStatsInterval = 15 * time.Second

func main() {
	logger := initLogger()

	cfg, err := config.Load("")
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	shutdownTracing := tracing.Init(cfg.Tracing.SampleRatio)
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Error("failed to shut down tracing", slog.Any("error", err))
		}
	}()

	a := initApp(logger, cfg)
	defer func() {
		if err := a.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	runServer(logger, cfg, a, setupServer(logger, cfg, a, getVersion()))
}

// initLogger builds the process logger from LOG_LEVEL and LOG_FORMAT.
func initLogger() *slog.Logger {
	logger := logging.NewLogger()
	slog.SetDefault(logger)
	return logger
}

// initApp connects the stores and prepares the search indices.
func initApp(logger *slog.Logger, cfg *config.Config) *app.App {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	a, err := app.Open(ctx, cfg)
	if err != nil {
		logger.Error("failed to initialize", slog.Any("error", err))
		os.Exit(1)
	}
	a.Bootstrap(ctx, logger)
	return a
}

// getVersion returns the application version from environment or default.
func getVersion() string {
	version := os.Getenv("VERSION")
	if version == "" {
		version = "dev"
	}
	return version
}

// setupServer registers every route and wraps the mux in the middleware
// chain.
func setupServer(logger *slog.Logger, cfg *config.Config, a *app.App, version string) http.Handler {
	limiter := hhttp.NewRateLimiter(cfg.HTTP.WriteLimit, cfg.HTTP.WriteWindow)
	limiter.TrustProxy = cfg.HTTP.TrustProxy
	write := func(h http.Handler) http.Handler {
		return hhttp.Chain(h, limiter.Limit, hhttp.LimitRequestBody(cfg.HTTP.MaxUploadBytes))
	}

	logger.Info("write rate limit configured",
		slog.Int("limit", cfg.HTTP.WriteLimit),
		slog.Duration("window", cfg.HTTP.WriteWindow),
		slog.Bool("trust_proxy", cfg.HTTP.TrustProxy))

	mux := http.NewServeMux()
	entry.Register(mux, entry.Deps{
		Submitter:      a.Pipeline,
		Importer:       a.Feeds,
		Searcher:       a.Search,
		Reader:         a.Reader,
		Assets:         a.Assets,
		Pager:          pagination.NewPager(cfg.NewsPerPage),
		MaxUploadBytes: cfg.HTTP.MaxUploadBytes,
	}, write)

	mux.Handle("GET /health", &hhttp.HealthHandler{
		DB:         a.DB,
		Search:     a.PingSearch,
		Outbox:     a.Entries,
		Version:    version,
		OutboxWarn: outboxWarn,
	})
	mux.Handle("GET /ready", &hhttp.ReadyHandler{DB: a.DB, Search: a.PingSearch})
	mux.Handle("GET /live", hhttp.LiveHandler{})
	mux.Handle("GET /metrics", hhttp.MetricsHandler())

	return applyMiddleware(logger, cfg, mux)
}

// applyMiddleware wraps the handler with the middleware chain.
// Order: Request ID → Tracing → Recovery → Logging → Input validation →
// Metrics → Timeout
func applyMiddleware(logger *slog.Logger, cfg *config.Config, handler http.Handler) http.Handler {
	return hhttp.Chain(handler,
		requestid.Middleware,
		hhttp.Tracing,
		hhttp.Recover(logger),
		hhttp.Logging(logger),
		hhttp.InputValidation(),
		hhttp.MetricsMiddleware,
		hhttp.Timeout(cfg.HTTP.WriteTimeout),
	)
}

// runServer starts the HTTP server and handles graceful shutdown.
func runServer(logger *slog.Logger, cfg *config.Config, a *app.App, handler http.Handler) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go db.ReportPoolStats(ctx, a.DB, poolStatsInterval)

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second, // Prevent Slowloris attacks
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		// the Timeout middleware answers first; this only reaps stuck writes
		WriteTimeout: cfg.HTTP.WriteTimeout + 5*time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		logger.Info("server starting",
			slog.String("addr", cfg.HTTP.Addr),
			slog.String("version", getVersion()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", slog.Any("error", err))
	}
	logger.Info("server stopped")
}
