package main

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

	"github.com/robfig/cron/v3"

	"newsdesk/internal/app"
	"newsdesk/internal/config"
	workerPkg "newsdesk/internal/infra/worker"
	"newsdesk/internal/observability/logging"
	"newsdesk/internal/observability/tracing"
)

func main() {
	logger := logging.NewLogger()
	slog.SetDefault(logger)

	cfg, err := config.Load("")
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	shutdownTracing := tracing.Init(cfg.Tracing.SampleRatio)
	defer func() { _ = shutdownTracing(context.Background()) }()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Load worker configuration (fail-open strategy)
	workerMetrics := workerPkg.NewWorkerMetrics()
	workerConfig, err := workerPkg.LoadConfigFromEnv(logger, workerMetrics, workerPkg.WorkerConfig{
		CronSchedule:  cfg.Worker.CronSchedule,
		Timezone:      cfg.Worker.Timezone,
		ImportTimeout: cfg.Worker.ImportTimeout,
		ReindexBatch:  cfg.Worker.ReindexBatch,
		HealthPort:    cfg.Worker.HealthPort,
	})
	if err != nil {
		logger.Error("failed to load worker configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("worker configuration loaded",
		slog.String("cron_schedule", workerConfig.CronSchedule),
		slog.String("timezone", workerConfig.Timezone),
		slog.Duration("import_timeout", workerConfig.ImportTimeout),
		slog.Int("reindex_batch", workerConfig.ReindexBatch),
		slog.Int("health_port", workerConfig.HealthPort))

	initCtx, initCancel := context.WithTimeout(ctx, 30*time.Second)
	a, err := app.Open(initCtx, cfg)
	if err != nil {
		initCancel()
		logger.Error("failed to initialize", slog.Any("error", err))
		os.Exit(1)
	}
	a.Bootstrap(initCtx, logger)
	initCancel()
	defer func() {
		if err := a.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	healthAddr := fmt.Sprintf(":%d", workerConfig.HealthPort)
	healthServer := workerPkg.NewHealthServer(healthAddr, logger)
	go func() {
		if err := healthServer.Start(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("health server failed", slog.Any("error", err))
		}
	}()

	r := &runner{
		logger:   logger,
		feeds:    a.Feeds,
		pipeline: a.Pipeline,
		entries:  a.Entries,
		langs:    a.Languages.Codes(),
		cfg:      workerConfig,
		metrics:  workerMetrics,
		health:   healthServer,
	}
	startCronWorker(ctx, logger, r, workerConfig, healthServer)
}

// startCronWorker schedules the import and reindex jobs and blocks until
// ctx is cancelled. Running jobs are allowed to finish.
func startCronWorker(ctx context.Context, logger *slog.Logger, r *runner, cfg *workerPkg.WorkerConfig, healthServer *workerPkg.HealthServer) {
	c := cron.New(cron.WithLocation(cfg.Location()), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))

	if _, err := c.AddFunc(cfg.CronSchedule, func() { r.runImportJob(ctx) }); err != nil {
		logger.Error("failed to add import job", slog.Any("error", err))
		os.Exit(1)
	}
	// the outbox is drained more often than feeds are polled
	if _, err := c.AddFunc(reindexSchedule, func() { r.runReindexJob(ctx) }); err != nil {
		logger.Error("failed to add reindex job", slog.Any("error", err))
		os.Exit(1)
	}
	c.Start()

	healthServer.SetReady(true)
	logger.Info("worker started",
		slog.String("schedule", cfg.CronSchedule),
		slog.String("reindex_schedule", reindexSchedule),
		slog.String("timezone", cfg.Timezone))

	<-ctx.Done()
	logger.Info("shutting down worker...")
	healthServer.SetReady(false)
	<-c.Stop().Done()
	logger.Info("worker stopped")
}
