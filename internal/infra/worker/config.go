// Package worker holds the supporting pieces of the scheduled import
// worker: its configuration, Prometheus metrics and health server.
package worker

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"newsdesk/internal/pkg/config"
)

// WorkerConfig controls the scheduled imports.
//
// Values come from the worker section of the YAML configuration and are then
// overridden by environment variables through LoadConfigFromEnv.
type WorkerConfig struct {
	// CronSchedule is a five-field cron expression, e.g. "*/30 * * * *".
	CronSchedule string

	// Timezone is the IANA name the schedule is evaluated in.
	Timezone string

	// ImportTimeout bounds one run of ImportAll across every language.
	// Range: 1m-4h
	ImportTimeout time.Duration

	// ReindexBatch is the number of outbox entries replayed per run.
	// Range: 1-10000
	ReindexBatch int

	// HealthPort serves /health, /health/ready and /metrics.
	// Range: 1024-65535
	HealthPort int
}

// DefaultConfig returns the worker defaults: an import every 30 minutes.
func DefaultConfig() WorkerConfig {
	return WorkerConfig{
		CronSchedule:  "*/30 * * * *",
		Timezone:      "UTC",
		ImportTimeout: 10 * time.Minute,
		ReindexBatch:  100,
		HealthPort:    9091,
	}
}

// Validate checks every field and returns all failures joined.
func (c *WorkerConfig) Validate() error {
	var errs []error

	if err := config.ValidateCronSchedule(c.CronSchedule); err != nil {
		errs = append(errs, fmt.Errorf("cron schedule: %w", err))
	}
	if err := config.ValidateTimezone(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("timezone: %w", err))
	}
	if err := config.ValidateDuration(c.ImportTimeout, time.Minute, 4*time.Hour); err != nil {
		errs = append(errs, fmt.Errorf("import timeout: %w", err))
	}
	if err := config.ValidateIntRange(c.ReindexBatch, 1, 10000); err != nil {
		errs = append(errs, fmt.Errorf("reindex batch: %w", err))
	}
	if err := config.ValidateIntRange(c.HealthPort, 1024, 65535); err != nil {
		errs = append(errs, fmt.Errorf("health port: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed: %w", errors.Join(errs...))
	}
	return nil
}

// Location returns the schedule's timezone, UTC if it cannot be loaded.
func (c *WorkerConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// LoadConfigFromEnv overlays environment variables on base. It is fail-open:
// an invalid variable or an invalid base value falls back to the default,
// logs a warning and increments the fallback metrics. The returned
// configuration is always valid.
//
// Environment variables:
//   - CRON_SCHEDULE
//   - WORKER_TIMEZONE
//   - IMPORT_TIMEOUT (duration, e.g. "10m")
//   - REINDEX_BATCH
//   - WORKER_HEALTH_PORT
func LoadConfigFromEnv(logger *slog.Logger, metrics *WorkerMetrics, base WorkerConfig) (*WorkerConfig, error) {
	def := DefaultConfig()
	cfg := base
	active := false

	// a bad base value would otherwise become the fallback
	if config.ValidateCronSchedule(cfg.CronSchedule) != nil {
		cfg.CronSchedule = def.CronSchedule
	}
	if config.ValidateTimezone(cfg.Timezone) != nil {
		cfg.Timezone = def.Timezone
	}
	if config.ValidateDuration(cfg.ImportTimeout, time.Minute, 4*time.Hour) != nil {
		cfg.ImportTimeout = def.ImportTimeout
	}
	if config.ValidateIntRange(cfg.ReindexBatch, 1, 10000) != nil {
		cfg.ReindexBatch = def.ReindexBatch
	}
	if config.ValidateIntRange(cfg.HealthPort, 1024, 65535) != nil {
		cfg.HealthPort = def.HealthPort
	}
	if cfg != base {
		active = true
		logger.Warn("invalid worker configuration replaced by defaults",
			slog.Any("configured", base),
			slog.Any("effective", cfg))
	}

	cron := config.LoadEnvWithFallback("CRON_SCHEDULE", cfg.CronSchedule, config.ValidateCronSchedule)
	active = cron.Report(logger, metrics.Config, "cron_schedule") || active
	cfg.CronSchedule = cron.Value

	tz := config.LoadEnvWithFallback("WORKER_TIMEZONE", cfg.Timezone, config.ValidateTimezone)
	active = tz.Report(logger, metrics.Config, "timezone") || active
	cfg.Timezone = tz.Value

	timeout := config.LoadEnvDuration("IMPORT_TIMEOUT", cfg.ImportTimeout, func(d time.Duration) error {
		return config.ValidateDuration(d, time.Minute, 4*time.Hour)
	})
	active = timeout.Report(logger, metrics.Config, "import_timeout") || active
	cfg.ImportTimeout = timeout.Value

	batch := config.LoadEnvInt("REINDEX_BATCH", cfg.ReindexBatch, func(v int) error {
		return config.ValidateIntRange(v, 1, 10000)
	})
	active = batch.Report(logger, metrics.Config, "reindex_batch") || active
	cfg.ReindexBatch = batch.Value

	port := config.LoadEnvInt("WORKER_HEALTH_PORT", cfg.HealthPort, func(v int) error {
		return config.ValidateIntRange(v, 1024, 65535)
	})
	active = port.Report(logger, metrics.Config, "health_port") || active
	cfg.HealthPort = port.Value

	metrics.Config.Loaded(active)

	return &cfg, nil
}
