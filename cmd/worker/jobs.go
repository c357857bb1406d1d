package main

import (
	"context"
	"log/slog"
	"time"

	"newsdesk/internal/handler/http/respond"
	workerPkg "newsdesk/internal/infra/worker"
	"newsdesk/internal/observability/metrics"
	"newsdesk/internal/observability/slo"
	"newsdesk/internal/usecase/feed"
	"newsdesk/internal/usecase/ingest"
)

const reindexSchedule = "*/5 * * * *"

type importer interface {
	ImportAll(ctx context.Context) ([]*feed.Report, error)
}

type reindexer interface {
	ReindexPending(ctx context.Context, limit int) (*ingest.ReindexStats, error)
}

type entryCounter interface {
	Count(ctx context.Context, lang string) (int64, error)
	CountUnindexed(ctx context.Context) (int64, error)
}

type importMarker interface {
	MarkImported(at time.Time)
}

// runner executes the worker's cron jobs.
type runner struct {
	logger   *slog.Logger
	feeds    importer
	pipeline reindexer
	entries  entryCounter
	langs    []string
	cfg      *workerPkg.WorkerConfig
	metrics  *workerPkg.WorkerMetrics
	health   importMarker
	now      func() time.Time
}

func (r *runner) clock() time.Time {
	if r.now != nil {
		return r.now()
	}
	return time.Now()
}

// runImportJob imports every language feed with the configured timeout. A
// run succeeds when at least one language imported; per-language failures
// are logged.
func (r *runner) runImportJob(ctx context.Context) {
	start := r.clock()
	r.logger.Info("import started")

	ctx, cancel := context.WithTimeout(ctx, r.cfg.ImportTimeout)
	defer cancel()

	reports, err := r.feeds.ImportAll(ctx)
	if err != nil {
		r.logger.Error("import failed", slog.String("error", respond.SanitizeError(err)))
	}

	inserted := 0
	for _, rep := range reports {
		inserted += rep.Inserted
		slo.RecordFeedImport(rep.Language, r.clock())
	}
	success := len(reports) > 0 || err == nil
	r.metrics.RecordJobRun(workerPkg.JobImport, success, r.clock().Sub(start).Seconds())
	r.metrics.RecordEntries(workerPkg.JobImport, inserted)
	if success {
		r.health.MarkImported(r.clock())
	}

	r.logger.Info("import completed",
		slog.Int("languages", len(reports)),
		slog.Int("inserted", inserted),
		slog.Bool("success", success),
		slog.Duration("duration", r.clock().Sub(start)))

	r.updateGauges(ctx)
}

// runReindexJob retries index writes for entries in the outbox.
func (r *runner) runReindexJob(ctx context.Context) {
	start := r.clock()

	stats, err := r.pipeline.ReindexPending(ctx, r.cfg.ReindexBatch)
	if err != nil {
		r.logger.Error("reindex failed", slog.String("error", respond.SanitizeError(err)))
		r.metrics.RecordJobRun(workerPkg.JobReindex, false, r.clock().Sub(start).Seconds())
		return
	}
	r.metrics.RecordJobRun(workerPkg.JobReindex, true, r.clock().Sub(start).Seconds())
	r.metrics.RecordEntries(workerPkg.JobReindex, stats.Indexed)

	if stats.Pending > 0 {
		r.logger.Info("reindex completed",
			slog.Int("pending", stats.Pending),
			slog.Int("indexed", stats.Indexed),
			slog.Int("failed", stats.Failed))
	}
	r.updateGauges(ctx)
}

// updateGauges refreshes the entry totals and the index consistency SLI.
func (r *runner) updateGauges(ctx context.Context) {
	var total int64
	for _, lang := range r.langs {
		n, err := r.entries.Count(ctx, lang)
		if err != nil {
			r.logger.Warn("failed to count entries", slog.String("language", lang), slog.Any("error", err))
			return
		}
		metrics.UpdateEntriesTotal(lang, n)
		total += n
	}
	pending, err := r.entries.CountUnindexed(ctx)
	if err != nil {
		r.logger.Warn("failed to count outbox", slog.Any("error", err))
		return
	}
	metrics.UpdateOutboxSize(pending)
	slo.UpdateIndexConsistency(pending, total)
}
