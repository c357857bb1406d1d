package worker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"newsdesk/internal/pkg/config"
)

// Job names used as metric labels.
const (
	JobImport  = "import"
	JobReindex = "reindex"
)

// WorkerMetrics holds the worker_config_* metrics and the per-job cron
// metrics:
//   - worker_cron_job_runs_total{job,status}
//   - worker_cron_job_duration_seconds{job}
//   - worker_cron_job_entries_total{job}: entries inserted or reindexed
//   - worker_cron_job_last_success_timestamp{job}
//
// Metrics are registered with the default registry, so NewWorkerMetrics may
// be called once per process.
type WorkerMetrics struct {
	Config *config.Metrics

	CronJobRunsTotal            *prometheus.CounterVec
	CronJobDurationSeconds      *prometheus.HistogramVec
	CronJobEntriesTotal         *prometheus.CounterVec
	CronJobLastSuccessTimestamp *prometheus.GaugeVec
}

// NewWorkerMetrics creates and registers the worker metrics.
func NewWorkerMetrics() *WorkerMetrics {
	return &WorkerMetrics{
		Config: config.NewMetrics("worker"),

		CronJobRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_cron_job_runs_total",
			Help: "Total number of cron job runs by job and status (success/failure)",
		}, []string{"job", "status"}),

		CronJobDurationSeconds: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "worker_cron_job_duration_seconds",
			Help:    "Duration of cron job execution in seconds",
			Buckets: []float64{1, 5, 30, 60, 300, 900, 1800}, // 1s, 5s, 30s, 1m, 5m, 15m, 30m
		}, []string{"job"}),

		CronJobEntriesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_cron_job_entries_total",
			Help: "Total number of entries inserted or reindexed by cron jobs",
		}, []string{"job"}),

		CronJobLastSuccessTimestamp: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "worker_cron_job_last_success_timestamp",
			Help: "Unix timestamp of the last successful cron job run",
		}, []string{"job"}),
	}
}

// RecordJobRun records one finished run. A successful run also updates the
// last success timestamp.
func (m *WorkerMetrics) RecordJobRun(job string, success bool, seconds float64) {
	status := "success"
	if !success {
		status = "failure"
	}
	m.CronJobRunsTotal.WithLabelValues(job, status).Inc()
	m.CronJobDurationSeconds.WithLabelValues(job).Observe(seconds)
	if success {
		m.CronJobLastSuccessTimestamp.WithLabelValues(job).SetToCurrentTime()
	}
}

// RecordEntries adds count entries handled by job.
func (m *WorkerMetrics) RecordEntries(job string, count int) {
	if count > 0 {
		m.CronJobEntriesTotal.WithLabelValues(job).Add(float64(count))
	}
}
