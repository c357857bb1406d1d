// Package metrics provides centralized Prometheus metrics for the application.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Ingestion metrics track entries flowing through the pipeline
var (
	// EntriesIngestedTotal counts ingestion outcomes by language, path
	// (manual or feed) and outcome (created, duplicate_skip, failed)
	EntriesIngestedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "entries_ingested_total",
			Help: "Total number of ingestion attempts by outcome",
		},
		[]string{"language", "path", "outcome"},
	)

	IngestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ingest_duration_seconds",
			Help:    "Time taken to normalize and persist one entry",
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"path"},
	)

	// EntriesTotal tracks stored entries per language
	EntriesTotal = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "entries_total",
			Help: "Total number of entries in the primary store",
		},
		[]string{"language"},
	)
)

// Search index metrics
var (
	IndexWriteFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "index_write_failures_total",
			Help: "Total number of entries whose index write failed after retries",
		},
		[]string{"language"},
	)

	// ReindexOutboxSize is the number of stored entries awaiting indexing
	ReindexOutboxSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "reindex_outbox_size",
			Help: "Number of stored entries not yet written to the search index",
		},
	)

	ReindexedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reindexed_entries_total",
			Help: "Total number of outbox replays by result",
		},
		[]string{"result"},
	)

	SearchQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "search_queries_total",
			Help: "Total number of search queries by language and result",
		},
		[]string{"language", "result"},
	)

	SearchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "search_duration_seconds",
			Help:    "Search query latency in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
	)
)

// Feed import metrics
var (
	FeedImportDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "feed_import_duration_seconds",
			Help:    "Time taken to import one language feed",
			Buckets: []float64{.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
		[]string{"language"},
	)

	// FeedItemsTotal counts feed entries by result (inserted, duplicate, failed)
	FeedItemsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_items_total",
			Help: "Total number of feed entries processed by result",
		},
		[]string{"language", "result"},
	)

	FeedImportErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_import_errors_total",
			Help: "Total number of whole-feed import failures",
		},
		[]string{"language", "error_type"},
	)
)

// Outbound fetch metrics
var (
	AssetFetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "asset_fetch_total",
			Help: "Total number of remote image downloads by result",
		},
		[]string{"result"},
	)

	AssetFetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "asset_fetch_duration_seconds",
			Help:    "Remote image download duration in seconds",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 15},
		},
	)

	AssetBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "asset_size_bytes",
			Help:    "Size of stored assets in bytes",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 8),
		},
	)

	ContentFetchAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "content_fetch_attempts_total",
			Help: "Total number of article enrichment attempts by result",
		},
		[]string{"result"},
	)

	ContentFetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "content_fetch_duration_seconds",
			Help:    "Article enrichment fetch duration in seconds",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10},
		},
	)
)

// Database metrics
var (
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"operation"},
	)

	DBConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_active",
			Help: "Number of active database connections",
		},
	)

	DBConnectionsIdle = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_idle",
			Help: "Number of idle database connections",
		},
	)
)
