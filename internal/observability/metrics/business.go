package metrics

import (
	"time"
)

// Ingestion paths.
const (
	PathManual = "manual"
	PathFeed   = "feed"
)

// RecordIngest records the outcome of one ingestion.
// Outcome is "created", "duplicate_skip" or "failed".
func RecordIngest(language, path, outcome string, duration time.Duration) {
	EntriesIngestedTotal.WithLabelValues(language, path, outcome).Inc()
	IngestDuration.WithLabelValues(path).Observe(duration.Seconds())
}

// RecordIndexWriteFailure records an entry left in the reindex outbox.
func RecordIndexWriteFailure(language string) {
	IndexWriteFailuresTotal.WithLabelValues(language).Inc()
}

// RecordReindex records the replay of one outbox entry.
func RecordReindex(success bool) {
	ReindexedTotal.WithLabelValues(resultLabel(success)).Inc()
}

// UpdateOutboxSize sets the current reindex backlog.
func UpdateOutboxSize(count int64) {
	ReindexOutboxSize.Set(float64(count))
}

// UpdateEntriesTotal sets the stored entry count for a language.
func UpdateEntriesTotal(language string, count int64) {
	EntriesTotal.WithLabelValues(language).Set(float64(count))
}

// RecordSearch records a search query and its latency.
func RecordSearch(language string, success bool, duration time.Duration) {
	SearchQueriesTotal.WithLabelValues(language, resultLabel(success)).Inc()
	SearchDuration.Observe(duration.Seconds())
}

// RecordFeedImport records a completed language import.
func RecordFeedImport(language string, duration time.Duration, inserted, duplicates, failed int) {
	FeedImportDuration.WithLabelValues(language).Observe(duration.Seconds())
	FeedItemsTotal.WithLabelValues(language, "inserted").Add(float64(inserted))
	FeedItemsTotal.WithLabelValues(language, "duplicate").Add(float64(duplicates))
	FeedItemsTotal.WithLabelValues(language, "failed").Add(float64(failed))
}

// RecordFeedImportError records an import that could not iterate its feed.
func RecordFeedImportError(language, errorType string) {
	FeedImportErrors.WithLabelValues(language, errorType).Inc()
}

// RecordAssetFetch records a remote image download.
func RecordAssetFetch(success bool, duration time.Duration, size int) {
	AssetFetchTotal.WithLabelValues(resultLabel(success)).Inc()
	AssetFetchDuration.Observe(duration.Seconds())
	if success {
		AssetBytes.Observe(float64(size))
	}
}

// RecordContentFetch records an enrichment attempt.
// Result is "success", "failure" or "skipped".
func RecordContentFetch(result string, duration time.Duration) {
	ContentFetchAttemptsTotal.WithLabelValues(result).Inc()
	if result != "skipped" {
		ContentFetchDuration.Observe(duration.Seconds())
	}
}

// RecordDBQuery records the duration of a database query operation.
// Operation should describe the query type (e.g., "select_entries", "insert_entry").
func RecordDBQuery(operation string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// UpdateDBConnectionStats updates database connection pool statistics.
func UpdateDBConnectionStats(active, idle int) {
	DBConnectionsActive.Set(float64(active))
	DBConnectionsIdle.Set(float64(idle))
}

func resultLabel(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}
