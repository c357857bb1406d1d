// Package slo tracks the ingestion service level objectives: every entry in
// the primary store is searchable, and every feed is imported regularly.
package slo

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// SLO targets.
const (
	// IndexConsistencySLO is the minimum share of stored entries that are
	// present in the search index.
	IndexConsistencySLO = 0.999

	// FeedFreshnessSLO is the maximum age of the last successful import of
	// any language.
	FeedFreshnessSLO = 2 * time.Hour
)

var (
	// IndexConsistency is indexed entries / stored entries (0-1).
	IndexConsistency = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "slo_index_consistency_ratio",
			Help: "Share of stored entries present in the search index (0-1), target: 0.999",
		},
	)

	// FeedLastImport is the Unix time of the last successful import per
	// language. Staleness is time() - slo_feed_last_import_timestamp.
	FeedLastImport = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "slo_feed_last_import_timestamp",
			Help: "Unix timestamp of the last successful feed import, target age: 2h",
		},
		[]string{"language"},
	)
)

// UpdateIndexConsistency sets the consistency ratio from the outbox size and
// the number of stored entries. An empty store counts as fully consistent.
func UpdateIndexConsistency(pending, total int64) float64 {
	ratio := 1.0
	if total > 0 {
		if pending > total {
			pending = total
		}
		ratio = float64(total-pending) / float64(total)
	}
	IndexConsistency.Set(ratio)
	return ratio
}

// RecordFeedImport marks a successful import of language at t.
func RecordFeedImport(language string, t time.Time) {
	FeedLastImport.WithLabelValues(language).Set(float64(t.Unix()))
}

// Stale reports whether an import finished at last is older than
// FeedFreshnessSLO at now.
func Stale(last, now time.Time) bool {
	return now.Sub(last) > FeedFreshnessSLO
}
