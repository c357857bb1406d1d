package pagination

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ListPagesTotal counts served listing pages.
	// Labels: language, page_range (1-10, 11-50, 51-100, 100+)
	ListPagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "entry_list_pages_total",
			Help: "Entry listing pages served",
		},
		[]string{"language", "page_range"},
	)

	ListDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "entry_list_duration_seconds",
			Help:    "Entry listing latency",
			Buckets: []float64{0.01, 0.05, 0.1, 0.2, 0.5, 1.0, 2.0},
		},
	)

	// ListErrorsTotal counts failed listings.
	// Labels: type (validation, database)
	ListErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "entry_list_errors_total",
			Help: "Entry listing failures",
		},
		[]string{"type"},
	)
)

// RecordPage records a served page of lang and its latency.
func RecordPage(lang string, pg Page, duration time.Duration) {
	ListPagesTotal.WithLabelValues(lang, pageRange(pg.Number)).Inc()
	ListDuration.Observe(duration.Seconds())
}

// RecordError records a failed listing.
func RecordError(errorType string) {
	ListErrorsTotal.WithLabelValues(errorType).Inc()
}

func pageRange(n int) string {
	switch {
	case n <= 10:
		return "1-10"
	case n <= 50:
		return "11-50"
	case n <= 100:
		return "51-100"
	default:
		return "100+"
	}
}
