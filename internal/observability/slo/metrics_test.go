package slo

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestUpdateIndexConsistency(t *testing.T) {
	tests := []struct {
		name           string
		pending, total int64
		want           float64
	}{
		{"empty store", 0, 0, 1},
		{"fully indexed", 0, 500, 1},
		{"backlog", 5, 1000, 0.995},
		{"nothing indexed", 40, 40, 0},
		{"pending above total is clamped", 50, 40, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := UpdateIndexConsistency(tt.pending, tt.total)
			assert.InDelta(t, tt.want, got, 1e-9)
			assert.InDelta(t, tt.want, testutil.ToFloat64(IndexConsistency), 1e-9)
		})
	}
}

func TestUpdateIndexConsistency_BelowTarget(t *testing.T) {
	assert.Less(t, UpdateIndexConsistency(2, 1000), IndexConsistencySLO)
	assert.GreaterOrEqual(t, UpdateIndexConsistency(1, 1000), IndexConsistencySLO)
}

func TestRecordFeedImport(t *testing.T) {
	at := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	RecordFeedImport("ro", at)
	assert.Equal(t, float64(at.Unix()), testutil.ToFloat64(FeedLastImport.WithLabelValues("ro")))
}

func TestStale(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	assert.False(t, Stale(now.Add(-time.Hour), now))
	assert.False(t, Stale(now.Add(-FeedFreshnessSLO), now))
	assert.True(t, Stale(now.Add(-FeedFreshnessSLO-time.Second), now))
}
