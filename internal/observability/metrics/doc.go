// Package metrics provides Prometheus metrics registry and recording utilities.
//
// This package centralizes the business metrics of the ingestion pipeline:
//   - Ingestion outcomes per language and path
//   - Feed import duration and per-item results
//   - Remote asset and enrichment fetches
//   - Search index failures, outbox backlog and query latency
//   - Database query metrics
//
// All metrics are registered with the Prometheus default registry and exposed
// via the /metrics endpoint. HTTP request metrics live in the handler package.
//
// Example usage:
//
//	import "newsdesk/internal/observability/metrics"
//
//	start := time.Now()
//	res, err := pipeline.Submit(ctx, in)
//	metrics.RecordIngest("ru", metrics.PathManual, "created", time.Since(start))
package metrics
