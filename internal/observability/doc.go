// Package observability groups the newsdesk observability infrastructure.
//
// Subpackages:
//   - logging: slog setup and request-scoped loggers
//   - metrics: Prometheus business metrics for ingestion, search and storage
//   - tracing: OpenTelemetry tracer setup and spans
//   - slo: index consistency and feed freshness objectives
package observability
