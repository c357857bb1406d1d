// Package tracing provides OpenTelemetry tracing integration.
//
// Init installs the tracer provider and W3C propagation. The HTTP layer opens
// server spans through GetTracer; use cases open child spans with StartSpan
// around ingestion, store writes and index writes.
//
// Example usage:
//
//	import "newsdesk/internal/observability/tracing"
//
//	func main() {
//	    shutdown := tracing.Init(1.0)
//	    defer shutdown(context.Background())
//	}
//
//	func processRequest(ctx context.Context) (err error) {
//	    ctx, span := tracing.StartSpan(ctx, "process-request")
//	    defer func() { tracing.EndSpan(span, err) }()
//	    // ... process request ...
//	}
package tracing
