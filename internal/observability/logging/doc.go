// Package logging provides structured logging utilities with context propagation.
//
// Example usage:
//
//	import "newsdesk/internal/observability/logging"
//
//	func main() {
//	    slog.SetDefault(logging.NewLogger())
//	}
//
//	func handleRequest(ctx context.Context) {
//	    logger := logging.WithRequestID(ctx, slog.Default())
//	    logger.Info("processing request")
//	}
package logging
