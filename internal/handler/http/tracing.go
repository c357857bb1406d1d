package http

import (
	"net/http"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"newsdesk/internal/handler/http/pathutil"
	"newsdesk/internal/handler/http/responsewriter"
	"newsdesk/internal/observability/tracing"
)

// TraceHeader carries the trace ID of a request back to the client.
const TraceHeader = "X-Trace-Id"

// Tracing opens a server span per request, continuing any W3C trace
// context sent by the client. Spans are named after the route template, so
// slugs and image names stay out of span names.
func Tracing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

		route := pathutil.NormalizePath(r.URL.Path)
		attrs := []attribute.KeyValue{
			attribute.String("http.method", r.Method),
			attribute.String("http.route", route),
		}
		if lang := routeLanguage(r, route); lang != "" {
			attrs = append(attrs, attribute.String("news.language", lang))
		}

		ctx, span := tracing.GetTracer().Start(ctx, r.Method+" "+route,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(attrs...))
		defer span.End()

		if sc := span.SpanContext(); sc.HasTraceID() {
			w.Header().Set(TraceHeader, sc.TraceID().String())
		}

		wrapped := responsewriter.Wrap(w)
		next.ServeHTTP(wrapped, r.WithContext(ctx))

		status := wrapped.StatusCode()
		span.SetAttributes(attribute.Int("http.status_code", status))
		if status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(status))
		}
	})
}

// routeLanguage returns the language a request targets: the path segment of
// the language-scoped routes, otherwise the language query value.
func routeLanguage(r *http.Request, route string) string {
	switch route {
	case "/entries/:lang/:id", "/imports/:lang":
		if parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/"); len(parts) > 1 {
			return parts[1]
		}
	}
	return r.URL.Query().Get("language")
}
