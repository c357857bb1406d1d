// Package http holds the API's middleware, health checks and metrics.
// Route handlers live in subpackages.
package http

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"newsdesk/internal/handler/http/respond"
)

// Check status values.
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp string                 `json:"timestamp"`
	Checks    map[string]CheckStatus `json:"checks"`
	Version   string                 `json:"version"`
}

// CheckStatus is the result of one dependency check.
type CheckStatus struct {
	Status  string         `json:"status"`
	Message string         `json:"message,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// PingFunc checks a dependency.
type PingFunc func(ctx context.Context) error

// OutboxCounter reports entries waiting to be indexed.
type OutboxCounter interface {
	CountUnindexed(ctx context.Context) (int64, error)
}

// HealthHandler serves GET /health. The database and search index must
// both answer; a growing outbox only degrades the report.
type HealthHandler struct {
	DB      *sql.DB
	Search  PingFunc
	Outbox  OutboxCounter
	Version string

	// OutboxWarn is the pending count above which the outbox check is
	// degraded. Zero disables the threshold.
	OutboxWarn int64
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := map[string]CheckStatus{
		"database": h.checkDatabase(ctx),
		"search":   checkPing(ctx, h.Search),
	}
	if h.Outbox != nil {
		checks["outbox"] = h.checkOutbox(ctx)
	}

	status, code := StatusHealthy, http.StatusOK
	for name, c := range checks {
		if c.Status == StatusUnhealthy && name != "outbox" {
			status, code = StatusUnhealthy, http.StatusServiceUnavailable
		}
	}

	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	respond.JSON(w, code, HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
		Version:   h.Version,
	})
}

func (h *HealthHandler) checkDatabase(ctx context.Context) CheckStatus {
	if h.DB == nil {
		return CheckStatus{Status: StatusUnhealthy, Message: "not configured"}
	}
	if err := h.DB.PingContext(ctx); err != nil {
		slog.Default().Warn("database health check failed", slog.String("error", respond.SanitizeError(err)))
		return CheckStatus{Status: StatusUnhealthy, Message: "ping failed"}
	}

	stats := h.DB.Stats()
	details := map[string]any{
		"max_open_connections": stats.MaxOpenConnections,
		"open_connections":     stats.OpenConnections,
		"in_use":               stats.InUse,
		"idle":                 stats.Idle,
		"wait_count":           stats.WaitCount,
		"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
	}
	if stats.MaxOpenConnections == 0 {
		return CheckStatus{Status: StatusDegraded, Message: "connection pool max connections not configured", Details: details}
	}

	utilization := float64(stats.InUse) / float64(stats.MaxOpenConnections) * 100
	details["utilization_percent"] = utilization
	if utilization >= 80.0 {
		return CheckStatus{Status: StatusDegraded, Message: "connection pool utilization above 80%", Details: details}
	}
	return CheckStatus{Status: StatusHealthy, Details: details}
}

func checkPing(ctx context.Context, ping PingFunc) CheckStatus {
	if ping == nil {
		return CheckStatus{Status: StatusUnhealthy, Message: "not configured"}
	}
	if err := ping(ctx); err != nil {
		slog.Default().Warn("search health check failed", slog.String("error", respond.SanitizeError(err)))
		return CheckStatus{Status: StatusUnhealthy, Message: "ping failed"}
	}
	return CheckStatus{Status: StatusHealthy}
}

func (h *HealthHandler) checkOutbox(ctx context.Context) CheckStatus {
	pending, err := h.Outbox.CountUnindexed(ctx)
	if err != nil {
		return CheckStatus{Status: StatusUnhealthy, Message: "count failed"}
	}
	details := map[string]any{"pending": pending}
	if h.OutboxWarn > 0 && pending > h.OutboxWarn {
		return CheckStatus{Status: StatusDegraded, Message: "reindex backlog above threshold", Details: details}
	}
	return CheckStatus{Status: StatusHealthy, Details: details}
}

// ReadyHandler serves the readiness check: the database and search index
// must answer within two seconds.
type ReadyHandler struct {
	DB     *sql.DB
	Search PingFunc
}

func (h *ReadyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if h.DB == nil {
		http.Error(w, "database not configured", http.StatusServiceUnavailable)
		return
	}
	if err := h.DB.PingContext(ctx); err != nil {
		http.Error(w, "database not ready", http.StatusServiceUnavailable)
		return
	}
	if h.Search != nil {
		if err := h.Search(ctx); err != nil {
			http.Error(w, "search not ready", http.StatusServiceUnavailable)
			return
		}
	}

	w.Header().Set("Content-Type", "text/plain")
	_, _ = w.Write([]byte("ready"))
}

// LiveHandler serves the liveness check.
type LiveHandler struct{}

func (LiveHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = w.Write([]byte("alive"))
}
