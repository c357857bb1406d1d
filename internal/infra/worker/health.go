package worker

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"newsdesk/internal/observability/slo"
)

// HealthServer serves the worker's health checks and metrics:
//   - /health: liveness, always 200
//   - /health/ready: 200 once SetReady(true), 503 before
//   - /metrics: Prometheus exposition
//
// Example usage:
//
//	healthServer := NewHealthServer(":9091", logger)
//	go func() {
//	    if err := healthServer.Start(ctx); err != nil && err != http.ErrServerClosed {
//	        logger.Error("health server failed", slog.Any("error", err))
//	    }
//	}()
//	healthServer.SetReady(true)
type HealthServer struct {
	addr        string
	logger      *slog.Logger
	isReady     atomic.Bool
	lastSuccess atomic.Int64
	server      *http.Server
}

type healthResponse struct {
	Status string `json:"status"`
	// LastImport is the RFC 3339 time of the last successful import run.
	LastImport string `json:"last_import,omitempty"`
	// Stale is set when the last import is older than the freshness
	// objective. It does not fail the check.
	Stale bool `json:"stale,omitempty"`
}

// NewHealthServer creates a server that is not ready and not started.
func NewHealthServer(addr string, logger *slog.Logger) *HealthServer {
	return &HealthServer{addr: addr, logger: logger}
}

// Handler returns the health and metrics routes.
func (h *HealthServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", h.handleLiveness)
	mux.HandleFunc("GET /health/ready", h.handleReadiness)
	mux.Handle("GET /metrics", promhttp.Handler())
	return mux
}

// Start serves until ctx is cancelled, then shuts down within 5 seconds.
// It returns http.ErrServerClosed after a graceful shutdown.
func (h *HealthServer) Start(ctx context.Context) error {
	h.server = &http.Server{
		Addr:         h.addr,
		Handler:      h.Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		h.logger.Info("health server starting", slog.String("addr", h.addr))
		if err := h.server.ListenAndServe(); err != nil {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		h.logger.Info("health server shutting down")
		if err := h.server.Shutdown(shutdownCtx); err != nil {
			h.logger.Error("health server shutdown failed", slog.Any("error", err))
			return err
		}
		h.logger.Info("health server stopped")
		return http.ErrServerClosed

	case err := <-errChan:
		if !errors.Is(err, http.ErrServerClosed) {
			h.logger.Error("health server failed", slog.Any("error", err))
		}
		return err
	}
}

// SetReady sets the readiness reported by /health/ready.
func (h *HealthServer) SetReady(ready bool) {
	h.isReady.Store(ready)
	h.logger.Info("health server readiness changed", slog.Bool("ready", ready))
}

// MarkImported records the time of a successful import run.
func (h *HealthServer) MarkImported(at time.Time) {
	h.lastSuccess.Store(at.Unix())
}

func (h *HealthServer) handleLiveness(w http.ResponseWriter, _ *http.Request) {
	h.write(w, http.StatusOK, healthResponse{Status: "ok"})
}

func (h *HealthServer) handleReadiness(w http.ResponseWriter, _ *http.Request) {
	resp := healthResponse{Status: "ok"}
	if ts := h.lastSuccess.Load(); ts > 0 {
		last := time.Unix(ts, 0)
		resp.LastImport = last.UTC().Format(time.RFC3339)
		resp.Stale = slo.Stale(last, time.Now())
	}
	if !h.isReady.Load() {
		resp.Status = "not ready"
		h.write(w, http.StatusServiceUnavailable, resp)
		return
	}
	h.write(w, http.StatusOK, resp)
}

func (h *HealthServer) write(w http.ResponseWriter, status int, resp healthResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("failed to encode health response", slog.Any("error", err))
	}
}
