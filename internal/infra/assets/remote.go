package assets

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"newsdesk/internal/infra/fetcher"
	"newsdesk/internal/observability/metrics"
	"newsdesk/internal/resilience/circuitbreaker"
	"newsdesk/internal/resilience/retry"
)

// RemoteConfig bounds remote image downloads.
type RemoteConfig struct {
	Timeout        time.Duration
	MaxBytes       int64
	MaxRedirects   int
	DenyPrivateIPs bool
	// RatePerSecond limits downloads across all feeds; <= 0 disables it.
	RatePerSecond float64
	Burst         int
	Retry         retry.Policy
	Breaker       circuitbreaker.Settings
}

// DefaultRemoteConfig returns the download defaults.
func DefaultRemoteConfig() RemoteConfig {
	return RemoteConfig{
		Timeout:        15 * time.Second,
		MaxBytes:       10 * 1024 * 1024, // 10MB
		MaxRedirects:   5,
		DenyPrivateIPs: true,
		RatePerSecond:  5,
		Burst:          5,
		Retry:          retry.AssetPolicy(),
		Breaker:        circuitbreaker.For(circuitbreaker.Assets),
	}
}

// RemoteFetcher downloads images referenced by feed entries into a Store.
type RemoteFetcher struct {
	store   *Store
	client  *http.Client
	limiter *rate.Limiter
	breaker *circuitbreaker.Breaker
	cfg     RemoteConfig
}

// NewRemoteFetcher returns a RemoteFetcher writing into store.
func NewRemoteFetcher(store *Store, cfg RemoteConfig) *RemoteFetcher {
	limit := rate.Inf
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}
	return &RemoteFetcher{
		store: store,
		client: fetcher.NewHTTPClient(fetcher.ClientConfig{
			Timeout:        cfg.Timeout,
			MaxRedirects:   cfg.MaxRedirects,
			DenyPrivateIPs: cfg.DenyPrivateIPs,
		}),
		limiter: rate.NewLimiter(limit, burst),
		breaker: circuitbreaker.New(cfg.Breaker),
		cfg:     cfg,
	}
}

// FetchRemote downloads rawURL and stores it as "<uuid><ext>", ext taken
// from the URL path. Every failure wraps ErrAssetFetch.
func (f *RemoteFetcher) FetchRemote(ctx context.Context, rawURL string) (string, error) {
	start := time.Now()

	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrAssetFetch, fetcher.ErrInvalidURL)
	}
	if err := fetcher.ValidateURL(rawURL, f.cfg.DenyPrivateIPs); err != nil {
		metrics.RecordAssetFetch(false, time.Since(start), 0)
		return "", fmt.Errorf("%w: %w", ErrAssetFetch, err)
	}

	var body []byte
	err = retry.Do(ctx, f.cfg.Retry, func() error {
		if err := f.limiter.Wait(ctx); err != nil {
			return err
		}
		res, err := circuitbreaker.Call(f.breaker, func() (*fetcher.Response, error) {
			return fetcher.Get(ctx, f.client, rawURL, f.cfg.Timeout, f.cfg.MaxBytes)
		})
		if err != nil {
			return err
		}
		body = res.Body
		return nil
	})
	if err != nil {
		metrics.RecordAssetFetch(false, time.Since(start), 0)
		slog.Warn("remote asset download failed",
			slog.String("url", rawURL),
			slog.Any("error", err))
		return "", fmt.Errorf("%w: %w", ErrAssetFetch, err)
	}

	name, err := f.store.save(ctx, Extension(u.Path), bytes.NewReader(body))
	if err != nil {
		metrics.RecordAssetFetch(false, time.Since(start), 0)
		return "", fmt.Errorf("%w: %w", ErrAssetFetch, err)
	}

	metrics.RecordAssetFetch(true, time.Since(start), len(body))
	slog.Debug("remote asset stored",
		slog.String("url", rawURL),
		slog.String("name", name),
		slog.Int("bytes", len(body)))
	return name, nil
}
