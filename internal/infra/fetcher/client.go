package fetcher

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"newsdesk/internal/resilience/retry"
)

// UserAgent identifies newsdesk to remote hosts.
const UserAgent = "NewsdeskBot/1.0"

// ClientConfig bounds a hardened HTTP client.
type ClientConfig struct {
	Timeout        time.Duration
	MaxRedirects   int
	DenyPrivateIPs bool
}

// NewHTTPClient returns a client that validates every redirect target
// against the SSRF rules and stops after MaxRedirects hops.
func NewHTTPClient(cfg ClientConfig) *http.Client {
	return &http.Client{
		Timeout: cfg.Timeout,
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= cfg.MaxRedirects {
				return fmt.Errorf("%w: %d redirects", ErrTooManyRedirects, len(via))
			}
			if err := ValidateURL(req.URL.String(), cfg.DenyPrivateIPs); err != nil {
				return fmt.Errorf("redirect target validation failed: %w", err)
			}
			return nil
		},
	}
}

// Response is a fully read, size-checked HTTP response.
type Response struct {
	Body        []byte
	ContentType string
	// URL is the final location after redirects.
	URL *url.URL
}

// Get performs a GET with a per-request timeout and reads at most maxBytes.
// Non-200 statuses are returned as *retry.StatusError so callers can decide
// whether to retry.
func Get(ctx context.Context, client *http.Client, rawURL string, timeout time.Duration, maxBytes int64) (*Response, error) {
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrInvalidURL, err)
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := client.Do(req)
	if err != nil {
		if errors.Is(reqCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, fmt.Errorf("%w: request exceeded %v", ErrTimeout, timeout)
		}
		var urlErr *url.Error
		if errors.As(err, &urlErr) && urlErr.Err != nil &&
			(errors.Is(urlErr.Err, ErrTooManyRedirects) || errors.Is(urlErr.Err, ErrPrivateIP) || errors.Is(urlErr.Err, ErrInvalidURL)) {
			return nil, urlErr.Err
		}
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, &retry.StatusError{Code: resp.StatusCode, Status: resp.Status}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(body)) > maxBytes {
		return nil, fmt.Errorf("%w: response exceeds limit %d bytes", ErrBodyTooLarge, maxBytes)
	}

	final := req.URL
	if resp.Request != nil && resp.Request.URL != nil {
		final = resp.Request.URL
	}
	return &Response{
		Body:        body,
		ContentType: resp.Header.Get("Content-Type"),
		URL:         final,
	}, nil
}
