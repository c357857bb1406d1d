package fetcher

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-shiori/go-readability"

	"newsdesk/internal/observability/metrics"
	"newsdesk/internal/resilience/circuitbreaker"
)

// ReadabilityFetcher extracts the main article markup of a web page using the
// Mozilla Readability algorithm.
//
// Thread safety: ReadabilityFetcher is safe for concurrent use.
type ReadabilityFetcher struct {
	client         *http.Client
	circuitBreaker *circuitbreaker.Breaker
	config         ContentFetchConfig
}

// NewReadabilityFetcher creates a ReadabilityFetcher with an SSRF-checked
// client and its own circuit breaker.
func NewReadabilityFetcher(config ContentFetchConfig) *ReadabilityFetcher {
	return &ReadabilityFetcher{
		client: NewHTTPClient(ClientConfig{
			Timeout:        3 * config.Timeout,
			MaxRedirects:   config.MaxRedirects,
			DenyPrivateIPs: config.DenyPrivateIPs,
		}),
		circuitBreaker: circuitbreaker.New(circuitbreaker.For(circuitbreaker.Articles)),
		config:         config,
	}
}

// ShouldFetch reports whether a summary of summaryLen characters needs the
// article. It is false while enrichment is disabled.
func (f *ReadabilityFetcher) ShouldFetch(summaryLen int) bool {
	return f.config.ShouldFetch(summaryLen)
}

// FetchContent returns the article markup found at urlStr. The result is
// untrusted HTML and must be sanitized by the caller.
func (f *ReadabilityFetcher) FetchContent(ctx context.Context, urlStr string) (string, error) {
	if err := ValidateURL(urlStr, f.config.DenyPrivateIPs); err != nil {
		metrics.RecordContentFetch("skipped", 0)
		return "", err
	}

	start := time.Now()
	text, err := circuitbreaker.Call(f.circuitBreaker, func() (string, error) {
		return f.doFetch(ctx, urlStr)
	})
	if err != nil {
		metrics.RecordContentFetch("failure", time.Since(start))
		return "", err
	}

	metrics.RecordContentFetch("success", time.Since(start))
	return text, nil
}

func (f *ReadabilityFetcher) doFetch(ctx context.Context, urlStr string) (string, error) {
	resp, err := Get(ctx, f.client, urlStr, f.config.Timeout, f.config.MaxBodySize)
	if err != nil {
		return "", err
	}

	article, err := readability.FromReader(bytes.NewReader(resp.Body), resp.URL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrReadabilityFailed, err)
	}

	if strings.TrimSpace(article.Content) == "" {
		if strings.TrimSpace(article.TextContent) == "" {
			return "", fmt.Errorf("%w: no readable content found", ErrReadabilityFailed)
		}
		slog.Debug("using article TextContent instead of Content",
			slog.String("url", urlStr),
			slog.Int("content_length", len(article.TextContent)))
		return article.TextContent, nil
	}

	return article.Content, nil
}
