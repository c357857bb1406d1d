// Package scraper provides implementations for fetching RSS/Atom feeds.
// It uses the gofeed library to parse feed content with reliability patterns.
package scraper

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mmcdole/gofeed"

	"newsdesk/internal/resilience/circuitbreaker"
	"newsdesk/internal/resilience/retry"
	"newsdesk/internal/usecase/feed"
)

// UserAgent identifies newsdesk to feed servers.
const UserAgent = "NewsdeskBot/1.0"

// RSSFetcher implements feed.FeedFetcher using the gofeed library.
// It includes circuit breaker and retry logic for improved reliability.
type RSSFetcher struct {
	client         *http.Client
	circuitBreaker *circuitbreaker.Breaker
	retryConfig    retry.Policy
}

// NewRSSFetcher creates a new RSSFetcher with the given HTTP client.
// It automatically configures circuit breaker and retry logic.
func NewRSSFetcher(client *http.Client) *RSSFetcher {
	return NewRSSFetcherWithRetry(client, retry.FeedPolicy())
}

// NewRSSFetcherWithRetry is NewRSSFetcher with a custom retry policy.
func NewRSSFetcherWithRetry(client *http.Client, cfg retry.Policy) *RSSFetcher {
	return &RSSFetcher{
		client:         client,
		circuitBreaker: circuitbreaker.New(circuitbreaker.For(circuitbreaker.Feeds)),
		retryConfig:    cfg,
	}
}

// Fetch retrieves and parses an RSS/Atom feed from the given URL.
// It uses circuit breaker and retry logic for improved reliability.
// Returns the feed items in document order.
func (f *RSSFetcher) Fetch(ctx context.Context, feedURL string) ([]feed.FeedItem, error) {
	var items []feed.FeedItem

	// Wrap with retry logic
	retryErr := retry.Do(ctx, f.retryConfig, func() error {
		fetched, err := circuitbreaker.Call(f.circuitBreaker, func() ([]feed.FeedItem, error) {
			return f.doFetch(ctx, feedURL)
		})
		if err != nil {
			if circuitbreaker.Rejected(err) {
				slog.Warn("feed fetch rejected by open circuit breaker",
					slog.String("breaker", f.circuitBreaker.Name()),
					slog.String("url", feedURL),
					slog.String("state", f.circuitBreaker.State().String()))
			}
			return err
		}
		items = fetched
		return nil
	})

	if retryErr != nil {
		return nil, retryErr
	}

	return items, nil
}

// doFetch performs the actual feed fetch without retry or circuit breaker.
func (f *RSSFetcher) doFetch(ctx context.Context, feedURL string) ([]feed.FeedItem, error) {
	fp := gofeed.NewParser()
	fp.UserAgent = UserAgent
	fp.Client = f.client

	parsed, err := fp.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		var httpErr gofeed.HTTPError
		if errors.As(err, &httpErr) {
			return nil, &retry.StatusError{Code: httpErr.StatusCode, Status: httpErr.Status}
		}
		return nil, err
	}

	items := make([]feed.FeedItem, 0, len(parsed.Items))
	for _, it := range parsed.Items {
		items = append(items, toFeedItem(it))
	}
	return items, nil
}

func toFeedItem(it *gofeed.Item) feed.FeedItem {
	// Content takes precedence over Description
	summary := it.Content
	if summary == "" {
		summary = it.Description
	}

	item := feed.FeedItem{
		Title:       it.Title,
		Link:        it.Link,
		Summary:     summary,
		Published:   it.Published,
		PublishedAt: it.PublishedParsed,
		ImageURL:    imageURL(it),
	}
	// Atom entries often carry only <updated>
	if item.Published == "" && item.PublishedAt == nil {
		item.Published = it.Updated
		item.PublishedAt = it.UpdatedParsed
	}
	return item
}

// imageURL returns the first image/* enclosure, else the item image.
func imageURL(it *gofeed.Item) string {
	for _, enc := range it.Enclosures {
		if enc != nil && enc.URL != "" && strings.HasPrefix(enc.Type, "image/") {
			return enc.URL
		}
	}
	if it.Image != nil {
		return it.Image.URL
	}
	return ""
}
