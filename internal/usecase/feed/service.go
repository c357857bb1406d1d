package feed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"newsdesk/internal/domain/entity"
	"newsdesk/internal/observability/metrics"
	"newsdesk/internal/observability/tracing"
	"newsdesk/internal/usecase/ingest"
)

// FeedItem represents a single item from an RSS/Atom feed.
type FeedItem struct {
	Title   string
	Link    string
	Summary string
	// Published is the raw publish date as it appears in the feed.
	Published string
	// PublishedAt is the date parsed by the feed library, nil when it
	// could not parse Published.
	PublishedAt *time.Time
	// ImageURL is an explicit image enclosure, empty when the item has none.
	ImageURL string
}

// FeedFetcher is an interface for fetching RSS/Atom feeds from a URL.
type FeedFetcher interface {
	Fetch(ctx context.Context, url string) ([]FeedItem, error)
}

// Ingester stores one feed item. *ingest.Service satisfies it.
type Ingester interface {
	Import(ctx context.Context, in ingest.ImportInput) (*ingest.Result, error)
}

// ContentFetcher downloads the main article text of a web page.
// *fetcher.ReadabilityFetcher satisfies it.
type ContentFetcher interface {
	// ShouldFetch reports whether a summary of summaryLen characters is
	// short enough to be replaced by the article.
	ShouldFetch(summaryLen int) bool
	FetchContent(ctx context.Context, url string) (string, error)
}

// ItemFailure records one feed item that could not be imported.
type ItemFailure struct {
	Title string
	Link  string
	Err   error
}

// Report summarizes one language import.
type Report struct {
	Language      string
	FeedItems     int
	Inserted      int
	Duplicates    int
	Failed        int
	IndexFailures int
	Failures      []ItemFailure
	Duration      time.Duration
}

// Service imports configured language feeds. Imports of the same language
// are serialized; different languages may run in parallel.
type Service struct {
	languages entity.Languages
	fetcher   FeedFetcher
	pipeline  Ingester
	enricher  ContentFetcher

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewService creates a feed Service. A nil enricher disables enrichment.
func NewService(
	languages entity.Languages,
	fetcher FeedFetcher,
	pipeline Ingester,
	enricher ContentFetcher,
) *Service {
	return &Service{
		languages: languages,
		fetcher:   fetcher,
		pipeline:  pipeline,
		enricher:  enricher,
		locks:     make(map[string]*sync.Mutex),
	}
}

// Languages returns the codes of every language with a feed, sorted.
func (s *Service) Languages() []string {
	var codes []string
	for _, code := range s.languages.Codes() {
		if s.languages[code].FeedURL != "" {
			codes = append(codes, code)
		}
	}
	return codes
}

func (s *Service) lock(code string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[code]
	if !ok {
		l = &sync.Mutex{}
		s.locks[code] = l
	}
	return l
}

// ImportLanguage fetches the feed of code and ingests its items in feed
// order. Item failures are collected in the report and do not stop the run.
// A language that is not configured or has no feed returns
// entity.ErrUnknownLanguage.
func (s *Service) ImportLanguage(ctx context.Context, code string) (report *Report, err error) {
	lang, err := s.languages.Lookup(code)
	if err != nil {
		return nil, err
	}
	if lang.FeedURL == "" {
		return nil, fmt.Errorf("%w: %q has no feed", entity.ErrUnknownLanguage, code)
	}

	l := s.lock(code)
	l.Lock()
	defer l.Unlock()

	ctx, span := tracing.StartSpan(ctx, "feed.import", attribute.String("language", code))
	defer func() { tracing.EndSpan(span, err) }()

	logger := slog.Default().With(slog.String("language", code))
	start := time.Now()

	items, err := s.fetcher.Fetch(ctx, lang.FeedURL)
	if err != nil {
		metrics.RecordFeedImportError(code, "fetch")
		logger.Warn("feed fetch failed",
			slog.String("feed_url", lang.FeedURL),
			slog.Any("error", err))
		return nil, fmt.Errorf("%w: %s: %w", ErrFeedFetch, code, err)
	}

	report = &Report{Language: code, FeedItems: len(items)}
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			report.Duration = time.Since(start)
			return report, fmt.Errorf("import %s interrupted: %w", code, err)
		}

		res, err := s.importItem(ctx, code, item)
		if err != nil {
			report.Failed++
			report.Failures = append(report.Failures, ItemFailure{Title: item.Title, Link: item.Link, Err: err})
			metrics.RecordFeedImportError(code, errorType(err))
			logger.Warn("feed item failed",
				slog.String("title", item.Title),
				slog.String("link", item.Link),
				slog.Any("error", err))
			continue
		}

		switch res.Outcome {
		case ingest.OutcomeDuplicateSkip:
			report.Duplicates++
		case ingest.OutcomeCreated:
			report.Inserted++
			if !res.Indexed {
				report.IndexFailures++
			}
		}
	}

	report.Duration = time.Since(start)
	metrics.RecordFeedImport(code, report.Duration, report.Inserted, report.Duplicates, report.Failed)
	span.SetAttributes(
		attribute.Int("feed.items", report.FeedItems),
		attribute.Int("feed.inserted", report.Inserted))

	logger.Info("feed import completed",
		slog.Int("feed_items", report.FeedItems),
		slog.Int("inserted", report.Inserted),
		slog.Int("duplicates", report.Duplicates),
		slog.Int("failed", report.Failed),
		slog.Int("index_failures", report.IndexFailures),
		slog.Duration("duration", report.Duration))

	return report, nil
}

func (s *Service) importItem(ctx context.Context, code string, item FeedItem) (*ingest.Result, error) {
	published, err := PublishTime(item)
	if err != nil {
		return nil, err
	}
	return s.pipeline.Import(ctx, ingest.ImportInput{
		Language:    code,
		Title:       item.Title,
		Body:        item.Summary,
		ImageURL:    item.ImageURL,
		BaseURL:     item.Link,
		PublishedAt: published,
		Enrich:      s.enrichFunc(item.Link),
	})
}

// enrichFunc returns a hook that swaps a short summary for the linked
// article when that is longer. Fetch failures keep the summary.
func (s *Service) enrichFunc(link string) func(context.Context, string) string {
	if s.enricher == nil || link == "" {
		return nil
	}
	return func(ctx context.Context, summary string) string {
		if !s.enricher.ShouldFetch(utf8.RuneCountInString(summary)) {
			return summary
		}
		content, err := s.enricher.FetchContent(ctx, link)
		if err != nil {
			slog.Warn("article enrichment failed, using feed summary",
				slog.String("url", link),
				slog.Any("error", err))
			return summary
		}
		if utf8.RuneCountInString(content) > utf8.RuneCountInString(summary) {
			slog.Debug("summary replaced by article content",
				slog.String("url", link),
				slog.Int("summary_length", utf8.RuneCountInString(summary)),
				slog.Int("content_length", utf8.RuneCountInString(content)))
			return content
		}
		return summary
	}
}

// ImportAll imports every language with a feed concurrently, one goroutine
// per language. The group carries no shared context, so a failing language
// does not cancel the others. Every language error is joined into the
// returned error; reports of completed languages are returned either way.
func (s *Service) ImportAll(ctx context.Context) ([]*Report, error) {
	codes := s.Languages()
	reports := make([]*Report, len(codes))
	errs := make([]error, len(codes))

	var g errgroup.Group
	for i, code := range codes {
		g.Go(func() error {
			report, err := s.ImportLanguage(ctx, code)
			reports[i], errs[i] = report, err
			return err
		})
	}
	failed := g.Wait() != nil

	done := make([]*Report, 0, len(codes))
	for _, r := range reports {
		if r != nil {
			done = append(done, r)
		}
	}
	if !failed {
		return done, nil
	}
	return done, errors.Join(errs...)
}

var publishLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC822Z,
	time.RFC822,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
}

// PublishTime returns the item's publish time: the feed library's parsed
// value when present, otherwise Published parsed with the RFC 1123 and
// RFC 822 layouts.
func PublishTime(item FeedItem) (time.Time, error) {
	if item.PublishedAt != nil && !item.PublishedAt.IsZero() {
		return *item.PublishedAt, nil
	}
	raw := strings.TrimSpace(item.Published)
	if raw == "" {
		return time.Time{}, ErrMissingPublishTime
	}
	for _, layout := range publishLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrBadPublishTime, raw)
}

// errorType labels an item failure for metrics.
func errorType(err error) string {
	switch {
	case errors.Is(err, ErrMissingPublishTime), errors.Is(err, ErrBadPublishTime):
		return "timestamp"
	case errors.Is(err, ingest.ErrAsset):
		return "asset"
	case errors.Is(err, ingest.ErrStore):
		return "storage"
	case errors.Is(err, entity.ErrValidationFailed):
		return "validation"
	default:
		return "other"
	}
}
