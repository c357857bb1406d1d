package search

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"newsdesk/internal/domain/entity"
	"newsdesk/internal/observability/metrics"
	"newsdesk/internal/observability/tracing"
	"newsdesk/internal/repository"
)

// DefaultMaxResults caps the number of hits requested from the index.
const DefaultMaxResults = 100

// Service runs full-text searches over one collection.
type Service struct {
	index      repository.SearchIndex
	languages  entity.Languages
	collection string
	maxResults int
}

// Option configures a Service.
type Option func(*Service)

// WithMaxResults overrides DefaultMaxResults. Non-positive values are ignored.
func WithMaxResults(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxResults = n
		}
	}
}

// NewService creates a search Service over the "<collection>_<lang>" indices.
func NewService(index repository.SearchIndex, languages entity.Languages, collection string, opts ...Option) *Service {
	s := &Service{
		index:      index,
		languages:  languages,
		collection: collection,
		maxResults: DefaultMaxResults,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search returns entries whose title or body match query, in the index's
// relevance order. The query string is passed to the index untouched.
func (s *Service) Search(ctx context.Context, lang, query string) (results []entity.Entry, err error) {
	if _, err := s.languages.Lookup(lang); err != nil {
		return nil, err
	}
	if strings.TrimSpace(query) == "" {
		return nil, &entity.ValidationError{Field: "q", Message: "is required"}
	}

	ctx, span := tracing.StartSpan(ctx, "search.query", attribute.String("language", lang))
	start := time.Now()
	defer func() {
		metrics.RecordSearch(lang, err == nil, time.Since(start))
		tracing.EndSpan(span, err)
	}()

	q := repository.BoolShouldQuery{
		Should: []repository.Match{
			{Field: "title", Query: query},
			{Field: "msg", Query: query},
		},
		Size: s.maxResults,
	}

	results, err = s.index.Search(ctx, entity.IndexName(s.collection, lang), q)
	if err != nil {
		slog.Warn("search failed",
			slog.String("language", lang),
			slog.Any("error", err))
		return nil, fmt.Errorf("%w: %w", ErrSearch, err)
	}
	if results == nil {
		results = []entity.Entry{}
	}
	span.SetAttributes(attribute.Int("search.hits", len(results)))
	return results, nil
}
