package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"newsdesk/internal/domain/entity"
	"newsdesk/internal/domain/slug"
	"newsdesk/internal/observability/metrics"
	"newsdesk/internal/observability/tracing"
	"newsdesk/internal/repository"
	"newsdesk/internal/resilience/retry"
	"newsdesk/pkg/security/sanitize"
)

// DefaultCollection prefixes every search index name.
const DefaultCollection = "news"

// DefaultReindexBatch is used by ReindexPending when no limit is given.
const DefaultReindexBatch = 100

// Outcome describes what an ingestion did with its input.
type Outcome string

const (
	// OutcomeCreated means a new entry was stored.
	OutcomeCreated Outcome = "created"
	// OutcomeDuplicateSkip means a feed entry with the same id already
	// existed and nothing was written.
	OutcomeDuplicateSkip Outcome = "duplicate_skip"
)

// Sanitizer cleans untrusted markup. *sanitize.Sanitizer satisfies it.
type Sanitizer interface {
	Sanitize(raw string) string
}

// Config holds the pipeline settings.
type Config struct {
	// Collection is the index name prefix, "news" when empty.
	Collection string
	Languages  entity.Languages
	// IndexRetry bounds index write attempts; zero means retry.IndexPolicy.
	IndexRetry retry.Policy
}

// SubmitInput is a manual submission.
type SubmitInput struct {
	Language string
	Title    string
	Body     string
	// ImageFilename and Image describe an uploaded file; Image is nil when
	// nothing was uploaded.
	ImageFilename string
	Image         io.Reader
}

// ImportInput is one feed item.
type ImportInput struct {
	Language string
	Title    string
	Body     string
	// ImageURL is an explicit image enclosure. When empty the first image
	// in the sanitized body is used.
	ImageURL string
	// BaseURL resolves relative image references, usually the item link.
	BaseURL     string
	PublishedAt time.Time
	// Enrich, when set, may replace Body before sanitizing. It only runs
	// for items that are not duplicates.
	Enrich func(ctx context.Context, body string) string
}

// Result is the outcome of one ingestion.
type Result struct {
	Entry   *entity.Entry
	Outcome Outcome
	// Indexed is false when the index write failed and the entry is
	// waiting in the reindex outbox.
	Indexed bool
}

// ReindexStats summarizes a ReindexPending run.
type ReindexStats struct {
	Pending int
	Indexed int
	Failed  int
}

// Service is the ingestion pipeline. It is safe for concurrent use.
type Service struct {
	entries   repository.EntryRepository
	index     repository.SearchIndex
	sanitizer Sanitizer
	assets    repository.AssetStore
	remote    repository.RemoteFetcher
	cfg       Config
	now       func() time.Time
}

// NewService wires the pipeline to its collaborators.
func NewService(
	entries repository.EntryRepository,
	index repository.SearchIndex,
	sanitizer Sanitizer,
	assets repository.AssetStore,
	remote repository.RemoteFetcher,
	cfg Config,
) *Service {
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}
	if cfg.IndexRetry.Attempts <= 0 {
		cfg.IndexRetry = retry.IndexPolicy()
	}
	return &Service{
		entries:   entries,
		index:     index,
		sanitizer: sanitizer,
		assets:    assets,
		remote:    remote,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Languages returns the configured language partitions.
func (s *Service) Languages() entity.Languages {
	return s.cfg.Languages
}

// draft is the common input of both ingestion paths.
type draft struct {
	path        string
	language    string
	title       string
	body        string
	publishedAt time.Time

	uploadName string
	upload     io.Reader

	imageURL string
	baseURL  string
	enrich   func(context.Context, string) string
}

// Submit ingests a manual submission. The publish time is the current time.
// A title whose id is already taken returns ErrSlugConflict.
func (s *Service) Submit(ctx context.Context, in SubmitInput) (*Result, error) {
	return s.ingest(ctx, draft{
		path:        metrics.PathManual,
		language:    in.Language,
		title:       in.Title,
		body:        in.Body,
		publishedAt: s.now().UTC(),
		uploadName:  in.ImageFilename,
		upload:      in.Image,
	})
}

// Import ingests one feed item. Items whose id already exists in the
// language are skipped with OutcomeDuplicateSkip.
func (s *Service) Import(ctx context.Context, in ImportInput) (*Result, error) {
	if in.PublishedAt.IsZero() {
		return nil, &entity.ValidationError{Field: "published", Message: "is required"}
	}
	return s.ingest(ctx, draft{
		path:        metrics.PathFeed,
		language:    in.Language,
		title:       in.Title,
		body:        in.Body,
		publishedAt: in.PublishedAt.UTC(),
		imageURL:    in.ImageURL,
		baseURL:     in.BaseURL,
		enrich:      in.Enrich,
	})
}

func (s *Service) ingest(ctx context.Context, d draft) (res *Result, err error) {
	start := time.Now()
	ctx, span := tracing.StartSpan(ctx, "ingest",
		attribute.String("language", d.language),
		attribute.String("path", d.path))
	defer func() {
		language, outcome := d.language, "failed"
		if err == nil {
			outcome = string(res.Outcome)
		} else if errors.Is(err, entity.ErrUnknownLanguage) {
			language = "unknown"
		}
		metrics.RecordIngest(language, d.path, outcome, time.Since(start))
		tracing.EndSpan(span, err)
	}()

	lang, err := s.cfg.Languages.Lookup(d.language)
	if err != nil {
		return nil, err
	}

	title := NormalizeTitle(d.title)
	if title == "" {
		return nil, &entity.ValidationError{Field: "title", Message: "is required"}
	}
	id, err := slug.ForLanguage(lang.Code, title)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("entry.id", id))

	if d.path == metrics.PathFeed {
		exists, err := s.entries.Exists(ctx, lang.Code, id)
		if err != nil {
			return nil, fmt.Errorf("%w: exists: %w", ErrStore, err)
		}
		if exists {
			return duplicate(lang.Code, id, title), nil
		}
	}

	raw := d.body
	if d.enrich != nil {
		raw = d.enrich(ctx, raw)
	}
	body := s.sanitizer.Sanitize(raw)
	if d.path == metrics.PathManual && strings.TrimSpace(body) == "" {
		return nil, &entity.ValidationError{Field: "msg", Message: "is required"}
	}

	image, err := s.resolveImage(ctx, d, body)
	if err != nil {
		return nil, err
	}

	entry := &entity.Entry{
		ID:          id,
		Language:    lang.Code,
		Title:       title,
		Body:        body,
		Image:       image,
		PublishedAt: d.publishedAt,
	}
	if err := s.insert(ctx, entry); err != nil {
		if d.path == metrics.PathFeed && errors.Is(err, ErrSlugConflict) {
			// a concurrent import stored it first
			return duplicate(lang.Code, id, title), nil
		}
		return nil, err
	}

	res = &Result{Entry: entry, Outcome: OutcomeCreated}
	res.Indexed = s.indexEntry(ctx, entry) == nil
	return res, nil
}

func duplicate(lang, id, title string) *Result {
	return &Result{
		Entry:   &entity.Entry{ID: id, Language: lang, Title: title},
		Outcome: OutcomeDuplicateSkip,
	}
}

// resolveImage stores the uploaded file, or downloads the feed item's image.
// Manual submissions without an upload have no image.
func (s *Service) resolveImage(ctx context.Context, d draft, body string) (string, error) {
	if d.upload != nil {
		name, err := s.assets.StoreUpload(ctx, d.uploadName, d.upload)
		if err != nil {
			return "", fmt.Errorf("%w: store upload: %w", ErrAsset, err)
		}
		return name, nil
	}
	if d.path != metrics.PathFeed {
		return entity.NoImage, nil
	}

	src := d.imageURL
	if src == "" {
		src = sanitize.FirstImageSource(body)
	}
	if src == "" {
		return entity.NoImage, nil
	}
	abs, ok := ResolveURL(d.baseURL, src)
	if !ok {
		slog.Debug("image reference cannot be resolved, skipping",
			slog.String("src", src),
			slog.String("base", d.baseURL))
		return entity.NoImage, nil
	}

	name, err := s.remote.FetchRemote(ctx, abs)
	if err != nil {
		return "", fmt.Errorf("%w: fetch %s: %w", ErrAsset, abs, err)
	}
	return name, nil
}

func (s *Service) insert(ctx context.Context, entry *entity.Entry) (err error) {
	ctx, span := tracing.StartSpan(ctx, "ingest.store")
	defer func() { tracing.EndSpan(span, err) }()

	if err := s.entries.Insert(ctx, entry); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return fmt.Errorf("%w: %s/%s", ErrSlugConflict, entry.Language, entry.ID)
		}
		return fmt.Errorf("%w: insert: %w", ErrStore, err)
	}
	return nil
}

// indexEntry writes entry to its language index and records success in the
// store. On failure the entry stays in the outbox.
func (s *Service) indexEntry(ctx context.Context, entry *entity.Entry) (err error) {
	name := entity.IndexName(s.cfg.Collection, entry.Language)
	ctx, span := tracing.StartSpan(ctx, "ingest.index", attribute.String("index", name))
	defer func() { tracing.EndSpan(span, err) }()

	err = retry.Do(ctx, s.cfg.IndexRetry, func() error {
		return s.index.Index(ctx, name, entry)
	})
	if err != nil {
		metrics.RecordIndexWriteFailure(entry.Language)
		slog.Warn("index write failed, entry queued for reindex",
			slog.String("index", name),
			slog.String("id", entry.ID),
			slog.Any("error", err))
		return fmt.Errorf("%w: %w", ErrIndex, err)
	}

	at := s.now().UTC()
	if err := s.entries.MarkIndexed(ctx, entry.Language, entry.ID, at); err != nil {
		// the next reindex rewrites the same document
		slog.Warn("failed to mark entry indexed",
			slog.String("language", entry.Language),
			slog.String("id", entry.ID),
			slog.Any("error", err))
		return fmt.Errorf("%w: mark indexed: %w", ErrStore, err)
	}
	entry.IndexedAt = &at
	return nil
}

// ReindexPending replays up to limit outbox entries into the search index,
// oldest first. Individual failures are counted, not returned.
func (s *Service) ReindexPending(ctx context.Context, limit int) (*ReindexStats, error) {
	if limit <= 0 {
		limit = DefaultReindexBatch
	}
	logger := slog.Default()

	pending, err := s.entries.ListUnindexed(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: list unindexed: %w", ErrStore, err)
	}

	stats := &ReindexStats{Pending: len(pending)}
	for _, entry := range pending {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		if err := s.indexEntry(ctx, entry); err != nil {
			stats.Failed++
			metrics.RecordReindex(false)
			continue
		}
		stats.Indexed++
		metrics.RecordReindex(true)
	}

	if backlog, err := s.entries.CountUnindexed(ctx); err == nil {
		metrics.UpdateOutboxSize(backlog)
	}

	if stats.Pending > 0 {
		logger.Info("reindex completed",
			slog.Int("pending", stats.Pending),
			slog.Int("indexed", stats.Indexed),
			slog.Int("failed", stats.Failed))
	}
	return stats, nil
}

// NormalizeTitle trims title, collapses internal whitespace runs to one
// space and replaces invalid UTF-8.
func NormalizeTitle(title string) string {
	return strings.Join(strings.Fields(strings.ToValidUTF8(title, "\uFFFD")), " ")
}

// ResolveURL returns ref as an absolute http(s) URL, resolving it against
// base when relative.
func ResolveURL(base, ref string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return "", false
	}
	if !u.IsAbs() {
		b, err := url.Parse(base)
		if err != nil || !b.IsAbs() {
			return "", false
		}
		u = b.ResolveReference(u)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", false
	}
	return u.String(), true
}
