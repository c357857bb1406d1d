package entry

import (
	"context"
	"fmt"
	"strings"

	"newsdesk/internal/common/pagination"
	"newsdesk/internal/domain/entity"
	"newsdesk/internal/observability/metrics"
	"newsdesk/internal/repository"
)

// Service provides entry read use cases.
type Service struct {
	Repo      repository.EntryRepository
	Languages entity.Languages
}

// PaginatedResult represents the result of a paginated query.
// It contains both the data and pagination metadata.
type PaginatedResult struct {
	Data       []*entity.Entry
	Pagination pagination.Metadata
}

// List returns one page of lang's entries, newest first. A page past the
// end is empty.
// Returns entity.ErrUnknownLanguage for a language that is not configured.
func (s *Service) List(ctx context.Context, lang string, page pagination.Page) (*PaginatedResult, error) {
	if _, err := s.Languages.Lookup(lang); err != nil {
		return nil, err
	}
	if page.Number < 1 {
		page.Number = 1
	}
	if page.Size < 1 {
		page.Size = pagination.DefaultPerPage
	}

	total, err := s.Repo.Count(ctx, lang)
	if err != nil {
		return nil, fmt.Errorf("count entries: %w", err)
	}
	metrics.UpdateEntriesTotal(lang, total)

	entries, err := s.Repo.List(ctx, lang, page.Offset(), page.Size)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	if entries == nil {
		entries = []*entity.Entry{}
	}

	return &PaginatedResult{
		Data:       entries,
		Pagination: page.Metadata(total),
	}, nil
}

// Get retrieves a single entry by language and id.
// Returns ErrInvalidEntryID if id is blank.
// Returns ErrEntryNotFound if the entry does not exist.
func (s *Service) Get(ctx context.Context, lang, id string) (*entity.Entry, error) {
	if _, err := s.Languages.Lookup(lang); err != nil {
		return nil, err
	}
	if strings.TrimSpace(id) == "" {
		return nil, ErrInvalidEntryID
	}

	e, err := s.Repo.Get(ctx, lang, id)
	if err != nil {
		return nil, fmt.Errorf("get entry: %w", err)
	}
	if e == nil {
		return nil, ErrEntryNotFound
	}
	return e, nil
}
