package repository

import (
	"context"

	"newsdesk/internal/domain/entity"
)

// Match is a single full-text clause against one document field.
type Match struct {
	Field string
	Query string
}

// BoolShouldQuery matches documents satisfying at least one clause, ranked by
// the index's relevance score.
type BoolShouldQuery struct {
	Should []Match
	Size   int
}

// SearchIndex is the full-text index kept in sync with the primary store.
// Index names are "<collection>_<language>".
type SearchIndex interface {
	// EnsureIndex creates the index with title and msg analyzed by analyzer.
	// An existing index is left untouched.
	EnsureIndex(ctx context.Context, name, analyzer string) error
	// Index writes entry under its id, replacing any previous document.
	Index(ctx context.Context, name string, entry *entity.Entry) error
	Search(ctx context.Context, name string, query BoolShouldQuery) ([]entity.Entry, error)
}
