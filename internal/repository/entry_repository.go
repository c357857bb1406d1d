package repository

import (
	"context"
	"errors"
	"time"

	"newsdesk/internal/domain/entity"
)

// ErrDuplicate is returned by Insert when (language, id) is already taken.
var ErrDuplicate = errors.New("entry already exists")

// EntryRepository is the primary document store. Entries are partitioned by
// language; the id (slug) is unique within a partition.
type EntryRepository interface {
	// Get returns (nil, nil) if the entry is not found.
	Get(ctx context.Context, lang, id string) (*entity.Entry, error)
	Exists(ctx context.Context, lang, id string) (bool, error)
	// List returns entries ordered by published_at DESC.
	List(ctx context.Context, lang string, offset, limit int) ([]*entity.Entry, error)
	Count(ctx context.Context, lang string) (int64, error)
	// Insert fails with ErrDuplicate on a (language, id) collision.
	Insert(ctx context.Context, entry *entity.Entry) error
	MarkIndexed(ctx context.Context, lang, id string, at time.Time) error
	// ListUnindexed returns the oldest entries whose index write never
	// succeeded, across all languages.
	ListUnindexed(ctx context.Context, limit int) ([]*entity.Entry, error)
	// CountUnindexed returns the size of the reindex backlog.
	CountUnindexed(ctx context.Context) (int64, error)
}
