package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"newsdesk/internal/domain/entity"
	"newsdesk/internal/observability/metrics"
	"newsdesk/internal/repository"
)

// uniqueViolation is the PostgreSQL SQLSTATE for unique_violation.
const uniqueViolation = "23505"

// Querier is the subset of *sql.DB used by the repository. It is also
// satisfied by circuitbreaker.DB.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type EntryRepo struct {
	db Querier
}

func NewEntryRepo(db Querier) repository.EntryRepository {
	return &EntryRepo{db: db}
}

const entryColumns = `language, slug, title, msg, img, published_at, indexed_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEntry(row rowScanner) (*entity.Entry, error) {
	var e entity.Entry
	var indexedAt sql.NullTime
	if err := row.Scan(&e.Language, &e.ID, &e.Title, &e.Body, &e.Image, &e.PublishedAt, &indexedAt); err != nil {
		return nil, err
	}
	if indexedAt.Valid {
		t := indexedAt.Time
		e.IndexedAt = &t
	}
	return &e, nil
}

func (repo *EntryRepo) Get(ctx context.Context, lang, id string) (*entity.Entry, error) {
	defer observe("select_entry", time.Now())

	const query = `
SELECT ` + entryColumns + `
FROM entries
WHERE language = $1 AND slug = $2`
	e, err := scanEntry(repo.db.QueryRowContext(ctx, query, lang, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return e, nil
}

func (repo *EntryRepo) Exists(ctx context.Context, lang, id string) (bool, error) {
	defer observe("exists_entry", time.Now())

	const query = `SELECT EXISTS(SELECT 1 FROM entries WHERE language = $1 AND slug = $2)`
	var exists bool
	if err := repo.db.QueryRowContext(ctx, query, lang, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("Exists: %w", err)
	}
	return exists, nil
}

func (repo *EntryRepo) List(ctx context.Context, lang string, offset, limit int) ([]*entity.Entry, error) {
	defer observe("select_entries", time.Now())

	const query = `
SELECT ` + entryColumns + `
FROM entries
WHERE language = $1
ORDER BY published_at DESC, slug
LIMIT $2 OFFSET $3`
	rows, err := repo.db.QueryContext(ctx, query, lang, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer func() { _ = rows.Close() }()

	entries := make([]*entity.Entry, 0, limit)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("List: Scan: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (repo *EntryRepo) Count(ctx context.Context, lang string) (int64, error) {
	const query = `SELECT COUNT(*) FROM entries WHERE language = $1`
	var count int64
	if err := repo.db.QueryRowContext(ctx, query, lang).Scan(&count); err != nil {
		return 0, fmt.Errorf("Count: %w", err)
	}
	return count, nil
}

// Insert relies on the (language, slug) primary key: a conflicting row is
// left untouched and reported as repository.ErrDuplicate.
func (repo *EntryRepo) Insert(ctx context.Context, e *entity.Entry) error {
	defer observe("insert_entry", time.Now())

	const query = `
INSERT INTO entries (language, slug, title, msg, img, published_at, indexed_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (language, slug) DO NOTHING`

	var indexedAt interface{}
	if e.IndexedAt != nil {
		indexedAt = *e.IndexedAt
	}
	res, err := repo.db.ExecContext(ctx, query,
		e.Language, e.ID, e.Title, e.Body, e.Image, e.PublishedAt, indexedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("Insert: %w", repository.ErrDuplicate)
		}
		return fmt.Errorf("Insert: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("Insert: RowsAffected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("Insert: %w", repository.ErrDuplicate)
	}
	return nil
}

func (repo *EntryRepo) MarkIndexed(ctx context.Context, lang, id string, at time.Time) error {
	const query = `UPDATE entries SET indexed_at = $3 WHERE language = $1 AND slug = $2`
	res, err := repo.db.ExecContext(ctx, query, lang, id, at)
	if err != nil {
		return fmt.Errorf("MarkIndexed: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("MarkIndexed: %w", entity.ErrNotFound)
	}
	return nil
}

func (repo *EntryRepo) ListUnindexed(ctx context.Context, limit int) ([]*entity.Entry, error) {
	defer observe("select_unindexed", time.Now())

	const query = `
SELECT ` + entryColumns + `
FROM entries
WHERE indexed_at IS NULL
ORDER BY created_at
LIMIT $1`
	rows, err := repo.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("ListUnindexed: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []*entity.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("ListUnindexed: Scan: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (repo *EntryRepo) CountUnindexed(ctx context.Context) (int64, error) {
	const query = `SELECT COUNT(*) FROM entries WHERE indexed_at IS NULL`
	var count int64
	if err := repo.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("CountUnindexed: %w", err)
	}
	return count, nil
}

func observe(operation string, start time.Time) {
	metrics.RecordDBQuery(operation, time.Since(start))
}
