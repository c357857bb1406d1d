package db

import (
	"context"
	"database/sql"
	"fmt"
)

// schema creates the entries table. The primary key enforces slug
// uniqueness per language; a NULL indexed_at marks an entry whose search
// index write has not succeeded yet.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS entries (
    language     VARCHAR(8)  NOT NULL,
    slug         TEXT        NOT NULL,
    title        TEXT        NOT NULL,
    msg          TEXT        NOT NULL,
    img          TEXT        NOT NULL DEFAULT '',
    published_at TIMESTAMPTZ NOT NULL,
    indexed_at   TIMESTAMPTZ,
    created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
    PRIMARY KEY (language, slug)
)`,
	`CREATE INDEX IF NOT EXISTS idx_entries_language_published ON entries(language, published_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_entries_unindexed ON entries(created_at) WHERE indexed_at IS NULL`,
}

// MigrateUp applies the schema. Every statement is idempotent.
func MigrateUp(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate step %d: %w", i+1, err)
		}
	}
	return nil
}
