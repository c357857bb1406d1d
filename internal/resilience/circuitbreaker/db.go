package circuitbreaker

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// DB guards a *sql.DB. It satisfies the executor the Postgres repositories
// take.
type DB struct {
	b  *Breaker
	db *sql.DB
}

// GuardDB wraps db with the Database profile.
func GuardDB(db *sql.DB) *DB {
	return GuardDBWith(db, For(Database))
}

// GuardDBWith wraps db with custom settings.
func GuardDBWith(db *sql.DB, s Settings) *DB {
	return &DB{b: New(s), db: db}
}

func (g *DB) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return Call(g.b, func() (*sql.Rows, error) {
		return g.db.QueryContext(ctx, query, args...)
	})
}

func (g *DB) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return Call(g.b, func() (sql.Result, error) {
		return g.db.ExecContext(ctx, query, args...)
	})
}

// QueryRowContext is not guarded: *sql.Row defers its error to Scan, and a
// Row carrying a breaker error cannot be built outside database/sql.
func (g *DB) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return g.db.QueryRowContext(ctx, query, args...)
}

// answered reports errors that prove Postgres responded. Missing rows and
// class 23 integrity violations (a duplicate slug) are outcomes, not outages.
func answered(err error) bool {
	if err == nil || errors.Is(err, sql.ErrNoRows) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && strings.HasPrefix(pgErr.Code, "23")
}
