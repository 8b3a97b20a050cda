package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Options configures the connection pool
type Options struct {
	Driver          string
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxIdleTime time.Duration
	ConnectTimeout  time.Duration
}

// DB wraps sql.DB with dialect support
type DB struct {
	*sql.DB
	dialect Dialect
}

// Open creates the connection pool and verifies it with a ping bounded by
// opts.ConnectTimeout.
func Open(ctx context.Context, opts Options) (*DB, error) {
	dialect, err := NewDialect(opts.Driver)
	if err != nil {
		return nil, err
	}

	sqlDB, err := sql.Open(dialect.DriverName(), dialect.DSN(opts.URL))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	dialect.ConfigureConnection(sqlDB, opts)

	pingCtx := ctx
	if opts.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, opts.ConnectTimeout)
		defer cancel()
	}
	if err := sqlDB.PingContext(pingCtx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{DB: sqlDB, dialect: dialect}, nil
}

// Dialect returns the database dialect
func (db *DB) Dialect() Dialect {
	return db.dialect
}

// ExecContext executes a query with placeholder rewriting
func (db *DB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return db.DB.ExecContext(ctx, db.dialect.RewriteQuery(query), args...)
}

// QueryContext executes a query that returns rows with placeholder rewriting
func (db *DB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return db.DB.QueryContext(ctx, db.dialect.RewriteQuery(query), args...)
}

// QueryRowContext executes a query that returns a single row with placeholder rewriting
func (db *DB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return db.DB.QueryRowContext(ctx, db.dialect.RewriteQuery(query), args...)
}
