package database

import (
	"database/sql"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Dialect captures the differences between the supported SQL backends
type Dialect interface {
	// Name is the configured driver name ("postgres" or "sqlite")
	Name() string

	// DriverName returns the driver name for sql.Open
	DriverName() string

	// DSN turns the configured database URL into a driver data source name
	DSN(url string) string

	// RewriteQuery converts ? placeholders if the driver needs another syntax
	RewriteQuery(query string) string

	// LockForUpdate returns the row-locking suffix for SELECT statements.
	// Empty when the backend serializes writers at transaction level instead.
	LockForUpdate() string

	// ConfigureConnection applies pool settings and connection options
	ConfigureConnection(db *sql.DB, opts Options)

	// MigrationsDir is the embedded directory holding this dialect's migrations
	MigrationsDir() string

	// IsUniqueViolation reports whether err came from a uniqueness constraint
	IsUniqueViolation(err error) bool
}

// NewDialect returns the dialect registered for driver
func NewDialect(driver string) (Dialect, error) {
	switch strings.ToLower(driver) {
	case "postgres", "postgresql":
		return NewPostgresDialect(), nil
	case "sqlite", "sqlite3":
		return NewSQLiteDialect(), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}
}

var placeholderRegexp = regexp.MustCompile(`\?`)

// rewritePlaceholdersToNumbered converts ? placeholders to $1, $2, etc.
func rewritePlaceholdersToNumbered(query string) string {
	counter := 0
	return placeholderRegexp.ReplaceAllStringFunc(query, func(string) string {
		counter++
		return "$" + strconv.Itoa(counter)
	})
}
