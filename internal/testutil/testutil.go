// Package testutil provides database fixtures for package tests.
package testutil

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ltcare/familyhub/internal/database"
)

// NewDB opens a migrated SQLite database in a temporary directory. It is
// closed automatically when the test finishes.
func NewDB(t *testing.T) *database.DB {
	t.Helper()

	db, err := database.Open(context.Background(), database.Options{
		Driver:          "sqlite",
		URL:             filepath.Join(t.TempDir(), "familyhub.db"),
		MaxOpenConns:    8,
		MaxIdleConns:    8,
		ConnMaxIdleTime: time.Minute,
		ConnectTimeout:  5 * time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Migrate(context.Background())
	require.NoError(t, err)

	return db
}

// CreateUser inserts an active user and returns its id
func CreateUser(t *testing.T, db *database.DB, username string) int64 {
	t.Helper()

	var id int64
	err := db.QueryRowContext(context.Background(),
		`INSERT INTO users (username, email, password_hash) VALUES (?, ?, ?) RETURNING id`,
		username, username+"@example.com", "not-a-real-hash",
	).Scan(&id)
	require.NoError(t, err)
	return id
}

// DeactivateUser marks a user inactive
func DeactivateUser(t *testing.T, db *database.DB, userID int64) {
	t.Helper()

	_, err := db.ExecContext(context.Background(), `UPDATE users SET is_active = ? WHERE id = ?`, false, userID)
	require.NoError(t, err)
}
