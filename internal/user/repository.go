package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ltcare/familyhub/internal/database"
)

const userColumns = `id, username, email, password_hash, full_name, is_active, created_at`

// Repository handles user data persistence
type Repository struct {
	db database.Querier
}

// NewRepository creates a new user repository with database dependency injected
func NewRepository(db database.Querier) *Repository {
	return &Repository{db: db}
}

func scanUser(row interface{ Scan(...any) error }) (*User, error) {
	user := &User{}
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.FullName,
		&user.IsActive,
		&user.CreatedAt,
	)
	return user, err
}

// Create inserts a new user. Unique violations are returned as ErrUserExists.
func (r *Repository) Create(ctx context.Context, username, email, passwordHash string, fullName *string) (*User, error) {
	query := `
		INSERT INTO users (username, email, password_hash, full_name)
		VALUES (?, ?, ?, ?)
		RETURNING ` + userColumns

	user, err := scanUser(r.db.QueryRowContext(ctx, query, username, email, passwordHash, fullName))
	if err != nil {
		if r.db.Dialect().IsUniqueViolation(err) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// GetByID retrieves a user by their ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

// GetByUsername retrieves a user by exact username
func (r *Repository) GetByUsername(ctx context.Context, username string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = ?`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, username))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}

	return user, nil
}

// GetByLogin retrieves a user whose username or email equals login
func (r *Repository) GetByLogin(ctx context.Context, login string) (*User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE username = ? OR email = ?
		ORDER BY id ASC
		LIMIT 1
	`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, login, login))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by login: %w", err)
	}

	return user, nil
}

// ExistsByUsernameOrEmail reports whether either value is already registered
func (r *Repository) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE username = ? OR email = ?`, username, email,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check user existence: %w", err)
	}
	return count > 0, nil
}
