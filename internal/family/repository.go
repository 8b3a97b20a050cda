package family

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ltcare/familyhub/internal/database"
)

// Repository handles family and membership persistence
type Repository struct {
	db database.Querier
}

// NewRepository creates a new family repository
func NewRepository(db database.Querier) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the given transaction
func (r *Repository) WithTx(tx database.Querier) *Repository {
	return &Repository{db: tx}
}

// ResolveFamilyID returns the family of the user's earliest membership
func (r *Repository) ResolveFamilyID(ctx context.Context, userID int64) (int64, bool, error) {
	query := `
		SELECT family_id
		FROM family_members
		WHERE user_id = ?
		ORDER BY id ASC
		LIMIT 1
	`

	var familyID int64
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&familyID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to resolve family: %w", err)
	}

	return familyID, true, nil
}

// Create inserts a new family
func (r *Repository) Create(ctx context.Context, name string, ownerID int64) (*Family, error) {
	query := `
		INSERT INTO families (name, owner_id)
		VALUES (?, ?)
		RETURNING id, name, owner_id, created_at
	`

	family := &Family{}
	err := r.db.QueryRowContext(ctx, query, name, ownerID).Scan(
		&family.ID,
		&family.Name,
		&family.OwnerID,
		&family.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create family: %w", err)
	}

	return family, nil
}

// GetByID retrieves a family by its ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*Family, error) {
	query := `SELECT id, name, owner_id, created_at FROM families WHERE id = ?`

	family := &Family{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&family.ID,
		&family.Name,
		&family.OwnerID,
		&family.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get family: %w", err)
	}

	return family, nil
}

// GetForUpdate retrieves a family and locks its row until the surrounding
// transaction ends
func (r *Repository) GetForUpdate(ctx context.Context, id int64) (*Family, error) {
	query := `SELECT id, name, owner_id, created_at FROM families WHERE id = ?` + r.db.Dialect().LockForUpdate()

	family := &Family{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&family.ID,
		&family.Name,
		&family.OwnerID,
		&family.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to lock family: %w", err)
	}

	return family, nil
}

// Rename changes a family's name
func (r *Repository) Rename(ctx context.Context, id int64, name string) (*Family, error) {
	query := `
		UPDATE families
		SET name = ?
		WHERE id = ?
		RETURNING id, name, owner_id, created_at
	`

	family := &Family{}
	err := r.db.QueryRowContext(ctx, query, name, id).Scan(
		&family.ID,
		&family.Name,
		&family.OwnerID,
		&family.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to rename family: %w", err)
	}

	return family, nil
}

// Delete removes a family together with everything that cascades from it
func (r *Repository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM families WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete family: %w", err)
	}
	return nil
}

// AddMember inserts a membership, ignoring conflicts. It reports whether a row
// was inserted.
func (r *Repository) AddMember(ctx context.Context, familyID, userID int64) (bool, error) {
	query := `
		INSERT INTO family_members (family_id, user_id)
		VALUES (?, ?)
		ON CONFLICT DO NOTHING
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query, familyID, userID).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to add family member: %w", err)
	}

	return true, nil
}

// IsMember reports whether the user belongs to the family
func (r *Repository) IsMember(ctx context.Context, familyID, userID int64) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM family_members WHERE family_id = ? AND user_id = ?`, familyID, userID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check family membership: %w", err)
	}
	return count > 0, nil
}

// CountMembers returns the number of members in a family
func (r *Repository) CountMembers(ctx context.Context, familyID int64) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM family_members WHERE family_id = ?`, familyID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count family members: %w", err)
	}
	return count, nil
}

// ListMembers retrieves the members of a family ordered by user id
func (r *Repository) ListMembers(ctx context.Context, familyID int64) ([]*Member, error) {
	query := `
		SELECT u.id, u.username, u.email, u.full_name
		FROM family_members fm
		JOIN users u ON u.id = fm.user_id
		WHERE fm.family_id = ?
		ORDER BY u.id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list family members: %w", err)
	}
	defer rows.Close()

	members := []*Member{}
	for rows.Next() {
		member := &Member{}
		if err := rows.Scan(
			&member.UserID,
			&member.Username,
			&member.Email,
			&member.FullName,
		); err != nil {
			return nil, fmt.Errorf("failed to scan family member: %w", err)
		}
		members = append(members, member)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list family members: %w", err)
	}

	return members, nil
}

// RemoveMember deletes a membership and reports whether it existed
func (r *Repository) RemoveMember(ctx context.Context, familyID, userID int64) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM family_members WHERE family_id = ? AND user_id = ?`, familyID, userID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to remove family member: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}
