package invitation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ltcare/familyhub/internal/database"
)

const invitationColumns = `id, family_id, inviter_id, invitee_id, status, created_at`

// Repository handles invitation persistence
type Repository struct {
	db database.Querier
}

// NewRepository creates a new invitation repository
func NewRepository(db database.Querier) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the given transaction
func (r *Repository) WithTx(tx database.Querier) *Repository {
	return &Repository{db: tx}
}

func scanInvitation(row interface{ Scan(...any) error }) (*Invitation, error) {
	inv := &Invitation{}
	err := row.Scan(
		&inv.ID,
		&inv.FamilyID,
		&inv.InviterID,
		&inv.InviteeID,
		&inv.Status,
		&inv.CreatedAt,
	)
	return inv, err
}

// Create inserts a pending invitation. It returns nil without error when an
// identical pending invitation already exists.
func (r *Repository) Create(ctx context.Context, familyID, inviterID, inviteeID int64) (*Invitation, error) {
	query := `
		INSERT INTO family_invitations (family_id, inviter_id, invitee_id, status)
		VALUES (?, ?, ?, ?)
		ON CONFLICT DO NOTHING
		RETURNING ` + invitationColumns

	inv, err := scanInvitation(r.db.QueryRowContext(ctx, query, familyID, inviterID, inviteeID, StatusPending))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to create invitation: %w", err)
	}

	return inv, nil
}

// GetByID retrieves an invitation by its ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*Invitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM family_invitations WHERE id = ?`

	inv, err := scanInvitation(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get invitation: %w", err)
	}

	return inv, nil
}

// GetForUpdate retrieves an invitation and locks its row until the
// surrounding transaction ends
func (r *Repository) GetForUpdate(ctx context.Context, id int64) (*Invitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM family_invitations WHERE id = ?` + r.db.Dialect().LockForUpdate()

	inv, err := scanInvitation(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get invitation: %w", err)
	}

	return inv, nil
}

// MarkAccepted moves a pending invitation to accepted and reports whether it did
func (r *Repository) MarkAccepted(ctx context.Context, id int64) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE family_invitations SET status = ? WHERE id = ? AND status = ?`,
		StatusAccepted, id, StatusPending,
	)
	if err != nil {
		return false, fmt.Errorf("failed to accept invitation: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

// Decline moves a pending invitation addressed to inviteeID to declined. It
// returns nil when no such pending invitation exists.
func (r *Repository) Decline(ctx context.Context, id, inviteeID int64) (*Invitation, error) {
	query := `
		UPDATE family_invitations
		SET status = ?
		WHERE id = ? AND invitee_id = ? AND status = ?
		RETURNING ` + invitationColumns

	inv, err := scanInvitation(r.db.QueryRowContext(ctx, query, StatusDeclined, id, inviteeID, StatusPending))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to decline invitation: %w", err)
	}

	return inv, nil
}

// ListPendingForInvitee retrieves pending invitations addressed to a user,
// newest first
func (r *Repository) ListPendingForInvitee(ctx context.Context, inviteeID int64) ([]*Pending, error) {
	query := `
		SELECT fi.id, fi.family_id, fi.inviter_id, fi.invitee_id, fi.status, fi.created_at,
		       u.username, f.name
		FROM family_invitations fi
		JOIN users u ON u.id = fi.inviter_id
		JOIN families f ON f.id = fi.family_id
		WHERE fi.invitee_id = ? AND fi.status = ?
		ORDER BY fi.created_at DESC, fi.id DESC
	`

	rows, err := r.db.QueryContext(ctx, query, inviteeID, StatusPending)
	if err != nil {
		return nil, fmt.Errorf("failed to list invitations: %w", err)
	}
	defer rows.Close()

	pending := []*Pending{}
	for rows.Next() {
		p := &Pending{}
		if err := rows.Scan(
			&p.ID,
			&p.FamilyID,
			&p.InviterID,
			&p.InviteeID,
			&p.Status,
			&p.CreatedAt,
			&p.InviterUsername,
			&p.FamilyName,
		); err != nil {
			return nil, fmt.Errorf("failed to scan invitation: %w", err)
		}
		pending = append(pending, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list invitations: %w", err)
	}

	return pending, nil
}
