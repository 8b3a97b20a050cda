package calendar

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ltcare/familyhub/internal/database"
)

const eventColumns = `id, family_id, author_user_id, title, content, start_time, end_time, color, created_at`

// Repository handles calendar event persistence
type Repository struct {
	db database.Querier
}

// NewRepository creates a new calendar repository
func NewRepository(db database.Querier) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the given transaction
func (r *Repository) WithTx(tx database.Querier) *Repository {
	return &Repository{db: tx}
}

func scanEvent(row interface{ Scan(...any) error }) (*Event, error) {
	e := &Event{}
	err := row.Scan(
		&e.ID,
		&e.FamilyID,
		&e.AuthorUserID,
		&e.Title,
		&e.Content,
		&e.StartTime,
		&e.EndTime,
		&e.Color,
		&e.CreatedAt,
	)
	return e, err
}

// ListByFamily retrieves a family's events ordered by start time, optionally
// restricted to those overlapping rng
func (r *Repository) ListByFamily(ctx context.Context, familyID int64, rng *Range) ([]*Event, error) {
	query := `SELECT ` + eventColumns + ` FROM calendar_events WHERE family_id = ?`
	args := []any{familyID}
	if rng != nil {
		query += ` AND start_time < ? AND end_time > ?`
		args = append(args, ceilTime(rng.End), normalizeTime(rng.Start))
	}
	query += ` ORDER BY start_time ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	events := []*Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	return events, nil
}

// Create inserts a new event
func (r *Repository) Create(ctx context.Context, e *Event) (*Event, error) {
	query := `
		INSERT INTO calendar_events (family_id, author_user_id, title, content, start_time, end_time, color)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING ` + eventColumns

	created, err := scanEvent(r.db.QueryRowContext(ctx, query,
		e.FamilyID, e.AuthorUserID, e.Title, e.Content,
		normalizeTime(e.StartTime), normalizeTime(e.EndTime), e.Color,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	return created, nil
}

// GetForUpdate retrieves an event belonging to familyID and locks it for the
// surrounding transaction. It returns nil when no such event exists.
func (r *Repository) GetForUpdate(ctx context.Context, familyID, id int64) (*Event, error) {
	query := `SELECT ` + eventColumns + ` FROM calendar_events WHERE id = ? AND family_id = ?` + r.db.Dialect().LockForUpdate()

	e, err := scanEvent(r.db.QueryRowContext(ctx, query, id, familyID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	return e, nil
}

// Update writes every mutable field of e, scoped by its family
func (r *Repository) Update(ctx context.Context, e *Event) (*Event, error) {
	query := `
		UPDATE calendar_events
		SET title = ?, content = ?, start_time = ?, end_time = ?, color = ?
		WHERE id = ? AND family_id = ?
		RETURNING ` + eventColumns

	updated, err := scanEvent(r.db.QueryRowContext(ctx, query,
		e.Title, e.Content, normalizeTime(e.StartTime), normalizeTime(e.EndTime), e.Color,
		e.ID, e.FamilyID,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update event: %w", err)
	}

	return updated, nil
}

// Delete removes an event scoped by family and reports whether it existed
func (r *Repository) Delete(ctx context.Context, familyID, id int64) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM calendar_events WHERE id = ? AND family_id = ?`, id, familyID)
	if err != nil {
		return false, fmt.Errorf("failed to delete event: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}
