package calendar

import "time"

// CreateEventRequest represents the request to add an event
type CreateEventRequest struct {
	Title     string     `json:"title" validate:"required"`
	Content   *string    `json:"content,omitempty"`
	StartTime *time.Time `json:"start_time" validate:"required"`
	EndTime   *time.Time `json:"end_time" validate:"required"`
	Color     *string    `json:"color,omitempty"`
}

// UpdateEventRequest is a merge patch: omitted fields keep their value
type UpdateEventRequest struct {
	Title     *string    `json:"title,omitempty"`
	Content   *string    `json:"content,omitempty"`
	StartTime *time.Time `json:"start_time,omitempty"`
	EndTime   *time.Time `json:"end_time,omitempty"`
	Color     *string    `json:"color,omitempty"`
}

// EventResponse represents a calendar event
type EventResponse struct {
	ID           int64   `json:"id"`
	FamilyID     int64   `json:"family_id"`
	AuthorUserID *int64  `json:"author_user_id"`
	Title        string  `json:"title"`
	Content      *string `json:"content"`
	StartTime    string  `json:"start_time"`
	EndTime      string  `json:"end_time"`
	Color        *string `json:"color"`
	CreatedAt    string  `json:"created_at"`
}

// ListResponse is the caller's family calendar. FamilyID is null when the
// caller belongs to no family.
type ListResponse struct {
	FamilyID *int64           `json:"family_id"`
	Events   []*EventResponse `json:"events"`
}

// ToResponse converts an Event model to an EventResponse DTO
func (e *Event) ToResponse() *EventResponse {
	return &EventResponse{
		ID:           e.ID,
		FamilyID:     e.FamilyID,
		AuthorUserID: e.AuthorUserID,
		Title:        e.Title,
		Content:      e.Content,
		StartTime:    e.StartTime.UTC().Format(time.RFC3339),
		EndTime:      e.EndTime.UTC().Format(time.RFC3339),
		Color:        e.Color,
		CreatedAt:    e.CreatedAt.UTC().Format(time.RFC3339),
	}
}
