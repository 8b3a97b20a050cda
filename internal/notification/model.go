package notification

import "time"

// Notification is a message addressed to one user about a family event
type Notification struct {
	ID           int64     `json:"id"`
	RecipientID  int64     `json:"recipient_id"`
	ActorID      *int64    `json:"actor_id,omitempty"`
	Type         Type      `json:"type"`
	Title        string    `json:"title"`
	Message      *string   `json:"message,omitempty"`
	FamilyID     *int64    `json:"family_id,omitempty"`
	InvitationID *int64    `json:"invitation_id,omitempty"`
	IsRead       bool      `json:"is_read"`
	CreatedAt    time.Time `json:"created_at"`
}

// Type represents the type of notification
type Type string

const (
	TypeFamilyInvite       Type = "FAMILY_INVITE"
	TypeInvitationAccepted Type = "INVITATION_ACCEPTED"
	TypeInvitationDeclined Type = "INVITATION_DECLINED"
)
