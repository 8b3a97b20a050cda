package invitation

import "time"

// Status is the state of an invitation. pending moves to accepted or
// declined exactly once; both are terminal.
type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusDeclined Status = "declined"
)

// Invitation is a proposal for a user to join a family
type Invitation struct {
	ID        int64     `json:"id"`
	FamilyID  int64     `json:"family_id"`
	InviterID int64     `json:"inviter_id"`
	InviteeID int64     `json:"invitee_id"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// Pending is a pending invitation joined with display fields
type Pending struct {
	Invitation
	InviterUsername string `json:"inviter_username"`
	FamilyName      string `json:"family_name"`
}
