package invitation

import "time"

// InviteRequest represents the request to invite a user by username
type InviteRequest struct {
	InviteeUsername string `json:"invitee_username" validate:"required"`
}

// InvitationResponse represents an invitation
type InvitationResponse struct {
	ID        int64  `json:"id"`
	FamilyID  int64  `json:"family_id"`
	InviterID int64  `json:"inviter_id"`
	InviteeID int64  `json:"invitee_id"`
	Status    Status `json:"status"`
	CreatedAt string `json:"created_at"`
}

// InviteResponse is returned by POST /family/invitations. Invitation is null
// when an identical pending invitation already existed.
type InviteResponse struct {
	Message    string              `json:"message"`
	Invitation *InvitationResponse `json:"invitation"`
}

// PendingResponse represents a pending invitation addressed to the caller
type PendingResponse struct {
	ID              int64  `json:"id"`
	FamilyID        int64  `json:"family_id"`
	FamilyName      string `json:"family_name"`
	InviterID       int64  `json:"inviter_id"`
	InviterUsername string `json:"inviter_username"`
	CreatedAt       string `json:"created_at"`
}

// AcceptResponse is returned when an invitation is accepted
type AcceptResponse struct {
	FamilyID int64 `json:"family_id"`
}

// ToResponse converts an Invitation model to an InvitationResponse DTO
func (i *Invitation) ToResponse() *InvitationResponse {
	return &InvitationResponse{
		ID:        i.ID,
		FamilyID:  i.FamilyID,
		InviterID: i.InviterID,
		InviteeID: i.InviteeID,
		Status:    i.Status,
		CreatedAt: i.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// ToResponse converts a Pending model to a PendingResponse DTO
func (p *Pending) ToResponse() *PendingResponse {
	return &PendingResponse{
		ID:              p.ID,
		FamilyID:        p.FamilyID,
		FamilyName:      p.FamilyName,
		InviterID:       p.InviterID,
		InviterUsername: p.InviterUsername,
		CreatedAt:       p.CreatedAt.UTC().Format(time.RFC3339),
	}
}
