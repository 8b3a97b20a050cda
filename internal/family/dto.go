package family

import "time"

// RenameRequest represents the request to rename the caller's family
type RenameRequest struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
}

// FamilyResponse represents a family
type FamilyResponse struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	OwnerID   *int64 `json:"owner_id"`
	CreatedAt string `json:"created_at"`
}

// MemberResponse represents a family member
type MemberResponse struct {
	ID       int64   `json:"id"`
	Username string  `json:"username"`
	Email    string  `json:"email"`
	FullName *string `json:"full_name"`
}

// MembersResponse lists the caller's family members. FamilyID is null when the
// caller belongs to no family.
type MembersResponse struct {
	FamilyID *int64            `json:"family_id"`
	Members  []*MemberResponse `json:"members"`
}

// OverviewResponse is the caller's family with its members
type OverviewResponse struct {
	Family  *FamilyResponse   `json:"family"`
	Members []*MemberResponse `json:"members"`
}

// ToResponse converts a Family model to a FamilyResponse DTO
func (f *Family) ToResponse() *FamilyResponse {
	return &FamilyResponse{
		ID:        f.ID,
		Name:      f.Name,
		OwnerID:   f.OwnerID,
		CreatedAt: f.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// ToResponse converts a Member model to a MemberResponse DTO
func (m *Member) ToResponse() *MemberResponse {
	return &MemberResponse{
		ID:       m.UserID,
		Username: m.Username,
		Email:    m.Email,
		FullName: m.FullName,
	}
}

func membersToResponse(members []*Member) []*MemberResponse {
	out := make([]*MemberResponse, len(members))
	for i, m := range members {
		out[i] = m.ToResponse()
	}
	return out
}
