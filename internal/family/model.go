package family

import "time"

// DefaultName is given to a family created implicitly by its owner's first invitation
const DefaultName = "我的家庭"

// Family represents a household
type Family struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	OwnerID   *int64    `json:"owner_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// IsOwner reports whether userID owns the family
func (f *Family) IsOwner(userID int64) bool {
	return f.OwnerID != nil && *f.OwnerID == userID
}

// Member is a user belonging to a family
type Member struct {
	UserID   int64   `json:"id"`
	Username string  `json:"username"`
	Email    string  `json:"email"`
	FullName *string `json:"full_name,omitempty"`
}
