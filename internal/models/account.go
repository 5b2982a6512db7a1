package models

import "time"

const (
	AccountStatusActive   = "active"
	AccountStatusInactive = "inactive"
)

// Account is a staff member's identity, profile, and capability grants.
// Permissions is the resource -> action -> bool matrix; an empty map is
// repaired with role defaults on first authorization.
type Account struct {
	AccountID   string                     `json:"accountId"`
	Name        string                     `json:"name"`
	Email       string                     `json:"email"`
	Role        string                     `json:"role"`
	Status      string                     `json:"status"`
	Archived    bool                       `json:"archived"`
	Permissions map[string]map[string]bool `json:"permissions"`
	CreatedAt   time.Time                  `json:"createdAt"`
	UpdatedAt   time.Time                  `json:"updatedAt"`
	LastLoginAt *time.Time                 `json:"lastLoginAt,omitempty"`
}

func (a *Account) IsInactive() bool {
	return a.Status == AccountStatusInactive
}
