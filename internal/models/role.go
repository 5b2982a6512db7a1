package models

import "time"

// Role is a named role label. The name is copied onto each account that
// holds it, so renames cascade to account records.
type Role struct {
	RoleID      string    `json:"roleId"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedBy   string    `json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
