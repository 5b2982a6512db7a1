package models

import "time"

// Bank is a registered bank that bank deposits reference by id.
type Bank struct {
	BankID        string    `json:"bankId"`
	Name          string    `json:"name"`
	AccountNumber string    `json:"accountNumber,omitempty"`
	Branch        string    `json:"branch,omitempty"`
	CreatedBy     string    `json:"createdBy"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}
