package models

import "time"

// BankDeposit is a bank transaction record tied to a registered Bank.
type BankDeposit struct {
	DepositID   string    `json:"depositId"`
	BankID      string    `json:"bankId"`
	Amount      float64   `json:"amount"`
	Currency    string    `json:"currency"`
	Reference   string    `json:"reference,omitempty"`
	Note        string    `json:"note,omitempty"`
	SubmittedBy string    `json:"submittedBy"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
