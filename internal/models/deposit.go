package models

import "time"

const (
	DepositTypeCash   = "cash"
	DepositTypeLocal  = "local"
	DepositTypeCrypto = "crypto"
)

// Deposit is a cash/local/crypto deposit record submitted by a staff member.
type Deposit struct {
	DepositID   string    `json:"depositId"`
	Type        string    `json:"type"`
	Amount      float64   `json:"amount"`
	Currency    string    `json:"currency"`
	Note        string    `json:"note,omitempty"`
	SubmittedBy string    `json:"submittedBy"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func ValidDepositType(t string) bool {
	switch t {
	case DepositTypeCash, DepositTypeLocal, DepositTypeCrypto:
		return true
	}
	return false
}
