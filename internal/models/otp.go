package models

import "time"

// OtpChallenge is a short-lived passcode bound to an email address.
// At most one challenge exists per email; issuing a new one overwrites it.
type OtpChallenge struct {
	Email     string    `json:"email"`
	Code      string    `json:"code"`
	Attempts  int       `json:"attempts"`
	IssuedAt  time.Time `json:"issuedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (c *OtpChallenge) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}
