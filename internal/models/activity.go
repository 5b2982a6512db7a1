package models

import "time"

// ActivityEntry is an immutable audit record. ActorName is denormalized at
// write time so renaming or deleting an account never rewrites history.
type ActivityEntry struct {
	EntryID     string    `json:"entryId"`
	ActorID     string    `json:"actorId"`
	ActorName   string    `json:"actorName"`
	Action      string    `json:"action"`
	Description string    `json:"description"`
	Details     string    `json:"details,omitempty"`
	IP          string    `json:"ip"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Action tags used by callers. Free-form strings by contract, but writers
// stick to this vocabulary.
const (
	ActionSignup          = "signup"
	ActionSignin          = "signin"
	ActionPasswordReset   = "password_reset"
	ActionPasswordChange  = "password_change"
	ActionProfileUpdate   = "profile_update"
	ActionStaffUpdate     = "staff_update"
	ActionStaffDelete     = "staff_delete"
	ActionDepositCreate   = "deposit_create"
	ActionDepositUpdate   = "deposit_update"
	ActionDepositDelete   = "deposit_delete"
	ActionBankDepositCreate = "bank_deposit_create"
	ActionBankDepositUpdate = "bank_deposit_update"
	ActionBankDepositDelete = "bank_deposit_delete"
	ActionRoleCreate      = "role_create"
	ActionRoleUpdate      = "role_update"
	ActionRoleDelete      = "role_delete"
	ActionBankCreate      = "bank_create"
	ActionBankUpdate      = "bank_update"
	ActionBankDelete      = "bank_delete"
	ActionActivityPurge   = "activity_purge"
)
