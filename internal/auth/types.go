package auth

import "time"

// Role enumerates the account kinds the platform distinguishes.
type Role string

const (
	RoleUser       Role = "user"
	RoleInvestor   Role = "investor"
	RoleConsultant Role = "consultant"
	RoleLawyer     Role = "lawyer"
	RoleAccountant Role = "accountant"
	RoleAdmin      Role = "admin"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleInvestor, RoleConsultant, RoleLawyer, RoleAccountant, RoleAdmin:
		return true
	}
	return false
}

// User represents a registered account. The password hash is write-only:
// it never appears in any outward-facing representation, so there is no
// getter to misuse and nothing to redact at serialization time.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	GroupID      string    `json:"group_id,omitempty"`
	InvestorID   string    `json:"investor_id,omitempty"`
	Disabled     bool      `json:"disabled"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UserUpdate is the whitelist of mutable user fields. Updates go through
// this struct rather than generic attribute copying so an update request
// can never touch the identifier, email or password hash.
type UserUpdate struct {
	Name       *string
	Role       *Role
	GroupID    *string
	InvestorID *string
}
