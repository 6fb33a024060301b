package admin

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Role is an enumerated permission tier attached to a profile
type Role string

const (
	// RoleUnset is the placeholder sentinel for unprovisioned profiles,
	// always treated as non-admin
	RoleUnset Role = ""
	// RoleUser is a regular account
	RoleUser Role = "user"
	// RoleAdmin may enter the admin surface
	RoleAdmin Role = "admin"
	// RoleModerator has elevated product permissions but no console access
	RoleModerator Role = "moderator"
)

// IsValid checks if the role is one of the recognized assignable roles.
// The unset sentinel is not assignable.
func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleModerator:
		return true
	default:
		return false
	}
}

// AssignableRoles returns the roles an operator may set on a profile
func AssignableRoles() []Role {
	return []Role{RoleUser, RoleAdmin, RoleModerator}
}

// ParseRole safely parses a string into a Role
func ParseRole(roleStr string) (Role, bool) {
	role := Role(roleStr)
	return role, role.IsValid()
}

// Profile is the stored record describing a subject, one per subject id
type Profile struct {
	bun.BaseModel `bun:"table:profiles,alias:prf"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Email         string     `bun:"email,notnull,unique" json:"email,omitempty"`
	Role          Role       `bun:"role,notnull" json:"role"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// IsAdmin reports whether this profile grants console access. A missing
// profile or unset role is non-admin.
func (p *Profile) IsAdmin() bool {
	return p != nil && p.Role == RoleAdmin
}

// Account is the credential record the session provider verifies against
type Account struct {
	bun.BaseModel `bun:"table:accounts,alias:acc"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Email         string     `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash  string     `bun:"password_hash,notnull" json:"-"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}
