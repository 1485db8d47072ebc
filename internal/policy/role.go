package policy

import "strings"

// Role identifies a portal privilege tier. Values are closed; raw strings
// from storage or requests must go through ParseRole before any comparison.
type Role string

const (
	// RoleUnknown denies everything. Absent or unrecognized role strings
	// normalize to it.
	RoleUnknown Role = ""
	// RoleEmployee is the base tier.
	RoleEmployee Role = "Employee"
	// RoleAdmin manages Employee-owned resources.
	RoleAdmin Role = "Admin"
	// RoleSuperAdmin is the top tier.
	RoleSuperAdmin Role = "SuperAdmin"
)

// ParseRole normalizes a stored or submitted role string to its canonical
// value. Legacy case variants and the historical "NewUser" placeholder map to
// Employee; anything else maps to RoleUnknown.
func ParseRole(raw string) Role {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "employee", "newuser":
		return RoleEmployee
	case "admin":
		return RoleAdmin
	case "superadmin":
		return RoleSuperAdmin
	default:
		return RoleUnknown
	}
}

// Valid reports whether the role is one of the three canonical tiers.
func (r Role) Valid() bool {
	switch r {
	case RoleEmployee, RoleAdmin, RoleSuperAdmin:
		return true
	default:
		return false
	}
}

// String returns the canonical role string.
func (r Role) String() string {
	return string(r)
}

// AtLeastAdmin reports whether the role is Admin or SuperAdmin.
func (r Role) AtLeastAdmin() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}
