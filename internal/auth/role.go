package auth

import "strings"

// Role represents an authorisation tier. Privilege is ordered
// RoleUser < RoleEditor < RoleAdmin.
type Role string

const (
	// RoleUser can browse the catalog and create albums.
	RoleUser Role = "USER"

	// RoleEditor can additionally update and delete the albums they own.
	RoleEditor Role = "EDITOR"

	// RoleAdmin can act on every album and manage user accounts.
	RoleAdmin Role = "ADMIN"
)

// rolePrefix is the marker older rows and external systems put in front of
// role names ("ROLE_ADMIN").
const rolePrefix = "ROLE_"

// ValidRoles lists the roles in ascending privilege order.
var ValidRoles = []Role{RoleUser, RoleEditor, RoleAdmin}

// NormalizeRole strips the "ROLE_" marker and upper-cases the identifier.
// An empty value normalizes to RoleUser. Unknown identifiers are returned
// normalized but rank below every valid role.
func NormalizeRole(raw string) Role {
	r := strings.ToUpper(strings.TrimSpace(raw))
	r = strings.TrimPrefix(r, rolePrefix)
	if r == "" {
		return RoleUser
	}
	return Role(r)
}

// ParseRole normalizes raw and requires it to be one of ValidRoles.
func ParseRole(raw string) (Role, error) {
	r := NormalizeRole(raw)
	if r.Rank() == 0 {
		return "", ErrInvalidRole
	}
	return r, nil
}

// Rank returns the privilege level of a normalized role, or 0 if unknown.
func (r Role) Rank() int {
	for i, v := range ValidRoles {
		if r == v {
			return i + 1
		}
	}
	return 0
}

// AtLeast reports whether r carries at least the privilege of min.
func (r Role) AtLeast(min Role) bool {
	return r.Rank() > 0 && r.Rank() >= min.Rank()
}

// IsValid reports whether r is one of ValidRoles.
func (r Role) IsValid() bool {
	return r.Rank() > 0
}

// PromotionOnCreate returns the role a caller holding current should be
// promoted to after creating an album, and whether promotion applies.
// Only an exact USER is promoted; EDITOR and ADMIN are left alone.
func PromotionOnCreate(current Role) (Role, bool) {
	if NormalizeRole(string(current)) == RoleUser {
		return RoleEditor, true
	}
	return "", false
}
