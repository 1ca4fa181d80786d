package models

import "strings"

// Role is the account role tag. It travels as an upper-case string in the
// users table; ParseRole accepts any casing.
type Role string

const (
	RoleUser       Role = "USER"
	RoleStudent    Role = "STUDENT"
	RoleTeacher    Role = "TEACHER"
	RoleAdmin      Role = "ADMIN"
	RoleSuperAdmin Role = "SUPERADMIN"
)

// AllRoles lists the known roles in display order.
var AllRoles = []Role{RoleUser, RoleStudent, RoleTeacher, RoleAdmin, RoleSuperAdmin}

// ParseRole returns the known role matching s case-insensitively, ignoring
// surrounding whitespace.
func ParseRole(s string) (Role, bool) {
	candidate := Role(strings.ToUpper(strings.TrimSpace(s)))
	for _, r := range AllRoles {
		if r == candidate {
			return r, true
		}
	}
	return "", false
}

// NormalizeRole canonicalises a stored role string. Unknown values are kept
// verbatim so they round-trip through the table unchanged.
func NormalizeRole(s string) Role {
	if r, ok := ParseRole(s); ok {
		return r
	}
	return Role(s)
}

func (r Role) String() string {
	return string(r)
}

func (r Role) IsValid() bool {
	_, ok := ParseRole(string(r))
	return ok
}

// IsPrivileged reports whether r is ADMIN or SUPERADMIN in any casing.
func (r Role) IsPrivileged() bool {
	p, ok := ParseRole(string(r))
	return ok && (p == RoleAdmin || p == RoleSuperAdmin)
}

// IsSelfService reports whether r may be chosen at registration.
func (r Role) IsSelfService() bool {
	p, ok := ParseRole(string(r))
	return ok && (p == RoleStudent || p == RoleTeacher)
}

// CarriesProfile reports whether matricule and level are meaningful for r.
// Only users and students keep them.
func (r Role) CarriesProfile() bool {
	p, ok := ParseRole(string(r))
	return !ok || p == RoleUser || p == RoleStudent
}
