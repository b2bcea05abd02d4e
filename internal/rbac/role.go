package rbac

import (
	"strings"
	"unicode"
)

// Role identifies a fixed identity category assigned to a user.
// Values are canonical snake_case; use Canonical to normalize
// boundary input before comparing.
type Role string

// Role names. Defined in internal/rbac/catalog.yaml (admin is derived,
// not listed there).
const (
	RoleAdmin            Role = "admin"             // full system access
	RoleWildlifeOfficer  Role = "wildlife_officer"  // park operations staff
	RoleTourist          Role = "tourist"           // visiting guest
	RoleTourGuide        Role = "tour_guide"        // guided activity staff
	RoleSafariDriver     Role = "safari_driver"     // fleet driver
	RoleVet              Role = "vet"               // animal care staff
	RoleCallOperator     Role = "call_operator"     // emergency intake
	RoleEmergencyOfficer Role = "emergency_officer" // emergency response
)

// AllRoles returns every known role, admin included.
func AllRoles() []Role {
	return []Role{
		RoleAdmin, RoleWildlifeOfficer, RoleTourist, RoleTourGuide,
		RoleSafariDriver, RoleVet, RoleCallOperator, RoleEmergencyOfficer,
	}
}

// Canonical normalizes a role string supplied by an external system
// (mixed case, CamelCase, spaces or hyphens) to the canonical
// snake_case form. An empty or blank input canonicalizes to "".
func Canonical(s string) Role {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(s) + 4)
	prevUnderscore := true // suppress a leading underscore
	prevLower := false     // an upper rune only starts a word after a lower one
	for _, r := range s {
		switch {
		case r == ' ' || r == '-' || r == '_':
			if !prevUnderscore {
				b.WriteByte('_')
				prevUnderscore = true
			}
			prevLower = false
		case unicode.IsUpper(r):
			if prevLower {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			prevUnderscore = false
			prevLower = false
		default:
			b.WriteRune(r)
			prevUnderscore = false
			prevLower = unicode.IsLower(r)
		}
	}
	return Role(strings.Trim(b.String(), "_"))
}

// IsRole reports whether role and candidate name the same role,
// case-insensitively. Empty roles never match anything.
func IsRole(role Role, candidate Role) bool {
	c := Canonical(string(role))
	if c == "" {
		return false
	}
	return c == Canonical(string(candidate))
}

// IsAnyRole reports whether role matches at least one candidate.
func IsAnyRole(role Role, candidates ...Role) bool {
	for _, c := range candidates {
		if IsRole(role, c) {
			return true
		}
	}
	return false
}

// Valid reports whether role canonicalizes to one of the known roles.
func (r Role) Valid() bool {
	switch Canonical(string(r)) {
	case RoleAdmin, RoleWildlifeOfficer, RoleTourist, RoleTourGuide,
		RoleSafariDriver, RoleVet, RoleCallOperator, RoleEmergencyOfficer:
		return true
	}
	return false
}

func (r Role) String() string {
	return string(r)
}
