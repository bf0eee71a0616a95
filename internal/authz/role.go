package authz

import "strings"

// Role is an organization-scoped role. Roles form a total order used for
// minimum-role gating; the order is independent of the permission matrix.
type Role string

const (
	RoleViewer    Role = "viewer"
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
	RoleOwner     Role = "owner"
)

// roleOrder defines the hierarchy from lowest to highest.
var roleOrder = []Role{RoleViewer, RoleUser, RoleModerator, RoleAdmin, RoleOwner}

// Rank returns the role's position in the hierarchy. Unknown roles rank
// below viewer so they never satisfy a minimum-role gate.
func (r Role) Rank() int {
	for i, known := range roleOrder {
		if r == known {
			return i
		}
	}
	return -1
}

// Valid reports whether the role is one of the known roles.
func (r Role) Valid() bool {
	return r.Rank() >= 0
}

// AtLeast reports whether the role ranks at or above min.
func (r Role) AtLeast(min Role) bool {
	rank := r.Rank()
	return rank >= 0 && rank >= min.Rank()
}

// ParseRole normalizes raw input into a Role. The boolean is false for
// anything outside the closed set.
func ParseRole(raw string) (Role, bool) {
	role := Role(strings.TrimSpace(strings.ToLower(raw)))
	if !role.Valid() {
		return "", false
	}
	return role, true
}

// Roles returns the hierarchy from lowest to highest.
func Roles() []Role {
	out := make([]Role, len(roleOrder))
	copy(out, roleOrder)
	return out
}
