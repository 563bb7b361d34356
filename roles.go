package resumekit

// Role is the closed set of account roles. It is a named type on purpose:
// a mistyped role string fails ParseRole instead of silently granting or
// denying access.
type Role string

const (
	// RoleUser is a purchaser account with dashboard access
	RoleUser Role = "user"
	// RoleAdmin is a back-office operator
	RoleAdmin Role = "admin"
)

// IsValid checks if the role is one of the predefined valid roles
func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RoleAdmin:
		return true
	default:
		return false
	}
}

// CanAccessBackOffice reports whether the role may pass the admin gate.
// Unknown roles carry no capabilities.
func (r Role) CanAccessBackOffice() bool {
	return r == RoleAdmin
}

// GetAllRoles returns all predefined roles
func GetAllRoles() []Role {
	return []Role{RoleUser, RoleAdmin}
}

// ParseRole safely parses a string into a Role
func ParseRole(roleStr string) (Role, bool) {
	role := Role(roleStr)
	return role, role.IsValid()
}
