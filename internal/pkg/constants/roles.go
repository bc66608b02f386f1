package constants

const (
	Superadmin = "superadmin"
	Admin      = "admin"
	Manager    = "manager"
	Operator   = "operator"
	Viewer     = "viewer"
)

// ValidRoles is the set of allowed values for users.role.
var ValidRoles = []string{Viewer, Operator, Manager, Admin, Superadmin}

// IsValidRole returns true if role is one of the allowed values.
func IsValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}

// HasGlobalScope reports roles that act across every generating entity.
func HasGlobalScope(role string) bool {
	return role == Admin || role == Superadmin
}
