package permissions

// Privileged role labels. Matching is by exact name: these labels carry
// implicit grants independent of the stored matrix.
const (
	RoleSuperAdmin = "Super Admin"
	RoleAdmin      = "Admin"
)

// IsPrivileged reports whether the role label is Admin or Super Admin.
// Privileged accounts see all resource records and may change other
// accounts' email addresses and manage banks.
func IsPrivileged(role string) bool {
	return role == RoleSuperAdmin || role == RoleAdmin
}

// IsSuperAdmin reports whether the role label is exactly Super Admin.
// Only super admins may delete audit log entries.
func IsSuperAdmin(role string) bool {
	return role == RoleSuperAdmin
}

// DefaultsForRole is the self-healing policy: an account encountered with an
// empty permission record is granted Full when its role label is Admin or
// Super Admin, and the hardcoded Basic preset otherwise. This is a safety
// net for legacy accounts and deliberately stronger than the signup-time
// Empty default.
func DefaultsForRole(role string) Matrix {
	if IsPrivileged(role) {
		return Full()
	}
	return Basic()
}

// SignupDefaults is the signup-time policy: the very first account receives
// Full (privilege bootstrap), everyone after that starts Empty unless the
// creator explicitly supplies a matrix.
func SignupDefaults(first bool) Matrix {
	if first {
		return Full()
	}
	return Empty()
}
