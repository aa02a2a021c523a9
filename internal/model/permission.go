package model

// rolePermissions is the single role-to-permissions table. Every endpoint
// and response that reports permissions reads from here; nothing else
// may enumerate permission strings.
var rolePermissions = map[Role][]string{
	RolePatient: {
		"appointments:read:own",
		"appointments:book",
		"profile:write:own",
		"voice:session",
	},
	RoleDoctor: {
		"appointments:read",
		"appointments:manage",
		"patients:read",
		"records:write",
	},
	RoleHospitalAdmin: {
		"appointments:read",
		"doctors:manage",
		"hospital:manage",
		"staff:provision",
	},
	RolePharmacist: {
		"prescriptions:read",
		"prescriptions:dispense",
	},
}

// PermissionsFor returns the ordered permission set for a role. The
// returned slice is a copy; callers may not mutate the table.
func PermissionsFor(role Role) []string {
	perms, ok := rolePermissions[role]
	if !ok {
		return []string{}
	}
	out := make([]string, len(perms))
	copy(out, perms)
	return out
}

// HasPermission reports whether role carries the named permission.
func HasPermission(role Role, permission string) bool {
	for _, p := range rolePermissions[role] {
		if p == permission {
			return true
		}
	}
	return false
}
