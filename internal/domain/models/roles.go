// internal/domain/models/roles.go
package models

// Account roles.
const (
	RoleUser         = "user"
	RoleGovtOfficial = "govt_official"
	RoleNGO          = "ngo"
)

// Permissions a govt_official or NGO account may be granted.
const (
	PermReadSchemes         = "read_schemes"
	PermApplySchemes        = "apply_schemes"
	PermManageSchemes       = "manage_schemes"
	PermManageUsers         = "manage_users"
	PermApproveApplications = "approve_applications"
	PermViewAnalytics       = "view_analytics"
)

// AllRoles lists every valid role value.
var AllRoles = []string{RoleUser, RoleGovtOfficial, RoleNGO}

// AllPermissions lists every valid permission value.
var AllPermissions = []string{
	PermReadSchemes,
	PermApplySchemes,
	PermManageSchemes,
	PermManageUsers,
	PermApproveApplications,
	PermViewAnalytics,
}

// IsValidRole checks if a value is a valid role.
func IsValidRole(value string) bool {
	return contains(AllRoles, value)
}

// IsValidPermission checks if a value is a valid permission.
func IsValidPermission(value string) bool {
	return contains(AllPermissions, value)
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
