package constants

const (
	ViewCollections   = "view_collections"
	ViewCertificates  = "view_certificates"
	IssueCertificate  = "issue_certificate"
	RevokeCertificate = "revoke_certificate"
)

// PermissionRoles maps each permission to the roles allowed to perform it.
var PermissionRoles = map[string][]string{
	ViewCollections:   {Viewer, Operator, Manager, Admin, Superadmin},
	ViewCertificates:  {Viewer, Operator, Manager, Admin, Superadmin},
	IssueCertificate:  {Operator, Manager, Admin, Superadmin},
	RevokeCertificate: {Manager, Admin, Superadmin},
}

// AllowedRole returns true if role is in the list of allowed roles for the permission.
func AllowedRole(permission, role string) bool {
	roles, ok := PermissionRoles[permission]
	if !ok {
		return false
	}
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
