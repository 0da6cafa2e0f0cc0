// Package permissions lists the permissions that gate the admin API and the
// predefined roles that bundle them.
package permissions

// Permission is the name of a privilege checked before a route handler runs.
type Permission string

const (
	// Admin passes every permission check.
	Admin Permission = "ADMIN"
	// None is satisfied by any authenticated user.
	None Permission = "NONE"

	CreateProject Permission = "CREATE_PROJECT"
	UpdateProject Permission = "UPDATE_PROJECT"
	DeleteProject Permission = "DELETE_PROJECT"

	CreateGroup Permission = "CREATE_GROUP"
	UpdateGroup Permission = "UPDATE_GROUP"
	DeleteGroup Permission = "DELETE_GROUP"

	CreateSegment        Permission = "CREATE_SEGMENT"
	UpdateSegment        Permission = "UPDATE_SEGMENT"
	DeleteSegment        Permission = "DELETE_SEGMENT"
	UpdateProjectSegment Permission = "UPDATE_PROJECT_SEGMENT"

	ReadRole   Permission = "READ_ROLE"
	CreateRole Permission = "CREATE_ROLE"
	UpdateRole Permission = "UPDATE_ROLE"
	DeleteRole Permission = "DELETE_ROLE"
)

// Root role names seeded by the initial migration.
const (
	RoleAdmin  = "Admin"
	RoleEditor = "Editor"
	RoleViewer = "Viewer"
	RoleOwner  = "Owner"
	RoleMember = "Member"
)

// Role types.
const (
	RoleTypeRoot       = "root"
	RoleTypeRootCustom = "root-custom"
	RoleTypeCustom     = "custom"
	RoleTypeProject    = "project"
)

var all = []Permission{
	Admin,
	CreateProject, UpdateProject, DeleteProject,
	CreateGroup, UpdateGroup, DeleteGroup,
	CreateSegment, UpdateSegment, DeleteSegment, UpdateProjectSegment,
	ReadRole, CreateRole, UpdateRole, DeleteRole,
}

// projectScoped permissions are granted per project through project roles.
var projectScoped = map[Permission]bool{
	UpdateProject:        true,
	DeleteProject:        true,
	UpdateProjectSegment: true,
}

// All returns every grantable permission.
func All() []Permission {
	out := make([]Permission, len(all))
	copy(out, all)
	return out
}

// IsKnown reports whether p is a grantable permission.
func IsKnown(p Permission) bool {
	for _, known := range all {
		if known == p {
			return true
		}
	}
	return false
}

// IsProjectScoped reports whether p is checked against a project.
func IsProjectScoped(p Permission) bool {
	return projectScoped[p]
}

// IsPredefinedRole reports whether name is one of the seeded roles, which
// cannot be changed or removed.
func IsPredefinedRole(name string) bool {
	switch name {
	case RoleAdmin, RoleEditor, RoleViewer, RoleOwner, RoleMember:
		return true
	}
	return false
}
