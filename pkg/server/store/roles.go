package store

import (
	"context"
	"errors"

	"github.com/flagkeep/flagkeep/pkg/model"
)

// ErrRoleNotFound is returned when a role doesn't exist
var ErrRoleNotFound = errors.New("role not found")

// RoleWithPermissions is a role and the permissions it grants
type RoleWithPermissions struct {
	model.Role
	Permissions []model.RolePermission
}

// RolesStore abstracts role storage operations
type RolesStore interface {
	// ListRoles returns all roles ordered by id
	ListRoles(ctx context.Context) ([]model.Role, error)

	// GetRole returns a role and its permissions.
	// Returns ErrRoleNotFound if the role doesn't exist.
	GetRole(ctx context.Context, id int) (*RoleWithPermissions, error)

	// GetRoleByName returns a role by name.
	// Returns ErrRoleNotFound if the role doesn't exist.
	GetRoleByName(ctx context.Context, name string) (*model.Role, error)

	// RoleExists checks if a role exists
	RoleExists(ctx context.Context, id int) (bool, error)

	// RoleNameExists checks if another role than excludeID uses name
	RoleNameExists(ctx context.Context, name string, excludeID int) (bool, error)

	// CreateRole inserts a role with its permissions and sets its ID
	CreateRole(ctx context.Context, role *RoleWithPermissions) error

	// UpdateRole overwrites a role and replaces its permissions.
	// Returns ErrRoleNotFound if the role doesn't exist.
	UpdateRole(ctx context.Context, role *RoleWithPermissions) error

	// DeleteRole deletes a role.
	// Returns ErrRoleNotFound if the role doesn't exist.
	DeleteRole(ctx context.Context, id int) error

	// CountRoleUsage counts users and groups holding a role
	CountRoleUsage(ctx context.Context, id int) (users int, groups int, err error)
}
