package store

import (
	"context"

	"github.com/flagkeep/flagkeep/pkg/permissions"
)

// UserPermission is a permission held by a user. Project is empty for
// permissions granted by root roles.
type UserPermission struct {
	Permission  permissions.Permission
	Project     string
	Environment string
}

// AccessStore resolves the permissions held by users
type AccessStore interface {
	// GetPermissionsForUser returns every permission granted to a user by
	// their root role, the root roles of their groups and their project
	// roles
	GetPermissionsForUser(ctx context.Context, userID int) ([]UserPermission, error)
}
