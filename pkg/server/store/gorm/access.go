package gorm

import (
	"context"

	"gorm.io/gorm"

	"github.com/flagkeep/flagkeep/pkg/permissions"
	"github.com/flagkeep/flagkeep/pkg/server/store"
)

// Ensure AccessStore implements store.AccessStore
var _ store.AccessStore = (*AccessStore)(nil)

// AccessStore implements store.AccessStore using GORM
type AccessStore struct {
	db *gorm.DB
}

// NewAccessStore creates a new AccessStore
func NewAccessStore(db *gorm.DB) *AccessStore {
	return &AccessStore{db: db}
}

// GetPermissionsForUser returns every permission granted to a user
func (s *AccessStore) GetPermissionsForUser(ctx context.Context, userID int) ([]store.UserPermission, error) {
	type permissionRow struct {
		Permission  string
		Project     string
		Environment string
	}

	var rows []permissionRow
	err := s.db.WithContext(ctx).Raw(`
		SELECT rp.permission, '' AS project, COALESCE(rp.environment, '') AS environment
		FROM users u
		JOIN role_permissions rp ON rp.role_id = u.root_role_id
		WHERE u.id = ?
		UNION
		SELECT rp.permission, '' AS project, COALESCE(rp.environment, '') AS environment
		FROM group_user gu
		JOIN groups g ON g.id = gu.group_id
		JOIN role_permissions rp ON rp.role_id = g.root_role_id
		WHERE gu.user_id = ?
		UNION
		SELECT rp.permission, ru.project, COALESCE(rp.environment, '') AS environment
		FROM role_user ru
		JOIN role_permissions rp ON rp.role_id = ru.role_id
		WHERE ru.user_id = ?
		UNION
		SELECT rp.permission, gr.project, COALESCE(rp.environment, '') AS environment
		FROM group_user gu
		JOIN group_role gr ON gr.group_id = gu.group_id
		JOIN role_permissions rp ON rp.role_id = gr.role_id
		WHERE gu.user_id = ?
		ORDER BY project, permission
	`, userID, userID, userID, userID).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	perms := make([]store.UserPermission, 0, len(rows))
	for _, row := range rows {
		perms = append(perms, store.UserPermission{
			Permission:  permissions.Permission(row.Permission),
			Project:     row.Project,
			Environment: row.Environment,
		})
	}
	return perms, nil
}
