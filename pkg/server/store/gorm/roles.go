package gorm

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/flagkeep/flagkeep/pkg/model"
	"github.com/flagkeep/flagkeep/pkg/server/store"
)

// Ensure RolesStore implements store.RolesStore
var _ store.RolesStore = (*RolesStore)(nil)

// RolesStore implements store.RolesStore using GORM
type RolesStore struct {
	db *gorm.DB
}

// NewRolesStore creates a new RolesStore
func NewRolesStore(db *gorm.DB) *RolesStore {
	return &RolesStore{db: db}
}

// ListRoles returns all roles ordered by id
func (s *RolesStore) ListRoles(ctx context.Context) ([]model.Role, error) {
	var roles []model.Role
	if err := s.db.WithContext(ctx).Order("id").Find(&roles).Error; err != nil {
		return nil, err
	}
	return roles, nil
}

// GetRole retrieves a role with its permissions
func (s *RolesStore) GetRole(ctx context.Context, id int) (*store.RoleWithPermissions, error) {
	var role model.Role
	tx := s.db.WithContext(ctx).Where("id = ?", id).First(&role)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return nil, store.ErrRoleNotFound
		}
		return nil, tx.Error
	}

	var perms []model.RolePermission
	err := s.db.WithContext(ctx).
		Where("role_id = ?", id).
		Order("permission").
		Find(&perms).Error
	if err != nil {
		return nil, err
	}

	return &store.RoleWithPermissions{Role: role, Permissions: perms}, nil
}

// GetRoleByName returns a role by name
func (s *RolesStore) GetRoleByName(ctx context.Context, name string) (*model.Role, error) {
	var role model.Role
	tx := s.db.WithContext(ctx).Where("name = ?", name).First(&role)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return nil, store.ErrRoleNotFound
		}
		return nil, tx.Error
	}
	return &role, nil
}

// RoleExists checks if a role exists
func (s *RolesStore) RoleExists(ctx context.Context, id int) (bool, error) {
	var exists bool
	err := s.db.WithContext(ctx).
		Raw(`SELECT EXISTS(SELECT 1 FROM roles WHERE id = ?)`, id).
		Scan(&exists).Error
	return exists, err
}

// RoleNameExists checks if another role than excludeID uses name
func (s *RolesStore) RoleNameExists(ctx context.Context, name string, excludeID int) (bool, error) {
	var exists bool
	err := s.db.WithContext(ctx).
		Raw(`SELECT EXISTS(SELECT 1 FROM roles WHERE name = ? AND id <> ?)`, name, excludeID).
		Scan(&exists).Error
	return exists, err
}

// CreateRole inserts a role with its permissions and sets its ID
func (s *RolesStore) CreateRole(ctx context.Context, role *store.RoleWithPermissions) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		type insertedRow struct {
			ID        int
			CreatedAt time.Time
		}
		var row insertedRow
		err := tx.Raw(`
			INSERT INTO roles (name, description, type)
			VALUES (?, ?, ?)
			RETURNING id, created_at
		`, role.Name, role.Description, role.Type).Scan(&row).Error
		if err != nil {
			return err
		}
		role.ID = row.ID
		role.CreatedAt = row.CreatedAt
		return insertPermissions(tx, role)
	})
}

// UpdateRole overwrites a role and replaces its permissions
func (s *RolesStore) UpdateRole(ctx context.Context, role *store.RoleWithPermissions) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Exec(`
			UPDATE roles SET name = ?, description = ?, type = ? WHERE id = ?
		`, role.Name, role.Description, role.Type, role.ID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return store.ErrRoleNotFound
		}
		if err := tx.Exec(`DELETE FROM role_permissions WHERE role_id = ?`, role.ID).Error; err != nil {
			return err
		}
		return insertPermissions(tx, role)
	})
}

func insertPermissions(tx *gorm.DB, role *store.RoleWithPermissions) error {
	for i := range role.Permissions {
		role.Permissions[i].RoleID = role.ID
		perm := role.Permissions[i]
		err := tx.Exec(`
			INSERT INTO role_permissions (role_id, permission, environment)
			VALUES (?, ?, ?)
			ON CONFLICT DO NOTHING
		`, perm.RoleID, perm.Permission, perm.Environment).Error
		if err != nil {
			return err
		}
	}
	return nil
}

// DeleteRole deletes a role
func (s *RolesStore) DeleteRole(ctx context.Context, id int) error {
	tx := s.db.WithContext(ctx).Exec(`DELETE FROM roles WHERE id = ?`, id)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return store.ErrRoleNotFound
	}
	return nil
}

// CountRoleUsage counts users and groups holding a role, as a root role or
// in any project
func (s *RolesStore) CountRoleUsage(ctx context.Context, id int) (int, int, error) {
	type usageRow struct {
		UserCount  int
		GroupCount int
	}
	var row usageRow
	err := s.db.WithContext(ctx).Raw(`
		SELECT
		    (SELECT COUNT(*) FROM users WHERE root_role_id = ?)
		  + (SELECT COUNT(DISTINCT user_id) FROM role_user WHERE role_id = ?) AS user_count,
		    (SELECT COUNT(*) FROM groups WHERE root_role_id = ?)
		  + (SELECT COUNT(DISTINCT group_id) FROM group_role WHERE role_id = ?) AS group_count
	`, id, id, id, id).Scan(&row).Error
	if err != nil {
		return 0, 0, err
	}
	return row.UserCount, row.GroupCount, nil
}
