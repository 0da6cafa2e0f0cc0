package gorm

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/flagkeep/flagkeep/pkg/model"
	"github.com/flagkeep/flagkeep/pkg/server/store"
)

// Ensure GroupsStore implements store.GroupsStore
var _ store.GroupsStore = (*GroupsStore)(nil)

// GroupsStore implements store.GroupsStore using GORM
type GroupsStore struct {
	db *gorm.DB
}

// NewGroupsStore creates a new GroupsStore
func NewGroupsStore(db *gorm.DB) *GroupsStore {
	return &GroupsStore{db: db}
}

// ListGroups returns all groups ordered by name
func (s *GroupsStore) ListGroups(ctx context.Context) ([]model.Group, error) {
	var groups []model.Group
	if err := s.db.WithContext(ctx).Order("name").Find(&groups).Error; err != nil {
		return nil, err
	}
	return groups, nil
}

// GetGroup returns a group by id
func (s *GroupsStore) GetGroup(ctx context.Context, id int) (*model.Group, error) {
	var group model.Group
	tx := s.db.WithContext(ctx).Where("id = ?", id).First(&group)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return nil, store.ErrGroupNotFound
		}
		return nil, tx.Error
	}
	return &group, nil
}

// GroupNameExists checks if another group than excludeID uses name
func (s *GroupsStore) GroupNameExists(ctx context.Context, name string, excludeID int) (bool, error) {
	var exists bool
	err := s.db.WithContext(ctx).
		Raw(`SELECT EXISTS(SELECT 1 FROM groups WHERE name = ? AND id <> ?)`, name, excludeID).
		Scan(&exists).Error
	return exists, err
}

// CreateGroup inserts a group and sets its ID
func (s *GroupsStore) CreateGroup(ctx context.Context, group *model.Group) error {
	type insertedRow struct {
		ID        int
		CreatedAt time.Time
	}
	var row insertedRow
	err := s.db.WithContext(ctx).Raw(`
		INSERT INTO groups (name, description, mappings_sso, root_role_id, created_by)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id, created_at
	`, group.Name, group.Description, group.MappingsSSO, group.RootRoleID, group.CreatedBy).Scan(&row).Error
	if err != nil {
		return err
	}
	group.ID = row.ID
	group.CreatedAt = row.CreatedAt
	return nil
}

// UpdateGroup overwrites the details of a group
func (s *GroupsStore) UpdateGroup(ctx context.Context, group *model.Group) error {
	tx := s.db.WithContext(ctx).Exec(`
		UPDATE groups
		SET name = ?, description = ?, mappings_sso = ?, root_role_id = ?
		WHERE id = ?
	`, group.Name, group.Description, group.MappingsSSO, group.RootRoleID, group.ID)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return store.ErrGroupNotFound
	}
	return nil
}

// DeleteGroup deletes a group and its memberships
func (s *GroupsStore) DeleteGroup(ctx context.Context, id int) error {
	tx := s.db.WithContext(ctx).Exec(`DELETE FROM groups WHERE id = ?`, id)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return store.ErrGroupNotFound
	}
	return nil
}

// ListGroupMembers returns the members of the given groups, or of all
// groups when no ids are given
func (s *GroupsStore) ListGroupMembers(ctx context.Context, groupIDs ...int) ([]store.GroupMember, error) {
	type memberRow struct {
		GroupID    int
		CreatedBy  string
		JoinedAt   time.Time
		ID         int
		Username   string
		Email      string
		Name       string
		RootRoleID *int
		CreatedAt  time.Time
		SeenAt     *time.Time
	}

	query := `
		SELECT gu.group_id, gu.created_by, gu.created_at AS joined_at,
		       u.id, u.username, u.email, u.name, u.root_role_id, u.created_at, u.seen_at
		FROM group_user gu
		JOIN users u ON u.id = gu.user_id
	`
	var args []interface{}
	if len(groupIDs) > 0 {
		query += ` WHERE gu.group_id IN ?`
		args = append(args, groupIDs)
	}
	query += ` ORDER BY gu.group_id, u.username`

	var rows []memberRow
	if err := s.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}

	members := make([]store.GroupMember, 0, len(rows))
	for _, row := range rows {
		members = append(members, store.GroupMember{
			GroupID:   row.GroupID,
			JoinedAt:  row.JoinedAt,
			CreatedBy: row.CreatedBy,
			User: model.User{
				ID:         row.ID,
				Username:   row.Username,
				Email:      row.Email,
				Name:       row.Name,
				RootRoleID: row.RootRoleID,
				CreatedAt:  row.CreatedAt,
				SeenAt:     row.SeenAt,
			},
		})
	}
	return members, nil
}

// SetGroupMembers replaces the members of a group
func (s *GroupsStore) SetGroupMembers(ctx context.Context, groupID int, userIDs []int, createdBy string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(userIDs) == 0 {
			return tx.Exec(`DELETE FROM group_user WHERE group_id = ?`, groupID).Error
		}
		if err := tx.Exec(`DELETE FROM group_user WHERE group_id = ? AND user_id NOT IN ?`, groupID, userIDs).Error; err != nil {
			return err
		}
		for _, userID := range userIDs {
			err := tx.Exec(`
				INSERT INTO group_user (group_id, user_id, created_by)
				VALUES (?, ?, ?)
				ON CONFLICT DO NOTHING
			`, groupID, userID, createdBy).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}
