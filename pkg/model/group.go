package model

import (
	"time"

	"github.com/lib/pq"
)

// Group is a named set of users, optionally carrying a root role and SSO
// group mappings.
type Group struct {
	ID          int            `gorm:"column:id;primaryKey;autoIncrement"`
	Name        string         `gorm:"column:name;uniqueIndex"`
	Description string         `gorm:"column:description"`
	MappingsSSO pq.StringArray `gorm:"column:mappings_sso;type:text[]"`
	RootRoleID  *int           `gorm:"column:root_role_id"`
	CreatedBy   string         `gorm:"column:created_by"`
	CreatedAt   time.Time      `gorm:"column:created_at;autoCreateTime"`
}

func (Group) TableName() string {
	return "groups"
}

// GroupUser is a membership row joining a user to a group.
type GroupUser struct {
	GroupID   int       `gorm:"column:group_id;primaryKey"`
	UserID    int       `gorm:"column:user_id;primaryKey"`
	CreatedBy string    `gorm:"column:created_by"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (GroupUser) TableName() string {
	return "group_user"
}
