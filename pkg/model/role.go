package model

import "time"

// Role groups permissions. Root roles apply to the whole instance, project
// roles apply to a single project.
type Role struct {
	ID          int       `gorm:"column:id;primaryKey;autoIncrement"`
	Name        string    `gorm:"column:name;uniqueIndex"`
	Description string    `gorm:"column:description"`
	Type        string    `gorm:"column:type"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Role) TableName() string {
	return "roles"
}

// RolePermission grants a permission through a role. Environment is set
// for environment-scoped permissions only.
type RolePermission struct {
	RoleID      int     `gorm:"column:role_id;primaryKey"`
	Permission  string  `gorm:"column:permission;primaryKey"`
	Environment *string `gorm:"column:environment"`
}

func (RolePermission) TableName() string {
	return "role_permissions"
}
