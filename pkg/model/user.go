package model

import "time"

// User is a console user.
type User struct {
	ID           int        `gorm:"column:id;primaryKey;autoIncrement"`
	Username     string     `gorm:"column:username;uniqueIndex"`
	Email        string     `gorm:"column:email"`
	Name         string     `gorm:"column:name"`
	PasswordHash string     `gorm:"column:password_hash"`
	RootRoleID   *int       `gorm:"column:root_role_id"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime"`
	SeenAt       *time.Time `gorm:"column:seen_at"`
}

func (User) TableName() string {
	return "users"
}
