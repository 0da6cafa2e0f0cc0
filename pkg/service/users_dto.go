package service

import (
	"time"

	"github.com/flagkeep/flagkeep/pkg/model"
)

// User is the public representation of a console user.
type User struct {
	ID        int        `json:"id"`
	Name      string     `json:"name,omitempty"`
	Email     string     `json:"email,omitempty"`
	Username  string     `json:"username,omitempty"`
	RootRole  *int       `json:"rootRole"`
	SeenAt    *time.Time `json:"seenAt"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

func toUser(u model.User) User {
	user := User{
		ID:       u.ID,
		Name:     u.Name,
		Email:    u.Email,
		Username: u.Username,
		RootRole: u.RootRoleID,
		SeenAt:   u.SeenAt,
	}
	if !u.CreatedAt.IsZero() {
		created := u.CreatedAt
		user.CreatedAt = &created
	}
	return user
}
