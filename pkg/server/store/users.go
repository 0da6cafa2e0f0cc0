package store

import (
	"context"
	"errors"

	"github.com/flagkeep/flagkeep/pkg/model"
)

// ErrUserNotFound is returned when a user doesn't exist
var ErrUserNotFound = errors.New("user not found")

// UsersStore abstracts user storage operations
type UsersStore interface {
	// GetUser returns a user by id.
	// Returns ErrUserNotFound if the user doesn't exist.
	GetUser(ctx context.Context, id int) (*model.User, error)

	// GetUserByUsername returns a user by username.
	// Returns ErrUserNotFound if the user doesn't exist.
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)

	// FindUsers returns the users with the given ids. Unknown ids are
	// skipped.
	FindUsers(ctx context.Context, ids []int) ([]model.User, error)

	// CreateUser inserts a user and sets its ID
	CreateUser(ctx context.Context, user *model.User) error

	// SetPassword replaces the password hash of a user
	SetPassword(ctx context.Context, id int, passwordHash string) error

	// MarkSeen records a login
	MarkSeen(ctx context.Context, id int) error
}
