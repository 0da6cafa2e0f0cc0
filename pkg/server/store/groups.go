package store

import (
	"context"
	"errors"
	"time"

	"github.com/flagkeep/flagkeep/pkg/model"
)

// ErrGroupNotFound is returned when a group doesn't exist
var ErrGroupNotFound = errors.New("group not found")

// GroupMember is a user together with when and by whom they were added
// to a group.
type GroupMember struct {
	GroupID   int
	User      model.User
	JoinedAt  time.Time
	CreatedBy string
}

// GroupsStore abstracts group storage operations
type GroupsStore interface {
	// ListGroups returns all groups ordered by name
	ListGroups(ctx context.Context) ([]model.Group, error)

	// GetGroup returns a group by id.
	// Returns ErrGroupNotFound if the group doesn't exist.
	GetGroup(ctx context.Context, id int) (*model.Group, error)

	// GroupNameExists checks if another group than excludeID uses name
	GroupNameExists(ctx context.Context, name string, excludeID int) (bool, error)

	// CreateGroup inserts a group and sets its ID
	CreateGroup(ctx context.Context, group *model.Group) error

	// UpdateGroup overwrites the details of a group.
	// Returns ErrGroupNotFound if the group doesn't exist.
	UpdateGroup(ctx context.Context, group *model.Group) error

	// DeleteGroup deletes a group and its memberships.
	// Returns ErrGroupNotFound if the group doesn't exist.
	DeleteGroup(ctx context.Context, id int) error

	// ListGroupMembers returns the members of the given groups, or of all
	// groups when no ids are given
	ListGroupMembers(ctx context.Context, groupIDs ...int) ([]GroupMember, error)

	// SetGroupMembers replaces the members of a group. Users that stay keep
	// their original join date.
	SetGroupMembers(ctx context.Context, groupID int, userIDs []int, createdBy string) error
}
