package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/flagkeep/flagkeep/pkg/apierr"
	"github.com/flagkeep/flagkeep/pkg/audit"
	"github.com/flagkeep/flagkeep/pkg/model"
	"github.com/flagkeep/flagkeep/pkg/server/store"
)

// Group is a group with its members.
type Group struct {
	ID          int         `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	MappingsSSO []string    `json:"mappingsSSO"`
	RootRole    *int        `json:"rootRole"`
	CreatedBy   string      `json:"createdBy,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
	UserCount   int         `json:"userCount"`
	Users       []GroupUser `json:"users"`
}

// GroupUser is a member of a group.
type GroupUser struct {
	User      User      `json:"user"`
	JoinedAt  time.Time `json:"joinedAt"`
	CreatedBy string    `json:"createdBy,omitempty"`
}

// Groups is the body of the group listing.
type Groups struct {
	Groups []Group `json:"groups"`
}

// UserRef references an existing user by id.
type UserRef struct {
	ID int `json:"id" validate:"gt=0"`
}

// GroupUserInput adds a user to a group.
type GroupUserInput struct {
	User UserRef `json:"user"`
}

// GroupInput creates or updates a group.
type GroupInput struct {
	Name        string           `json:"name" validate:"required,max=255"`
	Description string           `json:"description"`
	MappingsSSO []string         `json:"mappingsSSO"`
	RootRole    *int             `json:"rootRole"`
	Users       []GroupUserInput `json:"users" validate:"dive"`
}

func (in GroupInput) userIDs() []int {
	ids := make([]int, 0, len(in.Users))
	seen := map[int]bool{}
	for _, u := range in.Users {
		if seen[u.User.ID] {
			continue
		}
		seen[u.User.ID] = true
		ids = append(ids, u.User.ID)
	}
	return ids
}

// GroupService manages groups and their members.
type GroupService struct {
	groups  store.GroupsStore
	users   store.UsersStore
	roles   store.RolesStore
	auditor Auditor
	logger  *zap.Logger
}

// NewGroupService creates a GroupService.
func NewGroupService(groups store.GroupsStore, users store.UsersStore, roles store.RolesStore, auditor Auditor, logger *zap.Logger) *GroupService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GroupService{
		groups:  groups,
		users:   users,
		roles:   roles,
		auditor: orNop(auditor),
		logger:  logger.Named("group-service"),
	}
}

// GetAll returns every group with its members.
func (s *GroupService) GetAll(ctx context.Context) (*Groups, error) {
	groups, err := s.groups.ListGroups(ctx)
	if err != nil {
		return nil, err
	}
	members, err := s.groups.ListGroupMembers(ctx)
	if err != nil {
		return nil, err
	}

	byGroup := map[int][]store.GroupMember{}
	for _, m := range members {
		byGroup[m.GroupID] = append(byGroup[m.GroupID], m)
	}

	out := &Groups{Groups: make([]Group, 0, len(groups))}
	for _, g := range groups {
		out.Groups = append(out.Groups, toGroup(g, byGroup[g.ID]))
	}
	return out, nil
}

// Get returns a group with its members.
func (s *GroupService) Get(ctx context.Context, id int) (*Group, error) {
	g, err := s.groups.GetGroup(ctx, id)
	if err != nil {
		return nil, groupError(err, id)
	}
	members, err := s.groups.ListGroupMembers(ctx, id)
	if err != nil {
		return nil, err
	}
	group := toGroup(*g, members)
	return &group, nil
}

// Create creates a group and adds its users.
func (s *GroupService) Create(ctx context.Context, input GroupInput) (*Group, error) {
	if err := s.validate(ctx, input, 0); err != nil {
		return nil, err
	}

	username, ip := actor(ctx)
	g := &model.Group{
		Name:        input.Name,
		Description: input.Description,
		MappingsSSO: input.MappingsSSO,
		RootRoleID:  input.RootRole,
		CreatedBy:   username,
	}
	if g.MappingsSSO == nil {
		g.MappingsSSO = []string{}
	}
	if err := s.groups.CreateGroup(ctx, g); err != nil {
		return nil, err
	}
	if ids := input.userIDs(); len(ids) > 0 {
		if err := s.groups.SetGroupMembers(ctx, g.ID, ids, username); err != nil {
			return nil, err
		}
	}

	group, err := s.Get(ctx, g.ID)
	if err != nil {
		return nil, err
	}

	s.auditor.Log(ctx, audit.ChangeEvent{
		Type:      audit.GroupCreated,
		CreatedBy: username,
		ClientIP:  ip,
		Subject:   "group " + group.Name,
		Data:      group,
	})
	s.logger.Info("group created", zap.Int("id", group.ID), zap.String("name", group.Name))
	return group, nil
}

// Update overrides the details and members of a group.
func (s *GroupService) Update(ctx context.Context, id int, input GroupInput) (*Group, error) {
	pre, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.validate(ctx, input, id); err != nil {
		return nil, err
	}

	username, ip := actor(ctx)
	g := &model.Group{
		ID:          id,
		Name:        input.Name,
		Description: input.Description,
		MappingsSSO: input.MappingsSSO,
		RootRoleID:  input.RootRole,
	}
	if g.MappingsSSO == nil {
		g.MappingsSSO = []string{}
	}
	if err := s.groups.UpdateGroup(ctx, g); err != nil {
		return nil, groupError(err, id)
	}
	if err := s.groups.SetGroupMembers(ctx, id, input.userIDs(), username); err != nil {
		return nil, err
	}

	group, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	s.auditor.Log(ctx, audit.ChangeEvent{
		Type:      audit.GroupUpdated,
		CreatedBy: username,
		ClientIP:  ip,
		Subject:   "group " + group.Name,
		Data:      group,
		PreData:   pre,
	})
	return group, nil
}

// Delete removes a group.
func (s *GroupService) Delete(ctx context.Context, id int) error {
	pre, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.groups.DeleteGroup(ctx, id); err != nil {
		return groupError(err, id)
	}

	username, ip := actor(ctx)
	s.auditor.Log(ctx, audit.ChangeEvent{
		Type:      audit.GroupDeleted,
		CreatedBy: username,
		ClientIP:  ip,
		Subject:   "group " + pre.Name,
		PreData:   pre,
	})
	return nil
}

func (s *GroupService) validate(ctx context.Context, input GroupInput, id int) error {
	if err := validateInput(input); err != nil {
		return err
	}

	exists, err := s.groups.GroupNameExists(ctx, input.Name, id)
	if err != nil {
		return err
	}
	if exists {
		return apierr.NewNameExists("Group name already exists")
	}

	if input.RootRole != nil {
		exists, err := s.roles.RoleExists(ctx, *input.RootRole)
		if err != nil {
			return err
		}
		if !exists {
			return apierr.NewBadData("Role with id %d does not exist", *input.RootRole)
		}
	}

	ids := input.userIDs()
	if len(ids) == 0 {
		return nil
	}
	users, err := s.users.FindUsers(ctx, ids)
	if err != nil {
		return err
	}
	if len(users) != len(ids) {
		found := map[int]bool{}
		for _, u := range users {
			found[u.ID] = true
		}
		var missing []string
		for _, id := range ids {
			if !found[id] {
				missing = append(missing, fmt.Sprint(id))
			}
		}
		sort.Strings(missing)
		return apierr.NewBadData("Users with ids %s do not exist", strings.Join(missing, ", "))
	}
	return nil
}

func groupError(err error, id int) error {
	if errors.Is(err, store.ErrGroupNotFound) {
		return apierr.NewNotFound("Could not find group with id %d", id)
	}
	return err
}

func toGroup(g model.Group, members []store.GroupMember) Group {
	group := Group{
		ID:          g.ID,
		Name:        g.Name,
		Description: g.Description,
		MappingsSSO: []string(g.MappingsSSO),
		RootRole:    g.RootRoleID,
		CreatedBy:   g.CreatedBy,
		CreatedAt:   g.CreatedAt,
		UserCount:   len(members),
		Users:       make([]GroupUser, 0, len(members)),
	}
	if group.MappingsSSO == nil {
		group.MappingsSSO = []string{}
	}
	for _, m := range members {
		group.Users = append(group.Users, GroupUser{
			User:      toUser(m.User),
			JoinedAt:  m.JoinedAt,
			CreatedBy: m.CreatedBy,
		})
	}
	return group
}
