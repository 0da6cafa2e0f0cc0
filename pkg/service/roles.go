package service

import (
	"context"
	"errors"
	"time"

	"github.com/flagkeep/flagkeep/pkg/apierr"
	"github.com/flagkeep/flagkeep/pkg/audit"
	"github.com/flagkeep/flagkeep/pkg/model"
	"github.com/flagkeep/flagkeep/pkg/permissions"
	"github.com/flagkeep/flagkeep/pkg/server/store"
)

// Role is a role without its permissions.
type Role struct {
	ID          int    `json:"id"`
	Type        string `json:"type"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Roles is the body of the role listing.
type Roles struct {
	Version int    `json:"version"`
	Roles   []Role `json:"roles"`
}

// RolePermission is a permission granted by a role.
type RolePermission struct {
	Name        string  `json:"name"`
	Environment *string `json:"environment"`
}

// RoleWithPermissions is a role and what it grants.
type RoleWithPermissions struct {
	Role
	CreatedAt   time.Time        `json:"createdAt"`
	Permissions []RolePermission `json:"permissions"`
}

// PermissionInput grants a permission, optionally in one environment.
type PermissionInput struct {
	Name        string  `json:"name" validate:"required"`
	Environment *string `json:"environment"`
}

// RoleInput creates or updates a custom role.
type RoleInput struct {
	Name        string            `json:"name" validate:"required,max=255"`
	Description string            `json:"description"`
	Type        string            `json:"type" validate:"required,oneof=root-custom custom"`
	Permissions []PermissionInput `json:"permissions" validate:"dive"`
}

// RoleService manages roles.
type RoleService struct {
	roles   store.RolesStore
	auditor Auditor
}

// NewRoleService creates a RoleService.
func NewRoleService(roles store.RolesStore, auditor Auditor) *RoleService {
	return &RoleService{roles: roles, auditor: orNop(auditor)}
}

// GetAll returns every role.
func (s *RoleService) GetAll(ctx context.Context) (*Roles, error) {
	roles, err := s.roles.ListRoles(ctx)
	if err != nil {
		return nil, err
	}
	out := &Roles{Version: 1, Roles: make([]Role, 0, len(roles))}
	for _, r := range roles {
		out.Roles = append(out.Roles, toRole(r))
	}
	return out, nil
}

// Get returns a role with its permissions.
func (s *RoleService) Get(ctx context.Context, id int) (*RoleWithPermissions, error) {
	role, err := s.roles.GetRole(ctx, id)
	if err != nil {
		return nil, roleError(err, id)
	}
	return toRoleWithPermissions(role), nil
}

// ValidateName fails with a NameExistsError when another role than
// excludeID is called name.
func (s *RoleService) ValidateName(ctx context.Context, name string, excludeID int) error {
	if name == "" {
		return apierr.NewBadData("Role name is required")
	}
	exists, err := s.roles.RoleNameExists(ctx, name, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return apierr.NewNameExists("There already exists a role with the name %s", name)
	}
	return nil
}

// Create creates a custom role.
func (s *RoleService) Create(ctx context.Context, input RoleInput) (*RoleWithPermissions, error) {
	if err := s.validate(ctx, input, 0); err != nil {
		return nil, err
	}

	role := roleFromInput(input)
	if err := s.roles.CreateRole(ctx, role); err != nil {
		return nil, err
	}

	out := toRoleWithPermissions(role)
	username, ip := actor(ctx)
	s.auditor.Log(ctx, audit.ChangeEvent{
		Type:      audit.RoleCreated,
		CreatedBy: username,
		ClientIP:  ip,
		Subject:   "role " + role.Name,
		Data:      out,
	})
	return out, nil
}

// Update replaces a custom role. Predefined roles cannot be changed.
func (s *RoleService) Update(ctx context.Context, id int, input RoleInput) (*RoleWithPermissions, error) {
	pre, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if isBuiltIn(pre.Role) {
		return nil, apierr.NewInvalidOperation("You can not change built in roles.")
	}
	if err := s.validate(ctx, input, id); err != nil {
		return nil, err
	}

	role := roleFromInput(input)
	role.ID = id
	role.CreatedAt = pre.CreatedAt
	if err := s.roles.UpdateRole(ctx, role); err != nil {
		return nil, roleError(err, id)
	}

	out := toRoleWithPermissions(role)
	username, ip := actor(ctx)
	s.auditor.Log(ctx, audit.ChangeEvent{
		Type:      audit.RoleUpdated,
		CreatedBy: username,
		ClientIP:  ip,
		Subject:   "role " + role.Name,
		Data:      out,
		PreData:   pre,
	})
	return out, nil
}

// Delete removes a custom role that nobody holds.
func (s *RoleService) Delete(ctx context.Context, id int) error {
	pre, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if isBuiltIn(pre.Role) {
		return apierr.NewInvalidOperation("You can not delete built in roles.")
	}

	users, groups, err := s.roles.CountRoleUsage(ctx, id)
	if err != nil {
		return err
	}
	if users > 0 || groups > 0 {
		return apierr.NewInvalidOperation(
			"Role is in use by users(%d) or groups(%d). You cannot delete a role that is in use without first removing the role from the users and groups.",
			users, groups)
	}

	if err := s.roles.DeleteRole(ctx, id); err != nil {
		return roleError(err, id)
	}

	username, ip := actor(ctx)
	s.auditor.Log(ctx, audit.ChangeEvent{
		Type:      audit.RoleDeleted,
		CreatedBy: username,
		ClientIP:  ip,
		Subject:   "role " + pre.Name,
		PreData:   pre,
	})
	return nil
}

func (s *RoleService) validate(ctx context.Context, input RoleInput, id int) error {
	if err := validateInput(input); err != nil {
		return err
	}
	if permissions.IsPredefinedRole(input.Name) {
		return apierr.NewNameExists("There already exists a role with the name %s", input.Name)
	}
	if err := s.ValidateName(ctx, input.Name, id); err != nil {
		return err
	}

	var details []apierr.Detail
	for _, p := range input.Permissions {
		if !permissions.IsKnown(permissions.Permission(p.Name)) {
			details = append(details, apierr.Detail{
				Message: "Unknown permission " + p.Name,
				Path:    "/permissions",
			})
		}
	}
	if len(details) > 0 {
		return apierr.NewBadData("%s", details[0].Message).WithDetails(details...)
	}
	return nil
}

func isBuiltIn(r Role) bool {
	return r.Type == permissions.RoleTypeRoot ||
		r.Type == permissions.RoleTypeProject ||
		permissions.IsPredefinedRole(r.Name)
}

func roleError(err error, id int) error {
	if errors.Is(err, store.ErrRoleNotFound) {
		return apierr.NewNotFound("Could not find role with id %d", id)
	}
	return err
}

func roleFromInput(input RoleInput) *store.RoleWithPermissions {
	role := &store.RoleWithPermissions{
		Role: model.Role{
			Name:        input.Name,
			Description: input.Description,
			Type:        input.Type,
		},
	}
	seen := map[string]bool{}
	for _, p := range input.Permissions {
		if seen[p.Name] {
			continue
		}
		seen[p.Name] = true
		role.Permissions = append(role.Permissions, model.RolePermission{
			Permission:  p.Name,
			Environment: p.Environment,
		})
	}
	return role
}

func toRole(r model.Role) Role {
	return Role{ID: r.ID, Type: r.Type, Name: r.Name, Description: r.Description}
}

func toRoleWithPermissions(r *store.RoleWithPermissions) *RoleWithPermissions {
	out := &RoleWithPermissions{
		Role:        toRole(r.Role),
		CreatedAt:   r.CreatedAt,
		Permissions: make([]RolePermission, 0, len(r.Permissions)),
	}
	for _, p := range r.Permissions {
		out.Permissions = append(out.Permissions, RolePermission{Name: p.Permission, Environment: p.Environment})
	}
	return out
}
