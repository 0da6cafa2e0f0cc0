package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/flagkeep/flagkeep/pkg/apierr"
	"github.com/flagkeep/flagkeep/pkg/audit"
	"github.com/flagkeep/flagkeep/pkg/auth"
	"github.com/flagkeep/flagkeep/pkg/identity"
	"github.com/flagkeep/flagkeep/pkg/model"
	"github.com/flagkeep/flagkeep/pkg/permissions"
	"github.com/flagkeep/flagkeep/pkg/server/store"
)

const wrongCredentials = "Wrong password or username"

// LoginInput is the body of a simple login.
type LoginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Session is returned by a successful login.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      User      `json:"user"`
}

// Permission is a permission held by the current user.
type Permission struct {
	Permission  string `json:"permission"`
	Project     string `json:"project,omitempty"`
	Environment string `json:"environment,omitempty"`
}

// Me describes the current user.
type Me struct {
	User        User         `json:"user"`
	Permissions []Permission `json:"permissions"`
}

// Grants are the permissions of a user split by scope.
type Grants struct {
	Root    []permissions.Permission
	Project map[string][]permissions.Permission
}

// TokenIssuer signs session tokens.
type TokenIssuer interface {
	Issue(userID int, username string) (string, time.Time, error)
}

// UserService authenticates users and resolves their permissions.
type UserService struct {
	users   store.UsersStore
	roles   store.RolesStore
	access  store.AccessStore
	issuer  TokenIssuer
	auditor Auditor
	logger  *zap.Logger
}

// NewUserService creates a UserService.
func NewUserService(users store.UsersStore, roles store.RolesStore, access store.AccessStore, issuer TokenIssuer, auditor Auditor, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{
		users:   users,
		roles:   roles,
		access:  access,
		issuer:  issuer,
		auditor: orNop(auditor),
		logger:  logger.Named("user-service"),
	}
}

// Login checks a username and password and issues a session token.
func (s *UserService) Login(ctx context.Context, input LoginInput) (*Session, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	_, ip := actor(ctx)
	fail := func(reason string) error {
		s.auditor.Log(ctx, audit.LoginEvent{
			Username:     input.Username,
			ClientIP:     ip,
			Success:      false,
			ErrorMessage: reason,
		})
		return apierr.New(apierr.PasswordMismatch, wrongCredentials)
	}

	user, err := s.users.GetUserByUsername(ctx, input.Username)
	if errors.Is(err, store.ErrUserNotFound) {
		return nil, fail("unknown user")
	}
	if err != nil {
		return nil, err
	}
	if err := auth.ComparePassword(user.PasswordHash, input.Password); err != nil {
		return nil, fail(err.Error())
	}

	token, expiresAt, err := s.issuer.Issue(user.ID, user.Username)
	if err != nil {
		return nil, err
	}
	if err := s.users.MarkSeen(ctx, user.ID); err != nil {
		s.logger.Warn("failed to record login", zap.Int("userId", user.ID), zap.Error(err))
	}

	s.auditor.Log(ctx, audit.LoginEvent{Username: user.Username, ClientIP: ip, Success: true})
	return &Session{Token: token, ExpiresAt: expiresAt, User: toUser(*user)}, nil
}

// Me returns the user of the request and their permissions.
func (s *UserService) Me(ctx context.Context) (*Me, error) {
	id, ok := identity.Get(ctx)
	if !ok {
		return nil, apierr.New(apierr.AuthenticationRequired, "You must log in to use flagkeep")
	}
	user, err := s.users.GetUser(ctx, id.UserID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, apierr.New(apierr.AuthenticationRequired, "You must log in to use flagkeep")
		}
		return nil, err
	}

	perms, err := s.access.GetPermissionsForUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	me := &Me{User: toUser(*user), Permissions: make([]Permission, 0, len(perms))}
	for _, p := range perms {
		me.Permissions = append(me.Permissions, Permission{
			Permission:  string(p.Permission),
			Project:     p.Project,
			Environment: p.Environment,
		})
	}
	return me, nil
}

// Grants returns the permissions of a user split into root and project
// scope. Environment-scoped permissions count for their project.
func (s *UserService) Grants(ctx context.Context, userID int) (*Grants, error) {
	perms, err := s.access.GetPermissionsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	grants := &Grants{Project: map[string][]permissions.Permission{}}
	for _, p := range perms {
		if p.Project == "" {
			grants.Root = appendUnique(grants.Root, p.Permission)
			continue
		}
		grants.Project[p.Project] = appendUnique(grants.Project[p.Project], p.Permission)
	}
	return grants, nil
}

// Create adds a user with a root role. It is used to bootstrap an instance.
func (s *UserService) Create(ctx context.Context, username, password, roleName string) (*User, error) {
	if username == "" {
		return nil, apierr.NewBadData("username is required")
	}
	if _, err := s.users.GetUserByUsername(ctx, username); err == nil {
		return nil, apierr.NewNameExists("A user with the username %s already exists", username)
	} else if !errors.Is(err, store.ErrUserNotFound) {
		return nil, err
	}

	role, err := s.roles.GetRoleByName(ctx, roleName)
	if errors.Is(err, store.ErrRoleNotFound) {
		return nil, apierr.NewBadData("Could not find role %s", roleName)
	}
	if err != nil {
		return nil, err
	}
	if role.Type != permissions.RoleTypeRoot && role.Type != permissions.RoleTypeRootCustom {
		return nil, apierr.NewBadData("Role %s is not a root role", roleName)
	}

	user := &model.User{Username: username, RootRoleID: &role.ID}
	if password != "" {
		hash, err := auth.HashPassword(password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	out := toUser(*user)
	return &out, nil
}

// Token issues a session token for a user without checking a password.
func (s *UserService) Token(ctx context.Context, username string) (string, time.Time, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if errors.Is(err, store.ErrUserNotFound) {
		return "", time.Time{}, apierr.NewNotFound("Could not find user %s", username)
	}
	if err != nil {
		return "", time.Time{}, err
	}
	return s.issuer.Issue(user.ID, user.Username)
}

func appendUnique(perms []permissions.Permission, p permissions.Permission) []permissions.Permission {
	for _, existing := range perms {
		if existing == p {
			return perms
		}
	}
	return append(perms, p)
}
