package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flagkeep/flagkeep/pkg/apierr"
	"github.com/flagkeep/flagkeep/pkg/audit"
	"github.com/flagkeep/flagkeep/pkg/auth"
	"github.com/flagkeep/flagkeep/pkg/identity"
	"github.com/flagkeep/flagkeep/pkg/model"
	"github.com/flagkeep/flagkeep/pkg/permissions"
	"github.com/flagkeep/flagkeep/pkg/server/store"
)

type stubIssuer struct {
	err error
}

func (s stubIssuer) Issue(userID int, username string) (string, time.Time, error) {
	if s.err != nil {
		return "", time.Time{}, s.err
	}
	return "token-" + username, testTime.Add(time.Hour), nil
}

func newUserFixture(t *testing.T) (*UserService, *fakeUsers, *fakeAccess, *recordingAuditor) {
	t.Helper()
	hash, err := auth.HashPassword("s3cret")
	require.NoError(t, err)

	users := newFakeUsers(model.User{ID: 1, Username: "admin", PasswordHash: hash, RootRoleID: intPtr(1)})
	access := &fakeAccess{perms: map[int][]store.UserPermission{
		1: {
			{Permission: permissions.Admin},
			{Permission: permissions.UpdateProject, Project: "web"},
			{Permission: permissions.UpdateProjectSegment, Project: "web", Environment: "production"},
			{Permission: permissions.UpdateProject, Project: "web"},
		},
	}}
	auditor := &recordingAuditor{}
	svc := NewUserService(users, newFakeRoles(), access, stubIssuer{}, auditor, nil)
	return svc, users, access, auditor
}

func TestUserService_Login(t *testing.T) {
	svc, users, _, auditor := newUserFixture(t)

	session, err := svc.Login(context.Background(), LoginInput{Username: "admin", Password: "s3cret"})
	require.NoError(t, err)
	assert.Equal(t, "token-admin", session.Token)
	assert.Equal(t, "admin", session.User.Username)
	assert.Equal(t, []int{1}, users.seen)
	require.Len(t, auditor.events, 1)
	assert.True(t, auditor.events[0].(audit.LoginEvent).Success)

	tests := []LoginInput{
		{Username: "admin", Password: "wrong"},
		{Username: "nobody", Password: "s3cret"},
	}
	for _, input := range tests {
		_, err := svc.Login(context.Background(), input)
		require.Error(t, err)
		assert.True(t, apierr.IsKind(err, apierr.PasswordMismatch))
		assert.Equal(t, 401, apierr.Status(err))
		assert.Equal(t, "Wrong password or username", err.(*apierr.Error).Message)
	}
	assert.Len(t, auditor.events, 3)
	assert.False(t, auditor.events[2].(audit.LoginEvent).Success)

	_, err = svc.Login(context.Background(), LoginInput{Username: "admin"})
	assert.True(t, apierr.IsKind(err, apierr.BadData))
}

func TestUserService_LoginIssuerFailure(t *testing.T) {
	_, users, access, _ := newUserFixture(t)
	svc := NewUserService(users, newFakeRoles(), access, stubIssuer{err: errors.New("boom")}, nil, nil)

	_, err := svc.Login(context.Background(), LoginInput{Username: "admin", Password: "s3cret"})
	assert.EqualError(t, err, "boom")
}

func TestUserService_MeAndGrants(t *testing.T) {
	svc, _, _, _ := newUserFixture(t)

	_, err := svc.Me(context.Background())
	assert.True(t, apierr.IsKind(err, apierr.AuthenticationRequired))

	ctx := identity.Set(context.Background(), identity.New(1, "admin"))
	me, err := svc.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, me.User.ID)
	assert.Len(t, me.Permissions, 4)
	assert.Equal(t, Permission{Permission: "UPDATE_PROJECT_SEGMENT", Project: "web", Environment: "production"}, me.Permissions[2])

	grants, err := svc.Grants(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []permissions.Permission{permissions.Admin}, grants.Root)
	assert.Equal(t, []permissions.Permission{permissions.UpdateProject, permissions.UpdateProjectSegment}, grants.Project["web"])
}

func TestUserService_CreateAndToken(t *testing.T) {
	svc, users, _, _ := newUserFixture(t)
	ctx := context.Background()

	user, err := svc.Create(ctx, "jane", "pa55word", permissions.RoleEditor)
	require.NoError(t, err)
	assert.Equal(t, "jane", user.Username)
	assert.Equal(t, 2, *user.RootRole)
	stored, err := users.GetUserByUsername(ctx, "jane")
	require.NoError(t, err)
	assert.NoError(t, auth.ComparePassword(stored.PasswordHash, "pa55word"))

	_, err = svc.Create(ctx, "jane", "", permissions.RoleEditor)
	assert.True(t, apierr.IsKind(err, apierr.NameExists))
	_, err = svc.Create(ctx, "joe", "", "Ghost")
	assert.True(t, apierr.IsKind(err, apierr.BadData))
	_, err = svc.Create(ctx, "joe", "", permissions.RoleOwner)
	assert.True(t, apierr.IsKind(err, apierr.BadData))

	token, _, err := svc.Token(ctx, "jane")
	require.NoError(t, err)
	assert.Equal(t, "token-jane", token)

	_, _, err = svc.Token(ctx, "ghost")
	assert.True(t, apierr.IsKind(err, apierr.NotFound))
}
