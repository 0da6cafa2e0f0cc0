package endpoints

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/flagkeep/flagkeep/pkg/apierr"
	"github.com/flagkeep/flagkeep/pkg/auth"
	"github.com/flagkeep/flagkeep/pkg/model"
	"github.com/flagkeep/flagkeep/pkg/permissions"
	"github.com/flagkeep/flagkeep/pkg/server/store"
)

func TestLogin(t *testing.T) {
	hash, err := auth.HashPassword("correct horse")
	require.NoError(t, err)

	tests := []struct {
		name     string
		body     string
		status   int
		wantName apierr.Kind
	}{
		{name: "valid credentials", body: `{"username":"alice","password":"correct horse"}`, status: http.StatusOK},
		{name: "wrong password", body: `{"username":"alice","password":"battery staple"}`, status: http.StatusUnauthorized, wantName: apierr.PasswordMismatch},
		{name: "unknown user", body: `{"username":"bob","password":"correct horse"}`, status: http.StatusUnauthorized, wantName: apierr.PasswordMismatch},
		{name: "missing password", body: `{"username":"alice"}`, status: http.StatusBadRequest, wantName: apierr.BadData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t)
			ts.users.On("GetUserByUsername", mock.Anything, "alice").Return(&model.User{ID: 7, Username: "alice", PasswordHash: hash}, nil)
			ts.users.On("GetUserByUsername", mock.Anything, "bob").Return(nil, store.ErrUserNotFound)
			ts.users.On("MarkSeen", mock.Anything, 7).Return(nil)

			rec := ts.do(http.MethodPost, "/auth/simple/login", "", tt.body)

			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			if tt.status != http.StatusOK {
				assert.Equal(t, tt.wantName, decodeError(t, rec).Name)
				return
			}

			body := decodeJSON(t, rec)
			token := body["token"].(string)
			claims, err := ts.issuer.Parse(token)
			require.NoError(t, err)
			assert.Equal(t, 7, claims.UserID)
			assert.Equal(t, "alice", body["user"].(map[string]interface{})["username"])
		})
	}
}

func TestLoginTokenOpensAdminAPI(t *testing.T) {
	hash, err := auth.HashPassword("correct horse")
	require.NoError(t, err)

	ts := newTestServer(t)
	ts.users.On("GetUserByUsername", mock.Anything, "alice").Return(&model.User{ID: 7, Username: "alice", PasswordHash: hash}, nil)
	ts.users.On("MarkSeen", mock.Anything, 7).Return(nil)
	ts.users.On("GetUser", mock.Anything, 7).Return(&model.User{ID: 7, Username: "alice"}, nil)
	ts.access.On("GetPermissionsForUser", mock.Anything, 7).Return([]store.UserPermission{
		{Permission: permissions.UpdateProjectSegment, Project: "checkout"},
	}, nil)

	rec := ts.do(http.MethodPost, "/auth/simple/login", "", `{"username":"alice","password":"correct horse"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	token := decodeJSON(t, rec)["token"].(string)

	rec = ts.do(http.MethodGet, "/api/admin/user", token, "")

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeJSON(t, rec)
	assert.Equal(t, float64(7), body["user"].(map[string]interface{})["id"])
	perms := body["permissions"].([]interface{})
	require.Len(t, perms, 1)
	assert.Equal(t, "UPDATE_PROJECT_SEGMENT", perms[0].(map[string]interface{})["permission"])
	assert.Equal(t, "checkout", perms[0].(map[string]interface{})["project"])
}

func TestInvalidTokenIsRejected(t *testing.T) {
	ts := newTestServer(t)
	other, err := auth.NewIssuer([]byte("another-secret"), time.Hour)
	require.NoError(t, err)
	token, _, err := other.Issue(1, "mallory")
	require.NoError(t, err)

	rec := ts.do(http.MethodGet, "/api/admin/user", token, "")

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	ts.access.AssertNotCalled(t, "GetPermissionsForUser", mock.Anything, mock.Anything)
}
