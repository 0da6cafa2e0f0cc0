package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flagkeep/flagkeep/pkg/apierr"
	"github.com/flagkeep/flagkeep/pkg/auth"
	"github.com/flagkeep/flagkeep/pkg/identity"
	"github.com/flagkeep/flagkeep/pkg/permissions"
	"github.com/flagkeep/flagkeep/pkg/service"
)

type staticGrants struct {
	grants *service.Grants
	err    error
}

func (s staticGrants) Grants(context.Context, int) (*service.Grants, error) {
	return s.grants, s.err
}

func newTestIssuer(t *testing.T, ttl time.Duration) *auth.Issuer {
	t.Helper()
	issuer, err := auth.NewIssuer([]byte("test-secret"), ttl)
	require.NoError(t, err)
	return issuer
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) apierr.Response {
	t.Helper()
	var body apierr.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestAuthenticator_Middleware(t *testing.T) {
	issuer := newTestIssuer(t, time.Hour)
	token, _, err := issuer.Issue(7, "jane")
	require.NoError(t, err)

	grants := staticGrants{grants: &service.Grants{
		Root:    []permissions.Permission{permissions.CreateGroup},
		Project: map[string][]permissions.Permission{"web": {permissions.UpdateProject}},
	}}

	var got *identity.Identity
	handler := NewAuthenticator(issuer, grants, nil).Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = identity.Get(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name   string
		header string
		status int
	}{
		{name: "bearer token", header: "Bearer " + token, status: http.StatusOK},
		{name: "raw token", header: token, status: http.StatusOK},
		{name: "missing header", header: "", status: http.StatusUnauthorized},
		{name: "garbage token", header: "Bearer not-a-token", status: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got = nil
			req := httptest.NewRequest(http.MethodGet, "/api/admin/groups", nil)
			req.RemoteAddr = "192.168.1.1:4242"
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.status != http.StatusOK {
				assert.Nil(t, got)
				body := decodeError(t, w)
				assert.Equal(t, apierr.AuthenticationRequired, body.Name)
				assert.Equal(t, loginRequired, body.Message)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, 7, got.UserID)
			assert.Equal(t, "jane", got.Username)
			assert.Equal(t, "192.168.1.1", got.RemoteIP.String())
			assert.True(t, got.HasPermission(permissions.CreateGroup, ""))
			assert.True(t, got.HasPermission(permissions.UpdateProject, "web"))
			assert.False(t, got.HasPermission(permissions.UpdateProject, "other"))
		})
	}
}

func TestAuthenticator_ExpiredToken(t *testing.T) {
	issuer := newTestIssuer(t, -time.Minute)
	token, _, err := issuer.Issue(7, "jane")
	require.NoError(t, err)

	handler := NewAuthenticator(issuer, staticGrants{grants: &service.Grants{}}, nil).Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", token)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Your session has expired. Log in again.", decodeError(t, w).Message)
}

func TestAuthenticator_GrantsFailure(t *testing.T) {
	issuer := newTestIssuer(t, time.Hour)
	token, _, err := issuer.Issue(7, "jane")
	require.NoError(t, err)

	handler := NewAuthenticator(issuer, staticGrants{err: errors.New("db down")}, nil).Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", token)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, apierr.Internal, decodeError(t, w).Name)
}
