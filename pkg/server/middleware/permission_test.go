package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"

	"github.com/flagkeep/flagkeep/pkg/apierr"
	"github.com/flagkeep/flagkeep/pkg/identity"
	"github.com/flagkeep/flagkeep/pkg/permissions"
)

func TestRequirePermission(t *testing.T) {
	admin := identity.New(1, "admin").WithRootPermissions([]permissions.Permission{permissions.Admin})
	editor := identity.New(2, "editor").WithRootPermissions([]permissions.Permission{permissions.CreateSegment})
	owner := identity.New(3, "owner").WithProjectPermissions("web", []permissions.Permission{permissions.UpdateProjectSegment, permissions.DeleteProject})
	viewer := identity.New(4, "viewer")

	tests := []struct {
		name     string
		identity *identity.Identity
		perms    []permissions.Permission
		vars     map[string]string
		status   int
	}{
		{name: "no identity", perms: []permissions.Permission{permissions.None}, status: http.StatusUnauthorized},
		{name: "none passes for anyone", identity: viewer, perms: []permissions.Permission{permissions.None}, status: http.StatusOK},
		{name: "admin passes everything", identity: admin, perms: []permissions.Permission{permissions.DeleteRole}, status: http.StatusOK},
		{name: "root permission", identity: editor, perms: []permissions.Permission{permissions.CreateSegment}, status: http.StatusOK},
		{name: "missing root permission", identity: viewer, perms: []permissions.Permission{permissions.CreateGroup}, status: http.StatusForbidden},
		{
			name:     "project permission on its project",
			identity: owner,
			perms:    []permissions.Permission{permissions.DeleteProject},
			vars:     map[string]string{ProjectVar: "web"},
			status:   http.StatusOK,
		},
		{
			name:     "project permission on another project",
			identity: owner,
			perms:    []permissions.Permission{permissions.DeleteProject},
			vars:     map[string]string{ProjectVar: "default"},
			status:   http.StatusForbidden,
		},
		{
			name:     "project permission without project variable",
			identity: owner,
			perms:    []permissions.Permission{permissions.CreateSegment, permissions.UpdateProjectSegment},
			status:   http.StatusOK,
		},
		{
			name:     "root-only permission is not granted by projects",
			identity: owner,
			perms:    []permissions.Permission{permissions.CreateSegment},
			status:   http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := RequirePermission(tt.perms...)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodPost, "/", nil)
			if tt.identity != nil {
				req = req.WithContext(identity.Set(context.Background(), tt.identity))
			}
			if tt.vars != nil {
				req = mux.SetURLVars(req, tt.vars)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusForbidden {
				assert.Equal(t, apierr.NoAccess, decodeError(t, w).Name)
			}
		})
	}
}
