package identity

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flagkeep/flagkeep/pkg/permissions"
)

func TestIdentity_WithMethods(t *testing.T) {
	issued := time.Now()
	ip := net.ParseIP("192.168.1.100")

	id := New(7, "alice").
		WithTokenTimes(issued, issued.Add(time.Hour)).
		WithRemoteIP(ip).
		WithRequestID("req-1")

	assert.Equal(t, 7, id.UserID)
	assert.Equal(t, "alice", id.Username)
	assert.Equal(t, issued.Add(time.Hour), id.ExpiresAt)
	assert.Equal(t, ip, id.RemoteIP)
	assert.Equal(t, "req-1", id.RequestID)
}

func TestIdentity_HasPermission(t *testing.T) {
	admin := New(1, "admin").WithRootPermissions([]permissions.Permission{permissions.Admin})
	editor := New(2, "editor").WithRootPermissions([]permissions.Permission{permissions.CreateProject, permissions.CreateSegment})
	owner := New(3, "owner").WithProjectPermissions("web", []permissions.Permission{permissions.UpdateProject, permissions.DeleteProject})
	viewer := New(4, "viewer")

	tests := []struct {
		name     string
		id       *Identity
		perm     permissions.Permission
		project  string
		expected bool
	}{
		{"admin passes everything", admin, permissions.DeleteRole, "", true},
		{"none passes for anyone", viewer, permissions.None, "", true},
		{"root permission", editor, permissions.CreateSegment, "", true},
		{"missing root permission", editor, permissions.CreateGroup, "", false},
		{"project permission in project", owner, permissions.DeleteProject, "web", true},
		{"project permission elsewhere", owner, permissions.DeleteProject, "mobile", false},
		{"project permission without project", owner, permissions.DeleteProject, "", false},
		{"viewer", viewer, permissions.ReadRole, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.id.HasPermission(tt.perm, tt.project))
		})
	}
}

func TestIdentity_HasAnyPermission(t *testing.T) {
	member := New(5, "member").WithProjectPermissions("web", []permissions.Permission{permissions.UpdateProjectSegment})

	assert.True(t, member.HasAnyPermission("web", permissions.CreateSegment, permissions.UpdateProjectSegment))
	assert.False(t, member.HasAnyPermission("", permissions.CreateSegment, permissions.UpdateProjectSegment))
}

func TestIdentity_HasPermissionInAnyProject(t *testing.T) {
	member := New(5, "member").WithProjectPermissions("web", []permissions.Permission{permissions.UpdateProjectSegment})

	assert.True(t, member.HasPermissionInAnyProject(permissions.UpdateProjectSegment))
	assert.False(t, member.HasPermissionInAnyProject(permissions.DeleteProject))
	assert.True(t, New(1, "admin").WithRootPermissions([]permissions.Permission{permissions.Admin}).
		HasPermissionInAnyProject(permissions.DeleteProject))
}

func TestContext(t *testing.T) {
	ctx := context.Background()
	_, ok := Get(ctx)
	assert.False(t, ok)
	assert.Equal(t, "unknown", Username(ctx))

	ctx = Set(ctx, New(1, "alice"))
	id, ok := Get(ctx)
	require.True(t, ok)
	assert.Equal(t, "alice", id.Username)
	assert.Equal(t, "alice", Username(ctx))
}
