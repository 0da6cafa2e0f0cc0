package identity

import (
	"context"
	"net"
	"time"

	"github.com/flagkeep/flagkeep/pkg/permissions"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

const (
	// Key is the context key for Identity.
	Key ContextKey = "identity"
)

// Identity represents the authenticated user of a request together with
// the permissions granted to them.
type Identity struct {
	// Token claims
	UserID    int
	Username  string
	IssuedAt  time.Time
	ExpiresAt time.Time

	// Permissions granted by the root role, custom roles and groups.
	RootPermissions []permissions.Permission
	// Permissions granted by project roles, keyed by project id.
	ProjectPermissions map[string][]permissions.Permission

	// Request context
	RemoteIP  net.IP
	RequestID string
}

// New creates an Identity for a user.
func New(userID int, username string) *Identity {
	return &Identity{
		UserID:             userID,
		Username:           username,
		ProjectPermissions: map[string][]permissions.Permission{},
	}
}

// WithTokenTimes sets the issue and expiry times of the session token.
func (i *Identity) WithTokenTimes(issuedAt, expiresAt time.Time) *Identity {
	i.IssuedAt = issuedAt
	i.ExpiresAt = expiresAt
	return i
}

// WithRootPermissions sets the instance-wide permissions.
func (i *Identity) WithRootPermissions(perms []permissions.Permission) *Identity {
	i.RootPermissions = perms
	return i
}

// WithProjectPermissions sets the permissions held in a project.
func (i *Identity) WithProjectPermissions(project string, perms []permissions.Permission) *Identity {
	if i.ProjectPermissions == nil {
		i.ProjectPermissions = map[string][]permissions.Permission{}
	}
	i.ProjectPermissions[project] = perms
	return i
}

// WithRemoteIP sets the remote IP address.
func (i *Identity) WithRemoteIP(ip net.IP) *Identity {
	i.RemoteIP = ip
	return i
}

// WithRequestID sets the request id used to correlate logs.
func (i *Identity) WithRequestID(id string) *Identity {
	i.RequestID = id
	return i
}

// IsAdmin returns true if the identity holds the ADMIN permission.
func (i *Identity) IsAdmin() bool {
	return containsPermission(i.RootPermissions, permissions.Admin)
}

// HasPermission reports whether the identity may perform an action that
// requires perm. ADMIN passes every check and NONE passes for anyone
// authenticated. Project permissions count only when project is given.
func (i *Identity) HasPermission(perm permissions.Permission, project string) bool {
	if perm == permissions.None || i.IsAdmin() {
		return true
	}
	if containsPermission(i.RootPermissions, perm) {
		return true
	}
	if project == "" {
		return false
	}
	return containsPermission(i.ProjectPermissions[project], perm)
}

// HasAnyPermission reports whether any of perms passes HasPermission.
func (i *Identity) HasAnyPermission(project string, perms ...permissions.Permission) bool {
	for _, perm := range perms {
		if i.HasPermission(perm, project) {
			return true
		}
	}
	return false
}

// HasPermissionInAnyProject reports whether perm passes HasPermission for
// at least one project. Handlers use it before the project is known.
func (i *Identity) HasPermissionInAnyProject(perm permissions.Permission) bool {
	if i.HasPermission(perm, "") {
		return true
	}
	for project := range i.ProjectPermissions {
		if containsPermission(i.ProjectPermissions[project], perm) {
			return true
		}
	}
	return false
}

func containsPermission(perms []permissions.Permission, perm permissions.Permission) bool {
	for _, p := range perms {
		if p == perm {
			return true
		}
	}
	return false
}

// Get retrieves Identity from context.
func Get(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(Key).(*Identity)
	return id, ok
}

// Set stores Identity in context.
func Set(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, Key, id)
}

// Username returns the username stored in ctx, or "unknown" for
// unauthenticated contexts such as CLI imports.
func Username(ctx context.Context) string {
	if id, ok := Get(ctx); ok && id.Username != "" {
		return id.Username
	}
	return "unknown"
}
