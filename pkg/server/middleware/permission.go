package middleware

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/flagkeep/flagkeep/pkg/apierr"
	"github.com/flagkeep/flagkeep/pkg/identity"
	"github.com/flagkeep/flagkeep/pkg/permissions"
)

// ProjectVar is the route variable project-scoped permissions are checked
// against.
const ProjectVar = "projectId"

// RequirePermission returns middleware that lets a request through when the
// caller holds any of perms. Project-scoped permissions are checked against
// the projectId route variable; on routes without one, holding the
// permission in any project is enough and the handler checks the project.
func RequirePermission(perms ...permissions.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := identity.Get(r.Context())
			if !ok {
				writeError(w, apierr.New(apierr.AuthenticationRequired, loginRequired))
				return
			}
			if !allowed(id, mux.Vars(r)[ProjectVar], perms) {
				writeError(w, apierr.NewNoAccess("You don't have the required permissions to perform this operation. You need permission=%s", joinPermissions(perms)))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func allowed(id *identity.Identity, project string, perms []permissions.Permission) bool {
	if len(perms) == 0 {
		return true
	}
	for _, perm := range perms {
		if id.HasPermission(perm, project) {
			return true
		}
		if project == "" && permissions.IsProjectScoped(perm) && id.HasPermissionInAnyProject(perm) {
			return true
		}
	}
	return false
}

func joinPermissions(perms []permissions.Permission) string {
	names := make([]string, 0, len(perms))
	for _, p := range perms {
		names = append(names, string(p))
	}
	return strings.Join(names, " or ")
}
