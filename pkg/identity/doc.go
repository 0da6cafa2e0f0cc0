// Package identity carries the authenticated user of a request.
//
// The auth middleware parses the session token, loads the user's
// permissions and stores an Identity in the request context. Handlers and
// services read it back to check permissions and to attribute audit events.
//
// # Basic Usage
//
//	id := identity.New(claims.UserID, claims.Subject).
//	    WithTokenTimes(claims.IssuedAt.Time, claims.ExpiresAt.Time).
//	    WithRootPermissions(rootPerms).
//	    WithRemoteIP(clientIP)
//
//	ctx = identity.Set(ctx, id)
//
//	id, ok := identity.Get(ctx)
//	if ok && id.HasPermission(permissions.UpdateProject, projectID) {
//	    ...
//	}
package identity
