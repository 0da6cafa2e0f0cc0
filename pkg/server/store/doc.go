// Package store provides storage abstractions for the admin API.
//
// This package defines interfaces for database operations, allowing the
// services and endpoints to be decoupled from the specific database
// implementation. The gorm subpackage implements them against postgres.
//
// # Available Stores
//
//   - GroupsStore: Groups and their users
//   - SegmentsStore: Segments and their constraints
//   - ProjectsStore: Projects, environments and feature counts
//   - RolesStore: Roles, role permissions and role usage
//   - AccessStore: Permissions held by a user
//   - UsersStore: Console users
//   - EventsStore: Audit trail queries
//   - ChangeRequestsStore: Change requests per project
//   - HealthStore: Database connectivity
//
// # Usage
//
//	groups := gorm.NewGroupsStore(db)
//	group, err := groups.GetGroup(ctx, 42)
//	if err != nil {
//	    if errors.Is(err, store.ErrGroupNotFound) {
//	        // Handle not found
//	    }
//	}
package store
