// Package model defines the database models for flagkeep.
//
// This package contains GORM models that map to the flagkeep database schema
// created by the migrations in the db directory.
//
// # Core Models
//
//   - User: Console users with a root role and a bcrypt password hash
//   - Role: Root, custom and project roles
//   - RolePermission: Permissions granted by a role
//   - Group: Collections of users sharing a root role
//   - GroupUser: Group membership rows
//   - Segment: Reusable constraint sets, optionally scoped to a project
//   - Project: Feature containers with a collaboration mode
//   - Feature: Feature toggles, counted per project
//   - ChangeRequest: Pending or closed change requests per project
//   - Event: Audit trail of administrative changes
//
// # Database Schema
//
//   - users, roles, role_permissions
//   - groups, group_user
//   - segments
//   - projects, project_environments
//   - features
//   - change_requests
//   - events
package model

//go:generate go tool enumer -type Mode -trimprefix Mode -transform lower -json -yaml -sql -output mode_enumer.go
