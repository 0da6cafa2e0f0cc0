package gorm

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flagkeep/flagkeep/pkg/model"
	"github.com/flagkeep/flagkeep/pkg/server/store"
)

func TestRolesStore_GetRole(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewRolesStore(db)
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "roles" WHERE id = $1`)).
		WithArgs(6).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description", "type", "created_at"}).
			AddRow(6, "Release manager", "", "root-custom", created))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "role_permissions" WHERE role_id = $1 ORDER BY permission`)).
		WithArgs(6).
		WillReturnRows(sqlmock.NewRows([]string{"role_id", "permission", "environment"}).
			AddRow(6, "CREATE_PROJECT", nil).
			AddRow(6, "UPDATE_PROJECT", "production"))

	role, err := s.GetRole(context.Background(), 6)
	require.NoError(t, err)
	assert.Equal(t, "Release manager", role.Name)
	require.Len(t, role.Permissions, 2)
	assert.Nil(t, role.Permissions[0].Environment)
	require.NotNil(t, role.Permissions[1].Environment)
	assert.Equal(t, "production", *role.Permissions[1].Environment)
}

func TestRolesStore_GetRoleNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewRolesStore(db)

	mock.ExpectQuery(`SELECT \* FROM "roles"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := s.GetRole(context.Background(), 42)
	assert.ErrorIs(t, err, store.ErrRoleNotFound)
}

func TestRolesStore_CreateRole(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewRolesStore(db)
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO roles`).
		WithArgs("Release manager", "Ships things", "custom").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(9, created))
	mock.ExpectExec(`INSERT INTO role_permissions`).
		WithArgs(9, "UPDATE_PROJECT", nil).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	role := &store.RoleWithPermissions{
		Role:        model.Role{Name: "Release manager", Description: "Ships things", Type: "custom"},
		Permissions: []model.RolePermission{{Permission: "UPDATE_PROJECT"}},
	}
	require.NoError(t, s.CreateRole(context.Background(), role))
	assert.Equal(t, 9, role.ID)
	assert.Equal(t, 9, role.Permissions[0].RoleID)
}

func TestRolesStore_UpdateRoleNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewRolesStore(db)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE roles`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := s.UpdateRole(context.Background(), &store.RoleWithPermissions{Role: model.Role{ID: 9, Name: "x"}})
	assert.ErrorIs(t, err, store.ErrRoleNotFound)
}

func TestRolesStore_CountRoleUsage(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewRolesStore(db)

	mock.ExpectQuery(`(?s)AS user_count,.*AS group_count`).
		WithArgs(4, 4, 4, 4).
		WillReturnRows(sqlmock.NewRows([]string{"user_count", "group_count"}).AddRow(2, 1))

	users, groups, err := s.CountRoleUsage(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, 2, users)
	assert.Equal(t, 1, groups)
}
