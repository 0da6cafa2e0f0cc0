package endpoints

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/flagkeep/flagkeep/pkg/model"
	"github.com/flagkeep/flagkeep/pkg/server/store"
)

// MockGroupsStore implements store.GroupsStore for testing using testify/mock
type MockGroupsStore struct {
	mock.Mock
}

func (m *MockGroupsStore) ListGroups(ctx context.Context) ([]model.Group, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.Group), args.Error(1)
}

func (m *MockGroupsStore) GetGroup(ctx context.Context, id int) (*model.Group, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Group), args.Error(1)
}

func (m *MockGroupsStore) GroupNameExists(ctx context.Context, name string, excludeID int) (bool, error) {
	args := m.Called(ctx, name, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockGroupsStore) CreateGroup(ctx context.Context, group *model.Group) error {
	args := m.Called(ctx, group)
	return args.Error(0)
}

func (m *MockGroupsStore) UpdateGroup(ctx context.Context, group *model.Group) error {
	args := m.Called(ctx, group)
	return args.Error(0)
}

func (m *MockGroupsStore) DeleteGroup(ctx context.Context, id int) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockGroupsStore) ListGroupMembers(ctx context.Context, groupIDs ...int) ([]store.GroupMember, error) {
	args := m.Called(ctx, groupIDs)
	return args.Get(0).([]store.GroupMember), args.Error(1)
}

func (m *MockGroupsStore) SetGroupMembers(ctx context.Context, groupID int, userIDs []int, createdBy string) error {
	args := m.Called(ctx, groupID, userIDs, createdBy)
	return args.Error(0)
}

// MockSegmentsStore implements store.SegmentsStore for testing using testify/mock
type MockSegmentsStore struct {
	mock.Mock
}

func (m *MockSegmentsStore) ListSegments(ctx context.Context, project string) ([]model.Segment, error) {
	args := m.Called(ctx, project)
	return args.Get(0).([]model.Segment), args.Error(1)
}

func (m *MockSegmentsStore) GetSegment(ctx context.Context, id int) (*model.Segment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Segment), args.Error(1)
}

func (m *MockSegmentsStore) SegmentNameExists(ctx context.Context, name string, excludeID int) (bool, error) {
	args := m.Called(ctx, name, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockSegmentsStore) CreateSegment(ctx context.Context, segment *model.Segment) error {
	args := m.Called(ctx, segment)
	return args.Error(0)
}

func (m *MockSegmentsStore) UpdateSegment(ctx context.Context, segment *model.Segment) error {
	args := m.Called(ctx, segment)
	return args.Error(0)
}

func (m *MockSegmentsStore) DeleteSegment(ctx context.Context, id int) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockProjectsStore implements store.ProjectsStore for testing using testify/mock
type MockProjectsStore struct {
	mock.Mock
}

func (m *MockProjectsStore) ListProjects(ctx context.Context) ([]store.ProjectSummary, error) {
	args := m.Called(ctx)
	return args.Get(0).([]store.ProjectSummary), args.Error(1)
}

func (m *MockProjectsStore) GetProject(ctx context.Context, id string) (*model.Project, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Project), args.Error(1)
}

func (m *MockProjectsStore) ProjectExists(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockProjectsStore) CreateProject(ctx context.Context, project *model.Project, environments []string, ownerID int) error {
	args := m.Called(ctx, project, environments, ownerID)
	return args.Error(0)
}

func (m *MockProjectsStore) UpdateProject(ctx context.Context, project *model.Project) error {
	args := m.Called(ctx, project)
	return args.Error(0)
}

func (m *MockProjectsStore) DeleteProject(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProjectsStore) ListEnvironments(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockProjectsStore) ProjectEnvironments(ctx context.Context, id string) ([]string, error) {
	args := m.Called(ctx, id)
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockProjectsStore) CountMembers(ctx context.Context, id string) (int, error) {
	args := m.Called(ctx, id)
	return args.Int(0), args.Error(1)
}

func (m *MockProjectsStore) ListFeatures(ctx context.Context, project string, archived bool) ([]model.Feature, error) {
	args := m.Called(ctx, project, archived)
	return args.Get(0).([]model.Feature), args.Error(1)
}

func (m *MockProjectsStore) CountActiveFeatures(ctx context.Context, project string) (int, error) {
	args := m.Called(ctx, project)
	return args.Int(0), args.Error(1)
}

// MockRolesStore implements store.RolesStore for testing using testify/mock
type MockRolesStore struct {
	mock.Mock
}

func (m *MockRolesStore) ListRoles(ctx context.Context) ([]model.Role, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.Role), args.Error(1)
}

func (m *MockRolesStore) GetRole(ctx context.Context, id int) (*store.RoleWithPermissions, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.RoleWithPermissions), args.Error(1)
}

func (m *MockRolesStore) GetRoleByName(ctx context.Context, name string) (*model.Role, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Role), args.Error(1)
}

func (m *MockRolesStore) RoleExists(ctx context.Context, id int) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockRolesStore) RoleNameExists(ctx context.Context, name string, excludeID int) (bool, error) {
	args := m.Called(ctx, name, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRolesStore) CreateRole(ctx context.Context, role *store.RoleWithPermissions) error {
	args := m.Called(ctx, role)
	return args.Error(0)
}

func (m *MockRolesStore) UpdateRole(ctx context.Context, role *store.RoleWithPermissions) error {
	args := m.Called(ctx, role)
	return args.Error(0)
}

func (m *MockRolesStore) DeleteRole(ctx context.Context, id int) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRolesStore) CountRoleUsage(ctx context.Context, id int) (int, int, error) {
	args := m.Called(ctx, id)
	return args.Int(0), args.Int(1), args.Error(2)
}

// MockAccessStore implements store.AccessStore for testing using testify/mock
type MockAccessStore struct {
	mock.Mock
}

func (m *MockAccessStore) GetPermissionsForUser(ctx context.Context, userID int) ([]store.UserPermission, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]store.UserPermission), args.Error(1)
}

// MockUsersStore implements store.UsersStore for testing using testify/mock
type MockUsersStore struct {
	mock.Mock
}

func (m *MockUsersStore) GetUser(ctx context.Context, id int) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUsersStore) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUsersStore) FindUsers(ctx context.Context, ids []int) ([]model.User, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]model.User), args.Error(1)
}

func (m *MockUsersStore) CreateUser(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUsersStore) SetPassword(ctx context.Context, id int, passwordHash string) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}

func (m *MockUsersStore) MarkSeen(ctx context.Context, id int) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockEventsStore implements store.EventsStore for testing using testify/mock
type MockEventsStore struct {
	mock.Mock
}

func (m *MockEventsStore) SearchEvents(ctx context.Context, query store.EventsQuery) ([]model.Event, int, error) {
	args := m.Called(ctx, query)
	return args.Get(0).([]model.Event), args.Int(1), args.Error(2)
}

// MockChangeRequestsStore implements store.ChangeRequestsStore for testing using testify/mock
type MockChangeRequestsStore struct {
	mock.Mock
}

func (m *MockChangeRequestsStore) ListChangeRequests(ctx context.Context, project string, states []string) ([]model.ChangeRequest, error) {
	args := m.Called(ctx, project, states)
	return args.Get(0).([]model.ChangeRequest), args.Error(1)
}

// MockHealthStore implements store.HealthStore for testing using testify/mock
type MockHealthStore struct {
	mock.Mock
}

func (m *MockHealthStore) CheckConnectivity(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
