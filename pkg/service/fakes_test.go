package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/flagkeep/flagkeep/pkg/audit"
	"github.com/flagkeep/flagkeep/pkg/identity"
	"github.com/flagkeep/flagkeep/pkg/model"
	"github.com/flagkeep/flagkeep/pkg/permissions"
	"github.com/flagkeep/flagkeep/pkg/server/store"
)

var testTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type recordingAuditor struct {
	mu     sync.Mutex
	events []audit.Event
}

func (a *recordingAuditor) Log(_ context.Context, e audit.Event) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, e)
}

func (a *recordingAuditor) types() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []string
	for _, e := range a.events {
		out = append(out, e.MessageID())
	}
	return out
}

func adminCtx() context.Context {
	id := identity.New(1, "admin").WithRootPermissions([]permissions.Permission{permissions.Admin})
	return identity.Set(context.Background(), id)
}

func userCtx(root []permissions.Permission, project string, projectPerms ...permissions.Permission) context.Context {
	id := identity.New(2, "jane").WithRootPermissions(root)
	if project != "" {
		id.WithProjectPermissions(project, projectPerms)
	}
	return identity.Set(context.Background(), id)
}

// fakeUsers is an in-memory UsersStore.
type fakeUsers struct {
	users map[int]*model.User
	seen  []int
}

func newFakeUsers(users ...model.User) *fakeUsers {
	f := &fakeUsers{users: map[int]*model.User{}}
	for i := range users {
		u := users[i]
		f.users[u.ID] = &u
	}
	return f
}

func (f *fakeUsers) GetUser(_ context.Context, id int) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUsers) GetUserByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, store.ErrUserNotFound
}

func (f *fakeUsers) FindUsers(_ context.Context, ids []int) ([]model.User, error) {
	var out []model.User
	for _, id := range ids {
		if u, ok := f.users[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (f *fakeUsers) CreateUser(_ context.Context, user *model.User) error {
	user.ID = len(f.users) + 100
	user.CreatedAt = testTime
	f.users[user.ID] = user
	return nil
}

func (f *fakeUsers) SetPassword(_ context.Context, id int, hash string) error {
	u, ok := f.users[id]
	if !ok {
		return store.ErrUserNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (f *fakeUsers) MarkSeen(_ context.Context, id int) error {
	f.seen = append(f.seen, id)
	return nil
}

// fakeGroups is an in-memory GroupsStore.
type fakeGroups struct {
	nextID  int
	groups  map[int]*model.Group
	members map[int][]int
	users   *fakeUsers
}

func newFakeGroups(users *fakeUsers) *fakeGroups {
	return &fakeGroups{nextID: 1, groups: map[int]*model.Group{}, members: map[int][]int{}, users: users}
}

func (f *fakeGroups) ListGroups(context.Context) ([]model.Group, error) {
	var out []model.Group
	for _, g := range f.groups {
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeGroups) GetGroup(_ context.Context, id int) (*model.Group, error) {
	g, ok := f.groups[id]
	if !ok {
		return nil, store.ErrGroupNotFound
	}
	out := *g
	return &out, nil
}

func (f *fakeGroups) GroupNameExists(_ context.Context, name string, excludeID int) (bool, error) {
	for _, g := range f.groups {
		if g.Name == name && g.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeGroups) CreateGroup(_ context.Context, g *model.Group) error {
	g.ID = f.nextID
	g.CreatedAt = testTime
	f.nextID++
	stored := *g
	f.groups[g.ID] = &stored
	return nil
}

func (f *fakeGroups) UpdateGroup(_ context.Context, g *model.Group) error {
	existing, ok := f.groups[g.ID]
	if !ok {
		return store.ErrGroupNotFound
	}
	existing.Name = g.Name
	existing.Description = g.Description
	existing.MappingsSSO = g.MappingsSSO
	existing.RootRoleID = g.RootRoleID
	return nil
}

func (f *fakeGroups) DeleteGroup(_ context.Context, id int) error {
	if _, ok := f.groups[id]; !ok {
		return store.ErrGroupNotFound
	}
	delete(f.groups, id)
	delete(f.members, id)
	return nil
}

func (f *fakeGroups) ListGroupMembers(_ context.Context, groupIDs ...int) ([]store.GroupMember, error) {
	if len(groupIDs) == 0 {
		for id := range f.members {
			groupIDs = append(groupIDs, id)
		}
		sort.Ints(groupIDs)
	}
	var out []store.GroupMember
	for _, gid := range groupIDs {
		for _, uid := range f.members[gid] {
			out = append(out, store.GroupMember{
				GroupID:   gid,
				User:      *f.users.users[uid],
				JoinedAt:  testTime,
				CreatedBy: "admin",
			})
		}
	}
	return out, nil
}

func (f *fakeGroups) SetGroupMembers(_ context.Context, groupID int, userIDs []int, _ string) error {
	f.members[groupID] = append([]int(nil), userIDs...)
	return nil
}

// fakeRoles is an in-memory RolesStore.
type fakeRoles struct {
	nextID int
	roles  map[int]*store.RoleWithPermissions
	usage  map[int][2]int
}

func newFakeRoles() *fakeRoles {
	f := &fakeRoles{nextID: 10, roles: map[int]*store.RoleWithPermissions{}, usage: map[int][2]int{}}
	seed := []model.Role{
		{ID: 1, Name: permissions.RoleAdmin, Type: permissions.RoleTypeRoot},
		{ID: 2, Name: permissions.RoleEditor, Type: permissions.RoleTypeRoot},
		{ID: 3, Name: permissions.RoleViewer, Type: permissions.RoleTypeRoot},
		{ID: 4, Name: permissions.RoleOwner, Type: permissions.RoleTypeProject},
		{ID: 5, Name: permissions.RoleMember, Type: permissions.RoleTypeProject},
	}
	for _, r := range seed {
		f.roles[r.ID] = &store.RoleWithPermissions{Role: r}
	}
	return f
}

func (f *fakeRoles) ListRoles(context.Context) ([]model.Role, error) {
	var out []model.Role
	for _, r := range f.roles {
		out = append(out, r.Role)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeRoles) GetRole(_ context.Context, id int) (*store.RoleWithPermissions, error) {
	r, ok := f.roles[id]
	if !ok {
		return nil, store.ErrRoleNotFound
	}
	out := *r
	return &out, nil
}

func (f *fakeRoles) GetRoleByName(_ context.Context, name string) (*model.Role, error) {
	for _, r := range f.roles {
		if r.Name == name {
			out := r.Role
			return &out, nil
		}
	}
	return nil, store.ErrRoleNotFound
}

func (f *fakeRoles) RoleExists(_ context.Context, id int) (bool, error) {
	_, ok := f.roles[id]
	return ok, nil
}

func (f *fakeRoles) RoleNameExists(_ context.Context, name string, excludeID int) (bool, error) {
	for _, r := range f.roles {
		if r.Name == name && r.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRoles) CreateRole(_ context.Context, role *store.RoleWithPermissions) error {
	role.ID = f.nextID
	role.CreatedAt = testTime
	f.nextID++
	stored := *role
	f.roles[role.ID] = &stored
	return nil
}

func (f *fakeRoles) UpdateRole(_ context.Context, role *store.RoleWithPermissions) error {
	if _, ok := f.roles[role.ID]; !ok {
		return store.ErrRoleNotFound
	}
	stored := *role
	f.roles[role.ID] = &stored
	return nil
}

func (f *fakeRoles) DeleteRole(_ context.Context, id int) error {
	if _, ok := f.roles[id]; !ok {
		return store.ErrRoleNotFound
	}
	delete(f.roles, id)
	return nil
}

func (f *fakeRoles) CountRoleUsage(_ context.Context, id int) (int, int, error) {
	u := f.usage[id]
	return u[0], u[1], nil
}

// fakeProjects is an in-memory ProjectsStore.
type fakeProjects struct {
	projects     map[string]*model.Project
	environments []string
	projectEnvs  map[string][]string
	features     map[string][]model.Feature
	members      map[string]int
	owners       map[string]int
}

func newFakeProjects() *fakeProjects {
	return &fakeProjects{
		projects: map[string]*model.Project{
			model.DefaultProjectID: {ID: model.DefaultProjectID, Name: "Default", Mode: model.ModeOpen, DefaultStickiness: "default", Health: 100, CreatedAt: testTime},
		},
		environments: []string{"development", "production"},
		projectEnvs:  map[string][]string{model.DefaultProjectID: {"development", "production"}},
		features:     map[string][]model.Feature{},
		members:      map[string]int{},
		owners:       map[string]int{},
	}
}

func (f *fakeProjects) ListProjects(context.Context) ([]store.ProjectSummary, error) {
	var out []store.ProjectSummary
	for _, p := range f.projects {
		active := 0
		for _, feat := range f.features[p.ID] {
			if feat.ArchivedAt == nil {
				active++
			}
		}
		out = append(out, store.ProjectSummary{Project: *p, FeatureCount: active, MemberCount: f.members[p.ID]})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeProjects) GetProject(_ context.Context, id string) (*model.Project, error) {
	p, ok := f.projects[id]
	if !ok {
		return nil, store.ErrProjectNotFound
	}
	out := *p
	return &out, nil
}

func (f *fakeProjects) ProjectExists(_ context.Context, id string) (bool, error) {
	_, ok := f.projects[id]
	return ok, nil
}

func (f *fakeProjects) CreateProject(_ context.Context, p *model.Project, envs []string, ownerID int) error {
	if ownerID > 0 {
		f.owners[p.ID] = ownerID
	}
	p.CreatedAt = testTime
	stored := *p
	f.projects[p.ID] = &stored
	f.projectEnvs[p.ID] = envs
	return nil
}

func (f *fakeProjects) UpdateProject(_ context.Context, p *model.Project) error {
	existing, ok := f.projects[p.ID]
	if !ok {
		return store.ErrProjectNotFound
	}
	existing.Name = p.Name
	existing.Description = p.Description
	existing.Mode = p.Mode
	existing.DefaultStickiness = p.DefaultStickiness
	return nil
}

func (f *fakeProjects) DeleteProject(_ context.Context, id string) error {
	if _, ok := f.projects[id]; !ok {
		return store.ErrProjectNotFound
	}
	delete(f.projects, id)
	return nil
}

func (f *fakeProjects) ListEnvironments(context.Context) ([]string, error) {
	return f.environments, nil
}

func (f *fakeProjects) ProjectEnvironments(_ context.Context, id string) ([]string, error) {
	return f.projectEnvs[id], nil
}

func (f *fakeProjects) CountMembers(_ context.Context, id string) (int, error) {
	return f.members[id], nil
}

func (f *fakeProjects) ListFeatures(_ context.Context, project string, archived bool) ([]model.Feature, error) {
	var out []model.Feature
	for _, feat := range f.features[project] {
		if feat.ArchivedAt != nil && !archived {
			continue
		}
		out = append(out, feat)
	}
	return out, nil
}

func (f *fakeProjects) CountActiveFeatures(ctx context.Context, project string) (int, error) {
	features, _ := f.ListFeatures(ctx, project, false)
	return len(features), nil
}

// fakeAccess is an in-memory AccessStore.
type fakeAccess struct {
	perms map[int][]store.UserPermission
}

func (f *fakeAccess) GetPermissionsForUser(_ context.Context, userID int) ([]store.UserPermission, error) {
	return f.perms[userID], nil
}

// fakeSegments is an in-memory SegmentsStore.
type fakeSegments struct {
	nextID   int
	segments map[int]*model.Segment
}

func newFakeSegments() *fakeSegments {
	return &fakeSegments{nextID: 1, segments: map[int]*model.Segment{}}
}

func (f *fakeSegments) ListSegments(_ context.Context, project string) ([]model.Segment, error) {
	var out []model.Segment
	for _, s := range f.segments {
		if project != "" && (s.Project == nil || *s.Project != project) {
			continue
		}
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeSegments) GetSegment(_ context.Context, id int) (*model.Segment, error) {
	s, ok := f.segments[id]
	if !ok {
		return nil, store.ErrSegmentNotFound
	}
	out := *s
	return &out, nil
}

func (f *fakeSegments) SegmentNameExists(_ context.Context, name string, excludeID int) (bool, error) {
	for _, s := range f.segments {
		if s.Name == name && s.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeSegments) CreateSegment(_ context.Context, s *model.Segment) error {
	s.ID = f.nextID
	s.CreatedAt = testTime
	f.nextID++
	stored := *s
	f.segments[s.ID] = &stored
	return nil
}

func (f *fakeSegments) UpdateSegment(_ context.Context, s *model.Segment) error {
	existing, ok := f.segments[s.ID]
	if !ok {
		return store.ErrSegmentNotFound
	}
	existing.Name = s.Name
	existing.Description = s.Description
	existing.Project = s.Project
	existing.Constraints = s.Constraints
	return nil
}

func (f *fakeSegments) DeleteSegment(_ context.Context, id int) error {
	if _, ok := f.segments[id]; !ok {
		return store.ErrSegmentNotFound
	}
	delete(f.segments, id)
	return nil
}
