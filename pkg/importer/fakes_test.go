package importer

import (
	"context"
	"errors"

	"github.com/flagkeep/flagkeep/pkg/apierr"
	"github.com/flagkeep/flagkeep/pkg/model"
	"github.com/flagkeep/flagkeep/pkg/service"
)

type fakeProjects struct {
	projects []service.Project
	created  []service.ProjectInput
	updated  []service.ProjectInput
}

func (f *fakeProjects) GetAll(context.Context) (*service.Projects, error) {
	return &service.Projects{Version: 1, Projects: f.projects}, nil
}

func (f *fakeProjects) Create(_ context.Context, in service.ProjectInput) (*service.CreatedProject, error) {
	f.created = append(f.created, in)
	return &service.CreatedProject{ProjectID: in.ID}, nil
}

func (f *fakeProjects) Update(_ context.Context, in service.ProjectInput) error {
	f.updated = append(f.updated, in)
	return nil
}

type fakeRoles struct {
	roles   []service.RoleWithPermissions
	nextID  int
	created []service.RoleInput
	updated map[int]service.RoleInput
}

func (f *fakeRoles) GetAll(context.Context) (*service.Roles, error) {
	out := &service.Roles{Version: 1}
	for _, r := range f.roles {
		out.Roles = append(out.Roles, r.Role)
	}
	return out, nil
}

func (f *fakeRoles) Get(_ context.Context, id int) (*service.RoleWithPermissions, error) {
	for _, r := range f.roles {
		if r.ID == id {
			r := r
			return &r, nil
		}
	}
	return nil, apierr.NewNotFound("Could not find role with id %d", id)
}

func (f *fakeRoles) Create(_ context.Context, in service.RoleInput) (*service.RoleWithPermissions, error) {
	f.nextID++
	f.created = append(f.created, in)
	return &service.RoleWithPermissions{Role: service.Role{ID: f.nextID, Name: in.Name, Type: in.Type}}, nil
}

func (f *fakeRoles) Update(_ context.Context, id int, in service.RoleInput) (*service.RoleWithPermissions, error) {
	if f.updated == nil {
		f.updated = map[int]service.RoleInput{}
	}
	f.updated[id] = in
	return &service.RoleWithPermissions{Role: service.Role{ID: id, Name: in.Name, Type: in.Type}}, nil
}

type fakeGroups struct {
	groups  []service.Group
	created []service.GroupInput
	updated map[int]service.GroupInput
}

func (f *fakeGroups) GetAll(context.Context) (*service.Groups, error) {
	return &service.Groups{Groups: f.groups}, nil
}

func (f *fakeGroups) Create(_ context.Context, in service.GroupInput) (*service.Group, error) {
	f.created = append(f.created, in)
	return &service.Group{Name: in.Name}, nil
}

func (f *fakeGroups) Update(_ context.Context, id int, in service.GroupInput) (*service.Group, error) {
	if f.updated == nil {
		f.updated = map[int]service.GroupInput{}
	}
	f.updated[id] = in
	return &service.Group{ID: id, Name: in.Name}, nil
}

type fakeSegments struct {
	segments []service.Segment
	created  []service.SegmentInput
	updated  map[int]service.SegmentInput
	err      error
}

func (f *fakeSegments) GetAll(context.Context) (*service.Segments, error) {
	return &service.Segments{Segments: f.segments}, nil
}

func (f *fakeSegments) Create(_ context.Context, in service.SegmentInput) (*service.Segment, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.created = append(f.created, in)
	return &service.Segment{Name: in.Name}, nil
}

func (f *fakeSegments) Update(_ context.Context, id int, in service.SegmentInput) error {
	if f.updated == nil {
		f.updated = map[int]service.SegmentInput{}
	}
	f.updated[id] = in
	return nil
}

type fakeTransactor struct {
	services  Services
	committed bool
	calls     int
}

func (f *fakeTransactor) InTransaction(_ context.Context, fn func(Services) error) error {
	f.calls++
	if err := fn(f.services); err != nil {
		return err
	}
	f.committed = true
	return nil
}

type fixture struct {
	projects *fakeProjects
	roles    *fakeRoles
	groups   *fakeGroups
	segments *fakeSegments
	tx       *fakeTransactor
}

func newFixture() *fixture {
	f := &fixture{
		projects: &fakeProjects{projects: []service.Project{
			{ID: model.DefaultProjectID, Name: "Default", Mode: model.ModeOpen, DefaultStickiness: "default"},
		}},
		roles: &fakeRoles{nextID: 10, roles: []service.RoleWithPermissions{
			{Role: service.Role{ID: 1, Name: "Admin", Type: "root"}},
			{Role: service.Role{ID: 2, Name: "Editor", Type: "root"}},
			{Role: service.Role{ID: 3, Name: "Viewer", Type: "root"}},
			{Role: service.Role{ID: 4, Name: "Owner", Type: "project"}},
		}},
		groups:   &fakeGroups{},
		segments: &fakeSegments{},
	}
	f.tx = &fakeTransactor{services: Services{
		Projects: f.projects,
		Roles:    f.roles,
		Groups:   f.groups,
		Segments: f.segments,
	}}
	return f
}

var errBoom = errors.New("boom")
