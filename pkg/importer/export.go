package importer

import (
	"context"
	"sort"

	"github.com/flagkeep/flagkeep/pkg/permissions"
)

// Export reads the current state. Built-in roles and group members are
// left out since they cannot be imported.
func Export(ctx context.Context, svc Services) (*State, error) {
	state := &State{}

	projects, err := svc.Projects.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range projects.Projects {
		mode := p.Mode
		state.Projects = append(state.Projects, ProjectState{
			ID:                p.ID,
			Name:              p.Name,
			Description:       p.Description,
			Mode:              &mode,
			DefaultStickiness: p.DefaultStickiness,
		})
	}

	roles, err := svc.Roles.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	roleNames := map[int]string{}
	for _, r := range roles.Roles {
		roleNames[r.ID] = r.Name
		if r.Type != permissions.RoleTypeCustom && r.Type != permissions.RoleTypeRootCustom {
			continue
		}
		full, err := svc.Roles.Get(ctx, r.ID)
		if err != nil {
			return nil, err
		}
		role := RoleState{Name: full.Name, Description: full.Description, Type: full.Type}
		for _, p := range full.Permissions {
			role.Permissions = append(role.Permissions, PermissionState{Name: p.Name, Environment: p.Environment})
		}
		state.Roles = append(state.Roles, role)
	}

	groups, err := svc.Groups.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, g := range groups.Groups {
		group := GroupState{Name: g.Name, Description: g.Description, MappingsSSO: g.MappingsSSO}
		if g.RootRole != nil {
			group.RootRole = roleNames[*g.RootRole]
		}
		state.Groups = append(state.Groups, group)
	}

	segments, err := svc.Segments.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, s := range segments.Segments {
		segment := SegmentState{Name: s.Name, Description: s.Description, Constraints: s.Constraints}
		if s.Project != nil {
			segment.Project = *s.Project
		}
		state.Segments = append(state.Segments, segment)
	}

	sort.Slice(state.Projects, func(i, j int) bool { return state.Projects[i].ID < state.Projects[j].ID })
	sort.Slice(state.Roles, func(i, j int) bool { return state.Roles[i].Name < state.Roles[j].Name })
	sort.Slice(state.Groups, func(i, j int) bool { return state.Groups[i].Name < state.Groups[j].Name })
	sort.Slice(state.Segments, func(i, j int) bool { return state.Segments[i].Name < state.Segments[j].Name })
	return state, nil
}

// Export reads the current state in one transaction.
func (i *Importer) Export(ctx context.Context) (*State, error) {
	var state *State
	err := i.tx.InTransaction(ctx, func(svc Services) error {
		var err error
		state, err = Export(ctx, svc)
		return err
	})
	return state, err
}
