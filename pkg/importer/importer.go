package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"reflect"

	"go.uber.org/zap"

	"github.com/flagkeep/flagkeep/pkg/model"
	"github.com/flagkeep/flagkeep/pkg/service"
)

var errDryRun = errors.New("dry run rollback")

type ProjectService interface {
	GetAll(ctx context.Context) (*service.Projects, error)
	Create(ctx context.Context, input service.ProjectInput) (*service.CreatedProject, error)
	Update(ctx context.Context, input service.ProjectInput) error
}

type RoleService interface {
	GetAll(ctx context.Context) (*service.Roles, error)
	Get(ctx context.Context, id int) (*service.RoleWithPermissions, error)
	Create(ctx context.Context, input service.RoleInput) (*service.RoleWithPermissions, error)
	Update(ctx context.Context, id int, input service.RoleInput) (*service.RoleWithPermissions, error)
}

type GroupService interface {
	GetAll(ctx context.Context) (*service.Groups, error)
	Create(ctx context.Context, input service.GroupInput) (*service.Group, error)
	Update(ctx context.Context, id int, input service.GroupInput) (*service.Group, error)
}

type SegmentService interface {
	GetAll(ctx context.Context) (*service.Segments, error)
	Create(ctx context.Context, input service.SegmentInput) (*service.Segment, error)
	Update(ctx context.Context, id int, input service.SegmentInput) error
}

// Services are what state is read and applied through.
type Services struct {
	Projects ProjectService
	Roles    RoleService
	Groups   GroupService
	Segments SegmentService
}

// Transactor runs fn with services bound to one transaction. The
// transaction commits only when fn returns nil.
type Transactor interface {
	InTransaction(ctx context.Context, fn func(Services) error) error
}

// Result lists what an import changed, as "kind:key" entries.
type Result struct {
	Created   []string `json:"created"`
	Updated   []string `json:"updated"`
	Unchanged []string `json:"unchanged"`
	DryRun    bool     `json:"dryRun"`
}

func (r *Result) record(action *[]string, kind, key string) {
	*action = append(*action, kind+":"+key)
}

// Importer applies state documents.
type Importer struct {
	tx     Transactor
	dryRun bool
	logger *zap.Logger
}

// New creates an Importer.
func New(tx Transactor, logger *zap.Logger) *Importer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Importer{tx: tx, logger: logger.Named("importer")}
}

// WithDryRun sets whether to validate only without applying changes
func (i *Importer) WithDryRun(dryRun bool) *Importer {
	i.dryRun = dryRun
	return i
}

// LoadFromReader parses and applies a state document.
func (i *Importer) LoadFromReader(ctx context.Context, r io.Reader) (*Result, error) {
	state, err := Parse(r)
	if err != nil {
		return nil, err
	}
	return i.Load(ctx, state)
}

// Load applies state. Projects and roles go first since groups and
// segments refer to them.
func (i *Importer) Load(ctx context.Context, state *State) (*Result, error) {
	var result *Result

	err := i.tx.InTransaction(ctx, func(svc Services) error {
		result = &Result{DryRun: i.dryRun}
		a := &applier{svc: svc, result: result}

		steps := []func(context.Context, *State) error{
			a.projects,
			a.roles,
			a.groups,
			a.segments,
		}
		for _, step := range steps {
			if err := step(ctx, state); err != nil {
				return err
			}
		}

		if i.dryRun {
			return errDryRun
		}
		return nil
	})
	if err != nil && !(i.dryRun && errors.Is(err, errDryRun)) {
		return nil, err
	}

	i.logger.Info("state applied",
		zap.Bool("dryRun", i.dryRun),
		zap.Int("created", len(result.Created)),
		zap.Int("updated", len(result.Updated)),
		zap.Int("unchanged", len(result.Unchanged)),
	)
	return result, nil
}

type applier struct {
	svc     Services
	result  *Result
	roleIDs map[string]int
}

func (a *applier) projects(ctx context.Context, state *State) error {
	if len(state.Projects) == 0 {
		return nil
	}
	existing, err := a.svc.Projects.GetAll(ctx)
	if err != nil {
		return err
	}
	byID := map[string]service.Project{}
	for _, p := range existing.Projects {
		byID[p.ID] = p
	}

	for _, p := range state.Projects {
		input := service.ProjectInput{
			ID:                p.ID,
			Name:              p.Name,
			Description:       p.Description,
			Mode:              p.Mode,
			DefaultStickiness: p.DefaultStickiness,
		}

		current, ok := byID[p.ID]
		switch {
		case !ok:
			if _, err := a.svc.Projects.Create(ctx, input); err != nil {
				return fmt.Errorf("project %s: %w", p.ID, err)
			}
			a.result.record(&a.result.Created, "project", p.ID)
		case projectMatches(current, p):
			a.result.record(&a.result.Unchanged, "project", p.ID)
		default:
			if err := a.svc.Projects.Update(ctx, input); err != nil {
				return fmt.Errorf("project %s: %w", p.ID, err)
			}
			a.result.record(&a.result.Updated, "project", p.ID)
		}
	}
	return nil
}

func projectMatches(current service.Project, p ProjectState) bool {
	if p.Mode != nil && *p.Mode != current.Mode {
		return false
	}
	return current.Name == p.Name &&
		current.Description == p.Description &&
		(p.DefaultStickiness == "" || current.DefaultStickiness == p.DefaultStickiness)
}

func (a *applier) roles(ctx context.Context, state *State) error {
	existing, err := a.svc.Roles.GetAll(ctx)
	if err != nil {
		return err
	}
	a.roleIDs = map[string]int{}
	for _, r := range existing.Roles {
		a.roleIDs[r.Name] = r.ID
	}

	for _, r := range state.Roles {
		input := service.RoleInput{
			Name:        r.Name,
			Description: r.Description,
			Type:        r.Type,
			Permissions: make([]service.PermissionInput, 0, len(r.Permissions)),
		}
		for _, p := range r.Permissions {
			input.Permissions = append(input.Permissions, service.PermissionInput{Name: p.Name, Environment: p.Environment})
		}

		id, ok := a.roleIDs[r.Name]
		if !ok {
			created, err := a.svc.Roles.Create(ctx, input)
			if err != nil {
				return fmt.Errorf("role %s: %w", r.Name, err)
			}
			a.roleIDs[r.Name] = created.ID
			a.result.record(&a.result.Created, "role", r.Name)
			continue
		}

		current, err := a.svc.Roles.Get(ctx, id)
		if err != nil {
			return fmt.Errorf("role %s: %w", r.Name, err)
		}
		if roleMatches(current, r) {
			a.result.record(&a.result.Unchanged, "role", r.Name)
			continue
		}
		if _, err := a.svc.Roles.Update(ctx, id, input); err != nil {
			return fmt.Errorf("role %s: %w", r.Name, err)
		}
		a.result.record(&a.result.Updated, "role", r.Name)
	}
	return nil
}

func roleMatches(current *service.RoleWithPermissions, r RoleState) bool {
	if current.Type != r.Type || current.Description != r.Description {
		return false
	}
	have := map[string]bool{}
	for _, p := range current.Permissions {
		have[permissionKey(p.Name, p.Environment)] = true
	}
	want := map[string]bool{}
	for _, p := range r.Permissions {
		want[permissionKey(p.Name, p.Environment)] = true
	}
	return reflect.DeepEqual(have, want)
}

func permissionKey(name string, env *string) string {
	if env == nil {
		return name
	}
	return name + "@" + *env
}

func (a *applier) groups(ctx context.Context, state *State) error {
	if len(state.Groups) == 0 {
		return nil
	}
	existing, err := a.svc.Groups.GetAll(ctx)
	if err != nil {
		return err
	}
	byName := map[string]service.Group{}
	for _, g := range existing.Groups {
		byName[g.Name] = g
	}

	for _, g := range state.Groups {
		input := service.GroupInput{
			Name:        g.Name,
			Description: g.Description,
			MappingsSSO: g.MappingsSSO,
		}
		if g.RootRole != "" {
			id, ok := a.roleIDs[g.RootRole]
			if !ok {
				return fmt.Errorf("group %s: unknown root role %q", g.Name, g.RootRole)
			}
			input.RootRole = &id
		}

		current, ok := byName[g.Name]
		switch {
		case !ok:
			if _, err := a.svc.Groups.Create(ctx, input); err != nil {
				return fmt.Errorf("group %s: %w", g.Name, err)
			}
			a.result.record(&a.result.Created, "group", g.Name)
		case groupMatches(current, input):
			a.result.record(&a.result.Unchanged, "group", g.Name)
		default:
			// Members are not part of the state; keep the current ones.
			for _, u := range current.Users {
				input.Users = append(input.Users, service.GroupUserInput{User: service.UserRef{ID: u.User.ID}})
			}
			if _, err := a.svc.Groups.Update(ctx, current.ID, input); err != nil {
				return fmt.Errorf("group %s: %w", g.Name, err)
			}
			a.result.record(&a.result.Updated, "group", g.Name)
		}
	}
	return nil
}

func groupMatches(current service.Group, input service.GroupInput) bool {
	sameRole := (current.RootRole == nil && input.RootRole == nil) ||
		(current.RootRole != nil && input.RootRole != nil && *current.RootRole == *input.RootRole)
	return sameRole &&
		current.Description == input.Description &&
		equalStrings(current.MappingsSSO, input.MappingsSSO)
}

func (a *applier) segments(ctx context.Context, state *State) error {
	if len(state.Segments) == 0 {
		return nil
	}
	existing, err := a.svc.Segments.GetAll(ctx)
	if err != nil {
		return err
	}
	byName := map[string]service.Segment{}
	for _, s := range existing.Segments {
		byName[s.Name] = s
	}

	for _, s := range state.Segments {
		input := service.SegmentInput{
			Name:        s.Name,
			Description: s.Description,
			Constraints: make([]service.ConstraintInput, 0, len(s.Constraints)),
		}
		if s.Project != "" {
			project := s.Project
			input.Project = &project
		}
		for _, c := range s.Constraints {
			input.Constraints = append(input.Constraints, service.ConstraintInput{
				ContextName:     c.ContextName,
				Operator:        c.Operator,
				Values:          c.Values,
				Value:           c.Value,
				Inverted:        c.Inverted,
				CaseInsensitive: c.CaseInsensitive,
			})
		}

		current, ok := byName[s.Name]
		switch {
		case !ok:
			if _, err := a.svc.Segments.Create(ctx, input); err != nil {
				return fmt.Errorf("segment %s: %w", s.Name, err)
			}
			a.result.record(&a.result.Created, "segment", s.Name)
		case segmentMatches(current, s):
			a.result.record(&a.result.Unchanged, "segment", s.Name)
		default:
			if err := a.svc.Segments.Update(ctx, current.ID, input); err != nil {
				return fmt.Errorf("segment %s: %w", s.Name, err)
			}
			a.result.record(&a.result.Updated, "segment", s.Name)
		}
	}
	return nil
}

func segmentMatches(current service.Segment, s SegmentState) bool {
	project := ""
	if current.Project != nil {
		project = *current.Project
	}
	if project != s.Project || current.Description != s.Description || len(current.Constraints) != len(s.Constraints) {
		return false
	}
	for i := range s.Constraints {
		if !reflect.DeepEqual(normalize(current.Constraints[i]), normalize(s.Constraints[i])) {
			return false
		}
	}
	return true
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// normalize treats nil and empty value lists as equal.
func normalize(c model.Constraint) model.Constraint {
	if len(c.Values) == 0 {
		c.Values = nil
	}
	return c
}
