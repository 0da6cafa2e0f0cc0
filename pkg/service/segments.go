package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/flagkeep/flagkeep/pkg/apierr"
	"github.com/flagkeep/flagkeep/pkg/audit"
	"github.com/flagkeep/flagkeep/pkg/identity"
	"github.com/flagkeep/flagkeep/pkg/model"
	"github.com/flagkeep/flagkeep/pkg/permissions"
	"github.com/flagkeep/flagkeep/pkg/server/store"
)

// Segment is the public representation of a segment.
type Segment struct {
	ID          int                `json:"id"`
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	Project     *string            `json:"project"`
	Constraints []model.Constraint `json:"constraints"`
	CreatedBy   string             `json:"createdBy,omitempty"`
	CreatedAt   time.Time          `json:"createdAt"`
}

// Segments is the body of segment listings.
type Segments struct {
	Segments []Segment `json:"segments"`
}

// ConstraintInput is one constraint of a segment.
type ConstraintInput struct {
	ContextName     string   `json:"contextName" validate:"required"`
	Operator        string   `json:"operator" validate:"required"`
	Values          []string `json:"values"`
	Value           string   `json:"value"`
	Inverted        bool     `json:"inverted"`
	CaseInsensitive bool     `json:"caseInsensitive"`
}

// SegmentInput creates or updates a segment.
type SegmentInput struct {
	Name        string            `json:"name" validate:"required,max=255"`
	Description string            `json:"description"`
	Project     *string           `json:"project"`
	Constraints []ConstraintInput `json:"constraints" validate:"dive"`
}

func (in SegmentInput) project() string {
	if in.Project == nil {
		return ""
	}
	return *in.Project
}

// projectRef is the project to store. An empty project means a global
// segment.
func (in SegmentInput) projectRef() *string {
	if in.project() == "" {
		return nil
	}
	p := in.project()
	return &p
}

func (in SegmentInput) constraints() model.Constraints {
	out := make(model.Constraints, 0, len(in.Constraints))
	for _, c := range in.Constraints {
		out = append(out, model.Constraint{
			ContextName:     c.ContextName,
			Operator:        c.Operator,
			Values:          c.Values,
			Value:           c.Value,
			Inverted:        c.Inverted,
			CaseInsensitive: c.CaseInsensitive,
		})
	}
	return out
}

// SegmentService manages segments.
type SegmentService struct {
	segments store.SegmentsStore
	projects store.ProjectsStore
	config   ConfigSource
	auditor  Auditor
}

// NewSegmentService creates a SegmentService.
func NewSegmentService(segments store.SegmentsStore, projects store.ProjectsStore, cfg ConfigSource, auditor Auditor) *SegmentService {
	return &SegmentService{
		segments: segments,
		projects: projects,
		config:   cfg,
		auditor:  orNop(auditor),
	}
}

// GetAll returns every segment.
func (s *SegmentService) GetAll(ctx context.Context) (*Segments, error) {
	return s.list(ctx, "")
}

// GetByProject returns the segments that belong to a project.
func (s *SegmentService) GetByProject(ctx context.Context, project string) (*Segments, error) {
	exists, err := s.projects.ProjectExists(ctx, project)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apierr.NewNotFound("Could not find project with id %s", project)
	}
	return s.list(ctx, project)
}

func (s *SegmentService) list(ctx context.Context, project string) (*Segments, error) {
	segments, err := s.segments.ListSegments(ctx, project)
	if err != nil {
		return nil, err
	}
	out := &Segments{Segments: make([]Segment, 0, len(segments))}
	for _, seg := range segments {
		out.Segments = append(out.Segments, toSegment(seg))
	}
	return out, nil
}

// Get returns a segment.
func (s *SegmentService) Get(ctx context.Context, id int) (*Segment, error) {
	seg, err := s.segments.GetSegment(ctx, id)
	if err != nil {
		return nil, segmentError(err, id)
	}
	out := toSegment(*seg)
	return &out, nil
}

// ValidateName fails with a NameExistsError when name is taken.
func (s *SegmentService) ValidateName(ctx context.Context, name string) error {
	if name == "" {
		return apierr.NewBadData("Segment name is required")
	}
	exists, err := s.segments.SegmentNameExists(ctx, name, 0)
	if err != nil {
		return err
	}
	if exists {
		return apierr.NewNameExists("There already exists a segment with the name %s", name)
	}
	return nil
}

// Create creates a segment.
func (s *SegmentService) Create(ctx context.Context, input SegmentInput) (*Segment, error) {
	if err := authorizeSegment(ctx, permissions.CreateSegment, input.project()); err != nil {
		return nil, err
	}
	if err := s.validate(ctx, input, 0); err != nil {
		return nil, err
	}

	username, ip := actor(ctx)
	seg := &model.Segment{
		Name:        input.Name,
		Description: input.Description,
		Project:     input.projectRef(),
		Constraints: input.constraints(),
		CreatedBy:   username,
	}
	if err := s.segments.CreateSegment(ctx, seg); err != nil {
		return nil, err
	}

	out := toSegment(*seg)
	s.auditor.Log(ctx, audit.ChangeEvent{
		Type:      audit.SegmentCreated,
		CreatedBy: username,
		ClientIP:  ip,
		Project:   input.project(),
		Subject:   "segment " + seg.Name,
		Data:      out,
	})
	return &out, nil
}

// Update replaces a segment.
func (s *SegmentService) Update(ctx context.Context, id int, input SegmentInput) error {
	pre, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	preProject := ""
	if pre.Project != nil {
		preProject = *pre.Project
	}
	if err := authorizeSegment(ctx, permissions.UpdateSegment, preProject); err != nil {
		return err
	}
	if input.project() != preProject {
		if err := authorizeSegment(ctx, permissions.UpdateSegment, input.project()); err != nil {
			return err
		}
	}
	if err := s.validate(ctx, input, id); err != nil {
		return err
	}

	username, ip := actor(ctx)
	seg := &model.Segment{
		ID:          id,
		Name:        input.Name,
		Description: input.Description,
		Project:     input.projectRef(),
		Constraints: input.constraints(),
	}
	if err := s.segments.UpdateSegment(ctx, seg); err != nil {
		return segmentError(err, id)
	}

	seg.CreatedBy = pre.CreatedBy
	seg.CreatedAt = pre.CreatedAt
	s.auditor.Log(ctx, audit.ChangeEvent{
		Type:      audit.SegmentUpdated,
		CreatedBy: username,
		ClientIP:  ip,
		Project:   input.project(),
		Subject:   "segment " + seg.Name,
		Data:      toSegment(*seg),
		PreData:   pre,
	})
	return nil
}

// Delete removes a segment.
func (s *SegmentService) Delete(ctx context.Context, id int) error {
	pre, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	project := ""
	if pre.Project != nil {
		project = *pre.Project
	}
	if err := authorizeSegment(ctx, permissions.DeleteSegment, project); err != nil {
		return err
	}
	if err := s.segments.DeleteSegment(ctx, id); err != nil {
		return segmentError(err, id)
	}

	username, ip := actor(ctx)
	s.auditor.Log(ctx, audit.ChangeEvent{
		Type:      audit.SegmentDeleted,
		CreatedBy: username,
		ClientIP:  ip,
		Project:   project,
		Subject:   "segment " + pre.Name,
		PreData:   pre,
	})
	return nil
}

func (s *SegmentService) validate(ctx context.Context, input SegmentInput, id int) error {
	if err := validateInput(input); err != nil {
		return err
	}

	limit := s.config.get().SegmentValuesLimit
	if count := input.constraints().ValueCount(); limit > 0 && count > limit {
		msg := fmt.Sprintf("Segments may not have more than %d values", limit)
		return apierr.NewBadData("%s", msg).WithDetails(apierr.Detail{
			Message:     msg,
			Description: fmt.Sprintf("The segment has %d values across its constraints", count),
			Path:        "/constraints",
		})
	}

	exists, err := s.segments.SegmentNameExists(ctx, input.Name, id)
	if err != nil {
		return err
	}
	if exists {
		return apierr.NewNameExists("There already exists a segment with the name %s", input.Name)
	}

	if project := input.project(); project != "" {
		exists, err := s.projects.ProjectExists(ctx, project)
		if err != nil {
			return err
		}
		if !exists {
			return apierr.NewBadData("Project %s does not exist", project)
		}
	}
	return nil
}

// authorizeSegment allows rootPerm, or UPDATE_PROJECT_SEGMENT for segments
// that belong to a project. Calls without an identity come from the CLI and
// are allowed.
func authorizeSegment(ctx context.Context, rootPerm permissions.Permission, project string) error {
	id, ok := identity.Get(ctx)
	if !ok {
		return nil
	}
	if id.HasPermission(rootPerm, "") {
		return nil
	}
	if project != "" && id.HasPermission(permissions.UpdateProjectSegment, project) {
		return nil
	}
	return apierr.NewNoAccess("You need permission=%s to perform this action", rootPerm)
}

func segmentError(err error, id int) error {
	if errors.Is(err, store.ErrSegmentNotFound) {
		return apierr.NewNotFound("Could not find segment with id %d", id)
	}
	return err
}

func toSegment(seg model.Segment) Segment {
	constraints := []model.Constraint(seg.Constraints)
	if constraints == nil {
		constraints = []model.Constraint{}
	}
	return Segment{
		ID:          seg.ID,
		Name:        seg.Name,
		Description: seg.Description,
		Project:     seg.Project,
		Constraints: constraints,
		CreatedBy:   seg.CreatedBy,
		CreatedAt:   seg.CreatedAt,
	}
}
