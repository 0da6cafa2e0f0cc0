package service

import (
	"context"
	"errors"
	"math"
	"regexp"
	"time"

	"go.uber.org/zap"

	"github.com/flagkeep/flagkeep/pkg/apierr"
	"github.com/flagkeep/flagkeep/pkg/audit"
	"github.com/flagkeep/flagkeep/pkg/config"
	"github.com/flagkeep/flagkeep/pkg/identity"
	"github.com/flagkeep/flagkeep/pkg/model"
	"github.com/flagkeep/flagkeep/pkg/openapi"
	"github.com/flagkeep/flagkeep/pkg/server/store"
)

var projectIDRegex = regexp.MustCompile(openapi.ProjectIDPattern)

const statsWindow = 30 * 24 * time.Hour

// Project is a project in the project listing.
type Project struct {
	ID                string     `json:"id"`
	Name              string     `json:"name"`
	Description       string     `json:"description,omitempty"`
	Health            int        `json:"health"`
	FeatureCount      int        `json:"featureCount"`
	MemberCount       int        `json:"memberCount"`
	Mode              model.Mode `json:"mode"`
	DefaultStickiness string     `json:"defaultStickiness"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         *time.Time `json:"updatedAt"`
}

// Projects is the body of the project listing.
type Projects struct {
	Version  int       `json:"version"`
	Projects []Project `json:"projects"`
}

// FeatureSummary is a feature in a project overview.
type FeatureSummary struct {
	Name       string     `json:"name"`
	Type       string     `json:"type"`
	Stale      bool       `json:"stale"`
	CreatedAt  time.Time  `json:"createdAt"`
	ArchivedAt *time.Time `json:"archivedAt"`
}

// ProjectStats compares the current 30 day window with the one before.
type ProjectStats struct {
	CreatedCurrentWindow       int     `json:"createdCurrentWindow"`
	CreatedPastWindow          int     `json:"createdPastWindow"`
	ArchivedCurrentWindow      int     `json:"archivedCurrentWindow"`
	ArchivedPastWindow         int     `json:"archivedPastWindow"`
	AvgTimeToProdCurrentWindow float64 `json:"avgTimeToProdCurrentWindow"`
}

// ProjectOverview is the detailed view of one project.
type ProjectOverview struct {
	Version           int              `json:"version"`
	Name              string           `json:"name"`
	Description       string           `json:"description,omitempty"`
	Mode              model.Mode       `json:"mode"`
	DefaultStickiness string           `json:"defaultStickiness"`
	Health            int              `json:"health"`
	Members           int              `json:"members"`
	Environments      []string         `json:"environments"`
	Features          []FeatureSummary `json:"features"`
	Stats             ProjectStats     `json:"stats"`
	CreatedAt         time.Time        `json:"createdAt"`
	UpdatedAt         *time.Time       `json:"updatedAt"`
}

// FeatureLeadTime is the time a feature took to reach production.
type FeatureLeadTime struct {
	Name             string  `json:"name"`
	TimeToProduction float64 `json:"timeToProduction"`
}

// ProjectDoraMetrics are the lead time metrics of a project.
type ProjectDoraMetrics struct {
	ProjectAverage float64           `json:"projectAverage"`
	Features       []FeatureLeadTime `json:"features"`
}

// CreatedProject is the response to a project creation.
type CreatedProject struct {
	ProjectID string `json:"projectId"`
}

// ProjectInput creates or updates a project.
type ProjectInput struct {
	ID                string      `json:"id" validate:"required,max=100"`
	Name              string      `json:"name" validate:"required,max=255"`
	Description       string      `json:"description"`
	Mode              *model.Mode `json:"mode"`
	DefaultStickiness string      `json:"defaultStickiness"`
}

// ProjectService manages projects.
type ProjectService struct {
	projects store.ProjectsStore
	config   ConfigSource
	auditor  Auditor
	logger   *zap.Logger
	now      func() time.Time
}

// NewProjectService creates a ProjectService.
func NewProjectService(projects store.ProjectsStore, cfg ConfigSource, auditor Auditor, logger *zap.Logger) *ProjectService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProjectService{
		projects: projects,
		config:   cfg,
		auditor:  orNop(auditor),
		logger:   logger.Named("project-service"),
		now:      time.Now,
	}
}

// GetAll returns every project with its counts.
func (s *ProjectService) GetAll(ctx context.Context) (*Projects, error) {
	summaries, err := s.projects.ListProjects(ctx)
	if err != nil {
		return nil, err
	}
	out := &Projects{Version: 1, Projects: make([]Project, 0, len(summaries))}
	for _, p := range summaries {
		out.Projects = append(out.Projects, Project{
			ID:                p.ID,
			Name:              p.Name,
			Description:       p.Description,
			Health:            p.Health,
			FeatureCount:      p.FeatureCount,
			MemberCount:       p.MemberCount,
			Mode:              p.Mode,
			DefaultStickiness: p.DefaultStickiness,
			CreatedAt:         p.CreatedAt,
			UpdatedAt:         optionalTime(p.UpdatedAt),
		})
	}
	return out, nil
}

// ValidateID checks that id is a well-formed project id that is not taken.
func (s *ProjectService) ValidateID(ctx context.Context, id string) error {
	if err := checkProjectID(id); err != nil {
		return err
	}
	exists, err := s.projects.ProjectExists(ctx, id)
	if err != nil {
		return err
	}
	if exists {
		return apierr.NewNameExists("A project with id %s already exists", id)
	}
	return nil
}

func checkProjectID(id string) error {
	if id == "" {
		return apierr.NewBadData("Project id is required")
	}
	if len(id) > openapi.ProjectIDMaxLength {
		return apierr.NewBadData("Project id may be at most %d characters long", openapi.ProjectIDMaxLength)
	}
	if !projectIDRegex.MatchString(id) {
		return apierr.NewBadData("Project id must be URL friendly").WithDetails(apierr.Detail{
			Message:     "Project id must be URL friendly",
			Description: "Allowed characters are letters, digits, underscore, tilde, period and hyphen",
			Path:        "/id",
		})
	}
	return nil
}

// Create creates a project and makes the creator its owner.
func (s *ProjectService) Create(ctx context.Context, input ProjectInput) (*CreatedProject, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if err := s.ValidateID(ctx, input.ID); err != nil {
		return nil, err
	}

	envs, err := s.projects.ListEnvironments(ctx)
	if err != nil {
		return nil, err
	}

	var owner int
	if id, ok := identity.Get(ctx); ok {
		owner = id.UserID
	}

	project := projectFromInput(input)
	if err := s.projects.CreateProject(ctx, project, envs, owner); err != nil {
		return nil, err
	}

	username, ip := actor(ctx)
	s.auditor.Log(ctx, audit.ChangeEvent{
		Type:      audit.ProjectCreated,
		CreatedBy: username,
		ClientIP:  ip,
		Project:   project.ID,
		Subject:   "project " + project.ID,
		Data:      input,
	})
	s.logger.Info("project created", zap.String("id", project.ID), zap.Strings("environments", envs))
	return &CreatedProject{ProjectID: project.ID}, nil
}

// Update overwrites the details of a project.
func (s *ProjectService) Update(ctx context.Context, input ProjectInput) error {
	if err := validateInput(input); err != nil {
		return err
	}
	pre, err := s.projects.GetProject(ctx, input.ID)
	if err != nil {
		return projectError(err, input.ID)
	}

	project := projectFromInput(input)
	if input.Mode == nil {
		project.Mode = pre.Mode
	}
	if err := s.projects.UpdateProject(ctx, project); err != nil {
		return projectError(err, input.ID)
	}

	username, ip := actor(ctx)
	s.auditor.Log(ctx, audit.ChangeEvent{
		Type:      audit.ProjectUpdated,
		CreatedBy: username,
		ClientIP:  ip,
		Project:   project.ID,
		Subject:   "project " + project.ID,
		Data:      input,
		PreData:   pre,
	})
	return nil
}

func projectFromInput(input ProjectInput) *model.Project {
	project := &model.Project{
		ID:                input.ID,
		Name:              input.Name,
		Description:       input.Description,
		Mode:              model.ModeOpen,
		DefaultStickiness: input.DefaultStickiness,
	}
	if input.Mode != nil {
		project.Mode = *input.Mode
	}
	if project.DefaultStickiness == "" {
		project.DefaultStickiness = "default"
	}
	return project
}

// GetOverview returns the overview of a project. Archived features are
// listed when archived is true.
func (s *ProjectService) GetOverview(ctx context.Context, id string, archived bool) (*ProjectOverview, error) {
	project, err := s.projects.GetProject(ctx, id)
	if err != nil {
		return nil, projectError(err, id)
	}
	envs, err := s.projects.ProjectEnvironments(ctx, id)
	if err != nil {
		return nil, err
	}
	members, err := s.projects.CountMembers(ctx, id)
	if err != nil {
		return nil, err
	}
	all, err := s.projects.ListFeatures(ctx, id, true)
	if err != nil {
		return nil, err
	}

	features := make([]FeatureSummary, 0, len(all))
	for _, f := range all {
		if f.ArchivedAt != nil && !archived {
			continue
		}
		features = append(features, FeatureSummary{
			Name:       f.Name,
			Type:       f.Type,
			Stale:      f.Stale,
			CreatedAt:  f.CreatedAt,
			ArchivedAt: f.ArchivedAt,
		})
	}
	if envs == nil {
		envs = []string{}
	}

	return &ProjectOverview{
		Version:           1,
		Name:              project.Name,
		Description:       project.Description,
		Mode:              project.Mode,
		DefaultStickiness: project.DefaultStickiness,
		Health:            project.Health,
		Members:           members,
		Environments:      envs,
		Features:          features,
		Stats:             projectStats(all, s.now()),
		CreatedAt:         project.CreatedAt,
		UpdatedAt:         optionalTime(project.UpdatedAt),
	}, nil
}

func projectStats(features []model.Feature, now time.Time) ProjectStats {
	currentStart := now.Add(-statsWindow)
	pastStart := now.Add(-2 * statsWindow)
	inWindow := func(t time.Time, from, to time.Time) bool {
		return !t.Before(from) && t.Before(to)
	}

	var stats ProjectStats
	var leadTimes []float64
	for _, f := range features {
		switch {
		case inWindow(f.CreatedAt, currentStart, now):
			stats.CreatedCurrentWindow++
		case inWindow(f.CreatedAt, pastStart, currentStart):
			stats.CreatedPastWindow++
		}
		if f.ArchivedAt != nil {
			switch {
			case inWindow(*f.ArchivedAt, currentStart, now):
				stats.ArchivedCurrentWindow++
			case inWindow(*f.ArchivedAt, pastStart, currentStart):
				stats.ArchivedPastWindow++
			}
		}
		if f.FirstEnabledAt != nil && inWindow(*f.FirstEnabledAt, currentStart, now) {
			leadTimes = append(leadTimes, leadTimeDays(f))
		}
	}
	stats.AvgTimeToProdCurrentWindow = average(leadTimes)
	return stats
}

// GetDoraMetrics returns lead time to production per feature. It is only
// available when the doraMetrics flag is enabled.
func (s *ProjectService) GetDoraMetrics(ctx context.Context, id string) (*ProjectDoraMetrics, error) {
	if !s.config.get().IsEnabled(config.FlagDoraMetrics) {
		return nil, apierr.NewInvalidOperation("Feature dora metrics is not enabled")
	}

	exists, err := s.projects.ProjectExists(ctx, id)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apierr.NewNotFound("Could not find project with id %s", id)
	}

	features, err := s.projects.ListFeatures(ctx, id, true)
	if err != nil {
		return nil, err
	}

	metrics := &ProjectDoraMetrics{Features: []FeatureLeadTime{}}
	var leadTimes []float64
	for _, f := range features {
		if f.FirstEnabledAt == nil {
			continue
		}
		days := leadTimeDays(f)
		leadTimes = append(leadTimes, days)
		metrics.Features = append(metrics.Features, FeatureLeadTime{Name: f.Name, TimeToProduction: days})
	}
	metrics.ProjectAverage = average(leadTimes)
	return metrics, nil
}

// leadTimeDays is the number of whole days between creation and first
// production enablement.
func leadTimeDays(f model.Feature) float64 {
	d := f.FirstEnabledAt.Sub(f.CreatedAt)
	if d < 0 {
		return 0
	}
	return math.Floor(d.Hours() / 24)
}

// average rounds to one decimal. An empty list averages to zero.
func average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return math.Round(sum/float64(len(values))*10) / 10
}

// Delete removes a project. The default project and projects with active
// features cannot be deleted.
func (s *ProjectService) Delete(ctx context.Context, id string) error {
	if id == model.DefaultProjectID {
		return apierr.NewInvalidOperation("You can not delete the default project!")
	}

	pre, err := s.projects.GetProject(ctx, id)
	if err != nil {
		return projectError(err, id)
	}

	active, err := s.projects.CountActiveFeatures(ctx, id)
	if err != nil {
		return err
	}
	if active > 0 {
		return apierr.NewInvalidOperation("You can not delete a project with active feature toggles")
	}

	if err := s.projects.DeleteProject(ctx, id); err != nil {
		return projectError(err, id)
	}

	username, ip := actor(ctx)
	s.auditor.Log(ctx, audit.ChangeEvent{
		Type:      audit.ProjectDeleted,
		CreatedBy: username,
		ClientIP:  ip,
		Project:   id,
		Subject:   "project " + id,
		PreData:   pre,
	})
	return nil
}

func projectError(err error, id string) error {
	if errors.Is(err, store.ErrProjectNotFound) {
		return apierr.NewNotFound("Could not find project with id %s", id)
	}
	return err
}

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
