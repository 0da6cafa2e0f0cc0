package store

import (
	"context"
	"errors"

	"github.com/flagkeep/flagkeep/pkg/model"
)

// ErrProjectNotFound is returned when a project doesn't exist
var ErrProjectNotFound = errors.New("project not found")

// ProjectSummary is a project with the counts shown in project listings
type ProjectSummary struct {
	model.Project
	FeatureCount int
	MemberCount  int
}

// ProjectsStore abstracts project storage operations
type ProjectsStore interface {
	// ListProjects returns all projects with feature and member counts
	ListProjects(ctx context.Context) ([]ProjectSummary, error)

	// GetProject returns a project by id.
	// Returns ErrProjectNotFound if the project doesn't exist.
	GetProject(ctx context.Context, id string) (*model.Project, error)

	// ProjectExists checks if a project exists
	ProjectExists(ctx context.Context, id string) (bool, error)

	// CreateProject inserts a project and enables environments for it.
	// When ownerID is set that user gets the Owner role in the project.
	CreateProject(ctx context.Context, project *model.Project, environments []string, ownerID int) error

	// UpdateProject overwrites name, description, mode and stickiness.
	// Returns ErrProjectNotFound if the project doesn't exist.
	UpdateProject(ctx context.Context, project *model.Project) error

	// DeleteProject deletes a project.
	// Returns ErrProjectNotFound if the project doesn't exist.
	DeleteProject(ctx context.Context, id string) error

	// ListEnvironments returns the names of all enabled environments
	ListEnvironments(ctx context.Context) ([]string, error)

	// ProjectEnvironments returns the environments enabled for a project
	ProjectEnvironments(ctx context.Context, id string) ([]string, error)

	// CountMembers counts distinct users holding a role in a project,
	// directly or through a group
	CountMembers(ctx context.Context, id string) (int, error)

	// ListFeatures returns the features of a project. Archived features are
	// included only when archived is true.
	ListFeatures(ctx context.Context, project string, archived bool) ([]model.Feature, error)

	// CountActiveFeatures counts features of a project that are not archived
	CountActiveFeatures(ctx context.Context, project string) (int, error)
}
