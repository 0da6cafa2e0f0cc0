package gorm

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/flagkeep/flagkeep/pkg/model"
	"github.com/flagkeep/flagkeep/pkg/permissions"
	"github.com/flagkeep/flagkeep/pkg/server/store"
)

// Ensure ProjectsStore implements store.ProjectsStore
var _ store.ProjectsStore = (*ProjectsStore)(nil)

// ProjectsStore implements store.ProjectsStore using GORM
type ProjectsStore struct {
	db *gorm.DB
}

// NewProjectsStore creates a new ProjectsStore
func NewProjectsStore(db *gorm.DB) *ProjectsStore {
	return &ProjectsStore{db: db}
}

// projectMembersQuery selects the distinct users holding a role in the
// project bound to its two placeholders.
const projectMembersQuery = `
	SELECT ru.user_id FROM role_user ru WHERE ru.project = ?
	UNION
	SELECT gu.user_id
	FROM group_role gr
	JOIN group_user gu ON gu.group_id = gr.group_id
	WHERE gr.project = ?
`

// ListProjects returns all projects with feature and member counts
func (s *ProjectsStore) ListProjects(ctx context.Context) ([]store.ProjectSummary, error) {
	var projects []store.ProjectSummary
	err := s.db.WithContext(ctx).Raw(`
		SELECT p.*,
		       (SELECT COUNT(*) FROM features f
		        WHERE f.project = p.id AND f.archived_at IS NULL) AS feature_count,
		       (SELECT COUNT(DISTINCT m.user_id) FROM (
		            SELECT ru.user_id FROM role_user ru WHERE ru.project = p.id
		            UNION
		            SELECT gu.user_id FROM group_role gr
		            JOIN group_user gu ON gu.group_id = gr.group_id
		            WHERE gr.project = p.id
		        ) m) AS member_count
		FROM projects p
		ORDER BY p.name
	`).Scan(&projects).Error
	if err != nil {
		return nil, err
	}
	return projects, nil
}

// GetProject returns a project by id
func (s *ProjectsStore) GetProject(ctx context.Context, id string) (*model.Project, error) {
	var project model.Project
	tx := s.db.WithContext(ctx).Where("id = ?", id).First(&project)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return nil, store.ErrProjectNotFound
		}
		return nil, tx.Error
	}
	return &project, nil
}

// ProjectExists checks if a project exists
func (s *ProjectsStore) ProjectExists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := s.db.WithContext(ctx).
		Raw(`SELECT EXISTS(SELECT 1 FROM projects WHERE id = ?)`, id).
		Scan(&exists).Error
	return exists, err
}

// CreateProject inserts a project and enables environments for it
func (s *ProjectsStore) CreateProject(ctx context.Context, project *model.Project, environments []string, ownerID int) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Exec(`
			INSERT INTO projects (id, name, description, mode, default_stickiness)
			VALUES (?, ?, ?, ?, ?)
		`, project.ID, project.Name, project.Description, project.Mode, project.DefaultStickiness).Error
		if err != nil {
			return err
		}
		for _, env := range environments {
			err := tx.Exec(`
				INSERT INTO project_environments (project_id, environment_name)
				VALUES (?, ?)
				ON CONFLICT DO NOTHING
			`, project.ID, env).Error
			if err != nil {
				return err
			}
		}
		if ownerID == 0 {
			return nil
		}
		return tx.Exec(`
			INSERT INTO role_user (role_id, user_id, project)
			SELECT id, ?, ? FROM roles WHERE name = ?
			ON CONFLICT DO NOTHING
		`, ownerID, project.ID, permissions.RoleOwner).Error
	})
}

// UpdateProject overwrites name, description, mode and stickiness
func (s *ProjectsStore) UpdateProject(ctx context.Context, project *model.Project) error {
	tx := s.db.WithContext(ctx).Exec(`
		UPDATE projects
		SET name = ?, description = ?, mode = ?, default_stickiness = ?, updated_at = now()
		WHERE id = ?
	`, project.Name, project.Description, project.Mode, project.DefaultStickiness, project.ID)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return store.ErrProjectNotFound
	}
	return nil
}

// DeleteProject deletes a project together with its archived features
func (s *ProjectsStore) DeleteProject(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(`DELETE FROM features WHERE project = ? AND archived_at IS NOT NULL`, id).Error; err != nil {
			return err
		}
		res := tx.Exec(`DELETE FROM projects WHERE id = ?`, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return store.ErrProjectNotFound
		}
		return nil
	})
}

// ListEnvironments returns the names of all enabled environments
func (s *ProjectsStore) ListEnvironments(ctx context.Context) ([]string, error) {
	var names []string
	err := s.db.WithContext(ctx).
		Table("environments").
		Where("enabled = ?", true).
		Order("name").
		Pluck("name", &names).Error
	return names, err
}

// ProjectEnvironments returns the environments enabled for a project
func (s *ProjectsStore) ProjectEnvironments(ctx context.Context, id string) ([]string, error) {
	var names []string
	err := s.db.WithContext(ctx).
		Table("project_environments").
		Where("project_id = ?", id).
		Order("environment_name").
		Pluck("environment_name", &names).Error
	return names, err
}

// CountMembers counts distinct users holding a role in a project
func (s *ProjectsStore) CountMembers(ctx context.Context, id string) (int, error) {
	var count int
	err := s.db.WithContext(ctx).
		Raw(`SELECT COUNT(DISTINCT m.user_id) FROM (`+projectMembersQuery+`) m`, id, id).
		Scan(&count).Error
	return count, err
}

// ListFeatures returns the features of a project
func (s *ProjectsStore) ListFeatures(ctx context.Context, project string, archived bool) ([]model.Feature, error) {
	tx := s.db.WithContext(ctx).Where("project = ?", project)
	if !archived {
		tx = tx.Where("archived_at IS NULL")
	}

	var features []model.Feature
	if err := tx.Order("created_at").Find(&features).Error; err != nil {
		return nil, err
	}
	return features, nil
}

// CountActiveFeatures counts features of a project that are not archived
func (s *ProjectsStore) CountActiveFeatures(ctx context.Context, project string) (int, error) {
	var count int
	err := s.db.WithContext(ctx).
		Raw(`SELECT COUNT(*) FROM features WHERE project = ? AND archived_at IS NULL`, project).
		Scan(&count).Error
	return count, err
}
