package model

import "time"

// DefaultProjectID is the project every instance starts with.
const DefaultProjectID = "default"

// Project groups features and environments.
type Project struct {
	ID                string    `gorm:"column:id;primaryKey"`
	Name              string    `gorm:"column:name"`
	Description       string    `gorm:"column:description"`
	Mode              Mode      `gorm:"column:mode"`
	DefaultStickiness string    `gorm:"column:default_stickiness"`
	Health            int       `gorm:"column:health"`
	CreatedAt         time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Project) TableName() string {
	return "projects"
}

// ProjectEnvironment enables an environment for a project.
type ProjectEnvironment struct {
	ProjectID       string `gorm:"column:project_id;primaryKey"`
	EnvironmentName string `gorm:"column:environment_name;primaryKey"`
}

func (ProjectEnvironment) TableName() string {
	return "project_environments"
}

// Feature is a feature toggle. FirstEnabledAt records the first time the
// toggle was enabled in a production environment.
type Feature struct {
	Name           string     `gorm:"column:name;primaryKey"`
	Project        string     `gorm:"column:project"`
	Type           string     `gorm:"column:type"`
	Stale          bool       `gorm:"column:stale"`
	ArchivedAt     *time.Time `gorm:"column:archived_at"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime"`
	FirstEnabledAt *time.Time `gorm:"column:first_enabled_at"`
}

func (Feature) TableName() string {
	return "features"
}
