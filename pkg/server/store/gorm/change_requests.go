package gorm

import (
	"context"

	"gorm.io/gorm"

	"github.com/flagkeep/flagkeep/pkg/model"
	"github.com/flagkeep/flagkeep/pkg/server/store"
)

// Ensure ChangeRequestsStore implements store.ChangeRequestsStore
var _ store.ChangeRequestsStore = (*ChangeRequestsStore)(nil)

// ChangeRequestsStore implements store.ChangeRequestsStore using GORM
type ChangeRequestsStore struct {
	db *gorm.DB
}

// NewChangeRequestsStore creates a new ChangeRequestsStore
func NewChangeRequestsStore(db *gorm.DB) *ChangeRequestsStore {
	return &ChangeRequestsStore{db: db}
}

// ListChangeRequests returns the change requests of a project in any of states
func (s *ChangeRequestsStore) ListChangeRequests(ctx context.Context, project string, states []string) ([]model.ChangeRequest, error) {
	tx := s.db.WithContext(ctx).Where("project = ?", project)
	if len(states) > 0 {
		tx = tx.Where("state IN ?", states)
	}

	var requests []model.ChangeRequest
	if err := tx.Order("created_at DESC").Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}
