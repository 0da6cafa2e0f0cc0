package gorm

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/flagkeep/flagkeep/pkg/model"
	"github.com/flagkeep/flagkeep/pkg/server/store"
)

// Ensure SegmentsStore implements store.SegmentsStore
var _ store.SegmentsStore = (*SegmentsStore)(nil)

// SegmentsStore implements store.SegmentsStore using GORM
type SegmentsStore struct {
	db *gorm.DB
}

// NewSegmentsStore creates a new SegmentsStore
func NewSegmentsStore(db *gorm.DB) *SegmentsStore {
	return &SegmentsStore{db: db}
}

// ListSegments returns all segments, or only those of project
func (s *SegmentsStore) ListSegments(ctx context.Context, project string) ([]model.Segment, error) {
	tx := s.db.WithContext(ctx)
	if project != "" {
		tx = tx.Where("segment_project_id = ?", project)
	}

	var segments []model.Segment
	if err := tx.Order("id").Find(&segments).Error; err != nil {
		return nil, err
	}
	return segments, nil
}

// GetSegment returns a segment by id
func (s *SegmentsStore) GetSegment(ctx context.Context, id int) (*model.Segment, error) {
	var segment model.Segment
	tx := s.db.WithContext(ctx).Where("id = ?", id).First(&segment)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return nil, store.ErrSegmentNotFound
		}
		return nil, tx.Error
	}
	return &segment, nil
}

// SegmentNameExists checks if another segment than excludeID uses name
func (s *SegmentsStore) SegmentNameExists(ctx context.Context, name string, excludeID int) (bool, error) {
	var exists bool
	err := s.db.WithContext(ctx).
		Raw(`SELECT EXISTS(SELECT 1 FROM segments WHERE name = ? AND id <> ?)`, name, excludeID).
		Scan(&exists).Error
	return exists, err
}

// CreateSegment inserts a segment and sets its ID
func (s *SegmentsStore) CreateSegment(ctx context.Context, segment *model.Segment) error {
	type insertedRow struct {
		ID        int
		CreatedAt time.Time
	}
	var row insertedRow
	err := s.db.WithContext(ctx).Raw(`
		INSERT INTO segments (name, description, segment_project_id, constraints, created_by)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id, created_at
	`, segment.Name, segment.Description, segment.Project, segment.Constraints, segment.CreatedBy).Scan(&row).Error
	if err != nil {
		return err
	}
	segment.ID = row.ID
	segment.CreatedAt = row.CreatedAt
	return nil
}

// UpdateSegment overwrites name, description, project and constraints
func (s *SegmentsStore) UpdateSegment(ctx context.Context, segment *model.Segment) error {
	tx := s.db.WithContext(ctx).Exec(`
		UPDATE segments
		SET name = ?, description = ?, segment_project_id = ?, constraints = ?
		WHERE id = ?
	`, segment.Name, segment.Description, segment.Project, segment.Constraints, segment.ID)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return store.ErrSegmentNotFound
	}
	return nil
}

// DeleteSegment deletes a segment
func (s *SegmentsStore) DeleteSegment(ctx context.Context, id int) error {
	tx := s.db.WithContext(ctx).Exec(`DELETE FROM segments WHERE id = ?`, id)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return store.ErrSegmentNotFound
	}
	return nil
}
