package store

import (
	"context"
	"errors"

	"github.com/flagkeep/flagkeep/pkg/model"
)

// ErrSegmentNotFound is returned when a segment doesn't exist
var ErrSegmentNotFound = errors.New("segment not found")

// SegmentsStore abstracts segment storage operations
type SegmentsStore interface {
	// ListSegments returns all segments, or only those of project when
	// project is not empty
	ListSegments(ctx context.Context, project string) ([]model.Segment, error)

	// GetSegment returns a segment by id.
	// Returns ErrSegmentNotFound if the segment doesn't exist.
	GetSegment(ctx context.Context, id int) (*model.Segment, error)

	// SegmentNameExists checks if another segment than excludeID uses name
	SegmentNameExists(ctx context.Context, name string, excludeID int) (bool, error)

	// CreateSegment inserts a segment and sets its ID
	CreateSegment(ctx context.Context, segment *model.Segment) error

	// UpdateSegment overwrites name, description, project and constraints.
	// Returns ErrSegmentNotFound if the segment doesn't exist.
	UpdateSegment(ctx context.Context, segment *model.Segment) error

	// DeleteSegment deletes a segment.
	// Returns ErrSegmentNotFound if the segment doesn't exist.
	DeleteSegment(ctx context.Context, id int) error
}
