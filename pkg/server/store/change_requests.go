package store

import (
	"context"

	"github.com/flagkeep/flagkeep/pkg/model"
)

// ChangeRequestsStore abstracts change request storage operations
type ChangeRequestsStore interface {
	// ListChangeRequests returns the change requests of a project in any of
	// states, newest first. No states means all states.
	ListChangeRequests(ctx context.Context, project string, states []string) ([]model.ChangeRequest, error)
}
