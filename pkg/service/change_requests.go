package service

import (
	"context"
	"time"

	"github.com/flagkeep/flagkeep/pkg/apierr"
	"github.com/flagkeep/flagkeep/pkg/model"
	"github.com/flagkeep/flagkeep/pkg/server/store"
)

// ChangeRequest is a change request of a project.
type ChangeRequest struct {
	ID          int       `json:"id"`
	Title       string    `json:"title,omitempty"`
	Project     string    `json:"project"`
	Environment string    `json:"environment"`
	State       string    `json:"state"`
	CreatedBy   string    `json:"createdBy,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ChangeRequests is the body of the change request listing.
type ChangeRequests struct {
	ChangeRequests []ChangeRequest `json:"changeRequests"`
}

// Change request filters.
const (
	ChangeRequestFilterOpen   = "open"
	ChangeRequestFilterClosed = "closed"
)

// ChangeRequestService lists change requests.
type ChangeRequestService struct {
	changeRequests store.ChangeRequestsStore
	projects       store.ProjectsStore
}

// NewChangeRequestService creates a ChangeRequestService.
func NewChangeRequestService(changeRequests store.ChangeRequestsStore, projects store.ProjectsStore) *ChangeRequestService {
	return &ChangeRequestService{changeRequests: changeRequests, projects: projects}
}

// GetForProject returns the change requests of a project. filter is
// "open", "closed" or empty for all.
func (s *ChangeRequestService) GetForProject(ctx context.Context, project, filter string) (*ChangeRequests, error) {
	var states []string
	switch filter {
	case "":
	case ChangeRequestFilterOpen:
		states = model.OpenChangeRequestStates
	case ChangeRequestFilterClosed:
		states = model.ClosedChangeRequestStates
	default:
		return nil, apierr.NewBadData("Unknown change request state %q, expected open or closed", filter)
	}

	exists, err := s.projects.ProjectExists(ctx, project)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apierr.NewNotFound("Could not find project with id %s", project)
	}

	requests, err := s.changeRequests.ListChangeRequests(ctx, project, states)
	if err != nil {
		return nil, err
	}

	out := &ChangeRequests{ChangeRequests: make([]ChangeRequest, 0, len(requests))}
	for _, cr := range requests {
		out.ChangeRequests = append(out.ChangeRequests, ChangeRequest{
			ID:          cr.ID,
			Title:       cr.Title,
			Project:     cr.Project,
			Environment: cr.Environment,
			State:       cr.State,
			CreatedBy:   cr.CreatedBy,
			CreatedAt:   cr.CreatedAt,
		})
	}
	return out, nil
}
