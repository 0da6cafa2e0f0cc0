package service

import (
	"context"
	"time"

	"github.com/flagkeep/flagkeep/pkg/apierr"
	"github.com/flagkeep/flagkeep/pkg/model"
	"github.com/flagkeep/flagkeep/pkg/server/store"
)

// Event search limits.
const (
	DefaultEventsLimit = 50
	MaxEventsLimit     = 1000
)

// Event is an entry of the audit trail.
type Event struct {
	ID        int        `json:"id"`
	Type      string     `json:"type"`
	CreatedBy string     `json:"createdBy"`
	CreatedAt time.Time  `json:"createdAt"`
	Project   *string    `json:"project"`
	Data      model.JSON `json:"data"`
	PreData   model.JSON `json:"preData"`
}

// Events is the body of the event listing.
type Events struct {
	Version     int     `json:"version"`
	Events      []Event `json:"events"`
	TotalEvents int     `json:"totalEvents"`
}

// EventService reads the audit trail.
type EventService struct {
	events store.EventsStore
}

// NewEventService creates an EventService.
func NewEventService(events store.EventsStore) *EventService {
	return &EventService{events: events}
}

// Search returns events, newest first. A zero limit uses the default.
func (s *EventService) Search(ctx context.Context, query store.EventsQuery) (*Events, error) {
	if query.Limit < 0 || query.Offset < 0 {
		return nil, apierr.NewBadData("limit and offset must not be negative")
	}
	if query.Limit == 0 {
		query.Limit = DefaultEventsLimit
	}
	if query.Limit > MaxEventsLimit {
		query.Limit = MaxEventsLimit
	}

	events, total, err := s.events.SearchEvents(ctx, query)
	if err != nil {
		return nil, err
	}

	out := &Events{Version: 1, Events: make([]Event, 0, len(events)), TotalEvents: total}
	for _, e := range events {
		out.Events = append(out.Events, Event{
			ID:        e.ID,
			Type:      e.Type,
			CreatedBy: e.CreatedBy,
			CreatedAt: e.CreatedAt,
			Project:   e.Project,
			Data:      e.Data,
			PreData:   e.PreData,
		})
	}
	return out, nil
}
