package store

import (
	"context"

	"github.com/flagkeep/flagkeep/pkg/model"
)

// EventsQuery filters the audit trail. A zero Limit means no limit.
type EventsQuery struct {
	Project string
	Limit   int
	Offset  int
}

// EventsStore reads the audit trail
type EventsStore interface {
	// SearchEvents returns matching events, newest first, and the total
	// number of matching events
	SearchEvents(ctx context.Context, query EventsQuery) ([]model.Event, int, error)
}
