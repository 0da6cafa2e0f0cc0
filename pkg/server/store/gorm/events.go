package gorm

import (
	"context"

	"gorm.io/gorm"

	"github.com/flagkeep/flagkeep/pkg/model"
	"github.com/flagkeep/flagkeep/pkg/server/store"
)

// Ensure EventsStore implements store.EventsStore
var _ store.EventsStore = (*EventsStore)(nil)

// EventsStore implements store.EventsStore using GORM
type EventsStore struct {
	db *gorm.DB
}

// NewEventsStore creates a new EventsStore
func NewEventsStore(db *gorm.DB) *EventsStore {
	return &EventsStore{db: db}
}

func (s *EventsStore) filtered(ctx context.Context, query store.EventsQuery) *gorm.DB {
	tx := s.db.WithContext(ctx).Model(&model.Event{})
	if query.Project != "" {
		tx = tx.Where("project = ?", query.Project)
	}
	return tx
}

// SearchEvents returns matching events, newest first, and their total
func (s *EventsStore) SearchEvents(ctx context.Context, query store.EventsQuery) ([]model.Event, int, error) {
	var total int64
	if err := s.filtered(ctx, query).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	tx := s.filtered(ctx, query).Order("created_at DESC").Order("id DESC")
	if query.Limit > 0 {
		tx = tx.Limit(query.Limit)
	}
	if query.Offset > 0 {
		tx = tx.Offset(query.Offset)
	}

	var events []model.Event
	if err := tx.Find(&events).Error; err != nil {
		return nil, 0, err
	}
	return events, int(total), nil
}
