package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// Store persists audit records to the events table
type Store struct {
	db *sql.DB
}

// NewStoreWithDB creates a store with an existing database connection
func NewStoreWithDB(db *sql.DB) *Store {
	return &Store{db: db}
}

// Save persists a record to the database
func (s *Store) Save(ctx context.Context, record Record) error {
	if s.db == nil {
		return nil
	}

	data, preData := record.Payload()
	dataJSON, err := marshalNullable(data)
	if err != nil {
		return fmt.Errorf("failed to encode event data: %w", err)
	}
	preDataJSON, err := marshalNullable(preData)
	if err != nil {
		return fmt.Errorf("failed to encode event pre-data: %w", err)
	}

	var project interface{}
	if record.ProjectID() != "" {
		project = record.ProjectID()
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO events (type, created_by, project, data, pre_data)
		VALUES ($1, $2, $3, $4, $5)
	`,
		record.EventType(),
		record.Actor(),
		project,
		dataJSON,
		preDataJSON,
	)
	return err
}

func marshalNullable(v interface{}) (interface{}, error) {
	if v == nil {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// DB returns the underlying database connection (for testing)
func (s *Store) DB() *sql.DB {
	return s.db
}
