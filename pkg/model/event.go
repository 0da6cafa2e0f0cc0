package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// JSON is a jsonb column holding an arbitrary document.
type JSON json.RawMessage

// Value implements driver.Valuer.
func (j JSON) Value() (driver.Value, error) {
	if len(j) == 0 {
		return nil, nil
	}
	return string(j), nil
}

// Scan implements sql.Scanner.
func (j *JSON) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*j = nil
	case []byte:
		*j = append((*j)[:0], v...)
	case string:
		*j = JSON(v)
	default:
		return fmt.Errorf("unsupported type for json column: %T", src)
	}
	return nil
}

// MarshalJSON returns the raw document, or null when empty.
func (j JSON) MarshalJSON() ([]byte, error) {
	if len(j) == 0 {
		return []byte("null"), nil
	}
	return j, nil
}

// UnmarshalJSON stores a copy of data.
func (j *JSON) UnmarshalJSON(data []byte) error {
	*j = append((*j)[:0], data...)
	return nil
}

// Event is a row of the audit trail.
type Event struct {
	ID        int       `gorm:"column:id;primaryKey;autoIncrement"`
	Type      string    `gorm:"column:type"`
	CreatedBy string    `gorm:"column:created_by"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	Project   *string   `gorm:"column:project"`
	Data      JSON      `gorm:"column:data;type:jsonb"`
	PreData   JSON      `gorm:"column:pre_data;type:jsonb"`
}

func (Event) TableName() string {
	return "events"
}
