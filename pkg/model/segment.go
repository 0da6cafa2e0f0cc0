package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Constraint is a single context rule of a segment.
type Constraint struct {
	ContextName     string   `json:"contextName" yaml:"contextName"`
	Operator        string   `json:"operator" yaml:"operator"`
	Values          []string `json:"values,omitempty" yaml:"values,omitempty"`
	Value           string   `json:"value,omitempty" yaml:"value,omitempty"`
	Inverted        bool     `json:"inverted,omitempty" yaml:"inverted,omitempty"`
	CaseInsensitive bool     `json:"caseInsensitive,omitempty" yaml:"caseInsensitive,omitempty"`
}

// Constraints is stored as a jsonb array.
type Constraints []Constraint

// Value implements driver.Valuer.
func (c Constraints) Value() (driver.Value, error) {
	if c == nil {
		return "[]", nil
	}
	data, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner.
func (c *Constraints) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*c = Constraints{}
		return nil
	case []byte:
		return json.Unmarshal(v, c)
	case string:
		return json.Unmarshal([]byte(v), c)
	default:
		return fmt.Errorf("unsupported type for constraints: %T", src)
	}
}

// ValueCount returns the number of values across all constraints.
func (c Constraints) ValueCount() int {
	n := 0
	for _, constraint := range c {
		n += len(constraint.Values)
	}
	return n
}

// Segment is a reusable set of constraints. Project is set for segments
// that belong to a single project.
type Segment struct {
	ID          int         `gorm:"column:id;primaryKey;autoIncrement"`
	Name        string      `gorm:"column:name;uniqueIndex"`
	Description string      `gorm:"column:description"`
	Project     *string     `gorm:"column:segment_project_id"`
	Constraints Constraints `gorm:"column:constraints;type:jsonb"`
	CreatedBy   string      `gorm:"column:created_by"`
	CreatedAt   time.Time   `gorm:"column:created_at;autoCreateTime"`
}

func (Segment) TableName() string {
	return "segments"
}
