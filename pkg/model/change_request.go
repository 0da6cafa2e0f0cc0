package model

import "time"

// Change request states.
const (
	ChangeRequestDraft     = "Draft"
	ChangeRequestInReview  = "In review"
	ChangeRequestApproved  = "Approved"
	ChangeRequestApplied   = "Applied"
	ChangeRequestCancelled = "Cancelled"
	ChangeRequestRejected  = "Rejected"
	ChangeRequestScheduled = "Scheduled"
)

// OpenChangeRequestStates are the states of change requests still awaiting
// an outcome.
var OpenChangeRequestStates = []string{
	ChangeRequestDraft, ChangeRequestInReview, ChangeRequestApproved, ChangeRequestScheduled,
}

// ClosedChangeRequestStates are terminal states.
var ClosedChangeRequestStates = []string{
	ChangeRequestApplied, ChangeRequestCancelled, ChangeRequestRejected,
}

// ChangeRequest is a proposed set of changes to an environment of a project.
type ChangeRequest struct {
	ID          int       `gorm:"column:id;primaryKey;autoIncrement"`
	Project     string    `gorm:"column:project"`
	Environment string    `gorm:"column:environment"`
	Title       string    `gorm:"column:title"`
	State       string    `gorm:"column:state"`
	CreatedBy   string    `gorm:"column:created_by"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (ChangeRequest) TableName() string {
	return "change_requests"
}
