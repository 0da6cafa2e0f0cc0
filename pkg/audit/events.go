package audit

import "fmt"

// Event types stored in the events table.
const (
	GroupCreated   = "group-created"
	GroupUpdated   = "group-updated"
	GroupDeleted   = "group-deleted"
	SegmentCreated = "segment-created"
	SegmentUpdated = "segment-updated"
	SegmentDeleted = "segment-deleted"
	ProjectCreated = "project-created"
	ProjectUpdated = "project-updated"
	ProjectDeleted = "project-deleted"
	RoleCreated    = "role-created"
	RoleUpdated    = "role-updated"
	RoleDeleted    = "role-deleted"
	UserLoggedIn   = "user-logged-in"
)

// ChangeEvent records a change to an administrative entity.
type ChangeEvent struct {
	Type      string
	CreatedBy string
	ClientIP  string
	Project   string
	// Subject names the changed entity for the log line, e.g. "group devs".
	Subject string
	Data    interface{}
	PreData interface{}
}

func (e ChangeEvent) MessageID() string {
	return e.Type
}

func (e ChangeEvent) Message() string {
	msg := fmt.Sprintf("%s: %s", e.CreatedBy, e.Type)
	if e.Subject != "" {
		msg += " " + e.Subject
	}
	if e.Project != "" {
		msg += " in project " + e.Project
	}
	return msg
}

func (e ChangeEvent) Severity() Severity {
	return SeverityInfo
}

func (e ChangeEvent) Facility() int {
	return FacilityAuthPriv
}

func (e ChangeEvent) StructuredData() map[string]map[string]string {
	sd := map[string]map[string]string{
		SDIDAuth: {
			"user": e.CreatedBy,
		},
		SDIDAction: {
			"operation": e.Type,
			"result":    "success",
		},
	}
	if e.ClientIP != "" {
		sd[SDIDClient] = map[string]string{"ip": e.ClientIP}
	}
	if e.Subject != "" || e.Project != "" {
		sd[SDIDSubject] = map[string]string{}
		if e.Subject != "" {
			sd[SDIDSubject]["entity"] = e.Subject
		}
		if e.Project != "" {
			sd[SDIDSubject]["project"] = e.Project
		}
	}
	return sd
}

func (e ChangeEvent) EventType() string { return e.Type }
func (e ChangeEvent) Actor() string     { return e.CreatedBy }
func (e ChangeEvent) ProjectID() string { return e.Project }

func (e ChangeEvent) Payload() (interface{}, interface{}) {
	return e.Data, e.PreData
}

// LoginEvent represents a console login attempt. Only successful logins
// are kept in the events table.
type LoginEvent struct {
	Username     string
	ClientIP     string
	Success      bool
	ErrorMessage string
}

func (e LoginEvent) MessageID() string {
	return "login"
}

func (e LoginEvent) Message() string {
	if e.Success {
		return fmt.Sprintf("%s successfully logged in", e.Username)
	}
	msg := fmt.Sprintf("%s failed to log in", e.Username)
	if e.ErrorMessage != "" {
		msg += ": " + e.ErrorMessage
	}
	return msg
}

func (e LoginEvent) Severity() Severity {
	if e.Success {
		return SeverityInfo
	}
	return SeverityWarning
}

func (e LoginEvent) Facility() int {
	return FacilityAuthPriv
}

func (e LoginEvent) StructuredData() map[string]map[string]string {
	result := "success"
	if !e.Success {
		result = "failure"
	}
	return map[string]map[string]string{
		SDIDAuth: {
			"user":          e.Username,
			"authenticator": "simple",
		},
		SDIDClient: {
			"ip": e.ClientIP,
		},
		SDIDAction: {
			"operation": "login",
			"result":    result,
		},
	}
}

// Record returns the persisted form of a successful login.
func (e LoginEvent) Record() ChangeEvent {
	return ChangeEvent{
		Type:      UserLoggedIn,
		CreatedBy: e.Username,
		ClientIP:  e.ClientIP,
		Data:      map[string]string{"username": e.Username},
	}
}
