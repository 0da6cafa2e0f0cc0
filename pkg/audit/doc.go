// Package audit provides the audit trail of administrative changes.
//
// Every change to groups, segments, projects and roles, and every console
// login, is written as an RFC5424 syslog line. Change events are also
// stored in the events table, which backs the event log of the console.
//
// # Event Types
//
//   - ChangeEvent: group, segment, project and role changes
//   - LoginEvent: successful and failed logins
//
// # Usage
//
//	auditor := audit.NewAuditor(audit.NewLogger(), audit.NewStoreWithDB(sqlDB), cfg.AuditEnabled, logger)
//	auditor.Log(ctx, audit.ChangeEvent{
//	    Type:      audit.GroupCreated,
//	    CreatedBy: "admin",
//	    Subject:   "group devs",
//	    Data:      group,
//	})
//
// Auditing is switched off with audit_enabled: false.
package audit
