// Package config provides configuration management for flagkeep.
//
// Configuration is read from flagkeep.yml in FLAGKEEP_CONFIG_PATH
// (default /etc/flagkeep) and overridden by FLAGKEEP_* environment
// variables. Every attribute remembers where its value came from, which
// is what "flagkeepctl configuration show" prints.
//
// # Configuration Sources
//
//   - Defaults
//   - Configuration file
//   - Environment variables (highest precedence)
//
// # Environment Variables
//
//   - FLAGKEEP_EDITION: open-source or enterprise
//   - FLAGKEEP_FLAGS: comma separated flags, e.g. "doraMetrics,UNLEASH_CLOUD=false"
//   - FLAGKEEP_SESSION_TTL: session token lifetime in seconds
//   - FLAGKEEP_SEGMENT_VALUES_LIMIT: maximum constraint values per segment
//   - FLAGKEEP_AUDIT_ENABLED: record audit events
//   - FLAGKEEP_LOG_LEVEL, FLAGKEEP_LOG_FORMAT: logger settings
//   - FLAGKEEP_CORS_ORIGINS: comma separated allowed origins
//
// Secrets are never read from the file: FLAGKEEP_AUTH_SECRET signs session
// tokens and DATABASE_URL locates the database.
//
// The running server picks up file changes through Watch and reloads on
// SIGHUP.
package config
