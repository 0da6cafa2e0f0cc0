// Package openapi holds the OpenAPI document of the admin API.
//
// Schemas are declared in Go as kin-openapi schema values and registered
// under #/components/schemas. Route registration records an Operation for
// every endpoint through Registry.ValidPath, so the served document always
// matches the mounted routes.
//
// The same schemas validate traffic: ValidateRequest checks request bodies
// and reports mismatches as BadDataError with one detail per problem, and
// RespondWithValidation checks outgoing payloads, logging a warning when a
// payload drifts from its schema.
package openapi
