// Package service implements the business rules of the admin API.
//
// Endpoints decode and validate request bodies against the OpenAPI
// schemas, then call a service. Services check the rules that need
// storage (name uniqueness, referential presence, protected entities),
// write audit events and return response shapes ready to be serialized.
// Every error meant for clients is an *apierr.Error.
package service
