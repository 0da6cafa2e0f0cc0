// Package middleware holds the HTTP middleware of the admin API: session
// authentication, the permission gate, request ids, access logging and
// request metrics.
package middleware
