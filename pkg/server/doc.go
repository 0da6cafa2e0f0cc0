// Package server provides the HTTP server of the flagkeep admin API.
//
// The Server wires stores, services, the OpenAPI registry and a
// gorilla/mux router. Requests under /api/admin pass the session
// authenticator before reaching a handler.
//
// # Server Setup
//
//	srv, err := server.NewServer(server.Options{DB: db, Issuer: issuer, Logger: logger})
//	if err != nil {
//	    return err
//	}
//	endpoints.RegisterAll(srv)
//	return srv.Start()
//
// # Endpoints
//
// API endpoints are registered via the endpoints subpackage:
//
//   - /api/admin/groups, /api/admin/segments, /api/admin/projects, /api/admin/roles
//   - /api/admin/events, /api/admin/user, /api/admin/ui-config
//   - /auth/simple/login
//   - /health, /internal-backstage/prometheus, /docs/openapi.json
package server
