package endpoints

import (
	"github.com/flagkeep/flagkeep/pkg/server"
)

// RegisterAll registers all API endpoints on the server
func RegisterAll(srv *server.Server) {
	RegisterHealthEndpoints(srv)
	RegisterAuthEndpoints(srv)
	RegisterGroupsEndpoints(srv)
	RegisterSegmentsEndpoints(srv)
	RegisterProjectsEndpoints(srv)
	RegisterRolesEndpoints(srv)
	RegisterEventsEndpoints(srv)
	RegisterUIConfigEndpoints(srv)
}
