package endpoints

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/flagkeep/flagkeep/pkg/openapi"
	"github.com/flagkeep/flagkeep/pkg/permissions"
	"github.com/flagkeep/flagkeep/pkg/server"
	"github.com/flagkeep/flagkeep/pkg/server/middleware"
)

// route declares one endpoint: where it lives, who may call it and how it
// is documented.
type route struct {
	method      string
	path        string
	permissions []permissions.Permission
	handler     http.HandlerFunc
	operation   openapi.Operation
}

func requires(perms ...permissions.Permission) []permissions.Permission {
	return perms
}

// registerRoutes documents each route in the OpenAPI registry and mounts
// it on router behind its permission gate. prefix is the path router is
// mounted at. Routes without permissions are public.
func registerRoutes(s *server.Server, router *mux.Router, prefix string, routes []route) {
	for _, rt := range routes {
		if err := s.Registry.ValidPath(rt.method, prefix+rt.path, rt.operation); err != nil {
			panic(fmt.Sprintf("invalid route declaration: %v", err))
		}

		var h http.Handler = rt.handler
		if len(rt.permissions) > 0 {
			h = middleware.RequirePermission(rt.permissions...)(h)
		}
		router.Handle(rt.path, h).Methods(rt.method)
	}
}

func withStandard(responses openapi.Responses, codes ...int) openapi.Responses {
	return responses.With(openapi.StandardResponses(codes...))
}
