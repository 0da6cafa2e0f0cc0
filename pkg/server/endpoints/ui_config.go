package endpoints

import (
	"net/http"

	"github.com/flagkeep/flagkeep/pkg/navigation"
	"github.com/flagkeep/flagkeep/pkg/openapi"
	"github.com/flagkeep/flagkeep/pkg/permissions"
	"github.com/flagkeep/flagkeep/pkg/server"
	"github.com/flagkeep/flagkeep/pkg/service"
)

// UIConfig is what the console needs to know about the instance.
type UIConfig struct {
	Version            string          `json:"version"`
	Edition            string          `json:"edition"`
	SegmentValuesLimit int             `json:"segmentValuesLimit"`
	Flags              map[string]bool `json:"flags"`
}

// AdminRoutes are the admin routes and the tabs shown for a location.
type AdminRoutes struct {
	Routes []navigation.Link `json:"routes"`
	navigation.TabsMenu
}

// Navigation is the admin navigation menu.
type Navigation struct {
	Items []navigation.MenuItem `json:"items"`
}

func RegisterUIConfigEndpoints(s *server.Server) {
	cfg := s.Config
	version := s.Version
	registry := s.Registry
	tags := []string{"Admin UI"}

	router := s.Admin.PathPrefix("/ui-config").Subrouter()
	registerRoutes(s, router, server.AdminPrefix+"/ui-config", []route{
		{
			method:      http.MethodGet,
			path:        "",
			permissions: requires(permissions.None),
			handler:     handleUIConfig(cfg, version, registry),
			operation: openapi.Operation{
				Tags:        tags,
				OperationID: "getUiConfig",
				Summary:     "Get UI configuration",
				Description: "Retrieves the version, edition and enabled feature flags of the instance.",
				Responses: withStandard(openapi.Responses{
					http.StatusOK: openapi.CreateResponseSchema("uiConfigSchema"),
				}, http.StatusUnauthorized),
			},
		},
		{
			method:      http.MethodGet,
			path:        "/admin-routes",
			permissions: requires(permissions.None),
			handler:     handleAdminRoutes(cfg, registry),
			operation: openapi.Operation{
				Tags:        tags,
				OperationID: "getAdminRoutes",
				Summary:     "Get the admin routes",
				Description: "Lists the admin console routes and computes the tabs for the given location.",
				Parameters: []openapi.Parameter{
					{Name: "pathname", In: "query", Type: "string", Description: "The current location of the console"},
				},
				Responses: withStandard(openapi.Responses{
					http.StatusOK: openapi.CreateResponseSchema("adminRoutesSchema"),
				}, http.StatusUnauthorized),
			},
		},
		{
			method:      http.MethodGet,
			path:        "/navigation",
			permissions: requires(permissions.None),
			handler:     handleNavigation(cfg, registry),
			operation: openapi.Operation{
				Tags:        tags,
				OperationID: "getAdminNavigation",
				Summary:     "Get the admin navigation menu",
				Description: "Lists the admin menu entries with the dividers to render between them.",
				Responses: withStandard(openapi.Responses{
					http.StatusOK: openapi.CreateResponseSchema("navigationSchema"),
				}, http.StatusUnauthorized),
			},
		},
	})
}

func handleUIConfig(cfg service.ConfigSource, version string, registry *openapi.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := cfg()
		registry.RespondWithValidation(w, http.StatusOK, "uiConfigSchema", UIConfig{
			Version:            version,
			Edition:            c.Edition,
			SegmentValuesLimit: c.SegmentValuesLimit,
			Flags:              c.EnabledFlags(),
		})
	}
}

func handleAdminRoutes(cfg service.ConfigSource, registry *openapi.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		routes := navigation.Routes(cfg())
		registry.RespondWithValidation(w, http.StatusOK, "adminRoutesSchema", AdminRoutes{
			Routes:   routes,
			TabsMenu: navigation.Tabs(routes, r.URL.Query().Get("pathname")),
		})
	}
}

func handleNavigation(cfg service.ConfigSource, registry *openapi.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		registry.RespondWithValidation(w, http.StatusOK, "navigationSchema", Navigation{
			Items: navigation.Menu(navigation.Routes(cfg())),
		})
	}
}
