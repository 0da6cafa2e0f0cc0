package endpoints

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/flagkeep/flagkeep/pkg/openapi"
	"github.com/flagkeep/flagkeep/pkg/permissions"
	"github.com/flagkeep/flagkeep/pkg/server"
	"github.com/flagkeep/flagkeep/pkg/server/store"
	"github.com/flagkeep/flagkeep/pkg/service"
)

func RegisterEventsEndpoints(s *server.Server) {
	events := s.Events
	registry := s.Registry
	logger := s.Logger.Named("routes/admin-api/events")

	registerRoutes(s, s.Admin, server.AdminPrefix, []route{
		{
			method:      http.MethodGet,
			path:        "/events",
			permissions: requires(permissions.Admin),
			handler:     handleSearchEvents(events, registry, logger),
			operation: openapi.Operation{
				Tags:        []string{"Events"},
				OperationID: "getEvents",
				Summary:     "Get the most recent events",
				Description: "Returns the audit trail, newest first, optionally narrowed to one project.",
				Parameters: []openapi.Parameter{
					{Name: "project", In: "query", Type: "string", Description: "Only events of this project"},
					{Name: "limit", In: "query", Type: "integer", Description: "How many events to return"},
					{Name: "offset", In: "query", Type: "integer", Description: "How many events to skip"},
				},
				Responses: withStandard(openapi.Responses{
					http.StatusOK: openapi.CreateResponseSchema("eventsSchema"),
				}, http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden),
			},
		},
	})
}

func handleSearchEvents(events *service.EventService, registry *openapi.Registry, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := intQuery(r, "limit")
		if err != nil {
			respondWithError(w, logger, err)
			return
		}
		offset, err := intQuery(r, "offset")
		if err != nil {
			respondWithError(w, logger, err)
			return
		}

		result, err := events.Search(r.Context(), store.EventsQuery{
			Project: r.URL.Query().Get("project"),
			Limit:   limit,
			Offset:  offset,
		})
		if err != nil {
			respondWithError(w, logger, err)
			return
		}
		registry.RespondWithValidation(w, http.StatusOK, "eventsSchema", result)
	}
}
