package endpoints

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/flagkeep/flagkeep/pkg/openapi"
	"github.com/flagkeep/flagkeep/pkg/server"
	"github.com/flagkeep/flagkeep/pkg/server/store"
)

const healthCheckTimeout = 5 * time.Second

// Health is the body of the health endpoint.
type Health struct {
	Health string `json:"health"`
}

// RegisterHealthEndpoints registers the unauthenticated operational
// endpoints: health, prometheus metrics and the OpenAPI document.
func RegisterHealthEndpoints(s *server.Server) {
	logger := s.Logger.Named("routes/health-check")

	registerRoutes(s, s.Router, "", []route{
		{
			method:  http.MethodGet,
			path:    "/health",
			handler: handleHealth(s.HealthStore, s.Registry, logger),
			operation: openapi.Operation{
				Tags:        []string{"Operational"},
				OperationID: "getHealth",
				Summary:     "Get instance operational status",
				Description: "This operation returns information about whether this instance is healthy and ready to serve requests.",
				Responses: openapi.Responses{
					http.StatusOK:                  openapi.CreateResponseSchema("healthSchema"),
					http.StatusInternalServerError: openapi.CreateResponseSchema("healthSchema"),
				},
			},
		},
	})

	s.Router.Handle("/internal-backstage/prometheus", s.Metrics.Handler()).Methods(http.MethodGet)
	s.Router.Handle("/docs/openapi.json", s.Registry).Methods(http.MethodGet)
}

func handleHealth(healthStore store.HealthStore, registry *openapi.Registry, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()

		if err := healthStore.CheckConnectivity(ctx); err != nil {
			logger.Error("health check failed", zap.Error(err))
			registry.RespondWithValidation(w, http.StatusInternalServerError, "healthSchema", Health{Health: "BAD"})
			return
		}
		registry.RespondWithValidation(w, http.StatusOK, "healthSchema", Health{Health: "GOOD"})
	}
}
