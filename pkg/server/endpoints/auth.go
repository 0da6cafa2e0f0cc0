package endpoints

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/flagkeep/flagkeep/pkg/openapi"
	"github.com/flagkeep/flagkeep/pkg/permissions"
	"github.com/flagkeep/flagkeep/pkg/server"
	"github.com/flagkeep/flagkeep/pkg/service"
)

// RegisterAuthEndpoints registers the public login endpoint and the
// current user endpoint of the admin API.
func RegisterAuthEndpoints(s *server.Server) {
	users := s.Users
	registry := s.Registry
	logger := s.Logger.Named("routes/auth")

	login := s.Router.PathPrefix("/auth/simple").Subrouter()
	registerRoutes(s, login, "/auth/simple", []route{
		{
			method:  http.MethodPost,
			path:    "/login",
			handler: handleLogin(users, registry, logger),
			operation: openapi.Operation{
				Tags:          []string{"Auth"},
				OperationID:   "login",
				Summary:       "Log in with username and password",
				Description:   "Checks the credentials and returns a session token to pass in the Authorization header.",
				RequestSchema: "loginSchema",
				Responses: withStandard(openapi.Responses{
					http.StatusOK: openapi.CreateResponseSchema("sessionSchema"),
					http.StatusUnauthorized: {
						Description: "The username or password is wrong.",
						Schema:      "errorSchema",
					},
				}, http.StatusBadRequest),
			},
		},
	})

	registerRoutes(s, s.Admin, server.AdminPrefix, []route{
		{
			method:      http.MethodGet,
			path:        "/user",
			permissions: requires(permissions.None),
			handler:     handleMe(users, registry, logger),
			operation: openapi.Operation{
				Tags:        []string{"Users"},
				OperationID: "getMe",
				Summary:     "Get your own user details",
				Description: "Detailed information about the current user and the permissions they hold.",
				Responses: withStandard(openapi.Responses{
					http.StatusOK: openapi.CreateResponseSchema("meSchema"),
				}, http.StatusUnauthorized),
			},
		},
	})
}

func handleLogin(users *service.UserService, registry *openapi.Registry, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input service.LoginInput
		if err := decodeBody(r, registry, "loginSchema", &input); err != nil {
			respondWithError(w, logger, err)
			return
		}

		session, err := users.Login(r.Context(), input)
		if err != nil {
			respondWithError(w, logger, err)
			return
		}
		registry.RespondWithValidation(w, http.StatusOK, "sessionSchema", session)
	}
}

func handleMe(users *service.UserService, registry *openapi.Registry, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		me, err := users.Me(r.Context())
		if err != nil {
			respondWithError(w, logger, err)
			return
		}
		registry.RespondWithValidation(w, http.StatusOK, "meSchema", me)
	}
}
