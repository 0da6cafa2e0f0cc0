package endpoints

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/flagkeep/flagkeep/pkg/openapi"
	"github.com/flagkeep/flagkeep/pkg/permissions"
	"github.com/flagkeep/flagkeep/pkg/server"
	"github.com/flagkeep/flagkeep/pkg/service"
)

func RegisterGroupsEndpoints(s *server.Server) {
	groups := s.Groups
	registry := s.Registry
	logger := s.Logger.Named("routes/admin-api/group")
	tags := []string{"Users"}

	router := s.Admin.PathPrefix("/groups").Subrouter()
	registerRoutes(s, router, server.AdminPrefix+"/groups", []route{
		{
			method:      http.MethodGet,
			path:        "",
			permissions: requires(permissions.None),
			handler:     handleGetGroups(groups, registry, logger),
			operation: openapi.Operation{
				Tags:        tags,
				OperationID: "getAllGroups",
				Summary:     "Get a list of groups",
				Description: "Get a list of user groups for Role-Based Access Control",
				Responses: withStandard(openapi.Responses{
					http.StatusOK: openapi.CreateResponseSchema("groupsSchema"),
				}, http.StatusUnauthorized, http.StatusForbidden),
			},
		},
		{
			method:      http.MethodPost,
			path:        "",
			permissions: requires(permissions.CreateGroup),
			handler:     handleCreateGroup(groups, registry, logger),
			operation: openapi.Operation{
				Tags:          tags,
				OperationID:   "createGroup",
				Summary:       "Create a new group",
				Description:   "Create a new user group for Role-Based Access Control",
				RequestSchema: "createGroupSchema",
				Responses: withStandard(openapi.Responses{
					http.StatusOK: openapi.CreateResponseSchema("groupSchema"),
				}, http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusConflict),
			},
		},
		{
			method:      http.MethodGet,
			path:        "/{groupId:[0-9]+}",
			permissions: requires(permissions.None),
			handler:     handleGetGroup(groups, registry, logger),
			operation: openapi.Operation{
				Tags:        tags,
				OperationID: "getGroup",
				Summary:     "Get a single group",
				Description: "Get a single user group by group id",
				Parameters: []openapi.Parameter{
					{Name: "groupId", In: "path", Type: "integer", Description: "The id of the group"},
				},
				Responses: withStandard(openapi.Responses{
					http.StatusOK: openapi.CreateResponseSchema("groupSchema"),
				}, http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound),
			},
		},
		{
			method:      http.MethodPut,
			path:        "/{groupId:[0-9]+}",
			permissions: requires(permissions.UpdateGroup),
			handler:     handleUpdateGroup(groups, registry, logger),
			operation: openapi.Operation{
				Tags:          tags,
				OperationID:   "updateGroup",
				Summary:       "Update a group",
				Description:   "Update existing user group by group id. It overrides previous group details.",
				RequestSchema: "createGroupSchema",
				Parameters: []openapi.Parameter{
					{Name: "groupId", In: "path", Type: "integer", Description: "The id of the group"},
				},
				Responses: withStandard(openapi.Responses{
					http.StatusOK: openapi.CreateResponseSchema("groupSchema"),
				}, http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound, http.StatusConflict),
			},
		},
		{
			method:      http.MethodDelete,
			path:        "/{groupId:[0-9]+}",
			permissions: requires(permissions.DeleteGroup),
			handler:     handleDeleteGroup(groups, logger),
			operation: openapi.Operation{
				Tags:        tags,
				OperationID: "deleteGroup",
				Summary:     "Delete a single group",
				Description: "Delete a single user group by group id",
				Parameters: []openapi.Parameter{
					{Name: "groupId", In: "path", Type: "integer", Description: "The id of the group"},
				},
				Responses: withStandard(openapi.Responses{
					http.StatusOK: openapi.EmptyResponse,
				}, http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound),
			},
		},
	})
}

func handleGetGroups(groups *service.GroupService, registry *openapi.Registry, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := groups.GetAll(r.Context())
		if err != nil {
			respondWithError(w, logger, err)
			return
		}
		registry.RespondWithValidation(w, http.StatusOK, "groupsSchema", result)
	}
}

func handleGetGroup(groups *service.GroupService, registry *openapi.Registry, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := intVar(r, "groupId")
		if err != nil {
			respondWithError(w, logger, err)
			return
		}

		group, err := groups.Get(r.Context(), id)
		if err != nil {
			respondWithError(w, logger, err)
			return
		}
		registry.RespondWithValidation(w, http.StatusOK, "groupSchema", group)
	}
}

func handleCreateGroup(groups *service.GroupService, registry *openapi.Registry, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input service.GroupInput
		if err := decodeBody(r, registry, "createGroupSchema", &input); err != nil {
			respondWithError(w, logger, err)
			return
		}

		group, err := groups.Create(r.Context(), input)
		if err != nil {
			respondWithError(w, logger, err)
			return
		}
		registry.RespondWithValidation(w, http.StatusOK, "groupSchema", group)
	}
}

func handleUpdateGroup(groups *service.GroupService, registry *openapi.Registry, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := intVar(r, "groupId")
		if err != nil {
			respondWithError(w, logger, err)
			return
		}

		var input service.GroupInput
		if err := decodeBody(r, registry, "createGroupSchema", &input); err != nil {
			respondWithError(w, logger, err)
			return
		}

		group, err := groups.Update(r.Context(), id, input)
		if err != nil {
			respondWithError(w, logger, err)
			return
		}
		registry.RespondWithValidation(w, http.StatusOK, "groupSchema", group)
	}
}

func handleDeleteGroup(groups *service.GroupService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := intVar(r, "groupId")
		if err != nil {
			respondWithError(w, logger, err)
			return
		}

		if err := groups.Delete(r.Context(), id); err != nil {
			respondWithError(w, logger, err)
			return
		}
		respondEmpty(w, http.StatusOK)
	}
}
