package endpoints

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/flagkeep/flagkeep/pkg/openapi"
	"github.com/flagkeep/flagkeep/pkg/permissions"
	"github.com/flagkeep/flagkeep/pkg/server"
	"github.com/flagkeep/flagkeep/pkg/service"
)

func RegisterRolesEndpoints(s *server.Server) {
	roles := s.Roles
	registry := s.Registry
	logger := s.Logger.Named("routes/admin-api/roles")
	tags := []string{"Users"}
	roleID := []openapi.Parameter{
		{Name: "roleId", In: "path", Type: "integer", Description: "The id of the role"},
	}

	router := s.Admin.PathPrefix("/roles").Subrouter()
	registerRoutes(s, router, server.AdminPrefix+"/roles", []route{
		{
			method:      http.MethodGet,
			path:        "",
			permissions: requires(permissions.ReadRole),
			handler:     handleGetRoles(roles, registry, logger),
			operation: openapi.Operation{
				Tags:        tags,
				OperationID: "getRoles",
				Summary:     "Get a list of roles",
				Description: "Get a list of all available roles, both built in and custom ones.",
				Responses: withStandard(openapi.Responses{
					http.StatusOK: openapi.CreateResponseSchema("rolesSchema"),
				}, http.StatusUnauthorized, http.StatusForbidden),
			},
		},
		{
			method:      http.MethodPost,
			path:        "/validate",
			permissions: requires(permissions.ReadRole),
			handler:     handleValidateRoleName(roles, registry, logger),
			operation: openapi.Operation{
				Tags:          tags,
				OperationID:   "validateRole",
				Summary:       "Validate a role name",
				Description:   "Check whether a role name is available. When roleId is given, that role may keep its name.",
				RequestSchema: "validateRoleSchema",
				Responses: withStandard(openapi.Responses{
					http.StatusOK: openapi.EmptyResponse,
				}, http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusConflict),
			},
		},
		{
			method:      http.MethodPost,
			path:        "",
			permissions: requires(permissions.CreateRole),
			handler:     handleCreateRole(roles, registry, logger),
			operation: openapi.Operation{
				Tags:          tags,
				OperationID:   "createRole",
				Summary:       "Create a new role",
				Description:   "Create a new custom role with the given permissions.",
				RequestSchema: "createRoleSchema",
				Responses: withStandard(openapi.Responses{
					http.StatusOK: openapi.CreateResponseSchema("roleWithPermissionsSchema"),
				}, http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusConflict),
			},
		},
		{
			method:      http.MethodGet,
			path:        "/{roleId:[0-9]+}",
			permissions: requires(permissions.ReadRole),
			handler:     handleGetRole(roles, registry, logger),
			operation: openapi.Operation{
				Tags:        tags,
				OperationID: "getRoleById",
				Summary:     "Get a single role",
				Description: "Get a single role and the permissions it grants.",
				Parameters:  roleID,
				Responses: withStandard(openapi.Responses{
					http.StatusOK: openapi.CreateResponseSchema("roleWithPermissionsSchema"),
				}, http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound),
			},
		},
		{
			method:      http.MethodPut,
			path:        "/{roleId:[0-9]+}",
			permissions: requires(permissions.UpdateRole),
			handler:     handleUpdateRole(roles, registry, logger),
			operation: openapi.Operation{
				Tags:          tags,
				OperationID:   "updateRole",
				Summary:       "Update a role",
				Description:   "Replace the name, description and permissions of a custom role.",
				RequestSchema: "createRoleSchema",
				Parameters:    roleID,
				Responses: withStandard(openapi.Responses{
					http.StatusOK: openapi.CreateResponseSchema("roleWithPermissionsSchema"),
				}, http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound, http.StatusConflict),
			},
		},
		{
			method:      http.MethodDelete,
			path:        "/{roleId:[0-9]+}",
			permissions: requires(permissions.DeleteRole),
			handler:     handleDeleteRole(roles, logger),
			operation: openapi.Operation{
				Tags:        tags,
				OperationID: "deleteRole",
				Summary:     "Delete a role",
				Description: "Delete a custom role. Built in roles and roles held by users or groups can not be deleted.",
				Parameters:  roleID,
				Responses: withStandard(openapi.Responses{
					http.StatusOK: openapi.EmptyResponse,
				}, http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound),
			},
		},
	})
}

func handleGetRoles(roles *service.RoleService, registry *openapi.Registry, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := roles.GetAll(r.Context())
		if err != nil {
			respondWithError(w, logger, err)
			return
		}
		registry.RespondWithValidation(w, http.StatusOK, "rolesSchema", result)
	}
}

func handleValidateRoleName(roles *service.RoleService, registry *openapi.Registry, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Name   string `json:"name"`
			RoleID int    `json:"roleId"`
		}
		if err := decodeBody(r, registry, "validateRoleSchema", &body); err != nil {
			respondWithError(w, logger, err)
			return
		}

		if err := roles.ValidateName(r.Context(), body.Name, body.RoleID); err != nil {
			respondWithError(w, logger, err)
			return
		}
		respondEmpty(w, http.StatusOK)
	}
}

func handleGetRole(roles *service.RoleService, registry *openapi.Registry, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := intVar(r, "roleId")
		if err != nil {
			respondWithError(w, logger, err)
			return
		}

		role, err := roles.Get(r.Context(), id)
		if err != nil {
			respondWithError(w, logger, err)
			return
		}
		registry.RespondWithValidation(w, http.StatusOK, "roleWithPermissionsSchema", role)
	}
}

func handleCreateRole(roles *service.RoleService, registry *openapi.Registry, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input service.RoleInput
		if err := decodeBody(r, registry, "createRoleSchema", &input); err != nil {
			respondWithError(w, logger, err)
			return
		}

		role, err := roles.Create(r.Context(), input)
		if err != nil {
			respondWithError(w, logger, err)
			return
		}
		registry.RespondWithValidation(w, http.StatusOK, "roleWithPermissionsSchema", role)
	}
}

func handleUpdateRole(roles *service.RoleService, registry *openapi.Registry, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := intVar(r, "roleId")
		if err != nil {
			respondWithError(w, logger, err)
			return
		}

		var input service.RoleInput
		if err := decodeBody(r, registry, "createRoleSchema", &input); err != nil {
			respondWithError(w, logger, err)
			return
		}

		role, err := roles.Update(r.Context(), id, input)
		if err != nil {
			respondWithError(w, logger, err)
			return
		}
		registry.RespondWithValidation(w, http.StatusOK, "roleWithPermissionsSchema", role)
	}
}

func handleDeleteRole(roles *service.RoleService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := intVar(r, "roleId")
		if err != nil {
			respondWithError(w, logger, err)
			return
		}

		if err := roles.Delete(r.Context(), id); err != nil {
			respondWithError(w, logger, err)
			return
		}
		respondEmpty(w, http.StatusOK)
	}
}
