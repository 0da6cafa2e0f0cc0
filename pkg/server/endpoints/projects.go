package endpoints

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/flagkeep/flagkeep/pkg/apierr"
	"github.com/flagkeep/flagkeep/pkg/openapi"
	"github.com/flagkeep/flagkeep/pkg/permissions"
	"github.com/flagkeep/flagkeep/pkg/server"
	"github.com/flagkeep/flagkeep/pkg/server/middleware"
	"github.com/flagkeep/flagkeep/pkg/service"
)

const projectIDPath = "/{" + middleware.ProjectVar + ":[a-zA-Z0-9_~.-]+}"

func RegisterProjectsEndpoints(s *server.Server) {
	projects := s.Projects
	segments := s.Segments
	changeRequests := s.ChangeRequests
	registry := s.Registry
	logger := s.Logger.Named("routes/admin-api/project")
	tags := []string{"Projects"}
	projectID := []openapi.Parameter{
		{Name: middleware.ProjectVar, In: "path", Type: "string", Description: "The id of the project"},
	}

	router := s.Admin.PathPrefix("/projects").Subrouter()
	registerRoutes(s, router, server.AdminPrefix+"/projects", []route{
		{
			method:      http.MethodGet,
			path:        "",
			permissions: requires(permissions.None),
			handler:     handleGetProjects(projects, registry, logger),
			operation: openapi.Operation{
				Tags:        tags,
				OperationID: "getProjects",
				Summary:     "Get a list of all projects.",
				Description: "This endpoint returns an list of all the projects in the instance.",
				Responses: withStandard(openapi.Responses{
					http.StatusOK: openapi.CreateResponseSchema("projectsSchema"),
				}, http.StatusUnauthorized, http.StatusForbidden),
			},
		},
		{
			method:      http.MethodPost,
			path:        "/validate",
			permissions: requires(permissions.CreateProject),
			handler:     handleValidateProjectID(projects, registry, logger),
			operation: openapi.Operation{
				Tags:          tags,
				OperationID:   "validateProject",
				Summary:       "Validate project ID",
				Description:   "Check whether the provided data can be used to create or update a project.",
				RequestSchema: "validateProjectSchema",
				Responses: withStandard(openapi.Responses{
					http.StatusOK: openapi.EmptyResponse,
				}, http.StatusBadRequest, http.StatusUnauthorized, http.StatusConflict),
			},
		},
		{
			method:      http.MethodPost,
			path:        "",
			permissions: requires(permissions.CreateProject),
			handler:     handleCreateProject(projects, registry, logger),
			operation: openapi.Operation{
				Tags:          tags,
				OperationID:   "createProject",
				Summary:       "Create project",
				Description:   "Create a new project. The creator becomes the owner of the project.",
				RequestSchema: "createProjectSchema",
				Responses: withStandard(openapi.Responses{
					http.StatusCreated: openapi.CreateResponseSchema("createdProjectSchema"),
				}, http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusConflict),
			},
		},
		{
			method:      http.MethodGet,
			path:        projectIDPath,
			permissions: requires(permissions.None),
			handler:     handleGetProjectOverview(projects, registry, logger),
			operation: openapi.Operation{
				Tags:        tags,
				OperationID: "getProjectOverview",
				Summary:     "Get an overview of a project.",
				Description: "This endpoint returns an overview of the specified projects stats, project health, number of members, which environments are configured, and the features in the project.",
				Parameters: append(projectID[:1:1], openapi.Parameter{
					Name: "archived", In: "query", Type: "boolean", Description: "List archived features instead of active ones",
				}),
				Responses: withStandard(openapi.Responses{
					http.StatusOK: openapi.CreateResponseSchema("projectOverviewSchema"),
				}, http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound),
			},
		},
		{
			method:      http.MethodPut,
			path:        projectIDPath,
			permissions: requires(permissions.UpdateProject),
			handler:     handleUpdateProject(projects, registry, logger),
			operation: openapi.Operation{
				Tags:          tags,
				OperationID:   "updateProject",
				Summary:       "Update project",
				Description:   "Update the name, description, mode and default stickiness of a project.",
				RequestSchema: "createProjectSchema",
				Parameters:    projectID,
				Responses: withStandard(openapi.Responses{
					http.StatusOK: openapi.EmptyResponse,
				}, http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound),
			},
		},
		{
			method:      http.MethodDelete,
			path:        projectIDPath,
			permissions: requires(permissions.DeleteProject),
			handler:     handleDeleteProject(projects, logger),
			operation: openapi.Operation{
				Tags:        tags,
				OperationID: "deleteProject",
				Summary:     "Delete project",
				Description: "Permanently delete the provided project. All feature toggles in the project must be archived before you can delete it. This permanently deletes the project and its archived feature toggles. It can not be undone.",
				Parameters:  projectID,
				Responses: withStandard(openapi.Responses{
					http.StatusOK: openapi.EmptyResponse,
				}, http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound),
			},
		},
		{
			method:      http.MethodGet,
			path:        projectIDPath + "/dora",
			permissions: requires(permissions.None),
			handler:     handleGetProjectDora(projects, registry, logger),
			operation: openapi.Operation{
				Tags:        tags,
				OperationID: "getProjectDora",
				Summary:     "Get an overview project dora metrics.",
				Description: "This endpoint returns an overview of the specified dora metrics",
				Parameters:  projectID,
				Responses: withStandard(openapi.Responses{
					http.StatusOK: openapi.CreateResponseSchema("projectDoraMetricsSchema"),
				}, http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound),
			},
		},
		{
			method:      http.MethodGet,
			path:        projectIDPath + "/segments",
			permissions: requires(permissions.None),
			handler:     handleGetProjectSegments(segments, registry, logger),
			operation: openapi.Operation{
				Tags:        []string{"Segments"},
				OperationID: "getSegmentsByProject",
				Summary:     "Get the segments of a project",
				Description: "Retrieves the segments scoped to the given project.",
				Parameters:  projectID,
				Responses: withStandard(openapi.Responses{
					http.StatusOK: openapi.CreateResponseSchema("segmentsSchema"),
				}, http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound),
			},
		},
		{
			method:      http.MethodGet,
			path:        projectIDPath + "/change-requests",
			permissions: requires(permissions.None),
			handler:     handleGetProjectChangeRequests(changeRequests, registry, logger),
			operation: openapi.Operation{
				Tags:        []string{"Change Requests"},
				OperationID: "getProjectChangeRequests",
				Summary:     "Get the change requests of a project",
				Description: "Lists the change requests of a project, optionally only the open or the closed ones.",
				Parameters: append(projectID[:1:1], openapi.Parameter{
					Name: "state", In: "query", Type: "string", Description: "Either open or closed",
				}),
				Responses: withStandard(openapi.Responses{
					http.StatusOK: openapi.CreateResponseSchema("changeRequestsSchema"),
				}, http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound),
			},
		},
	})
}

func handleGetProjects(projects *service.ProjectService, registry *openapi.Registry, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := projects.GetAll(r.Context())
		if err != nil {
			respondWithError(w, logger, err)
			return
		}
		registry.RespondWithValidation(w, http.StatusOK, "projectsSchema", result)
	}
}

func handleValidateProjectID(projects *service.ProjectService, registry *openapi.Registry, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			ID string `json:"id"`
		}
		if err := decodeBody(r, registry, "validateProjectSchema", &body); err != nil {
			respondWithError(w, logger, err)
			return
		}

		if err := projects.ValidateID(r.Context(), body.ID); err != nil {
			respondWithError(w, logger, err)
			return
		}
		respondEmpty(w, http.StatusOK)
	}
}

func handleCreateProject(projects *service.ProjectService, registry *openapi.Registry, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input service.ProjectInput
		if err := decodeBody(r, registry, "createProjectSchema", &input); err != nil {
			respondWithError(w, logger, err)
			return
		}

		created, err := projects.Create(r.Context(), input)
		if err != nil {
			respondWithError(w, logger, err)
			return
		}
		registry.RespondWithValidation(w, http.StatusCreated, "createdProjectSchema", created)
	}
}

func handleGetProjectOverview(projects *service.ProjectService, registry *openapi.Registry, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)[middleware.ProjectVar]

		overview, err := projects.GetOverview(r.Context(), id, boolQuery(r, "archived"))
		if err != nil {
			respondWithError(w, logger, err)
			return
		}
		registry.RespondWithValidation(w, http.StatusOK, "projectOverviewSchema", overview)
	}
}

func handleUpdateProject(projects *service.ProjectService, registry *openapi.Registry, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)[middleware.ProjectVar]

		var input service.ProjectInput
		if err := decodeBody(r, registry, "createProjectSchema", &input); err != nil {
			respondWithError(w, logger, err)
			return
		}
		if input.ID != id {
			respondWithError(w, logger, apierr.NewBadData("Project id in the body (%s) does not match the path (%s)", input.ID, id))
			return
		}

		if err := projects.Update(r.Context(), input); err != nil {
			respondWithError(w, logger, err)
			return
		}
		respondEmpty(w, http.StatusOK)
	}
}

func handleDeleteProject(projects *service.ProjectService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)[middleware.ProjectVar]

		if err := projects.Delete(r.Context(), id); err != nil {
			respondWithError(w, logger, err)
			return
		}
		respondEmpty(w, http.StatusOK)
	}
}

func handleGetProjectDora(projects *service.ProjectService, registry *openapi.Registry, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)[middleware.ProjectVar]

		metrics, err := projects.GetDoraMetrics(r.Context(), id)
		if err != nil {
			respondWithError(w, logger, err)
			return
		}
		registry.RespondWithValidation(w, http.StatusOK, "projectDoraMetricsSchema", metrics)
	}
}

func handleGetProjectSegments(segments *service.SegmentService, registry *openapi.Registry, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)[middleware.ProjectVar]

		result, err := segments.GetByProject(r.Context(), id)
		if err != nil {
			respondWithError(w, logger, err)
			return
		}
		registry.RespondWithValidation(w, http.StatusOK, "segmentsSchema", result)
	}
}

func handleGetProjectChangeRequests(changeRequests *service.ChangeRequestService, registry *openapi.Registry, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)[middleware.ProjectVar]

		result, err := changeRequests.GetForProject(r.Context(), id, r.URL.Query().Get("state"))
		if err != nil {
			respondWithError(w, logger, err)
			return
		}
		registry.RespondWithValidation(w, http.StatusOK, "changeRequestsSchema", result)
	}
}
