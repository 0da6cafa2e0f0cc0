package endpoints

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/flagkeep/flagkeep/pkg/openapi"
	"github.com/flagkeep/flagkeep/pkg/permissions"
	"github.com/flagkeep/flagkeep/pkg/server"
	"github.com/flagkeep/flagkeep/pkg/service"
)

// Segment writes are gated on the root permission or on
// UPDATE_PROJECT_SEGMENT in some project; the service checks the exact
// project of the segment.
func RegisterSegmentsEndpoints(s *server.Server) {
	segments := s.Segments
	registry := s.Registry
	logger := s.Logger.Named("routes/admin-api/segments")
	tags := []string{"Segments"}
	segmentID := []openapi.Parameter{
		{Name: "segmentId", In: "path", Type: "integer", Description: "The id of the segment"},
	}

	router := s.Admin.PathPrefix("/segments").Subrouter()
	registerRoutes(s, router, server.AdminPrefix+"/segments", []route{
		{
			method:      http.MethodGet,
			path:        "",
			permissions: requires(permissions.None),
			handler:     handleGetSegments(segments, registry, logger),
			operation: openapi.Operation{
				Tags:        tags,
				OperationID: "getSegments",
				Summary:     "Get all segments",
				Description: "Retrieves all segments that exist in this instance.",
				Responses: withStandard(openapi.Responses{
					http.StatusOK: openapi.CreateResponseSchema("segmentsSchema"),
				}, http.StatusUnauthorized, http.StatusForbidden),
			},
		},
		{
			method:      http.MethodPost,
			path:        "/validate",
			permissions: requires(permissions.None),
			handler:     handleValidateSegmentName(segments, registry, logger),
			operation: openapi.Operation{
				Tags:          tags,
				OperationID:   "validateSegment",
				Summary:       "Validates if a segment name exists",
				Description:   "Uses the name provided in the body of the request to validate if the given name exists or not",
				RequestSchema: "nameSchema",
				Responses: withStandard(openapi.Responses{
					http.StatusOK: openapi.EmptyResponse,
				}, http.StatusBadRequest, http.StatusUnauthorized, http.StatusConflict),
			},
		},
		{
			method:      http.MethodPost,
			path:        "",
			permissions: requires(permissions.CreateSegment, permissions.UpdateProjectSegment),
			handler:     handleCreateSegment(segments, registry, logger),
			operation: openapi.Operation{
				Tags:          tags,
				OperationID:   "createSegment",
				Summary:       "Create a new segment",
				Description:   "Creates a new segment using the payload provided",
				RequestSchema: "upsertSegmentSchema",
				Responses: withStandard(openapi.Responses{
					http.StatusOK: openapi.CreateResponseSchema("segmentSchema"),
				}, http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusConflict),
			},
		},
		{
			method:      http.MethodGet,
			path:        "/{segmentId:[0-9]+}",
			permissions: requires(permissions.None),
			handler:     handleGetSegment(segments, registry, logger),
			operation: openapi.Operation{
				Tags:        tags,
				OperationID: "getSegment",
				Summary:     "Get a segment",
				Description: "Retrieves a segment based on its ID.",
				Parameters:  segmentID,
				Responses: withStandard(openapi.Responses{
					http.StatusOK: openapi.CreateResponseSchema("segmentSchema"),
				}, http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound),
			},
		},
		{
			method:      http.MethodPut,
			path:        "/{segmentId:[0-9]+}",
			permissions: requires(permissions.UpdateSegment, permissions.UpdateProjectSegment),
			handler:     handleUpdateSegment(segments, registry, logger),
			operation: openapi.Operation{
				Tags:          tags,
				OperationID:   "updateSegment",
				Summary:       "Update segment by id",
				Description:   "Updates the content of the segment with the provided payload. Requires `name` and `constraints` to be present. If `project` is not present, it will be set to `null`. Any other fields not specified will be left untouched.",
				RequestSchema: "upsertSegmentSchema",
				Parameters:    segmentID,
				Responses: withStandard(openapi.Responses{
					http.StatusOK: openapi.EmptyResponse,
				}, http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound, http.StatusConflict),
			},
		},
		{
			method:      http.MethodDelete,
			path:        "/{segmentId:[0-9]+}",
			permissions: requires(permissions.DeleteSegment, permissions.UpdateProjectSegment),
			handler:     handleDeleteSegment(segments, logger),
			operation: openapi.Operation{
				Tags:        tags,
				OperationID: "removeSegment",
				Summary:     "Deletes a segment by id",
				Description: "Deletes a segment by its id, if not found returns a 409 error",
				Parameters:  segmentID,
				Responses: withStandard(openapi.Responses{
					http.StatusOK: openapi.EmptyResponse,
				}, http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound),
			},
		},
	})
}

func handleGetSegments(segments *service.SegmentService, registry *openapi.Registry, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := segments.GetAll(r.Context())
		if err != nil {
			respondWithError(w, logger, err)
			return
		}
		registry.RespondWithValidation(w, http.StatusOK, "segmentsSchema", result)
	}
}

func handleValidateSegmentName(segments *service.SegmentService, registry *openapi.Registry, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Name string `json:"name"`
		}
		if err := decodeBody(r, registry, "nameSchema", &body); err != nil {
			respondWithError(w, logger, err)
			return
		}

		if err := segments.ValidateName(r.Context(), body.Name); err != nil {
			respondWithError(w, logger, err)
			return
		}
		respondEmpty(w, http.StatusOK)
	}
}

func handleGetSegment(segments *service.SegmentService, registry *openapi.Registry, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := intVar(r, "segmentId")
		if err != nil {
			respondWithError(w, logger, err)
			return
		}

		segment, err := segments.Get(r.Context(), id)
		if err != nil {
			respondWithError(w, logger, err)
			return
		}
		registry.RespondWithValidation(w, http.StatusOK, "segmentSchema", segment)
	}
}

func handleCreateSegment(segments *service.SegmentService, registry *openapi.Registry, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input service.SegmentInput
		if err := decodeBody(r, registry, "upsertSegmentSchema", &input); err != nil {
			respondWithError(w, logger, err)
			return
		}

		segment, err := segments.Create(r.Context(), input)
		if err != nil {
			respondWithError(w, logger, err)
			return
		}
		registry.RespondWithValidation(w, http.StatusOK, "segmentSchema", segment)
	}
}

func handleUpdateSegment(segments *service.SegmentService, registry *openapi.Registry, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := intVar(r, "segmentId")
		if err != nil {
			respondWithError(w, logger, err)
			return
		}

		var input service.SegmentInput
		if err := decodeBody(r, registry, "upsertSegmentSchema", &input); err != nil {
			respondWithError(w, logger, err)
			return
		}

		if err := segments.Update(r.Context(), id, input); err != nil {
			respondWithError(w, logger, err)
			return
		}
		respondEmpty(w, http.StatusOK)
	}
}

func handleDeleteSegment(segments *service.SegmentService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := intVar(r, "segmentId")
		if err != nil {
			respondWithError(w, logger, err)
			return
		}

		if err := segments.Delete(r.Context(), id); err != nil {
			respondWithError(w, logger, err)
			return
		}
		respondEmpty(w, http.StatusOK)
	}
}
