package endpoints

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/flagkeep/flagkeep/pkg/apierr"
	"github.com/flagkeep/flagkeep/pkg/openapi"
)

const maxBodySize = 1 << 20

func respondWithError(w http.ResponseWriter, logger *zap.Logger, err error) {
	status := apierr.Status(err)
	body := apierr.Body(err)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", zap.String("errorId", body.ID), zap.Error(err))
	} else {
		logger.Debug("request rejected", zap.String("errorId", body.ID), zap.Error(err))
	}
	respondWithJSON(w, status, body)
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

func respondEmpty(w http.ResponseWriter, code int) {
	w.WriteHeader(code)
}

// decodeBody validates the request body against schema and decodes it
// into v.
func decodeBody(r *http.Request, registry *openapi.Registry, schema string, v interface{}) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		return apierr.NewBadData("Could not read the request body")
	}
	if err := registry.ValidateRequest(schema, body); err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return apierr.NewBadData("Request body does not match the expected format").WithDetails(apierr.Detail{
			Message: err.Error(),
		})
	}
	return nil
}

func intVar(r *http.Request, name string) (int, error) {
	id, err := strconv.Atoi(mux.Vars(r)[name])
	if err != nil {
		return 0, apierr.NewBadData("%s must be a number", name)
	}
	return id, nil
}

func boolQuery(r *http.Request, name string) bool {
	v, _ := strconv.ParseBool(r.URL.Query().Get(name))
	return v
}

func intQuery(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apierr.NewBadData("%s must be a number", name)
	}
	return v, nil
}
