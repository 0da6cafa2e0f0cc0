package openapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"go.uber.org/zap"

	"github.com/flagkeep/flagkeep/pkg/apierr"
)

// Validate checks payload against the named schema. payload may be any
// value that encodes to JSON.
func (r *Registry) Validate(schemaName string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}
	return r.validateJSON(schemaName, data)
}

func (r *Registry) validateJSON(schemaName string, data []byte) error {
	schema, ok := r.schemas[schemaName]
	if !ok {
		return fmt.Errorf("unknown schema %q", schemaName)
	}

	var value interface{}
	decoder := json.NewDecoder(bytes.NewReader(data))
	if err := decoder.Decode(&value); err != nil {
		return apierr.NewBadData("Request body is not valid JSON").WithDetails(apierr.Detail{
			Message: err.Error(),
		})
	}

	if err := schema.VisitJSON(value, openapi3.MultiErrors()); err != nil {
		return apierr.NewBadData("Request validation failed: your request body or params contain invalid data. Refer to the `details` list for more information.").
			WithDetails(details(err)...)
	}
	return nil
}

// ValidateRequest checks a raw request body against the named schema. The
// error is a BadDataError listing every mismatch.
func (r *Registry) ValidateRequest(schemaName string, body []byte) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return apierr.NewBadData("Request body is required")
	}
	return r.validateJSON(schemaName, body)
}

func details(err error) []apierr.Detail {
	var multi openapi3.MultiError
	if errors.As(err, &multi) {
		var out []apierr.Detail
		for _, e := range multi {
			out = append(out, details(e)...)
		}
		return out
	}

	var schemaErr *openapi3.SchemaError
	if errors.As(err, &schemaErr) {
		path := "/" + strings.Join(schemaErr.JSONPointer(), "/")
		return []apierr.Detail{{
			Message:     fmt.Sprintf("The `%s` property %s", path, schemaErr.Reason),
			Description: schemaErr.Reason,
			Path:        path,
		}}
	}

	return []apierr.Detail{{Message: err.Error()}}
}

// RespondWithValidation writes payload as JSON with status. A payload that
// does not match the named schema is still sent; the mismatch is logged.
func (r *Registry) RespondWithValidation(w http.ResponseWriter, status int, schemaName string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		r.logger.Error("failed to encode response", zap.String("schema", schemaName), zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	if err := r.validateJSON(schemaName, data); err != nil {
		fields := []zap.Field{zap.String("schema", schemaName)}
		var apiErr *apierr.Error
		if errors.As(err, &apiErr) {
			fields = append(fields, zap.Any("details", apiErr.Details))
		} else {
			fields = append(fields, zap.Error(err))
		}
		r.logger.Warn("Invalid response data", fields...)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}
