package openapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
	"go.uber.org/zap"
)

// Parameter describes a path or query parameter.
type Parameter struct {
	Name        string
	In          string // "path" or "query"
	Type        string // "string", "integer" or "boolean"
	Description string
	Required    bool
}

// Operation is the OpenAPI metadata of one route.
type Operation struct {
	Tags          []string
	OperationID   string
	Summary       string
	Description   string
	RequestSchema string
	Parameters    []Parameter
	Responses     Responses
}

// Registry owns the OpenAPI document and its component schemas.
type Registry struct {
	mu      sync.RWMutex
	doc     *openapi3.T
	schemas map[string]*openapi3.Schema
	logger  *zap.Logger
}

const baseDocument = `{
  "openapi": "3.0.3",
  "info": {"title": "flagkeep admin API", "version": "0.0.0"},
  "servers": [{"url": "/"}],
  "paths": {},
  "components": {
    "schemas": {},
    "securitySchemes": {
      "apiKey": {"type": "apiKey", "in": "header", "name": "Authorization"},
      "bearerToken": {"type": "http", "scheme": "bearer", "bearerFormat": "JWT"}
    }
  },
  "security": [{"apiKey": []}, {"bearerToken": []}]
}`

var pathParamRegex = regexp.MustCompile(`\{([^}:]+)(:[^}]*)?\}`)

// NewRegistry creates a registry holding every component schema.
func NewRegistry(version string, logger *zap.Logger) (*Registry, error) {
	doc, err := openapi3.NewLoader().LoadFromData([]byte(baseDocument))
	if err != nil {
		return nil, fmt.Errorf("failed to load base document: %w", err)
	}
	if version != "" {
		doc.Info.Version = version
	}
	if doc.Components.Schemas == nil {
		doc.Components.Schemas = openapi3.Schemas{}
	}

	set := buildSchemas()
	for _, name := range set.order {
		doc.Components.Schemas[name] = openapi3.NewSchemaRef("", set.schemas[name])
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Registry{
		doc:     doc,
		schemas: set.schemas,
		logger:  logger.Named("openapi"),
	}, nil
}

// Schema returns the named component schema.
func (r *Registry) Schema(name string) (*openapi3.Schema, bool) {
	schema, ok := r.schemas[name]
	return schema, ok
}

// SchemaNames returns the names of all component schemas, sorted.
func (r *Registry) SchemaNames() []string {
	names := make([]string, 0, len(r.schemas))
	for name := range r.schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ValidPath records op for method and path in the document. Path may use
// gorilla/mux variable syntax, including regular expressions.
func (r *Registry) ValidPath(method, path string, op Operation) error {
	if op.RequestSchema != "" {
		if _, ok := r.schemas[op.RequestSchema]; !ok {
			return fmt.Errorf("unknown request schema %q for %s %s", op.RequestSchema, method, path)
		}
	}
	for code, resp := range op.Responses {
		if resp.Schema == "" {
			continue
		}
		if _, ok := r.schemas[resp.Schema]; !ok {
			return fmt.Errorf("unknown response schema %q for %d of %s %s", resp.Schema, code, method, path)
		}
	}

	docPath := pathParamRegex.ReplaceAllString(path, "{$1}")
	operation := r.buildOperation(path, op)

	r.mu.Lock()
	defer r.mu.Unlock()

	item := r.doc.Paths.Value(docPath)
	if item == nil {
		item = &openapi3.PathItem{}
		r.doc.Paths.Set(docPath, item)
	}
	item.SetOperation(strings.ToUpper(method), operation)
	return nil
}

func (r *Registry) buildOperation(path string, op Operation) *openapi3.Operation {
	operation := &openapi3.Operation{
		Tags:        op.Tags,
		OperationID: op.OperationID,
		Summary:     op.Summary,
		Description: op.Description,
		Responses:   &openapi3.Responses{},
	}

	declared := map[string]bool{}
	for _, p := range op.Parameters {
		declared[p.In+":"+p.Name] = true
		operation.Parameters = append(operation.Parameters, &openapi3.ParameterRef{Value: buildParameter(p)})
	}
	for _, match := range pathParamRegex.FindAllStringSubmatch(path, -1) {
		if declared["path:"+match[1]] {
			continue
		}
		p := Parameter{Name: match[1], In: openapi3.ParameterInPath, Type: "string", Required: true}
		operation.Parameters = append(operation.Parameters, &openapi3.ParameterRef{Value: buildParameter(p)})
	}

	if op.RequestSchema != "" {
		operation.RequestBody = &openapi3.RequestBodyRef{
			Value: openapi3.NewRequestBody().
				WithDescription(op.RequestSchema).
				WithRequired(true).
				WithJSONSchemaRef(openapi3.NewSchemaRef(componentsPrefix+op.RequestSchema, r.schemas[op.RequestSchema])),
		}
	}

	codes := make([]int, 0, len(op.Responses))
	for code := range op.Responses {
		codes = append(codes, code)
	}
	sort.Ints(codes)
	for _, code := range codes {
		resp := op.Responses[code]
		response := openapi3.NewResponse().WithDescription(resp.Description)
		if resp.Schema != "" {
			response = response.WithJSONSchemaRef(openapi3.NewSchemaRef(componentsPrefix+resp.Schema, r.schemas[resp.Schema]))
		}
		operation.Responses.Set(strconv.Itoa(code), &openapi3.ResponseRef{Value: response})
	}

	return operation
}

func buildParameter(p Parameter) *openapi3.Parameter {
	var param *openapi3.Parameter
	if p.In == openapi3.ParameterInQuery {
		param = openapi3.NewQueryParameter(p.Name)
	} else {
		param = openapi3.NewPathParameter(p.Name)
	}

	var schema *openapi3.Schema
	switch p.Type {
	case "integer":
		schema = openapi3.NewIntegerSchema()
	case "boolean":
		schema = openapi3.NewBoolSchema()
	default:
		schema = openapi3.NewStringSchema()
	}

	param.Description = p.Description
	param.Required = p.Required || p.In != openapi3.ParameterInQuery
	return param.WithSchema(schema)
}

// Operation returns the recorded operation for method and path.
func (r *Registry) Operation(method, path string) (*openapi3.Operation, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item := r.doc.Paths.Value(pathParamRegex.ReplaceAllString(path, "{$1}"))
	if item == nil {
		return nil, false
	}
	op := item.GetOperation(strings.ToUpper(method))
	return op, op != nil
}

// MarshalJSON renders the document.
func (r *Registry) MarshalJSON() ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return json.Marshal(r.doc)
}

// ServeHTTP serves the document as JSON.
func (r *Registry) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	data, err := r.MarshalJSON()
	if err != nil {
		r.logger.Error("failed to render openapi document", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}
