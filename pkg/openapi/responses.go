package openapi

import "net/http"

// Response describes one response of an operation. Schema names a
// component schema; an empty Schema means the response has no body.
type Response struct {
	Description string
	Schema      string
}

// Responses maps status codes to responses.
type Responses map[int]Response

// With returns a copy of r extended with other. Codes already present in
// r win.
func (r Responses) With(other Responses) Responses {
	merged := make(Responses, len(r)+len(other))
	for code, resp := range other {
		merged[code] = resp
	}
	for code, resp := range r {
		merged[code] = resp
	}
	return merged
}

// EmptyResponse is a successful response without a body.
var EmptyResponse = Response{Description: "This response has no body."}

// CreateResponseSchema returns a response whose body follows the named
// component schema.
func CreateResponseSchema(schema string) Response {
	return Response{Description: schema, Schema: schema}
}

var standardResponses = map[int]Response{
	http.StatusBadRequest: {
		Description: "The request data does not match what we expect.",
		Schema:      "errorSchema",
	},
	http.StatusUnauthorized: {
		Description: "Authorization information is missing or invalid. Provide a valid session token as the `authorization` header.",
		Schema:      "errorSchema",
	},
	http.StatusForbidden: {
		Description: "User credentials are valid but does not have enough privileges to execute this operation.",
		Schema:      "errorSchema",
	},
	http.StatusNotFound: {
		Description: "The requested resource was not found.",
		Schema:      "errorSchema",
	},
	http.StatusConflict: {
		Description: "The provided resource can not be created or updated because it would conflict with the current state of the resource or with an already existing resource, respectively.",
		Schema:      "errorSchema",
	},
}

// StandardResponses returns the shared error responses for codes. Codes
// without a standard response are ignored.
func StandardResponses(codes ...int) Responses {
	responses := Responses{}
	for _, code := range codes {
		if resp, ok := standardResponses[code]; ok {
			responses[code] = resp
		}
	}
	return responses
}
