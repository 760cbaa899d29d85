// Package response builds the canonical envelope returned by every API
// endpoint, success or failure:
//
//	{
//	    "success": bool,
//	    "meta": {
//	        "message": "...",
//	        "errorDetails": [...],
//	        "paginationDetails": {...},
//	        "schemas": {...}
//	    },
//	    "data": ...
//	}
//
// Builders are pure: they construct an events.APIGatewayProxyResponse and
// perform no I/O. Logging of internal failures is the caller's concern.
package response

import (
	"encoding/json"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
)

// ErrorDetail describes a single request problem and where it occurred.
// Location is a dotted path into the offending field ("address.zip"), or
// "requestBody" when the body as a whole could not be read.
type ErrorDetail struct {
	Description string `json:"description"`
	Location    string `json:"location"`
}

// PaginationDetail echoes the pagination values that were applied to a
// request. An empty detail serializes as an empty object.
type PaginationDetail map[string]int

// MetaData carries everything about a response that is not the payload
// itself. Build it through Metadata or one of the status-specific factories
// so the optional fields are never null on the wire.
type MetaData struct {
	Message           string           `json:"message"`
	ErrorDetails      []ErrorDetail    `json:"errorDetails"`
	PaginationDetails PaginationDetail `json:"paginationDetails"`
	Schemas           map[string]any   `json:"schemas"`
}

// Body is the full response envelope. Data is serialized as null when the
// endpoint has no payload to return.
type Body struct {
	Success bool     `json:"success"`
	Meta    MetaData `json:"meta"`
	Data    any      `json:"data"`
}

// New builds an API Gateway proxy response with the given status, metadata
// and payload. Success is derived from the status code: anything below 400
// is a success. Headers are passed through as provided, defaulting to an
// empty map. The payload is serialized as-is; callers who want camelized
// keys on a dynamic map payload apply casing.CamelizeKeys themselves.
func New(status int, meta MetaData, data any, headers map[string]string) events.APIGatewayProxyResponse {
	if headers == nil {
		headers = map[string]string{}
	}

	body := Body{
		Success: status < http.StatusBadRequest,
		Meta:    meta,
		Data:    data,
	}

	encoded, err := json.Marshal(body)
	if err != nil {
		// A payload that cannot be serialized degrades to the internal
		// error envelope, which always can.
		return New(http.StatusInternalServerError, InternalErrorMetadata(), nil, headers)
	}

	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    headers,
		Body:       string(encoded),
	}
}

// Ok builds a 200 response. An optional pagination detail is echoed in the
// metadata.
func Ok(data any, pagination ...PaginationDetail) events.APIGatewayProxyResponse {
	return New(http.StatusOK, OkMetadata(pagination...), data, nil)
}

// Created builds a 201 response for newly created resources.
func Created(data any) events.APIGatewayProxyResponse {
	return New(http.StatusCreated, OkMetadata(), data, nil)
}

// Bad builds a 400 response carrying the per-field failures and the schema
// descriptions of the forms that rejected the request.
func Bad(details []ErrorDetail, schemas map[string]any) events.APIGatewayProxyResponse {
	return New(http.StatusBadRequest, BadMetadata(details, schemas), nil, nil)
}

// NotFound builds a 404 response whose message names the missing resource.
func NotFound(identifier any) events.APIGatewayProxyResponse {
	return New(http.StatusNotFound, NotFoundMetadata(identifier), nil, nil)
}

// InternalError builds a 500 response with the fixed public message. The
// underlying failure never reaches the wire.
func InternalError() events.APIGatewayProxyResponse {
	return New(http.StatusInternalServerError, InternalErrorMetadata(), nil, nil)
}
