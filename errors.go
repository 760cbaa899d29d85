package apikit

import (
	"errors"

	"github.com/poofware/go-apikit/response"
)

// Failure reasons surfaced by collaborator packages. Wrap them with %w so
// call sites can classify failures without depending on provider SDK error
// types.
var (
	// For external service failures (e.g., Twilio, SendGrid, AWS)
	ErrExternalServiceFailure = errors.New("external_service_failure")
)

// NotFoundError reports that a referenced resource does not exist. Handlers
// return it (possibly wrapped) and WithErrorHandling converts it into a 404
// envelope naming the identifier.
type NotFoundError struct {
	Identifier any
	Message    string
}

// NewNotFoundError builds a NotFoundError for the given identifier, which
// may be a string or a number. The default message names the identifier; an
// optional custom message overrides it for logs and err.Error(), but the
// 404 wire message always comes from the identifier.
func NewNotFoundError(identifier any, message ...string) *NotFoundError {
	msg := response.NotFoundMessage(identifier)
	if len(message) > 0 && message[0] != "" {
		msg = message[0]
	}
	return &NotFoundError{Identifier: identifier, Message: msg}
}

func (e *NotFoundError) Error() string {
	return e.Message
}

// ValidationError reports that a request's inputs were rejected. Details
// carry one entry per violation. Schemas describes the forms the input was
// validated against, keyed by input source ("requestBody",
// "queryParameters") so callers know which schema to consult.
type ValidationError struct {
	Details []response.ErrorDetail
	Message string
	Schemas map[string]any
}

// NewValidationError builds a ValidationError with the standard bad-request
// message unless an optional custom message is given.
func NewValidationError(details []response.ErrorDetail, schemas map[string]any, message ...string) *ValidationError {
	msg := response.MessageBadRequest
	if len(message) > 0 && message[0] != "" {
		msg = message[0]
	}
	return &ValidationError{Details: details, Message: msg, Schemas: schemas}
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Merge combines two validation errors into one: details concatenate in
// order (receiver first) and the schema maps union. Either side may be nil.
// Handlers use it to report body and query-parameter failures in a single
// response.
func (e *ValidationError) Merge(other *ValidationError) *ValidationError {
	if e == nil {
		return other
	}
	if other == nil {
		return e
	}

	merged := &ValidationError{
		Message: e.Message,
		Details: make([]response.ErrorDetail, 0, len(e.Details)+len(other.Details)),
		Schemas: make(map[string]any, len(e.Schemas)+len(other.Schemas)),
	}
	merged.Details = append(merged.Details, e.Details...)
	merged.Details = append(merged.Details, other.Details...)
	for name, schema := range e.Schemas {
		merged.Schemas[name] = schema
	}
	for name, schema := range other.Schemas {
		merged.Schemas[name] = schema
	}
	return merged
}
