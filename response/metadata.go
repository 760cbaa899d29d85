package response

import "fmt"

// Public wire messages. These are part of the API contract and are shared
// with the error taxonomy defaults.
const (
	MessageOK            = "Request completed successfully"
	MessageBadRequest    = "Given inputs were incorrect. Consult the below details to address the issue."
	MessageMalformedForm = "Form could not be validated due to given json not existing or being valid"
	MessageInternalError = "Request failed due to internal server error"
)

// NotFoundMessage renders the canonical message for a missing resource.
// Identifiers may be strings or numbers, so formatting goes through %v.
func NotFoundMessage(identifier any) string {
	return fmt.Sprintf("Resource with id %v does not exist", identifier)
}

// Metadata builds a MetaData with every optional field normalized to its
// empty representation. The wire never carries null for errorDetails,
// paginationDetails or schemas.
func Metadata(message string, details []ErrorDetail, pagination PaginationDetail, schemas map[string]any) MetaData {
	if details == nil {
		details = []ErrorDetail{}
	}
	if pagination == nil {
		pagination = PaginationDetail{}
	}
	if schemas == nil {
		schemas = map[string]any{}
	}
	return MetaData{
		Message:           message,
		ErrorDetails:      details,
		PaginationDetails: pagination,
		Schemas:           schemas,
	}
}

// OkMetadata is the metadata of a successful response. An optional
// pagination detail may be passed for list endpoints.
func OkMetadata(pagination ...PaginationDetail) MetaData {
	var pd PaginationDetail
	if len(pagination) > 0 {
		pd = pagination[0]
	}
	return Metadata(MessageOK, nil, pd, nil)
}

// BadMetadata is the metadata of a rejected request: the fixed bad-request
// message plus the per-field details and form schemas for the caller to
// consult.
func BadMetadata(details []ErrorDetail, schemas map[string]any) MetaData {
	return Metadata(MessageBadRequest, details, nil, schemas)
}

// NotFoundMetadata is the metadata of a 404 response for the given resource
// identifier.
func NotFoundMetadata(identifier any) MetaData {
	return Metadata(NotFoundMessage(identifier), nil, nil, nil)
}

// InternalErrorMetadata is the metadata of a 500 response. It is always the
// same fixed message; internal failure text stays in the logs.
func InternalErrorMetadata() MetaData {
	return Metadata(MessageInternalError, nil, nil, nil)
}
