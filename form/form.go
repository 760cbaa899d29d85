// Package form resolves raw request input into validated form structs.
//
// A form is a plain struct with json tags for wire names and validate tags
// for constraints:
//
//	type CreateOrderForm struct {
//	    Email    string `json:"email" validate:"required,email"`
//	    Quantity int    `json:"quantity" validate:"gte=1"`
//	}
//
// Resolve accepts the body however Lambda hands it over (string, bytes, or
// an already-decoded map), binds it onto the struct and validates it;
// ResolveBody starts from the proxy request itself and honors its base64
// flag. Every failure comes back as a single apikit.ValidationError
// carrying one detail per violation and the schema description of the
// rejected form, ready for the error-handling wrapper to turn into a 400
// envelope.
package form

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"reflect"
	"strings"

	"github.com/poofware/go-apikit"
	"github.com/poofware/go-apikit/codec"
	"github.com/poofware/go-apikit/response"
)

// Schema names reserved by the response contract. Validation failures key
// their schema descriptions by input source so clients know which form
// rejected them.
const (
	SchemaNameRequestBody     = "requestBody"
	SchemaNameQueryParameters = "queryParameters"
)

// LocationRequestBody is the error-detail location reported when the body
// as a whole could not be read, as opposed to a single field being wrong.
const LocationRequestBody = "requestBody"

// Option customizes a single resolution.
type Option func(*options)

type options struct {
	codec        codec.Codec
	schemaName   string
	echoResolved bool
}

func newOptions(defaultSchemaName string, opts []Option) options {
	o := options{codec: codec.JSON, schemaName: defaultSchemaName}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithCodec selects the codec used to decode textual or binary payloads.
// Defaults to codec.JSON.
func WithCodec(c codec.Codec) Option {
	return func(o *options) { o.codec = c }
}

// WithSchemaName overrides the key the form's schema description is
// published under in validation failures. Resolve defaults to
// SchemaNameRequestBody and ResolveQuery to SchemaNameQueryParameters; the
// association is never inferred from Go type names.
func WithSchemaName(name string) Option {
	return func(o *options) { o.schemaName = name }
}

// EchoResolved makes a resolved Pagination echo the fully resolved page
// and limit values in its Detail instead of only the values the caller
// explicitly supplied. Takes effect through ResolvePagination and
// ResolveQuery alike.
func EchoResolved() Option {
	return func(o *options) { o.echoResolved = true }
}

// Resolve decodes data into dst and validates it.
//
// data may be a string, a byte slice, an already-decoded map[string]any, or
// nil. Input that cannot be turned into a field map at all (missing, empty,
// undecodable, or not an object) resolves to a ValidationError with the
// malformed-form message and a single detail at LocationRequestBody. Field
// failures resolve to a ValidationError with one detail per violation,
// located by the field's dotted wire path. Unknown fields are ignored.
//
// On success dst holds the fully typed values and the error is nil.
func Resolve(data any, dst any, opts ...Option) error {
	o := newOptions(SchemaNameRequestBody, opts)

	fields, ok := normalize(data, o.codec)
	if !ok {
		return malformed(dst, o)
	}
	return resolveFields(fields, dst, o)
}

// normalize turns the accepted input representations into a field map.
func normalize(data any, c codec.Codec) (map[string]any, bool) {
	switch v := data.(type) {
	case nil:
		return nil, false
	case map[string]any:
		return v, true
	case string:
		return decode([]byte(v), c)
	case []byte:
		return decode(v, c)
	case json.RawMessage:
		return decode(v, c)
	default:
		return nil, false
	}
}

func decode(data []byte, c codec.Codec) (map[string]any, bool) {
	if len(data) == 0 {
		return nil, false
	}
	var fields map[string]any
	if err := c.Unmarshal(data, &fields); err != nil {
		return nil, false
	}
	// "null" decodes without error into a nil map.
	if fields == nil {
		return nil, false
	}
	return fields, true
}

// resolveFields binds a field map onto dst and validates the result. Type
// mismatches and constraint violations are reported together.
func resolveFields(fields map[string]any, dst any, o options) error {
	bindDetails, err := bind(fields, dst)
	if err != nil {
		return err
	}
	constraintDetails, err := check(dst)
	if err != nil {
		return err
	}

	details := mergeDetails(bindDetails, constraintDetails)
	if len(details) > 0 {
		return apikit.NewValidationError(details, schemaMap(dst, o.schemaName))
	}
	return nil
}

// bind overlays a field map onto dst through the json codec, so json tags,
// nesting and unknown-field behavior all match standard decoding. Fields
// whose values have the wrong type are reported as details, not errors; a
// dst that cannot be decoded into at all is a plain error.
//
// The decoder surfaces only its first type mismatch per pass, so binding
// repeats with the mismatched field removed until decoding succeeds, one
// detail per mismatch.
func bind(fields map[string]any, dst any) ([]response.ErrorDetail, error) {
	var details []response.ErrorDetail

	remaining := fields
	for {
		encoded, err := json.Marshal(remaining)
		if err != nil {
			return nil, fmt.Errorf("form fields could not be re-encoded: %w", err)
		}

		err = json.Unmarshal(encoded, dst)
		if err == nil {
			return details, nil
		}
		var typeErr *json.UnmarshalTypeError
		if !errors.As(err, &typeErr) {
			return nil, fmt.Errorf("form of type %T could not be bound: %w", dst, err)
		}
		details = append(details, typeMismatchDetail(typeErr))

		next, ok := withoutField(remaining, typeErr.Field)
		if !ok {
			return details, nil
		}
		remaining = next
	}
}

// withoutField clones fields with the value at the dotted path removed,
// leaving the caller's map untouched. A path that runs through a non-map
// value (an array element, say) drops its whole top-level field. Reports
// false when nothing could be removed, which ends the re-bind loop.
func withoutField(fields map[string]any, path string) (map[string]any, bool) {
	if path == "" {
		return fields, false
	}
	segments := strings.Split(path, ".")

	out := maps.Clone(fields)
	m := out
	for i, segment := range segments {
		if i == len(segments)-1 {
			if _, ok := m[segment]; !ok {
				return fields, false
			}
			delete(m, segment)
			return out, true
		}
		child, ok := m[segment].(map[string]any)
		if !ok {
			if _, ok := out[segments[0]]; !ok {
				return fields, false
			}
			delete(out, segments[0])
			return out, true
		}
		child = maps.Clone(child)
		m[segment] = child
		m = child
	}
	return fields, false
}

func typeMismatchDetail(err *json.UnmarshalTypeError) response.ErrorDetail {
	location := err.Field
	if location == "" {
		location = LocationRequestBody
	}
	return response.ErrorDetail{
		Description: fmt.Sprintf("Must be of type %s", jsonTypeName(err.Type)),
		Location:    location,
	}
}

// jsonTypeName maps a Go target type to the JSON type a client should have
// sent.
func jsonTypeName(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "integer"
	case reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Bool:
		return "boolean"
	case reflect.Slice, reflect.Array:
		return "array"
	default:
		return "object"
	}
}

// mergeDetails appends constraint findings to bind findings, dropping
// constraint findings for locations that already failed to bind.
func mergeDetails(bindDetails, constraintDetails []response.ErrorDetail) []response.ErrorDetail {
	if len(bindDetails) == 0 {
		return constraintDetails
	}

	failed := make(map[string]bool, len(bindDetails))
	for _, d := range bindDetails {
		failed[d.Location] = true
	}
	merged := bindDetails
	for _, d := range constraintDetails {
		if !failed[d.Location] {
			merged = append(merged, d)
		}
	}
	return merged
}

// malformed is the single outcome for input that never became a field map.
func malformed(dst any, o options) *apikit.ValidationError {
	details := []response.ErrorDetail{{
		Description: fmt.Sprintf("Request body either did not exist or was not valid %s.", strings.ToUpper(o.codec.Name())),
		Location:    LocationRequestBody,
	}}
	return apikit.NewValidationError(details, schemaMap(dst, o.schemaName), response.MessageMalformedForm)
}

func schemaMap(dst any, name string) map[string]any {
	return map[string]any{name: Describe(dst)}
}

// wireName is the name a struct field carries on the wire: its json tag, or
// the Go field name when untagged. Fields tagged "-" have no wire name.
func wireName(f reflect.StructField) string {
	tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if tag == "-" {
		return ""
	}
	if tag == "" {
		return f.Name
	}
	return tag
}
