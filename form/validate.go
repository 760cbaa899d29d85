package form

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/poofware/go-apikit"
	"github.com/poofware/go-apikit/response"
)

// The shared validator reports fields by their wire names, so details and
// schema descriptions line up with what the client actually sent.
var validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate runs a form's constraint checks without any decoding or binding,
// for values constructed in code rather than resolved from a request. A
// failure comes back as an apikit.ValidationError; pass WithSchemaName to
// publish the form's schema description in it.
func Validate(v any, opts ...Option) error {
	o := newOptions("", opts)

	details, err := check(v)
	if err != nil {
		return err
	}
	if len(details) == 0 {
		return nil
	}

	var schemas map[string]any
	if o.schemaName != "" {
		schemas = schemaMap(v, o.schemaName)
	}
	return apikit.NewValidationError(details, schemas)
}

// check runs the validator and translates its findings. A value that cannot
// be validated at all (not a struct) is a plain error.
func check(v any) ([]response.ErrorDetail, error) {
	err := validate.Struct(v)
	if err == nil {
		return nil, nil
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		return detailsFromValidator(validationErrs), nil
	}
	return nil, fmt.Errorf("form of type %T could not be validated: %w", v, err)
}

// detailsFromValidator converts validator errors into a user-friendly format.
func detailsFromValidator(errs validator.ValidationErrors) []response.ErrorDetail {
	var details []response.ErrorDetail
	for _, err := range errs {
		var message string
		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("Field '%s' is required", err.Field())
		case "email":
			message = fmt.Sprintf("Field '%s' must be a valid email address", err.Field())
		case "min":
			message = fmt.Sprintf("Field '%s' must be at least %s in length", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("Field '%s' must not exceed %s in length", err.Field(), err.Param())
		case "gte":
			message = fmt.Sprintf("Field '%s' must be %s or greater", err.Field(), err.Param())
		case "lte":
			message = fmt.Sprintf("Field '%s' must be %s or less", err.Field(), err.Param())
		case "oneof":
			message = fmt.Sprintf("Field '%s' must be one of [%s]", err.Field(), err.Param())
		case "e164":
			message = fmt.Sprintf("Field '%s' must be a phone number in E.164 format", err.Field())
		case "uuid":
			message = fmt.Sprintf("Field '%s' must be a valid uuid", err.Field())
		default:
			message = fmt.Sprintf("Field validation for '%s' failed on the '%s' tag", err.Field(), err.Tag())
		}
		details = append(details, response.ErrorDetail{
			Description: message,
			Location:    fieldPath(err),
		})
	}
	return details
}

// fieldPath renders the dotted location of a failed field relative to the
// form root: "email", "address.zip".
func fieldPath(err validator.FieldError) string {
	namespace := err.Namespace()
	if i := strings.Index(namespace, "."); i >= 0 {
		return namespace[i+1:]
	}
	return err.Field()
}
