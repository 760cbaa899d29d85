package form

import (
	"reflect"
	"strconv"
	"strings"
	"time"
)

var timeType = reflect.TypeOf(time.Time{})

// Describe builds a machine-readable description of a form struct in the
// shape of a JSON schema: object type, per-property types and constraints
// lifted from the validate tags, and the required property list. Validation
// failures publish it under the form's schema name so clients can see what
// would have been accepted.
func Describe(v any) map[string]any {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return map[string]any{}
	}
	return describeStruct(t)
}

func describeStruct(t reflect.Type) map[string]any {
	properties := map[string]any{}
	var required []string

	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name := wireName(f)
		if name == "" {
			continue
		}

		property, isRequired := describeField(f)
		properties[name] = property
		if isRequired {
			required = append(required, name)
		}
	}

	schema := map[string]any{
		"title":      t.Name(),
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func describeField(f reflect.StructField) (map[string]any, bool) {
	ft := f.Type
	for ft.Kind() == reflect.Pointer {
		ft = ft.Elem()
	}

	property := describeType(ft)

	isRequired := false
	for _, rule := range strings.Split(f.Tag.Get("validate"), ",") {
		rule = strings.TrimSpace(rule)
		if rule == "" {
			continue
		}
		tag, param, _ := strings.Cut(rule, "=")
		switch tag {
		case "required":
			isRequired = true
		case "min":
			property[sizeKey(ft.Kind(), "min")] = numeric(param)
		case "max":
			property[sizeKey(ft.Kind(), "max")] = numeric(param)
		case "gte":
			property["minimum"] = numeric(param)
		case "lte":
			property["maximum"] = numeric(param)
		case "gt":
			property["exclusiveMinimum"] = numeric(param)
		case "lt":
			property["exclusiveMaximum"] = numeric(param)
		case "len":
			property["minLength"] = numeric(param)
			property["maxLength"] = numeric(param)
		case "email":
			property["format"] = "email"
		case "uuid":
			property["format"] = "uuid"
		case "e164":
			property["format"] = "e164"
		case "oneof":
			property["enum"] = strings.Fields(param)
		}
	}
	return property, isRequired
}

func describeType(t reflect.Type) map[string]any {
	if t == timeType {
		return map[string]any{"type": "string", "format": "date-time"}
	}

	switch t.Kind() {
	case reflect.String:
		return map[string]any{"type": "string"}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return map[string]any{"type": "integer"}
	case reflect.Float32, reflect.Float64:
		return map[string]any{"type": "number"}
	case reflect.Bool:
		return map[string]any{"type": "boolean"}
	case reflect.Slice, reflect.Array:
		elem := t.Elem()
		for elem.Kind() == reflect.Pointer {
			elem = elem.Elem()
		}
		return map[string]any{"type": "array", "items": describeType(elem)}
	case reflect.Struct:
		return describeStruct(t)
	case reflect.Map:
		return map[string]any{"type": "object"}
	default:
		return map[string]any{}
	}
}

// sizeKey picks the schema constraint a min/max rule maps to: length for
// strings, item count for arrays, value bounds for numbers.
func sizeKey(kind reflect.Kind, bound string) string {
	switch kind {
	case reflect.String:
		if bound == "min" {
			return "minLength"
		}
		return "maxLength"
	case reflect.Slice, reflect.Array, reflect.Map:
		if bound == "min" {
			return "minItems"
		}
		return "maxItems"
	default:
		if bound == "min" {
			return "minimum"
		}
		return "maximum"
	}
}

func numeric(param string) any {
	if n, err := strconv.Atoi(param); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(param, 64); err == nil {
		return f
	}
	return param
}
