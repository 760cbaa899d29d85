package form

import (
	"reflect"
	"strconv"

	"github.com/poofware/go-apikit/response"
)

// Supplied records which form fields the caller actually sent, by wire
// name. Pagination echoing uses it to tell supplied values apart from
// defaults.
type Supplied map[string]bool

// Has reports whether the named field was explicitly supplied.
func (s Supplied) Has(name string) bool { return s[name] }

// Defaulter lets a query form state its defaults before raw parameters are
// overlaid onto it.
type Defaulter interface {
	SetDefaults()
}

// echoAware query forms receive the supplied set and the echo policy once
// resolution settles, so their echo output can tell supplied values apart
// from defaults.
type echoAware interface {
	setEcho(supplied Supplied, resolved bool)
}

func markEcho(dst any, supplied Supplied, resolved bool) {
	if a, ok := dst.(echoAware); ok {
		a.setEcho(supplied, resolved)
	}
}

// ResolveQuery resolves raw query-string parameters into dst.
//
// If dst implements Defaulter its defaults are applied first; otherwise
// whatever values dst already holds serve as the defaults. Nil params mean
// the request carried no query string at all: dst keeps its defaults, no
// validation runs and the returned Supplied set is empty. Otherwise the
// recognized parameters are converted to the field's type leniently and
// overlaid, unrecognized parameters are silently dropped, and the result is
// validated exactly like a body form, with failures published under the
// queryParameters schema name.
func ResolveQuery(params map[string]string, dst any, opts ...Option) (Supplied, error) {
	o := newOptions(SchemaNameQueryParameters, opts)

	if d, ok := dst.(Defaulter); ok {
		d.SetDefaults()
	}
	if params == nil {
		markEcho(dst, Supplied{}, o.echoResolved)
		return Supplied{}, nil
	}

	kinds := fieldKinds(dst)
	fields := make(map[string]any, len(params))
	supplied := make(Supplied, len(params))
	for name, raw := range params {
		kind, known := kinds[name]
		if !known {
			continue
		}
		fields[name] = convert(raw, kind)
		supplied[name] = true
	}

	if err := resolveFields(fields, dst, o); err != nil {
		return supplied, err
	}
	markEcho(dst, supplied, o.echoResolved)
	return supplied, nil
}

// fieldKinds maps a form's wire names to the kind each raw parameter should
// be converted to.
func fieldKinds(dst any) map[string]reflect.Kind {
	kinds := map[string]reflect.Kind{}

	t := reflect.TypeOf(dst)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return kinds
	}

	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name := wireName(f)
		if name == "" {
			continue
		}
		ft := f.Type
		for ft.Kind() == reflect.Pointer {
			ft = ft.Elem()
		}
		kinds[name] = ft.Kind()
	}
	return kinds
}

// convert turns a raw query value into the field's type when it can. A
// value that does not parse is passed through as the raw string, so binding
// reports the mismatch as a field detail instead of dropping it.
func convert(raw string, kind reflect.Kind) any {
	switch kind {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if n, err := strconv.Atoi(raw); err == nil {
			return n
		}
	case reflect.Float32, reflect.Float64:
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			return f
		}
	case reflect.Bool:
		if b, err := strconv.ParseBool(raw); err == nil {
			return b
		}
	}
	return raw
}

// Pagination defaults and bounds.
const (
	DefaultPage  = 0
	DefaultLimit = 100
	MaxLimit     = 1000
)

// Pagination is the standard query form for list endpoints. Page is
// zero-based. The zero value is not valid on its own; resolve through
// ResolvePagination or call SetDefaults first.
type Pagination struct {
	Page  int `json:"page" validate:"gte=0"`
	Limit int `json:"limit" validate:"gte=1,lte=1000"`

	supplied     Supplied
	echoResolved bool
}

// SetDefaults implements Defaulter: page 0 with a limit of 100.
func (p *Pagination) SetDefaults() {
	p.Page = DefaultPage
	p.Limit = DefaultLimit
}

func (p *Pagination) setEcho(supplied Supplied, resolved bool) {
	p.supplied = supplied
	p.echoResolved = resolved
}

// Validate checks the pagination bounds: page at least 0, limit between 1
// and 1000. Violations come back as an apikit.ValidationError.
func (p Pagination) Validate() error {
	return Validate(p, WithSchemaName(SchemaNameQueryParameters))
}

// Offset is the record offset of the current page.
func (p Pagination) Offset() int {
	return p.Page * p.Limit
}

// Detail builds the pagination echo for response metadata. Under the
// default policy only the values the caller explicitly supplied appear;
// resolved with EchoResolved, both final values do.
func (p Pagination) Detail() response.PaginationDetail {
	detail := response.PaginationDetail{}
	if p.echoResolved {
		detail["page"] = p.Page
		detail["limit"] = p.Limit
		return detail
	}
	if p.supplied.Has("page") {
		detail["page"] = p.Page
	}
	if p.supplied.Has("limit") {
		detail["limit"] = p.Limit
	}
	return detail
}

// ResolvePagination resolves the standard page and limit parameters from a
// raw query map, which may be nil. Values the caller did not supply fall
// back to the defaults before validation, so a request with only page=3
// still resolves with limit 100.
func ResolvePagination(params map[string]string, opts ...Option) (Pagination, error) {
	var p Pagination
	if _, err := ResolveQuery(params, &p, opts...); err != nil {
		return Pagination{}, err
	}
	return p, nil
}
