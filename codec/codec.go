// Package codec provides the byte decoders the form resolver accepts
// payloads through. JSON is the default; CBOR covers binary bodies posted
// through API Gateway with isBase64Encoded set.
package codec

import (
	"encoding/json"
	"reflect"

	"github.com/fxamacker/cbor/v2"
)

// Codec decodes raw payload bytes into Go values. Implementations are safe
// for concurrent use.
type Codec interface {
	// Name identifies the codec in diagnostics ("json", "cbor").
	Name() string
	// Unmarshal decodes data into v.
	Unmarshal(data []byte, v any) error
}

// JSON decodes application/json payloads with encoding/json.
var JSON Codec = jsonCodec{}

type jsonCodec struct{}

func (jsonCodec) Name() string { return "json" }

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// CBOR decodes application/cbor payloads. The decode mode forces
// string-keyed maps so decoded payloads bind exactly the way JSON ones do.
var CBOR Codec = newCBOR()

type cborCodec struct {
	dec cbor.DecMode
}

func newCBOR() cborCodec {
	dec, err := cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic(err)
	}
	return cborCodec{dec: dec}
}

func (c cborCodec) Name() string { return "cbor" }

func (c cborCodec) Unmarshal(data []byte, v any) error {
	return c.dec.Unmarshal(data, v)
}
