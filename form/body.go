package form

import (
	"encoding/base64"

	"github.com/aws/aws-lambda-go/events"
)

// BodyBytes returns a proxy request's raw body, decoding it first when API
// Gateway flagged it base64-encoded.
func BodyBytes(req events.APIGatewayProxyRequest) ([]byte, error) {
	if !req.IsBase64Encoded {
		return []byte(req.Body), nil
	}
	return base64.StdEncoding.DecodeString(req.Body)
}

// ResolveBody resolves a proxy request's body directly into dst, honoring
// the request's base64 flag. A body that cannot be base64-decoded resolves
// to the same malformed-form failure as an undecodable payload, so binary
// codecs plug in with just a codec option:
//
//	err := form.ResolveBody(req, &f, form.WithCodec(codec.CBOR))
func ResolveBody(req events.APIGatewayProxyRequest, dst any, opts ...Option) error {
	raw, err := BodyBytes(req)
	if err != nil {
		return malformed(dst, newOptions(SchemaNameRequestBody, opts))
	}
	return Resolve(raw, dst, opts...)
}
