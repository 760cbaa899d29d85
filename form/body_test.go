package form

import (
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/require"

	"github.com/poofware/go-apikit/codec"
	"github.com/poofware/go-apikit/response"
)

// -----------------------------------------------------------------------------
// Raw body extraction
// -----------------------------------------------------------------------------

func TestBodyBytesPlain(t *testing.T) {
	raw, err := BodyBytes(events.APIGatewayProxyRequest{Body: `{"a":1}`})
	require.NoError(t, err)
	require.Equal(t, []byte(`{"a":1}`), raw)
}

func TestBodyBytesBase64(t *testing.T) {
	raw, err := BodyBytes(events.APIGatewayProxyRequest{
		Body:            base64.StdEncoding.EncodeToString([]byte(`{"a":1}`)),
		IsBase64Encoded: true,
	})
	require.NoError(t, err)
	require.Equal(t, []byte(`{"a":1}`), raw)
}

func TestBodyBytesInvalidBase64(t *testing.T) {
	_, err := BodyBytes(events.APIGatewayProxyRequest{Body: "not base64!", IsBase64Encoded: true})
	require.Error(t, err)
}

// -----------------------------------------------------------------------------
// Proxy-request resolution
// -----------------------------------------------------------------------------

func TestResolveBodyPlainJSON(t *testing.T) {
	encoded, err := json.Marshal(validUserFields())
	require.NoError(t, err)

	var dst createUserForm
	require.NoError(t, ResolveBody(events.APIGatewayProxyRequest{Body: string(encoded)}, &dst))
	require.Equal(t, "John", dst.FirstName)
	require.Equal(t, 29, dst.Age)
}

func TestResolveBodyBase64CBOR(t *testing.T) {
	cborBytes, err := cbor.Marshal(validUserFields())
	require.NoError(t, err)

	req := events.APIGatewayProxyRequest{
		Body:            base64.StdEncoding.EncodeToString(cborBytes),
		IsBase64Encoded: true,
	}

	var fromProxy, fromMap createUserForm
	require.NoError(t, ResolveBody(req, &fromProxy, WithCodec(codec.CBOR)))
	require.NoError(t, Resolve(validUserFields(), &fromMap))
	require.Equal(t, fromMap, fromProxy)
}

func TestResolveBodyInvalidBase64(t *testing.T) {
	req := events.APIGatewayProxyRequest{Body: "not base64!", IsBase64Encoded: true}

	var dst createUserForm
	validationErr := asValidation(t, ResolveBody(req, &dst))

	require.Equal(t, response.MessageMalformedForm, validationErr.Message)
	require.Len(t, validationErr.Details, 1)
	require.Equal(t, LocationRequestBody, validationErr.Details[0].Location)
	require.Contains(t, validationErr.Schemas, SchemaNameRequestBody)
}

func TestResolveBodyMissingBody(t *testing.T) {
	var dst createUserForm
	validationErr := asValidation(t, ResolveBody(events.APIGatewayProxyRequest{}, &dst))
	require.Equal(t, response.MessageMalformedForm, validationErr.Message)
}
