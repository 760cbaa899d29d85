package apikit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/poofware/go-apikit/response"
)

var logHook = test.NewLocal(Logger)

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

func invoke(t *testing.T, h Handler) events.APIGatewayProxyResponse {
	t.Helper()

	req := events.APIGatewayProxyRequest{HTTPMethod: http.MethodGet, Path: "/orders"}
	resp, err := WithErrorHandling(h)(context.Background(), req)
	require.NoError(t, err, "the wrapper must never return an error")
	return resp
}

func decodeMeta(t *testing.T, resp events.APIGatewayProxyResponse) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &body))
	meta, ok := body["meta"].(map[string]any)
	require.True(t, ok)
	return meta
}

// -----------------------------------------------------------------------------
// Outcomes
// -----------------------------------------------------------------------------

func TestWrapperPassesSuccessThrough(t *testing.T) {
	want := response.New(http.StatusOK, response.OkMetadata(), map[string]any{"id": "1"},
		map[string]string{"X-Custom": "yes"})

	got := invoke(t, func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		return want, nil
	})
	require.Equal(t, want, got)
}

func TestWrapperConvertsNotFound(t *testing.T) {
	resp := invoke(t, func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		return events.APIGatewayProxyResponse{}, fmt.Errorf("loading order: %w", NewNotFoundError("order-7"))
	})

	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.Equal(t, "Resource with id order-7 does not exist", decodeMeta(t, resp)["message"])
}

func TestWrapperConvertsValidation(t *testing.T) {
	details := []response.ErrorDetail{{Description: "Field 'email' is required", Location: "email"}}
	schemas := map[string]any{"requestBody": map[string]any{"type": "object"}}

	resp := invoke(t, func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		return events.APIGatewayProxyResponse{}, NewValidationError(details, schemas)
	})

	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	meta := decodeMeta(t, resp)
	require.Equal(t, response.MessageBadRequest, meta["message"])
	require.Len(t, meta["errorDetails"], 1)
	require.Contains(t, meta["schemas"], "requestBody")
}

func TestWrapperPriorityNotFoundWins(t *testing.T) {
	notFound := NewNotFoundError("order-7")
	validation := NewValidationError(nil, nil)

	// Whichever way the chain is joined, not-found outranks validation.
	for _, err := range []error{
		errors.Join(notFound, validation),
		errors.Join(validation, notFound),
	} {
		joined := err
		resp := invoke(t, func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
			return events.APIGatewayProxyResponse{}, joined
		})
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
	}
}

func TestWrapperCatchAllHidesInternalText(t *testing.T) {
	logHook.Reset()

	resp := invoke(t, func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		return events.APIGatewayProxyResponse{}, errors.New("pg: connection refused to 10.0.0.8")
	})

	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	require.Equal(t, response.MessageInternalError, decodeMeta(t, resp)["message"])
	require.NotContains(t, resp.Body, "connection refused")
	require.NotContains(t, resp.Body, "10.0.0.8")

	entry := logHook.LastEntry()
	require.NotNil(t, entry, "unclassified errors must be logged")
	require.Equal(t, logrus.ErrorLevel, entry.Level)
	require.NotEmpty(t, entry.Data["requestId"])
	require.EqualError(t, entry.Data["error"].(error), "pg: connection refused to 10.0.0.8")
}

func TestWrapperRecoversPanic(t *testing.T) {
	logHook.Reset()

	resp := invoke(t, func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		panic("index out of range in pricing table")
	})

	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	require.Equal(t, response.MessageInternalError, decodeMeta(t, resp)["message"])
	require.NotContains(t, resp.Body, "pricing table")

	entry := logHook.LastEntry()
	require.NotNil(t, entry)
	require.Equal(t, logrus.ErrorLevel, entry.Level)
	require.Equal(t, "index out of range in pricing table", entry.Data["panic"])
}

// -----------------------------------------------------------------------------
// Request ids
// -----------------------------------------------------------------------------

func TestRequestIDFromLambdaContext(t *testing.T) {
	ctx := lambdacontext.NewContext(context.Background(), &lambdacontext.LambdaContext{
		AwsRequestID: "req-123",
	})
	require.Equal(t, "req-123", RequestID(ctx))
}

func TestRequestIDGeneratedOutsideLambda(t *testing.T) {
	id := RequestID(context.Background())
	_, err := uuid.Parse(id)
	require.NoError(t, err, "generated request ids must be uuids, got %q", id)
}

// Guard against the wrapper consuming a success response's error slot: a
// handler that returns both a response and an error is treated as failed.
func TestWrapperErrorOutranksResponse(t *testing.T) {
	resp := invoke(t, func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		return response.Ok(map[string]any{"partial": true}), NewNotFoundError("order-9")
	})

	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.NotContains(t, resp.Body, "partial")
	require.True(t, strings.Contains(resp.Body, "order-9"))
}
