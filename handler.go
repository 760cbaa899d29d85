package apikit

import (
	"context"
	"errors"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/poofware/go-apikit/response"
)

// Handler is the signature of an API Gateway proxy handler used throughout
// this library. It is exactly what lambda.Start accepts, so a wrapped
// handler drops straight into a Lambda entrypoint.
type Handler func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error)

// WithErrorHandling converts a handler's returned error into the matching
// response envelope, so route code simply returns errors and never builds
// failure responses by hand.
//
// Classification order is fixed: NotFoundError first, then ValidationError,
// then everything else. Exactly one outcome is produced per invocation. An
// unclassified error or a panic is logged with the request id and becomes a
// 500 envelope; its text never reaches the response body.
func WithErrorHandling(h Handler) Handler {
	return func(ctx context.Context, req events.APIGatewayProxyRequest) (resp events.APIGatewayProxyResponse, err error) {
		defer func() {
			if r := recover(); r != nil {
				Logger.WithFields(logrus.Fields{
					"requestId": RequestID(ctx),
					"method":    req.HTTPMethod,
					"path":      req.Path,
					"panic":     r,
				}).Error("Recovered from panic while handling request")
				resp = response.InternalError()
				err = nil
			}
		}()

		resp, err = h(ctx, req)
		if err == nil {
			return resp, nil
		}

		var notFound *NotFoundError
		if errors.As(err, &notFound) {
			return response.NotFound(notFound.Identifier), nil
		}

		var validation *ValidationError
		if errors.As(err, &validation) {
			return response.Bad(validation.Details, validation.Schemas), nil
		}

		Logger.WithFields(logrus.Fields{
			"requestId": RequestID(ctx),
			"method":    req.HTTPMethod,
			"path":      req.Path,
		}).WithError(err).Error("Request failed with unclassified error")
		return response.InternalError(), nil
	}
}

// RequestID returns the Lambda request id from ctx. Outside Lambda (unit
// tests, callers that never set a lambda context) it generates a uuid so log
// lines always carry an id; the local dev server seeds the context itself so
// all lines of one request share it.
func RequestID(ctx context.Context) string {
	if lc, ok := lambdacontext.FromContext(ctx); ok && lc.AwsRequestID != "" {
		return lc.AwsRequestID
	}
	return uuid.NewString()
}
