// Package local serves apikit handlers over plain HTTP for development.
// Handlers written against the Lambda proxy types run unchanged: each
// incoming request is translated into an events.APIGatewayProxyRequest, the
// handler's proxy response is written back out, and a generated request id
// is seeded into the context so log lines correlate the same way they do in
// Lambda.
package local

import (
	"encoding/base64"
	"io"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/poofware/go-apikit"
	"github.com/poofware/go-apikit/response"
)

// Router registers apikit handlers on method+path routes. Path variables use
// gorilla/mux syntax ("/users/{id}") and arrive in the proxy request's
// PathParameters.
type Router struct {
	mux *mux.Router
}

func NewRouter() *Router {
	return &Router{mux: mux.NewRouter()}
}

// Handle registers h for the given HTTP method and path template.
func (r *Router) Handle(method, path string, h apikit.Handler) {
	r.mux.HandleFunc(path, adapt(h)).Methods(method)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// DefaultCORS is the permissive policy used for local development.
func DefaultCORS() cors.Options {
	return cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	}
}

// Serve blocks, serving the router on addr with CORS applied. Pass a
// cors.Options to override DefaultCORS.
func Serve(addr string, router *Router, corsOpts ...cors.Options) error {
	opts := DefaultCORS()
	if len(corsOpts) > 0 {
		opts = corsOpts[0]
	}
	c := cors.New(opts)

	apikit.Logger.Infof("Serving local API on %s", addr)
	return http.ListenAndServe(addr, c.Handler(router))
}

// adapt bridges one apikit.Handler onto net/http.
func adapt(h apikit.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "failed to read request body", http.StatusInternalServerError)
			return
		}

		requestID := uuid.NewString()
		ctx := lambdacontext.NewContext(r.Context(), &lambdacontext.LambdaContext{AwsRequestID: requestID})

		resp, err := h(ctx, proxyRequest(r, string(body), requestID))
		if err != nil {
			// Handlers are normally wrapped with apikit.WithErrorHandling and
			// never error; surface a bare one the same way the wrapper would.
			apikit.Logger.WithError(err).Error("Handler returned an unhandled error")
			resp = response.InternalError()
		}
		if resp.StatusCode == 0 {
			// WriteHeader panics on a zero status code.
			apikit.Logger.Error("Handler returned a response with no status code")
			resp = response.InternalError()
		}

		writeProxyResponse(w, resp)
	}
}

func proxyRequest(r *http.Request, body, requestID string) events.APIGatewayProxyRequest {
	resource := r.URL.Path
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			resource = tpl
		}
	}

	headers := make(map[string]string, len(r.Header))
	multiHeaders := make(map[string][]string, len(r.Header))
	for name, values := range r.Header {
		// API Gateway keeps the last value in the single-value map.
		headers[name] = values[len(values)-1]
		multiHeaders[name] = values
	}

	query := r.URL.Query()
	queryParams := make(map[string]string, len(query))
	multiQueryParams := make(map[string][]string, len(query))
	for name, values := range query {
		queryParams[name] = values[len(values)-1]
		multiQueryParams[name] = values
	}

	return events.APIGatewayProxyRequest{
		Resource:                        resource,
		Path:                            r.URL.Path,
		HTTPMethod:                      r.Method,
		Headers:                         headers,
		MultiValueHeaders:               multiHeaders,
		QueryStringParameters:           queryParams,
		MultiValueQueryStringParameters: multiQueryParams,
		PathParameters:                  mux.Vars(r),
		Body:                            body,
		RequestContext: events.APIGatewayProxyRequestContext{
			RequestID: requestID,
		},
	}
}

func writeProxyResponse(w http.ResponseWriter, resp events.APIGatewayProxyResponse) {
	for name, value := range resp.Headers {
		w.Header().Set(name, value)
	}
	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "application/json")
	}

	body := []byte(resp.Body)
	if resp.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(resp.Body)
		if err != nil {
			http.Error(w, "failed to decode response body", http.StatusInternalServerError)
			return
		}
		body = decoded
	}

	w.WriteHeader(resp.StatusCode)
	if _, err := w.Write(body); err != nil {
		apikit.Logger.WithError(err).Error("Failed to write response body")
	}
}
