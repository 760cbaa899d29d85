// Package apikit is the shared support layer for Lambda-backed HTTP APIs.
//
// It carries the pieces every API service needs and none should reimplement:
// the error taxonomy and the handler wrapper that converts errors into
// response envelopes (this package), the envelope builders (response), form
// and query-parameter resolution (form), wire key casing (casing), payload
// codecs (codec), configuration and secrets access (config), outbound
// notifications (notify), and a local development server (local).
//
// A typical handler resolves its input, does its work, and returns either a
// response envelope or an error; the wrapper decides the status code:
//
//	func getOrder(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
//	    order, err := store.Find(req.PathParameters["id"])
//	    if err != nil {
//	        return events.APIGatewayProxyResponse{}, apikit.NewNotFoundError(req.PathParameters["id"])
//	    }
//	    return response.Ok(order), nil
//	}
//
//	func main() {
//	    apikit.InitLogger("orders-api")
//	    lambda.Start(apikit.WithErrorHandling(getOrder))
//	}
package apikit
