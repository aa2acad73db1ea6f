// Command lambdalog-example is a small Lambda function behind API Gateway
// that logs through lambdalog.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/coffersTech/lambdalog"
)

var errMissingOrder = errors.New("missing order id")

func handler(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	log := lambdalog.Named("orders")

	log.Info("Hello from lambdalog", "path", req.Path, "method", req.HTTPMethod)
	lambdalog.AddField(map[string]any{"tenant": req.Headers["x-tenant"]})

	id := req.PathParameters["id"]
	if id == "" {
		log.Exception(errMissingOrder, "Rejecting request")
		return events.APIGatewayProxyResponse{StatusCode: http.StatusBadRequest}, nil
	}

	// Plain slog calls go through the same handler once Wrap has run.
	slog.Debug("Looking up order", "order_id", id)
	log.Warningf("Order %s is served from the example stub", id)

	body, err := json.Marshal(map[string]string{"order_id": id})
	if err != nil {
		return events.APIGatewayProxyResponse{StatusCode: http.StatusInternalServerError}, err
	}
	return events.APIGatewayProxyResponse{StatusCode: http.StatusOK, Body: string(body)}, nil
}

func main() {
	lambda.Start(lambdalog.Wrap(handler))
}
