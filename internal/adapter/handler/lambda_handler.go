package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
)

// LambdaHandler serves the same endpoints behind API Gateway proxy integration.
type LambdaHandler struct {
	api *API
}

func NewLambdaHandler(api *API) *LambdaHandler {
	return &LambdaHandler{api: api}
}

func (h *LambdaHandler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	resource := req.Resource
	if resource == "" {
		resource = req.Path
	}

	var res result
	switch req.HTTPMethod + " " + resource {
	case "GET /health":
		res = h.api.health(ctx)
	case "GET /users":
		res = h.api.listUsers(ctx)
	case "GET /sales":
		res = h.api.listSales(ctx)
	case "GET /inventory":
		res = h.api.listInventory(ctx)
	case "PUT /inventory":
		body, err := requestBody(req)
		if err != nil {
			res = fail(http.StatusBadRequest, "invalid request body")
			break
		}
		res = h.api.updateInventory(ctx, body)
	case "POST /fulfillment":
		body, err := requestBody(req)
		if err != nil {
			res = fail(http.StatusBadRequest, "invalid request body")
			break
		}
		res = h.api.createFulfillment(ctx, body, header(req.Headers, IdempotencyKeyHeader))
	case "GET /fulfillment/{fulfillment_id}":
		res = h.api.fulfillmentStatus(ctx, req.PathParameters["fulfillment_id"])
	default:
		res = fail(http.StatusNotFound, "Not found")
	}

	return proxyResponse(res)
}

func requestBody(req events.APIGatewayProxyRequest) ([]byte, error) {
	if req.IsBase64Encoded {
		return base64.StdEncoding.DecodeString(req.Body)
	}
	return []byte(req.Body), nil
}

// header looks a header up case-insensitively; API Gateway keeps the client's casing.
func header(headers map[string]string, name string) string {
	if v, ok := headers[name]; ok {
		return v
	}
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

func proxyResponse(res result) (events.APIGatewayProxyResponse, error) {
	body, err := json.Marshal(res.payload)
	if err != nil {
		return events.APIGatewayProxyResponse{StatusCode: http.StatusInternalServerError}, err
	}

	return events.APIGatewayProxyResponse{
		StatusCode: res.status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(body),
	}, nil
}
