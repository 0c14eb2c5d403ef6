package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/commerce-kit/internal/core/domain"
)

func invoke(t *testing.T, h *LambdaHandler, req events.APIGatewayProxyRequest) (int, envelope) {
	t.Helper()

	resp, err := h.Handle(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "application/json", resp.Headers["Content-Type"])

	var env envelope
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &env), resp.Body)
	return resp.StatusCode, env
}

func TestLambda_Routes(t *testing.T) {
	store := newSeededStore()
	h := NewLambdaHandler(newTestAPI(store, newFakeCache()))

	code, env := invoke(t, h, events.APIGatewayProxyRequest{
		HTTPMethod: http.MethodPost,
		Resource:   "/fulfillment",
		Headers:    map[string]string{"idempotency-key": "key-1"},
		Body:       `{"order_id":"ORD-1","warehouse_id":1,"items":[{"product_id":1,"quantity":2}]}`,
	})
	require.Equal(t, http.StatusOK, code, env.Error)

	var created domain.Fulfillment
	require.NoError(t, json.Unmarshal(env.Data, &created))

	code, env = invoke(t, h, events.APIGatewayProxyRequest{
		HTTPMethod:     http.MethodGet,
		Resource:       "/fulfillment/{fulfillment_id}",
		Path:           "/fulfillment/1",
		PathParameters: map[string]string{"fulfillment_id": "1"},
	})
	require.Equal(t, http.StatusOK, code)

	var status domain.Fulfillment
	require.NoError(t, json.Unmarshal(env.Data, &status))
	assert.Equal(t, created.ID, status.ID)
	assert.Equal(t, []domain.ItemRequest{{ProductID: 1, Quantity: 2}}, status.Items)

	inv, _ := store.Inventory(1, 1)
	assert.Equal(t, 8, inv.Quantity)
}

func TestLambda_IdempotencyHeaderIsCaseInsensitive(t *testing.T) {
	store := newSeededStore()
	h := NewLambdaHandler(newTestAPI(store, newFakeCache()))
	body := `{"order_id":"ORD-1","warehouse_id":1,"items":[{"product_id":1,"quantity":1}]}`

	code, _ := invoke(t, h, events.APIGatewayProxyRequest{
		HTTPMethod: http.MethodPost,
		Resource:   "/fulfillment",
		Headers:    map[string]string{"Idempotency-Key": "key-1"},
		Body:       body,
	})
	require.Equal(t, http.StatusOK, code)

	code, env := invoke(t, h, events.APIGatewayProxyRequest{
		HTTPMethod: http.MethodPost,
		Resource:   "/fulfillment",
		Headers:    map[string]string{"IDEMPOTENCY-KEY": "key-1"},
		Body:       body,
	})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "Duplicate request", env.Error)
}

func TestLambda_Base64Body(t *testing.T) {
	h := NewLambdaHandler(newTestAPI(newSeededStore(), nil))

	code, env := invoke(t, h, events.APIGatewayProxyRequest{
		HTTPMethod:      http.MethodPut,
		Resource:        "/inventory",
		IsBase64Encoded: true,
		Body:            base64.StdEncoding.EncodeToString([]byte(`{"product_id":2,"warehouse_id":1,"quantity":-1}`)),
	})
	require.Equal(t, http.StatusOK, code, env.Error)

	var inv domain.Inventory
	require.NoError(t, json.Unmarshal(env.Data, &inv))
	assert.Equal(t, 4, inv.Quantity)
}

func TestLambda_ListEndpointsAndUnknownRoute(t *testing.T) {
	h := NewLambdaHandler(newTestAPI(newSeededStore(), nil))

	for _, path := range []string{"/users", "/sales", "/inventory", "/health"} {
		code, env := invoke(t, h, events.APIGatewayProxyRequest{HTTPMethod: http.MethodGet, Path: path})
		assert.Equal(t, http.StatusOK, code, path)
		assert.NotNil(t, env.Data, path)
	}

	code, _ := invoke(t, h, events.APIGatewayProxyRequest{HTTPMethod: http.MethodDelete, Resource: "/inventory"})
	assert.Equal(t, http.StatusNotFound, code)
}

func TestLambda_StoreFailureIsGeneric(t *testing.T) {
	h := NewLambdaHandler(newTestAPI(brokenDB{}, nil))

	code, env := invoke(t, h, events.APIGatewayProxyRequest{HTTPMethod: http.MethodGet, Resource: "/sales"})
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "Failed to fetch sales data", env.Error)
}
