package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/commerce-kit/internal/core/domain"
)

func TestClient_MergesHeaders(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL, Headers: map[string]string{"Authorization": "Bearer token"}})
	defer c.Close()

	_, err := c.GetAllUsers(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "application/json", got.Get("Content-Type"))
	assert.Equal(t, "Bearer token", got.Get("Authorization"))
	_, err = uuid.Parse(got.Get("X-Request-ID"))
	assert.NoError(t, err)
}

func TestClient_HeadersOverrideContentType(t *testing.T) {
	var contentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL, Headers: map[string]string{"Content-Type": "application/vnd.api+json"}})
	_, err := c.GetSales(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "application/vnd.api+json", contentType)
}

func TestClient_CreateFulfillment(t *testing.T) {
	var (
		mu   sync.Mutex
		keys []string
		body domain.FulfillmentRequest
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/fulfillment", r.URL.Path)

		mu.Lock()
		keys = append(keys, r.Header.Get("Idempotency-Key"))
		mu.Unlock()
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		w.Write([]byte(`{"data":{"id":7,"order_id":"ORD-1","warehouse_id":1,"status":"pending","created_at":"2024-05-01T12:00:00Z"}}`))
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL + "/"})
	req := domain.FulfillmentRequest{OrderID: "ORD-1", WarehouseID: 1, Items: []domain.ItemRequest{{ProductID: 1, Quantity: 2}}}

	f, err := c.CreateFulfillment(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, int64(7), f.ID)
	assert.Equal(t, domain.FulfillmentStatusPending, f.Status)
	assert.Equal(t, req, body)

	_, err = c.CreateFulfillment(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, keys, 2)
	assert.NotEmpty(t, keys[0])
	assert.NotEqual(t, keys[0], keys[1])
}

func TestClient_UpdateInventoryAndStatus(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/inventory", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		var adj domain.InventoryAdjustment
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&adj))
		assert.Equal(t, domain.InventoryAdjustment{ProductID: 1, WarehouseID: 2, Quantity: -3}, adj)
		w.Write([]byte(`{"data":{"id":1,"product_id":1,"warehouse_id":2,"quantity":7,"status":"active"}}`))
	})
	mux.HandleFunc("/fulfillment/7", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"id":7,"status":"pending","items":[{"product_id":1,"quantity":2}]}}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL})

	inv, err := c.UpdateInventory(context.Background(), 1, 2, -3)
	require.NoError(t, err)
	assert.Equal(t, 7, inv.Quantity)

	f, err := c.GetFulfillmentStatus(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, []domain.ItemRequest{{ProductID: 1, Quantity: 2}}, f.Items)
}

func TestClient_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"Failed to fetch inventory data"}`))
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL})
	_, err := c.GetInventory(context.Background())

	var upstream *UpstreamError
	require.True(t, errors.As(err, &upstream), "got %v", err)
	assert.Equal(t, http.StatusInternalServerError, upstream.StatusCode)
	assert.Equal(t, "Failed to fetch inventory data", upstream.Message)
	assert.Equal(t, "/inventory", upstream.Endpoint)
	assert.Contains(t, upstream.Body, "Failed to fetch inventory data")
	assert.Equal(t,
		`API Error: 500 - Failed to fetch inventory data Endpoint: /inventory Response: {"error":"Failed to fetch inventory data"}`,
		err.Error())
}

func TestClient_UpstreamErrorWithoutJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL})
	_, err := c.GetSales(context.Background())

	var upstream *UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, "Bad Gateway", upstream.Message)
}

func TestClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c := New(Config{BaseURL: srv.URL, Timeout: 50 * time.Millisecond})
	defer c.Close()

	start := time.Now()
	_, err := c.GetAllUsers(context.Background())

	assert.ErrorIs(t, err, ErrNetworkTimeout)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestClient_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := New(Config{BaseURL: url})
	_, err := c.GetAllUsers(context.Background())

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNetworkTimeout)
	var upstream *UpstreamError
	assert.False(t, errors.As(err, &upstream))
}
