package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rl1809/commerce-kit/internal/core/domain"
)

const DefaultTimeout = 5 * time.Second

var ErrNetworkTimeout = errors.New("network timeout: request took too long")

// UpstreamError is returned for any non-2xx response.
type UpstreamError struct {
	StatusCode int
	Message    string
	Endpoint   string
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("API Error: %d - %s Endpoint: %s Response: %s", e.StatusCode, e.Message, e.Endpoint, e.Body)
}

type Config struct {
	BaseURL string
	// Timeout bounds each call. Zero means DefaultTimeout.
	Timeout time.Duration
	// Headers are merged over Content-Type: application/json.
	Headers map[string]string
}

type Client struct {
	baseURL    string
	timeout    time.Duration
	headers    http.Header
	httpClient *http.Client
}

func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	headers := http.Header{}
	headers.Set("Content-Type", "application/json")
	for k, v := range cfg.Headers {
		headers.Set(k, v)
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		timeout:    timeout,
		headers:    headers,
		httpClient: &http.Client{Transport: http.DefaultTransport.(*http.Transport).Clone()},
	}
}

func (c *Client) GetAllUsers(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	if err := c.do(ctx, http.MethodGet, "/users", nil, nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *Client) GetSales(ctx context.Context) ([]domain.Sale, error) {
	var sales []domain.Sale
	if err := c.do(ctx, http.MethodGet, "/sales", nil, nil, &sales); err != nil {
		return nil, err
	}
	return sales, nil
}

func (c *Client) GetInventory(ctx context.Context) ([]domain.Inventory, error) {
	var records []domain.Inventory
	if err := c.do(ctx, http.MethodGet, "/inventory", nil, nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// UpdateInventory adds quantity (possibly negative) to the stock of productID at warehouseID.
func (c *Client) UpdateInventory(ctx context.Context, productID, warehouseID int64, quantity int) (*domain.Inventory, error) {
	body := domain.InventoryAdjustment{ProductID: productID, WarehouseID: warehouseID, Quantity: quantity}

	var inv domain.Inventory
	if err := c.do(ctx, http.MethodPut, "/inventory", body, nil, &inv); err != nil {
		return nil, err
	}
	return &inv, nil
}

// CreateFulfillment sends a fresh Idempotency-Key so a replayed request is rejected by the server.
func (c *Client) CreateFulfillment(ctx context.Context, req domain.FulfillmentRequest) (*domain.Fulfillment, error) {
	headers := map[string]string{"Idempotency-Key": uuid.NewString()}

	var f domain.Fulfillment
	if err := c.do(ctx, http.MethodPost, "/fulfillment", req, headers, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

func (c *Client) GetFulfillmentStatus(ctx context.Context, id int64) (*domain.Fulfillment, error) {
	var f domain.Fulfillment
	if err := c.do(ctx, http.MethodGet, "/fulfillment/"+strconv.FormatInt(id, 10), nil, nil, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

// Close releases idle connections held by the client.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error"`
}

func (c *Client) do(ctx context.Context, method, endpoint string, body any, headers map[string]string, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header = c.headers.Clone()
	req.Header.Set("X-Request-ID", uuid.NewString())
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ErrNetworkTimeout
		}
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return ErrNetworkTimeout
		}
		return fmt.Errorf("request %s %s failed: %w", method, endpoint, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ErrNetworkTimeout
		}
		return fmt.Errorf("failed to read response: %w", err)
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		message := env.Error
		if decodeErr != nil || message == "" {
			message = http.StatusText(resp.StatusCode)
		}
		return &UpstreamError{
			StatusCode: resp.StatusCode,
			Message:    message,
			Endpoint:   endpoint,
			Body:       string(raw),
		}
	}

	if decodeErr != nil {
		return fmt.Errorf("failed to decode response: %w", decodeErr)
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("failed to decode data: %w", err)
		}
	}
	return nil
}
