package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/rl1809/commerce-kit/internal/core/domain"
	"github.com/rl1809/commerce-kit/internal/core/service"
)

type operation string

const (
	opListUsers         operation = "list_users"
	opListSales         operation = "list_sales"
	opListInventory     operation = "list_inventory"
	opUpdateInventory   operation = "update_inventory"
	opCreateFulfillment operation = "create_fulfillment"
	opFulfillmentStatus operation = "fulfillment_status"
)

// Fixed messages for unexpected failures. Store error text never reaches a caller.
var failureMessages = map[operation]string{
	opListUsers:         "Failed to fetch users",
	opListSales:         "Failed to fetch sales data",
	opListInventory:     "Failed to fetch inventory data",
	opUpdateInventory:   "Failed to update inventory",
	opCreateFulfillment: "Failed to create fulfillment",
	opFulfillmentStatus: "Failed to fetch fulfillment status",
}

const IdempotencyKeyHeader = "Idempotency-Key"

type dataResponse struct {
	Data any `json:"data"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// result is a transport-neutral response: an HTTP status plus the envelope.
type result struct {
	status  int
	payload any
}

func ok(data any) result {
	return result{status: http.StatusOK, payload: dataResponse{Data: data}}
}

func fail(status int, message string) result {
	return result{status: status, payload: errorResponse{Error: message}}
}

// API holds the request handling shared by the HTTP, Lambda and gRPC adapters.
type API struct {
	fulfillments *service.FulfillmentService
	catalog      *service.CatalogService
	logger       *slog.Logger
}

func NewAPI(fulfillments *service.FulfillmentService, catalog *service.CatalogService, logger *slog.Logger) *API {
	if logger == nil {
		logger = slog.Default()
	}
	return &API{fulfillments: fulfillments, catalog: catalog, logger: logger.With("component", "api")}
}

func (a *API) listUsers(ctx context.Context) result {
	users, err := a.catalog.ListUsers(ctx)
	if err != nil {
		return a.failure(opListUsers, err)
	}
	return ok(users)
}

func (a *API) listSales(ctx context.Context) result {
	sales, err := a.catalog.ListSales(ctx)
	if err != nil {
		return a.failure(opListSales, err)
	}
	return ok(sales)
}

func (a *API) listInventory(ctx context.Context) result {
	records, err := a.catalog.ListInventory(ctx)
	if err != nil {
		return a.failure(opListInventory, err)
	}
	return ok(records)
}

func (a *API) updateInventory(ctx context.Context, body []byte) result {
	var req UpdateInventoryRequest
	if err := decodeStrict(body, &req); err != nil {
		return fail(http.StatusBadRequest, err.Error())
	}
	adj, err := req.toDomain()
	if err != nil {
		return a.failure(opUpdateInventory, err)
	}

	inv, err := a.catalog.UpdateInventory(ctx, adj)
	if err != nil {
		return a.failure(opUpdateInventory, err)
	}
	if inv == nil {
		return fail(http.StatusNotFound, "Inventory record not found")
	}
	return ok(inv)
}

func (a *API) createFulfillment(ctx context.Context, body []byte, idempotencyKey string) result {
	var req CreateFulfillmentRequest
	if err := decodeStrict(body, &req); err != nil {
		return fail(http.StatusBadRequest, err.Error())
	}
	fr, err := req.toDomain()
	if err != nil {
		return a.failure(opCreateFulfillment, err)
	}

	f, err := a.fulfillments.CreateFulfillment(ctx, fr, strings.TrimSpace(idempotencyKey))
	if err != nil {
		return a.failure(opCreateFulfillment, err)
	}
	return ok(f)
}

func (a *API) fulfillmentStatus(ctx context.Context, rawID string) result {
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil || id <= 0 {
		return fail(http.StatusBadRequest, "invalid fulfillment id")
	}

	f, err := a.fulfillments.GetFulfillmentStatus(ctx, id)
	if err != nil {
		return a.failure(opFulfillmentStatus, err)
	}
	return ok(f)
}

func (a *API) health(ctx context.Context) result {
	if err := a.catalog.Ping(ctx); err != nil {
		a.logger.Warn("health check failed", "error", err)
		return fail(http.StatusServiceUnavailable, "store unavailable")
	}
	return ok(map[string]string{"status": "ok"})
}

// failure maps a service error to a status and caller-facing message.
func (a *API) failure(op operation, err error) result {
	status, message := classifyError(op, err)
	if status == http.StatusInternalServerError {
		a.logger.Error("request failed", "operation", string(op), "error", err)
	}
	return fail(status, message)
}

func classifyError(op operation, err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrFulfillmentNotFound):
		return http.StatusNotFound, "Fulfillment not found"
	case errors.Is(err, service.ErrDuplicateRequest):
		return http.StatusConflict, "Duplicate request"
	case errors.Is(err, service.ErrInsufficientStock):
		return http.StatusConflict, "Insufficient stock"
	case errors.Is(err, service.ErrInventoryNotFound):
		return http.StatusConflict, "Inventory record not found"
	default:
		return http.StatusInternalServerError, failureMessages[op]
	}
}

func decodeStrict(body []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %v", err)
	}
	if dec.More() {
		return errors.New("invalid request body: trailing data")
	}
	return nil
}
