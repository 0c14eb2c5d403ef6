package handler

import (
	"fmt"

	"github.com/rl1809/commerce-kit/internal/core/domain"
)

// Request bodies use pointers so a missing field is told apart from a zero value.

type UpdateInventoryRequest struct {
	ProductID   *int64 `json:"product_id"`
	WarehouseID *int64 `json:"warehouse_id"`
	Quantity    *int   `json:"quantity"`
}

func (r UpdateInventoryRequest) toDomain() (domain.InventoryAdjustment, error) {
	switch {
	case r.ProductID == nil:
		return domain.InventoryAdjustment{}, missing("product_id")
	case r.WarehouseID == nil:
		return domain.InventoryAdjustment{}, missing("warehouse_id")
	case r.Quantity == nil:
		return domain.InventoryAdjustment{}, missing("quantity")
	}

	adj := domain.InventoryAdjustment{
		ProductID:   *r.ProductID,
		WarehouseID: *r.WarehouseID,
		Quantity:    *r.Quantity,
	}
	return adj, adj.Validate()
}

type ItemRequest struct {
	ProductID *int64 `json:"product_id"`
	Quantity  *int   `json:"quantity"`
}

type CreateFulfillmentRequest struct {
	OrderID     *string       `json:"order_id"`
	WarehouseID *int64        `json:"warehouse_id"`
	Items       []ItemRequest `json:"items"`
}

func (r CreateFulfillmentRequest) toDomain() (domain.FulfillmentRequest, error) {
	switch {
	case r.OrderID == nil:
		return domain.FulfillmentRequest{}, missing("order_id")
	case r.WarehouseID == nil:
		return domain.FulfillmentRequest{}, missing("warehouse_id")
	case r.Items == nil:
		return domain.FulfillmentRequest{}, missing("items")
	}

	req := domain.FulfillmentRequest{
		OrderID:     *r.OrderID,
		WarehouseID: *r.WarehouseID,
		Items:       make([]domain.ItemRequest, 0, len(r.Items)),
	}
	for i, item := range r.Items {
		if item.ProductID == nil {
			return domain.FulfillmentRequest{}, missing(fmt.Sprintf("items[%d].product_id", i))
		}
		if item.Quantity == nil {
			return domain.FulfillmentRequest{}, missing(fmt.Sprintf("items[%d].quantity", i))
		}
		req.Items = append(req.Items, domain.ItemRequest{ProductID: *item.ProductID, Quantity: *item.Quantity})
	}
	return req, req.Validate()
}

type FulfillmentStatusRequest struct {
	FulfillmentID int64 `json:"fulfillment_id"`
}

type Empty struct{}

func missing(field string) error {
	return fmt.Errorf("%w: %s is required", domain.ErrInvalidRequest, field)
}
