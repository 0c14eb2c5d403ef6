package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrInvalidRequest = errors.New("invalid request")

type FulfillmentStatus string

const (
	FulfillmentStatusPending   FulfillmentStatus = "pending"
	FulfillmentStatusShipped   FulfillmentStatus = "shipped"
	FulfillmentStatusDelivered FulfillmentStatus = "delivered"
	FulfillmentStatusCancelled FulfillmentStatus = "cancelled"
)

type Fulfillment struct {
	ID          int64             `json:"id"`
	OrderID     string            `json:"order_id"`
	WarehouseID int64             `json:"warehouse_id"`
	Status      FulfillmentStatus `json:"status"`
	CreatedAt   time.Time         `json:"created_at"`

	// Items is only populated by status reads.
	Items []ItemRequest `json:"items,omitempty"`
}

type ItemRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

type FulfillmentItem struct {
	FulfillmentID int64
	ProductID     int64
	Quantity      int
}

type FulfillmentRequest struct {
	OrderID     string        `json:"order_id"`
	WarehouseID int64         `json:"warehouse_id"`
	Items       []ItemRequest `json:"items"`
}

// Validate rejects requests the executor must never see: empty order ids,
// non-positive identifiers and non-positive quantities.
func (r FulfillmentRequest) Validate() error {
	if strings.TrimSpace(r.OrderID) == "" {
		return fmt.Errorf("%w: order_id is required", ErrInvalidRequest)
	}
	if r.WarehouseID <= 0 {
		return fmt.Errorf("%w: warehouse_id must be positive", ErrInvalidRequest)
	}
	if len(r.Items) == 0 {
		return fmt.Errorf("%w: at least one item is required", ErrInvalidRequest)
	}
	for i, item := range r.Items {
		if item.ProductID <= 0 {
			return fmt.Errorf("%w: items[%d].product_id must be positive", ErrInvalidRequest, i)
		}
		if item.Quantity <= 0 {
			return fmt.Errorf("%w: items[%d].quantity must be positive", ErrInvalidRequest, i)
		}
	}
	return nil
}
