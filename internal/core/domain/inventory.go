package domain

import (
	"fmt"
	"time"
)

type Inventory struct {
	ID          int64     `json:"id"`
	ProductID   int64     `json:"product_id"`
	WarehouseID int64     `json:"warehouse_id"`
	Quantity    int       `json:"quantity"`
	Status      string    `json:"status"`
	LastUpdated time.Time `json:"last_updated"`
}

// InventoryAdjustment increments (or, with a negative Quantity, decrements)
// the stock of one product at one warehouse.
type InventoryAdjustment struct {
	ProductID   int64 `json:"product_id"`
	WarehouseID int64 `json:"warehouse_id"`
	Quantity    int   `json:"quantity"`
}

func (a InventoryAdjustment) Validate() error {
	switch {
	case a.ProductID <= 0:
		return fmt.Errorf("%w: product_id must be positive", ErrInvalidRequest)
	case a.WarehouseID <= 0:
		return fmt.Errorf("%w: warehouse_id must be positive", ErrInvalidRequest)
	case a.Quantity == 0:
		return fmt.Errorf("%w: quantity must be non-zero", ErrInvalidRequest)
	}
	return nil
}
