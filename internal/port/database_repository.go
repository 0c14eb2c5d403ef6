package port

import (
	"context"

	"github.com/rl1809/commerce-kit/internal/core/domain"
)

type DatabaseRepository interface {
	// WithinTx runs fn inside one transaction on one connection. fn returning
	// an error, or ctx expiring, rolls the whole transaction back.
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx TxRepository) error) error

	// GetFulfillment returns the fulfillment with its items, or nil if absent.
	GetFulfillment(ctx context.Context, id int64) (*domain.Fulfillment, error)

	ListUsers(ctx context.Context) ([]domain.User, error)

	// ListSales returns sales newest first.
	ListSales(ctx context.Context) ([]domain.Sale, error)

	// ListInventory returns only records with a positive quantity.
	ListInventory(ctx context.Context) ([]domain.Inventory, error)

	Ping(ctx context.Context) error
}

// TxRepository is the set of writes available inside WithinTx.
type TxRepository interface {
	// InsertFulfillment stores f and fills in its generated ID and CreatedAt.
	InsertFulfillment(ctx context.Context, f *domain.Fulfillment) error

	InsertFulfillmentItem(ctx context.Context, item domain.FulfillmentItem) error

	// LockInventory locks the (productID, warehouseID) row for the rest of the
	// transaction and returns it, or nil if no such row exists.
	LockInventory(ctx context.Context, productID, warehouseID int64) (*domain.Inventory, error)

	// AdjustInventory adds delta to the row's quantity and reports the number
	// of rows affected.
	AdjustInventory(ctx context.Context, productID, warehouseID int64, delta int) (int64, error)
}
