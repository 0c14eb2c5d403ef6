package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rl1809/commerce-kit/internal/core/domain"
	"github.com/rl1809/commerce-kit/internal/port"
)

// CatalogService serves the read-mostly tables and manual stock adjustments.
type CatalogService struct {
	db     port.DatabaseRepository
	opts   Options
	logger *slog.Logger
}

func NewCatalogService(db port.DatabaseRepository, opts Options, logger *slog.Logger) *CatalogService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CatalogService{db: db, opts: opts, logger: logger.With("component", "catalog")}
}

func (s *CatalogService) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.db.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *CatalogService) ListSales(ctx context.Context) ([]domain.Sale, error) {
	sales, err := s.db.ListSales(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	return sales, nil
}

func (s *CatalogService) ListInventory(ctx context.Context) ([]domain.Inventory, error) {
	records, err := s.db.ListInventory(ctx)
	if err != nil {
		return nil, fmt.Errorf("list inventory: %w", err)
	}
	return records, nil
}

// UpdateInventory adds adj.Quantity to the matching record and returns the
// updated row, or nil when no record matches.
func (s *CatalogService) UpdateInventory(ctx context.Context, adj domain.InventoryAdjustment) (*domain.Inventory, error) {
	if err := adj.Validate(); err != nil {
		return nil, err
	}

	txCtx, cancel := context.WithTimeout(ctx, s.opts.txTimeout())
	defer cancel()

	var updated *domain.Inventory
	err := s.db.WithinTx(txCtx, func(ctx context.Context, tx port.TxRepository) error {
		inv, err := tx.LockInventory(ctx, adj.ProductID, adj.WarehouseID)
		if err != nil || inv == nil {
			return err
		}
		if !s.opts.AllowNegativeStock && inv.Quantity+adj.Quantity < 0 {
			return fmt.Errorf("%w: product %d in warehouse %d has %d",
				ErrInsufficientStock, adj.ProductID, adj.WarehouseID, inv.Quantity)
		}

		if _, err := tx.AdjustInventory(ctx, adj.ProductID, adj.WarehouseID, adj.Quantity); err != nil {
			return err
		}

		updated, err = tx.LockInventory(ctx, adj.ProductID, adj.WarehouseID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("update inventory: %w", err)
	}

	if updated != nil {
		s.logger.Info("inventory updated",
			"product_id", adj.ProductID,
			"warehouse_id", adj.WarehouseID,
			"delta", adj.Quantity,
			"quantity", updated.Quantity,
		)
	}
	return updated, nil
}

func (s *CatalogService) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}
