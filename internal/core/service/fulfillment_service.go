package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rl1809/commerce-kit/internal/core/domain"
	"github.com/rl1809/commerce-kit/internal/port"
)

var (
	ErrDuplicateRequest    = errors.New("duplicate request")
	ErrInsufficientStock   = errors.New("insufficient stock")
	ErrInventoryNotFound   = errors.New("inventory record not found")
	ErrFulfillmentNotFound = errors.New("fulfillment not found")
	ErrTransactionAborted  = errors.New("failed to create fulfillment")
)

type FulfillmentService struct {
	db     port.DatabaseRepository
	cache  port.CacheRepository
	opts   Options
	logger *slog.Logger
}

// NewFulfillmentService builds the executor. cache may be nil, which disables
// idempotency keys and the status cache.
func NewFulfillmentService(db port.DatabaseRepository, cache port.CacheRepository, opts Options, logger *slog.Logger) *FulfillmentService {
	if logger == nil {
		logger = slog.Default()
	}
	return &FulfillmentService{
		db:     db,
		cache:  cache,
		opts:   opts,
		logger: logger.With("component", "fulfillment"),
	}
}

// CreateFulfillment records the fulfillment, its items and the matching
// inventory decrements in one transaction. Any failure leaves the store
// untouched and returns an error matching ErrTransactionAborted.
func (s *FulfillmentService) CreateFulfillment(ctx context.Context, req domain.FulfillmentRequest, idempotencyKey string) (*domain.Fulfillment, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if idempotencyKey != "" && s.cache != nil {
		ok, err := s.cache.SetIdempotency(ctx, idempotencyKey)
		if err != nil {
			return nil, fmt.Errorf("idempotency check failed: %w", err)
		}
		if !ok {
			return nil, ErrDuplicateRequest
		}
	}

	f, err := s.runFulfillmentTx(ctx, req)
	if err != nil {
		if idempotencyKey != "" && s.cache != nil {
			// Let the caller retry with the same key.
			if relErr := s.cache.ReleaseIdempotency(context.WithoutCancel(ctx), idempotencyKey); relErr != nil {
				s.logger.Warn("release idempotency key", "key", idempotencyKey, "error", relErr)
			}
		}
		return nil, err
	}

	s.logger.Info("fulfillment created",
		"fulfillment_id", f.ID,
		"order_id", f.OrderID,
		"warehouse_id", f.WarehouseID,
		"items", len(req.Items),
	)
	return f, nil
}

func (s *FulfillmentService) runFulfillmentTx(ctx context.Context, req domain.FulfillmentRequest) (*domain.Fulfillment, error) {
	txCtx, cancel := context.WithTimeout(ctx, s.opts.txTimeout())
	defer cancel()

	f := &domain.Fulfillment{
		OrderID:     req.OrderID,
		WarehouseID: req.WarehouseID,
		Status:      domain.FulfillmentStatusPending,
	}

	err := s.db.WithinTx(txCtx, func(ctx context.Context, tx port.TxRepository) error {
		if err := tx.InsertFulfillment(ctx, f); err != nil {
			return err
		}

		for _, item := range req.Items {
			err := tx.InsertFulfillmentItem(ctx, domain.FulfillmentItem{
				FulfillmentID: f.ID,
				ProductID:     item.ProductID,
				Quantity:      item.Quantity,
			})
			if err != nil {
				return err
			}

			if err := s.decrement(ctx, tx, item.ProductID, req.WarehouseID, item.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, s.abort(req, err)
	}
	return f, nil
}

func (s *FulfillmentService) decrement(ctx context.Context, tx port.TxRepository, productID, warehouseID int64, quantity int) error {
	inv, err := tx.LockInventory(ctx, productID, warehouseID)
	if err != nil {
		return err
	}
	if inv == nil {
		return fmt.Errorf("%w: product %d in warehouse %d", ErrInventoryNotFound, productID, warehouseID)
	}
	if !s.opts.AllowNegativeStock && inv.Quantity < quantity {
		return fmt.Errorf("%w: product %d in warehouse %d has %d, need %d",
			ErrInsufficientStock, productID, warehouseID, inv.Quantity, quantity)
	}

	rows, err := tx.AdjustInventory(ctx, productID, warehouseID, -quantity)
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("%w: product %d in warehouse %d", ErrInventoryNotFound, productID, warehouseID)
	}
	return nil
}

// abort logs the underlying cause and returns the caller-facing error. Store
// error text stays in the log.
func (s *FulfillmentService) abort(req domain.FulfillmentRequest, cause error) error {
	s.logger.Error("fulfillment transaction rolled back",
		"order_id", req.OrderID,
		"warehouse_id", req.WarehouseID,
		"error", cause,
	)

	switch {
	case errors.Is(cause, ErrInsufficientStock):
		return fmt.Errorf("%w: %w", ErrTransactionAborted, ErrInsufficientStock)
	case errors.Is(cause, ErrInventoryNotFound):
		return fmt.Errorf("%w: %w", ErrTransactionAborted, ErrInventoryNotFound)
	default:
		return ErrTransactionAborted
	}
}

// GetFulfillmentStatus returns the fulfillment with its items.
func (s *FulfillmentService) GetFulfillmentStatus(ctx context.Context, id int64) (*domain.Fulfillment, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: fulfillment id must be positive", domain.ErrInvalidRequest)
	}

	if s.cache != nil {
		cached, err := s.cache.GetFulfillment(ctx, id)
		if err != nil {
			s.logger.Warn("fulfillment cache read", "fulfillment_id", id, "error", err)
		} else if cached != nil {
			if cached.Items == nil {
				cached.Items = []domain.ItemRequest{}
			}
			return cached, nil
		}
	}

	f, err := s.db.GetFulfillment(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get fulfillment %d: %w", id, err)
	}
	if f == nil {
		return nil, ErrFulfillmentNotFound
	}

	if s.cache != nil {
		if err := s.cache.SetFulfillment(ctx, f); err != nil {
			s.logger.Warn("fulfillment cache write", "fulfillment_id", id, "error", err)
		}
	}
	return f, nil
}
