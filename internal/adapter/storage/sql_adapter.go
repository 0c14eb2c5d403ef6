package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rl1809/commerce-kit/internal/core/domain"
	"github.com/rl1809/commerce-kit/internal/port"
)

type SQLAdapter struct {
	db      *sql.DB
	dialect Dialect
}

func NewSQLAdapter(db *sql.DB, dialect Dialect) *SQLAdapter {
	return &SQLAdapter{db: db, dialect: dialect}
}

func (a *SQLAdapter) WithinTx(ctx context.Context, fn func(ctx context.Context, tx port.TxRepository) error) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", classify(err))
	}
	defer tx.Rollback()

	if err := fn(ctx, &sqlTx{tx: tx, dialect: a.dialect}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", classify(err))
	}
	return nil
}

func (a *SQLAdapter) GetFulfillment(ctx context.Context, id int64) (*domain.Fulfillment, error) {
	var f domain.Fulfillment
	err := a.db.QueryRowContext(ctx, a.dialect.Rebind(`
		SELECT id, order_id, warehouse_id, status, created_at
		FROM fulfillments WHERE id = ?`), id,
	).Scan(&f.ID, &f.OrderID, &f.WarehouseID, &f.Status, &f.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query fulfillment: %w", classify(err))
	}

	rows, err := a.db.QueryContext(ctx, a.dialect.Rebind(`
		SELECT product_id, quantity
		FROM fulfillment_items WHERE fulfillment_id = ?
		ORDER BY id`), id,
	)
	if err != nil {
		return nil, fmt.Errorf("query fulfillment items: %w", classify(err))
	}
	defer rows.Close()

	f.Items = []domain.ItemRequest{}
	for rows.Next() {
		var item domain.ItemRequest
		if err := rows.Scan(&item.ProductID, &item.Quantity); err != nil {
			return nil, fmt.Errorf("scan fulfillment item: %w", classify(err))
		}
		f.Items = append(f.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate fulfillment items: %w", classify(err))
	}

	return &f, nil
}

func (a *SQLAdapter) ListUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := a.db.QueryContext(ctx, `SELECT id, name, email, created_at FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", classify(err))
	}
	defer rows.Close()

	users := []domain.User{}
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", classify(err))
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", classify(err))
	}
	return users, nil
}

func (a *SQLAdapter) ListSales(ctx context.Context) ([]domain.Sale, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT id, order_id, product_id, quantity, total_amount, created_at, status
		FROM sales
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query sales: %w", classify(err))
	}
	defer rows.Close()

	sales := []domain.Sale{}
	for rows.Next() {
		var s domain.Sale
		if err := rows.Scan(&s.ID, &s.OrderID, &s.ProductID, &s.Quantity, &s.TotalAmount, &s.CreatedAt, &s.Status); err != nil {
			return nil, fmt.Errorf("scan sale: %w", classify(err))
		}
		sales = append(sales, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sales: %w", classify(err))
	}
	return sales, nil
}

func (a *SQLAdapter) ListInventory(ctx context.Context) ([]domain.Inventory, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT id, product_id, quantity, warehouse_id, last_updated, status
		FROM inventory
		WHERE quantity > 0
		ORDER BY product_id, warehouse_id`)
	if err != nil {
		return nil, fmt.Errorf("query inventory: %w", classify(err))
	}
	defer rows.Close()

	records := []domain.Inventory{}
	for rows.Next() {
		var inv domain.Inventory
		if err := rows.Scan(&inv.ID, &inv.ProductID, &inv.Quantity, &inv.WarehouseID, &inv.LastUpdated, &inv.Status); err != nil {
			return nil, fmt.Errorf("scan inventory: %w", classify(err))
		}
		records = append(records, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate inventory: %w", classify(err))
	}
	return records, nil
}

func (a *SQLAdapter) Ping(ctx context.Context) error {
	return classify(a.db.PingContext(ctx))
}

type sqlTx struct {
	tx      *sql.Tx
	dialect Dialect
}

func (t *sqlTx) InsertFulfillment(ctx context.Context, f *domain.Fulfillment) error {
	if t.dialect == DialectPostgres {
		err := t.tx.QueryRowContext(ctx, `
			INSERT INTO fulfillments (order_id, warehouse_id, status, created_at)
			VALUES ($1, $2, $3, CURRENT_TIMESTAMP)
			RETURNING id, created_at`,
			f.OrderID, f.WarehouseID, f.Status,
		).Scan(&f.ID, &f.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert fulfillment: %w", classify(err))
		}
		return nil
	}

	result, err := t.tx.ExecContext(ctx, `
		INSERT INTO fulfillments (order_id, warehouse_id, status, created_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)`,
		f.OrderID, f.WarehouseID, f.Status,
	)
	if err != nil {
		return fmt.Errorf("insert fulfillment: %w", classify(err))
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("fulfillment id: %w", classify(err))
	}
	f.ID = id

	err = t.tx.QueryRowContext(ctx, `SELECT created_at FROM fulfillments WHERE id = ?`, id).Scan(&f.CreatedAt)
	if err != nil {
		return fmt.Errorf("read fulfillment created_at: %w", classify(err))
	}
	return nil
}

func (t *sqlTx) InsertFulfillmentItem(ctx context.Context, item domain.FulfillmentItem) error {
	_, err := t.tx.ExecContext(ctx, t.dialect.Rebind(`
		INSERT INTO fulfillment_items (fulfillment_id, product_id, quantity)
		VALUES (?, ?, ?)`),
		item.FulfillmentID, item.ProductID, item.Quantity,
	)
	if err != nil {
		return fmt.Errorf("insert fulfillment item: %w", classify(err))
	}
	return nil
}

func (t *sqlTx) LockInventory(ctx context.Context, productID, warehouseID int64) (*domain.Inventory, error) {
	var inv domain.Inventory
	err := t.tx.QueryRowContext(ctx, t.dialect.Rebind(`
		SELECT id, product_id, warehouse_id, quantity, status, last_updated
		FROM inventory
		WHERE product_id = ? AND warehouse_id = ?
		FOR UPDATE`),
		productID, warehouseID,
	).Scan(&inv.ID, &inv.ProductID, &inv.WarehouseID, &inv.Quantity, &inv.Status, &inv.LastUpdated)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lock inventory: %w", classify(err))
	}
	return &inv, nil
}

func (t *sqlTx) AdjustInventory(ctx context.Context, productID, warehouseID int64, delta int) (int64, error) {
	result, err := t.tx.ExecContext(ctx, t.dialect.Rebind(`
		UPDATE inventory
		SET quantity = quantity + ?, last_updated = CURRENT_TIMESTAMP
		WHERE product_id = ? AND warehouse_id = ?`),
		delta, productID, warehouseID,
	)
	if err != nil {
		return 0, fmt.Errorf("update inventory: %w", classify(err))
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", classify(err))
	}
	return rows, nil
}
