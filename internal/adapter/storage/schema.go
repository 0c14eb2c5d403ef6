package storage

import (
	"context"
	"fmt"
)

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS sales (
		id BIGSERIAL PRIMARY KEY,
		order_id TEXT NOT NULL,
		product_id BIGINT NOT NULL,
		quantity INTEGER NOT NULL,
		total_amount NUMERIC(12,2) NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'completed',
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sales_created_at ON sales (created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS inventory (
		id BIGSERIAL PRIMARY KEY,
		product_id BIGINT NOT NULL,
		warehouse_id BIGINT NOT NULL,
		quantity INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'active',
		last_updated TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE (product_id, warehouse_id)
	)`,
	`CREATE TABLE IF NOT EXISTS fulfillments (
		id BIGSERIAL PRIMARY KEY,
		order_id TEXT NOT NULL,
		warehouse_id BIGINT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_fulfillments_order_id ON fulfillments (order_id)`,
	`CREATE TABLE IF NOT EXISTS fulfillment_items (
		id BIGSERIAL PRIMARY KEY,
		fulfillment_id BIGINT NOT NULL REFERENCES fulfillments(id) ON DELETE CASCADE,
		product_id BIGINT NOT NULL,
		quantity INTEGER NOT NULL CHECK (quantity > 0)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_fulfillment_items_fulfillment_id ON fulfillment_items (fulfillment_id)`,
}

// MySQL has no CREATE INDEX IF NOT EXISTS, so indexes are declared inline.
var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		email VARCHAR(255) NOT NULL UNIQUE,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS sales (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		order_id VARCHAR(255) NOT NULL,
		product_id BIGINT NOT NULL,
		quantity INT NOT NULL,
		total_amount DECIMAL(12,2) NOT NULL DEFAULT 0,
		status VARCHAR(50) NOT NULL DEFAULT 'completed',
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		INDEX idx_sales_created_at (created_at)
	)`,
	`CREATE TABLE IF NOT EXISTS inventory (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		product_id BIGINT NOT NULL,
		warehouse_id BIGINT NOT NULL,
		quantity INT NOT NULL DEFAULT 0,
		status VARCHAR(50) NOT NULL DEFAULT 'active',
		last_updated TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY uq_inventory_product_warehouse (product_id, warehouse_id)
	)`,
	`CREATE TABLE IF NOT EXISTS fulfillments (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		order_id VARCHAR(255) NOT NULL,
		warehouse_id BIGINT NOT NULL,
		status VARCHAR(50) NOT NULL DEFAULT 'pending',
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		INDEX idx_fulfillments_order_id (order_id)
	)`,
	`CREATE TABLE IF NOT EXISTS fulfillment_items (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		fulfillment_id BIGINT NOT NULL,
		product_id BIGINT NOT NULL,
		quantity INT NOT NULL CHECK (quantity > 0),
		INDEX idx_fulfillment_items_fulfillment_id (fulfillment_id),
		FOREIGN KEY (fulfillment_id) REFERENCES fulfillments(id) ON DELETE CASCADE
	)`,
}

func (a *SQLAdapter) Migrate(ctx context.Context) error {
	stmts := postgresSchema
	if a.dialect == DialectMySQL {
		stmts = mysqlSchema
	}

	for _, stmt := range stmts {
		if _, err := a.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate %s: %w", a.dialect, classify(err))
		}
	}
	return nil
}
