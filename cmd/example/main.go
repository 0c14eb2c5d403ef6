package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/rl1809/commerce-kit/internal/client"
	"github.com/rl1809/commerce-kit/internal/config"
	"github.com/rl1809/commerce-kit/internal/core/domain"
)

// Walks through every client call against a running server.
func main() {
	config.LoadDotEnv(slog.Default())
	cfg := config.LoadClient()

	logger := config.NewLogger(slog.LevelInfo)
	slog.SetDefault(logger)

	c := client.New(client.Config{BaseURL: cfg.BaseURL, Timeout: cfg.Timeout, Headers: cfg.Headers()})
	defer c.Close()

	if err := run(context.Background(), c); err != nil {
		var upstream *client.UpstreamError
		if errors.As(err, &upstream) {
			logger.Error("api call failed", "status", upstream.StatusCode, "endpoint", upstream.Endpoint, "message", upstream.Message)
		} else {
			logger.Error("example failed", "error", err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, c *client.Client) error {
	users, err := c.GetAllUsers(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("users: %d\n", len(users))

	sales, err := c.GetSales(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("sales: %d\n", len(sales))

	inventory, err := c.GetInventory(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("inventory records in stock: %d\n", len(inventory))

	inv, err := c.UpdateInventory(ctx, 1, 1, 10)
	if err != nil {
		return err
	}
	fmt.Printf("product %d at warehouse %d now has %d\n", inv.ProductID, inv.WarehouseID, inv.Quantity)

	f, err := c.CreateFulfillment(ctx, domain.FulfillmentRequest{
		OrderID:     "ORD-2024-001",
		WarehouseID: 1,
		Items: []domain.ItemRequest{
			{ProductID: 1, Quantity: 2},
			{ProductID: 2, Quantity: 1},
		},
	})
	if err != nil {
		return err
	}
	fmt.Printf("created fulfillment %d (%s)\n", f.ID, f.Status)

	status, err := c.GetFulfillmentStatus(ctx, f.ID)
	if err != nil {
		return err
	}
	fmt.Printf("fulfillment %d: %s, %d items\n", status.ID, status.Status, len(status.Items))
	return nil
}
