package loadtest

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/rl1809/commerce-kit/internal/core/domain"
)

// Action is one weighted step a virtual user can take.
type Action struct {
	Name   string
	Weight int
	Run    func(ctx context.Context, u *VirtualUser) error
}

// DefaultActions mirrors a browsing-heavy storefront: reads dominate, writes are rare.
var DefaultActions = []Action{
	{Name: "get_inventory", Weight: 40, Run: func(ctx context.Context, u *VirtualUser) error {
		_, err := u.client.GetInventory(ctx)
		return err
	}},
	{Name: "get_sales", Weight: 30, Run: func(ctx context.Context, u *VirtualUser) error {
		_, err := u.client.GetSales(ctx)
		return err
	}},
	{Name: "get_fulfillment_status", Weight: 15, Run: func(ctx context.Context, u *VirtualUser) error {
		_, err := u.client.GetFulfillmentStatus(ctx, 1)
		return err
	}},
	{Name: "get_users", Weight: 10, Run: func(ctx context.Context, u *VirtualUser) error {
		_, err := u.client.GetAllUsers(ctx)
		return err
	}},
	{Name: "create_fulfillment", Weight: 5, Run: func(ctx context.Context, u *VirtualUser) error {
		_, err := u.client.CreateFulfillment(ctx, u.randomFulfillment())
		return err
	}},
}

// pickAction maps n in [0, total weight) onto the action owning that slice.
func pickAction(actions []Action, n int) Action {
	for _, a := range actions {
		if n < a.Weight {
			return a
		}
		n -= a.Weight
	}
	return actions[len(actions)-1]
}

func totalWeight(actions []Action) int {
	total := 0
	for _, a := range actions {
		total += a.Weight
	}
	return total
}

func (u *VirtualUser) randomFulfillment() domain.FulfillmentRequest {
	return domain.FulfillmentRequest{
		OrderID:     fmt.Sprintf("ORD-%s-%d", uuid.NewString(), u.ID),
		WarehouseID: int64(u.rng.IntN(u.cfg.Warehouses) + 1),
		Items: []domain.ItemRequest{{
			ProductID: int64(u.rng.IntN(u.cfg.Products) + 1),
			Quantity:  u.rng.IntN(3) + 1,
		}},
	}
}
