package storage

import (
	"context"
	"maps"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rl1809/commerce-kit/internal/core/domain"
	"github.com/rl1809/commerce-kit/internal/port"
)

type inventoryKey struct {
	productID   int64
	warehouseID int64
}

type memoryState struct {
	users        []domain.User
	sales        []domain.Sale
	inventory    map[inventoryKey]domain.Inventory
	fulfillments map[int64]domain.Fulfillment
	items        []domain.FulfillmentItem

	nextUserID        int64
	nextSaleID        int64
	nextInventoryID   int64
	nextFulfillmentID int64
}

func (s memoryState) clone() memoryState {
	c := s
	c.users = slices.Clone(s.users)
	c.sales = slices.Clone(s.sales)
	c.inventory = maps.Clone(s.inventory)
	c.fulfillments = maps.Clone(s.fulfillments)
	c.items = slices.Clone(s.items)
	return c
}

// MemoryAdapter is a DatabaseRepository kept in process memory. A transaction
// works on a private copy of the state that replaces the live state only on
// success, and holds the adapter lock for its whole duration.
type MemoryAdapter struct {
	mu    sync.Mutex
	state memoryState
	now   func() time.Time
}

func NewMemoryAdapter() *MemoryAdapter {
	return &MemoryAdapter{
		state: memoryState{
			inventory:    make(map[inventoryKey]domain.Inventory),
			fulfillments: make(map[int64]domain.Fulfillment),
		},
		now: func() time.Time { return time.Now().UTC() },
	}
}

func (m *MemoryAdapter) WithinTx(ctx context.Context, fn func(ctx context.Context, tx port.TxRepository) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	work := m.state.clone()
	if err := fn(ctx, &memoryTx{state: &work, now: m.now}); err != nil {
		return err
	}

	// An expired transaction never commits.
	if err := ctx.Err(); err != nil {
		return err
	}

	m.state = work
	return nil
}

func (m *MemoryAdapter) GetFulfillment(ctx context.Context, id int64) (*domain.Fulfillment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	f, ok := m.state.fulfillments[id]
	if !ok {
		return nil, nil
	}

	f.Items = []domain.ItemRequest{}
	for _, item := range m.state.items {
		if item.FulfillmentID == id {
			f.Items = append(f.Items, domain.ItemRequest{ProductID: item.ProductID, Quantity: item.Quantity})
		}
	}
	return &f, nil
}

func (m *MemoryAdapter) ListUsers(ctx context.Context) ([]domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	users := append([]domain.User{}, m.state.users...)
	return users, nil
}

func (m *MemoryAdapter) ListSales(ctx context.Context) ([]domain.Sale, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sales := append([]domain.Sale{}, m.state.sales...)
	sort.SliceStable(sales, func(i, j int) bool {
		return sales[i].CreatedAt.After(sales[j].CreatedAt)
	})
	return sales, nil
}

func (m *MemoryAdapter) ListInventory(ctx context.Context) ([]domain.Inventory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	records := []domain.Inventory{}
	for _, inv := range m.state.inventory {
		if inv.Quantity > 0 {
			records = append(records, inv)
		}
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].ProductID != records[j].ProductID {
			return records[i].ProductID < records[j].ProductID
		}
		return records[i].WarehouseID < records[j].WarehouseID
	})
	return records, nil
}

func (m *MemoryAdapter) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (m *MemoryAdapter) SeedUser(name, email string) domain.User {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state.nextUserID++
	u := domain.User{ID: m.state.nextUserID, Name: name, Email: email, CreatedAt: m.now()}
	m.state.users = append(m.state.users, u)
	return u
}

func (m *MemoryAdapter) SeedSale(s domain.Sale) domain.Sale {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state.nextSaleID++
	s.ID = m.state.nextSaleID
	if s.CreatedAt.IsZero() {
		s.CreatedAt = m.now()
	}
	if s.Status == "" {
		s.Status = "completed"
	}
	m.state.sales = append(m.state.sales, s)
	return s
}

// SeedInventory creates or overwrites the record for (productID, warehouseID).
func (m *MemoryAdapter) SeedInventory(productID, warehouseID int64, quantity int) domain.Inventory {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := inventoryKey{productID: productID, warehouseID: warehouseID}
	inv, ok := m.state.inventory[key]
	if !ok {
		m.state.nextInventoryID++
		inv = domain.Inventory{
			ID:          m.state.nextInventoryID,
			ProductID:   productID,
			WarehouseID: warehouseID,
			Status:      "active",
		}
	}
	inv.Quantity = quantity
	inv.LastUpdated = m.now()
	m.state.inventory[key] = inv
	return inv
}

// SeedDemoData loads warehouses 1-3 with products 1-5 plus a few users and sales.
func (m *MemoryAdapter) SeedDemoData() {
	for warehouseID := int64(1); warehouseID <= 3; warehouseID++ {
		for productID := int64(1); productID <= 5; productID++ {
			m.SeedInventory(productID, warehouseID, 1000)
		}
	}

	m.SeedUser("Ada Lovelace", "ada@example.com")
	m.SeedUser("Grace Hopper", "grace@example.com")

	m.SeedSale(domain.Sale{OrderID: "ORD-2024-001", ProductID: 1, Quantity: 2, TotalAmount: decimal.RequireFromString("39.98")})
	m.SeedSale(domain.Sale{OrderID: "ORD-2024-002", ProductID: 3, Quantity: 1, TotalAmount: decimal.RequireFromString("120.00")})
}

// Inventory returns the current record for (productID, warehouseID).
func (m *MemoryAdapter) Inventory(productID, warehouseID int64) (domain.Inventory, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	inv, ok := m.state.inventory[inventoryKey{productID: productID, warehouseID: warehouseID}]
	return inv, ok
}

func (m *MemoryAdapter) FulfillmentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.state.fulfillments)
}

func (m *MemoryAdapter) FulfillmentItemCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.state.items)
}

type memoryTx struct {
	state *memoryState
	now   func() time.Time
}

func (t *memoryTx) InsertFulfillment(ctx context.Context, f *domain.Fulfillment) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	t.state.nextFulfillmentID++
	f.ID = t.state.nextFulfillmentID
	f.CreatedAt = t.now()

	stored := *f
	stored.Items = nil
	t.state.fulfillments[f.ID] = stored
	return nil
}

func (t *memoryTx) InsertFulfillmentItem(ctx context.Context, item domain.FulfillmentItem) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, ok := t.state.fulfillments[item.FulfillmentID]; !ok {
		return ErrStoreQuery
	}

	t.state.items = append(t.state.items, item)
	return nil
}

func (t *memoryTx) LockInventory(ctx context.Context, productID, warehouseID int64) (*domain.Inventory, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	inv, ok := t.state.inventory[inventoryKey{productID: productID, warehouseID: warehouseID}]
	if !ok {
		return nil, nil
	}
	return &inv, nil
}

func (t *memoryTx) AdjustInventory(ctx context.Context, productID, warehouseID int64, delta int) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	key := inventoryKey{productID: productID, warehouseID: warehouseID}
	inv, ok := t.state.inventory[key]
	if !ok {
		return 0, nil
	}

	inv.Quantity += delta
	inv.LastUpdated = t.now()
	t.state.inventory[key] = inv
	return 1, nil
}
