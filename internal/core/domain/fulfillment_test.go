package domain

import (
	"errors"
	"testing"
)

func TestFulfillmentRequest_Validate(t *testing.T) {
	valid := FulfillmentRequest{
		OrderID:     "ORD-1",
		WarehouseID: 1,
		Items:       []ItemRequest{{ProductID: 1, Quantity: 2}},
	}

	tests := []struct {
		name    string
		mutate  func(r *FulfillmentRequest)
		wantErr bool
	}{
		{name: "valid", mutate: func(r *FulfillmentRequest) {}},
		{name: "blank order id", mutate: func(r *FulfillmentRequest) { r.OrderID = "  " }, wantErr: true},
		{name: "zero warehouse", mutate: func(r *FulfillmentRequest) { r.WarehouseID = 0 }, wantErr: true},
		{name: "no items", mutate: func(r *FulfillmentRequest) { r.Items = nil }, wantErr: true},
		{name: "zero product", mutate: func(r *FulfillmentRequest) { r.Items = []ItemRequest{{ProductID: 0, Quantity: 1}} }, wantErr: true},
		{name: "zero quantity", mutate: func(r *FulfillmentRequest) { r.Items = []ItemRequest{{ProductID: 1, Quantity: 0}} }, wantErr: true},
		{name: "negative quantity", mutate: func(r *FulfillmentRequest) { r.Items = []ItemRequest{{ProductID: 1, Quantity: -3}} }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			req.Items = append([]ItemRequest(nil), valid.Items...)
			tt.mutate(&req)

			err := req.Validate()
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidRequest) {
					t.Errorf("expected ErrInvalidRequest, got: %v", err)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestInventoryAdjustment_Validate(t *testing.T) {
	if err := (InventoryAdjustment{ProductID: 1, WarehouseID: 1, Quantity: -4}).Validate(); err != nil {
		t.Errorf("negative adjustment should be accepted, got: %v", err)
	}
	if err := (InventoryAdjustment{ProductID: 1, WarehouseID: 1}).Validate(); !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest for zero quantity, got: %v", err)
	}
	if err := (InventoryAdjustment{WarehouseID: 1, Quantity: 1}).Validate(); !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest for missing product, got: %v", err)
	}
}
