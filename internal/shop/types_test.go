package shop

import (
	"encoding/json"
	"testing"
	"time"
)

func TestProductStockFor(t *testing.T) {
	p := Product{Stock: []SizeStock{{Size: "M", Stock: 3}, {Size: "L", Stock: 0}}}
	if got := p.StockFor("M"); got != 3 {
		t.Fatalf("StockFor(M) = %d, want 3", got)
	}
	if got := p.StockFor("XL"); got != 0 {
		t.Fatalf("StockFor(XL) = %d, want 0", got)
	}
}

func TestOrderItemActions(t *testing.T) {
	tests := []struct {
		status      string
		cancellable bool
		returnable  bool
	}{
		{ItemStatusPending, true, false},
		{ItemStatusShipped, true, false},
		{ItemStatusDelivered, false, true},
		{ItemStatusCancelled, false, false},
		{ItemStatusReturnRequested, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			item := OrderItem{Status: tt.status}
			if item.Cancellable() != tt.cancellable {
				t.Fatalf("Cancellable = %v, want %v", item.Cancellable(), tt.cancellable)
			}
			if item.Returnable() != tt.returnable {
				t.Fatalf("Returnable = %v, want %v", item.Returnable(), tt.returnable)
			}
		})
	}
}

func TestAddressFormatting(t *testing.T) {
	a := Address{FirstName: "Asha", LastName: "Rao", City: "Kochi", State: "Kerala"}
	if got := a.FullName(); got != "Asha Rao" {
		t.Fatalf("FullName = %q, want Asha Rao", got)
	}
	if got := a.Locality(); got != "Kochi, Kerala" {
		t.Fatalf("Locality = %q, want %q", got, "Kochi, Kerala")
	}
}

func TestSalePriceAcceptsStringsAndNumbers(t *testing.T) {
	var p Product
	if err := json.Unmarshal([]byte(`{"salePrice":"1299.00"}`), &p); err != nil {
		t.Fatalf("Unmarshal string price: %v", err)
	}
	if p.SalePrice.String() != "1299" {
		t.Fatalf("SalePrice = %s, want 1299", p.SalePrice)
	}
	if err := json.Unmarshal([]byte(`{"salePrice":12.5}`), &p); err != nil {
		t.Fatalf("Unmarshal numeric price: %v", err)
	}
	if p.SalePrice.String() != "12.5" {
		t.Fatalf("SalePrice = %s, want 12.5", p.SalePrice)
	}
}

func TestParsedCreatedAt(t *testing.T) {
	o := Order{CreatedAt: "2025-12-13T10:11:12.345Z"}
	got := o.ParsedCreatedAt()
	if got.Year() != 2025 || got.Month() != time.December || got.Day() != 13 {
		t.Fatalf("ParsedCreatedAt = %v, want 2025-12-13", got)
	}
	if !(Order{CreatedAt: "yesterday"}).ParsedCreatedAt().IsZero() {
		t.Fatalf("ParsedCreatedAt should be zero for unparseable input")
	}
}
