package state

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/five82/tote/internal/address"
	"github.com/five82/tote/internal/cart"
	"github.com/five82/tote/internal/mutation"
	"github.com/five82/tote/internal/orders"
	"github.com/five82/tote/internal/shop"
)

// noopClient satisfies every mutator; the store tests never dispatch.
type noopClient struct{}

func (noopClient) UpdateCartItem(context.Context, string, shop.CartItemUpdate) (shop.CartItem, bool, error) {
	return shop.CartItem{}, false, nil
}
func (noopClient) RemoveCartItem(context.Context, string) error { return nil }
func (noopClient) SetDefaultAddress(context.Context, string) (shop.Address, bool, error) {
	return shop.Address{}, false, nil
}
func (noopClient) DeleteAddress(context.Context, string) error { return nil }
func (noopClient) CreateOrder(context.Context, shop.CreateOrderRequest) (shop.CreateOrderResponse, error) {
	return shop.CreateOrderResponse{}, nil
}
func (noopClient) CancelOrderItem(context.Context, string, string) (shop.OrderItem, bool, error) {
	return shop.OrderItem{}, false, nil
}
func (noopClient) ReturnOrderItem(context.Context, string, string, shop.ReturnRequest) (shop.OrderItem, bool, error) {
	return shop.OrderItem{}, false, nil
}
func (noopClient) VerifyPayment(context.Context, shop.VerifyPaymentRequest) (shop.VerifyPaymentResponse, error) {
	return shop.VerifyPaymentResponse{}, nil
}

func newStore() *Store {
	d := mutation.NewDispatcher(nil)
	return New(cart.New(noopClient{}, d), address.New(noopClient{}, d), orders.New(noopClient{}, d, 10))
}

func fullRefresh() Refresh {
	return Refresh{
		Cart: &shop.Cart{Items: []shop.CartItem{{
			ID: "c1", Size: "M", Quantity: 2,
			Product: shop.Product{ID: "p1", SalePrice: decimal.NewFromInt(250), Stock: []shop.SizeStock{{Size: "M", Stock: 4}}},
		}}},
		Addresses:    []shop.Address{{ID: "A1", IsDefaultAddress: true}, {ID: "A2"}},
		HasAddresses: true,
		Orders:       &shop.OrdersPage{CurrentPage: 1, TotalPages: 2, Orders: []shop.Order{{ID: "o1"}}},
	}
}

func TestStore_UpdateAndSnapshotClone(t *testing.T) {
	s := newStore()

	before := time.Now()
	s.Update(fullRefresh(), nil)

	snap := s.Snapshot()
	if len(snap.Cart) != 1 || snap.CartCount != 2 {
		t.Fatalf("cart = %#v, want one line of 2", snap.Cart)
	}
	if !snap.Subtotal.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("Subtotal = %s, want 500", snap.Subtotal)
	}
	if len(snap.Addresses) != 2 || snap.DefaultID != "A1" {
		t.Fatalf("addresses = %#v default %q", snap.Addresses, snap.DefaultID)
	}
	if len(snap.Orders) != 1 || snap.OrdersPage.TotalPages != 2 {
		t.Fatalf("orders = %#v page %#v", snap.Orders, snap.OrdersPage)
	}
	if snap.LastUpdated.Before(before) {
		t.Fatalf("LastUpdated = %v, want >= %v", snap.LastUpdated, before)
	}
	if snap.LastError != nil {
		t.Fatalf("LastError = %v, want nil", snap.LastError)
	}

	// Returned snapshot should be independent of the stored one.
	snap.Cart[0].Product.Stock[0].Stock = 999
	snap.Addresses[0].City = "changed"
	snap2 := s.Snapshot()
	if got := snap2.Cart[0].Product.Stock[0].Stock; got != 4 {
		t.Fatalf("Snapshot should clone stock; got %d want 4", got)
	}
	if snap2.Addresses[0].City != "" {
		t.Fatalf("Snapshot should clone addresses; got %q", snap2.Addresses[0].City)
	}
}

func TestStore_UpdateErrorKeepsPreviousData(t *testing.T) {
	s := newStore()
	s.Update(fullRefresh(), nil)

	before := time.Now()
	origErr := errors.New("boom")
	s.Update(Refresh{}, origErr)

	snap := s.Snapshot()
	if len(snap.Cart) != 1 || len(snap.Addresses) != 2 || len(snap.Orders) != 1 {
		t.Fatalf("data changed on error: %#v", snap)
	}
	if snap.LastUpdated.Before(before) {
		t.Fatalf("LastUpdated = %v, want >= %v", snap.LastUpdated, before)
	}
	if snap.LastError == nil || snap.LastError.Error() != "boom" {
		t.Fatalf("LastError = %v, want boom", snap.LastError)
	}
	if reflect.ValueOf(snap.LastError).Pointer() == reflect.ValueOf(origErr).Pointer() {
		t.Fatalf("Snapshot should clone error instance")
	}
}

func TestStore_PartialRefreshApplied(t *testing.T) {
	s := newStore()
	s.Update(fullRefresh(), nil)

	s.Update(Refresh{Addresses: nil, HasAddresses: true}, errors.New("orders down"))
	snap := s.Snapshot()
	if len(snap.Addresses) != 0 {
		t.Fatalf("addresses = %d, want 0 after empty fetch", len(snap.Addresses))
	}
	if len(snap.Cart) != 1 {
		t.Fatalf("cart = %d lines, want 1 kept", len(snap.Cart))
	}
	if snap.ConsecutiveFailures != 1 {
		t.Fatalf("ConsecutiveFailures = %d, want 1", snap.ConsecutiveFailures)
	}
}

func TestStore_ConsecutiveFailures(t *testing.T) {
	s := newStore()

	snap := s.Snapshot()
	if snap.ConsecutiveFailures != 0 || snap.IsOffline() {
		t.Fatalf("initial failures = %d offline=%v", snap.ConsecutiveFailures, snap.IsOffline())
	}

	for i, wantOffline := range []bool{false, true, true} {
		s.Update(Refresh{}, errors.New("fail"))
		snap = s.Snapshot()
		if snap.ConsecutiveFailures != i+1 {
			t.Fatalf("ConsecutiveFailures = %d, want %d", snap.ConsecutiveFailures, i+1)
		}
		if snap.IsOffline() != wantOffline {
			t.Fatalf("IsOffline() = %v, want %v with %d failures", snap.IsOffline(), wantOffline, i+1)
		}
	}

	// Success resets counter
	s.Update(fullRefresh(), nil)
	snap = s.Snapshot()
	if snap.ConsecutiveFailures != 0 || snap.IsOffline() {
		t.Fatalf("after success failures = %d offline=%v", snap.ConsecutiveFailures, snap.IsOffline())
	}
}
