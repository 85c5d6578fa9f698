package ui

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"

	"github.com/five82/tote/internal/address"
	"github.com/five82/tote/internal/cart"
	"github.com/five82/tote/internal/mutation"
	"github.com/five82/tote/internal/orders"
	"github.com/five82/tote/internal/shop"
	"github.com/five82/tote/internal/state"
)

// fakeShop answers every mutation at once and records what was sent.
type fakeShop struct {
	mu         sync.Mutex
	defaultErr error
	deleted    []string
	returns    []shop.ReturnRequest
}

func (f *fakeShop) UpdateCartItem(_ context.Context, id string, u shop.CartItemUpdate) (shop.CartItem, bool, error) {
	return shop.CartItem{}, false, nil
}
func (f *fakeShop) RemoveCartItem(context.Context, string) error { return nil }
func (f *fakeShop) SetDefaultAddress(_ context.Context, id string) (shop.Address, bool, error) {
	if f.defaultErr != nil {
		return shop.Address{}, false, f.defaultErr
	}
	return shop.Address{}, false, nil
}
func (f *fakeShop) DeleteAddress(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	return nil
}
func (f *fakeShop) CreateOrder(context.Context, shop.CreateOrderRequest) (shop.CreateOrderResponse, error) {
	return shop.CreateOrderResponse{}, nil
}
func (f *fakeShop) CancelOrderItem(context.Context, string, string) (shop.OrderItem, bool, error) {
	return shop.OrderItem{}, false, nil
}
func (f *fakeShop) ReturnOrderItem(_ context.Context, _, _ string, req shop.ReturnRequest) (shop.OrderItem, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.returns = append(f.returns, req)
	return shop.OrderItem{}, false, nil
}
func (f *fakeShop) VerifyPayment(context.Context, shop.VerifyPaymentRequest) (shop.VerifyPaymentResponse, error) {
	return shop.VerifyPaymentResponse{Success: true}, nil
}

func (f *fakeShop) deletedIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deleted...)
}

func newTestModel(t *testing.T, f *fakeShop) (Model, *state.Store) {
	t.Helper()
	d := mutation.NewDispatcher(nil)
	store := state.New(cart.New(f, d), address.New(f, d), orders.New(f, d, 10))
	store.Update(state.Refresh{
		Cart: &shop.Cart{Items: []shop.CartItem{{
			ID: "c1", Size: "M", Quantity: 2,
			Product: shop.Product{
				ID: "p1", Name: "Classic Tee", SalePrice: decimal.NewFromInt(499),
				Stock: []shop.SizeStock{{Size: "M", Stock: 4}, {Size: "L", Stock: 20}},
			},
		}}},
		Addresses: []shop.Address{
			{ID: "A1", FirstName: "Asha", City: "Pune", IsDefaultAddress: true},
			{ID: "A2", FirstName: "Ravi", City: "Goa"},
		},
		HasAddresses: true,
		Orders: &shop.OrdersPage{CurrentPage: 1, TotalPages: 1, TotalOrders: 1, Orders: []shop.Order{{
			ID: "o1", OrderNumber: "ORD-1",
			Items: []shop.OrderItem{{ID: "i1", Size: "M", Quantity: 1, Status: shop.ItemStatusDelivered,
				Product: shop.Product{Name: "Classic Tee"}}},
		}}},
	}, nil)

	m := New(Options{
		Store:      store,
		Dispatcher: d,
		PrefsPath:  filepath.Join(t.TempDir(), "prefs.toml"),
	})
	m = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	m = update(t, m, snapshotMsg(store.Snapshot()))
	return m, store
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

// press sends a key and runs the resulting commands until none are left,
// feeding their messages back into the model.
func press(t *testing.T, m Model, k tea.KeyMsg) Model {
	t.Helper()
	pending := []tea.Msg{k}
	for i := 0; len(pending) > 0; i++ {
		if i > 20 {
			t.Fatal("command chain did not settle")
		}
		var next []tea.Msg
		for _, msg := range pending {
			model, cmd := m.Update(msg)
			m = model.(Model)
			next = append(next, collect(cmd)...)
		}
		pending = next
	}
	return m
}

func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModel_TabCyclesViews(t *testing.T) {
	m, _ := newTestModel(t, &fakeShop{})
	want := []View{ViewAddresses, ViewOrders, ViewActivity, ViewCart}
	for _, v := range want {
		m = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
		if m.currentView != v {
			t.Fatalf("currentView = %v, want %v", m.currentView, v)
		}
	}
	m = press(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	if m.currentView != ViewActivity {
		t.Fatalf("currentView = %v, want activity", m.currentView)
	}
}

func TestParseView(t *testing.T) {
	cases := map[string]View{"orders": ViewOrders, " Addresses ": ViewAddresses, "": ViewCart, "bogus": ViewCart}
	for in, want := range cases {
		if got := parseView(in); got != want {
			t.Fatalf("parseView(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestModel_ToastsExpire(t *testing.T) {
	m, _ := newTestModel(t, &fakeShop{})
	now := time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)
	m.now = now
	m.pushToast("Saved.", toastSuccess)

	m.expireToasts(now.Add(ToastTTL - time.Millisecond))
	if len(m.toasts) != 1 {
		t.Fatalf("toasts = %d before TTL, want 1", len(m.toasts))
	}
	m.expireToasts(now.Add(ToastTTL))
	if len(m.toasts) != 0 {
		t.Fatalf("toasts = %d after TTL, want 0", len(m.toasts))
	}
}

func TestModel_ToastsAreCapped(t *testing.T) {
	m, _ := newTestModel(t, &fakeShop{})
	for _, s := range []string{"a", "b", "c", "d"} {
		m.pushToast(s, toastInfo)
	}
	if len(m.toasts) != maxToasts {
		t.Fatalf("toasts = %d, want %d", len(m.toasts), maxToasts)
	}
	if m.toasts[0].text != "b" {
		t.Fatalf("oldest toast = %q, want b", m.toasts[0].text)
	}
}

func TestModel_FailedDefaultRollsBackWithToast(t *testing.T) {
	f := &fakeShop{defaultErr: &shop.Error{Op: "set default address", Kind: shop.KindNetwork}}
	m, store := newTestModel(t, f)
	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m = press(t, m, runes("j"))
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if got := store.Addresses.DefaultID(); got != "A1" {
		t.Fatalf("DefaultID = %q, want A1", got)
	}
	if len(m.toasts) != 1 || m.toasts[0].level != toastError {
		t.Fatalf("toasts = %+v, want one error", m.toasts)
	}
	if !strings.Contains(m.toasts[0].text, "Could not reach the store") {
		t.Fatalf("toast = %q, want network message", m.toasts[0].text)
	}
	if m.snapshot.DefaultID != "A1" {
		t.Fatalf("snapshot DefaultID = %q, want A1", m.snapshot.DefaultID)
	}
}

func TestModel_DeleteAddressNeedsConfirmation(t *testing.T) {
	f := &fakeShop{}
	m, _ := newTestModel(t, f)
	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m = press(t, m, runes("j"))

	m = press(t, m, runes("D"))
	if m.confirm == nil {
		t.Fatal("confirm dialog not shown")
	}
	m = press(t, m, runes("n"))
	if m.confirm != nil || len(f.deletedIDs()) != 0 {
		t.Fatalf("deny: confirm = %v, deleted = %v", m.confirm, f.deletedIDs())
	}

	m = press(t, m, runes("D"))
	m = press(t, m, runes("y"))
	if got := f.deletedIDs(); len(got) != 1 || got[0] != "A2" {
		t.Fatalf("deleted = %v, want [A2]", got)
	}
	if len(m.snapshot.Addresses) != 1 {
		t.Fatalf("addresses = %d, want 1", len(m.snapshot.Addresses))
	}
}

func TestModel_ReturnPromptRequiresReason(t *testing.T) {
	f := &fakeShop{}
	m, _ := newTestModel(t, f)
	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.currentView != ViewOrders {
		t.Fatalf("currentView = %v, want orders", m.currentView)
	}

	m = press(t, m, runes("r"))
	if m.prompt == nil {
		t.Fatal("return prompt not shown")
	}
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.prompt == nil || m.prompt.err == "" {
		t.Fatal("empty reason should keep the prompt open with an error")
	}

	m.prompt.inputs[fieldReason].SetValue("Too small")
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.prompt != nil {
		t.Fatal("prompt still open after submit")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.returns) != 1 || f.returns[0].Reason != "Too small" {
		t.Fatalf("returns = %+v, want one with reason", f.returns)
	}
}

func TestModel_CheckoutWithoutCartShowsToast(t *testing.T) {
	m, store := newTestModel(t, &fakeShop{})
	store.Update(state.Refresh{Cart: &shop.Cart{}}, nil)
	m = update(t, m, snapshotMsg(store.Snapshot()))

	m = press(t, m, runes("P"))
	if m.confirm != nil {
		t.Fatal("checkout confirm shown for an empty cart")
	}
	if len(m.toasts) != 1 || m.toasts[0].text != "Your cart is empty." {
		t.Fatalf("toasts = %+v", m.toasts)
	}
}

func TestModel_ViewRendersCart(t *testing.T) {
	m, _ := newTestModel(t, &fakeShop{})
	out := m.View()
	for _, want := range []string{"tote", "Classic Tee", "₹998.00", "only 4 left"} {
		if !strings.Contains(out, want) {
			t.Fatalf("View() missing %q", want)
		}
	}
}
