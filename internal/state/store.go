package state

import (
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/five82/tote/internal/address"
	"github.com/five82/tote/internal/cart"
	"github.com/five82/tote/internal/orders"
	"github.com/five82/tote/internal/shop"
)

// Snapshot represents the latest data available to the UI.
type Snapshot struct {
	Cart      []cart.LineView
	Subtotal  decimal.Decimal
	CartCount int

	Addresses []address.View
	DefaultID string

	Orders     []orders.OrderView
	OrdersPage orders.PageInfo

	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int // Number of consecutive refresh failures
}

// IsOffline returns true when the API has been unreachable for multiple polls.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Refresh carries the collections read in one refresh. Nil parts were not
// fetched (or failed) and leave the previous data in place.
type Refresh struct {
	Cart      *shop.Cart
	Addresses []shop.Address
	// HasAddresses distinguishes an empty address list from one not fetched.
	HasAddresses bool
	Orders       *shop.OrdersPage
	// OrdersFor is the page request Orders answers.
	OrdersFor    orders.PageRequest
}

// Store coordinates server refreshes with the domain controllers that own
// the optimistic state.
type Store struct {
	Cart      *cart.Cart
	Addresses *address.Book
	Orders    *orders.Book

	mu          sync.RWMutex
	lastUpdated time.Time
	lastError   error
	failures    int
}

// New returns a Store over the given controllers.
func New(c *cart.Cart, a *address.Book, o *orders.Book) *Store {
	return &Store{Cart: c, Addresses: a, Orders: o}
}

// Update applies the fetched parts of r. When err is non-nil the error is
// recorded and counted; whatever was fetched is still applied.
func (s *Store) Update(r Refresh, err error) {
	if r.Cart != nil {
		s.Cart.Replace(r.Cart.Items)
	}
	if r.HasAddresses {
		s.Addresses.Replace(r.Addresses)
	}
	if r.Orders != nil {
		s.Orders.Replace(r.OrdersFor, *r.Orders)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastUpdated = time.Now()
	if err != nil {
		s.lastError = err
		s.failures++
		return
	}
	s.lastError = nil
	s.failures = 0
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() Snapshot {
	snap := Snapshot{
		Cart:       cloneLines(s.Cart.Lines()),
		Addresses:  s.Addresses.Addresses(),
		DefaultID:  s.Addresses.DefaultID(),
		Orders:     s.Orders.Orders(),
		OrdersPage: s.Orders.Info(),
	}
	snap.Subtotal = decimal.Zero
	for _, l := range snap.Cart {
		snap.Subtotal = snap.Subtotal.Add(l.LineTotal())
		snap.CartCount += l.Quantity.Value
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	snap.LastUpdated = s.lastUpdated
	snap.ConsecutiveFailures = s.failures
	if s.lastError != nil {
		snap.LastError = fmt.Errorf("%w", s.lastError)
	}
	return snap
}

// cloneLines copies the product stock slices the views share with the cart.
func cloneLines(lines []cart.LineView) []cart.LineView {
	if len(lines) == 0 {
		return nil
	}
	for i := range lines {
		if stock := lines[i].Product.Stock; stock != nil {
			dup := make([]shop.SizeStock, len(stock))
			copy(dup, stock)
			lines[i].Product.Stock = dup
		}
	}
	return lines
}
