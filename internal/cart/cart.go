// Package cart owns the local view of the user's cart and the optimistic
// edits made to its lines.
package cart

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/five82/tote/internal/mutation"
	"github.com/five82/tote/internal/reconcile"
	"github.com/five82/tote/internal/shop"
)

// line is one cart item with its reconciled fields.
type line struct {
	id       string
	product  shop.Product // guarded by Cart.mu
	size     *reconcile.Field[string]
	quantity *reconcile.Field[int]
	removed  *reconcile.Field[bool]
}

// LineView is a render-ready read of a cart line.
type LineView struct {
	ID              string
	Product         shop.Product
	Size            reconcile.View[string]
	Quantity        reconcile.View[int]
	Removing        bool
	Stock           int
	SelectableSizes []string
	QuantityOptions []int
}

// Pending reports whether any field of the line awaits the server.
func (v LineView) Pending() bool {
	return v.Size.Busy() || v.Quantity.Busy() || v.Removing
}

// LowStock reports whether the stock hint should be shown.
func (v LineView) LowStock() bool {
	return v.Stock < LowStockThreshold
}

// LineTotal is the sale price times the displayed quantity.
func (v LineView) LineTotal() decimal.Decimal {
	return v.Product.SalePrice.Mul(decimal.NewFromInt(int64(v.Quantity.Value)))
}

// Cart holds the cart lines. Lines change only through Replace (server
// refresh) and the mutation methods.
type Cart struct {
	client shop.CartMutator
	disp   *mutation.Dispatcher

	mu    sync.RWMutex
	lines []*line
	index map[string]*line
}

// New returns an empty Cart that sends mutations through client.
func New(client shop.CartMutator, disp *mutation.Dispatcher) *Cart {
	return &Cart{
		client: client,
		disp:   disp,
		index:  make(map[string]*line),
	}
}

// Replace syncs the cart with a server read. Existing lines keep their
// pending edits; their confirmed values move to the server's.
func (c *Cart) Replace(items []shop.CartItem) {
	c.mu.Lock()
	defer c.mu.Unlock()

	lines := make([]*line, 0, len(items))
	index := make(map[string]*line, len(items))
	for _, item := range items {
		l, ok := c.index[item.ID]
		if ok {
			l.product = item.Product
			l.size.Reset(item.Size)
			l.quantity.Reset(item.Quantity)
			l.removed.Reset(false)
		} else {
			l = &line{
				id:       item.ID,
				product:  item.Product,
				size:     reconcile.New(item.Size),
				quantity: reconcile.New(item.Quantity),
				removed:  reconcile.New(false),
			}
		}
		lines = append(lines, l)
		index[item.ID] = l
	}
	c.lines = lines
	c.index = index
}

// Lines returns the visible lines in server order. Lines being removed are
// hidden.
func (c *Cart) Lines() []LineView {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]LineView, 0, len(c.lines))
	for _, l := range c.lines {
		v := c.viewLocked(l)
		if v.Removing {
			continue
		}
		out = append(out, v)
	}
	return out
}

// Line returns the view of one line.
func (c *Cart) Line(id string) (LineView, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	l, ok := c.index[id]
	if !ok {
		return LineView{}, false
	}
	return c.viewLocked(l), true
}

// Subtotal sums the visible lines at their displayed quantities.
func (c *Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, v := range c.Lines() {
		total = total.Add(v.LineTotal())
	}
	return total
}

// Count returns the number of visible units.
func (c *Cart) Count() int {
	n := 0
	for _, v := range c.Lines() {
		n += v.Quantity.Value
	}
	return n
}

func (c *Cart) viewLocked(l *line) LineView {
	size := l.size.View()
	return LineView{
		ID:              l.id,
		Product:         l.product,
		Size:            size,
		Quantity:        l.quantity.View(),
		Removing:        l.removed.Value(),
		Stock:           l.product.StockFor(size.Value),
		SelectableSizes: SelectableSizes(l.product),
		QuantityOptions: QuantityOptions(l.product, size.Value),
	}
}

func (c *Cart) lookup(op, id string) (*line, shop.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	l, ok := c.index[id]
	if !ok {
		return nil, shop.Product{}, shop.NewError(op, shop.KindNotFound, "That item is no longer in your cart.")
	}
	return l, l.product, nil
}

// ChangeSize selects a new size for a line. When the current quantity exceeds
// what the new size allows it is clamped and sent with the same request.
func (c *Cart) ChangeSize(ctx context.Context, id, size string) (*mutation.Task[shop.CartItem], error) {
	const op = "change size"
	l, product, err := c.lookup(op, id)
	if err != nil {
		return nil, err
	}
	if !IsSelectable(product, size) {
		return nil, shop.NewError(op, shop.KindValidation, fmt.Sprintf("Size %s is out of stock.", size))
	}

	sizeEdit := l.size.Begin(size)
	group := reconcile.Group{sizeEdit}
	var qtyEdit *reconcile.Edit[int]
	quantity := l.quantity.Value()
	if clamped := ClampQuantity(product, size, quantity); clamped != quantity {
		qtyEdit = l.quantity.Begin(clamped)
		group = append(group, qtyEdit)
		quantity = clamped
	}

	update := shop.CartItemUpdate{Size: size, Quantity: quantity}
	return mutation.Dispatch(ctx, c.disp, mutation.Mutation[shop.CartItem]{
		Op:       "update cart item",
		EntityID: id,
		Call: func(ctx context.Context) (shop.CartItem, bool, error) {
			return c.client.UpdateCartItem(ctx, id, update)
		},
		Settle: func(r mutation.Result[shop.CartItem]) {
			switch {
			case !r.OK():
				group.Fail()
			case r.HasValue:
				sizeEdit.Succeed(r.Value.Size)
				if qtyEdit != nil {
					qtyEdit.Succeed(r.Value.Quantity)
				} else {
					l.quantity.Reset(r.Value.Quantity)
				}
				c.refreshProduct(l, r.Value.Product)
			default:
				group.Commit()
			}
		},
	}), nil
}

// CycleSize moves to the next (step > 0) or previous selectable size.
func (c *Cart) CycleSize(ctx context.Context, id string, step int) (*mutation.Task[shop.CartItem], error) {
	const op = "change size"
	l, product, err := c.lookup(op, id)
	if err != nil {
		return nil, err
	}
	if step >= 0 {
		step = 1
	} else {
		step = -1
	}
	current := l.size.Value()
	next, ok := nextSize(product, current, step)
	if !ok {
		return nil, shop.NewError(op, shop.KindValidation, "No sizes are in stock.")
	}
	if next == current {
		return nil, shop.NewError(op, shop.KindValidation, "No other size is in stock.")
	}
	return c.ChangeSize(ctx, id, next)
}

// ChangeQuantity sets a line's quantity. The currently displayed size is sent
// with it.
func (c *Cart) ChangeQuantity(ctx context.Context, id string, quantity int) (*mutation.Task[shop.CartItem], error) {
	const op = "change quantity"
	l, product, err := c.lookup(op, id)
	if err != nil {
		return nil, err
	}
	size := l.size.Value()
	ceil := MaxQuantity(product, size)
	if ceil < 1 {
		return nil, shop.NewError(op, shop.KindValidation, fmt.Sprintf("Size %s is out of stock.", size))
	}
	if quantity < 1 || quantity > ceil {
		return nil, shop.NewError(op, shop.KindValidation, fmt.Sprintf("Choose between 1 and %d.", ceil))
	}

	edit := l.quantity.Begin(quantity)
	update := shop.CartItemUpdate{Size: size, Quantity: quantity}
	return mutation.Dispatch(ctx, c.disp, mutation.Mutation[shop.CartItem]{
		Op:       "update cart item",
		EntityID: id,
		Call: func(ctx context.Context) (shop.CartItem, bool, error) {
			return c.client.UpdateCartItem(ctx, id, update)
		},
		Settle: func(r mutation.Result[shop.CartItem]) {
			switch {
			case !r.OK():
				edit.Fail()
			case r.HasValue:
				edit.Succeed(r.Value.Quantity)
				l.size.Reset(r.Value.Size)
				c.refreshProduct(l, r.Value.Product)
			default:
				edit.Commit()
			}
		},
	}), nil
}

// StepQuantity adds delta to the displayed quantity.
func (c *Cart) StepQuantity(ctx context.Context, id string, delta int) (*mutation.Task[shop.CartItem], error) {
	v, ok := c.Line(id)
	if !ok {
		return nil, shop.NewError("change quantity", shop.KindNotFound, "That item is no longer in your cart.")
	}
	return c.ChangeQuantity(ctx, id, v.Quantity.Value+delta)
}

// Remove hides a line immediately and deletes it on the server. A failure
// shows the line again.
func (c *Cart) Remove(ctx context.Context, id string) (*mutation.Task[mutation.Empty], error) {
	const op = "remove cart item"
	l, _, err := c.lookup(op, id)
	if err != nil {
		return nil, err
	}
	edit := l.removed.Begin(true)
	return mutation.Dispatch(ctx, c.disp, mutation.Mutation[mutation.Empty]{
		Op:       op,
		EntityID: id,
		Call: mutation.NoValue(func(ctx context.Context) error {
			return c.client.RemoveCartItem(ctx, id)
		}),
		Settle: func(r mutation.Result[mutation.Empty]) {
			if !r.OK() {
				edit.Fail()
				return
			}
			edit.Commit()
			c.drop(id)
		},
	}), nil
}

func (c *Cart) drop(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.index[id]; !ok {
		return
	}
	delete(c.index, id)
	kept := c.lines[:0]
	for _, l := range c.lines {
		if l.id != id {
			kept = append(kept, l)
		}
	}
	c.lines = kept
}

func (c *Cart) refreshProduct(l *line, p shop.Product) {
	if p.ID == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	l.product = p
}
