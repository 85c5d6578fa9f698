// Package orders owns the paginated order history and the per-item actions
// (cancel, return) a user can take on it.
package orders

import (
	"context"
	"strings"
	"sync"

	"github.com/five82/tote/internal/mutation"
	"github.com/five82/tote/internal/reconcile"
	"github.com/five82/tote/internal/shop"
)

// DefaultLimit is the page size used when none is configured.
const DefaultLimit = 10

// PaymentCashOnDelivery is the payment method that needs no gateway step.
const PaymentCashOnDelivery = "COD"

type item struct {
	item   shop.OrderItem
	status *reconcile.Field[string]
}

type order struct {
	order shop.Order
	items []*item
}

// ItemView is an order item with its displayed status.
type ItemView struct {
	shop.OrderItem
	StatusView reconcile.View[string]
}

// Cancellable reports whether the displayed status allows cancelling.
func (v ItemView) Cancellable() bool {
	return !v.StatusView.Pending() && v.OrderItem.Cancellable()
}

// Returnable reports whether the displayed status allows a return request.
func (v ItemView) Returnable() bool {
	return !v.StatusView.Pending() && v.OrderItem.Returnable()
}

// OrderView is an order with render-ready items.
type OrderView struct {
	shop.Order
	ItemViews []ItemView
}

// PageInfo describes the loaded page.
type PageInfo struct {
	Page       int
	Limit      int
	TotalPages int
	Total      int
}

// HasNext reports whether a later page exists.
func (p PageInfo) HasNext() bool { return p.Page < p.TotalPages }

// HasPrev reports whether an earlier page exists.
func (p PageInfo) HasPrev() bool { return p.Page > 1 }

// PageRequest is the page a fetch asks for. Hand it back to Replace with the
// response so a reply to an older request cannot move the cursor.
type PageRequest struct {
	Page   int
	Limit  int
	cursor uint64
}

// Book holds one page of orders. The requested page moves with Next and Prev;
// the caller fetches it and hands the result to Replace.
type Book struct {
	client shop.OrderMutator
	disp   *mutation.Dispatcher

	mu     sync.RWMutex
	info   PageInfo
	want   int
	cursor uint64 // bumped whenever want is moved by the user
	orders []*order
	index  map[string]*order
}

// New returns an empty Book showing limit orders per page.
func New(client shop.OrderMutator, disp *mutation.Dispatcher, limit int) *Book {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Book{
		client: client,
		disp:   disp,
		info:   PageInfo{Page: 1, Limit: limit},
		want:   1,
		index:  make(map[string]*order),
	}
}

// Request returns the page and limit the next fetch should ask for.
func (b *Book) Request() PageRequest {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return PageRequest{Page: b.want, Limit: b.info.Limit, cursor: b.cursor}
}

// Next moves the requested page forward. It reports false on the last page.
func (b *Book) Next() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.info.TotalPages > 0 && b.want >= b.info.TotalPages {
		return false
	}
	b.want++
	b.cursor++
	return true
}

// Prev moves the requested page back. It reports false on the first page.
func (b *Book) Prev() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.want <= 1 {
		return false
	}
	b.want--
	b.cursor++
	return true
}

// GoTo sets the requested page. Pages below one select the first page; the
// upper bound is only known once the page has been fetched.
func (b *Book) GoTo(page int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.want = max(page, 1)
	b.cursor++
}

// Info returns the pagination state of the loaded page.
func (b *Book) Info() PageInfo {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.info
}

// Replace syncs the book with the page fetched for req. Items that already
// exist keep their pending status edits. The requested page follows the server
// (which may clamp it) only while the cursor has not moved since req was taken.
func (b *Book) Replace(req PageRequest, page shop.OrdersPage) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if page.CurrentPage > 0 {
		b.info.Page = page.CurrentPage
		if req.cursor == b.cursor {
			b.want = page.CurrentPage
		}
	}
	b.info.TotalPages = page.TotalPages
	b.info.Total = page.TotalOrders

	orders := make([]*order, 0, len(page.Orders))
	index := make(map[string]*order, len(page.Orders))
	for _, o := range page.Orders {
		prev := b.index[o.ID]
		next := &order{order: o, items: make([]*item, 0, len(o.Items))}
		for _, it := range o.Items {
			if existing := prev.find(it.ID); existing != nil {
				existing.item = it
				existing.status.Reset(it.Status)
				next.items = append(next.items, existing)
				continue
			}
			next.items = append(next.items, &item{item: it, status: reconcile.New(it.Status)})
		}
		orders = append(orders, next)
		index[o.ID] = next
	}
	b.orders = orders
	b.index = index
}

func (o *order) find(itemID string) *item {
	if o == nil {
		return nil
	}
	for _, it := range o.items {
		if it.item.ID == itemID {
			return it
		}
	}
	return nil
}

// Orders returns the loaded page in server order.
func (b *Book) Orders() []OrderView {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]OrderView, 0, len(b.orders))
	for _, o := range b.orders {
		out = append(out, viewOf(o))
	}
	return out
}

// Order returns one loaded order.
func (b *Book) Order(id string) (OrderView, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	o, ok := b.index[id]
	if !ok {
		return OrderView{}, false
	}
	return viewOf(o), true
}

func viewOf(o *order) OrderView {
	v := OrderView{Order: o.order, ItemViews: make([]ItemView, 0, len(o.items))}
	v.Items = make([]shop.OrderItem, 0, len(o.items))
	for _, it := range o.items {
		status := it.status.View()
		oi := it.item
		oi.Status = status.Value
		v.Items = append(v.Items, oi)
		v.ItemViews = append(v.ItemViews, ItemView{OrderItem: oi, StatusView: status})
	}
	return v
}

func (b *Book) lookup(op, orderID, itemID string) (*item, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	o, ok := b.index[orderID]
	if !ok {
		return nil, shop.NewError(op, shop.KindNotFound, "That order is not loaded.")
	}
	it := o.find(itemID)
	if it == nil {
		return nil, shop.NewError(op, shop.KindNotFound, "That item is not part of the order.")
	}
	return it, nil
}

// Cancel marks an item Cancelled right away and asks the server to cancel it.
func (b *Book) Cancel(ctx context.Context, orderID, itemID string) (*mutation.Task[shop.OrderItem], error) {
	const op = "cancel order item"
	it, err := b.lookup(op, orderID, itemID)
	if err != nil {
		return nil, err
	}
	if v := it.status.View(); v.Pending() || !(shop.OrderItem{Status: v.Value}).Cancellable() {
		return nil, shop.NewError(op, shop.KindValidation, "This item can no longer be cancelled.")
	}
	return b.setStatus(ctx, op, it, shop.ItemStatusCancelled, func(ctx context.Context) (shop.OrderItem, bool, error) {
		return b.client.CancelOrderItem(ctx, orderID, itemID)
	}), nil
}

// Return marks an item Return Requested right away and files the request. A
// reason is required.
func (b *Book) Return(ctx context.Context, orderID, itemID, reason, remarks string) (*mutation.Task[shop.OrderItem], error) {
	const op = "return order item"
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, shop.NewError(op, shop.KindValidation, "Please give a reason for the return.")
	}
	it, err := b.lookup(op, orderID, itemID)
	if err != nil {
		return nil, err
	}
	if v := it.status.View(); v.Pending() || !(shop.OrderItem{Status: v.Value}).Returnable() {
		return nil, shop.NewError(op, shop.KindValidation, "Only delivered items can be returned.")
	}
	req := shop.ReturnRequest{Reason: reason, Remarks: strings.TrimSpace(remarks)}
	return b.setStatus(ctx, op, it, shop.ItemStatusReturnRequested, func(ctx context.Context) (shop.OrderItem, bool, error) {
		return b.client.ReturnOrderItem(ctx, orderID, itemID, req)
	}), nil
}

func (b *Book) setStatus(ctx context.Context, op string, it *item, status string, call func(context.Context) (shop.OrderItem, bool, error)) *mutation.Task[shop.OrderItem] {
	edit := it.status.Begin(status)
	return mutation.Dispatch(ctx, b.disp, mutation.Mutation[shop.OrderItem]{
		Op:       op,
		EntityID: it.item.ID,
		Call:     call,
		Settle: func(r mutation.Result[shop.OrderItem]) {
			switch {
			case !r.OK():
				edit.Fail()
			case r.HasValue && r.Value.Status != "":
				edit.Succeed(r.Value.Status)
			default:
				edit.Commit()
			}
		},
	})
}

// Place creates an order for the cart. It is not optimistic; the order shows
// up on the next refresh.
func (b *Book) Place(ctx context.Context, req shop.CreateOrderRequest) (*mutation.Task[shop.CreateOrderResponse], error) {
	const op = "create order"
	req.AddressID = strings.TrimSpace(req.AddressID)
	req.PaymentMethod = strings.TrimSpace(req.PaymentMethod)
	if req.AddressID == "" {
		return nil, shop.NewError(op, shop.KindValidation, "Choose a delivery address first.")
	}
	if req.PaymentMethod == "" {
		req.PaymentMethod = PaymentCashOnDelivery
	}
	return mutation.Dispatch(ctx, b.disp, mutation.Mutation[shop.CreateOrderResponse]{
		Op:       op,
		EntityID: req.AddressID,
		Call: func(ctx context.Context) (shop.CreateOrderResponse, bool, error) {
			resp, err := b.client.CreateOrder(ctx, req)
			return resp, err == nil, err
		},
	}), nil
}

// VerifyPayment forwards a gateway callback to the backend. An unsuccessful
// verification is reported as a validation failure.
func (b *Book) VerifyPayment(ctx context.Context, req shop.VerifyPaymentRequest) (*mutation.Task[shop.VerifyPaymentResponse], error) {
	const op = "verify payment"
	if req.OrderID == "" || req.PaymentID == "" {
		return nil, shop.NewError(op, shop.KindValidation, "Payment details are incomplete.")
	}
	return mutation.Dispatch(ctx, b.disp, mutation.Mutation[shop.VerifyPaymentResponse]{
		Op:       op,
		EntityID: req.OrderID,
		Call: func(ctx context.Context) (shop.VerifyPaymentResponse, bool, error) {
			resp, err := b.client.VerifyPayment(ctx, req)
			if err != nil {
				return resp, false, err
			}
			if !resp.Success {
				msg := resp.Message
				if msg == "" {
					msg = "Payment could not be verified."
				}
				return resp, true, shop.NewError(op, shop.KindValidation, msg)
			}
			return resp, true, nil
		},
	}), nil
}
