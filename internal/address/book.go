// Package address owns the local view of the user's saved addresses,
// including which one is the default.
package address

import (
	"context"
	"sync"

	"github.com/five82/tote/internal/mutation"
	"github.com/five82/tote/internal/reconcile"
	"github.com/five82/tote/internal/shop"
)

type entry struct {
	address shop.Address
	removed *reconcile.Field[bool]
}

// View is a render-ready address. IsDefaultAddress reflects the displayed
// (possibly optimistic) default.
type View struct {
	shop.Address
	// DefaultPending is set on both the outgoing and incoming default while a
	// default change is in flight.
	DefaultPending bool
}

// Book holds the saved addresses. The default is a single reconciled id, so
// the old and new default always flip, and roll back, together.
type Book struct {
	client shop.AddressMutator
	disp   *mutation.Dispatcher

	mu      sync.RWMutex
	entries []*entry
	index   map[string]*entry
	def     *reconcile.Field[string]
}

// New returns an empty Book.
func New(client shop.AddressMutator, disp *mutation.Dispatcher) *Book {
	return &Book{
		client: client,
		disp:   disp,
		index:  make(map[string]*entry),
		def:    reconcile.New(""),
	}
}

// Replace syncs the book with a server read. When the payload flags more than
// one default, the first wins.
func (b *Book) Replace(addresses []shop.Address) {
	b.mu.Lock()
	defer b.mu.Unlock()

	entries := make([]*entry, 0, len(addresses))
	index := make(map[string]*entry, len(addresses))
	defaultID := ""
	for _, a := range addresses {
		if a.IsDefaultAddress && defaultID == "" {
			defaultID = a.ID
		}
		e, ok := b.index[a.ID]
		if ok {
			e.address = a
			e.removed.Reset(false)
		} else {
			e = &entry{address: a, removed: reconcile.New(false)}
		}
		entries = append(entries, e)
		index[a.ID] = e
	}
	b.entries = entries
	b.index = index
	b.def.Reset(defaultID)
}

// Addresses returns the visible addresses in server order.
func (b *Book) Addresses() []View {
	b.mu.RLock()
	defer b.mu.RUnlock()

	def := b.def.View()
	out := make([]View, 0, len(b.entries))
	for _, e := range b.entries {
		if e.removed.Value() {
			continue
		}
		v := View{Address: e.address}
		v.IsDefaultAddress = e.address.ID == def.Value
		v.DefaultPending = def.Pending() && (e.address.ID == def.Value || e.address.ID == def.Confirmed)
		out = append(out, v)
	}
	return out
}

// DefaultID returns the displayed default id, empty when there is none.
func (b *Book) DefaultID() string {
	return b.def.Value()
}

// Default returns the confirmed default address, for checkout.
func (b *Book) Default() (shop.Address, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	id := b.def.View().Confirmed
	e, ok := b.index[id]
	if !ok || id == "" {
		return shop.Address{}, false
	}
	a := e.address
	a.IsDefaultAddress = true
	return a, true
}

// SetDefault makes id the default. The task is nil when id is already the
// confirmed default and nothing is pending.
func (b *Book) SetDefault(ctx context.Context, id string) (*mutation.Task[shop.Address], error) {
	const op = "set default address"
	if _, err := b.lookup(op, id); err != nil {
		return nil, err
	}
	if v := b.def.View(); !v.Pending() && v.Value == id {
		return nil, nil
	}

	edit := b.def.Begin(id)
	return mutation.Dispatch(ctx, b.disp, mutation.Mutation[shop.Address]{
		Op:       op,
		EntityID: id,
		Call: func(ctx context.Context) (shop.Address, bool, error) {
			return b.client.SetDefaultAddress(ctx, id)
		},
		Settle: func(r mutation.Result[shop.Address]) {
			switch {
			case !r.OK():
				edit.Fail()
			case r.HasValue && r.Value.ID != "":
				b.refresh(r.Value)
				edit.Succeed(r.Value.ID)
			default:
				edit.Commit()
			}
		},
	}), nil
}

// Delete hides an address immediately and removes it on the server. A failure
// shows it again.
func (b *Book) Delete(ctx context.Context, id string) (*mutation.Task[mutation.Empty], error) {
	const op = "delete address"
	e, err := b.lookup(op, id)
	if err != nil {
		return nil, err
	}
	edit := e.removed.Begin(true)
	return mutation.Dispatch(ctx, b.disp, mutation.Mutation[mutation.Empty]{
		Op:       op,
		EntityID: id,
		Call: mutation.NoValue(func(ctx context.Context) error {
			return b.client.DeleteAddress(ctx, id)
		}),
		Settle: func(r mutation.Result[mutation.Empty]) {
			if !r.OK() {
				edit.Fail()
				return
			}
			edit.Commit()
			b.drop(id)
		},
	}), nil
}

func (b *Book) lookup(op, id string) (*entry, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	e, ok := b.index[id]
	if !ok || e.removed.Value() {
		return nil, shop.NewError(op, shop.KindNotFound, "That address no longer exists.")
	}
	return e, nil
}

func (b *Book) refresh(a shop.Address) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if e, ok := b.index[a.ID]; ok {
		e.address = a
	}
}

func (b *Book) drop(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.index[id]; !ok {
		return
	}
	delete(b.index, id)
	kept := b.entries[:0]
	for _, e := range b.entries {
		if e.address.ID != id {
			kept = append(kept, e)
		}
	}
	b.entries = kept
	if b.def.View().Confirmed == id {
		b.def.Reset("")
	}
}
