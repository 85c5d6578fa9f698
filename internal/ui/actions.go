package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/five82/tote/internal/mutation"
	"github.com/five82/tote/internal/shop"
)

// mutationDoneMsg reports a settled mutation. By the time it arrives the
// controllers have already reconciled their fields.
type mutationDoneMsg struct {
	op       string
	entityID string
	ok       bool
	message  string
	success  string
	// refresh asks for a full refresh after success, for mutations whose
	// effects are not mirrored locally.
	refresh bool
}

// awaitTask waits for t and reports it as a mutationDoneMsg.
func awaitTask[T any](ctx context.Context, t *mutation.Task[T], success string, refresh bool) tea.Cmd {
	return func() tea.Msg {
		res, err := t.Wait(ctx)
		if err != nil {
			return nil
		}
		return mutationDoneMsg{
			op:       res.Mutation.Op,
			entityID: res.Mutation.EntityID,
			ok:       res.OK(),
			message:  res.Message(),
			success:  success,
			refresh:  refresh,
		}
	}
}

// startTask turns a controller call into UI commands. A rejected call shows
// its message at once; a dispatched one re-reads the optimistic snapshot and
// waits for the server.
func startTask[T any](m Model, t *mutation.Task[T], err error, success string, refresh bool) (Model, tea.Cmd) {
	if err != nil {
		m.pushToast(errorText(err), toastError)
		return m, nil
	}
	if t == nil {
		return m, nil
	}
	return m, tea.Batch(fetchSnapshotCmd(m.store), awaitTask(m.ctx, t, success, refresh))
}

func errorText(err error) string {
	return shop.AsError("", err).UserMessage()
}

func (m Model) handleMutationDone(msg mutationDoneMsg) (tea.Model, tea.Cmd) {
	if msg.ok {
		if msg.success != "" {
			m.pushToast(msg.success, toastSuccess)
		}
		if msg.refresh {
			m.requestRefresh()
		}
	} else {
		m.log.Debug("mutation failed",
			zap.String("op", msg.op),
			zap.String("id", msg.entityID),
			zap.String("message", msg.message))
		m.pushToast(msg.message, toastError)
	}
	if m.store == nil {
		return m, nil
	}
	return m, fetchSnapshotCmd(m.store)
}

// handleCartKey applies cart actions to the selected line.
func (m Model) handleCartKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Checkout) {
		return m.openCheckout()
	}
	lines := m.snapshot.Cart
	sel := m.selected[ViewCart]
	if m.store == nil || sel >= len(lines) {
		return m, nil
	}
	id := lines[sel].ID
	c := m.store.Cart

	switch {
	case key.Matches(msg, m.keys.SizeNext):
		t, err := c.CycleSize(m.ctx, id, 1)
		return startTask(m, t, err, "", false)
	case key.Matches(msg, m.keys.SizePrev):
		t, err := c.CycleSize(m.ctx, id, -1)
		return startTask(m, t, err, "", false)
	case key.Matches(msg, m.keys.QtyUp):
		t, err := c.StepQuantity(m.ctx, id, 1)
		return startTask(m, t, err, "", false)
	case key.Matches(msg, m.keys.QtyDown):
		t, err := c.StepQuantity(m.ctx, id, -1)
		return startTask(m, t, err, "", false)
	case key.Matches(msg, m.keys.Remove):
		t, err := c.Remove(m.ctx, id)
		return startTask(m, t, err, "Item removed.", false)
	}
	return m, nil
}

// openCheckout asks before placing a cash-on-delivery order to the default
// address.
func (m Model) openCheckout() (tea.Model, tea.Cmd) {
	if m.store == nil {
		return m, nil
	}
	if len(m.snapshot.Cart) == 0 {
		m.pushToast("Your cart is empty.", toastError)
		return m, nil
	}
	def, ok := m.store.Addresses.Default()
	if !ok {
		m.pushToast("Choose a delivery address first.", toastError)
		return m, nil
	}
	body := fmt.Sprintf("Place a cash on delivery order of %s to %s, %s?",
		formatMoney(m.snapshot.Subtotal), def.FullName(), def.Locality())
	addressID := def.ID
	m.confirm = &confirmDialog{
		title: "Place order",
		body:  body,
		action: func(m Model) (Model, tea.Cmd) {
			t, err := m.store.Orders.Place(m.ctx, shop.CreateOrderRequest{AddressID: addressID})
			return startTask(m, t, err, "Order placed.", true)
		},
	}
	return m, nil
}

// handleAddressKey applies address actions to the selected address.
func (m Model) handleAddressKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	addrs := m.snapshot.Addresses
	sel := m.selected[ViewAddresses]
	if m.store == nil || sel >= len(addrs) {
		return m, nil
	}
	a := addrs[sel]

	switch {
	case key.Matches(msg, m.keys.SetDefault):
		t, err := m.store.Addresses.SetDefault(m.ctx, a.ID)
		return startTask(m, t, err, "", false)
	case key.Matches(msg, m.keys.DeleteAddress):
		id := a.ID
		m.confirm = &confirmDialog{
			title: "Delete address",
			body:  fmt.Sprintf("Delete the address for %s, %s?", a.FullName(), a.Locality()),
			action: func(m Model) (Model, tea.Cmd) {
				t, err := m.store.Addresses.Delete(m.ctx, id)
				return startTask(m, t, err, "Address deleted.", false)
			},
		}
		return m, nil
	}
	return m, nil
}

// handleOrdersKey applies item actions and paging in the orders view.
func (m Model) handleOrdersKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.store == nil {
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.NextPage):
		if m.store.Orders.Next() {
			m.selected[ViewOrders] = 0
			m.requestRefresh()
		}
		return m, nil
	case key.Matches(msg, m.keys.PrevPage):
		if m.store.Orders.Prev() {
			m.selected[ViewOrders] = 0
			m.requestRefresh()
		}
		return m, nil
	}

	rows := orderRows(m.snapshot.Orders)
	sel := m.selected[ViewOrders]
	if sel >= len(rows) {
		return m, nil
	}
	r := rows[sel]
	orderID, itemID := r.order.ID, r.item.ID

	switch {
	case key.Matches(msg, m.keys.CancelItem):
		m.confirm = &confirmDialog{
			title: "Cancel item",
			body:  fmt.Sprintf("Cancel %s (%s) from order %s?", r.item.Product.Name, r.item.Size, r.order.OrderNumber),
			action: func(m Model) (Model, tea.Cmd) {
				t, err := m.store.Orders.Cancel(m.ctx, orderID, itemID)
				return startTask(m, t, err, "Item cancelled.", false)
			},
		}
		return m, nil
	case key.Matches(msg, m.keys.ReturnItem):
		if !r.item.Returnable() {
			m.pushToast("Only delivered items can be returned.", toastError)
			return m, nil
		}
		m.prompt = newReturnPrompt(orderID, itemID, r.item.Product.Name)
		return m, m.prompt.focusCmd()
	}
	return m, nil
}
