package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/tote/internal/logtail"
	"github.com/five82/tote/internal/orders"
)

// renderCart lists the cart lines with the subtotal below.
func (m Model) renderCart() string {
	styles := m.theme.Styles()
	lines := m.snapshot.Cart
	if len(lines) == 0 {
		return m.fillContent(styles.MutedText.Render("  Your cart is empty."))
	}

	wide := m.width >= LayoutWideWidth
	rows := make([]string, 0, len(lines)+3)
	header := padRight("PRODUCT", colProduct) + " " + padRight("SIZE", colSize) + " " +
		padRight("QTY", colQty) + " " + padRight("PRICE", colMoney) + " " + padRight("TOTAL", colMoney)
	if wide {
		header += " BRAND"
	}
	rows = append(rows, styles.FaintText.Render("  "+header))

	for i, l := range lines {
		size := markPending(l.Size.Value, l.Size.Busy())
		qty := markPending(fmt.Sprintf("%d", l.Quantity.Value), l.Quantity.Busy())
		row := padRight(truncate(l.Product.Name, colProduct), colProduct) + " " +
			padRight(size, colSize) + " " +
			padRight(qty, colQty) + " " +
			padRight(formatMoney(l.Product.SalePrice), colMoney) + " " +
			padRight(formatMoney(l.LineTotal()), colMoney)
		if wide {
			row += " " + truncate(l.Product.Brand.Name, colName)
		}

		var hint string
		if l.LowStock() {
			hint = styles.WarningText.Render(fmt.Sprintf(" only %d left", l.Stock))
		}

		rows = append(rows, m.renderRow(i == m.selected[ViewCart], row, l.Pending(), styles)+hint)
	}

	rows = append(rows, "")
	rows = append(rows, "  "+styles.MutedText.Render("Subtotal ")+
		styles.Text.Bold(true).Render(formatMoney(m.snapshot.Subtotal)))
	return m.fillContent(strings.Join(rows, "\n"))
}

// renderAddresses lists saved addresses, marking the default.
func (m Model) renderAddresses() string {
	styles := m.theme.Styles()
	addrs := m.snapshot.Addresses
	if len(addrs) == 0 {
		return m.fillContent(styles.MutedText.Render("  No saved addresses."))
	}

	rows := make([]string, 0, len(addrs)+1)
	rows = append(rows, styles.FaintText.Render("  "+padRight("", 3)+padRight("NAME", colName)+" "+
		padRight("PINCODE", 8)+" LOCALITY"))
	for i, a := range addrs {
		mark := ""
		if a.IsDefaultAddress {
			mark = "★"
		}
		row := padRight(markPending(mark, a.DefaultPending), 3) +
			padRight(truncate(a.FullName(), colName), colName) + " " +
			padRight(a.Pincode, 8) + " " +
			truncate(a.Locality(), 40)
		rows = append(rows, m.renderRow(i == m.selected[ViewAddresses], row, a.DefaultPending, styles))
	}
	return m.fillContent(strings.Join(rows, "\n"))
}

// orderRow is one selectable item line in the orders view.
type orderRow struct {
	order orders.OrderView
	item  orders.ItemView
	first bool
}

// orderRows flattens orders into item rows, newest order first as served.
func orderRows(list []orders.OrderView) []orderRow {
	var rows []orderRow
	for _, o := range list {
		for i, it := range o.ItemViews {
			rows = append(rows, orderRow{order: o, item: it, first: i == 0})
		}
	}
	return rows
}

// renderOrders lists order items grouped by order, with paging info below.
func (m Model) renderOrders() string {
	styles := m.theme.Styles()
	rows := orderRows(m.snapshot.Orders)
	if len(rows) == 0 {
		return m.fillContent(styles.MutedText.Render("  No orders yet."))
	}

	wide := m.width >= LayoutWideWidth
	out := make([]string, 0, len(rows)*2+2)
	for i, r := range rows {
		if r.first {
			title := "Order " + r.order.OrderNumber
			if wide {
				if ts := r.order.ParsedCreatedAt(); !ts.IsZero() {
					title += "  " + ts.Local().Format("2006-01-02 15:04")
				}
			}
			title += "  " + formatMoney(r.order.TotalAmount) + "  " + r.order.PaymentMethod
			out = append(out, "  "+styles.AccentText.Bold(true).Render(title))
		}

		status := r.item.StatusView.Value
		badge := styles.StatusStyle(status).Render(markPending(status, r.item.StatusView.Pending()))
		row := "  " + padRight(truncate(r.item.Product.Name, colProduct), colProduct) + " " +
			padRight(r.item.Size, colSize) + " " +
			padRight(fmt.Sprintf("x%d", r.item.Quantity), colQty) + " " +
			padRight(formatMoney(r.item.Price), colMoney) + " "
		out = append(out, m.renderRow(i == m.selected[ViewOrders], row, r.item.StatusView.Pending(), styles)+badge)
	}

	info := m.snapshot.OrdersPage
	if info.TotalPages > 0 {
		out = append(out, "", styles.MutedText.Render(fmt.Sprintf("  Page %d of %d  (%d orders)",
			info.Page, info.TotalPages, info.Total)))
	}
	return m.fillContent(strings.Join(out, "\n"))
}

// renderRow styles one list row, highlighting the selection and dimming
// pending rows.
func (m Model) renderRow(selected bool, row string, pending bool, styles Styles) string {
	prefix := "  "
	if selected {
		prefix = "› "
	}
	switch {
	case selected:
		return styles.Selected.Render(prefix + row)
	case pending:
		return styles.MutedText.Render(prefix + row)
	default:
		return styles.Text.Render(prefix + row)
	}
}

// fillContent pads content to the content area height so toasts stay at
// the bottom.
func (m Model) fillContent(content string) string {
	return lipgloss.NewStyle().Height(m.contentHeight()).Render(content)
}

// updateActivityViewport renders the activity log into the viewport, newest
// entry at the bottom.
func (m *Model) updateActivityViewport() {
	if !m.ready {
		return
	}
	styles := m.theme.Styles()
	if len(m.activity) == 0 {
		m.activityViewport.SetContent(styles.MutedText.Render("  No activity yet."))
		return
	}
	lines := make([]string, 0, len(m.activity))
	for _, e := range m.activity {
		lines = append(lines, activityStyle(e, styles).Render(logtail.Format(e)))
	}
	m.activityViewport.SetContent(strings.Join(lines, "\n"))
	m.activityViewport.GotoBottom()
}

func activityStyle(e logtail.Entry, styles Styles) lipgloss.Style {
	switch strings.ToUpper(e.Level) {
	case "ERROR", "FATAL", "PANIC", "DPANIC":
		return styles.DangerText
	case "WARN", "WARNING":
		return styles.WarningText
	case "DEBUG":
		return styles.FaintText
	}
	if e.Failure() {
		return styles.DangerText
	}
	return styles.Text
}
