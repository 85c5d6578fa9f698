package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the application.
type keyMap struct {
	// Global
	Quit       key.Binding
	Help       key.Binding
	CycleTheme key.Binding
	NextView   key.Binding
	PrevView   key.Binding
	Refresh    key.Binding
	Escape     key.Binding

	// Navigation
	Up   key.Binding
	Down key.Binding

	// Cart
	SizeNext key.Binding
	SizePrev key.Binding
	QtyUp    key.Binding
	QtyDown  key.Binding
	Remove   key.Binding
	Checkout key.Binding

	// Addresses
	SetDefault    key.Binding
	DeleteAddress key.Binding

	// Orders
	CancelItem key.Binding
	ReturnItem key.Binding
	NextPage   key.Binding
	PrevPage   key.Binding

	// Dialogs
	Confirm key.Binding
	Deny    key.Binding
	Field   key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("h", "?"),
			key.WithHelp("h/?", "Toggle help"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),
		NextView: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "Next view"),
		),
		PrevView: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "Previous view"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "Refresh now"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Close"),
		),

		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/up", "Move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/down", "Move down"),
		),

		SizeNext: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "Next size"),
		),
		SizePrev: key.NewBinding(
			key.WithKeys("S"),
			key.WithHelp("S", "Previous size"),
		),
		QtyUp: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "Quantity up"),
		),
		QtyDown: key.NewBinding(
			key.WithKeys("-"),
			key.WithHelp("-", "Quantity down"),
		),
		Remove: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "Remove item"),
		),
		Checkout: key.NewBinding(
			key.WithKeys("P"),
			key.WithHelp("P", "Place order (COD)"),
		),

		SetDefault: key.NewBinding(
			key.WithKeys("enter", "d"),
			key.WithHelp("enter/d", "Make default"),
		),
		DeleteAddress: key.NewBinding(
			key.WithKeys("D"),
			key.WithHelp("D", "Delete address"),
		),

		CancelItem: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "Cancel item"),
		),
		ReturnItem: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "Return item"),
		),
		NextPage: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "Next page"),
		),
		PrevPage: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "Previous page"),
		),

		Confirm: key.NewBinding(
			key.WithKeys("y", "enter"),
			key.WithHelp("y/enter", "Confirm"),
		),
		Deny: key.NewBinding(
			key.WithKeys("n", "esc"),
			key.WithHelp("n/esc", "Cancel"),
		),
		Field: key.NewBinding(
			key.WithKeys("tab", "shift+tab"),
			key.WithHelp("tab", "Switch field"),
		),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Quit}
}

// FullHelp returns key bindings grouped for the help overlay.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NextView, k.PrevView, k.Up, k.Down, k.Refresh},
		{k.SizeNext, k.SizePrev, k.QtyUp, k.QtyDown, k.Remove, k.Checkout},
		{k.SetDefault, k.DeleteAddress},
		{k.CancelItem, k.ReturnItem, k.NextPage, k.PrevPage},
		{k.CycleTheme, k.Help, k.Quit},
	}
}
