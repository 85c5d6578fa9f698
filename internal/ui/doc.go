// Package ui provides the terminal user interface for tote.
//
// # Architecture Overview
//
// The UI is a Bubble Tea program. Model holds only presentation state; cart,
// address and order data live in the controllers behind state.Store, which
// own the optimistic fields. The model re-reads a state.Snapshot on every
// tick and after every key that starts a mutation, so pending values show up
// on the next frame without the UI tracking them itself.
//
// # Views
//
//   - Cart: lines with size, quantity, price and a low stock hint
//   - Addresses: saved addresses with the default marked
//   - Orders: order items grouped by order, one page at a time
//   - Activity: the tail of tote's own log file
//
// Values still waiting on the server carry a trailing "…".
//
// # Mutation Flow
//
//  1. A key calls a controller method (cart.Cart, address.Book, orders.Book)
//  2. A rejected call shows its message as a toast right away
//  3. A dispatched call returns a mutation.Task; the model fetches the snapshot
//     to show the optimistic value and waits on the task in a command
//  4. When the task settles the controller has already confirmed or rolled
//     back; a failure shows the server's message as a toast
//
// Destructive actions (delete address, cancel item, place order) go through a
// confirmation dialog. Return requests open a two field prompt.
//
// # Key Bindings
//
// See keys.go. tab and shift+tab cycle views, j/k move the selection, R asks
// the poller for an immediate refresh, T cycles the theme and h or ? opens
// the help overlay. Theme and view are saved to the prefs file.
package ui
