// Package state provides the process-wide store shared by the refresh loop,
// the TUI and the CLI.
//
// # Overview
//
// The Store is the coordination point where server refreshes meet the
// optimistic state held by the domain controllers (cart.Cart, address.Book,
// orders.Book). The poller writes into it; the UI reads Snapshots from it.
//
// # Architecture
//
//	Producer (Poller):               Consumer (UI):
//	┌──────────────────┐            ┌──────────────────┐
//	│ FetchCart()      │            │                  │
//	│ FetchAddresses() │            │                  │
//	│ FetchOrders()    │            │                  │
//	│      ↓           │            │                  │
//	│ store.Update()   │───────────→│ store.Snapshot() │
//	│      ↓           │            │      ↓           │
//	│  repeat...       │            │  render views    │
//	└──────────────────┘            └──────────────────┘
//	                                        │
//	                         key press → controller mutation
//
// Mutations never go through Update. They are started on the controllers
// (store.Cart.ChangeQuantity and friends) which own their reconciled fields;
// Update only moves the confirmed values to what the server reported.
//
// # Update Semantics
//
//	// All fetches succeeded
//	store.Update(state.Refresh{Cart: &c, Addresses: a, HasAddresses: true, Orders: &p}, nil)
//	→ controllers replaced
//	→ LastError = nil, ConsecutiveFailures = 0
//
//	// Some fetch failed
//	store.Update(state.Refresh{Cart: &c}, err)
//	→ cart replaced, addresses and orders unchanged
//	→ LastError = err, ConsecutiveFailures++
//
// Pending edits survive a refresh: a line whose quantity is mid-flight keeps
// showing the optimistic value, and the refreshed value becomes the new
// rollback target.
//
// # Offline Detection
//
// IsOffline reports true after two consecutive failed refreshes. The UI uses
// it to show an offline banner, and the poller uses the failure count to back
// off.
//
// # Copying
//
// Snapshot builds fresh slices from the controllers and copies the product
// stock tables the cart views would otherwise share. The recorded error is
// wrapped so callers never hold the stored instance.
package state
