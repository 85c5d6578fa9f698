// Package app provides the orchestration layer for tote.
//
// # Overview
//
// This package wires configuration, logging, the shop client, the mutation
// dispatcher, the domain controllers and the state store together. It is the
// composition root for both the TUI (Run) and the one-shot CLI commands,
// which use Open and Env.Refresh directly.
//
// # Architecture
//
//  1. Load config from ~/.config/tote/config.toml (TOTE_TOKEN overrides token)
//  2. Build the zap logger writing to the configured log file
//  3. Create the shop.Client and a mutation.Dispatcher
//  4. Build cart.Cart, address.Book and orders.Book over the client
//  5. Wrap them in a state.Store
//  6. Refresh once, start the poller, run the TUI until exit
//
// # Data Flow
//
//	┌──────────────┐
//	│   Run()      │
//	└──────┬───────┘
//	       ├─────> Open()            config, logger, client, store
//	       ├─────> Env.Refresh()     initial read (errgroup, 3 requests)
//	       ├─────> StartPoller()     background refresh loop
//	       └─────> ui.Run()          blocks until quit
//
//	Poller loop:
//	┌─────────────────────────────────────────┐
//	│  wait interval (or RefreshNow)          │
//	│  ├─> FetchCart / FetchAddresses /       │
//	│  │   FetchOrders(page, limit)           │
//	│  └─> store.Update(refresh, err)         │
//	│  failures? wait = base · 2^n, ≤ 30s     │
//	└─────────────────────────────────────────┘
//
// # Refresh Semantics
//
// The three reads run in parallel. Each successful read is applied even when
// another fails, so a flaky orders endpoint does not blank the cart. The first
// failure is recorded on the store and counted toward offline detection.
//
// # Backoff
//
// While refreshes keep failing the poller doubles its wait per consecutive
// failure, capped at 30 seconds (or the base interval, if that is longer).
// One success resets it. RefreshNow skips the wait, e.g. after the user pages
// through orders.
//
// # Error Handling
//
// Fatal errors (returned from Open/Run):
//   - Config file unreadable or invalid
//   - Log file cannot be created
//   - API base URL cannot be parsed
//
// Everything else (refresh failures, mutation failures) is logged and shown
// in the UI; tote keeps running.
package app
