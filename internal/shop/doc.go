// Package shop provides an HTTP client for the storefront REST API.
//
// # Overview
//
// This package is the only place tote talks to the backend. It covers the
// user-facing endpoints for the cart, saved addresses and orders, and maps
// every failure onto a small taxonomy the UI can act on.
//
// # Architecture
//
//   - client.go: Client, request plumbing and the Fetcher/Mutator interfaces
//   - types.go: Data structures mirroring the API payloads
//   - errors.go: Error, Kind and status classification
//
// # Client Usage
//
//	client, err := shop.NewClient("https://shop.example.com/api", token)
//	if err != nil {
//		log.Fatalf("failed to create client: %v", err)
//	}
//
//	cart, err := client.FetchCart(ctx)
//	item, ok, err := client.UpdateCartItem(ctx, cart.Items[0].ID, shop.CartItemUpdate{Size: "M", Quantity: 2})
//
// Mutations that may answer without the changed entity return an extra bool.
// When it is false the caller keeps whatever value it sent.
//
// # Request Handling
//
// All requests:
//   - Carry Accept: application/json and User-Agent: tote/0.1
//   - Carry a fresh X-Request-ID (uuid v4) that is also recorded on Error
//   - Send Authorization: Bearer <token> when a token is configured
//   - Have a 10-second timeout
//   - Escape path parameters with the OpenAPI simple style
//
// # Error Handling
//
// Every failure is an *Error with one of four kinds:
//
//   - KindValidation: 400, 409, 422 (e.g. quantity exceeds stock)
//   - KindNotFound: 404, 410 (entity deleted server-side)
//   - KindNetwork: the request could not complete
//   - KindServerError: 5xx, other non-2xx, undecodable bodies
//
// The backend may put a human-readable explanation in {message} or {error}.
// UserMessage returns it verbatim, or a generic sentence for the kind.
//
// # Money
//
// Prices are decimal.Decimal and accept both JSON numbers and strings.
//
// # Design Rationale
//
// The client performs no retries and no caching. A failed mutation is
// reported once; the user decides whether to repeat it.
package shop
