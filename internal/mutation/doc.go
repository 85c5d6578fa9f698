// Package mutation dispatches server-mutating calls as explicit tasks.
//
// # Overview
//
// Every change tote sends to the backend (cart line edits, removals, address
// default selection and deletion, order cancellations and returns) goes
// through Dispatch. It runs the call on its own goroutine and hands back a
// Task whose Result is a value, never a panic or an unhandled error:
//
//	task := mutation.Dispatch(ctx, d, mutation.Mutation[shop.CartItem]{
//		Op:       "update cart item",
//		EntityID: item.ID,
//		Call:     func(ctx context.Context) (shop.CartItem, bool, error) { ... },
//		Settle:   func(r mutation.Result[shop.CartItem]) { ... },
//	})
//	res, err := task.Wait(ctx)
//
// # Contract
//
//   - Exactly one call per dispatch; failures are never retried.
//   - Failures are *shop.Error with a Kind; Result.Message always yields
//     something displayable.
//   - Settle runs before Done closes, so rollback has happened by the time
//     any waiter observes the result.
//   - Independent tasks run concurrently; each carries its own
//     PendingMutation.
//
// There is no cancellation or timeout of its own. The client's request
// timeout and the dispatch context bound each call.
package mutation
