// Package reconcile keeps local copies of server-owned fields consistent with
// the last confirmed server state while mutations are in flight.
//
// # Overview
//
// A Field is either Confirmed(value) or Pending(value, priorConfirmed):
//
//	Confirmed ──Begin(v)──> Pending(v, c)
//	Pending ──Succeed(s)──> Confirmed(s)      server returned s
//	Pending ──Commit()───> Confirmed(v)       server returned no body
//	Pending ──Fail()─────> Confirmed(c)       rollback
//
// The rollback target is always the last server-confirmed value. A second
// Begin while the first edit is still pending does not move it, so a failure
// never lands on an intermediate optimistic value.
//
// # Concurrent Edits
//
// Edits on the same field are not serialized. Responses apply in arrival
// order (last response wins):
//
//   - A success always becomes the confirmed value.
//   - A success for an older edit while a newer one is outstanding keeps the
//     newer optimistic value displayed on top of the new confirmed value.
//   - A failure of any edit drops the optimistic value and shows the
//     confirmed value. Later responses for other edits still apply.
//
// # Groups
//
// When one request carries several fields (a size change that also clamps
// quantity, a default-address swap), their edits are collected in a Group
// and resolved together.
//
// # Thread Safety
//
// Field is safe for concurrent use. The UI goroutine begins edits and the
// dispatcher's goroutines resolve them.
package reconcile
