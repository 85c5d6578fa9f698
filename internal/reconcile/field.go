package reconcile

import "sync"

// State is the reconciliation state of a Field.
type State int

const (
	// Confirmed means the displayed value is the last server-confirmed value.
	Confirmed State = iota
	// Pending means an optimistic value is displayed while a mutation is in flight.
	Pending
)

func (s State) String() string {
	if s == Pending {
		return "pending"
	}
	return "confirmed"
}

// View is a consistent read of a Field.
type View[T comparable] struct {
	Value     T // what the UI displays
	Confirmed T // last server-confirmed value, the rollback target
	State     State
	InFlight  int // edits still awaiting a response
}

// Pending reports whether an optimistic value is displayed.
func (v View[T]) Pending() bool { return v.State == Pending }

// Busy reports whether any edit still awaits a response. It stays set after
// an older edit rolls back while a newer one is in flight.
func (v View[T]) Busy() bool { return v.Pending() || v.InFlight > 0 }

// Field holds one server-owned value and its optimistic overlay.
// The zero value is not usable; construct with New.
type Field[T comparable] struct {
	mu          sync.Mutex
	confirmed   T
	optimistic  T
	pending     bool
	seq         uint64
	outstanding int
}

// New returns a Field confirmed at value.
func New[T comparable](value T) *Field[T] {
	return &Field[T]{confirmed: value}
}

// View returns the current state.
func (f *Field[T]) View() View[T] {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.viewLocked()
}

// Value returns the displayed value.
func (f *Field[T]) Value() T {
	return f.View().Value
}

// Outstanding returns how many edits await a response.
func (f *Field[T]) Outstanding() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.outstanding
}

// Begin displays value immediately and returns the edit to resolve once the
// mutation completes. Beginning while already pending keeps the rollback
// target at the last confirmed value.
func (f *Field[T]) Begin(value T) *Edit[T] {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	f.optimistic = value
	f.pending = true
	f.outstanding++
	return &Edit[T]{field: f, seq: f.seq, value: value}
}

// Reset records a value read from the server outside of any edit, such as a
// periodic refresh. A pending optimistic value stays displayed.
func (f *Field[T]) Reset(value T) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.confirmed = value
}

func (f *Field[T]) viewLocked() View[T] {
	if f.pending {
		return View[T]{Value: f.optimistic, Confirmed: f.confirmed, State: Pending, InFlight: f.outstanding}
	}
	return View[T]{Value: f.confirmed, Confirmed: f.confirmed, State: Confirmed, InFlight: f.outstanding}
}

func (f *Field[T]) succeed(e *Edit[T], value T) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if e.done {
		return
	}
	e.done = true
	f.outstanding--
	f.confirmed = value
	// A newer edit keeps its optimistic value on top of the new truth.
	if e.seq == f.seq {
		f.pending = false
	}
}

func (f *Field[T]) fail(e *Edit[T]) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if e.done {
		return
	}
	e.done = true
	f.outstanding--
	f.pending = false
}

// Edit is one optimistic change awaiting a server response. Resolving an edit
// more than once has no effect.
type Edit[T comparable] struct {
	field *Field[T]
	seq   uint64
	value T
	done  bool // guarded by field.mu
}

// Proposed returns the optimistic value of the edit.
func (e *Edit[T]) Proposed() T { return e.value }

// Succeed confirms the server-returned value.
func (e *Edit[T]) Succeed(value T) { e.field.succeed(e, value) }

// Commit confirms the proposed value, for responses without a body.
func (e *Edit[T]) Commit() { e.field.succeed(e, e.value) }

// Fail rolls the field back to its last confirmed value.
func (e *Edit[T]) Fail() { e.field.fail(e) }

// Resolve confirms value when hasValue is set and the proposed value otherwise.
func (e *Edit[T]) Resolve(value T, hasValue bool) {
	if hasValue {
		e.Succeed(value)
		return
	}
	e.Commit()
}
