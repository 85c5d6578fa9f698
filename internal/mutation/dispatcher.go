package mutation

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/five82/tote/internal/shop"
)

// PendingMutation identifies one in-flight change.
type PendingMutation struct {
	ID       string
	Op       string
	EntityID string
	Started  time.Time
}

// Mutation describes a single server-mutating call.
type Mutation[T any] struct {
	Op       string
	EntityID string
	// Call issues exactly one request. The bool reports whether the server
	// returned a value.
	Call func(ctx context.Context) (T, bool, error)
	// Settle runs on the task goroutine once the call returns and before the
	// task is marked done. Reconcilers resolve their edits here.
	Settle func(Result[T])
}

// Result is the outcome of a mutation.
type Result[T any] struct {
	Mutation PendingMutation
	Value    T
	HasValue bool
	Err      *shop.Error
	Elapsed  time.Duration
}

// OK reports whether the mutation succeeded.
func (r Result[T]) OK() bool { return r.Err == nil }

// Message returns the text to show the user for a failed mutation.
func (r Result[T]) Message() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.UserMessage()
}

// Task is a dispatched mutation.
type Task[T any] struct {
	pending PendingMutation
	done    chan struct{}
	result  Result[T]
}

// Mutation returns the pending mutation the task represents.
func (t *Task[T]) Mutation() PendingMutation { return t.pending }

// Done is closed once the result is available.
func (t *Task[T]) Done() <-chan struct{} { return t.done }

// Wait blocks until the mutation resolves or ctx ends. A ctx error does not
// cancel the mutation.
func (t *Task[T]) Wait(ctx context.Context) (Result[T], error) {
	select {
	case <-t.done:
		return t.result, nil
	case <-ctx.Done():
		return Result[T]{Mutation: t.pending}, ctx.Err()
	}
}

// Dispatcher runs mutations and tracks how many are in flight.
type Dispatcher struct {
	log      *zap.Logger
	inflight atomic.Int64
}

// NewDispatcher returns a Dispatcher logging to log. A nil log discards output.
func NewDispatcher(log *zap.Logger) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{log: log.Named("mutation")}
}

// Inflight returns the number of unresolved mutations.
func (d *Dispatcher) Inflight() int {
	return int(d.inflight.Load())
}

// Dispatch starts m on its own goroutine and returns immediately. The call is
// never retried.
func Dispatch[T any](ctx context.Context, d *Dispatcher, m Mutation[T]) *Task[T] {
	task := &Task[T]{
		pending: PendingMutation{
			ID:       uuid.NewString(),
			Op:       m.Op,
			EntityID: m.EntityID,
			Started:  time.Now(),
		},
		done: make(chan struct{}),
	}
	log := d.log.With(
		zap.String("op", m.Op),
		zap.String("entity", m.EntityID),
		zap.String("mutation_id", task.pending.ID),
	)

	d.inflight.Add(1)
	log.Debug("mutation started")

	go func() {
		defer close(task.done)
		defer d.inflight.Add(-1)

		res := run(ctx, m)
		res.Mutation = task.pending
		res.Elapsed = time.Since(task.pending.Started)
		task.result = res

		if res.Err != nil {
			log.Warn("mutation failed",
				zap.Stringer("kind", res.Err.Kind),
				zap.Int("status", res.Err.Status),
				zap.String("request_id", res.Err.RequestID),
				zap.Duration("elapsed", res.Elapsed),
				zap.Error(res.Err),
			)
		} else {
			log.Info("mutation confirmed",
				zap.Bool("has_value", res.HasValue),
				zap.Duration("elapsed", res.Elapsed),
			)
		}

		if m.Settle != nil {
			settle(log, m.Settle, res)
		}
	}()
	return task
}

// settle runs fn, logging instead of crashing when it panics.
func settle[T any](log *zap.Logger, fn func(Result[T]), res Result[T]) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("mutation settle panicked", zap.Any("panic", r))
		}
	}()
	fn(res)
}

func run[T any](ctx context.Context, m Mutation[T]) (res Result[T]) {
	defer func() {
		if r := recover(); r != nil {
			res = Result[T]{Err: shop.AsError(m.Op, fmt.Errorf("panic: %v", r))}
		}
	}()
	if m.Call == nil {
		return Result[T]{Err: shop.NewError(m.Op, shop.KindValidation, "nothing to send")}
	}
	value, ok, err := m.Call(ctx)
	if err != nil {
		return Result[T]{Err: shop.AsError(m.Op, err)}
	}
	return Result[T]{Value: value, HasValue: ok}
}

// Empty is the value type of mutations whose response carries nothing useful.
type Empty struct{}

// NoValue adapts a call that only reports an error.
func NoValue(fn func(ctx context.Context) error) func(ctx context.Context) (Empty, bool, error) {
	return func(ctx context.Context) (Empty, bool, error) {
		return Empty{}, false, fn(ctx)
	}
}
