package mutation

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/five82/tote/internal/shop"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func waitResult[T any](t *testing.T, task *Task[T]) Result[T] {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	res, err := task.Wait(ctx)
	if err != nil {
		t.Fatalf("Wait returned error: %v", err)
	}
	return res
}

func TestDispatch_SuccessCarriesValue(t *testing.T) {
	d := NewDispatcher(nil)
	var calls atomic.Int32
	var settled Result[int]

	task := Dispatch(context.Background(), d, Mutation[int]{
		Op:       "update cart item",
		EntityID: "c1",
		Call: func(ctx context.Context) (int, bool, error) {
			calls.Add(1)
			return 4, true, nil
		},
		Settle: func(r Result[int]) { settled = r },
	})

	res := waitResult(t, task)
	if !res.OK() || res.Value != 4 || !res.HasValue {
		t.Fatalf("result = %+v, want value 4", res)
	}
	if calls.Load() != 1 {
		t.Fatalf("call count = %d, want exactly 1", calls.Load())
	}
	if settled.Value != 4 || settled.Mutation.ID == "" {
		t.Fatalf("Settle saw %+v, want value 4 with mutation id", settled)
	}
	if res.Mutation.Op != "update cart item" || res.Mutation.EntityID != "c1" {
		t.Fatalf("pending mutation = %+v", res.Mutation)
	}
	if d.Inflight() != 0 {
		t.Fatalf("Inflight = %d, want 0", d.Inflight())
	}
}

func TestDispatch_FailureIsNotRetried(t *testing.T) {
	d := NewDispatcher(nil)
	var calls atomic.Int32

	task := Dispatch(context.Background(), d, Mutation[Empty]{
		Op: "delete address",
		Call: NoValue(func(ctx context.Context) error {
			calls.Add(1)
			return &shop.Error{Op: "delete address", Kind: shop.KindNotFound, Status: 404}
		}),
	})

	res := waitResult(t, task)
	if res.OK() || res.Err.Kind != shop.KindNotFound {
		t.Fatalf("result = %+v, want not found failure", res)
	}
	if res.Message() == "" {
		t.Fatalf("Message empty, want generic fallback")
	}
	if calls.Load() != 1 {
		t.Fatalf("call count = %d, want 1", calls.Load())
	}
}

func TestDispatch_NormalizesForeignErrors(t *testing.T) {
	d := NewDispatcher(nil)

	res := waitResult(t, Dispatch(context.Background(), d, Mutation[Empty]{
		Op:   "cancel order item",
		Call: NoValue(func(ctx context.Context) error { return context.Canceled }),
	}))
	if res.Err == nil || res.Err.Kind != shop.KindNetwork {
		t.Fatalf("context error kind = %+v, want network", res.Err)
	}

	res = waitResult(t, Dispatch(context.Background(), d, Mutation[Empty]{
		Op:   "cancel order item",
		Call: NoValue(func(ctx context.Context) error { return errors.New("boom") }),
	}))
	if res.Err == nil || res.Err.Kind != shop.KindServerError {
		t.Fatalf("foreign error kind = %+v, want server error", res.Err)
	}
}

func TestDispatch_RecoversPanics(t *testing.T) {
	d := NewDispatcher(nil)
	res := waitResult(t, Dispatch(context.Background(), d, Mutation[int]{
		Op: "explode",
		Call: func(ctx context.Context) (int, bool, error) {
			panic("nil map")
		},
	}))
	if res.OK() {
		t.Fatalf("panicking call reported success")
	}
}

func TestDispatch_RecoversSettlePanics(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	d := NewDispatcher(zap.New(core))

	res := waitResult(t, Dispatch(context.Background(), d, Mutation[int]{
		Op: "update cart item",
		Call: func(ctx context.Context) (int, bool, error) {
			return 2, true, nil
		},
		Settle: func(Result[int]) { panic("stale line") },
	}))
	if !res.OK() || res.Value != 2 {
		t.Fatalf("result = %+v, want value 2", res)
	}
	if logs.FilterMessage("mutation settle panicked").Len() != 1 {
		t.Fatal("missing 'mutation settle panicked' entry")
	}
	if d.Inflight() != 0 {
		t.Fatalf("Inflight = %d, want 0", d.Inflight())
	}
}

func TestDispatch_IndependentTasksInFlight(t *testing.T) {
	d := NewDispatcher(nil)
	release := make(chan struct{})

	block := func(ctx context.Context) (int, bool, error) {
		<-release
		return 1, true, nil
	}
	a := Dispatch(context.Background(), d, Mutation[int]{Op: "a", Call: block})
	b := Dispatch(context.Background(), d, Mutation[int]{Op: "b", Call: block})

	if d.Inflight() != 2 {
		t.Fatalf("Inflight = %d, want 2", d.Inflight())
	}
	if a.Mutation().ID == b.Mutation().ID {
		t.Fatalf("tasks share mutation id %q", a.Mutation().ID)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := a.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Wait err = %v, want deadline exceeded while blocked", err)
	}

	close(release)
	waitResult(t, a)
	waitResult(t, b)
	if d.Inflight() != 0 {
		t.Fatalf("Inflight = %d, want 0", d.Inflight())
	}
}

func TestDispatch_LogsResolution(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	d := NewDispatcher(zap.New(core))

	waitResult(t, Dispatch(context.Background(), d, Mutation[Empty]{
		Op:       "set default address",
		EntityID: "a2",
		Call: NoValue(func(ctx context.Context) error {
			return &shop.Error{Kind: shop.KindNetwork}
		}),
	}))

	failed := logs.FilterMessage("mutation failed").All()
	if len(failed) != 1 {
		t.Fatalf("got %d 'mutation failed' entries, want 1", len(failed))
	}
	fields := failed[0].ContextMap()
	if fields["op"] != "set default address" || fields["entity"] != "a2" || fields["kind"] != "network" {
		t.Fatalf("log fields = %v", fields)
	}
	if logs.FilterMessage("mutation started").Len() != 1 {
		t.Fatalf("missing 'mutation started' entry")
	}
}
