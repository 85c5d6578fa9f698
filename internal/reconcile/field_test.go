package reconcile

import (
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestField_SuccessConfirmsServerValue(t *testing.T) {
	f := New(1)
	e := f.Begin(3)

	if got := f.View(); got != (View[int]{Value: 3, Confirmed: 1, State: Pending, InFlight: 1}) {
		t.Fatalf("View after Begin = %+v, want pending 3 over 1", got)
	}

	e.Succeed(2)
	if diff := cmp.Diff(View[int]{Value: 2, Confirmed: 2, State: Confirmed}, f.View()); diff != "" {
		t.Fatalf("View after Succeed (-want +got):\n%s", diff)
	}
}

func TestField_CommitKeepsOptimisticValue(t *testing.T) {
	f := New("M")
	f.Begin("L").Resolve("", false)
	if got := f.View(); got.Value != "L" || got.Confirmed != "L" || got.Pending() {
		t.Fatalf("View = %+v, want confirmed L", got)
	}
}

func TestField_StaysBusyWhileNewerEditInFlight(t *testing.T) {
	f := New(3)
	older := f.Begin(2)
	newer := f.Begin(4)

	older.Fail()
	got := f.View()
	if got.Value != 3 || got.Pending() {
		t.Fatalf("View after older failure = %+v, want rolled back to 3", got)
	}
	if !got.Busy() || got.InFlight != 1 {
		t.Fatalf("View after older failure = %+v, want busy with one edit in flight", got)
	}

	newer.Succeed(4)
	if got := f.View(); got.Value != 4 || got.Busy() {
		t.Fatalf("View after newer success = %+v, want settled 4", got)
	}
}

func TestField_FailureRollsBack(t *testing.T) {
	f := New(1)
	e := f.Begin(4)
	e.Fail()
	if got := f.View(); got.Value != 1 || got.Pending() {
		t.Fatalf("View = %+v, want confirmed 1", got)
	}
}

func TestField_SecondEditKeepsFirstRollbackTarget(t *testing.T) {
	f := New(3)
	first := f.Begin(2)
	second := f.Begin(4)

	if got := f.View(); got.Value != 4 || got.Confirmed != 3 {
		t.Fatalf("View = %+v, want 4 displayed over confirmed 3", got)
	}

	first.Fail()
	if got := f.View(); got.Value != 3 || got.Pending() {
		t.Fatalf("after first fails View = %+v, want confirmed 3 (not 2)", got)
	}
	if f.Outstanding() != 1 {
		t.Fatalf("Outstanding = %d, want 1", f.Outstanding())
	}

	second.Succeed(4)
	if got := f.View(); got.Value != 4 || got.Confirmed != 4 || got.Pending() {
		t.Fatalf("after second succeeds View = %+v, want confirmed 4", got)
	}
}

func TestField_OlderSuccessKeepsNewerOptimisticValue(t *testing.T) {
	f := New(1)
	first := f.Begin(2)
	second := f.Begin(4)

	first.Succeed(2)
	if got := f.View(); got.Value != 4 || got.Confirmed != 2 || !got.Pending() {
		t.Fatalf("View = %+v, want 4 pending over confirmed 2", got)
	}

	second.Fail()
	if got := f.View(); got.Value != 2 || got.Pending() {
		t.Fatalf("View = %+v, want rollback to 2", got)
	}
}

func TestField_LastResponseWins(t *testing.T) {
	f := New(1)
	first := f.Begin(2)
	second := f.Begin(4)

	second.Succeed(4)
	first.Succeed(2)
	if got := f.View(); got.Value != 2 || got.Pending() {
		t.Fatalf("View = %+v, want last response (2) confirmed", got)
	}
}

func TestField_ResolveOnce(t *testing.T) {
	f := New(1)
	e := f.Begin(5)
	e.Succeed(5)
	e.Fail()
	if got := f.View(); got.Value != 5 {
		t.Fatalf("second resolution changed value: %+v", got)
	}
	if f.Outstanding() != 0 {
		t.Fatalf("Outstanding = %d, want 0", f.Outstanding())
	}
}

func TestField_ResetWhilePendingMovesRollbackTarget(t *testing.T) {
	f := New(1)
	e := f.Begin(3)
	f.Reset(2)
	if got := f.View(); got.Value != 3 || got.Confirmed != 2 {
		t.Fatalf("View = %+v, want 3 displayed over 2", got)
	}
	e.Fail()
	if got := f.Value(); got != 2 {
		t.Fatalf("Value after Fail = %d, want 2", got)
	}
}

func TestGroup_RollsBackTogether(t *testing.T) {
	size := New("M")
	qty := New(3)
	g := Group{size.Begin("S"), qty.Begin(1)}

	g.Fail()
	if size.Value() != "M" || qty.Value() != 3 {
		t.Fatalf("after Fail size=%q qty=%d, want M 3", size.Value(), qty.Value())
	}

	g = Group{size.Begin("S"), qty.Begin(1), nil}
	g.Commit()
	if size.View().Pending() || qty.View().Pending() {
		t.Fatalf("fields still pending after Commit")
	}
	if size.Value() != "S" || qty.Value() != 1 {
		t.Fatalf("after Commit size=%q qty=%d, want S 1", size.Value(), qty.Value())
	}
}

func TestField_ConcurrentResolution(t *testing.T) {
	f := New(0)
	const n = 50
	edits := make([]*Edit[int], n)
	for i := range edits {
		edits[i] = f.Begin(i + 1)
	}

	var wg sync.WaitGroup
	for i, e := range edits {
		wg.Add(1)
		go func(i int, e *Edit[int]) {
			defer wg.Done()
			if i%2 == 0 {
				e.Fail()
				return
			}
			e.Commit()
		}(i, e)
	}
	wg.Wait()

	if f.Outstanding() != 0 {
		t.Fatalf("Outstanding = %d, want 0", f.Outstanding())
	}
	if f.View().Pending() {
		t.Fatalf("field still pending after all edits resolved")
	}
}
