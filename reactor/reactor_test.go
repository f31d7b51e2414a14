package reactor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ygrebnov/beam/queue"
	"github.com/ygrebnov/beam/routine"
)

func newTestScheduler(t *testing.T) *routine.Scheduler {
	t.Helper()
	s, err := routine.NewScheduler(nil)
	if err != nil {
		t.Fatalf("NewScheduler: %v", err)
	}
	t.Cleanup(s.Shutdown)
	return s
}

func TestConstantReactor_EvalsOnceThenCompletes(t *testing.T) {
	c := NewConstantReactor(42)

	if u := c.Commit(0); u != Eval|Complete {
		t.Fatalf("got %v, want Eval|Complete", u)
	}
	if v := c.Eval().Get(); v != 42 {
		t.Fatalf("got %d, want 42", v)
	}
	if u := c.Commit(1); u != None {
		t.Fatalf("a seq after completion should report None, got %v", u)
	}
}

func TestConstantReactor_CommitMemoisesSameSeq(t *testing.T) {
	c := NewConstantReactor("x")
	first := c.Commit(5)
	second := c.Commit(5)
	if first != second {
		t.Fatalf("Commit(5) twice returned %v then %v, want identical", first, second)
	}
}

func TestQueueReactor_PopsAndSignalsTrigger(t *testing.T) {
	q := queue.New[int]()
	trig := NewTrigger()
	r := NewQueueReactor(q, trig)

	if u := r.Commit(0); u != None {
		t.Fatalf("got %v, want None before any push", u)
	}

	q.Push(1)
	if u := r.Commit(1); u != Eval {
		t.Fatalf("got %v, want Eval", u)
	}
	if v := r.Eval().Get(); v != 1 {
		t.Fatalf("got %d, want 1", v)
	}
	if trig.Sequence() == 0 {
		t.Fatal("successful pop should have signalled the trigger")
	}
}

func TestQueueReactor_BreakBecomesTerminalValue(t *testing.T) {
	q := queue.New[int]()
	r := NewQueueReactor(q, nil)

	boom := errors.New("boom")
	q.Break(boom)

	u := r.Commit(1)
	if u != Complete {
		t.Fatalf("got %v, want Complete", u)
	}
	if !r.Eval().IsErr() {
		t.Fatal("expected the break error as the terminal Expect")
	}
}

func TestFunctionReactor1_MapsChildValue(t *testing.T) {
	q := queue.New[int]()
	child := NewQueueReactor(q, nil)
	doubled := NewFunctionReactor1(child, func(a Expect[int]) Evaluation[int] {
		return Some(a.Get() * 2)
	})

	q.Push(21)
	u := doubled.Commit(1)
	if u != Eval {
		t.Fatalf("got %v, want Eval", u)
	}
	if v := doubled.Eval().Get(); v != 42 {
		t.Fatalf("got %d, want 42", v)
	}
}

func TestFunctionReactor2_WaitsForBothChildrenBeforeFirstEval(t *testing.T) {
	qa := queue.New[int]()
	qb := queue.New[int]()
	ca := NewQueueReactor(qa, nil)
	cb := NewQueueReactor(qb, nil)

	sum := NewFunctionReactor2(ca, cb, func(a Expect[int], b Expect[int]) Evaluation[int] {
		return Some(a.Get() + b.Get())
	})

	qa.Push(1)
	if u := sum.Commit(1); u != None {
		t.Fatalf("got %v, want None (b has never produced a value)", u)
	}

	qb.Push(2)
	if u := sum.Commit(2); u != Eval {
		t.Fatalf("got %v, want Eval", u)
	}
	if v := sum.Eval().Get(); v != 3 {
		t.Fatalf("got %d, want 3", v)
	}
}

func TestMultiReactor_AggregatesHomogeneousChildren(t *testing.T) {
	q1 := queue.New[int]()
	q2 := queue.New[int]()
	q3 := queue.New[int]()
	children := []Reactor[int]{
		NewQueueReactor(q1, nil),
		NewQueueReactor(q2, nil),
		NewQueueReactor(q3, nil),
	}

	total := NewMultiReactor(children, func(vs []Expect[int]) Evaluation[int] {
		sum := 0
		for _, v := range vs {
			sum += v.Get()
		}
		return Some(sum)
	})

	q1.Push(1)
	q2.Push(2)
	q3.Push(3)

	if u := total.Commit(1); u != Eval {
		t.Fatalf("got %v, want Eval", u)
	}
	if v := total.Eval().Get(); v != 6 {
		t.Fatalf("got %d, want 6", v)
	}
}

func TestMultiReactor_ZeroChildEvaluatesOnceThenCompletes(t *testing.T) {
	m := NewMultiReactor[int](nil, func(vs []Expect[int]) Evaluation[int] {
		return Some(7)
	})

	if u := m.Commit(0); u != Eval|Complete {
		t.Fatalf("got %v, want Eval|Complete", u)
	}
	if v := m.Eval().Get(); v != 7 {
		t.Fatalf("got %d, want 7", v)
	}
}

func TestDoReactor_PassesThroughAndInvokesSideEffect(t *testing.T) {
	q := queue.New[int]()
	child := NewQueueReactor(q, nil)

	var sideEffects []int
	tapped := NewDoReactor(child, func(v Expect[int]) {
		sideEffects = append(sideEffects, v.Get())
	})

	q.Push(9)
	u := tapped.Commit(1)
	if u != Eval {
		t.Fatalf("got %v, want Eval", u)
	}
	if v := tapped.Eval().Get(); v != 9 {
		t.Fatalf("got %d, want 9", v)
	}
	if len(sideEffects) != 1 || sideEffects[0] != 9 {
		t.Fatalf("got %v, want [9]", sideEffects)
	}
}

func TestHost_DrivesCommitsAndReportsTerminalError(t *testing.T) {
	s := newTestScheduler(t)

	q := queue.New[int]()
	trig := NewTrigger()
	root := NewQueueReactor(q, trig)

	var evals []int
	host := NewHost[int](root, trig, WithOnEval(func(v Expect[int]) {
		if !v.IsErr() {
			evals = append(evals, v.Get())
		}
	}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	host.Run(ctx, s)

	q.Push(1)
	trig.SignalUpdate()
	q.Push(2)
	trig.SignalUpdate()

	boom := errors.New("source broke")
	q.Break(boom)
	trig.SignalUpdate()

	select {
	case err := <-host.Errors():
		if !errors.Is(err, boom) {
			t.Fatalf("got %v, want %v", err, boom)
		}
	case <-time.After(time.Second):
		t.Fatal("host never reported the terminal error")
	}
}
