package pubsub

import (
	"testing"

	"github.com/ygrebnov/beam/queue"
)

func TestPublisher_PushFansOutToAllMonitors(t *testing.T) {
	var p Publisher[int]
	q1 := queue.New[int]()
	q2 := queue.New[int]()
	p.Monitor(q1)
	p.Monitor(q2)

	p.Push(7)

	for _, q := range []*queue.Queue[int]{q1, q2} {
		v, _, ok := q.TryPop()
		if !ok || v != 7 {
			t.Fatalf("got (%d, %v), want (7, true)", v, ok)
		}
	}
}

func TestPublisher_DropsBrokenSubscribers(t *testing.T) {
	var p Publisher[int]
	q1 := queue.New[int]()
	q2 := queue.New[int]()
	p.Monitor(q1)
	p.Monitor(q2)

	q1.Break(nil)
	p.Push(1)

	if len(p.subs) != 1 {
		t.Fatalf("expected broken subscriber to be pruned, got %d subs", len(p.subs))
	}
	v, _, ok := q2.TryPop()
	if !ok || v != 1 {
		t.Fatalf("live subscriber did not receive push: (%d, %v)", v, ok)
	}
}

func TestSnapshotPublisher_NewMonitorsSeeSnapshotThenUpdates(t *testing.T) {
	p := NewSnapshotPublisher[int, int](func(s int) int { return s })
	p.SetSnapshot(100)

	q := queue.New[int]()
	p.Monitor(q)
	p.Push(101)

	first, _, ok := q.TryPop()
	if !ok || first != 100 {
		t.Fatalf("expected snapshot 100 first, got (%d, %v)", first, ok)
	}
	second, _, ok := q.TryPop()
	if !ok || second != 101 {
		t.Fatalf("expected update 101 second, got (%d, %v)", second, ok)
	}
}

func TestSnapshotPublisher_MonitorWithoutSnapshotOnlySeesUpdates(t *testing.T) {
	p := NewSnapshotPublisher[string, string](func(s string) string { return s })
	q := queue.New[string]()
	p.Monitor(q)
	p.Push("hello")

	v, _, ok := q.TryPop()
	if !ok || v != "hello" {
		t.Fatalf("got (%q, %v), want (hello, true)", v, ok)
	}
}
