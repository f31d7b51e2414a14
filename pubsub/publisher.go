// Package pubsub implements Beam's Publisher: a broadcast point that
// fans pushed values out to every monitoring queue, pruning subscribers
// whose queue has broken.
package pubsub

import (
	"sync"

	"github.com/ygrebnov/beam/queue"
)

// Publisher broadcasts pushed values to every monitoring queue. The
// zero value is ready to use.
type Publisher[T any] struct {
	mu   sync.Mutex
	subs []*queue.Queue[T]
}

// Monitor atomically adds q to the subscriber set; it will receive
// every subsequent Push.
func (p *Publisher[T]) Monitor(q *queue.Queue[T]) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subs = append(p.subs, q)
}

// Push delivers v to every monitoring queue, dropping any whose Break
// has already been called.
func (p *Publisher[T]) Push(v T) {
	p.mu.Lock()
	live := p.subs[:0]
	for _, q := range p.subs {
		if q.IsBroken() {
			continue
		}
		q.Push(v)
		live = append(live, q)
	}
	p.subs = live
	p.mu.Unlock()
}

// SnapshotPublisher additionally carries a snapshot of type S, which is
// delivered to each newly monitored queue (converted by toPush) before any
// subsequent Push, under the same lock that guards the subscriber list.
// This guarantees a new subscriber observes the snapshot, then exactly
// the updates that follow it.
type SnapshotPublisher[T any, S any] struct {
	mu       sync.Mutex
	subs     []*queue.Queue[T]
	snapshot S
	hasSnap  bool
	toPush   func(S) T
}

// NewSnapshotPublisher constructs a SnapshotPublisher. toPush converts
// the carried snapshot into the value type delivered to new
// subscribers.
func NewSnapshotPublisher[T any, S any](toPush func(S) T) *SnapshotPublisher[T, S] {
	return &SnapshotPublisher[T, S]{toPush: toPush}
}

// SetSnapshot replaces the carried snapshot. It does not push anything
// to existing subscribers; only newly monitored queues observe it.
func (p *SnapshotPublisher[T, S]) SetSnapshot(s S) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.snapshot = s
	p.hasSnap = true
}

// Monitor adds q to the subscriber set and, if a snapshot is present,
// immediately pushes it to q before returning.
func (p *SnapshotPublisher[T, S]) Monitor(q *queue.Queue[T]) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subs = append(p.subs, q)
	if p.hasSnap {
		q.Push(p.toPush(p.snapshot))
	}
}

// Push delivers v to every monitoring queue.
func (p *SnapshotPublisher[T, S]) Push(v T) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, q := range p.subs {
		q.Push(v)
	}
}
