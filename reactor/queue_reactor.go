package reactor

import (
	"github.com/ygrebnov/beam/beamerr"
	"github.com/ygrebnov/beam/queue"
)

// QueueReactor adapts a queue.Queue[T] into a Reactor: on each Commit
// it attempts a non-blocking pop. Every successful value pop issues
// trigger.SignalUpdate, so the host loop immediately schedules another
// commit in case the queue holds further buffered values. The node
// completes once the queue's Break surfaces. An explicit break error
// (Break(err) with err != nil) becomes the terminal Expect; a bare
// Break(nil) leaves the node's value at its prior state (Unavailable if
// it never produced one), since the queue draining with no payload is
// not itself "a value".
type QueueReactor[T any] struct {
	q       *queue.Queue[T]
	trigger *Trigger
	memo    memo
	current Expect[T]
	done    bool
}

// NewQueueReactor constructs a QueueReactor over q. trigger may be nil
// if the caller does not need re-signalling (e.g. a leaf driven
// entirely by the host's own polling).
func NewQueueReactor[T any](q *queue.Queue[T], trigger *Trigger) *QueueReactor[T] {
	return &QueueReactor[T]{q: q, trigger: trigger, current: Err[T](beamerr.Unavailable)}
}

func (r *QueueReactor[T]) Commit(seq uint64) Update {
	if u, ok := r.memo.cached(seq); ok {
		return u
	}
	if r.done {
		return r.memo.store(seq, None)
	}

	v, err, ok := r.q.TryPop()
	if !ok {
		return r.memo.store(seq, None)
	}

	if err != nil {
		r.done = true
		if err != beamerr.PipeBroken {
			r.current = Err[T](err)
		}
		return r.memo.store(seq, Complete)
	}

	if r.trigger != nil {
		r.trigger.SignalUpdate()
	}
	r.current = Ok(v)
	return r.memo.store(seq, Eval)
}

func (r *QueueReactor[T]) Eval() Expect[T] {
	return r.current
}
