package reactor

import "github.com/ygrebnov/beam/queue"

// BasicReactor wraps an internal queue and is semantically identical to
// a QueueReactor over that queue: Push feeds values in, SetComplete
// terminates it. It is the node used for external (non-routine) input
// into the graph, e.g. wiring a publisher or a user event source.
type BasicReactor[T any] struct {
	inner   *QueueReactor[T]
	q       *queue.Queue[T]
	trigger *Trigger
}

// NewBasicReactor constructs a BasicReactor signalling trigger on every
// Push/SetComplete.
func NewBasicReactor[T any](trigger *Trigger) *BasicReactor[T] {
	q := queue.New[T]()
	return &BasicReactor[T]{inner: NewQueueReactor(q, trigger), q: q, trigger: trigger}
}

// Push pushes v into the reactor and signals the trigger.
func (r *BasicReactor[T]) Push(v T) {
	r.q.Push(v)
	r.trigger.SignalUpdate()
}

// SetComplete terminates the reactor, optionally with err as the
// terminal value.
func (r *BasicReactor[T]) SetComplete(err error) {
	r.q.Break(err)
	r.trigger.SignalUpdate()
}

func (r *BasicReactor[T]) Commit(seq uint64) Update { return r.inner.Commit(seq) }
func (r *BasicReactor[T]) Eval() Expect[T]          { return r.inner.Eval() }
