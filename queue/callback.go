package queue

import (
	"context"

	"github.com/ygrebnov/beam/routine"
)

// CallbackQueue wraps a Queue[func()] and a dedicated routine that pops
// and invokes each callback in push order. It is the primitive used to
// serialise callback fan-out onto a single routine, e.g. delivering
// reactor commit notifications without re-entrant calls into the host.
type CallbackQueue struct {
	q *Queue[func()]
}

// NewCallbackQueue constructs a CallbackQueue and spawns its consumer
// routine on s. The consumer exits once the queue is broken.
func NewCallbackQueue(ctx context.Context, s *routine.Scheduler) *CallbackQueue {
	cq := &CallbackQueue{q: New[func()]()}
	s.Spawn(ctx, cq.run)
	return cq
}

// Push enqueues fn to be invoked by the consumer routine.
func (cq *CallbackQueue) Push(fn func()) {
	cq.q.Push(fn)
}

// Close stops the consumer routine once pending callbacks drain.
func (cq *CallbackQueue) Close() {
	cq.q.Break(nil)
}

func (cq *CallbackQueue) run(ctx context.Context) error {
	for {
		fn, err := cq.q.Pop()
		if err != nil {
			return nil
		}
		fn()
	}
}
