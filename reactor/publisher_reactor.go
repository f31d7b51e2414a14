package reactor

import (
	"github.com/ygrebnov/beam/pubsub"
	"github.com/ygrebnov/beam/queue"
)

// PublisherReactor attaches a fresh queue to a publisher and returns a
// QueueReactor over it. The reactor does not own the publisher: there is
// no option tying the publisher's lifetime to the reactor, and the
// reactor has no Close.
type PublisherReactor[T any] struct {
	*QueueReactor[T]
	trigger *Trigger
}

// NewPublisherReactor monitors a fresh queue on p and returns a
// QueueReactor over that queue. The QueueReactor signals trigger after
// each value it pops during a Commit; a Push on p does not itself
// signal trigger.
func NewPublisherReactor[T any](p *pubsub.Publisher[T], trigger *Trigger) *PublisherReactor[T] {
	q := queue.New[T]()
	p.Monitor(q)
	return &PublisherReactor[T]{QueueReactor: NewQueueReactor(q, trigger), trigger: trigger}
}
