package timer

import (
	"sync"
	"time"

	"github.com/ygrebnov/beam/beamerr"
	"github.com/ygrebnov/beam/pubsub"
	"github.com/ygrebnov/beam/reactor"
	"github.com/ygrebnov/beam/routine"
)

// TriggerTimer is a test/demo double: it fires on an explicit
// reactor.Trigger signal instead of wall-clock time, so a reactor-host
// test can drive "time passing" deterministically rather than
// sleeping. The duration passed to Start is ignored; a cycle resolves
// to Expired the next time the shared trigger is signalled.
type TriggerTimer struct {
	trigger   *reactor.Trigger
	publisher pubsub.Publisher[Result]

	mu    sync.Mutex
	async *routine.Async[Result]
	stop  func()
}

// NewTriggerTimer constructs a TriggerTimer firing on trigger's signals.
func NewTriggerTimer(trigger *reactor.Trigger) *TriggerTimer {
	return &TriggerTimer{trigger: trigger}
}

// Publisher returns the Publisher every completed cycle's Result is
// broadcast through.
func (t *TriggerTimer) Publisher() *pubsub.Publisher[Result] { return &t.publisher }

// Start begins a new cycle. d is ignored; the cycle resolves on the
// next trigger signal instead.
func (t *TriggerTimer) Start(_ time.Duration) {
	t.mu.Lock()
	if t.stop != nil {
		t.stop()
	}
	async := routine.NewAsync[Result]()
	cancelCh := make(chan struct{})
	var once sync.Once
	t.async = async
	t.stop = func() { once.Do(func() { close(cancelCh) }) }
	t.mu.Unlock()

	fired := make(chan struct{})
	go func() {
		t.trigger.Wait()
		close(fired)
	}()

	go func() {
		var result Result
		select {
		case <-fired:
			result = Expired
		case <-cancelCh:
			result = Cancelled
		}
		async.Eval().SetResult(result)
		t.publisher.Push(result)
	}()
}

// Cancel ends the current cycle early, if one is pending.
func (t *TriggerTimer) Cancel() {
	t.mu.Lock()
	stop := t.stop
	t.mu.Unlock()
	if stop != nil {
		stop()
	}
}

// Wait suspends the calling routine until the current cycle resolves.
func (t *TriggerTimer) Wait() (Result, error) {
	t.mu.Lock()
	async := t.async
	t.mu.Unlock()
	if async == nil {
		return None, beamerr.Mark(errNotStarted, beamerr.OutOfRange)
	}
	return async.Get()
}
