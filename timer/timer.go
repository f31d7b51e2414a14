// Package timer implements Beam's Timer/LiveTimer/TriggerTimer family:
// one-shot countdowns whose outcome is delivered to a suspended routine
// via routine.Async, and broadcast to any additional subscriber
// through a pubsub.Publisher.
package timer

import (
	"sync"
	"time"

	"github.com/ygrebnov/beam/beamerr"
	"github.com/ygrebnov/beam/pubsub"
	"github.com/ygrebnov/beam/routine"
)

// Result is the outcome a Timer reports exactly once per Start cycle.
type Result int

const (
	// None is the zero Result; it is never published, only returned
	// from Wait when called before any Start.
	None Result = iota
	// Expired means the countdown ran to completion.
	Expired
	// Cancelled means Cancel was called before expiry.
	Cancelled
	// Fail means the timer's own machinery failed, distinct from the
	// countdown simply running out.
	Fail
)

func (r Result) String() string {
	switch r {
	case Expired:
		return "Expired"
	case Cancelled:
		return "Cancelled"
	case Fail:
		return "Fail"
	default:
		return "None"
	}
}

// Timer starts a one-shot countdown. Wait suspends the calling routine
// until the current cycle resolves to exactly one of
// Expired/Cancelled/Fail. Starting a new cycle while one is pending
// cancels the pending one first.
type Timer interface {
	Start(d time.Duration)
	Cancel()
	Wait() (Result, error)
	Publisher() *pubsub.Publisher[Result]
}

var errNotStarted = notStartedError("timer: Wait called before Start")

type notStartedError string

func (e notStartedError) Error() string { return string(e) }

// LiveTimer drives its cycle off a real time.Timer.
type LiveTimer struct {
	publisher pubsub.Publisher[Result]

	mu    sync.Mutex
	async *routine.Async[Result]
	stop  func()
}

// NewLiveTimer constructs a LiveTimer with no cycle yet started.
func NewLiveTimer() *LiveTimer {
	return &LiveTimer{}
}

// Publisher returns the Publisher every completed cycle's Result is
// broadcast through, in addition to being delivered via Wait.
func (t *LiveTimer) Publisher() *pubsub.Publisher[Result] { return &t.publisher }

// Start begins a new countdown of duration d, cancelling any cycle
// still pending from a previous Start.
func (t *LiveTimer) Start(d time.Duration) {
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

	tm := time.NewTimer(d)
	go func() {
		var result Result
		select {
		case <-tm.C:
			result = Expired
		case <-cancelCh:
			tm.Stop()
			result = Cancelled
		}
		async.Eval().SetResult(result)
		t.publisher.Push(result)
	}()
}

// Cancel ends the current cycle early, if one is pending. A Cancel
// with no cycle pending is a no-op.
func (t *LiveTimer) Cancel() {
	t.mu.Lock()
	stop := t.stop
	t.mu.Unlock()
	if stop != nil {
		stop()
	}
}

// Wait suspends the calling routine until the current cycle resolves.
// Calling Wait before any Start returns an OutOfRange-kind error.
func (t *LiveTimer) Wait() (Result, error) {
	t.mu.Lock()
	async := t.async
	t.mu.Unlock()
	if async == nil {
		return None, beamerr.Mark(errNotStarted, beamerr.OutOfRange)
	}
	return async.Get()
}
