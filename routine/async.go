package routine

import "sync"

// Async is a one-shot rendezvous holding either a value, an error, or
// nothing yet. A suspended routine is the default consumer: Get blocks
// the calling routine (suspending it rather than its OS thread) until a
// producer calls SetResult or SetException. Calling Get from outside a
// routine falls back to blocking the calling goroutine directly, so
// Async is also usable from code the scheduler doesn't own.
//
// After completion, every subsequent Get returns the stored value or
// error without blocking (idempotence, see spec property 1). A second
// SetResult/SetException is a programmer error and panics.
type Async[T any] struct {
	mu      sync.Mutex
	done    bool
	value   T
	err     error
	waiters []*Routine
	ready   chan struct{}
}

// NewAsync constructs an incomplete Async[T].
func NewAsync[T any]() *Async[T] {
	return &Async[T]{ready: make(chan struct{})}
}

// Eval is the producer-side handle for an Async[T]. It exposes only the
// completion methods, keeping the consumer (Get) and producer
// (SetResult/SetException) capabilities distinct, per spec §2.
type Eval[T any] struct {
	async *Async[T]
}

// Eval returns the producer handle bound to this Async.
func (a *Async[T]) Eval() Eval[T] { return Eval[T]{async: a} }

// Get blocks until the Async completes, then returns its value or error.
func (a *Async[T]) Get() (T, error) {
	a.mu.Lock()
	if a.done {
		v, err := a.value, a.err
		a.mu.Unlock()
		return v, err
	}

	cur := Current()
	if cur == nil {
		a.mu.Unlock()
		<-a.ready
		a.mu.Lock()
		v, err := a.value, a.err
		a.mu.Unlock()
		return v, err
	}

	a.waiters = append(a.waiters, cur)
	cur.SuspendWith(&a.mu)

	a.mu.Lock()
	v, err := a.value, a.err
	a.mu.Unlock()
	return v, err
}

// SetResult completes the Async with v. Panics if already completed.
func (a *Async[T]) SetResult(v T) {
	a.complete(v, nil)
}

// SetException completes the Async with err. Panics if already completed.
func (a *Async[T]) SetException(err error) {
	var zero T
	a.complete(zero, err)
}

func (a *Async[T]) complete(v T, err error) {
	a.mu.Lock()
	if a.done {
		a.mu.Unlock()
		panic("beam: async already completed")
	}
	a.done = true
	a.value = v
	a.err = err
	waiters := a.waiters
	a.waiters = nil
	a.mu.Unlock()

	close(a.ready)
	for _, r := range waiters {
		r.Resume()
	}
}

// SetResult completes the bound Async with v.
func (e Eval[T]) SetResult(v T) { e.async.SetResult(v) }

// SetException completes the bound Async with err.
func (e Eval[T]) SetException(err error) { e.async.SetException(err) }
