package routine

import "sync"

// Routine is a cooperatively scheduled task with its own goroutine stack.
// It is exclusively owned by its Scheduler while live; code elsewhere
// should hold a Routine's ID and re-resolve it through Scheduler.Lookup
// rather than retaining the *Routine itself.
type Routine struct {
	id        ID
	scheduler *Scheduler

	mu       sync.Mutex
	state    State
	slot     interface{}
	resumeCh chan struct{}
	waiters  []Eval[struct{}]
	err      error
}

func newRoutine(id ID, s *Scheduler) *Routine {
	return &Routine{
		id:        id,
		scheduler: s,
		state:     Pending,
		resumeCh:  make(chan struct{}, 1),
	}
}

// ID returns the Routine's identity.
func (r *Routine) ID() ID { return r.id }

// State returns the Routine's current state.
func (r *Routine) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Err returns the error the entry function completed with, if any. Only
// meaningful once State() == Complete.
func (r *Routine) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Wait attaches eval to this Routine's completion waiter list. When the
// Routine completes, eval is signalled with SetResult(struct{}{}) on
// success or SetException(err) if the entry function failed. If the
// Routine has already completed, eval is signalled immediately.
func (r *Routine) Wait(eval Eval[struct{}]) {
	r.mu.Lock()
	if r.state == Complete {
		err := r.err
		r.mu.Unlock()
		if err != nil {
			eval.SetException(err)
		} else {
			eval.SetResult(struct{}{})
		}
		return
	}
	r.waiters = append(r.waiters, eval)
	r.mu.Unlock()
}

// Defer yields the current routine so another ready routine may run.
// The routine returns to the ready queue tail and resumes once the
// scheduler re-admits it to a worker slot.
func (r *Routine) Defer() {
	r.scheduler.untrackCurrent(r)
	r.mu.Lock()
	slot := r.slot
	r.slot = nil
	r.state = Pending
	r.mu.Unlock()
	r.scheduler.running.Add(-1)
	r.scheduler.pool.Put(slot)
	r.scheduler.enqueueReady(r)
	<-r.resumeCh
	r.scheduler.trackCurrent(r)
}

// Suspend marks the routine Suspended and blocks it until an external
// Resume call. Unlike Defer, Suspend does not requeue automatically.
func (r *Routine) Suspend() {
	r.mu.Lock()
	r.state = PendingSuspend
	r.mu.Unlock()
	r.finishSuspend()
}

// SuspendWith transitions the routine to PendingSuspend, releases the
// given locks, then suspends. This two-step ordering is required: a
// producer calling Resume between the release and the actual suspend
// must observe PendingSuspend and merely flip the state back to
// Running, so the pending Suspend call below becomes a no-op instead of
// racing a lost wakeup.
func (r *Routine) SuspendWith(locks ...sync.Locker) {
	r.mu.Lock()
	r.state = PendingSuspend
	r.mu.Unlock()
	for _, l := range locks {
		l.Unlock()
	}
	r.finishSuspend()
}

func (r *Routine) finishSuspend() {
	r.mu.Lock()
	if r.state == Running {
		// Resume raced in between PendingSuspend and here: it already
		// flipped us back to Running, so this call is a no-op.
		r.mu.Unlock()
		return
	}
	r.state = Suspended
	slot := r.slot
	r.slot = nil
	r.mu.Unlock()

	r.scheduler.untrackCurrent(r)
	r.scheduler.running.Add(-1)
	r.scheduler.pool.Put(slot)
	<-r.resumeCh
	r.scheduler.trackCurrent(r)
}

// Resume resumes a suspended routine. If the routine is PendingSuspend,
// it is flipped directly back to Running (the race-avoidance path); if
// Suspended, it is enqueued for readmission. A nil routine is a no-op,
// matching spec's "a null reference is a no-op".
func (r *Routine) Resume() {
	if r == nil {
		return
	}
	r.mu.Lock()
	switch r.state {
	case PendingSuspend:
		r.state = Running
		r.mu.Unlock()
		return
	case Suspended:
		r.mu.Unlock()
		r.scheduler.enqueueReady(r)
	default:
		r.mu.Unlock()
	}
}
