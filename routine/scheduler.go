// Package routine implements Beam's cooperative scheduling substrate: a
// Scheduler admits Routines onto a bounded (or unbounded) set of worker
// slots, and a Routine's entry function runs on its own dedicated
// goroutine for its entire lifetime, suspending and resuming via channel
// handoffs rather than parking an OS thread.
package routine

import (
	"context"
	"fmt"
	"sync"

	"github.com/ygrebnov/beam/internal/log"
	"github.com/ygrebnov/beam/internal/pool"
	"github.com/ygrebnov/beam/metrics"
)

// Scheduler owns a set of Routines and the worker slots they execute on.
// The zero value is not usable; construct with NewScheduler.
type Scheduler struct {
	cfg  Config
	pool pool.Pool

	ready chan *Routine

	mu        sync.Mutex
	routines  map[ID]*Routine
	nextID    uint64
	closeOnce sync.Once
	closeCh   chan struct{}
	inflight  sync.WaitGroup

	metrics  metrics.Provider
	spawned  metrics.Counter
	running  metrics.UpDownCounter
	panicked metrics.Counter
}

// SchedulerOption configures optional Scheduler dependencies beyond the
// admission Config captured by Option.
type SchedulerOption func(*schedulerSettings)

type schedulerSettings struct {
	provider metrics.Provider
}

// WithMetrics installs a metrics.Provider the Scheduler reports routine
// lifecycle counters to. Defaults to metrics.NewNoopProvider().
func WithMetrics(p metrics.Provider) SchedulerOption {
	return func(s *schedulerSettings) { s.provider = p }
}

// NewScheduler constructs a Scheduler. opts configures worker admission
// (WithMaxWorkers, WithReadyQueueSize); msOpts configures ambient
// dependencies (WithMetrics).
func NewScheduler(opts []Option, msOpts ...SchedulerOption) (*Scheduler, error) {
	cfg, err := newConfig(opts...)
	if err != nil {
		return nil, fmt.Errorf("routine: %w", err)
	}

	settings := schedulerSettings{provider: metrics.NewNoopProvider()}
	for _, o := range msOpts {
		o(&settings)
	}

	var p pool.Pool
	if cfg.MaxWorkers == 0 {
		p = pool.NewDynamic(func() interface{} { return struct{}{} })
	} else {
		p = pool.NewFixed(cfg.MaxWorkers, func() interface{} { return struct{}{} })
	}

	s := &Scheduler{
		cfg:      cfg,
		pool:     p,
		ready:    make(chan *Routine, cfg.ReadyQueueSize),
		routines: make(map[ID]*Routine),
		closeCh:  make(chan struct{}),
		metrics:  settings.provider,
		spawned:  settings.provider.Counter(metrics.RoutinesSpawned),
		running:  settings.provider.UpDownCounter(metrics.RoutinesRunning),
		panicked: settings.provider.Counter(metrics.RoutinePanics),
	}

	go s.dispatch()

	return s, nil
}

// Lookup resolves an ID to its live Routine. Returns false once the
// Routine has completed and been reaped.
func (s *Scheduler) Lookup(id ID) (*Routine, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.routines[id]
	return r, ok
}

// Spawn admits fn for execution as a new Routine and returns the
// Routine's ID immediately, without blocking the caller: fn runs on a
// freshly created goroutine, which waits for a worker slot before
// calling it.
func (s *Scheduler) Spawn(ctx context.Context, fn func(ctx context.Context) error) ID {
	s.mu.Lock()
	s.nextID++
	id := ID(s.nextID)
	r := newRoutine(id, s)
	s.routines[id] = r
	s.mu.Unlock()

	s.spawned.Add(1)
	s.inflight.Add(1)

	go s.run(ctx, r, fn)

	return id
}

func (s *Scheduler) run(ctx context.Context, r *Routine, fn func(ctx context.Context) error) {
	defer s.inflight.Done()

	slot := s.pool.Get()
	r.mu.Lock()
	r.slot = slot
	r.state = Running
	r.mu.Unlock()

	s.trackCurrent(r)
	s.running.Add(1)

	err := s.invoke(ctx, r, fn)

	s.running.Add(-1)
	s.untrackCurrent(r)

	r.mu.Lock()
	r.state = Complete
	r.err = err
	slot = r.slot
	r.slot = nil
	waiters := r.waiters
	r.waiters = nil
	r.mu.Unlock()

	if slot != nil {
		s.pool.Put(slot)
	}

	for _, w := range waiters {
		if err != nil {
			w.SetException(err)
		} else {
			w.SetResult(struct{}{})
		}
	}

	s.mu.Lock()
	delete(s.routines, r.id)
	s.mu.Unlock()
}

func (s *Scheduler) invoke(ctx context.Context, r *Routine, fn func(ctx context.Context) error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			s.panicked.Add(1)
			err = fmt.Errorf("routine panicked: %v", p)
			log.For("scheduler").Error().Interface("routine_id", r.id).Msg(fmt.Sprint(p))
		}
	}()
	return fn(ctx)
}

// enqueueReady hands a Suspended routine back to the dispatcher for
// readmission to a worker slot.
func (s *Scheduler) enqueueReady(r *Routine) {
	s.ready <- r
}

// dispatch is the single goroutine that re-admits suspended routines.
// It never tracks "current" itself: that must happen on the goroutine
// that actually resumes execution, namely the one parked on
// <-r.resumeCh inside Defer/finishSuspend, which re-tracks itself right
// after waking.
func (s *Scheduler) dispatch() {
	for {
		select {
		case r, ok := <-s.ready:
			if !ok {
				return
			}
			go func(r *Routine) {
				slot := s.pool.Get()
				r.mu.Lock()
				r.slot = slot
				r.state = Running
				r.mu.Unlock()
				s.running.Add(1)
				r.resumeCh <- struct{}{}
			}(r)
		case <-s.closeCh:
			return
		}
	}
}

// Shutdown waits for all currently spawned routines to complete, then
// stops the dispatcher. It is safe to call concurrently; the sequence
// runs exactly once.
func (s *Scheduler) Shutdown() {
	s.closeOnce.Do(func() {
		s.inflight.Wait()
		close(s.closeCh)
	})
}
