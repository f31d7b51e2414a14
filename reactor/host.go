package reactor

import (
	"context"
	"sync"
	"time"

	"github.com/ygrebnov/beam/internal/log"
	"github.com/ygrebnov/beam/metrics"
	"github.com/ygrebnov/beam/routine"
)

// Host drives a root Reactor's commits in response to a Trigger,
// running as a single dedicated routine. It forwards exactly one value
// to an outward error channel: the first error Eval the root produces,
// or nil if the root completes without having produced one.
type Host[T any] struct {
	root    Reactor[T]
	trigger *Trigger

	onEval func(Expect[T])

	errOnce sync.Once
	errCh   chan error

	commits  metrics.Counter
	duration metrics.Histogram
}

// HostOption configures a Host at construction time.
type HostOption[T any] func(*Host[T])

// WithOnEval installs a callback invoked with every Eval value the root
// produces.
func WithOnEval[T any](f func(Expect[T])) HostOption[T] {
	return func(h *Host[T]) { h.onEval = f }
}

// WithHostMetrics installs a metrics.Provider the Host reports commit
// counters and durations to. Defaults to a no-op provider.
func WithHostMetrics[T any](p metrics.Provider) HostOption[T] {
	return func(h *Host[T]) {
		h.commits = p.Counter(metrics.ReactorCommits)
		h.duration = p.Histogram(metrics.ReactorCommitDuration, metrics.WithBuckets(metrics.DefaultDurationBuckets...))
	}
}

// NewHost constructs a Host over root, driven by trigger.
func NewHost[T any](root Reactor[T], trigger *Trigger, opts ...HostOption[T]) *Host[T] {
	h := &Host[T]{
		root:     root,
		trigger:  trigger,
		errCh:    make(chan error, 1),
		commits:  metrics.NewNoopProvider().Counter(""),
		duration: metrics.NewNoopProvider().Histogram(""),
	}
	for _, o := range opts {
		o(h)
	}
	return h
}

// Errors returns a channel that receives exactly one value: the error
// of the first error Eval the root produces (terminal or not), or nil
// once the root completes without an error value.
func (h *Host[T]) Errors() <-chan error {
	return h.errCh
}

// Run spawns the host loop as a routine on s and returns its ID. The
// loop performs an initial seq=0 probe, then blocks on the trigger
// between commits until ctx is cancelled or the root completes.
func (h *Host[T]) Run(ctx context.Context, s *routine.Scheduler) routine.ID {
	return s.Spawn(ctx, h.loop)
}

func (h *Host[T]) loop(ctx context.Context) error {
	logger := log.For("reactor.host")

	if h.commit(0) {
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		seq := h.waitForSeq(ctx)
		if seq == 0 {
			return nil
		}
		if h.commit(seq) {
			return nil
		}
		logger.Debug().Uint64("seq", seq).Msg("committed")
	}
}

// waitForSeq blocks on the trigger, returning 0 if ctx is cancelled
// first.
func (h *Host[T]) waitForSeq(ctx context.Context) uint64 {
	type result struct{ seq uint64 }
	done := make(chan result, 1)
	go func() {
		done <- result{seq: h.trigger.Wait()}
	}()

	select {
	case <-ctx.Done():
		return 0
	case r := <-done:
		return r.seq
	}
}

// commit performs one commit(seq) on the root, reporting metrics,
// invoking onEval, and forwarding a terminal error exactly once.
// Returns true if the root has completed.
func (h *Host[T]) commit(seq uint64) (terminal bool) {
	start := time.Now()
	u := h.root.Commit(seq)
	h.commits.Add(1)
	h.duration.Record(time.Since(start).Seconds())

	if u.HasEval() {
		v := h.root.Eval()
		if h.onEval != nil {
			h.onEval(v)
		}
		if v.IsErr() {
			h.forwardErr(v.Err())
		}
	}
	if u.HasComplete() {
		if v := h.root.Eval(); v.IsErr() {
			h.forwardErr(v.Err())
		}
		h.errOnce.Do(func() {
			select {
			case h.errCh <- nil:
			default:
			}
		})
		return true
	}
	return false
}

func (h *Host[T]) forwardErr(err error) {
	h.errOnce.Do(func() {
		select {
		case h.errCh <- err:
		default:
		}
	})
}
