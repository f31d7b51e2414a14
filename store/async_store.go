// Package store implements Beam's write-batching layer in front of a
// query.DataStore backend. Both accumulate writes in an in-memory
// reservoir. AsyncDataStore flushes them on a dedicated routine,
// retrying indefinitely on backend failure; BufferedDataStore flushes
// synchronously in the caller once its threshold is reached or Flush is
// called, and does not retry on its own.
package store

import (
	"context"
	"sync"
	"time"

	"github.com/ygrebnov/beam/internal/log"
	"github.com/ygrebnov/beam/metrics"
	"github.com/ygrebnov/beam/query"
	"github.com/ygrebnov/beam/routine"
)

// AsyncDataStore batches writes to a backend query.DataStore. Open must
// succeed before Store/Load are used; a failed Open is never hidden
// behind a later success.
type AsyncDataStore[T any, K comparable] struct {
	backend query.DataStore[T, K]
	cfg     Config

	mu       sync.Mutex
	current  *reservoir[T, K]
	flushing *reservoir[T, K]
	closed   bool

	signal chan struct{}

	flushes        metrics.Counter
	flushFailures  metrics.Counter
	flushDuration  metrics.Histogram
	bufferedValues metrics.UpDownCounter
}

// NewAsyncDataStore constructs an AsyncDataStore in front of backend.
// Call Open before any Store/Load.
func NewAsyncDataStore[T any, K comparable](backend query.DataStore[T, K], opts ...Option) (*AsyncDataStore[T, K], error) {
	cfg, err := newConfig(opts...)
	if err != nil {
		return nil, err
	}
	return &AsyncDataStore[T, K]{
		backend:        backend,
		cfg:            cfg,
		current:        newReservoir[T, K](),
		signal:         make(chan struct{}, 1),
		flushes:        cfg.metrics.Counter(metrics.StoreFlushes),
		flushFailures:  cfg.metrics.Counter(metrics.StoreFlushFailures),
		flushDuration:  cfg.metrics.Histogram(metrics.StoreFlushDuration, metrics.WithBuckets(metrics.DefaultDurationBuckets...)),
		bufferedValues: cfg.metrics.UpDownCounter(metrics.StoreBufferedValues),
	}, nil
}

// Open opens the backend. Its failure is propagated and never hidden;
// Store/Load should not be called if Open fails.
func (s *AsyncDataStore[T, K]) Open(ctx context.Context) error {
	return s.backend.Open(ctx)
}

// Close stops accepting new writes. Any values still buffered are left
// for a future flush attempt by a caller that keeps the flush routine
// alive; Close itself does not force a synchronous final flush.
func (s *AsyncDataStore[T, K]) Close(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.bufferedValues.Reset()
	return s.backend.Close(ctx)
}

// Store appends values to the current reservoir and signals the flush
// routine. It returns immediately; no backend I/O happens synchronously.
func (s *AsyncDataStore[T, K]) Store(ctx context.Context, values []query.Record[T, K]) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return errClosed
	}
	s.current.append(values)
	s.mu.Unlock()

	s.bufferedValues.Add(int64(len(values)))

	select {
	case s.signal <- struct{}{}:
	default:
	}
	return nil
}

// Load returns values for q.Index within q.Range, merging whatever is
// still buffered (in the flushing and current reservoirs) with what
// the backend already holds durably, honoring q.SnapshotLimit.
func (s *AsyncDataStore[T, K]) Load(ctx context.Context, q query.Query[K]) ([]query.SequencedValue[T], error) {
	pending := s.pendingFor(q.Index, q.Range)

	if q.SnapshotLimit.Kind == query.LimitUnlimited {
		b, err := s.backend.Load(ctx, query.Query[K]{Index: q.Index, Range: q.Range, SnapshotLimit: query.Unlimited()})
		if err != nil {
			return nil, newIndexTaggedError(err, q.Index)
		}
		return append(b, pending...), nil
	}

	limit := q.SnapshotLimit.N
	backendLimit := limit
	var merged []query.SequencedValue[T]
	for {
		b, err := s.backend.Load(ctx, query.Query[K]{
			Index:         q.Index,
			Range:         q.Range,
			SnapshotLimit: query.SnapshotLimit{Kind: q.SnapshotLimit.Kind, N: backendLimit},
		})
		if err != nil {
			return nil, newIndexTaggedError(err, q.Index)
		}
		merged = append(append([]query.SequencedValue[T]{}, b...), pending...)
		if len(merged) >= limit || len(b) < backendLimit {
			break
		}
		backendLimit *= 2
	}
	return query.ApplyLimit(merged, q.SnapshotLimit), nil
}

func (s *AsyncDataStore[T, K]) pendingFor(index K, r query.Range) []query.SequencedValue[T] {
	s.mu.Lock()
	flushing := s.flushing
	current := s.current
	s.mu.Unlock()

	var pending []query.SequencedValue[T]
	if flushing != nil {
		pending = append(pending, flushing.valuesFor(index)...)
	}
	pending = append(pending, current.valuesFor(index)...)

	filtered := pending[:0]
	for _, sv := range pending {
		if r.Contains(sv.Sequence) {
			filtered = append(filtered, sv)
		}
	}
	return filtered
}

// RunFlushLoop spawns the flush routine on s. The loop rotates the
// current reservoir into the flushing slot on every signal, issues
// backend.Store, and retries with exponential backoff on failure,
// merging the flushing reservoir back into current so no write is
// silently dropped.
func (s *AsyncDataStore[T, K]) RunFlushLoop(ctx context.Context, sched *routine.Scheduler) routine.ID {
	return sched.Spawn(ctx, s.flushLoop)
}

func (s *AsyncDataStore[T, K]) flushLoop(ctx context.Context) error {
	logger := log.For("store.flush")
	backoff := s.cfg.BackoffBase

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.signal:
		}

		for {
			s.mu.Lock()
			if s.current.isEmpty() {
				s.mu.Unlock()
				break
			}
			flushing := s.current
			s.current = newReservoir[T, K]()
			s.flushing = flushing
			s.mu.Unlock()

			records := flushing.toRecords()
			start := time.Now()
			err := s.backend.Store(ctx, records)
			s.flushDuration.Record(time.Since(start).Seconds())

			s.mu.Lock()
			s.flushing = nil
			s.mu.Unlock()

			if err == nil {
				s.flushes.Add(1)
				s.bufferedValues.Add(int64(-len(records)))
				backoff = s.cfg.BackoffBase
				continue
			}

			s.flushFailures.Add(1)
			logger.Warn().Err(err).Int("pending", len(records)).Dur("backoff", backoff).Msg("flush failed, retrying")

			s.mu.Lock()
			s.current.mergeInFront(flushing)
			s.mu.Unlock()

			select {
			case <-ctx.Done():
				return nil
			case <-time.After(backoff):
			}
			backoff = nextBackoff(backoff, s.cfg.BackoffMax)
		}
	}
}

var errClosed = errorString("store: closed")

type errorString string

func (e errorString) Error() string { return string(e) }
