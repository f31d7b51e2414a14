package store

import (
	"context"
	"sync"

	"github.com/ygrebnov/beam/query"
)

// BufferedDataStore is a simpler write-batching variant than
// AsyncDataStore: writes accumulate until bufferSize is reached or an
// explicit Flush is requested, with no retry-with-backoff machinery.
type BufferedDataStore[T any, K comparable] struct {
	backend    query.DataStore[T, K]
	bufferSize int

	mu      sync.Mutex
	pending *reservoir[T, K]
}

// NewBufferedDataStore constructs a BufferedDataStore that flushes once
// bufferSize values have accumulated.
func NewBufferedDataStore[T any, K comparable](backend query.DataStore[T, K], bufferSize int) *BufferedDataStore[T, K] {
	return &BufferedDataStore[T, K]{
		backend:    backend,
		bufferSize: bufferSize,
		pending:    newReservoir[T, K](),
	}
}

// Open opens the backend.
func (s *BufferedDataStore[T, K]) Open(ctx context.Context) error {
	return s.backend.Open(ctx)
}

// Close flushes any remaining buffered values, then closes the backend.
func (s *BufferedDataStore[T, K]) Close(ctx context.Context) error {
	if err := s.Flush(ctx); err != nil {
		return err
	}
	return s.backend.Close(ctx)
}

// Store appends values to the buffer, flushing synchronously once
// bufferSize is reached.
func (s *BufferedDataStore[T, K]) Store(ctx context.Context, values []query.Record[T, K]) error {
	s.mu.Lock()
	s.pending.append(values)
	reachedThreshold := s.pending.count() >= s.bufferSize
	s.mu.Unlock()

	if reachedThreshold {
		return s.Flush(ctx)
	}
	return nil
}

// Flush issues backend.Store for everything currently buffered and
// clears the buffer on success. On failure the buffer is retained so a
// later Flush call can retry.
func (s *BufferedDataStore[T, K]) Flush(ctx context.Context) error {
	s.mu.Lock()
	pending := s.pending
	s.mu.Unlock()

	if pending.isEmpty() {
		return nil
	}

	records := pending.toRecords()
	if err := s.backend.Store(ctx, records); err != nil {
		return err
	}

	s.mu.Lock()
	s.pending = newReservoir[T, K]()
	s.mu.Unlock()
	return nil
}

// Load merges buffered values with the backend's durable history,
// honoring q.SnapshotLimit the same way AsyncDataStore.Load does.
func (s *BufferedDataStore[T, K]) Load(ctx context.Context, q query.Query[K]) ([]query.SequencedValue[T], error) {
	s.mu.Lock()
	pending := s.pending.valuesFor(q.Index)
	s.mu.Unlock()

	filtered := pending[:0]
	for _, sv := range pending {
		if q.Range.Contains(sv.Sequence) {
			filtered = append(filtered, sv)
		}
	}

	if q.SnapshotLimit.Kind == query.LimitUnlimited {
		b, err := s.backend.Load(ctx, query.Query[K]{Index: q.Index, Range: q.Range, SnapshotLimit: query.Unlimited()})
		if err != nil {
			return nil, newIndexTaggedError(err, q.Index)
		}
		return append(b, filtered...), nil
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
		merged = append(append([]query.SequencedValue[T]{}, b...), filtered...)
		if len(merged) >= limit || len(b) < backendLimit {
			break
		}
		backendLimit *= 2
	}
	return query.ApplyLimit(merged, q.SnapshotLimit), nil
}
