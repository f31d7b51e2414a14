package store

import (
	"sync"

	"github.com/ygrebnov/beam/query"
)

// reservoir is a per-index ordered buffer of not-yet-flushed values.
// Writes within a single index arrive in increasing sequence order, so
// appending preserves order without a separate sort step.
type reservoir[T any, K comparable] struct {
	mu    sync.Mutex
	byKey map[K][]query.SequencedValue[T]
}

func newReservoir[T any, K comparable]() *reservoir[T, K] {
	return &reservoir[T, K]{byKey: make(map[K][]query.SequencedValue[T])}
}

func (r *reservoir[T, K]) append(values []query.Record[T, K]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range values {
		k := rec.Value.Index
		r.byKey[k] = append(r.byKey[k], query.SequencedValue[T]{Value: rec.Value.Value, Sequence: rec.Sequence})
	}
}

// valuesFor returns index's buffered values, oldest first.
func (r *reservoir[T, K]) valuesFor(index K) []query.SequencedValue[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	vs := r.byKey[index]
	out := make([]query.SequencedValue[T], len(vs))
	copy(out, vs)
	return out
}

// isEmpty reports whether the reservoir holds no buffered values at
// all, across every index.
func (r *reservoir[T, K]) isEmpty() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, vs := range r.byKey {
		if len(vs) > 0 {
			return false
		}
	}
	return true
}

// count returns the total number of buffered values across all indices.
func (r *reservoir[T, K]) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, vs := range r.byKey {
		n += len(vs)
	}
	return n
}

// toRecords flattens the reservoir into the shape the backend Store
// call expects.
func (r *reservoir[T, K]) toRecords() []query.Record[T, K] {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []query.Record[T, K]
	for k, vs := range r.byKey {
		for _, sv := range vs {
			out = append(out, query.Record[T, K]{
				Value:    query.IndexedValue[T, K]{Value: sv.Value, Index: k},
				Sequence: sv.Sequence,
			})
		}
	}
	return out
}

// mergeInFront prepends other's values ahead of this reservoir's own
// values for each index, used when a flush fails and the flushing
// reservoir's values must be retained for the next attempt. other's
// values are older (lower sequence) than anything already buffered
// here, since they were rotated out first.
func (r *reservoir[T, K]) mergeInFront(other *reservoir[T, K]) {
	other.mu.Lock()
	snapshot := make(map[K][]query.SequencedValue[T], len(other.byKey))
	for k, vs := range other.byKey {
		cp := make([]query.SequencedValue[T], len(vs))
		copy(cp, vs)
		snapshot[k] = cp
	}
	other.mu.Unlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	for k, olderValues := range snapshot {
		if len(olderValues) == 0 {
			continue
		}
		r.byKey[k] = append(append([]query.SequencedValue[T]{}, olderValues...), r.byKey[k]...)
	}
}
