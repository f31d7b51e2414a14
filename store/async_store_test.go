package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ygrebnov/beam/query"
	"github.com/ygrebnov/beam/routine"
)

func newTestScheduler(t *testing.T) *routine.Scheduler {
	t.Helper()
	s, err := routine.NewScheduler(nil)
	require.NoError(t, err)
	t.Cleanup(s.Shutdown)
	return s
}

func rec(index string, seq query.Sequence, v int) query.Record[int, string] {
	return query.Record[int, string]{
		Value:    query.IndexedValue[int, string]{Value: v, Index: index},
		Sequence: seq,
	}
}

// waitUntil polls cond until it reports true or the deadline passes.
func waitUntil(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition never became true")
}

func TestAsyncDataStore_StoreAndLoadRoundTrips(t *testing.T) {
	backend := query.NewMemoryDataStore[int, string]()
	s, err := NewAsyncDataStore[int, string](backend)
	require.NoError(t, err)
	sched := newTestScheduler(t)
	// Cancelled before the scheduler's Shutdown cleanup runs, so the
	// flush loop returns and Shutdown's wait can finish.
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	require.NoError(t, s.Open(ctx))
	s.RunFlushLoop(ctx, sched)

	require.NoError(t, s.Store(ctx, []query.Record[int, string]{rec("a", 1, 10), rec("a", 2, 20)}))

	waitUntil(t, func() bool {
		vs, err := backend.Load(ctx, query.Query[string]{Index: "a", Range: query.Total(), SnapshotLimit: query.Unlimited()})
		return err == nil && len(vs) == 2
	})

	vs, err := s.Load(ctx, query.Query[string]{Index: "a", Range: query.Total(), SnapshotLimit: query.Unlimited()})
	require.NoError(t, err)
	require.Len(t, vs, 2)
	require.Equal(t, 10, vs[0].Value)
	require.Equal(t, 20, vs[1].Value)
}

func TestAsyncDataStore_LoadMergesPendingWithBackend(t *testing.T) {
	backend := query.NewMemoryDataStore[int, string]()
	// Block flushes so the write stays pending in the reservoir.
	faulty := query.NewFaultyDataStore[int, string](backend)
	s, err := NewAsyncDataStore[int, string](faulty, WithBackoff(10*time.Millisecond, 20*time.Millisecond))
	require.NoError(t, err)
	sched := newTestScheduler(t)
	// Cancelled before the scheduler's Shutdown cleanup runs, so the
	// flush loop returns and Shutdown's wait can finish.
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	require.NoError(t, s.Open(ctx))

	faulty.FailAllStores(errors.New("backend unavailable"))
	s.RunFlushLoop(ctx, sched)

	require.NoError(t, s.Store(ctx, []query.Record[int, string]{rec("a", 1, 10)}))

	waitUntil(t, func() bool { return faulty.StoreCalls() > 0 })

	vs, err := s.Load(ctx, query.Query[string]{Index: "a", Range: query.Total(), SnapshotLimit: query.Unlimited()})
	require.NoError(t, err)
	require.Len(t, vs, 1)
	require.Equal(t, 10, vs[0].Value)

	faulty.FailAllStores(nil)
	waitUntil(t, func() bool {
		vs, err := backend.Load(ctx, query.Query[string]{Index: "a", Range: query.Total(), SnapshotLimit: query.Unlimited()})
		return err == nil && len(vs) == 1
	})
}

func TestAsyncDataStore_HeadSpanningLoad(t *testing.T) {
	backend := query.NewMemoryDataStore[int, string]()
	s, err := NewAsyncDataStore[int, string](backend)
	require.NoError(t, err)
	sched := newTestScheduler(t)
	// Cancelled before the scheduler's Shutdown cleanup runs, so the
	// flush loop returns and Shutdown's wait can finish.
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	require.NoError(t, s.Open(ctx))
	s.RunFlushLoop(ctx, sched)

	var records []query.Record[int, string]
	for i := 1; i <= 5; i++ {
		records = append(records, rec("a", query.Sequence(i), i*10))
	}
	require.NoError(t, s.Store(ctx, records))

	waitUntil(t, func() bool {
		vs, err := backend.Load(ctx, query.Query[string]{Index: "a", Range: query.Total(), SnapshotLimit: query.Unlimited()})
		return err == nil && len(vs) == 5
	})

	vs, err := s.Load(ctx, query.Query[string]{Index: "a", Range: query.Total(), SnapshotLimit: query.Head(2)})
	require.NoError(t, err)
	require.Len(t, vs, 2)
	require.Equal(t, 10, vs[0].Value)
	require.Equal(t, 20, vs[1].Value)
}

func TestAsyncDataStore_TailSpanningLoad(t *testing.T) {
	backend := query.NewMemoryDataStore[int, string]()
	s, err := NewAsyncDataStore[int, string](backend)
	require.NoError(t, err)
	sched := newTestScheduler(t)
	// Cancelled before the scheduler's Shutdown cleanup runs, so the
	// flush loop returns and Shutdown's wait can finish.
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	require.NoError(t, s.Open(ctx))
	s.RunFlushLoop(ctx, sched)

	for i := 1; i <= 5; i++ {
		require.NoError(t, s.Store(ctx, []query.Record[int, string]{rec("a", query.Sequence(i), i*10)}))
	}

	waitUntil(t, func() bool {
		vs, err := backend.Load(ctx, query.Query[string]{Index: "a", Range: query.Total(), SnapshotLimit: query.Unlimited()})
		return err == nil && len(vs) == 5
	})

	vs, err := s.Load(ctx, query.Query[string]{Index: "a", Range: query.Total(), SnapshotLimit: query.Tail(2)})
	require.NoError(t, err)
	require.Len(t, vs, 2)
	require.Equal(t, 40, vs[0].Value)
	require.Equal(t, 50, vs[1].Value)
}

// TestAsyncDataStore_SpanningLoadMergesPartialPendingWithBackend drives
// the actual pending+backend concatenation path in Load's Head/Tail
// spanning loop: two values are durably flushed, a third fails once
// (via FaultyDataStore.FailNextStores) and so is still sitting in the
// reservoir when Head/Tail queries run, forcing Load to merge backend
// results with a non-empty pending slice rather than querying an
// already-fully-flushed backend.
func TestAsyncDataStore_SpanningLoadMergesPartialPendingWithBackend(t *testing.T) {
	backend := query.NewMemoryDataStore[int, string]()
	faulty := query.NewFaultyDataStore[int, string](backend)
	s, err := NewAsyncDataStore[int, string](faulty, WithBackoff(time.Hour, time.Hour))
	require.NoError(t, err)
	sched := newTestScheduler(t)
	// Cancelled before the scheduler's Shutdown cleanup runs, so the
	// flush loop returns and Shutdown's wait can finish.
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	require.NoError(t, s.Open(ctx))
	s.RunFlushLoop(ctx, sched)

	require.NoError(t, s.Store(ctx, []query.Record[int, string]{rec("a", 1, 10), rec("a", 2, 20)}))
	waitUntil(t, func() bool {
		vs, err := backend.Load(ctx, query.Query[string]{Index: "a", Range: query.Total(), SnapshotLimit: query.Unlimited()})
		return err == nil && len(vs) == 2
	})

	// The backoff is an hour, so once this flush fails the value stays
	// pending for the rest of the test.
	faulty.FailNextStores(errors.New("backend hiccup"))
	require.NoError(t, s.Store(ctx, []query.Record[int, string]{rec("a", 3, 30)}))
	waitUntil(t, func() bool { return faulty.StoreCalls() == 2 })

	head, err := s.Load(ctx, query.Query[string]{Index: "a", Range: query.Total(), SnapshotLimit: query.Head(3)})
	require.NoError(t, err)
	require.Len(t, head, 3)
	require.Equal(t, 10, head[0].Value)
	require.Equal(t, 20, head[1].Value)
	require.Equal(t, 30, head[2].Value)

	tail, err := s.Load(ctx, query.Query[string]{Index: "a", Range: query.Total(), SnapshotLimit: query.Tail(1)})
	require.NoError(t, err)
	require.Len(t, tail, 1)
	require.Equal(t, 30, tail[0].Value)
}

func TestAsyncDataStore_LoadTagsIndexOnBackendFailure(t *testing.T) {
	backend := query.NewMemoryDataStore[int, string]()
	faulty := query.NewFaultyDataStore[int, string](backend)
	s, err := NewAsyncDataStore[int, string](faulty)
	require.NoError(t, err)

	boom := errors.New("load boom")
	faulty.FailLoad(boom)

	_, err = s.Load(context.Background(), query.Query[string]{Index: "a", Range: query.Total(), SnapshotLimit: query.Unlimited()})
	require.Error(t, err)
	idx, ok := ExtractIndex[string](err)
	require.True(t, ok)
	require.Equal(t, "a", idx)
	require.ErrorIs(t, err, boom)
}

func TestAsyncDataStore_StoreAfterCloseFails(t *testing.T) {
	backend := query.NewMemoryDataStore[int, string]()
	s, err := NewAsyncDataStore[int, string](backend)
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, s.Open(ctx))
	require.NoError(t, s.Close(ctx))
	require.Error(t, s.Store(ctx, []query.Record[int, string]{rec("a", 1, 10)}))
}
