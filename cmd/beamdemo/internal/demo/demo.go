// Package demo wires a BasicReactor, a QueueReactor-backed host and an
// AsyncDataStore together for the beamdemo CLI.
package demo

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/ygrebnov/beam/beamerr"
	"github.com/ygrebnov/beam/metrics"
	"github.com/ygrebnov/beam/query"
	"github.com/ygrebnov/beam/reactor"
	"github.com/ygrebnov/beam/routine"
	"github.com/ygrebnov/beam/store"
)

// Run pushes values through a BasicReactor while also recording them in
// an AsyncDataStore under a single index, prints every commit as it
// happens, then prints the store's merged view once the reactor
// completes.
func Run(parent context.Context, w io.Writer, values []int, metricsOn bool) error {
	ctx, cancel := context.WithCancel(parent)
	sched, err := routine.NewScheduler(nil)
	if err != nil {
		cancel()
		return fmt.Errorf("beamdemo: constructing scheduler: %w", err)
	}
	// cancel must run before Shutdown so the flush loop's ctx.Done case
	// fires and Shutdown's wait for in-flight routines can return.
	defer sched.Shutdown()
	defer cancel()

	var provider metrics.Provider = metrics.NewNoopProvider()
	if metricsOn {
		provider = metrics.NewBasicProvider()
	}

	trigger := reactor.NewTrigger()
	root := reactor.NewBasicReactor[int](trigger)

	host := reactor.NewHost[int](root, trigger,
		reactor.WithOnEval(func(v reactor.Expect[int]) {
			if v.IsErr() {
				fmt.Fprintf(w, "commit: error=%v\n", v.Err())
				return
			}
			fmt.Fprintf(w, "commit: value=%d\n", v.Get())
		}),
		reactor.WithHostMetrics[int](provider),
	)
	host.Run(ctx, sched)

	backend := query.NewMemoryDataStore[int, string]()
	dataStore, err := store.NewAsyncDataStore[int, string](backend, store.WithMetrics(provider))
	if err != nil {
		return fmt.Errorf("beamdemo: constructing data store: %w", err)
	}
	if err := dataStore.Open(ctx); err != nil {
		return fmt.Errorf("beamdemo: opening data store: %w", err)
	}
	defer dataStore.Close(ctx)
	dataStore.RunFlushLoop(ctx, sched)

	const index = "beamdemo"
	for i, v := range values {
		root.Push(v)
		record := query.Record[int, string]{
			Value:    query.IndexedValue[int, string]{Value: v, Index: index},
			Sequence: query.Sequence(i + 1),
		}
		if err := dataStore.Store(ctx, []query.Record[int, string]{record}); err != nil {
			return fmt.Errorf("beamdemo: storing value: %w", err)
		}
	}
	root.SetComplete(nil)

	// With an empty values list, SetComplete(nil) runs before any value
	// was ever pushed, so the terminal Eval is the Unavailable default
	// rather than a real failure.
	if err := <-host.Errors(); err != nil && !errors.Is(err, beamerr.Unavailable) {
		return fmt.Errorf("beamdemo: reactor terminated with error: %w", err)
	}

	stored, err := dataStore.Load(ctx, query.Query[string]{
		Index:         index,
		Range:         query.Total(),
		SnapshotLimit: query.Unlimited(),
	})
	if err != nil {
		return fmt.Errorf("beamdemo: loading stored values: %w", err)
	}
	fmt.Fprintf(w, "stored: %v\n", stored)

	if metricsOn {
		if basic, ok := provider.(*metrics.BasicProvider); ok {
			printMetrics(w, basic)
		}
	}
	return nil
}
