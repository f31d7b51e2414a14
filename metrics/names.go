package metrics

// Instrument names shared across Beam's runtime components. Keeping them
// here, rather than letting each component invent its own strings, keeps
// dashboards stable across routine/reactor/store changes.
const (
	// RoutinesSpawned counts Scheduler.Spawn calls.
	RoutinesSpawned = "beam.routines.spawned"
	// RoutinesRunning is the current number of routines in the Running state.
	RoutinesRunning = "beam.routines.running"
	// RoutinePanics counts routine entry functions that panicked.
	RoutinePanics = "beam.routines.panics"

	// ReactorCommits counts root Commit calls made by a Host, including
	// the initial seq 0 probe. Trigger signals that arrive while the Host
	// is busy coalesce into one commit.
	ReactorCommits = "beam.reactor.commits"
	// ReactorCommitDuration records the wall time, in seconds, of each
	// root Commit call made by a Host.
	ReactorCommitDuration = "beam.reactor.commit_duration_seconds"

	// StoreFlushes counts successful AsyncDataStore flushes; failed ones
	// are counted by StoreFlushFailures.
	StoreFlushes = "beam.store.flushes"
	// StoreFlushFailures counts failed backend.Store calls during flush.
	StoreFlushFailures = "beam.store.flush_failures"
	// StoreFlushDuration records the wall time of each backend.Store
	// call made by the flush loop, success or failure.
	StoreFlushDuration = "beam.store.flush_duration_seconds"
	// StoreBufferedValues is the current count of values held in reservoirs,
	// awaiting backend acknowledgement.
	StoreBufferedValues = "beam.store.buffered_values"
)

// DefaultDurationBuckets are the bucket bounds, in seconds, used for
// the reactor commit-duration and store flush-duration histograms
// unless a caller overrides them via metrics.WithBuckets.
var DefaultDurationBuckets = []float64{
	0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1,
}
