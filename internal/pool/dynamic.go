package pool

import "sync"

// NewDynamic returns a Pool of worker slots that grows and shrinks on
// demand. It is a thin wrapper around sync.Pool: the Scheduler uses it
// when MaxWorkers == 0, so commit throughput is bounded only by
// GOMAXPROCS rather than an explicit worker cap.
func NewDynamic(newFn func() interface{}) Pool {
	return &sync.Pool{New: newFn}
}
