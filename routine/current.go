package routine

import (
	"bytes"
	"runtime"
	"strconv"
	"sync"
)

// goroutineID extracts the calling goroutine's numeric ID by parsing the
// header line of runtime.Stack. This is the same technique used
// throughout the Go ecosystem to key goroutine-local state without an
// external dependency. It costs an allocation per call, and it is
// called on every Current() lookup as well as on each track/untrack at
// routine entry, exit, suspend and resume.
func goroutineID() uint64 {
	buf := make([]byte, 64)
	n := runtime.Stack(buf, false)
	buf = buf[:n]

	const prefix = "goroutine "
	buf = bytes.TrimPrefix(buf, []byte(prefix))
	i := bytes.IndexByte(buf, ' ')
	if i < 0 {
		return 0
	}
	id, err := strconv.ParseUint(string(buf[:i]), 10, 64)
	if err != nil {
		return 0
	}
	return id
}

var currentRegistry sync.Map // goroutine id (uint64) -> *Routine

// Current returns the Routine owning the calling goroutine, or nil if
// the calling goroutine is not a scheduler-managed routine.
func Current() *Routine {
	v, ok := currentRegistry.Load(goroutineID())
	if !ok {
		return nil
	}
	return v.(*Routine)
}

// trackCurrent records r as owning the calling goroutine. It must be
// called from within the goroutine that actually executes r's entry
// function (or that is resuming it), never from the dispatcher: the
// goroutine ID it captures is whichever one is running when this is
// called.
func (s *Scheduler) trackCurrent(r *Routine) {
	currentRegistry.Store(goroutineID(), r)
}

// untrackCurrent removes r's association with the calling goroutine,
// e.g. just before the goroutine parks waiting for a resume signal.
func (s *Scheduler) untrackCurrent(r *Routine) {
	currentRegistry.Delete(goroutineID())
}
