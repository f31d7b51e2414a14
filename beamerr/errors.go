// Package beamerr defines the error-kind catalogue shared by every Beam
// runtime component: routines, queues, the reactor graph and the
// query-storage write-back pipeline all raise one of these kinds so a
// caller can distinguish them with errors.Is regardless of which
// component produced the error or how many times it was wrapped while
// crossing a routine/queue/reactor boundary.
package beamerr

import "github.com/cockroachdb/errors"

// Sentinel kinds. Components wrap these with errors.Wrap/errors.Mark so
// that errors.Is(err, beamerr.PipeBroken) still holds after the error has
// crossed a queue.Break, an Async[T] completion, or a reactor commit.
var (
	// Unavailable is returned by a reactor node's Eval when it has not
	// yet produced a value.
	Unavailable = errors.New("beam: value unavailable")

	// PipeBroken is surfaced by Queue reads once a broken queue is
	// drained: as the error itself after a bare Break(nil), or as the
	// kind marked on the explicit break error. Queue.Push has no error
	// result; a push after Break is discarded.
	PipeBroken = errors.New("beam: pipe broken")

	// Cancelled is the kind for a queue broken with a cancellation
	// payload. Timers report cancellation as their Cancelled Result, not
	// as this error.
	Cancelled = errors.New("beam: cancelled")

	// Connect marks an error from the backend DataStore's Open/Close.
	Connect = errors.New("beam: connect error")

	// IO marks an error from the backend DataStore's Store/Load.
	IO = errors.New("beam: io error")

	// Serialization marks an error raised by a serialization collaborator.
	Serialization = errors.New("beam: serialization error")

	// TypeMismatch is raised when a value fails a domain invariant, e.g.
	// a decoded value does not fit its expected shape.
	TypeMismatch = errors.New("beam: type mismatch")

	// OutOfRange is raised when a call falls outside a domain-defined
	// bound, e.g. a Timer's Wait called before any Start.
	OutOfRange = errors.New("beam: value out of range")
)

// Mark wraps err so that errors.Is(Mark(err, kind), kind) holds, while
// preserving err's own message and stack trace. It is a no-op for a nil
// err.
func Mark(err error, kind error) error {
	if err == nil {
		return nil
	}
	return errors.Mark(err, kind)
}

// Wrap marks err with kind and attaches msg as additional context,
// mirroring errors.Wrap's formatting but keeping the kind matchable via
// errors.Is.
func Wrap(err error, kind error, msg string) error {
	if err == nil {
		return nil
	}
	return errors.Mark(errors.Wrap(err, msg), kind)
}
