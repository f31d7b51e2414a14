package routine

// ID identifies a Routine for its entire lifetime. Handles kept outside
// the Scheduler (e.g. in a reactor node or a queue reader) should store
// an ID and re-resolve it through Scheduler.Lookup rather than holding
// the *Routine directly, since a Routine is otherwise exclusively owned
// by the scheduler while live.
type ID uint64

// State is one of the five states a Routine may be in. Each constant
// below describes when a Routine is in that state.
type State int

const (
	// Pending means the Routine has been spawned but has not yet been
	// admitted to a worker slot.
	Pending State = iota
	// Running means the Routine currently owns a worker slot and its
	// entry function is executing.
	Running
	// PendingSuspend means Suspend (or SuspendWith) has been called but
	// the Routine has not yet released its worker slot. This is the
	// two-step state SuspendWith uses to avoid the "resume before
	// suspend" race: a Resume call landing here flips the state back to
	// Running instead of queuing a wakeup that would otherwise be lost.
	PendingSuspend
	// Suspended means the Routine has released its worker slot and is
	// waiting for an external Resume.
	Suspended
	// Complete is terminal: the entry function has returned or panicked.
	Complete
)

func (s State) String() string {
	switch s {
	case Pending:
		return "Pending"
	case Running:
		return "Running"
	case PendingSuspend:
		return "PendingSuspend"
	case Suspended:
		return "Suspended"
	case Complete:
		return "Complete"
	default:
		return "Unknown"
	}
}
