package supervisor

import (
	"os"
	"time"
)

// State is a step of one supervisor lifecycle.
type State int

const (
	Draining State = iota
	Claiming
	Spawning
	Running
	Terminating
	Done
)

func (s State) String() string {
	switch s {
	case Draining:
		return "draining_predecessor"
	case Claiming:
		return "claiming_ownership"
	case Spawning:
		return "spawning"
	case Running:
		return "running"
	case Terminating:
		return "terminating"
	case Done:
		return "done"
	default:
		return "unknown"
	}
}

// Outcome is how a lifecycle ended.
type Outcome int

const (
	// NaturalExit means the child exited on its own.
	NaturalExit Outcome = iota
	// Preempted means the child was asked to stop.
	Preempted
	// Aborted means the supervisor stopped before spawning a child.
	Aborted
)

func (o Outcome) String() string {
	switch o {
	case NaturalExit:
		return "natural_exit"
	case Preempted:
		return "preempted"
	case Aborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// Cause names the event that ended the lifecycle.
type Cause string

const (
	CauseChildExit Cause = "child_exit"
	CauseSignal    Cause = "signal"
	CauseSuccessor Cause = "successor"
	CauseCanceled  Cause = "canceled"
)

// Result describes a finished lifecycle.
type Result struct {
	Channel string
	Outcome Outcome
	Cause   Cause
	// Signal is set when Cause is CauseSignal.
	Signal os.Signal

	HadPredecessor bool
	DrainWait      time.Duration

	// Pid is zero when no child was spawned.
	Pid int
	// ChildErr is the child's exit error; it never makes Run fail.
	ChildErr error
}
