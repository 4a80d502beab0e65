// Package signals watches the external termination events a supervisor
// reacts to: interactive interrupt, console close, break, session logoff and
// system shutdown.
package signals

import (
	"os"
	"os/signal"
)

// Event names an external termination request.
type Event int

const (
	Interrupt Event = iota
	Close
	Break
	Logoff
	Shutdown
)

func (e Event) String() string {
	switch e {
	case Interrupt:
		return "interrupt"
	case Close:
		return "close"
	case Break:
		return "break"
	case Logoff:
		return "logoff"
	case Shutdown:
		return "shutdown"
	default:
		return "unknown"
	}
}

// Termination returns the platform signals that carry the five events.
// Several events share one signal on some platforms.
func Termination() []os.Signal {
	seen := make(map[os.Signal]struct{}, len(events))
	out := make([]os.Signal, 0, len(events))
	for _, entry := range events {
		if _, ok := seen[entry.sig]; ok {
			continue
		}
		seen[entry.sig] = struct{}{}
		out = append(out, entry.sig)
	}
	return out
}

// Classify maps a received signal to the first event it carries.
func Classify(sig os.Signal) (Event, bool) {
	for _, entry := range events {
		if entry.sig == sig {
			return entry.event, true
		}
	}
	return 0, false
}

// Notify starts relaying termination signals to the returned channel until
// stop is called. The channel is buffered so a signal delivered while the
// receiver is busy is not lost.
func Notify() (<-chan os.Signal, func()) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, Termination()...)
	return ch, func() { signal.Stop(ch) }
}

type mapping struct {
	event Event
	sig   os.Signal
}
