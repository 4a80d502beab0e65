//go:build !windows

package process

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"

	"golang.org/x/sys/unix"
)

// DefaultInterrupt is the signal delivered to the group on preemption.
var DefaultInterrupt os.Signal = syscall.SIGINT

// Interrupt delivers sig to every member of the group. A nil sig sends
// DefaultInterrupt. A group that has already gone away is not an error.
func (g Group) Interrupt(sig os.Signal) error {
	if g.id <= 0 {
		return errors.New("process: invalid process group")
	}
	if sig == nil {
		sig = DefaultInterrupt
	}
	s, ok := sig.(syscall.Signal)
	if !ok {
		return fmt.Errorf("process: unsupported signal %v", sig)
	}
	if err := unix.Kill(-g.id, s); err != nil && !errors.Is(err, unix.ESRCH) {
		return fmt.Errorf("signal process group %d: %w", g.id, err)
	}
	return nil
}

var signalNames = map[string]syscall.Signal{
	"INT":  syscall.SIGINT,
	"TERM": syscall.SIGTERM,
	"HUP":  syscall.SIGHUP,
	"QUIT": syscall.SIGQUIT,
	"USR1": syscall.SIGUSR1,
	"USR2": syscall.SIGUSR2,
	"KILL": syscall.SIGKILL,
}

// ParseSignal resolves a signal name such as "INT" or "SIGTERM". An empty
// name resolves to DefaultInterrupt.
func ParseSignal(name string) (os.Signal, error) {
	name = strings.ToUpper(strings.TrimSpace(name))
	if name == "" {
		return DefaultInterrupt, nil
	}
	if sig, ok := signalNames[strings.TrimPrefix(name, "SIG")]; ok {
		return sig, nil
	}
	return nil, fmt.Errorf("unknown signal %q", name)
}
