//go:build windows

package process

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/windows"
)

// DefaultInterrupt is reported for the CTRL_BREAK_EVENT sent on preemption.
var DefaultInterrupt os.Signal = os.Interrupt

var procSetConsoleCtrlHandler = windows.NewLazySystemDLL("kernel32.dll").NewProc("SetConsoleCtrlHandler")

// Interrupt sends CTRL_BREAK_EVENT to the group. Windows has no other
// group-addressable signal, so sig is ignored.
func (g Group) Interrupt(sig os.Signal) error {
	if g.id <= 0 {
		return errors.New("process: invalid process group")
	}
	// Ignore console control events in this process while the child group is
	// being interrupted.
	var errs []error
	if r, _, err := procSetConsoleCtrlHandler.Call(0, 1); r == 0 {
		errs = append(errs, fmt.Errorf("ignore console ctrl events: %w", err))
	}
	if err := windows.GenerateConsoleCtrlEvent(windows.CTRL_BREAK_EVENT, uint32(g.id)); err != nil {
		errs = append(errs, fmt.Errorf("send break to process group %d: %w", g.id, err))
	}
	return errors.Join(errs...)
}

// ParseSignal accepts any name; Windows always interrupts with
// CTRL_BREAK_EVENT.
func ParseSignal(string) (os.Signal, error) {
	return DefaultInterrupt, nil
}
