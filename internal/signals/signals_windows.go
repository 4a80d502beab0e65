//go:build windows

package signals

import (
	"os"
	"syscall"
)

// The Go runtime reports CTRL_C_EVENT and CTRL_BREAK_EVENT as os.Interrupt,
// and CTRL_CLOSE_EVENT, CTRL_LOGOFF_EVENT and CTRL_SHUTDOWN_EVENT as SIGTERM.
var events = []mapping{
	{event: Interrupt, sig: os.Interrupt},
	{event: Break, sig: os.Interrupt},
	{event: Close, sig: syscall.SIGTERM},
	{event: Logoff, sig: syscall.SIGTERM},
	{event: Shutdown, sig: syscall.SIGTERM},
}
