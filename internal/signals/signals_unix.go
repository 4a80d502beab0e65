//go:build !windows

package signals

import "syscall"

// A terminal hangup covers both closing the terminal and ending the login
// session.
var events = []mapping{
	{event: Interrupt, sig: syscall.SIGINT},
	{event: Close, sig: syscall.SIGHUP},
	{event: Break, sig: syscall.SIGQUIT},
	{event: Logoff, sig: syscall.SIGHUP},
	{event: Shutdown, sig: syscall.SIGTERM},
}
