//go:build !windows

package process

import (
	"os/exec"
	"syscall"
)

// The child leads its own group so that group-wide signals never reach the
// supervisor.
func configureCmdSysProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}
