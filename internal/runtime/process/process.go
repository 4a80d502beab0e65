package process

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
)

// Spec describes how to launch the managed child.
type Spec struct {
	// Path is the executable. Names without a separator are resolved via PATH.
	Path string
	// Args are forwarded verbatim, without the program name.
	Args []string
	Dir  string
	// Env replaces the inherited environment when non-nil.
	Env []string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Child is a running managed process. Only its owner may wait on or signal it.
type Child struct {
	cmd   *exec.Cmd
	group Group

	done    chan struct{}
	waitErr error
	once    sync.Once
}

// Start launches the child in a new process group. The standard streams
// default to the supervisor's own.
func Start(spec Spec) (*Child, error) {
	if spec.Path == "" {
		return nil, errors.New("process: empty executable path")
	}

	cmd := exec.Command(spec.Path, spec.Args...)
	cmd.Dir = spec.Dir
	if spec.Env != nil {
		cmd.Env = spec.Env
	}
	cmd.Stdin = spec.Stdin
	if cmd.Stdin == nil {
		cmd.Stdin = os.Stdin
	}
	cmd.Stdout = spec.Stdout
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	cmd.Stderr = spec.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}

	configureCmdSysProcAttr(cmd)

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", spec.Path, err)
	}

	child := &Child{
		cmd:   cmd,
		group: Group{id: cmd.Process.Pid},
		done:  make(chan struct{}),
	}
	go child.reap()
	return child, nil
}

func (c *Child) reap() {
	err := c.cmd.Wait()
	c.once.Do(func() {
		c.waitErr = err
		close(c.done)
	})
}

// Pid returns the child's process identifier.
func (c *Child) Pid() int {
	return c.cmd.Process.Pid
}

// Group returns the handle for the child's process group.
func (c *Child) Group() Group {
	return c.group
}

// Done is closed once the child has exited and been reaped.
func (c *Child) Done() <-chan struct{} {
	return c.done
}

// Err returns the exit error reported by the child. It is only meaningful
// after Done is closed; a non-zero exit status is reported as *exec.ExitError.
func (c *Child) Err() error {
	select {
	case <-c.done:
		return c.waitErr
	default:
		return nil
	}
}

// Wait blocks until the child exits or ctx is done.
func (c *Child) Wait(ctx context.Context) error {
	select {
	case <-c.done:
		return c.waitErr
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ExitCode returns the child's exit code, or -1 while it is running or when
// it was terminated by a signal.
func (c *Child) ExitCode() int {
	select {
	case <-c.done:
		return c.cmd.ProcessState.ExitCode()
	default:
		return -1
	}
}

// Group addresses a child's process group.
type Group struct {
	id int
}

// ID returns the process group identifier, which equals the leader's pid.
func (g Group) ID() int {
	return g.id
}
