//go:build !windows

package process

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"time"
)

func waitForFile(t *testing.T, path string) []byte {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for {
		data, err := os.ReadFile(path)
		if err == nil && len(data) > 0 {
			return data
		}
		if err != nil && !os.IsNotExist(err) {
			t.Fatalf("read %s: %v", path, err)
		}
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", path)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestStartForwardsArguments(t *testing.T) {
	out := filepath.Join(t.TempDir(), "args")
	child, err := Start(Spec{
		Path: "/bin/sh",
		Args: []string{"-c", `printf '%s\n' "$@" > "$0"`, out, "--flag", "value"},
	})
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := child.Wait(ctx); err != nil {
		t.Fatalf("wait: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read args: %v", err)
	}
	if got, want := string(data), "--flag\nvalue\n"; got != want {
		t.Fatalf("unexpected arguments: got %q want %q", got, want)
	}
}

func TestStartMissingExecutable(t *testing.T) {
	_, err := Start(Spec{Path: filepath.Join(t.TempDir(), "missing")})
	if err == nil {
		t.Fatal("expected start error for missing executable")
	}
	if !strings.Contains(err.Error(), "missing") {
		t.Fatalf("error should name the executable: %v", err)
	}
}

func TestChildReportsExitStatus(t *testing.T) {
	child, err := Start(Spec{Path: "/bin/sh", Args: []string{"-c", "exit 3"}})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if got := child.ExitCode(); got != -1 && got != 3 {
		t.Fatalf("unexpected exit code before wait: %d", got)
	}

	select {
	case <-child.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("child did not exit")
	}

	var exitErr *exec.ExitError
	if !errors.As(child.Err(), &exitErr) {
		t.Fatalf("expected exit error, got %v", child.Err())
	}
	if got := child.ExitCode(); got != 3 {
		t.Fatalf("expected exit code 3, got %d", got)
	}
}

func TestChildLeadsItsOwnGroup(t *testing.T) {
	child, err := Start(Spec{Path: "/bin/sh", Args: []string{"-c", "sleep 5"}})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	t.Cleanup(func() {
		_ = child.Group().Interrupt(syscall.SIGKILL)
		<-child.Done()
	})

	if child.Group().ID() != child.Pid() {
		t.Fatalf("group id %d differs from pid %d", child.Group().ID(), child.Pid())
	}
	pgid, err := syscall.Getpgid(child.Pid())
	if err != nil {
		t.Fatalf("getpgid: %v", err)
	}
	if pgid != child.Pid() {
		t.Fatalf("child is not a group leader: pgid=%d pid=%d", pgid, child.Pid())
	}
	if pgid == syscall.Getpgrp() {
		t.Fatal("child shares the test's process group")
	}
}

func TestGroupInterruptReachesGrandchildren(t *testing.T) {
	dir := t.TempDir()
	ready := filepath.Join(dir, "ready")
	marker := filepath.Join(dir, "grandchild-stopped")
	script := `/bin/sh -c 'trap "echo stopped > ` + marker + `; exit 0" TERM; echo up > ` + ready + `; while :; do sleep 0.05; done' &
wait`

	child, err := Start(Spec{Path: "/bin/sh", Args: []string{"-c", script}})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	waitForFile(t, ready)

	if err := child.Group().Interrupt(syscall.SIGTERM); err != nil {
		t.Fatalf("interrupt: %v", err)
	}

	select {
	case <-child.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("child did not exit after group interrupt")
	}
	if got := strings.TrimSpace(string(waitForFile(t, marker))); got != "stopped" {
		t.Fatalf("unexpected grandchild marker %q", got)
	}
}

func TestInterruptAfterExitIsNotAnError(t *testing.T) {
	child, err := Start(Spec{Path: "/bin/sh", Args: []string{"-c", "exit 0"}})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	<-child.Done()

	if err := child.Group().Interrupt(nil); err != nil {
		t.Fatalf("interrupt after exit: %v", err)
	}
}

func TestParseSignal(t *testing.T) {
	cases := map[string]syscall.Signal{
		"":        syscall.SIGINT,
		"int":     syscall.SIGINT,
		"SIGTERM": syscall.SIGTERM,
		" quit ":  syscall.SIGQUIT,
	}
	for name, want := range cases {
		got, err := ParseSignal(name)
		if err != nil {
			t.Fatalf("ParseSignal(%q): %v", name, err)
		}
		if got != want {
			t.Fatalf("ParseSignal(%q) = %v, want %v", name, got, want)
		}
	}
	if _, err := ParseSignal("BOGUS"); err == nil {
		t.Fatal("expected error for unknown signal")
	}
}
