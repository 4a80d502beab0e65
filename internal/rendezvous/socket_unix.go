//go:build unix && !linux

package rendezvous

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// Without an abstract namespace the socket is a file in the temp directory.
// Ownership is the flock on the sibling lock file: the kernel drops it when
// the owner exits, and a socket file left behind by a crash is replaced.
func socketPath(name string) string {
	name = fitName(name, maxFileName)
	return filepath.Join(runtimeDir(name), name+".sock")
}

func lockPath(name string) string {
	name = fitName(name, maxFileName)
	return filepath.Join(runtimeDir(name), name+".lock")
}

// sun_path is 104 bytes on the BSDs and macOS, whose per-user temp
// directories are long. maxFileName keeps "/tmp/<name>.sock" within it.
const (
	maxSocketPath = 103
	maxFileName   = 90
)

func runtimeDir(name string) string {
	dir := os.TempDir()
	if len(filepath.Join(dir, name+".sock")) > maxSocketPath {
		return "/tmp"
	}
	return dir
}

func dial(ctx context.Context, name string) (net.Conn, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", socketPath(name))
	if err != nil {
		if errors.Is(err, unix.ECONNREFUSED) || errors.Is(err, unix.ENOENT) {
			return nil, fmt.Errorf("%s: %w", name, ErrNoOwner)
		}
		return nil, fmt.Errorf("dial %s: %w", name, err)
	}
	return conn, nil
}

func listen(name string) (net.Listener, func() error, error) {
	lock, err := os.OpenFile(lockPath(name), os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("open lock for %s: %w", name, err)
	}
	if err := unix.Flock(int(lock.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		_ = lock.Close()
		if errors.Is(err, unix.EWOULDBLOCK) {
			return nil, nil, fmt.Errorf("%s: %w", name, ErrAlreadyOwned)
		}
		return nil, nil, fmt.Errorf("lock %s: %w", name, err)
	}

	path := socketPath(name)
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		_ = lock.Close()
		return nil, nil, fmt.Errorf("remove stale socket %s: %w", path, err)
	}
	ln, err := net.Listen("unix", path)
	if err != nil {
		_ = lock.Close()
		return nil, nil, fmt.Errorf("listen %s: %w", name, err)
	}
	return ln, lock.Close, nil
}
