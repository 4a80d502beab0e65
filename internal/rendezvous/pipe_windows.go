//go:build windows

package rendezvous

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"

	"github.com/Microsoft/go-winio"
)

func pipePath(name string) string {
	return `\\.\pipe\` + name
}

// While the owner has no free pipe instance (it already accepted a successor)
// go-winio retries ERROR_PIPE_BUSY until ctx is done.
func dial(ctx context.Context, name string) (net.Conn, error) {
	conn, err := winio.DialPipeContext(ctx, pipePath(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", name, ErrNoOwner)
		}
		return nil, fmt.Errorf("dial %s: %w", name, err)
	}
	return conn, nil
}

// The first listener on a pipe name is created with first-instance
// semantics, so a second owner is refused by the kernel.
func listen(name string) (net.Listener, func() error, error) {
	ln, err := winio.ListenPipe(pipePath(name), nil)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) || errors.Is(err, fs.ErrExist) {
			return nil, nil, fmt.Errorf("%s: %w", name, ErrAlreadyOwned)
		}
		return nil, nil, fmt.Errorf("listen %s: %w", name, err)
	}
	return ln, nil, nil
}
