//go:build linux

package rendezvous

import (
	"context"
	"errors"
	"fmt"
	"net"

	"golang.org/x/sys/unix"
)

// An abstract address is limited by sun_path (108 bytes) less the leading
// NUL.
const maxAddressName = 100

// Channels live in the abstract socket namespace, so the kernel drops the
// name as soon as the owning socket is closed, including on crash.
func address(name string) string {
	return "@" + fitName(name, maxAddressName)
}

func dial(ctx context.Context, name string) (net.Conn, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", address(name))
	if err != nil {
		if errors.Is(err, unix.ECONNREFUSED) || errors.Is(err, unix.ENOENT) {
			return nil, fmt.Errorf("%s: %w", name, ErrNoOwner)
		}
		return nil, fmt.Errorf("dial %s: %w", name, err)
	}
	return conn, nil
}

func listen(name string) (net.Listener, func() error, error) {
	ln, err := net.Listen("unix", address(name))
	if err != nil {
		if errors.Is(err, unix.EADDRINUSE) {
			return nil, nil, fmt.Errorf("%s: %w", name, ErrAlreadyOwned)
		}
		return nil, nil, fmt.Errorf("listen %s: %w", name, err)
	}
	return ln, nil, nil
}
