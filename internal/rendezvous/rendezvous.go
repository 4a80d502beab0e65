// Package rendezvous implements the named, exclusive-owner channel that
// supervisor instances use to find and wait out each other.
//
// The channel carries no payload. A peer connection means "a successor is
// waiting to take over"; closure of that connection means "the owner is
// gone". Ownership is bound to the owning process, so the operating system
// releases it even when the owner dies without cleaning up.
package rendezvous

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net"
	"path/filepath"
	"strings"
	"sync"
)

// Prefix is the fixed namespace every channel name starts with.
const Prefix = "one_instance_"

var (
	// ErrNoOwner is returned by Connect when no process owns the channel.
	ErrNoOwner = errors.New("rendezvous: channel has no owner")
	// ErrAlreadyOwned is returned by Bind when another process owns the channel.
	ErrAlreadyOwned = errors.New("rendezvous: channel already owned")
)

// Channel is a named rendezvous point. Implementations are swappable per
// platform; the supervisor only depends on this interface.
type Channel interface {
	// Connect attempts to reach the current owner. It returns ErrNoOwner when
	// nobody owns the channel.
	Connect(ctx context.Context) (Peer, error)
	// Bind claims ownership. It returns ErrAlreadyOwned when another process
	// holds it.
	Bind() (Owner, error)
	// Name returns the channel name.
	Name() string
}

// Peer is a connection to the current owner.
type Peer interface {
	// WaitClosed blocks until the owner side closes. Data written by the owner
	// is treated the same as closure.
	WaitClosed(ctx context.Context) error
	io.Closer
}

// Owner is the owned end of a channel.
type Owner interface {
	// WaitPeer blocks until another process connects as a peer. It fires at
	// most once per Owner.
	WaitPeer(ctx context.Context) error
	// Close releases ownership and closes every accepted peer connection.
	io.Closer
}

// Name derives the channel name for an executable. Only the base file name
// takes part, with '.' replaced by '_', so "app.exe" and "app_exe" share a
// channel.
func Name(executable string) (string, error) {
	base := filepath.Base(executable)
	switch base {
	case "", ".", "..", string(filepath.Separator):
		return "", fmt.Errorf("%q does not name a file", executable)
	}
	return Prefix + strings.ReplaceAll(base, ".", "_"), nil
}

// fitName shortens name to at most limit bytes for transports with a length
// limit. Overlong names keep their prefix and end in a hash of the full name,
// so distinct names stay distinct.
func fitName(name string, limit int) string {
	if len(name) <= limit {
		return name
	}
	sum := sha256.Sum256([]byte(name))
	suffix := "_" + hex.EncodeToString(sum[:8])
	return name[:limit-len(suffix)] + suffix
}

// Open returns the platform channel for the given name.
func Open(name string) Channel {
	return &channel{name: name}
}

// OpenFor is a shortcut for Name followed by Open.
func OpenFor(executable string) (Channel, error) {
	name, err := Name(executable)
	if err != nil {
		return nil, err
	}
	return Open(name), nil
}

type channel struct {
	name string
}

func (c *channel) Name() string {
	return c.name
}

func (c *channel) Connect(ctx context.Context) (Peer, error) {
	conn, err := dial(ctx, c.name)
	if err != nil {
		return nil, err
	}
	return &peer{conn: conn}, nil
}

func (c *channel) Bind() (Owner, error) {
	ln, release, err := listen(c.name)
	if err != nil {
		return nil, err
	}
	return &owner{ln: ln, release: release, peers: make(chan error, 1)}, nil
}

type peer struct {
	conn net.Conn
}

func (p *peer) WaitClosed(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		defer close(done)
		var buf [4]byte
		_, _ = p.conn.Read(buf[:])
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		_ = p.conn.Close()
		<-done
		return ctx.Err()
	}
}

func (p *peer) Close() error {
	return p.conn.Close()
}

type owner struct {
	ln      net.Listener
	release func() error
	peers   chan error
	accept  sync.Once

	mu     sync.Mutex
	conns  []net.Conn
	closed bool
}

func (o *owner) WaitPeer(ctx context.Context) error {
	o.accept.Do(func() { go o.acceptOne() })
	select {
	case err := <-o.peers:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (o *owner) acceptOne() {
	conn, err := o.ln.Accept()
	if err != nil {
		o.peers <- fmt.Errorf("accept peer: %w", err)
		return
	}

	o.mu.Lock()
	if o.closed {
		_ = conn.Close()
	} else {
		o.conns = append(o.conns, conn)
	}
	o.mu.Unlock()
	o.peers <- nil
}

func (o *owner) Close() error {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return nil
	}
	o.closed = true
	conns := o.conns
	o.conns = nil
	o.mu.Unlock()

	err := o.ln.Close()
	for _, conn := range conns {
		_ = conn.Close()
	}
	if o.release != nil {
		if rerr := o.release(); rerr != nil && err == nil {
			err = rerr
		}
	}
	return err
}
