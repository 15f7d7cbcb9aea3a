// Package fake
// Author: momentics <momentics@gmail.com>
//
// Fake socket and socket factory for arbitration tests.

package fake

import (
	"fmt"
	"net"

	"github.com/momentics/clientconnect/api"
)

// Socket is a fake api.Socket.
type Socket struct {
	ID       int
	closed   bool
	closeErr error
}

// RawFD returns a synthetic descriptor.
func (s *Socket) RawFD() uintptr { return uintptr(1000 + s.ID) }

// LocalAddr returns a synthetic loopback address.
func (s *Socket) LocalAddr() net.Addr {
	return &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 40000 + s.ID}
}

// Close marks the socket closed and returns the configured error once.
func (s *Socket) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.closeErr
}

// Closed reports whether Close was called.
func (s *Socket) Closed() bool { return s.closed }

// SocketFactory records every socket it creates.
type SocketFactory struct {
	Sockets  []*Socket
	Err      error // returned by Create when set
	CloseErr error // handed to created sockets
}

// Create implements api.SocketFactory.
func (f *SocketFactory) Create() (api.Socket, error) {
	if f.Err != nil {
		return nil, fmt.Errorf("fake socket factory: %w", f.Err)
	}
	s := &Socket{ID: len(f.Sockets) + 1, closeErr: f.CloseErr}
	f.Sockets = append(f.Sockets, s)
	return s, nil
}

// Live returns the number of created sockets not yet closed.
func (f *SocketFactory) Live() int {
	n := 0
	for _, s := range f.Sockets {
		if !s.closed {
			n++
		}
	}
	return n
}
