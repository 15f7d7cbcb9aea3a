// File: api/socket.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Shared datagram socket contract used by gameplay and NAT traversal code.

package api

import "net"

// Socket is an OS-level datagram socket shared between networking subsystems.
// I/O on the socket belongs to its users; this library only manages lifetime.
type Socket interface {
	// RawFD returns the underlying OS-level file descriptor.
	RawFD() uintptr

	// LocalAddr returns the bound local address.
	LocalAddr() net.Addr

	// Close closes and destroys the socket. Closing twice is a no-op.
	Close() error
}

// SocketFactory creates OS sockets. A failed Create must not leave a
// partially constructed socket behind.
type SocketFactory interface {
	Create() (Socket, error)
}
