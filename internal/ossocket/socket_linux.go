//go:build linux

// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Linux datagram socket created directly through x/sys/unix.

package ossocket

import (
	"fmt"
	"net"
	"net/netip"
	"sync/atomic"

	"golang.org/x/sys/unix"

	"github.com/momentics/clientconnect/api"
)

type linuxSocket struct {
	fd     int
	local  *net.UDPAddr
	closed atomic.Bool
}

func createUDP(ap netip.AddrPort) (api.Socket, error) {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_DGRAM|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, unix.IPPROTO_UDP)
	if err != nil {
		return nil, fmt.Errorf("socket create: %w", err)
	}
	_ = unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)

	sa := &unix.SockaddrInet4{Port: int(ap.Port()), Addr: ap.Addr().As4()}
	if err := unix.Bind(fd, sa); err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("socket bind %s: %w", ap, err)
	}
	bound, err := unix.Getsockname(fd)
	if err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("socket getsockname: %w", err)
	}
	local := &net.UDPAddr{IP: net.IPv4zero, Port: int(ap.Port())}
	if in4, ok := bound.(*unix.SockaddrInet4); ok {
		local = &net.UDPAddr{IP: net.IP(in4.Addr[:]).To4(), Port: in4.Port}
	}
	return &linuxSocket{fd: fd, local: local}, nil
}

func (s *linuxSocket) RawFD() uintptr { return uintptr(s.fd) }

func (s *linuxSocket) LocalAddr() net.Addr { return s.local }

func (s *linuxSocket) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	if err := unix.Close(s.fd); err != nil {
		return fmt.Errorf("closesocket: %w", err)
	}
	return nil
}
