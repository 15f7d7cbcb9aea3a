//go:build !linux

// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Portable datagram socket built on the net package.

package ossocket

import (
	"fmt"
	"net"
	"net/netip"
	"sync/atomic"

	"github.com/momentics/clientconnect/api"
)

type netSocket struct {
	conn   *net.UDPConn
	fd     uintptr
	closed atomic.Bool
}

func createUDP(ap netip.AddrPort) (api.Socket, error) {
	conn, err := net.ListenUDP("udp4", net.UDPAddrFromAddrPort(ap))
	if err != nil {
		return nil, fmt.Errorf("socket create: %w", err)
	}
	s := &netSocket{conn: conn}
	if raw, err := conn.SyscallConn(); err == nil {
		_ = raw.Control(func(fd uintptr) { s.fd = fd })
	}
	return s, nil
}

func (s *netSocket) RawFD() uintptr { return s.fd }

func (s *netSocket) LocalAddr() net.Addr { return s.conn.LocalAddr() }

func (s *netSocket) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	return s.conn.Close()
}
