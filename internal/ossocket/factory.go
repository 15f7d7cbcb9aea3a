// File: internal/ossocket/factory.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// OS datagram socket factory for the shared networking socket.

package ossocket

import (
	"fmt"
	"net/netip"

	"github.com/momentics/clientconnect/api"
)

// Factory creates non-blocking UDP sockets bound to Addr.
type Factory struct {
	// Network is "udp" or "udp4". Empty means "udp4".
	Network string
	// Addr is the local bind address, for example "0.0.0.0:7777".
	// Port 0 lets the OS pick.
	Addr string
}

var _ api.SocketFactory = (*Factory)(nil)

// NewFactory returns a factory binding to addr. An empty addr binds to an
// ephemeral port on all IPv4 interfaces.
func NewFactory(addr string) *Factory {
	return NewNetworkFactory("udp4", addr)
}

// NewNetworkFactory is NewFactory with an explicit network.
func NewNetworkFactory(network, addr string) *Factory {
	if network == "" {
		network = "udp4"
	}
	if addr == "" {
		addr = "0.0.0.0:0"
	}
	return &Factory{Network: network, Addr: addr}
}

// Create opens and binds a new socket.
func (f *Factory) Create() (api.Socket, error) {
	switch f.Network {
	case "", "udp", "udp4":
	default:
		return nil, api.NewError(api.ErrCodeInvalidArgument, "unsupported shared socket network").
			WithContext("network", f.Network)
	}
	ap, err := netip.ParseAddrPort(f.Addr)
	if err != nil {
		return nil, fmt.Errorf("parse bind address %q: %w", f.Addr, err)
	}
	if !ap.Addr().Is4() {
		return nil, api.NewError(api.ErrCodeInvalidArgument, "shared socket must bind an IPv4 address").
			WithContext("addr", f.Addr)
	}
	return createUDP(ap)
}
