package ossocket_test

import (
	"errors"
	"net"
	"testing"

	"github.com/momentics/clientconnect/api"
	"github.com/momentics/clientconnect/internal/ossocket"
)

func TestFactoryCreatesBoundSocket(t *testing.T) {
	f := ossocket.NewFactory("127.0.0.1:0")
	s, err := f.Create()
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	addr, ok := s.LocalAddr().(*net.UDPAddr)
	if !ok {
		t.Fatalf("unexpected addr type %T", s.LocalAddr())
	}
	if addr.Port == 0 {
		t.Error("ephemeral port not resolved")
	}
	if !addr.IP.Equal(net.IPv4(127, 0, 0, 1)) {
		t.Errorf("unexpected bind ip %v", addr.IP)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}

func TestFactoryRejectsBadAddress(t *testing.T) {
	if _, err := ossocket.NewFactory("not-an-address").Create(); err == nil {
		t.Fatal("expected parse error")
	}
	if _, err := ossocket.NewFactory("[::1]:0").Create(); !errors.Is(err, api.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for IPv6, got %v", err)
	}
}

func TestFactoryDefaultAddress(t *testing.T) {
	f := ossocket.NewFactory("")
	if f.Addr != "0.0.0.0:0" || f.Network != "udp4" {
		t.Fatalf("unexpected defaults %q %q", f.Network, f.Addr)
	}
}

func TestFactoryRejectsUnsupportedNetwork(t *testing.T) {
	f := ossocket.NewNetworkFactory("tcp", "127.0.0.1:0")
	if _, err := f.Create(); !errors.Is(err, api.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
	s, err := ossocket.NewNetworkFactory("udp", "127.0.0.1:0").Create()
	if err != nil {
		t.Fatalf("udp network: %v", err)
	}
	_ = s.Close()
}
