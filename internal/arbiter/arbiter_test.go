package arbiter_test

import (
	"errors"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/momentics/clientconnect/api"
	"github.com/momentics/clientconnect/fake"
	"github.com/momentics/clientconnect/internal/arbiter"
)

func TestSharedSocketIsLazyAndShared(t *testing.T) {
	f := &fake.SocketFactory{}
	a := arbiter.New(f, zaptest.NewLogger(t))

	if a.State() != arbiter.Uncreated || len(f.Sockets) != 0 {
		t.Fatal("socket created before first demand")
	}
	s1, err := a.Shared()
	if err != nil {
		t.Fatal(err)
	}
	s2, err := a.Shared()
	if err != nil {
		t.Fatal(err)
	}
	if s1 != s2 || len(f.Sockets) != 1 {
		t.Fatalf("shared socket recreated: %d sockets", len(f.Sockets))
	}
	if a.State() != arbiter.Free {
		t.Fatalf("unexpected state %v", a.State())
	}

	// Releasing without holding the lease changes nothing.
	a.ReleaseExclusive()
	if f.Sockets[0].Closed() || a.State() != arbiter.Free {
		t.Fatal("release without lease destroyed the socket")
	}
}

func TestExclusiveLeaseScenario(t *testing.T) {
	f := &fake.SocketFactory{}
	a := arbiter.New(f, nil)

	s1, err := a.TakeExclusive()
	if err != nil || s1 == nil {
		t.Fatalf("first take failed: %v", err)
	}
	if a.CanTakeExclusive() {
		t.Fatal("lease reported free while held")
	}
	if s, err := a.TakeExclusive(); s != nil || !errors.Is(err, api.ErrSocketUnavailable) {
		t.Fatalf("second take should fail with ErrSocketUnavailable, got %v, %v", s, err)
	}
	shared, err := a.Shared()
	if err != nil || shared != s1 {
		t.Fatal("shared access during lease must return the leased instance")
	}

	a.ReleaseExclusive()
	if !a.CanTakeExclusive() {
		t.Fatal("lease not freed")
	}
	if !f.Sockets[0].Closed() || a.State() != arbiter.Uncreated {
		t.Fatal("release must destroy the socket")
	}
	a.ReleaseExclusive()

	s2, err := a.TakeExclusive()
	if err != nil {
		t.Fatal(err)
	}
	if s2 == s1 || len(f.Sockets) != 2 {
		t.Fatal("take after release must create a fresh socket")
	}
	if f.Live() != 1 {
		t.Fatalf("expected one live socket, got %d", f.Live())
	}
}

func TestTakeExclusiveCreationFailureKeepsLeaseFree(t *testing.T) {
	f := &fake.SocketFactory{Err: errors.New("no socket subsystem")}
	a := arbiter.New(f, nil)

	if _, err := a.TakeExclusive(); err == nil {
		t.Fatal("expected creation error")
	}
	if !a.CanTakeExclusive() || a.State() != arbiter.Uncreated {
		t.Fatal("failed creation must leave the arbitrator untouched")
	}

	f.Err = nil
	if _, err := a.TakeExclusive(); err != nil {
		t.Fatalf("take after recovery failed: %v", err)
	}
}

func TestReleaseSurvivesCloseError(t *testing.T) {
	f := &fake.SocketFactory{CloseErr: errors.New("closesocket error")}
	a := arbiter.New(f, zaptest.NewLogger(t))
	if _, err := a.TakeExclusive(); err != nil {
		t.Fatal(err)
	}
	a.ReleaseExclusive()
	if a.State() != arbiter.Uncreated || !a.CanTakeExclusive() {
		t.Fatal("close error must not keep the socket alive")
	}
	st := a.Stats()
	if st["created"] != uint64(1) || st["destroyed"] != uint64(1) {
		t.Errorf("unexpected stats %v", st)
	}
}

func TestNoFactory(t *testing.T) {
	a := arbiter.New(nil, nil)
	if _, err := a.Shared(); !errors.Is(err, api.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCloseDestroysHeldSocket(t *testing.T) {
	f := &fake.SocketFactory{}
	a := arbiter.New(f, nil)
	if _, err := a.TakeExclusive(); err != nil {
		t.Fatal(err)
	}
	a.Close()
	if f.Live() != 0 || !a.CanTakeExclusive() {
		t.Fatal("close must destroy the socket and free the lease")
	}
}
