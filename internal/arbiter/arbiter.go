// File: internal/arbiter/arbiter.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Lease arbitration over the single shared networking socket.

package arbiter

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/momentics/clientconnect/api"
)

// State describes the arbitrator lifecycle:
// Uncreated -> Free -> Exclusive -> Uncreated.
type State uint8

const (
	Uncreated State = iota
	Free
	Exclusive
)

func (s State) String() string {
	switch s {
	case Uncreated:
		return "uncreated"
	case Free:
		return "free"
	case Exclusive:
		return "exclusive"
	default:
		return "unknown"
	}
}

// Arbiter owns one lazily created socket shared by gameplay networking and
// NAT traversal, plus an exclusive lease on it. Releasing the lease destroys
// the socket; the next request creates a fresh one.
//
// Arbiter is not safe for concurrent use.
type Arbiter struct {
	factory   api.SocketFactory
	log       *zap.Logger
	socket    api.Socket
	exclusive bool

	created   uint64
	destroyed uint64
}

// New creates an arbitrator. A nil logger disables logging.
func New(factory api.SocketFactory, log *zap.Logger) *Arbiter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Arbiter{factory: factory, log: log}
}

// Shared returns the shared socket, creating it on first use. All callers
// observe the same instance until the exclusive lease is released.
func (a *Arbiter) Shared() (api.Socket, error) {
	if a.socket != nil {
		return a.socket, nil
	}
	if a.factory == nil {
		a.log.Warn("unable to create shared networking socket: no socket factory")
		return nil, api.NewError(api.ErrCodeNotFound, "no socket factory configured")
	}
	s, err := a.factory.Create()
	if err != nil {
		a.log.Warn("unable to create shared networking socket", zap.Error(err))
		return nil, fmt.Errorf("create shared socket: %w", err)
	}
	if s == nil {
		return nil, api.NewError(api.ErrCodeInternal, "socket factory returned nil socket")
	}
	a.socket = s
	a.created++
	a.log.Info("created shared networking socket for NAT punchthrough and gameplay",
		zap.Stringer("addr", s.LocalAddr()))
	return s, nil
}

// CanTakeExclusive reports whether the lease is free.
func (a *Arbiter) CanTakeExclusive() bool {
	return !a.exclusive
}

// TakeExclusive grants the lease and returns the socket, creating it if
// needed. It fails with api.ErrSocketUnavailable while the lease is held. A
// creation failure leaves the lease free.
func (a *Arbiter) TakeExclusive() (api.Socket, error) {
	if a.exclusive {
		return nil, api.ErrSocketUnavailable
	}
	s, err := a.Shared()
	if err != nil {
		return nil, err
	}
	a.exclusive = true
	a.log.Info("shared networking socket now reserved by gameplay")
	return s, nil
}

// ReleaseExclusive ends the lease, closing and destroying the socket. It is a
// no-op when the lease is not held.
func (a *Arbiter) ReleaseExclusive() {
	if !a.exclusive {
		return
	}
	a.destroy()
	a.exclusive = false
}

// Close destroys the socket regardless of the lease. Used at shutdown.
func (a *Arbiter) Close() {
	a.destroy()
	a.exclusive = false
}

func (a *Arbiter) destroy() {
	if a.socket == nil {
		return
	}
	a.log.Info("releasing and destroying shared networking socket")
	if err := a.socket.Close(); err != nil {
		a.log.Warn("closing shared networking socket failed", zap.Error(err))
	}
	a.socket = nil
	a.destroyed++
}

// State returns the current lifecycle state.
func (a *Arbiter) State() State {
	switch {
	case a.exclusive:
		return Exclusive
	case a.socket != nil:
		return Free
	default:
		return Uncreated
	}
}

// Stats returns counters for debug probes and metrics.
func (a *Arbiter) Stats() map[string]any {
	return map[string]any{
		"state":     a.State().String(),
		"created":   a.created,
		"destroyed": a.destroyed,
	}
}
