// File: internal/dispatch/poller.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Completion poller: the only place where finished transport operations
// become visible to the host.

package dispatch

import (
	"go.uber.org/zap"

	"github.com/momentics/clientconnect/api"
	"github.com/momentics/clientconnect/internal/slots"
)

type callback struct {
	handle api.Handle
	fn     api.CompletionFunc
}

// Poller publishes completed operations into the slot table once per tick
// and runs completion callbacks. It never blocks and is not safe for
// concurrent or reentrant use.
type Poller struct {
	table     *slots.Table
	log       *zap.Logger
	callbacks []callback
	ready     []readyCall

	completed       uint64
	transportErrors uint64
	callbacksRun    uint64
}

type readyCall struct {
	handle api.Handle
	resp   api.Response
}

// NewPoller creates a poller over table.
func NewPoller(table *slots.Table, log *zap.Logger) *Poller {
	if log == nil {
		log = zap.NewNop()
	}
	return &Poller{table: table, log: log}
}

// Poll drains every operation that has already finished, marks its slot
// Ready, then runs callbacks registered for Ready handles. It returns the
// number of calls published. Calling Poll again without new completions
// changes nothing.
func (p *Poller) Poll() int {
	p.ready = p.ready[:0]
	p.table.EachPending(func(h api.Handle, op api.Operation) {
		if op == nil {
			return
		}
		if resp, done := op.Poll(); done {
			p.ready = append(p.ready, readyCall{handle: h, resp: resp})
		}
	})

	published := 0
	for _, rc := range p.ready {
		if !p.table.Complete(rc.handle, rc.resp) {
			continue
		}
		published++
		p.completed++
		if rc.resp.StatusCode == api.StatusTransportError {
			p.transportErrors++
		}
		p.log.Debug("hotpatch call ready",
			zap.Stringer("handle", rc.handle),
			zap.Int("status", rc.resp.StatusCode))
	}
	for i := range p.ready {
		p.ready[i] = readyCall{}
	}

	p.runCallbacks()
	return published
}

// OnComplete registers fn for h. After the tick in which h becomes Ready, fn
// runs once with the status and body and the call is released. Registering
// on a released, stale or unknown handle fails with api.ErrInvalidHandle.
func (p *Poller) OnComplete(h api.Handle, fn api.CompletionFunc) error {
	st, ok := p.table.State(h)
	if !ok || st == slots.Released {
		return api.NewError(api.ErrCodeInvalidHandle, "cannot register completion for handle").
			WithContext("handle", h.String())
	}
	if fn == nil {
		return api.NewError(api.ErrCodeInvalidArgument, "nil completion callback")
	}
	p.callbacks = append(p.callbacks, callback{handle: h, fn: fn})
	return nil
}

// runCallbacks fires callbacks for Ready handles in registration order.
// Callbacks may start new calls; those are observed on a later tick.
func (p *Poller) runCallbacks() {
	if len(p.callbacks) == 0 {
		return
	}
	pending := p.callbacks
	p.callbacks = nil
	var keep []callback
	for _, cb := range pending {
		st, ok := p.table.State(cb.handle)
		switch {
		case !ok || st == slots.Released:
			// released by the host before completion was observed
		case st == slots.Ready:
			status, _ := p.table.Status(cb.handle)
			body, _ := p.table.Body(cb.handle)
			p.invoke(cb, status, body)
			p.table.Release(cb.handle)
		default:
			keep = append(keep, cb)
		}
	}
	p.callbacks = append(keep, p.callbacks...)
}

func (p *Poller) invoke(cb callback, status int, body []byte) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error("completion callback panicked",
				zap.Stringer("handle", cb.handle),
				zap.Any("panic", r))
		}
	}()
	p.callbacksRun++
	cb.fn(status, body)
}

// Reset drops every registered callback. Used at teardown.
func (p *Poller) Reset() {
	p.callbacks = nil
}

// Stats returns poller counters.
func (p *Poller) Stats() map[string]uint64 {
	return map[string]uint64{
		"completed":        p.completed,
		"transport_errors": p.transportErrors,
		"callbacks_run":    p.callbacksRun,
		"callbacks_queued": uint64(len(p.callbacks)),
	}
}
