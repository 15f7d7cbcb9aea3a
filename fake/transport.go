// Package fake
// Author: momentics <momentics@gmail.com>
//
// Fake implementations for testing and development.
// Provides predictable, controllable behavior for the collaborator interfaces.

package fake

import (
	"sync"

	"github.com/momentics/clientconnect/api"
)

// Operation is a manually completed api.Operation.
type Operation struct {
	mu    sync.Mutex
	req   api.Request
	resp  api.Response
	done  bool
	polls int
}

// Complete finishes the operation. Later calls are ignored.
func (o *Operation) Complete(status int, body []byte) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.done {
		return
	}
	o.resp = api.Response{StatusCode: status, Body: append([]byte(nil), body...)}
	o.done = true
}

// Poll implements api.Operation.
func (o *Operation) Poll() (api.Response, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.polls++
	if !o.done {
		return api.Response{}, false
	}
	return o.resp, true
}

// Polls returns how many times Poll was called.
func (o *Operation) Polls() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.polls
}

// Request returns the request that created the operation.
func (o *Operation) Request() api.Request {
	return o.req
}

// Transport is a fake implementation of api.Transport for testing.
type Transport struct {
	mu        sync.Mutex
	ops       []*Operation
	submitErr error
	closeErr  error
	closed    bool
	auto      *api.Response
}

// NewTransport creates a transport whose operations stay pending until
// completed by the test.
func NewTransport() *Transport {
	return &Transport{}
}

// RespondWith makes every later submission complete immediately with the
// given response.
func (t *Transport) RespondWith(status int, body string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.auto = &api.Response{StatusCode: status, Body: []byte(body)}
}

// SetSubmitError makes Submit fail with err.
func (t *Transport) SetSubmitError(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.submitErr = err
}

// SetCloseError makes Close return err.
func (t *Transport) SetCloseError(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closeErr = err
}

// Submit implements api.Transport.Submit.
func (t *Transport) Submit(req api.Request) (api.Operation, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil, api.ErrTransportClosed
	}
	if t.submitErr != nil {
		return nil, t.submitErr
	}
	op := &Operation{req: req}
	if t.auto != nil {
		op.Complete(t.auto.StatusCode, t.auto.Body)
	}
	t.ops = append(t.ops, op)
	return op, nil
}

// Close implements api.Transport.Close.
func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	return t.closeErr
}

// Closed reports whether Close was called.
func (t *Transport) Closed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}

// Operations returns the submitted operations in order.
func (t *Transport) Operations() []*Operation {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]*Operation, len(t.ops))
	copy(out, t.ops)
	return out
}

// Last returns the most recent operation, or nil.
func (t *Transport) Last() *Operation {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.ops) == 0 {
		return nil
	}
	return t.ops[len(t.ops)-1]
}
