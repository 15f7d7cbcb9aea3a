// File: internal/dispatch/dispatcher.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Call dispatcher: validates a hotpatch, resolves call-site overrides and
// submits the request to the transport.

package dispatch

import (
	"go.uber.org/zap"

	"github.com/momentics/clientconnect/api"
	"github.com/momentics/clientconnect/internal/hotpatch"
	"github.com/momentics/clientconnect/internal/slots"
)

// Dispatcher starts hotpatch calls. It is not safe for concurrent use.
type Dispatcher struct {
	registry  *hotpatch.Registry
	table     *slots.Table
	transport api.Transport
	log       *zap.Logger

	submitted      uint64
	submitFailures uint64
	notHotpatched  uint64
}

// NewDispatcher wires a dispatcher over the registry, slot table and transport.
func NewDispatcher(registry *hotpatch.Registry, table *slots.Table, transport api.Transport, log *zap.Logger) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{registry: registry, table: table, transport: transport, log: log}
}

// Call submits a hotpatched call and returns its handle immediately. Empty
// overrides fall back to the registered definition. A call for an api that
// is not hotpatched fails with api.ErrNotHotpatched and allocates nothing.
// Transport submission failures are not returned: the call completes on the
// next tick with api.StatusTransportError.
func (d *Dispatcher) Call(namespace, apiName, endpointOverride, apiKeyOverride, payload string) (api.Handle, error) {
	def, ok := d.registry.Lookup(namespace, apiName)
	if !ok {
		d.notHotpatched++
		return api.InvalidHandle, api.NewError(api.ErrCodeNotHotpatched, "api is not hotpatched").
			WithContext("namespace", namespace).
			WithContext("api", apiName)
	}

	req := hotpatch.Resolve(def, hotpatch.Overrides{
		Endpoint: endpointOverride,
		APIKey:   apiKeyOverride,
		Payload:  payload,
	})

	var op api.Operation
	var err error
	if d.transport == nil {
		err = api.ErrTransportClosed
	} else {
		op, err = d.transport.Submit(req)
		if err == nil && op == nil {
			err = api.NewError(api.ErrCodeInternal, "transport returned no operation")
		}
	}
	if err != nil {
		d.submitFailures++
		d.log.Warn("hotpatch call submission failed",
			zap.String("namespace", namespace),
			zap.String("api", apiName),
			zap.Error(err))
		op = completed(api.TransportErrorResponse(err))
	}

	h := d.table.Allocate(op)
	d.submitted++
	d.log.Debug("hotpatch call submitted",
		zap.String("namespace", namespace),
		zap.String("api", apiName),
		zap.String("method", req.Method),
		zap.Stringer("handle", h))
	return h, nil
}

// Stats returns dispatcher counters.
func (d *Dispatcher) Stats() map[string]uint64 {
	return map[string]uint64{
		"submitted":       d.submitted,
		"submit_failures": d.submitFailures,
		"not_hotpatched":  d.notHotpatched,
	}
}

// completed is an operation that finished before it was submitted.
type completed api.Response

func (c completed) Poll() (api.Response, bool) { return api.Response(c), true }
