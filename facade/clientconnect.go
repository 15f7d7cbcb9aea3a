// File: facade/clientconnect.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// ClientConnect aggregates the hotpatch registry, call slots, dispatcher,
// completion poller and shared socket arbitrator behind one owning object.
// It is driven from a single goroutine: the host calls Tick once per frame
// and every other method between ticks.

package facade

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/momentics/clientconnect/adapters"
	"github.com/momentics/clientconnect/api"
	"github.com/momentics/clientconnect/internal/arbiter"
	"github.com/momentics/clientconnect/internal/dispatch"
	"github.com/momentics/clientconnect/internal/hotpatch"
	"github.com/momentics/clientconnect/internal/ossocket"
	"github.com/momentics/clientconnect/internal/slots"
	"github.com/momentics/clientconnect/pool"
	"github.com/momentics/clientconnect/transport/httpcall"
)

// ClientConnect is the main facade type. It is not safe for concurrent use.
type ClientConnect struct {
	registry   *hotpatch.Registry
	table      *slots.Table
	dispatcher *dispatch.Dispatcher
	poller     *dispatch.Poller
	arbiter    *arbiter.Arbiter
	transport  api.Transport
	control    *adapters.ControlAdapter
	log        *zap.Logger

	config *Config
	closed bool
}

var _ api.GracefulShutdown = (*ClientConnect)(nil)

// rateSetter is implemented by transports whose pacing can change at runtime.
type rateSetter interface {
	SetRate(rps float64, burst int)
}

// New builds a ClientConnect. Definitions passed with WithDefinitions and
// loaded from every WithSource are merged; a duplicate is an error.
func New(cfg *Config, opts ...Option) (*ClientConnect, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	log := o.logger
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("clientconnect")

	defs := append([]api.Definition(nil), o.defs...)
	for _, s := range o.sources {
		ctx := s.ctx
		if ctx == nil {
			ctx = context.Background()
		}
		loaded, err := s.src.Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("load hotpatch definitions: %w", err)
		}
		defs = append(defs, loaded...)
	}
	registry, err := hotpatch.New(defs...)
	if err != nil {
		return nil, fmt.Errorf("hotpatch registry init failure: %w", err)
	}

	tr := o.transport
	if tr == nil {
		tr = httpcall.New(httpcall.Config{
			Workers:           cfg.Workers,
			QueueSize:         cfg.QueueSize,
			RequestsPerSecond: cfg.RequestsPerSecond,
			Burst:             cfg.Burst,
			Timeout:           cfg.HTTPTimeout,
			BodyLimit:         cfg.BodyLimit,
			Logger:            log.Named("httpcall"),
		})
	}
	factory := o.factory
	if factory == nil {
		factory = ossocket.NewNetworkFactory(cfg.SocketNetwork, cfg.SocketAddr)
	}
	bp := o.pool
	if bp == nil {
		bp = pool.Default()
	}

	c := &ClientConnect{
		registry:  registry,
		table:     slots.New(bp, cfg.InitialSlots),
		arbiter:   arbiter.New(factory, log.Named("socket")),
		transport: tr,
		control:   adapters.NewControlAdapter(),
		log:       log,
		config:    cfg,
	}
	c.dispatcher = dispatch.NewDispatcher(registry, c.table, tr, log.Named("dispatch"))
	c.poller = dispatch.NewPoller(c.table, log.Named("poller"))

	snap := cfg.snapshot()
	snap[keyHotpatches] = registry.Len()
	c.control.Seed(snap)
	c.control.OnReload(c.reload)
	if cfg.EnableDebug {
		c.control.RegisterDebugProbe("slots", func() any { return c.table.Stats() })
		c.control.RegisterDebugProbe("socket", func() any { return c.arbiter.Stats() })
		c.control.RegisterDebugProbe("hotpatches", func() any { return c.registry.Definitions() })
	}
	c.publishMetrics()

	log.Info("client connect initialized",
		zap.Int("hotpatches", registry.Len()),
		zap.Int("initial_slots", cfg.InitialSlots))
	return c, nil
}

// reload applies transport pacing changes published through Control.
func (c *ClientConnect) reload() {
	rs, ok := c.transport.(rateSetter)
	if !ok {
		return
	}
	cfg := c.control.GetConfig()
	rps, ok := toFloat(cfg[keyRequestsPerSecond])
	if !ok {
		return
	}
	burst, _ := toFloat(cfg[keyBurst])
	rs.SetRate(rps, int(burst))
	c.log.Info("transport pacing updated",
		zap.Float64("requests_per_second", rps),
		zap.Int("burst", int(burst)))
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

// Control exposes runtime configuration, metrics and debug probes.
func (c *ClientConnect) Control() api.Control {
	return c.control
}

// IsHotpatched reports whether namespace/apiName has a registered definition.
func (c *ClientConnect) IsHotpatched(namespace, apiName string) bool {
	if c.closed {
		return false
	}
	return c.registry.IsHotpatched(namespace, apiName)
}

// Call starts a hotpatched call and returns its handle without waiting.
// Empty overrides fall back to the definition. It fails with
// api.ErrNotHotpatched for unknown apis and api.ErrClosed after Shutdown.
func (c *ClientConnect) Call(namespace, apiName, endpointOverride, apiKeyOverride, payload string) (api.Handle, error) {
	if c.closed {
		return api.InvalidHandle, api.ErrClosed
	}
	return c.dispatcher.Call(namespace, apiName, endpointOverride, apiKeyOverride, payload)
}

// Tick publishes finished calls and runs completion callbacks. It returns
// true while the runtime wants to keep being ticked.
func (c *ClientConnect) Tick() bool {
	if c.closed {
		return false
	}
	c.poller.Poll()
	c.publishMetrics()
	return true
}

// IsCallReady reports whether h has completed and was published by a tick.
// Released, stale and unknown handles report false.
func (c *ClientConnect) IsCallReady(h api.Handle) bool {
	if c.closed {
		return false
	}
	return c.table.Ready(h)
}

// StatusCode returns the HTTP status of a ready call, or
// api.StatusTransportError when the transport failed.
func (c *ClientConnect) StatusCode(h api.Handle) (int, error) {
	if c.closed {
		return 0, api.ErrClosed
	}
	return c.table.Status(h)
}

// Result returns the response body of a ready call. The slice stays valid
// until the call is released.
func (c *ClientConnect) Result(h api.Handle) ([]byte, error) {
	if c.closed {
		return nil, api.ErrClosed
	}
	return c.table.Body(h)
}

// ReleaseResult frees a ready call. Releasing a pending, released, stale or
// unknown handle does nothing.
func (c *ClientConnect) ReleaseResult(h api.Handle) {
	if c.closed {
		return
	}
	if c.table.Release(h) {
		c.log.Debug("hotpatch call released", zap.Stringer("handle", h))
	}
}

// OnComplete runs fn once h becomes ready, then releases the call.
func (c *ClientConnect) OnComplete(h api.Handle, fn api.CompletionFunc) error {
	if c.closed {
		return api.ErrClosed
	}
	return c.poller.OnComplete(h, fn)
}

// SharedSocket returns the shared networking socket, creating it on first use.
func (c *ClientConnect) SharedSocket() (api.Socket, error) {
	if c.closed {
		return nil, api.ErrClosed
	}
	return c.arbiter.Shared()
}

// CanTakeExclusiveSocket reports whether the exclusive lease is free.
func (c *ClientConnect) CanTakeExclusiveSocket() bool {
	if c.closed {
		return false
	}
	return c.arbiter.CanTakeExclusive()
}

// TakeExclusiveSocket grants the exclusive lease on the shared socket.
func (c *ClientConnect) TakeExclusiveSocket() (api.Socket, error) {
	if c.closed {
		return nil, api.ErrClosed
	}
	return c.arbiter.TakeExclusive()
}

// ReleaseExclusiveSocket ends the lease and destroys the socket.
func (c *ClientConnect) ReleaseExclusiveSocket() {
	if c.closed {
		return
	}
	c.arbiter.ReleaseExclusive()
}

func (c *ClientConnect) publishMetrics() {
	if !c.config.EnableMetrics {
		return
	}
	ts := c.table.Stats()
	ps := c.poller.Stats()
	ds := c.dispatcher.Stats()
	as := c.arbiter.Stats()
	c.control.SetMetric("calls.submitted", ds["submitted"])
	c.control.SetMetric("calls.completed", ps["completed"])
	c.control.SetMetric("calls.released", ts.Released)
	c.control.SetMetric("calls.transport_errors", ps["transport_errors"])
	c.control.SetMetric("calls.pending", ts.Pending)
	c.control.SetMetric("slots.capacity", ts.Capacity)
	c.control.SetMetric("socket.created", as["created"])
	c.control.SetMetric("socket.destroyed", as["destroyed"])
}

// Shutdown drops every outstanding call, destroys the shared socket and
// closes the transport. Every handle is invalid afterwards. Calling it
// again does nothing.
func (c *ClientConnect) Shutdown() error {
	if c.closed {
		return nil
	}
	c.closed = true
	c.poller.Reset()
	dropped := c.table.Drain()
	c.arbiter.Close()
	var err error
	if c.transport != nil {
		if cerr := c.transport.Close(); cerr != nil && !errors.Is(cerr, api.ErrTransportClosed) {
			err = fmt.Errorf("close transport: %w", cerr)
		}
	}
	c.publishMetrics()
	c.log.Info("client connect shut down", zap.Int("dropped_calls", dropped))
	return err
}
