// File: facade/config.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package facade

import (
	"time"

	"github.com/momentics/clientconnect/api"
)

// Config holds parameters immutable per run. Transport pacing can be changed
// at runtime through Control, which triggers the reload hook.
type Config struct {
	Workers           int           // HTTP transport worker goroutines
	QueueSize         int           // per-worker request queue capacity
	RequestsPerSecond float64       // outbound pacing; <= 0 disables the limit
	Burst             int           // pacing burst
	HTTPTimeout       time.Duration // per-request timeout; 0 means none
	BodyLimit         int64         // max response bytes kept per call
	InitialSlots      int           // call slots preallocated at init
	SocketNetwork     string        // shared socket network, "udp" or "udp4"
	SocketAddr        string        // shared socket bind address
	EnableMetrics     bool          // publish counters through Control on every tick
	EnableDebug       bool          // register slots and socket debug probes
}

// DefaultConfig returns default configuration values.
func DefaultConfig() *Config {
	return &Config{
		Workers:           4,
		QueueSize:         256,
		RequestsPerSecond: 0,
		Burst:             8,
		HTTPTimeout:       30 * time.Second,
		BodyLimit:         4 << 20,
		InitialSlots:      32,
		SocketNetwork:     "udp4",
		SocketAddr:        "0.0.0.0:0",
		EnableMetrics:     true,
		EnableDebug:       true,
	}
}

func (c *Config) validate() error {
	switch c.SocketNetwork {
	case "", "udp", "udp4":
	default:
		return api.NewError(api.ErrCodeInvalidArgument, "unsupported shared socket network").
			WithContext("network", c.SocketNetwork)
	}
	if c.InitialSlots < 0 {
		return api.NewError(api.ErrCodeInvalidArgument, "negative initial slot count").
			WithContext("initial_slots", c.InitialSlots)
	}
	return nil
}

// snapshot is the view of the configuration published through Control.
func (c *Config) snapshot() map[string]any {
	return map[string]any{
		keyWorkers:           c.Workers,
		keyQueueSize:         c.QueueSize,
		keyRequestsPerSecond: c.RequestsPerSecond,
		keyBurst:             c.Burst,
		keyHTTPTimeout:       c.HTTPTimeout.String(),
		keyBodyLimit:         c.BodyLimit,
		keySocketNetwork:     c.SocketNetwork,
		keySocketAddr:        c.SocketAddr,
	}
}

// Control configuration keys.
const (
	keyWorkers           = "transport.workers"
	keyQueueSize         = "transport.queue_size"
	keyRequestsPerSecond = "transport.requests_per_second"
	keyBurst             = "transport.burst"
	keyHTTPTimeout       = "transport.timeout"
	keyBodyLimit         = "transport.body_limit"
	keySocketNetwork     = "socket.network"
	keySocketAddr        = "socket.addr"
	keyHotpatches        = "hotpatch.count"
)
