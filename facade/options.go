// File: facade/options.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package facade

import (
	"context"

	"go.uber.org/zap"

	"github.com/momentics/clientconnect/api"
)

// Option customizes New.
type Option func(*options)

type source struct {
	ctx context.Context
	src api.DefinitionSource
}

type options struct {
	transport api.Transport
	factory   api.SocketFactory
	pool      api.BytePool
	defs      []api.Definition
	sources   []source
	logger    *zap.Logger
}

// WithTransport replaces the default HTTP transport. The facade takes
// ownership and closes it on Shutdown.
func WithTransport(t api.Transport) Option {
	return func(o *options) { o.transport = t }
}

// WithSocketFactory replaces the default OS socket factory.
func WithSocketFactory(f api.SocketFactory) Option {
	return func(o *options) { o.factory = f }
}

// WithBytePool sets the pool result bodies are copied into.
func WithBytePool(p api.BytePool) Option {
	return func(o *options) { o.pool = p }
}

// WithDefinitions registers hotpatch definitions directly.
func WithDefinitions(defs ...api.Definition) Option {
	return func(o *options) { o.defs = append(o.defs, defs...) }
}

// WithSource loads hotpatch definitions from src during New.
func WithSource(ctx context.Context, src api.DefinitionSource) Option {
	return func(o *options) { o.sources = append(o.sources, source{ctx: ctx, src: src}) }
}

// WithLogger sets the logger used by the facade and its components.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}
