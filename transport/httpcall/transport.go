package httpcall

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/momentics/clientconnect/api"
	"github.com/momentics/clientconnect/internal/concurrency"
)

const (
	HeaderAPIKey    = "X-API-Key"
	HeaderRequestID = "X-Request-ID"
)

// Config controls the transport. Zero values pick the defaults.
type Config struct {
	Workers           int           // worker goroutines performing requests
	QueueSize         int           // per-worker queue capacity
	RequestsPerSecond float64       // outbound pacing; <= 0 disables the limit
	Burst             int           // limiter burst
	Timeout           time.Duration // http.Client timeout; 0 means none
	BodyLimit         int64         // max response bytes accepted; <= 0 means 4 MiB
	Client            *http.Client  // optional preconfigured client
	Logger            *zap.Logger   // nil falls back to the package Logger()
}

// DefaultConfig returns the transport defaults.
func DefaultConfig() Config {
	return Config{
		Workers:           4,
		QueueSize:         256,
		RequestsPerSecond: 0,
		Burst:             8,
		BodyLimit:         4 << 20,
	}
}

// Transport performs hotpatch calls over HTTP.
type Transport struct {
	client    *http.Client
	exec      *concurrency.Executor
	limiter   *rate.Limiter
	bodyLimit int64
	log       *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	closed bool
}

var _ api.Transport = (*Transport)(nil)

// New creates a transport and starts its workers.
func New(cfg Config) *Transport {
	def := DefaultConfig()
	if cfg.Workers <= 0 {
		cfg.Workers = def.Workers
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = def.QueueSize
	}
	if cfg.Burst <= 0 {
		cfg.Burst = def.Burst
	}
	if cfg.BodyLimit <= 0 {
		cfg.BodyLimit = def.BodyLimit
	}
	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	log := cfg.Logger
	if log == nil {
		log = Logger()
	}
	ctx, cancel := context.WithCancel(context.Background())
	t := &Transport{
		log:       log,
		client:    client,
		limiter:   rate.NewLimiter(limitFor(cfg.RequestsPerSecond), cfg.Burst),
		bodyLimit: cfg.BodyLimit,
		ctx:       ctx,
		cancel:    cancel,
	}
	t.exec = concurrency.NewExecutor(cfg.Workers, cfg.QueueSize, func(r any) {
		log.Error("transport worker recovered from panic", zap.Any("panic", r))
	})
	return t
}

func limitFor(rps float64) rate.Limit {
	if rps <= 0 {
		return rate.Inf
	}
	return rate.Limit(rps)
}

// SetRate changes outbound pacing at runtime. rps <= 0 removes the limit.
func (t *Transport) SetRate(rps float64, burst int) {
	t.limiter.SetLimit(limitFor(rps))
	if burst > 0 {
		t.limiter.SetBurst(burst)
	}
}

// Submit queues req and returns immediately.
func (t *Transport) Submit(req api.Request) (api.Operation, error) {
	t.mu.Lock()
	closed := t.closed
	t.mu.Unlock()
	if closed {
		return nil, api.ErrTransportClosed
	}
	if req.Endpoint == "" {
		return nil, api.NewError(api.ErrCodeInvalidArgument, "hotpatch call has no endpoint").
			WithContext("namespace", req.Namespace).
			WithContext("api", req.APIName)
	}

	op := &operation{id: uuid.NewString()}
	if err := t.exec.Submit(func() { op.finish(t.do(req, op.id)) }); err != nil {
		return nil, fmt.Errorf("submit %s/%s: %w", req.Namespace, req.APIName, err)
	}
	return op, nil
}

// do runs on a worker goroutine.
func (t *Transport) do(req api.Request, id string) api.Response {
	log := t.log.With(
		zap.String("namespace", req.Namespace),
		zap.String("api", req.APIName),
		zap.String("request_id", id),
	)
	if err := t.limiter.Wait(t.ctx); err != nil {
		log.Debug("hotpatch call aborted before send", zap.Error(err))
		return api.TransportErrorResponse(err)
	}

	method := req.Method
	if method == "" {
		method = http.MethodPost
	}
	httpReq, err := http.NewRequestWithContext(t.ctx, method, req.Endpoint, bytes.NewBufferString(req.Payload))
	if err != nil {
		log.Warn("invalid hotpatch request", zap.Error(err))
		return api.TransportErrorResponse(err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set(HeaderRequestID, id)
	if req.APIKey != "" {
		httpReq.Header.Set(HeaderAPIKey, req.APIKey)
	}

	start := time.Now()
	resp, err := t.client.Do(httpReq)
	if err != nil {
		log.Warn("hotpatch call failed", zap.Error(err))
		return api.TransportErrorResponse(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, t.bodyLimit+1))
	if err != nil {
		log.Warn("reading hotpatch response failed", zap.Error(err))
		return api.TransportErrorResponse(err)
	}
	if int64(len(body)) > t.bodyLimit {
		err := fmt.Errorf("response body exceeds %d bytes: %w", t.bodyLimit, api.ErrResourceExhausted)
		log.Warn("hotpatch response rejected", zap.Int("status", resp.StatusCode), zap.Error(err))
		return api.TransportErrorResponse(err)
	}
	log.Debug("hotpatch call completed",
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(body)),
		zap.Duration("elapsed", time.Since(start)))
	return api.Response{StatusCode: resp.StatusCode, Body: body}
}

// Stats exposes worker pool counters.
func (t *Transport) Stats() map[string]int64 {
	return t.exec.Stats()
}

// Close cancels in-flight requests and stops the workers. Operations that
// had not finished stay incomplete.
func (t *Transport) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	t.mu.Unlock()

	t.cancel()
	t.exec.Close()
	return nil
}
