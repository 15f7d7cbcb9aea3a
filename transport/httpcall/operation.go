package httpcall

import (
	"sync/atomic"

	"github.com/momentics/clientconnect/api"
)

// operation is completed once by a worker and polled by the host.
type operation struct {
	id   string
	resp api.Response
	done atomic.Bool
}

var _ api.Operation = (*operation)(nil)

// finish publishes resp. The atomic store orders the write of resp before
// any Poll that observes done.
func (o *operation) finish(resp api.Response) {
	if o.done.Load() {
		return
	}
	o.resp = resp
	o.done.Store(true)
}

func (o *operation) Poll() (api.Response, bool) {
	if !o.done.Load() {
		return api.Response{}, false
	}
	return o.resp, true
}

// ID returns the request id sent as X-Request-ID.
func (o *operation) ID() string { return o.id }
