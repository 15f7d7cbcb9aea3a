// File: internal/slots/table.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Generation-checked arena of asynchronous call slots.

package slots

import (
	"github.com/eapache/queue"

	"github.com/momentics/clientconnect/api"
)

// State is the lifecycle state of a call slot.
type State uint8

const (
	Pending State = iota + 1
	Ready
	Released
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Ready:
		return "ready"
	case Released:
		return "released"
	default:
		return "unknown"
	}
}

type slot struct {
	gen    uint32
	state  State
	status int
	body   []byte
	op     api.Operation
}

// Table owns every call slot. A slot moves Pending -> Ready -> Released and
// is only reused, with a bumped generation, after it was released.
//
// Table is not safe for concurrent use.
type Table struct {
	slots []slot
	free  *queue.Queue // released slot indexes, reused oldest first
	pool  api.BytePool

	allocated uint64
	completed uint64
	released  uint64
}

// Stats is a point-in-time view of the table.
type Stats struct {
	Capacity  int
	Pending   int
	Ready     int
	Free      int
	Allocated uint64
	Completed uint64
	Released  uint64
}

// New creates an empty table. Result bodies are copied into buffers from
// pool; a nil pool allocates plain slices.
func New(pool api.BytePool, initialCapacity int) *Table {
	if initialCapacity < 0 {
		initialCapacity = 0
	}
	return &Table{
		slots: make([]slot, 0, initialCapacity),
		free:  queue.New(),
		pool:  pool,
	}
}

// Allocate stores op in a fresh Pending slot and returns its handle.
func (t *Table) Allocate(op api.Operation) api.Handle {
	t.allocated++
	if t.free.Length() > 0 {
		idx := t.free.Remove().(uint32)
		s := &t.slots[idx]
		s.gen++
		if s.gen == 0 {
			s.gen = 1
		}
		s.state = Pending
		s.status = 0
		s.body = nil
		s.op = op
		return api.NewHandle(idx, s.gen)
	}
	idx := uint32(len(t.slots))
	t.slots = append(t.slots, slot{gen: 1, state: Pending, op: op})
	return api.NewHandle(idx, 1)
}

// lookup returns the slot for h, or nil when h is unknown or stale.
func (t *Table) lookup(h api.Handle) *slot {
	if !h.Valid() {
		return nil
	}
	idx := h.Index()
	if int(idx) >= len(t.slots) {
		return nil
	}
	s := &t.slots[idx]
	if s.gen != h.Generation() {
		return nil
	}
	return s
}

// State returns the state of the call named by h.
func (t *Table) State(h api.Handle) (State, bool) {
	s := t.lookup(h)
	if s == nil {
		return 0, false
	}
	return s.state, true
}

// Ready reports whether h names a completed, unreleased call.
func (t *Table) Ready(h api.Handle) bool {
	s := t.lookup(h)
	return s != nil && s.state == Ready
}

// Complete publishes a response into a Pending slot. The body is copied, so
// the caller keeps ownership of resp.Body. Returns false if h is not Pending.
func (t *Table) Complete(h api.Handle, resp api.Response) bool {
	s := t.lookup(h)
	if s == nil || s.state != Pending {
		return false
	}
	s.status = resp.StatusCode
	s.body = t.copyBody(resp.Body)
	s.op = nil
	s.state = Ready
	t.completed++
	return true
}

func (t *Table) copyBody(src []byte) []byte {
	var dst []byte
	if t.pool != nil {
		dst = t.pool.Acquire(len(src))
	} else {
		dst = make([]byte, len(src))
	}
	copy(dst, src)
	return dst
}

func (t *Table) check(h api.Handle) (*slot, error) {
	s := t.lookup(h)
	if s == nil || s.state == Released {
		return nil, api.NewError(api.ErrCodeInvalidHandle, "invalid call handle").WithContext("handle", h.String())
	}
	if s.state != Ready {
		return nil, api.NewError(api.ErrCodeNotReady, "call result is not ready").
			WithContext("handle", h.String()).
			WithContext("state", s.state.String())
	}
	return s, nil
}

// Status returns the status code of a Ready call.
func (t *Table) Status(h api.Handle) (int, error) {
	s, err := t.check(h)
	if err != nil {
		return 0, err
	}
	return s.status, nil
}

// Body returns the result body of a Ready call. The slice is owned by the
// table and valid until the call is released.
func (t *Table) Body(h api.Handle) ([]byte, error) {
	s, err := t.check(h)
	if err != nil {
		return nil, err
	}
	return s.body, nil
}

// Release moves a Ready call to Released and frees its body. Releasing an
// unknown, stale, Pending or already released handle does nothing. Reports
// whether a transition happened.
func (t *Table) Release(h api.Handle) bool {
	s := t.lookup(h)
	if s == nil || s.state != Ready {
		return false
	}
	t.reset(s)
	t.free.Add(h.Index())
	t.released++
	return true
}

func (t *Table) reset(s *slot) {
	if t.pool != nil && s.body != nil {
		t.pool.Release(s.body)
	}
	s.body = nil
	s.status = 0
	s.op = nil
	s.state = Released
}

// EachPending calls fn for every Pending slot in index order. fn must not
// allocate or release slots.
func (t *Table) EachPending(fn func(h api.Handle, op api.Operation)) {
	for i := range t.slots {
		s := &t.slots[i]
		if s.state == Pending {
			fn(api.NewHandle(uint32(i), s.gen), s.op)
		}
	}
}

// Drain abandons Pending calls and releases Ready ones. It is used at
// teardown; every outstanding handle is invalid afterwards.
func (t *Table) Drain() int {
	n := 0
	for i := range t.slots {
		s := &t.slots[i]
		if s.state == Released {
			continue
		}
		t.reset(s)
		t.free.Add(uint32(i))
		n++
	}
	return n
}

// Stats returns counters for debug probes and metrics.
func (t *Table) Stats() Stats {
	st := Stats{
		Capacity:  len(t.slots),
		Free:      t.free.Length(),
		Allocated: t.allocated,
		Completed: t.completed,
		Released:  t.released,
	}
	for i := range t.slots {
		switch t.slots[i].state {
		case Pending:
			st.Pending++
		case Ready:
			st.Ready++
		}
	}
	return st
}
