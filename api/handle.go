// File: api/handle.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Opaque, generation-checked identifier for asynchronous hotpatch calls.

package api

import "fmt"

// Handle references an in-flight or completed call. The low 32 bits hold the
// slot index and the high 32 bits the slot generation. Generations start at 1,
// so the zero Handle is never issued and is always invalid.
type Handle uint64

// InvalidHandle is the zero handle.
const InvalidHandle Handle = 0

// NewHandle packs a slot index and generation.
func NewHandle(index, generation uint32) Handle {
	return Handle(uint64(generation)<<32 | uint64(index))
}

// Index returns the slot index.
func (h Handle) Index() uint32 { return uint32(h) }

// Generation returns the slot generation the handle was issued for.
func (h Handle) Generation() uint32 { return uint32(h >> 32) }

// Valid reports whether h could have been issued. It says nothing about
// whether the call it names is still live.
func (h Handle) Valid() bool { return h.Generation() != 0 }

func (h Handle) String() string {
	return fmt.Sprintf("%d@%d", h.Index(), h.Generation())
}
