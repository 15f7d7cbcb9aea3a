// File: api/pool.go
// Author: momentics <momentics@gmail.com>
//
// Defines abstract pooling APIs for call result buffers.

package api

// BytePool provides reusable []byte buffers for call results.
type BytePool interface {
	// Acquire returns a slice of length n.
	Acquire(n int) []byte

	// Release returns a buffer to the pool. The buffer must not be used afterwards.
	Release(buf []byte)
}
