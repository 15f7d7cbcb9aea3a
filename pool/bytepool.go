// File: pool/bytepool.go
// Author: momentics <momentics@gmail.com>

package pool

import (
	"math/bits"
	"sync/atomic"

	"github.com/momentics/clientconnect/api"
)

const (
	// DefaultMinClass is the smallest pooled buffer size.
	DefaultMinClass = 512
	// DefaultMaxClass is the largest pooled buffer size. Larger requests are
	// allocated directly and left to the GC on release.
	DefaultMaxClass = 1 << 20
)

// BytePool hands out power-of-two sized buffers backed by one sync.Pool per
// size class.
type BytePool struct {
	minShift int
	classes  []*SyncPool[*[]byte]

	acquired atomic.Int64
	released atomic.Int64
	oversize atomic.Int64
}

var _ api.BytePool = (*BytePool)(nil)

// NewBytePool creates a pool with classes from minSize up to maxSize, both
// rounded up to powers of two.
func NewBytePool(minSize, maxSize int) *BytePool {
	if minSize <= 0 {
		minSize = DefaultMinClass
	}
	if maxSize < minSize {
		maxSize = minSize
	}
	minShift := shiftFor(minSize)
	maxShift := shiftFor(maxSize)
	bp := &BytePool{minShift: minShift}
	for s := minShift; s <= maxShift; s++ {
		size := 1 << s
		bp.classes = append(bp.classes, NewSyncPool(func() *[]byte {
			buf := make([]byte, size)
			return &buf
		}))
	}
	return bp
}

// Default returns a pool with the default size classes.
func Default() *BytePool {
	return NewBytePool(DefaultMinClass, DefaultMaxClass)
}

// Acquire returns a slice of length n.
func (b *BytePool) Acquire(n int) []byte {
	if n < 0 {
		n = 0
	}
	b.acquired.Add(1)
	idx := b.classIndex(n)
	if idx < 0 {
		b.oversize.Add(1)
		return make([]byte, n)
	}
	buf := b.classes[idx].Get()
	return (*buf)[:n]
}

// Release returns buf to its size class. Buffers that did not come from the
// pool are dropped.
func (b *BytePool) Release(buf []byte) {
	if buf == nil {
		return
	}
	b.released.Add(1)
	c := cap(buf)
	if c == 0 || c&(c-1) != 0 {
		return
	}
	idx := shiftFor(c) - b.minShift
	if idx < 0 || idx >= len(b.classes) {
		return
	}
	buf = buf[:c]
	b.classes[idx].Put(&buf)
}

// Stats reports allocation counters.
func (b *BytePool) Stats() map[string]int64 {
	acquired := b.acquired.Load()
	released := b.released.Load()
	return map[string]int64{
		"acquired": acquired,
		"released": released,
		"in_use":   acquired - released,
		"oversize": b.oversize.Load(),
	}
}

func (b *BytePool) classIndex(n int) int {
	idx := shiftFor(n) - b.minShift
	if idx < 0 {
		idx = 0
	}
	if idx >= len(b.classes) {
		return -1
	}
	return idx
}

// shiftFor returns the smallest s with 1<<s >= n.
func shiftFor(n int) int {
	if n <= 1 {
		return 0
	}
	return bits.Len(uint(n - 1))
}
