package pool_test

import (
	"testing"

	"github.com/momentics/clientconnect/pool"
)

func TestBytePoolAcquireLength(t *testing.T) {
	bp := pool.NewBytePool(64, 1024)
	for _, n := range []int{0, 1, 63, 64, 65, 1000, 1024} {
		buf := bp.Acquire(n)
		if len(buf) != n {
			t.Fatalf("Acquire(%d) returned len %d", n, len(buf))
		}
		if cap(buf) < n {
			t.Fatalf("Acquire(%d) returned cap %d", n, cap(buf))
		}
		bp.Release(buf)
	}
}

func TestBytePoolOversize(t *testing.T) {
	bp := pool.NewBytePool(64, 128)
	buf := bp.Acquire(4096)
	if len(buf) != 4096 {
		t.Fatalf("unexpected len %d", len(buf))
	}
	bp.Release(buf)
	stats := bp.Stats()
	if stats["oversize"] != 1 {
		t.Errorf("expected one oversize allocation, got %d", stats["oversize"])
	}
	if stats["in_use"] != 0 {
		t.Errorf("expected nothing in use, got %d", stats["in_use"])
	}
}

func TestBytePoolReleaseForeignBuffer(t *testing.T) {
	bp := pool.NewBytePool(64, 128)
	bp.Release(make([]byte, 3))
	bp.Release(nil)
	if got := bp.Acquire(10); len(got) != 10 {
		t.Fatalf("pool unusable after foreign release")
	}
}
