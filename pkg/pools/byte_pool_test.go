package pools

import (
	"sync"
	"testing"
)

func TestBytePool_Get(t *testing.T) {
	pool := NewBytePool()

	tests := []struct {
		name   string
		size   int
		minCap int
	}{
		{"empty", 0, 0},
		{"small", 100, 100},
		{"small_exact", SmallSize, SmallSize},
		{"medium", SmallSize + 1, SmallSize + 1},
		{"medium_exact", MediumSize, MediumSize},
		{"large", MediumSize + 1, MediumSize + 1},
		{"large_exact", LargeSize, LargeSize},
		{"oversized", LargeSize + 1, LargeSize + 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := pool.Get(tt.size)
			if len(b) != 0 {
				t.Errorf("Get(%d) length = %d, want 0", tt.size, len(b))
			}
			if cap(b) < tt.minCap {
				t.Errorf("Get(%d) capacity = %d, want >= %d", tt.size, cap(b), tt.minCap)
			}
		})
	}
}

func TestBytePool_GetSized(t *testing.T) {
	pool := NewBytePool()

	b := pool.GetSized(300)
	if len(b) != 300 {
		t.Errorf("GetSized(300) length = %d, want 300", len(b))
	}
}

// TestBytePool_PutKeepsCapacityInvariant returns undersized buffers and
// checks Get never hands out less than asked for
func TestBytePool_PutKeepsCapacityInvariant(t *testing.T) {
	pool := NewBytePool()

	for i := 0; i < 20; i++ {
		pool.Put(make([]byte, 10))
		pool.Put(make([]byte, SmallSize+10))
		pool.Put(make([]byte, MediumSize+10))
	}

	for _, size := range []int{SmallSize, MediumSize, LargeSize} {
		if b := pool.Get(size); cap(b) < size {
			t.Errorf("Get(%d) capacity = %d", size, cap(b))
		}
	}
}

func TestBytePool_PutAndReuse(t *testing.T) {
	pool := NewBytePool()

	for i := 0; i < 10; i++ {
		b := pool.GetSized(512)
		copy(b, "record body")
		pool.Put(b)
	}

	if b := pool.Get(512); len(b) != 0 {
		t.Errorf("After Put, Get returned slice with length %d, want 0", len(b))
	}
}

func TestBytePool_OversizedNotPooled(t *testing.T) {
	pool := NewBytePool()
	pool.Put(make([]byte, MaxPool+1000))
}

func TestDefaultBytePool(t *testing.T) {
	b := GetBytesSized(2000)
	if len(b) != 2000 {
		t.Fatalf("GetBytesSized(2000) length = %d", len(b))
	}
	PutBytes(b)
}

func TestBytePool_Concurrent(t *testing.T) {
	pool := NewBytePool()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				size := (n*997 + j*131) % (2 * MediumSize)
				b := pool.GetSized(size)
				if len(b) != size {
					t.Errorf("GetSized(%d) length = %d", size, len(b))
					return
				}
				pool.Put(b)
			}
		}(i)
	}
	wg.Wait()
}

func BenchmarkBytePool_GetPut(b *testing.B) {
	pool := NewBytePool()
	for i := 0; i < b.N; i++ {
		buf := pool.GetSized(900)
		pool.Put(buf)
	}
}
