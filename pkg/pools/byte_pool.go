// Package pools recycles the byte buffers records are decoded from.
// Routing table dumps hold millions of short records, so the reader
// borrows one buffer per record instead of allocating it.
package pools

import (
	"sync"
)

// Buffer size classes
const (
	SmallSize  = 1 << 10 // a prefix seen by a handful of peers
	MediumSize = 16 << 10
	LargeSize  = 256 << 10 // peer tables of large collectors
	MaxPool    = LargeSize // larger buffers are allocated directly
)

// BytePool provides size-class based pooling for byte slices
type BytePool struct {
	small  sync.Pool
	medium sync.Pool
	large  sync.Pool
}

func sizedPool(size int) sync.Pool {
	return sync.Pool{
		New: func() any {
			b := make([]byte, 0, size)
			return &b
		},
	}
}

// NewBytePool creates an empty byte pool
func NewBytePool() *BytePool {
	return &BytePool{
		small:  sizedPool(SmallSize),
		medium: sizedPool(MediumSize),
		large:  sizedPool(LargeSize),
	}
}

func (p *BytePool) class(size int) *sync.Pool {
	switch {
	case size <= SmallSize:
		return &p.small
	case size <= MediumSize:
		return &p.medium
	case size <= LargeSize:
		return &p.large
	default:
		return nil
	}
}

// Get returns a zero-length slice with at least the requested capacity
func (p *BytePool) Get(size int) []byte {
	pool := p.class(size)
	if pool == nil {
		return make([]byte, 0, size)
	}

	bp, ok := pool.Get().(*[]byte)
	if !ok || cap(*bp) < size {
		return make([]byte, 0, size)
	}
	return (*bp)[:0]
}

// GetSized returns a slice of exactly the requested length. Its contents
// are undefined.
func (p *BytePool) GetSized(size int) []byte {
	return p.Get(size)[:size]
}

// Put returns a slice to the pool. Slices larger than MaxPool are dropped,
// as are slices smaller than their class so Get can rely on capacity.
func (p *BytePool) Put(b []byte) {
	c := cap(b)
	if c > MaxPool {
		return
	}

	var pool *sync.Pool
	switch {
	case c >= LargeSize:
		pool = &p.large
	case c >= MediumSize:
		pool = &p.medium
	case c >= SmallSize:
		pool = &p.small
	default:
		return
	}

	b = b[:0]
	pool.Put(&b)
}

var defaultBytePool = NewBytePool()

// GetBytesSized returns a slice of exactly size bytes from the default pool
func GetBytesSized(size int) []byte {
	return defaultBytePool.GetSized(size)
}

// PutBytes returns a slice to the default pool
func PutBytes(b []byte) {
	defaultBytePool.Put(b)
}
