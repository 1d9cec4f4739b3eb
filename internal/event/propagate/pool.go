package propagate

import (
	"sync"
	"sync/atomic"

	"github.com/dshills/taptrack/internal/input/gesture"
)

// Pool recycles gesture descriptors. It satisfies gesture.Allocator.
type Pool struct {
	p sync.Pool

	gets atomic.Uint64
	puts atomic.Uint64
}

// NewPool creates an empty pool.
func NewPool() *Pool {
	pool := &Pool{}
	pool.p.New = func() any { return &gesture.Descriptor{} }
	return pool
}

// Get returns a cleared descriptor.
func (p *Pool) Get() *gesture.Descriptor {
	p.gets.Add(1)
	return p.p.Get().(*gesture.Descriptor)
}

// Put clears d and returns it to the pool.
func (p *Pool) Put(d *gesture.Descriptor) {
	if d == nil {
		return
	}
	d.Reset()
	p.puts.Add(1)
	p.p.Put(d)
}

// Outstanding returns how many descriptors have been taken and not returned.
func (p *Pool) Outstanding() int64 {
	return int64(p.gets.Load()) - int64(p.puts.Load())
}
