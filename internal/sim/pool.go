package sim

import (
	"sync"

	"gonum.org/v1/gonum/spatial/r3"
)

// ForcePool recycles the per-frame force buffers of snapshot updates.
type ForcePool struct {
	pool sync.Pool
}

func NewForcePool() *ForcePool {
	return &ForcePool{}
}

// Get returns a zeroed buffer of length n.
func (p *ForcePool) Get(n int) []r3.Vec {
	if v, ok := p.pool.Get().(*[]r3.Vec); ok && cap(*v) >= n {
		buf := (*v)[:n]
		clear(buf)
		return buf
	}
	return make([]r3.Vec, n)
}

func (p *ForcePool) Put(buf []r3.Vec) {
	if cap(buf) == 0 {
		return
	}
	p.pool.Put(&buf)
}
