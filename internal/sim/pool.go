package sim

import "sync"

// PropensityPool recycles propensity buffers between trajectories run by
// the same Simulator.
type PropensityPool struct {
	pool sync.Pool
	size int
}

func NewPropensityPool(size int) *PropensityPool {
	return &PropensityPool{
		size: size,
		pool: sync.Pool{
			New: func() interface{} {
				buf := make([]float64, size)
				return &buf
			},
		},
	}
}

func (p *PropensityPool) Get() []float64 {
	return *p.pool.Get().(*[]float64)
}

func (p *PropensityPool) Put(buf []float64) {
	if len(buf) == p.size {
		for i := range buf {
			buf[i] = 0
		}
		p.pool.Put(&buf)
	}
}
