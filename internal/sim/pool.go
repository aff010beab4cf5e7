package sim

import "sync"

// resultPool recycles the per-hillslope day buffers.
type resultPool struct {
	pool sync.Pool
}

func newResultPool() *resultPool {
	return &resultPool{
		pool: sync.Pool{
			New: func() interface{} {
				return make([]DayResult, 0, 8)
			},
		},
	}
}

func (p *resultPool) get() []DayResult {
	return p.pool.Get().([]DayResult)[:0]
}

func (p *resultPool) put(rs []DayResult) {
	if rs == nil {
		return
	}
	clear(rs)
	p.pool.Put(rs[:0])
}
