package generic

import "sync"

// Pool is a typed sync.Pool. When reset is non-nil it runs on every value
// returned through Put so callers always Get a clean value.
type Pool[T any] struct {
	pool  sync.Pool
	reset func(T) T
}

func NewPool[T any](generate func() T, reset func(T) T) *Pool[T] {
	return &Pool[T]{
		pool: sync.Pool{
			New: func() any {
				return generate()
			},
		},
		reset: reset,
	}
}

func NewHotPool[T any](generate func() T, reset func(T) T, hotSize int) *Pool[T] {
	p := NewPool[T](generate, reset)
	for i := 0; i < hotSize; i++ {
		p.pool.Put(generate())
	}
	return p
}

func (p *Pool[T]) Get() T {
	return p.pool.Get().(T)
}

func (p *Pool[T]) Put(value T) {
	if p.reset != nil {
		value = p.reset(value)
	}
	p.pool.Put(value)
}

// NewBufferPool hands out byte slices with at least size bytes of capacity,
// truncated to zero length on Put.
func NewBufferPool(size int) *Pool[[]byte] {
	return NewPool(
		func() []byte { return make([]byte, 0, size) },
		func(b []byte) []byte { return b[:0] },
	)
}
