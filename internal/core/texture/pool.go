package texture

import (
	"sync"

	"github.com/zeusync/paramsync/internal/core/observability/log"
)

// Pool caches one scratch Texture per Descriptor for the lifetime of a
// stream configuration. It is owned by the render timeline; the mutex only
// guards against misuse from tests and diagnostics.
type Pool struct {
	mu      sync.Mutex
	alloc   Allocator
	entries map[Descriptor]*Texture
	closed  bool
	logger  log.Log
}

type PoolOption func(*Pool)

func WithLogger(logger log.Log) PoolOption {
	return func(p *Pool) {
		p.logger = logger
	}
}

func NewPool(alloc Allocator, opts ...PoolOption) *Pool {
	p := &Pool{
		alloc:   alloc,
		entries: make(map[Descriptor]*Texture),
		logger:  log.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With(log.String("component", "texture_pool"))
	return p
}

// Get returns the texture for d, creating it on first request.
func (p *Pool) Get(d Descriptor) (*Texture, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, ErrPoolClosed
	}
	if t, ok := p.entries[d]; ok {
		return t, nil
	}

	t, err := p.alloc.Create(d)
	if err != nil {
		return nil, err
	}
	p.entries[d] = t
	p.logger.Debug("scratch texture created", log.Stringer("descriptor", d), log.Uint64("handle", uint64(t.Handle)))
	return t, nil
}

// Clear destroys every entry except the 1x1 placeholder, which stays valid
// across stream reconfiguration.
func (p *Pool) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for d, t := range p.entries {
		if d.IsPlaceholder() {
			continue
		}
		p.destroy(t)
		delete(p.entries, d)
	}
}

// Close destroys every entry, placeholder included. Get fails afterwards.
func (p *Pool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for d, t := range p.entries {
		p.destroy(t)
		delete(p.entries, d)
	}
	p.closed = true
}

func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.entries)
}

func (p *Pool) destroy(t *Texture) {
	if err := p.alloc.Destroy(t); err != nil {
		p.logger.Warn("failed to destroy scratch texture", log.Stringer("descriptor", t.Descriptor), log.Error(err))
	}
}
