package texture

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// Allocator creates and destroys the resources held by a Pool.
type Allocator interface {
	Create(d Descriptor) (*Texture, error)
	Destroy(t *Texture) error
}

var _ Allocator = (*MemoryAllocator)(nil)

// MemoryAllocator keeps pixels in host memory. It is used headless and in
// tests, where it also tracks how many textures are alive.
type MemoryAllocator struct {
	mu      sync.Mutex
	next    atomic.Uint64
	live    map[Handle]*Texture
	created int
}

func NewMemoryAllocator() *MemoryAllocator {
	return &MemoryAllocator{live: make(map[Handle]*Texture)}
}

func (a *MemoryAllocator) Create(d Descriptor) (*Texture, error) {
	if d.Width == 0 || d.Height == 0 || !d.Format.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidDescriptor, d)
	}
	t := &Texture{
		Descriptor: d,
		Handle:     Handle(a.next.Add(1)),
		Data:       make([]byte, d.Size()),
	}

	a.mu.Lock()
	a.live[t.Handle] = t
	a.created++
	a.mu.Unlock()
	return t, nil
}

func (a *MemoryAllocator) Destroy(t *Texture) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.live[t.Handle]; !ok {
		return fmt.Errorf("%w: handle %d", ErrUnknownTexture, t.Handle)
	}
	delete(a.live, t.Handle)
	t.Data = nil
	return nil
}

// Lookup finds a live texture by handle. The device fake uses it to write
// pixels into the resource it was asked to fill.
func (a *MemoryAllocator) Lookup(h Handle) (*Texture, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	t, ok := a.live[h]
	return t, ok
}

func (a *MemoryAllocator) Live() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.live)
}

func (a *MemoryAllocator) Created() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.created
}

// Writer uploads pixel data delivered by the device into a texture created
// by the same allocator.
type Writer interface {
	Write(t *Texture, pixels []byte) error
}

var _ Writer = (*MemoryAllocator)(nil)

func (a *MemoryAllocator) Write(t *Texture, pixels []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.live[t.Handle]; !ok {
		return fmt.Errorf("%w: handle %d", ErrUnknownTexture, t.Handle)
	}
	copy(t.Data, pixels)
	return nil
}
