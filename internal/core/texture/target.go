package texture

import "sync"

// RenderTarget is an image sink on a scene object. Remote image parameters
// blit the pooled scratch texture into it once per rendered frame.
type RenderTarget struct {
	mu     sync.Mutex
	name   string
	data   []byte
	source Handle
	desc   Descriptor
	blits  int
}

func NewRenderTarget(name string) *RenderTarget {
	return &RenderTarget{name: name}
}

func (r *RenderTarget) Name() string { return r.name }

// Blit copies src into the target, resizing the host copy when the source
// descriptor changed.
func (r *RenderTarget) Blit(src *Texture) {
	if src == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if src.Data != nil {
		if cap(r.data) < len(src.Data) {
			r.data = make([]byte, len(src.Data))
		}
		r.data = r.data[:len(src.Data)]
		copy(r.data, src.Data)
	}
	r.source = src.Handle
	r.desc = src.Descriptor
	r.blits++
}

// Snapshot returns a copy of the last blitted pixels.
func (r *RenderTarget) Snapshot() (Descriptor, []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]byte, len(r.data))
	copy(out, r.data)
	return r.desc, out
}

func (r *RenderTarget) Source() Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.source
}

func (r *RenderTarget) Blits() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.blits
}

// Descriptor is the shape of the last blitted source.
func (r *RenderTarget) Descriptor() Descriptor {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.desc
}
