// Package gpu backs the scratch texture pool with WebGPU textures.
package gpu

import (
	"fmt"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/zeusync/paramsync/internal/core/texture"
)

var (
	_ texture.Allocator = (*Allocator)(nil)
	_ texture.Writer    = (*Allocator)(nil)
)

type Allocator struct {
	mu     sync.Mutex
	device *wgpu.Device
	queue  *wgpu.Queue
	next   texture.Handle
	live   map[texture.Handle]*wgpu.Texture
}

func NewAllocator(device *wgpu.Device) *Allocator {
	return &Allocator{
		device: device,
		queue:  device.GetQueue(),
		live:   make(map[texture.Handle]*wgpu.Texture),
	}
}

func (a *Allocator) Create(d texture.Descriptor) (*texture.Texture, error) {
	format, ok := FormatFor(d.Format, d.Linear)
	if !ok || d.Width == 0 || d.Height == 0 {
		return nil, fmt.Errorf("%w: %s", texture.ErrInvalidDescriptor, d)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	tex, err := a.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:     "scratch " + d.String(),
		Usage:     wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst | wgpu.TextureUsageCopySrc,
		Dimension: wgpu.TextureDimension2D,
		Size: wgpu.Extent3D{
			Width:              d.Width,
			Height:             d.Height,
			DepthOrArrayLayers: 1,
		},
		Format:        format,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return nil, err
	}

	a.next++
	a.live[a.next] = tex
	return &texture.Texture{Descriptor: d, Handle: a.next, Native: tex}, nil
}

func (a *Allocator) Destroy(t *texture.Texture) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	tex, ok := a.live[t.Handle]
	if !ok {
		return fmt.Errorf("%w: handle %d", texture.ErrUnknownTexture, t.Handle)
	}
	tex.Release()
	delete(a.live, t.Handle)
	t.Native = nil
	return nil
}

func (a *Allocator) Write(t *texture.Texture, pixels []byte) error {
	a.mu.Lock()
	tex, ok := a.live[t.Handle]
	a.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: handle %d", texture.ErrUnknownTexture, t.Handle)
	}

	d := t.Descriptor
	a.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  tex,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		pixels,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  d.Width * uint32(d.Format.BytesPerPixel()),
			RowsPerImage: d.Height,
		},
		&wgpu.Extent3D{
			Width:              d.Width,
			Height:             d.Height,
			DepthOrArrayLayers: 1,
		},
	)
	return nil
}

// FormatFor maps a device pixel format onto a WebGPU texture format. RGBA16
// has no normalized WebGPU equivalent and is stored as half floats.
func FormatFor(f texture.Format, linear bool) (wgpu.TextureFormat, bool) {
	switch f {
	case texture.FormatBGRA8, texture.FormatBGRX8:
		if linear {
			return wgpu.TextureFormatBGRA8Unorm, true
		}
		return wgpu.TextureFormatBGRA8UnormSrgb, true
	case texture.FormatRGBA8, texture.FormatRGBX8:
		if linear {
			return wgpu.TextureFormatRGBA8Unorm, true
		}
		return wgpu.TextureFormatRGBA8UnormSrgb, true
	case texture.FormatRGBA16:
		return wgpu.TextureFormatRGBA16Float, true
	case texture.FormatRGBA32F:
		return wgpu.TextureFormatRGBA32Float, true
	default:
		return 0, false
	}
}
