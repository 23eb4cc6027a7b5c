package texture

import "fmt"

// Descriptor identifies a scratch resource. Two requests with equal
// descriptors share the same pooled Texture.
type Descriptor struct {
	Width  uint32
	Height uint32
	Format Format
	Linear bool
}

// IsPlaceholder reports whether d describes the 1x1 resource handed out
// before the device has sent real dimensions.
func (d Descriptor) IsPlaceholder() bool {
	return d.Width == 1 && d.Height == 1
}

func (d Descriptor) Size() int {
	return int(d.Width) * int(d.Height) * d.Format.BytesPerPixel()
}

func (d Descriptor) String() string {
	space := "srgb"
	if d.Linear {
		space = "linear"
	}
	return fmt.Sprintf("%dx%d %s %s", d.Width, d.Height, d.Format, space)
}

// Handle is the opaque value passed to the device when it fills a resource.
type Handle uint64

// Texture is a GPU (or host memory) resource created by an Allocator.
type Texture struct {
	Descriptor Descriptor
	Handle     Handle

	// Data is the host backing store for allocators that keep pixels in
	// memory. GPU allocators leave it nil and use Native instead.
	Data   []byte
	Native any
}
