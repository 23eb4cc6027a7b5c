package adapter

import (
	"fmt"

	"github.com/zeusync/paramsync/internal/core/member"
	"github.com/zeusync/paramsync/internal/core/schema"
	"github.com/zeusync/paramsync/internal/core/texture"
)

// imageAdapter only reads its member: the render target is mutated in place
// by blitting, so read-only properties and the object itself are valid targets.
type imageAdapter struct {
	target member.Typed[*texture.RenderTarget]
}

func imageFactory(_ *Registry, acc member.Accessor) (Adapter, error) {
	target, err := member.As[*texture.RenderTarget](acc)
	if err != nil {
		return nil, err
	}
	return &imageAdapter{target: target}, nil
}

func (a *imageAdapter) IsValid() bool {
	return a.target.IsValid() && a.target.Get() != nil
}

func (a *imageAdapter) Fields() []FieldDesc {
	return []FieldDesc{{Type: schema.TypeImage}}
}

func (a *imageAdapter) ApplyCPU(_ *CPUData) error { return nil }

func (a *imageAdapter) ApplyGPU(d *GPUData) error {
	rt := a.target.Get()
	if rt == nil {
		return fmt.Errorf("%w: %s", ErrNilTarget, a.target.Accessor().Descriptor())
	}
	if tex := d.NextTexture(); tex != nil {
		rt.Blit(tex)
	}
	return nil
}
