package adapter

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/zeusync/paramsync/internal/core/member"
	"github.com/zeusync/paramsync/internal/core/schema"
	"github.com/zeusync/paramsync/internal/core/texture"
)

// Adapter translates between one bound member and the device's flat field
// representation. An adapter is bound once at construction; a target whose
// type changes gets a fresh adapter from the Registry.
type Adapter interface {
	IsValid() bool
	Fields() []FieldDesc
	ApplyCPU(d *CPUData) error
	ApplyGPU(d *GPUData) error
}

// Factory builds an adapter bound to acc. The registry is passed so that
// container adapters can resolve adapters for their contents.
type Factory func(r *Registry, acc member.Accessor) (Adapter, error)

// FieldDesc describes one schema field an adapter contributes.
type FieldDesc struct {
	Type    schema.ParameterType
	Suffix  string
	Min     float32
	Max     float32
	Default any
	Options []string
}

// CPUData is the numeric and text slice belonging to one parameter, read
// front to back in Fields order.
type CPUData struct {
	Numeric []float32
	Text    []string

	numeric int
	text    int
}

func NewCPUData(numeric []float32, text []string) *CPUData {
	return &CPUData{Numeric: numeric, Text: text}
}

// NextNumber returns 0 once the numeric span is exhausted.
func (d *CPUData) NextNumber() float32 {
	if d.numeric >= len(d.Numeric) {
		return 0
	}
	v := d.Numeric[d.numeric]
	d.numeric++
	return v
}

func (d *CPUData) NextText() string {
	if d.text >= len(d.Text) {
		return ""
	}
	v := d.Text[d.text]
	d.text++
	return v
}

func (d *CPUData) NextMatrix() mgl32.Mat4 {
	var m mgl32.Mat4
	for i := range m {
		m[i] = d.NextNumber()
	}
	return m
}

func (d *CPUData) Reset() {
	d.numeric, d.text = 0, 0
}

// GPUData carries the scratch textures filled for one parameter this frame.
// A nil entry means the fill was skipped.
type GPUData struct {
	Textures []*texture.Texture

	next int
}

func NewGPUData(textures []*texture.Texture) *GPUData {
	return &GPUData{Textures: textures}
}

func (d *GPUData) NextTexture() *texture.Texture {
	if d.next >= len(d.Textures) {
		return nil
	}
	t := d.Textures[d.next]
	d.next++
	return t
}

func (d *GPUData) Reset() {
	d.next = 0
}

// SchemaParameter renders f as the schema entry for parameter id. Every
// field is published with unit step and no DMX patch.
func (f FieldDesc) SchemaParameter(group, name string, id int, scope string) schema.Parameter {
	options := f.Options
	if options == nil {
		options = []string{}
	}
	return schema.Parameter{
		Group:        group,
		DisplayName:  schema.DisplayName(name, f.Suffix),
		Key:          schema.MakeKey(id, f.Suffix, scope),
		Type:         f.Type,
		Min:          f.Min,
		Max:          f.Max,
		Step:         1,
		DefaultValue: f.Default,
		Options:      options,
		DmxOffset:    -1,
		DmxType:      schema.Dmx16BE,
	}
}
