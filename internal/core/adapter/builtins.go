package adapter

import (
	"image/color"
	"math"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/zeusync/paramsync/internal/core/mathx"
	"github.com/zeusync/paramsync/internal/core/schema"
	"github.com/zeusync/paramsync/internal/core/texture"
)

// Default UI ranges.
const (
	IntMin        float32 = -1000
	IntMax        float32 = 1000
	FloatMin      float32 = -1
	FloatMax      float32 = 1
	RotationMin   float32 = -360
	RotationMax   float32 = 360
	ColorChannelN float32 = 255
)

var (
	vectorSuffixes = [4]string{"x", "y", "z", "w"}
	colorSuffixes  = [4]string{"r", "g", "b", "a"}
)

func RegisterBuiltins(r *Registry) {
	Register[int8](r, integerFactory[int8](math.MinInt8, math.MaxInt8), 0)
	Register[uint8](r, integerFactory[uint8](0, math.MaxUint8), 0)
	Register[int16](r, integerFactory[int16](IntMin, IntMax), 0)
	Register[uint16](r, integerFactory[uint16](0, IntMax), 0)
	Register[int32](r, integerFactory[int32](IntMin, IntMax), 0)
	Register[uint32](r, integerFactory[uint32](0, IntMax), 0)
	Register[int64](r, integerFactory[int64](IntMin, IntMax), 0)
	Register[int](r, integerFactory[int](IntMin, IntMax), 0)

	Register[float32](r, floatFactory[float32](FloatMin, FloatMax), 0)
	Register[float64](r, floatFactory[float64](FloatMin, FloatMax), 0)

	Register[bool](r, valueFactory(
		func(v bool) []FieldDesc { return []FieldDesc{toggle("", v)} },
		func(d *CPUData) bool { return d.NextNumber() != 0 },
	), 0)

	Register[string](r, valueFactory(
		func(v string) []FieldDesc { return []FieldDesc{{Type: schema.TypeText, Default: v}} },
		func(d *CPUData) string { return d.NextText() },
	), 0)

	// String lists travel as one space separated text field.
	Register[[]string](r, valueFactory(
		func(v []string) []FieldDesc {
			return []FieldDesc{{Type: schema.TypeText, Default: strings.Join(v, " ")}}
		},
		func(d *CPUData) []string {
			out := strings.Fields(d.NextText())
			if out == nil {
				out = []string{}
			}
			return out
		},
	), 0)

	Register[mgl32.Vec2](r, valueFactory(
		func(v mgl32.Vec2) []FieldDesc { return vectorFields(v[:], vectorSuffixes[:], FloatMin, FloatMax) },
		func(d *CPUData) (v mgl32.Vec2) { readVector(d, v[:]); return v },
	), 0)
	Register[mgl32.Vec3](r, valueFactory(
		func(v mgl32.Vec3) []FieldDesc { return vectorFields(v[:], vectorSuffixes[:], FloatMin, FloatMax) },
		func(d *CPUData) (v mgl32.Vec3) { readVector(d, v[:]); return v },
	), 0)
	Register[mgl32.Vec4](r, valueFactory(
		func(v mgl32.Vec4) []FieldDesc { return vectorFields(v[:], vectorSuffixes[:], FloatMin, FloatMax) },
		func(d *CPUData) (v mgl32.Vec4) { readVector(d, v[:]); return v },
	), 0)

	Register[mathx.Vec2i](r, valueFactory(
		func(v mathx.Vec2i) []FieldDesc { return intVectorFields(v[:]) },
		func(d *CPUData) (v mathx.Vec2i) { readIntVector(d, v[:]); return v },
	), 0)
	Register[mathx.Vec3i](r, valueFactory(
		func(v mathx.Vec3i) []FieldDesc { return intVectorFields(v[:]) },
		func(d *CPUData) (v mathx.Vec3i) { readIntVector(d, v[:]); return v },
	), 0)

	Register[mathx.Color](r, valueFactory(
		func(c mathx.Color) []FieldDesc {
			return vectorFields([]float32{c.R, c.G, c.B, c.A}, colorSuffixes[:], 0, 1)
		},
		func(d *CPUData) mathx.Color {
			return mathx.Color{R: d.NextNumber(), G: d.NextNumber(), B: d.NextNumber(), A: d.NextNumber()}
		},
	), 0)

	// 8-bit colors are exposed in [0, 1] like float colors.
	Register[color.RGBA](r, valueFactory(
		func(c color.RGBA) []FieldDesc {
			return vectorFields([]float32{
				float32(c.R) / ColorChannelN,
				float32(c.G) / ColorChannelN,
				float32(c.B) / ColorChannelN,
				float32(c.A) / ColorChannelN,
			}, colorSuffixes[:], 0, 1)
		},
		func(d *CPUData) color.RGBA {
			return color.RGBA{
				R: toInteger[uint8](d.NextNumber() * ColorChannelN),
				G: toInteger[uint8](d.NextNumber() * ColorChannelN),
				B: toInteger[uint8](d.NextNumber() * ColorChannelN),
				A: toInteger[uint8](d.NextNumber() * ColorChannelN),
			}
		},
	), 0)

	// Rotations are edited as euler angles in degrees.
	Register[mgl32.Quat](r, valueFactory(
		func(q mgl32.Quat) []FieldDesc {
			e := mathx.EulerDegrees(q)
			return vectorFields(e[:], vectorSuffixes[:], RotationMin, RotationMax)
		},
		func(d *CPUData) mgl32.Quat {
			return mathx.FromEulerDegrees(mgl32.Vec3{d.NextNumber(), d.NextNumber(), d.NextNumber()})
		},
	), 0)

	Register[mgl32.Mat4](r, valueFactory(
		func(mgl32.Mat4) []FieldDesc { return []FieldDesc{{Type: schema.TypeTransform}} },
		func(d *CPUData) mgl32.Mat4 { return d.NextMatrix() },
	), 0)

	Register[mathx.Pose](r, valueFactory(
		func(mathx.Pose) []FieldDesc { return []FieldDesc{{Type: schema.TypePose}} },
		func(d *CPUData) mathx.Pose { return mathx.PoseFromMatrix(d.NextMatrix()) },
	), 0)

	Register[*texture.RenderTarget](r, imageFactory, 0)
}

func vectorFields(v []float32, suffixes []string, lo, hi float32) []FieldDesc {
	out := make([]FieldDesc, len(v))
	for i := range v {
		out[i] = number(suffixes[i], v[i], lo, hi)
	}
	return out
}

func intVectorFields(v []int) []FieldDesc {
	out := make([]FieldDesc, len(v))
	for i := range v {
		out[i] = number(vectorSuffixes[i], float32(v[i]), IntMin, IntMax)
	}
	return out
}

func readVector(d *CPUData, v []float32) {
	for i := range v {
		v[i] = d.NextNumber()
	}
}

func readIntVector(d *CPUData, v []int) {
	for i := range v {
		v[i] = toInteger[int](d.NextNumber())
	}
}
