package adapter

import (
	"fmt"
	"math"
	"reflect"

	"github.com/zeusync/paramsync/internal/core/member"
	"github.com/zeusync/paramsync/internal/core/schema"
)

// valueAdapter covers every builtin whose whole value is rewritten from the
// CPU data on each frame.
type valueAdapter[T any] struct {
	target   member.Typed[T]
	describe func(T) []FieldDesc
	decode   func(*CPUData) T
}

func (a *valueAdapter[T]) IsValid() bool { return a.target.IsValid() }

func (a *valueAdapter[T]) Fields() []FieldDesc {
	return a.describe(a.target.Get())
}

func (a *valueAdapter[T]) ApplyCPU(d *CPUData) error {
	return a.target.Set(a.decode(d))
}

func (a *valueAdapter[T]) ApplyGPU(_ *GPUData) error { return nil }

func valueFactory[T any](describe func(T) []FieldDesc, decode func(*CPUData) T) Factory {
	return func(_ *Registry, acc member.Accessor) (Adapter, error) {
		target, err := member.As[T](acc)
		if err != nil {
			return nil, err
		}
		if !acc.CanSet() {
			return nil, fmt.Errorf("%w: %s", ErrReadOnlyTarget, acc.Descriptor())
		}
		return &valueAdapter[T]{target: target, describe: describe, decode: decode}, nil
	}
}

func number(suffix string, value, lo, hi float32) FieldDesc {
	return FieldDesc{Type: schema.TypeNumber, Suffix: suffix, Min: lo, Max: hi, Default: value}
}

type integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 | ~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

// toInteger rounds half to even and saturates at the bounds of T.
func toInteger[T integer](f float32) T {
	r := math.RoundToEven(float64(f))
	if math.IsNaN(r) {
		return 0
	}
	lo, hi := integerBounds[T]()
	return T(math.Max(lo, math.Min(hi, r)))
}

func integerBounds[T integer]() (float64, float64) {
	t := reflect.TypeFor[T]()
	bits := t.Bits()
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if bits == 64 {
			return -math.Exp2(63), math.Nextafter(math.Exp2(63), 0)
		}
		return -math.Exp2(float64(bits - 1)), math.Exp2(float64(bits-1)) - 1
	default:
		if bits == 64 {
			return 0, math.Nextafter(math.Exp2(64), 0)
		}
		return 0, math.Exp2(float64(bits)) - 1
	}
}

// integerFactory exposes an integer with a UI range of [lo, hi]; values
// outside the range are still accepted up to the bounds of T.
func integerFactory[T integer](lo, hi float32) Factory {
	return valueFactory(
		func(v T) []FieldDesc { return []FieldDesc{number("", float32(v), lo, hi)} },
		func(d *CPUData) T { return toInteger[T](d.NextNumber()) },
	)
}

func floatFactory[T ~float32 | ~float64](lo, hi float32) Factory {
	return valueFactory(
		func(v T) []FieldDesc { return []FieldDesc{number("", float32(v), lo, hi)} },
		func(d *CPUData) T { return T(d.NextNumber()) },
	)
}

var toggleOptions = []string{"Off", "On"}

func toggle(suffix string, on bool) FieldDesc {
	f := number(suffix, 0, 0, 1)
	if on {
		f.Default = float32(1)
	}
	f.Options = toggleOptions
	return f
}
