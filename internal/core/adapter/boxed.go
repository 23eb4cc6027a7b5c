package adapter

import (
	"fmt"
	"reflect"

	"github.com/zeusync/paramsync/internal/core/member"
	"github.com/zeusync/paramsync/internal/core/schema"
)

const overrideSuffix = "override"

// boxedAdapter exposes an Override toggle followed by the fields of the
// adapter resolved for the container's Value.
type boxedAdapter struct {
	override member.Typed[bool]
	inner    Adapter
	min      member.Accessor
	max      member.Accessor
}

func boxedFactory(r *Registry, acc member.Accessor) (Adapter, error) {
	obj, err := addressOf(acc)
	if err != nil {
		return nil, err
	}

	overrideAcc, err := member.Resolve(obj, member.Field("Override"))
	if err != nil {
		return nil, err
	}
	override, err := member.As[bool](overrideAcc)
	if err != nil {
		return nil, err
	}

	valueAcc, err := member.Resolve(obj, member.Field("Value"))
	if err != nil {
		return nil, err
	}
	inner, err := r.Bind(valueAcc)
	if err != nil {
		return nil, fmt.Errorf("boxed value: %w", err)
	}

	a := &boxedAdapter{override: override, inner: inner}
	a.min, _ = member.Resolve(obj, member.Field("Min"))
	a.max, _ = member.Resolve(obj, member.Field("Max"))
	return a, nil
}

func (a *boxedAdapter) IsValid() bool {
	return a.override.IsValid() && a.inner != nil && a.inner.IsValid()
}

func (a *boxedAdapter) Fields() []FieldDesc {
	inner := a.inner.Fields()
	lo, hasLo := boundOf(a.min)
	hi, hasHi := boundOf(a.max)

	out := make([]FieldDesc, 0, len(inner)+1)
	out = append(out, toggle(overrideSuffix, a.override.Get()))
	for _, f := range inner {
		if f.Type == schema.TypeNumber && f.Options == nil {
			if hasLo {
				f.Min = lo
			}
			if hasHi {
				f.Max = hi
			}
		}
		out = append(out, f)
	}
	return out
}

func (a *boxedAdapter) ApplyCPU(d *CPUData) error {
	if err := a.override.Set(d.NextNumber() != 0); err != nil {
		return err
	}
	return a.inner.ApplyCPU(d)
}

func (a *boxedAdapter) ApplyGPU(d *GPUData) error {
	return a.inner.ApplyGPU(d)
}

func addressOf(acc member.Accessor) (any, error) {
	v := acc.Get()
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil, fmt.Errorf("%w: %s", ErrNilTarget, acc.Descriptor())
		}
		return v.Interface(), nil
	}
	if v.CanAddr() {
		return v.Addr().Interface(), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnaddressable, acc.Descriptor())
}

// boundOf reads an optional *T range bound where T is numeric.
func boundOf(acc member.Accessor) (float32, bool) {
	if acc == nil {
		return 0, false
	}
	v := acc.Get()
	if v.Kind() != reflect.Pointer || v.IsNil() {
		return 0, false
	}
	v = v.Elem()
	switch {
	case v.CanInt():
		return float32(v.Int()), true
	case v.CanUint():
		return float32(v.Uint()), true
	case v.CanFloat():
		return float32(v.Float()), true
	default:
		return 0, false
	}
}
