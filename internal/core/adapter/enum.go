package adapter

import (
	"fmt"
	"reflect"

	"github.com/zeusync/paramsync/internal/core/member"
)

type enumAdapter struct {
	acc   member.Accessor
	names []string
}

func enumFactory(_ *Registry, acc member.Accessor) (Adapter, error) {
	if !acc.CanSet() {
		return nil, fmt.Errorf("%w: %s", ErrReadOnlyTarget, acc.Descriptor())
	}
	names := reflect.Zero(acc.Type()).Interface().(Enumeration).EnumNames()
	return &enumAdapter{acc: acc, names: names}, nil
}

func (a *enumAdapter) IsValid() bool { return a.acc != nil && len(a.names) > 0 }

func (a *enumAdapter) Fields() []FieldDesc {
	f := number("", float32(a.ordinal()), 0, float32(len(a.names)-1))
	f.Options = a.names
	return []FieldDesc{f}
}

// ApplyCPU clamps out of range ordinals so the target always holds a named value.
func (a *enumAdapter) ApplyCPU(d *CPUData) error {
	idx := toInteger[int](d.NextNumber())
	idx = max(0, min(len(a.names)-1, idx))

	v := reflect.New(a.acc.Type()).Elem()
	if v.CanInt() {
		v.SetInt(int64(idx))
	} else {
		v.SetUint(uint64(idx))
	}
	return a.acc.Set(v)
}

func (a *enumAdapter) ApplyGPU(_ *GPUData) error { return nil }

func (a *enumAdapter) ordinal() int {
	v := a.acc.Get()
	if v.CanInt() {
		return int(v.Int())
	}
	return int(v.Uint())
}
