package member

import (
	"fmt"
	"reflect"
)

// Accessor reads and writes one member of a bound target object.
type Accessor interface {
	Descriptor() Descriptor
	Type() reflect.Type
	Get() reflect.Value
	Set(v reflect.Value) error
	CanSet() bool
}

var (
	_ Accessor = (*fieldAccessor)(nil)
	_ Accessor = (*propertyAccessor)(nil)
	_ Accessor = (*thisAccessor)(nil)
)

// Resolve binds d against target. Field members require target to be a
// non-nil pointer to a struct.
func Resolve(target any, d Descriptor) (Accessor, error) {
	if target == nil {
		return nil, ErrNilTarget
	}
	if !d.IsConfigured() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidDescriptor, d)
	}

	rv := reflect.ValueOf(target)
	if rv.Kind() == reflect.Pointer && rv.IsNil() {
		return nil, ErrNilTarget
	}

	switch d.Kind {
	case KindThis:
		return &thisAccessor{desc: d, value: rv}, nil
	case KindField:
		return resolveField(rv, d)
	case KindProperty:
		return resolveProperty(rv, d)
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidDescriptor, d)
	}
}

func resolveField(rv reflect.Value, d Descriptor) (Accessor, error) {
	if rv.Kind() != reflect.Pointer || rv.Elem().Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: field %q needs a pointer to struct, got %s", ErrInvalidDescriptor, d.Name, rv.Type())
	}
	sf, ok := rv.Elem().Type().FieldByName(d.Name)
	if !ok || !sf.IsExported() {
		return nil, fmt.Errorf("%w: field %q on %s", ErrNotFound, d.Name, rv.Elem().Type())
	}
	return &fieldAccessor{desc: d, value: rv.Elem().FieldByIndex(sf.Index)}, nil
}

func resolveProperty(rv reflect.Value, d Descriptor) (Accessor, error) {
	getter := rv.MethodByName(d.Name)
	if !getter.IsValid() {
		return nil, fmt.Errorf("%w: property %q on %s", ErrNotFound, d.Name, rv.Type())
	}
	gt := getter.Type()
	if gt.NumIn() != 0 || gt.NumOut() != 1 {
		return nil, fmt.Errorf("%w: property getter %q must take no arguments and return one value", ErrInvalidDescriptor, d.Name)
	}

	acc := &propertyAccessor{desc: d, getter: getter, typ: gt.Out(0)}
	setter := rv.MethodByName("Set" + d.Name)
	if setter.IsValid() {
		st := setter.Type()
		if st.NumIn() == 1 && st.In(0) == acc.typ {
			acc.setter = setter
		}
	}
	return acc, nil
}

type fieldAccessor struct {
	desc  Descriptor
	value reflect.Value
}

func (a *fieldAccessor) Descriptor() Descriptor { return a.desc }
func (a *fieldAccessor) Type() reflect.Type     { return a.value.Type() }
func (a *fieldAccessor) Get() reflect.Value     { return a.value }
func (a *fieldAccessor) CanSet() bool           { return a.value.CanSet() }

func (a *fieldAccessor) Set(v reflect.Value) error {
	if !a.value.CanSet() {
		return ErrReadOnly
	}
	v, err := assignable(v, a.value.Type())
	if err != nil {
		return err
	}
	a.value.Set(v)
	return nil
}

type propertyAccessor struct {
	desc   Descriptor
	getter reflect.Value
	setter reflect.Value
	typ    reflect.Type
}

func (a *propertyAccessor) Descriptor() Descriptor { return a.desc }
func (a *propertyAccessor) Type() reflect.Type     { return a.typ }
func (a *propertyAccessor) CanSet() bool           { return a.setter.IsValid() }

func (a *propertyAccessor) Get() reflect.Value {
	return a.getter.Call(nil)[0]
}

func (a *propertyAccessor) Set(v reflect.Value) error {
	if !a.setter.IsValid() {
		return ErrReadOnly
	}
	v, err := assignable(v, a.typ)
	if err != nil {
		return err
	}
	a.setter.Call([]reflect.Value{v})
	return nil
}

type thisAccessor struct {
	desc  Descriptor
	value reflect.Value
}

func (a *thisAccessor) Descriptor() Descriptor    { return a.desc }
func (a *thisAccessor) Type() reflect.Type        { return a.value.Type() }
func (a *thisAccessor) Get() reflect.Value        { return a.value }
func (a *thisAccessor) CanSet() bool              { return false }
func (a *thisAccessor) Set(_ reflect.Value) error { return ErrReadOnly }

func assignable(v reflect.Value, to reflect.Type) (reflect.Value, error) {
	if !v.IsValid() {
		return reflect.Zero(to), nil
	}
	if v.Type().AssignableTo(to) {
		return v, nil
	}
	if v.Type().ConvertibleTo(to) && v.Kind() == to.Kind() {
		return v.Convert(to), nil
	}
	return reflect.Value{}, fmt.Errorf("%w: cannot assign %s to %s", ErrTypeMismatch, v.Type(), to)
}
