package member

import (
	"fmt"
	"reflect"
)

// Typed narrows an Accessor to a concrete Go type.
type Typed[T any] struct {
	acc Accessor
}

func As[T any](acc Accessor) (Typed[T], error) {
	if acc == nil {
		return Typed[T]{}, ErrNilTarget
	}
	want := reflect.TypeFor[T]()
	if acc.Type() != want {
		return Typed[T]{}, fmt.Errorf("%w: %s is not %s", ErrTypeMismatch, acc.Type(), want)
	}
	return Typed[T]{acc: acc}, nil
}

func (t Typed[T]) IsValid() bool { return t.acc != nil }

func (t Typed[T]) Accessor() Accessor { return t.acc }

func (t Typed[T]) Get() T {
	if t.acc == nil {
		var zero T
		return zero
	}
	v, _ := t.acc.Get().Interface().(T)
	return v
}

func (t Typed[T]) Set(v T) error {
	if t.acc == nil {
		return ErrNilTarget
	}
	return t.acc.Set(reflect.ValueOf(&v).Elem())
}
