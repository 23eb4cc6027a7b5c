// Package volume provides overridable parameter containers. A remote
// controller can take over a value by setting Override, and ranges can be
// narrowed per instance.
package volume

import "reflect"

type Parameter[T any] struct {
	Value    T
	Override bool
	Min      *T
	Max      *T
}

func New[T any](value T) *Parameter[T] {
	return &Parameter[T]{Value: value}
}

func Clamped[T any](value, lo, hi T) *Parameter[T] {
	return &Parameter[T]{Value: value, Min: &lo, Max: &hi}
}

// BoxedType reports the wrapped type so adapters can resolve an inner
// adapter for Value.
func (p *Parameter[T]) BoxedType() reflect.Type {
	return reflect.TypeFor[T]()
}

// Resolve returns fallback unless the parameter is overridden.
func (p *Parameter[T]) Resolve(fallback T) T {
	if p == nil || !p.Override {
		return fallback
	}
	return p.Value
}
