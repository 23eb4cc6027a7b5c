package adapter

import (
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/zeusync/paramsync/internal/core/member"
)

// Enumeration is implemented by integer types that should be exposed as a
// dropdown. EnumNames is called on the zero value and must list every
// ordinal starting at zero.
type Enumeration interface {
	EnumNames() []string
}

// Boxed is implemented by container types such as volume.Parameter[T]. The
// container must have exported Value and Override fields.
type Boxed interface {
	BoxedType() reflect.Type
}

var (
	enumerationType = reflect.TypeFor[Enumeration]()
	boxedType       = reflect.TypeFor[Boxed]()
)

type entry struct {
	factory  Factory
	priority int
}

// Registry maps Go types to adapter factories. When several factories are
// registered for the same type, the highest priority wins and ties keep the
// earlier registration.
type Registry struct {
	mu      sync.RWMutex
	entries map[reflect.Type]entry
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[reflect.Type]entry)}
}

// NewDefaultRegistry returns a registry preloaded with the builtin adapters
// at priority zero.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	RegisterBuiltins(r)
	return r
}

// Register reports whether f became the active factory for t.
func (r *Registry) Register(t reflect.Type, f Factory, priority int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.entries[t]; ok && existing.priority >= priority {
		return false
	}
	r.entries[t] = entry{factory: f, priority: priority}
	return true
}

func Register[T any](r *Registry, f Factory, priority int) bool {
	return r.Register(reflect.TypeFor[T](), f, priority)
}

// Resolve finds the factory for t. Unregistered enumerations and boxed
// containers fall back to the generic enum and container adapters.
func (r *Registry) Resolve(t reflect.Type) (Factory, error) {
	r.mu.RLock()
	e, ok := r.entries[t]
	r.mu.RUnlock()
	if ok {
		return e.factory, nil
	}

	switch {
	case isEnumeration(t):
		return enumFactory, nil
	case isBoxed(t):
		return boxedFactory, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNoAdapter, t)
}

// Bind resolves an adapter for the accessor's type and constructs it.
func (r *Registry) Bind(acc member.Accessor) (Adapter, error) {
	if acc == nil {
		return nil, ErrNilTarget
	}
	f, err := r.Resolve(acc.Type())
	if err != nil {
		return nil, err
	}
	return f(r, acc)
}

// Types lists registered types ordered by name.
func (r *Registry) Types() []reflect.Type {
	r.mu.RLock()
	out := make([]reflect.Type, 0, len(r.entries))
	for t := range r.entries {
		out = append(out, t)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

func isEnumeration(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return t.Implements(enumerationType)
	default:
		return false
	}
}

func isBoxed(t reflect.Type) bool {
	if t.Kind() == reflect.Pointer {
		return t.Elem().Kind() == reflect.Struct && t.Implements(boxedType)
	}
	return t.Kind() == reflect.Struct && reflect.PointerTo(t).Implements(boxedType)
}
