package scene

import "strings"

// PathSeparator joins object names into the paths parameters target.
const PathSeparator = "/"

// Object is a node in a scene graph. Value is the component a parameter
// binds to; it is usually a pointer to a struct.
type Object struct {
	Name     string
	Value    any
	Children []*Object
}

func NewObject(name string, value any, children ...*Object) *Object {
	return &Object{Name: name, Value: value, Children: children}
}

func (o *Object) Add(children ...*Object) *Object {
	o.Children = append(o.Children, children...)
	return o
}

// Scene is one entry of the build list. Index is its position in that list.
type Scene struct {
	Name    string
	Index   int
	Enabled bool
	Roots   []*Object
}

func New(name string, index int, roots ...*Object) *Scene {
	return &Scene{Name: name, Index: index, Enabled: true, Roots: roots}
}

// Find resolves a path such as "Rig/Camera". The first match wins when
// siblings share a name.
func (s *Scene) Find(path string) (*Object, bool) {
	if path == "" {
		return nil, false
	}
	parts := strings.Split(path, PathSeparator)
	nodes := s.Roots
	var found *Object
	for _, part := range parts {
		found = nil
		for _, n := range nodes {
			if n.Name == part {
				found = n
				break
			}
		}
		if found == nil {
			return nil, false
		}
		nodes = found.Children
	}
	return found, true
}

// Walk visits objects depth first in declaration order until fn returns false.
func (s *Scene) Walk(fn func(path string, o *Object) bool) {
	var visit func(prefix string, nodes []*Object) bool
	visit = func(prefix string, nodes []*Object) bool {
		for _, n := range nodes {
			path := n.Name
			if prefix != "" {
				path = prefix + PathSeparator + n.Name
			}
			if !fn(path, n) {
				return false
			}
			if !visit(path, n.Children) {
				return false
			}
		}
		return true
	}
	visit("", s.Roots)
}

// Merge builds a virtual scene holding the roots of every enabled scene.
func Merge(name string, scenes ...*Scene) *Scene {
	merged := &Scene{Name: name, Enabled: true}
	for _, s := range scenes {
		if s == nil || !s.Enabled {
			continue
		}
		merged.Roots = append(merged.Roots, s.Roots...)
	}
	return merged
}

// Collect returns every object value of type T in walk order.
func Collect[T any](s *Scene) []T {
	var out []T
	s.Walk(func(_ string, o *Object) bool {
		if v, ok := o.Value.(T); ok {
			out = append(out, v)
		}
		return true
	})
	return out
}
