package params

import (
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/zeusync/paramsync/internal/core/adapter"
	"github.com/zeusync/paramsync/internal/core/scene"
)

const (
	DefaultGroupSchemaName  = "Properties"
	DefaultGroupDisplayName = "Default Group"

	// InternalIDCount ids are kept for engine-owned parameters such as the
	// debug presenter. User parameters are numbered from here.
	InternalIDCount = 100
)

// List is the authoritative parameter collection of a scene. Its first group
// is always the default group.
type List struct {
	GUID   uuid.UUID
	Groups []*Group

	nextID int
}

func NewList() *List {
	return &List{
		GUID:   uuid.New(),
		Groups: []*Group{{Name: DefaultGroupDisplayName, Enabled: true, isDefault: true}},
		nextID: InternalIDCount,
	}
}

// ReserveID hands out ids that are never reused, even after removal.
func (l *List) ReserveID() int {
	id := l.nextID
	l.nextID++
	return id
}

func (l *List) DefaultGroup() *Group {
	return l.Groups[0]
}

func (l *List) AddGroup(name string) *Group {
	g := &Group{Name: name, Enabled: true}
	l.Groups = append(l.Groups, g)
	return g
}

func (l *List) RemoveGroup(g *Group) error {
	idx := slices.Index(l.Groups, g)
	if idx < 0 {
		return ErrGroupNotFound
	}
	if idx == 0 {
		return ErrDefaultGroup
	}
	l.Groups = slices.Delete(l.Groups, idx, idx+1)
	return nil
}

// MoveGroup reorders g to index. Nothing may take the default group's slot.
func (l *List) MoveGroup(g *Group, index int) error {
	idx := slices.Index(l.Groups, g)
	if idx < 0 {
		return ErrGroupNotFound
	}
	if idx == 0 || index < 1 {
		return ErrDefaultGroup
	}
	index = min(index, len(l.Groups)-1)
	l.Groups = slices.Delete(l.Groups, idx, idx+1)
	l.Groups = slices.Insert(l.Groups, index, g)
	return nil
}

// AddParameter appends a parameter to g with a fresh id. Names are made
// unique within the list by appending " (n)".
func (l *List) AddParameter(g *Group, name string, target Target) (*Parameter, error) {
	if !slices.Contains(l.Groups, g) {
		return nil, ErrGroupNotFound
	}
	p := &Parameter{
		ID:      l.ReserveID(),
		Name:    l.uniqueName(name),
		Enabled: true,
		Target:  target,
	}
	g.Parameters = append(g.Parameters, p)
	return p, nil
}

func (l *List) uniqueName(name string) string {
	taken := make(map[string]struct{})
	for _, g := range l.Groups {
		for _, p := range g.Parameters {
			taken[p.Name] = struct{}{}
		}
	}
	if _, ok := taken[name]; !ok {
		return name
	}
	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s (%d)", name, n)
		if _, ok := taken[candidate]; !ok {
			return candidate
		}
	}
}

// Entry pairs a parameter with the group it is published under.
type Entry struct {
	Group     *Group
	Parameter *Parameter
}

// OrderedForSchema lists enabled parameters of enabled groups: groups in
// list order, parameters in group order.
func (l *List) OrderedForSchema() []Entry {
	var out []Entry
	for _, g := range l.Groups {
		if !g.Enabled {
			continue
		}
		for _, p := range g.Parameters {
			if p.Enabled {
				out = append(out, Entry{Group: g, Parameter: p})
			}
		}
	}
	return out
}

// Bind rebinds every parameter against sc. Parameters that are disabled, or
// in a disabled group, lose their adapter. Per-parameter failures are joined.
func (l *List) Bind(sc *scene.Scene, r *adapter.Registry) error {
	for _, g := range l.Groups {
		for _, p := range g.Parameters {
			p.adapter = nil
		}
	}

	var errs []error
	for _, e := range l.OrderedForSchema() {
		if err := e.Parameter.Bind(sc, r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Binding is a runtime adapter addressed by the parameter id encoded in the
// schema keys.
type Binding struct {
	ID      int
	Adapter adapter.Adapter
}

// Bindings returns valid adapters in schema order.
func (l *List) Bindings() []Binding {
	var out []Binding
	for _, e := range l.OrderedForSchema() {
		if a := e.Parameter.Adapter(); a != nil && a.IsValid() {
			out = append(out, Binding{ID: e.Parameter.ID, Adapter: a})
		}
	}
	return out
}

// FindInstance returns the single parameter list placed in sc.
func FindInstance(sc *scene.Scene) (*List, error) {
	lists := scene.Collect[*List](sc)
	switch len(lists) {
	case 0:
		return nil, fmt.Errorf("%w: %q", ErrNoParameterList, sc.Name)
	case 1:
		return lists[0], nil
	default:
		return nil, fmt.Errorf("%w: %q has %d", ErrMultipleParameterLists, sc.Name, len(lists))
	}
}
