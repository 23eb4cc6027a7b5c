package params

import (
	"fmt"

	"github.com/zeusync/paramsync/internal/core/adapter"
	"github.com/zeusync/paramsync/internal/core/member"
	"github.com/zeusync/paramsync/internal/core/scene"
	"github.com/zeusync/paramsync/internal/core/schema"
)

type Group struct {
	Name       string
	Enabled    bool
	Parameters []*Parameter

	isDefault bool
}

func (g *Group) IsDefault() bool { return g.isDefault }

// SchemaName is the group label published to the device.
func (g *Group) SchemaName() string {
	if g.isDefault {
		return DefaultGroupSchemaName
	}
	return g.Name
}

// Target locates the member a parameter drives: an object path inside the
// scene and a member on that object's component.
type Target struct {
	Object string            `json:"object" yaml:"object"`
	Member member.Descriptor `json:"member" yaml:"member"`
}

type Parameter struct {
	ID      int
	Name    string
	Enabled bool
	Target  Target

	adapter adapter.Adapter
}

// Configured reports whether the target is complete enough to bind.
func (p *Parameter) Configured() bool {
	return p.Target.Object != "" && p.Target.Member.IsConfigured()
}

// Adapter is nil until a successful Bind.
func (p *Parameter) Adapter() adapter.Adapter {
	return p.adapter
}

// Bind resolves the target in sc and replaces the adapter. On failure the
// parameter is left unbound.
func (p *Parameter) Bind(sc *scene.Scene, r *adapter.Registry) error {
	p.adapter = nil
	if !p.Configured() {
		return fmt.Errorf("parameter %q: %w", p.Name, ErrNotConfigured)
	}

	obj, ok := sc.Find(p.Target.Object)
	if !ok || obj.Value == nil {
		return fmt.Errorf("parameter %q: %w: %q", p.Name, ErrObjectNotFound, p.Target.Object)
	}

	acc, err := member.Resolve(obj.Value, p.Target.Member)
	if err != nil {
		return fmt.Errorf("parameter %q: %w", p.Name, err)
	}
	a, err := r.Bind(acc)
	if err != nil {
		return fmt.Errorf("parameter %q: %w", p.Name, err)
	}
	if !a.IsValid() {
		return fmt.Errorf("parameter %q: %w", p.Name, ErrInvalidAdapter)
	}
	p.adapter = a
	return nil
}

// SchemaParameters renders the bound adapter's fields. Keys are scoped to
// the owning list's GUID.
func (p *Parameter) SchemaParameters(g *Group, scope string) []schema.Parameter {
	if p.adapter == nil {
		return nil
	}
	fields := p.adapter.Fields()
	out := make([]schema.Parameter, 0, len(fields))
	for _, f := range fields {
		out = append(out, f.SchemaParameter(g.SchemaName(), p.Name, p.ID, scope))
	}
	return out
}
