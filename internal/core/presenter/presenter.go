// Package presenter exposes the debug window presenter: a pair of remote
// parameters selecting which channel or image input is shown locally and
// how it is resized.
package presenter

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/zeusync/paramsync/internal/core/adapter"
	"github.com/zeusync/paramsync/internal/core/capture"
	"github.com/zeusync/paramsync/internal/core/member"
	"github.com/zeusync/paramsync/internal/core/params"
	"github.com/zeusync/paramsync/internal/core/schema"
	"github.com/zeusync/paramsync/internal/core/texture"
)

const (
	Group     = "Debug Window Presenter"
	NoneLabel = "None"

	SelectedID       = 0
	ResizeStrategyID = 1

	keyPrefix = "DebugWindowPresenter."
)

var ErrBind = errors.New("presenter: bind failed")

// Presenter holds the values driven by the device. Its parameter ids live in
// the reserved range of every parameter list.
type Presenter struct {
	Selected       int
	ResizeStrategy Strategy

	mu          sync.Mutex
	options     []string
	resolved    selection
	resolvedFor int
}

// selection is the source a Selected value resolved to.
type selection struct {
	kind   SourceKind
	name   string
	source capture.Source
	target *texture.RenderTarget
}

func New() *Presenter {
	return &Presenter{ResizeStrategy: Fit, resolvedFor: -1}
}

type field struct {
	id          int
	name        string
	displayName string
}

var fields = []field{
	{id: SelectedID, name: "Selected", displayName: "Selected"},
	{id: ResizeStrategyID, name: "ResizeStrategy", displayName: "Resize Strategy"},
}

// Key returns the schema key of a presenter field for the block at scene.
func Key(id int, scene int) string {
	for _, f := range fields {
		if f.id == id {
			return schema.MakeKey(id, keyPrefix+f.name, fmt.Sprint(scene))
		}
	}
	return ""
}

func (p *Presenter) bind(r *adapter.Registry) ([]adapter.Adapter, error) {
	out := make([]adapter.Adapter, 0, len(fields))
	for _, f := range fields {
		acc, err := member.Resolve(p, member.Field(f.name))
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrBind, f.name, err)
		}
		a, err := r.Bind(acc)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrBind, f.name, err)
		}
		out = append(out, a)
	}
	return out, nil
}

// SchemaParameters returns the presenter fields for the block at scene.
// The Selected dropdown lists None, then the sorted channels, then the
// sorted display names of the block's image parameters.
func (p *Presenter) SchemaParameters(r *adapter.Registry, scene int, channels []string, block []schema.Parameter) ([]schema.Parameter, error) {
	adapters, err := p.bind(r)
	if err != nil {
		return nil, err
	}

	out := make([]schema.Parameter, 0, len(fields))
	for i, f := range fields {
		desc := adapters[i].Fields()[0]
		sp := desc.SchemaParameter(Group, f.displayName, f.id, "")
		sp.Key = Key(f.id, scene)
		if f.id == SelectedID {
			sp.Options = SelectedOptions(channels, block)
			sp.Min = 0
			sp.Max = float32(len(sp.Options) - 1)
		}
		out = append(out, sp)
	}
	return out, nil
}

// SelectedOptions builds the Selected dropdown choices.
func SelectedOptions(channels []string, block []schema.Parameter) []string {
	sorted := slices.Clone(channels)
	slices.Sort(sorted)

	var images []string
	for _, sp := range block {
		if sp.Type == schema.TypeImage {
			images = append(images, sp.DisplayName)
		}
	}
	slices.Sort(images)

	out := make([]string, 0, 1+len(sorted)+len(images))
	out = append(out, NoneLabel)
	out = append(out, sorted...)
	return append(out, images...)
}

// Bindings returns the runtime adapters for the presenter fields.
func (p *Presenter) Bindings(r *adapter.Registry) ([]params.Binding, error) {
	adapters, err := p.bind(r)
	if err != nil {
		return nil, err
	}
	out := make([]params.Binding, len(fields))
	for i, f := range fields {
		out[i] = params.Binding{ID: f.id, Adapter: adapters[i]}
	}
	return out, nil
}

// Load reads the Selected choices published for the block at scene. A block
// without presenter fields leaves no choices.
func (p *Presenter) Load(block schema.Scene, scene int) {
	key := Key(SelectedID, scene)
	var options []string
	for _, sp := range block.Parameters {
		if sp.Key == key {
			options = slices.Clone(sp.Options)
			break
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.options = options
	p.resolvedFor = -1
}

// Invalidate forces the selection to be resolved again on the next
// Present. It runs when the scene or the streams change.
func (p *Presenter) Invalidate() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resolvedFor = -1
}

// SelectedName returns the label of the current selection, or "" for None
// and out of range values.
func (p *Presenter) SelectedName() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.selectedName()
}

func (p *Presenter) selectedName() string {
	if p.Selected <= 0 || p.Selected >= len(p.options) {
		return ""
	}
	return p.options[p.Selected]
}

type SourceKind int

const (
	SourceNone SourceKind = iota
	SourceChannel
	SourceImage
)

// View is what the debug window should display.
type View struct {
	Kind      SourceKind
	Name      string
	Size      mgl32.Vec2
	ScaleBias mgl32.Vec4
}

// Present resolves the selection against the live capture sources and the
// image inputs of the active scene, then computes the resize transform for
// a window of size window. The resolved source is kept until Selected
// changes or Invalidate is called.
func (p *Presenter) Present(sources []capture.Source, images map[string]*texture.RenderTarget, window mgl32.Vec2) View {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.Selected != p.resolvedFor {
		p.resolved = p.resolve(sources, images)
		p.resolvedFor = p.Selected
	}

	v := View{Kind: p.resolved.kind, Name: p.resolved.name}
	switch v.Kind {
	case SourceChannel:
		st := p.resolved.source.Stream()
		v.Size = mgl32.Vec2{float32(st.Width), float32(st.Height)}
	case SourceImage:
		d := p.resolved.target.Descriptor()
		v.Size = mgl32.Vec2{float32(d.Width), float32(d.Height)}
	default:
		return View{}
	}
	v.ScaleBias = ScaleBias(p.ResizeStrategy, v.Size, window)
	return v
}

func (p *Presenter) resolve(sources []capture.Source, images map[string]*texture.RenderTarget) selection {
	name := p.selectedName()
	if name == "" {
		return selection{}
	}
	if i := slices.IndexFunc(sources, func(s capture.Source) bool { return s.Stream().Channel == name }); i >= 0 {
		return selection{kind: SourceChannel, name: name, source: sources[i]}
	}
	if rt, ok := images[name]; ok && rt != nil {
		return selection{kind: SourceImage, name: name, target: rt}
	}
	return selection{}
}
