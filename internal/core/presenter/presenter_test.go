package presenter

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeusync/paramsync/internal/core/adapter"
	"github.com/zeusync/paramsync/internal/core/capture"
	"github.com/zeusync/paramsync/internal/core/device"
	"github.com/zeusync/paramsync/internal/core/schema"
	"github.com/zeusync/paramsync/internal/core/texture"
)

func TestScaleBias_Strategies(t *testing.T) {
	wide := mgl32.Vec2{200, 100}
	square := mgl32.Vec2{100, 100}

	tests := []struct {
		name     string
		strategy Strategy
		src, dst mgl32.Vec2
		want     mgl32.Vec4
	}{
		{"stretch", Stretch, wide, square, mgl32.Vec4{1, 1, 0, 0}},
		{"actual size", ActualSize, mgl32.Vec2{50, 50}, square, mgl32.Vec4{0.5, 0.5, 0.25, 0.25}},
		{"fit wide into square", Fit, wide, square, mgl32.Vec4{1, 0.5, 0, 0.25}},
		{"fit square into wide", Fit, square, wide, mgl32.Vec4{0.5, 1, 0.25, 0}},
		{"fill wide into square", Fill, wide, square, mgl32.Vec4{2, 1, -0.5, 0}},
		{"fill square into wide", Fill, square, wide, mgl32.Vec4{1, 2, 0, -0.5}},
		{"clamp smaller", Clamp, mgl32.Vec2{50, 50}, square, mgl32.Vec4{0.5, 0.5, 0.25, 0.25}},
		{"clamp larger", Clamp, mgl32.Vec2{400, 200}, square, mgl32.Vec4{1, 0.5, 0, 0.25}},
		{"degenerate", Fit, mgl32.Vec2{}, square, mgl32.Vec4{1, 1, 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScaleBias(tt.strategy, tt.src, tt.dst)
			assert.True(t, got.ApproxEqual(tt.want), "got %v want %v", got, tt.want)
		})
	}
}

func TestStrategy_String(t *testing.T) {
	assert.Equal(t, "Fit", Fit.String())
	assert.Equal(t, "Strategy(9)", Strategy(9).String())
	assert.Len(t, Strategy(0).EnumNames(), 5)
}

func TestPresenter_SchemaParameters(t *testing.T) {
	r := adapter.NewDefaultRegistry()
	p := New()
	block := []schema.Parameter{
		{DisplayName: "Screen B", Type: schema.TypeImage},
		{DisplayName: "Gain", Type: schema.TypeNumber},
		{DisplayName: "Screen A", Type: schema.TypeImage},
	}

	got, err := p.SchemaParameters(r, 2, []string{"right", "left"}, block)
	require.NoError(t, err)
	require.Len(t, got, 2)

	sel := got[0]
	assert.Equal(t, Group, sel.Group)
	assert.Equal(t, "Selected", sel.DisplayName)
	assert.Equal(t, "0_DebugWindowPresenter.Selected 2", sel.Key)
	assert.Equal(t, []string{NoneLabel, "left", "right", "Screen A", "Screen B"}, sel.Options)
	assert.Equal(t, float32(4), sel.Max)

	rs := got[1]
	assert.Equal(t, "Resize Strategy", rs.DisplayName)
	assert.Equal(t, "1_DebugWindowPresenter.ResizeStrategy 2", rs.Key)
	assert.Equal(t, strategyNames, rs.Options)
	assert.Equal(t, float32(Fit), rs.DefaultValue)

	id, ok := schema.ResolveID(rs.Key)
	require.True(t, ok)
	assert.Equal(t, ResizeStrategyID, id)
}

func TestPresenter_BindingsDriveValues(t *testing.T) {
	r := adapter.NewDefaultRegistry()
	p := New()
	bindings, err := p.Bindings(r)
	require.NoError(t, err)
	require.Len(t, bindings, 2)

	require.NoError(t, bindings[0].Adapter.ApplyCPU(adapter.NewCPUData([]float32{2}, nil)))
	require.NoError(t, bindings[1].Adapter.ApplyCPU(adapter.NewCPUData([]float32{1}, nil)))
	assert.Equal(t, 2, p.Selected)
	assert.Equal(t, Stretch, p.ResizeStrategy)
}

func TestPresenter_Present(t *testing.T) {
	r := adapter.NewDefaultRegistry()
	p := New()
	params, err := p.SchemaParameters(r, 0, []string{"main"}, []schema.Parameter{{DisplayName: "Screen", Type: schema.TypeImage}})
	require.NoError(t, err)
	p.Load(schema.NewScene("Stage", params), 0)

	src, err := capture.DefaultSpawner(device.StreamDescription{Name: "s", Channel: "main", Width: 200, Height: 100}, nil)
	require.NoError(t, err)
	sources := []capture.Source{src}

	screen := texture.NewRenderTarget("Screen")
	alloc := texture.NewMemoryAllocator()
	tex, err := alloc.Create(texture.Descriptor{Width: 100, Height: 200, Format: texture.FormatRGBA8})
	require.NoError(t, err)
	screen.Blit(tex)
	images := map[string]*texture.RenderTarget{"Screen": screen}
	window := mgl32.Vec2{100, 100}

	assert.Equal(t, View{}, p.Present(sources, images, window))

	p.Selected = 1
	v := p.Present(sources, images, window)
	assert.Equal(t, SourceChannel, v.Kind)
	assert.Equal(t, "main", v.Name)
	assert.True(t, v.ScaleBias.ApproxEqual(mgl32.Vec4{1, 0.5, 0, 0.25}))

	p.Selected = 2
	v = p.Present(sources, images, window)
	assert.Equal(t, SourceImage, v.Kind)
	assert.Equal(t, mgl32.Vec2{100, 200}, v.Size)

	p.Selected = 9
	assert.Equal(t, View{}, p.Present(sources, images, window))

	p.Selected = 1
	assert.Equal(t, "main", p.SelectedName())
	assert.Equal(t, SourceChannel, p.Present(sources, images, window).Kind)

	// The resolved source is kept until invalidated.
	assert.Equal(t, SourceChannel, p.Present(nil, images, window).Kind)
	p.Invalidate()
	assert.Equal(t, View{}, p.Present(nil, images, window))
}
