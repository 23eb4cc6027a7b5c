package scenedata

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeusync/paramsync/internal/core/adapter"
	"github.com/zeusync/paramsync/internal/core/member"
	"github.com/zeusync/paramsync/internal/core/observability/log"
	"github.com/zeusync/paramsync/internal/core/params"
	"github.com/zeusync/paramsync/internal/core/schema"
	"github.com/zeusync/paramsync/internal/core/texture"
)

type stage struct {
	Gain    float32
	Offset  mgl32.Vec3
	Title   string
	Camera  mgl32.Mat4
	Screen  *texture.RenderTarget
	Visible bool
}

type fixture struct {
	obj      *stage
	block    schema.Scene
	bindings []params.Binding
}

// newFixture builds a block in schema order with one parameter per member.
func newFixture(t *testing.T, names ...string) fixture {
	t.Helper()
	r := adapter.NewDefaultRegistry()
	obj := &stage{Screen: texture.NewRenderTarget("screen")}

	var fields []schema.Parameter
	var bindings []params.Binding
	for i, name := range names {
		id := params.InternalIDCount + i
		acc, err := member.Resolve(obj, member.Field(name))
		require.NoError(t, err)
		a, err := r.Bind(acc)
		require.NoError(t, err)
		for _, f := range a.Fields() {
			fields = append(fields, f.SchemaParameter("Properties", name, id, "scope"))
		}
		bindings = append(bindings, params.Binding{ID: id, Adapter: a})
	}
	return fixture{obj: obj, block: schema.NewScene("Stage", fields), bindings: bindings}
}

func TestSceneData_SizesFromBlock(t *testing.T) {
	fx := newFixture(t, "Gain", "Offset", "Title", "Camera", "Screen")
	sd := New(fx.block, fx.bindings, log.NewNop())

	assert.Equal(t, schema.Counts{Numeric: 1 + 3 + 16, Text: 1, Image: 1}, sd.Counts())
	assert.Equal(t, fx.block.Hash, sd.Hash())
}

func TestSceneData_ApplyCPUInSchemaOrder(t *testing.T) {
	fx := newFixture(t, "Gain", "Offset", "Title", "Camera")
	sd := New(fx.block, fx.bindings, log.NewNop())

	m := mgl32.Translate3D(4, 5, 6)
	numeric := append([]float32{0.5, 1, 2, 3}, m[:]...)
	require.NoError(t, sd.SetFrame(numeric, []string{"hello"}))
	require.NoError(t, sd.ApplyCPU())

	assert.Equal(t, float32(0.5), fx.obj.Gain)
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, fx.obj.Offset)
	assert.Equal(t, "hello", fx.obj.Title)
	assert.Equal(t, m, fx.obj.Camera)
}

func TestSceneData_UnboundSpanKeepsOffsets(t *testing.T) {
	fx := newFixture(t, "Offset", "Gain")
	// Drop the Offset binding: its three slots must still be skipped.
	sd := New(fx.block, fx.bindings[1:], log.NewNop())

	require.NoError(t, sd.SetFrame([]float32{9, 9, 9, 0.25}, nil))
	require.NoError(t, sd.ApplyCPU())

	assert.Equal(t, mgl32.Vec3{}, fx.obj.Offset)
	assert.Equal(t, float32(0.25), fx.obj.Gain)
}

func TestSceneData_SetFrameSizeMismatch(t *testing.T) {
	fx := newFixture(t, "Gain")
	sd := New(fx.block, fx.bindings, log.NewNop())

	require.NoError(t, sd.SetFrame([]float32{0.75}, nil))
	err := sd.SetFrame([]float32{1, 2}, nil)
	assert.ErrorIs(t, err, ErrSizeMismatch)

	require.NoError(t, sd.ApplyCPU())
	assert.Equal(t, float32(0.75), fx.obj.Gain)
}

func TestSceneData_ApplyGPU(t *testing.T) {
	fx := newFixture(t, "Gain", "Screen", "Visible")
	sd := New(fx.block, fx.bindings, log.NewNop())

	alloc := texture.NewMemoryAllocator()
	tex, err := alloc.Create(texture.Descriptor{Width: 4, Height: 4, Format: texture.FormatBGRA8})
	require.NoError(t, err)

	require.NoError(t, sd.SetImage(0, tex))
	assert.ErrorIs(t, sd.SetImage(1, tex), ErrImageIndex)
	require.NoError(t, sd.ApplyGPU())
	assert.Equal(t, tex.Handle, fx.obj.Screen.Source())

	sd.ClearImages()
	require.NoError(t, sd.ApplyGPU())
	assert.Equal(t, 1, fx.obj.Screen.Blits())
}

func TestSceneData_PresenterKeys(t *testing.T) {
	block := schema.NewScene("Stage", []schema.Parameter{
		{Key: schema.MakeKey(0, "DebugWindowPresenter.Selected", "0"), Type: schema.TypeNumber},
		{Key: schema.MakeKey(1, "DebugWindowPresenter.ResizeStrategy", "0"), Type: schema.TypeNumber},
		{Key: "garbage", Type: schema.TypeText},
	})
	sd := New(block, nil, log.NewNop())
	assert.Len(t, sd.spans, 3)
	assert.Equal(t, schema.Counts{Numeric: 2, Text: 1}, sd.Counts())
}
