// Package demo builds the sample scenes the paramsync command publishes when
// it runs without a host project.
package demo

import (
	"context"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"github.com/zeusync/paramsync/internal/core/capture"
	"github.com/zeusync/paramsync/internal/core/mathx"
	"github.com/zeusync/paramsync/internal/core/member"
	"github.com/zeusync/paramsync/internal/core/params"
	"github.com/zeusync/paramsync/internal/core/scene"
	"github.com/zeusync/paramsync/internal/core/texture"
	"github.com/zeusync/paramsync/internal/core/volume"
)

// Object paths inside every demo scene.
const (
	ListPath     = "Parameters"
	StagePath    = "Stage"
	KeyLightPath = "Stage/Key Light"
	FillPath     = "Stage/Fill Light"
)

var sceneNames = []string{"Studio", "Arena", "Gallery"}

// MaxScenes is the number of distinct demo scenes.
var MaxScenes = len(sceneNames)

// namespace keeps demo list GUIDs stable between schema generation and
// playback, so published keys keep matching.
var namespace = uuid.MustParse("5b0f6c52-1f0e-4d8b-9a55-0d1c0e2f7a31")

type Blend int

const (
	BlendOpaque Blend = iota
	BlendAdditive
	BlendMultiply
)

func (Blend) EnumNames() []string { return []string{"Opaque", "Additive", "Multiply"} }

type Light struct {
	Intensity float32
	Tint      mathx.Color
	On        bool
	Blend     Blend
}

type Stage struct {
	Title    string
	Offset   mgl32.Vec3
	Spin     mgl32.Quat
	Exposure *volume.Parameter[float32]
	Backdrop *texture.RenderTarget
}

func NewStage() *Stage {
	return &Stage{
		Title:    "paramsync",
		Spin:     mgl32.QuatIdent(),
		Exposure: volume.Clamped[float32](1, 0, 4),
		Backdrop: texture.NewRenderTarget("backdrop"),
	}
}

// ListGUID returns the GUID of the default parameter list of scene index.
func ListGUID(index int) uuid.UUID {
	return uuid.NewSHA1(namespace, []byte(fmt.Sprintf("demo/%d", index)))
}

// DefaultList drives every demo member from one list: stage fields in the
// default group and one group per light.
func DefaultList(index int) *params.List {
	l := params.NewList()
	l.GUID = ListGUID(index)

	add := func(g *params.Group, name, object, field string) {
		// Groups come from l, so AddParameter cannot fail.
		_, _ = l.AddParameter(g, name, params.Target{Object: object, Member: member.Field(field)})
	}

	def := l.DefaultGroup()
	add(def, "Title", StagePath, "Title")
	add(def, "Offset", StagePath, "Offset")
	add(def, "Spin", StagePath, "Spin")
	add(def, "Exposure", StagePath, "Exposure")
	add(def, "Backdrop", StagePath, "Backdrop")

	for _, light := range []struct{ group, path string }{
		{"Key Light", KeyLightPath},
		{"Fill Light", FillPath},
	} {
		g := l.AddGroup(light.group)
		add(g, "Intensity", light.path, "Intensity")
		add(g, "Tint", light.path, "Tint")
		add(g, "On", light.path, "On")
		add(g, "Blend", light.path, "Blend")
	}
	return l
}

// Scenes builds n demo scenes. lists[i], when present and non-nil, is the
// parameter list of scene i; other scenes get DefaultList(i).
func Scenes(n int, lists ...*params.List) []*scene.Scene {
	n = max(1, min(n, MaxScenes))
	out := make([]*scene.Scene, n)
	for i := range n {
		var list *params.List
		if i < len(lists) {
			list = lists[i]
		}
		if list == nil {
			list = DefaultList(i)
		}

		out[i] = scene.New(sceneNames[i], i,
			scene.NewObject(ListPath, list),
			scene.NewObject(StagePath, NewStage(),
				scene.NewObject("Key Light", &Light{Intensity: 1, Tint: mathx.Color{R: 1, G: 1, B: 1, A: 1}, On: true}),
				scene.NewObject("Fill Light", &Light{Intensity: 0.4, Tint: mathx.Color{R: 0.8, G: 0.9, B: 1, A: 1}, On: true}),
			),
			scene.NewObject("Cameras", nil,
				scene.NewObject("Main", capture.NewTemplate("main", true)),
				scene.NewObject("Side", capture.NewTemplate("side", false)),
			),
		)
	}
	return out
}

// SceneActivator is the part of the engine a Loader drives.
type SceneActivator interface {
	LoadScene(sc *scene.Scene) error
}

// Loader switches between prebuilt scenes when the device selects another
// block. Target must be set before the engine runs.
type Loader struct {
	Scenes []*scene.Scene
	Target SceneActivator
}

func (l *Loader) LoadScene(_ context.Context, index int) error {
	if index < 0 || index >= len(l.Scenes) {
		return fmt.Errorf("demo: no scene %d", index)
	}
	return l.Target.LoadScene(l.Scenes[index])
}
