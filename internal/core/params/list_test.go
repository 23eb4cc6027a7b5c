package params

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeusync/paramsync/internal/core/adapter"
	"github.com/zeusync/paramsync/internal/core/member"
	"github.com/zeusync/paramsync/internal/core/scene"
)

type lamp struct {
	Intensity float32
	Label     string
	Broken    chan int
}

func stageWith(list *List, l *lamp) *scene.Scene {
	return scene.New("Stage", 0,
		scene.NewObject("Params", list),
		scene.NewObject("Rig", nil, scene.NewObject("Lamp", l)),
	)
}

func TestList_DefaultGroupFirst(t *testing.T) {
	l := NewList()
	require.Len(t, l.Groups, 1)
	assert.True(t, l.DefaultGroup().IsDefault())
	assert.Equal(t, DefaultGroupSchemaName, l.DefaultGroup().SchemaName())
	assert.Equal(t, DefaultGroupDisplayName, l.DefaultGroup().Name)

	g := l.AddGroup("Lights")
	assert.Equal(t, "Lights", g.SchemaName())

	assert.ErrorIs(t, l.RemoveGroup(l.DefaultGroup()), ErrDefaultGroup)
	assert.ErrorIs(t, l.MoveGroup(g, 0), ErrDefaultGroup)
	assert.ErrorIs(t, l.MoveGroup(l.DefaultGroup(), 1), ErrDefaultGroup)
	require.NoError(t, l.RemoveGroup(g))
	assert.ErrorIs(t, l.RemoveGroup(g), ErrGroupNotFound)
}

func TestList_MoveGroup(t *testing.T) {
	l := NewList()
	a := l.AddGroup("A")
	b := l.AddGroup("B")
	c := l.AddGroup("C")

	require.NoError(t, l.MoveGroup(c, 1))
	assert.Equal(t, []*Group{l.DefaultGroup(), c, a, b}, l.Groups)

	require.NoError(t, l.MoveGroup(c, 99))
	assert.Equal(t, []*Group{l.DefaultGroup(), a, b, c}, l.Groups)
}

func TestList_ReserveIDNeverReused(t *testing.T) {
	l := NewList()
	g := l.AddGroup("G")
	p1, err := l.AddParameter(g, "One", Target{})
	require.NoError(t, err)
	require.NoError(t, l.RemoveGroup(g))

	p2, err := l.AddParameter(l.DefaultGroup(), "Two", Target{})
	require.NoError(t, err)

	assert.Equal(t, InternalIDCount, p1.ID)
	assert.Equal(t, InternalIDCount+1, p2.ID)
}

func TestList_AddParameterUniqueNames(t *testing.T) {
	l := NewList()
	a, _ := l.AddParameter(l.DefaultGroup(), "Lamp", Target{})
	b, _ := l.AddParameter(l.DefaultGroup(), "Lamp", Target{})
	c, _ := l.AddParameter(l.AddGroup("Other"), "Lamp", Target{})

	assert.Equal(t, "Lamp", a.Name)
	assert.Equal(t, "Lamp (1)", b.Name)
	assert.Equal(t, "Lamp (2)", c.Name)

	_, err := l.AddParameter(&Group{}, "x", Target{})
	assert.ErrorIs(t, err, ErrGroupNotFound)
}

func TestList_OrderedForSchema(t *testing.T) {
	l := NewList()
	p1, _ := l.AddParameter(l.DefaultGroup(), "p1", Target{})
	g2 := l.AddGroup("g2")
	p2, _ := l.AddParameter(g2, "p2", Target{})
	p3, _ := l.AddParameter(g2, "p3", Target{})
	g3 := l.AddGroup("g3")
	p4, _ := l.AddParameter(g3, "p4", Target{})
	p3.Enabled = false
	g3.Enabled = false

	var got []*Parameter
	for _, e := range l.OrderedForSchema() {
		got = append(got, e.Parameter)
	}
	assert.Equal(t, []*Parameter{p1, p2}, got)
	assert.NotContains(t, got, p4)
}

func TestList_BindAndBindings(t *testing.T) {
	l := NewList()
	target := &lamp{}
	sc := stageWith(l, target)
	r := adapter.NewDefaultRegistry()

	good, _ := l.AddParameter(l.DefaultGroup(), "Intensity", Target{Object: "Rig/Lamp", Member: member.Field("Intensity")})
	missing, _ := l.AddParameter(l.DefaultGroup(), "Ghost", Target{Object: "Rig/Nothing", Member: member.Field("Intensity")})
	broken, _ := l.AddParameter(l.DefaultGroup(), "Broken", Target{Object: "Rig/Lamp", Member: member.Field("Broken")})
	unset, _ := l.AddParameter(l.DefaultGroup(), "Unset", Target{Object: "Rig/Lamp"})
	label, _ := l.AddParameter(l.DefaultGroup(), "Label", Target{Object: "Rig/Lamp", Member: member.Field("Label")})

	err := l.Bind(sc, r)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrObjectNotFound)
	assert.ErrorIs(t, err, adapter.ErrNoAdapter)
	assert.ErrorIs(t, err, ErrNotConfigured)

	assert.NotNil(t, good.Adapter())
	assert.Nil(t, missing.Adapter())
	assert.Nil(t, broken.Adapter())
	assert.Nil(t, unset.Adapter())

	bindings := l.Bindings()
	require.Len(t, bindings, 2)
	assert.Equal(t, good.ID, bindings[0].ID)
	assert.Equal(t, label.ID, bindings[1].ID)

	label.Enabled = false
	_ = l.Bind(sc, r)
	assert.Nil(t, label.Adapter())
	assert.Len(t, l.Bindings(), 1)
}

func TestParameter_SchemaParameters(t *testing.T) {
	l := NewList()
	sc := stageWith(l, &lamp{Intensity: 0.5})
	p, _ := l.AddParameter(l.DefaultGroup(), "Intensity", Target{Object: "Rig/Lamp", Member: member.Field("Intensity")})
	require.NoError(t, p.Bind(sc, adapter.NewDefaultRegistry()))

	out := p.SchemaParameters(l.DefaultGroup(), l.GUID.String())
	require.Len(t, out, 1)
	assert.Equal(t, "Properties", out[0].Group)
	assert.Equal(t, "Intensity", out[0].DisplayName)
	assert.Equal(t, "100 "+l.GUID.String(), out[0].Key)
	assert.Equal(t, float32(0.5), out[0].DefaultValue)
	assert.Equal(t, -1, out[0].DmxOffset)
}

func TestFindInstance(t *testing.T) {
	empty := scene.New("Empty", 0, scene.NewObject("Nothing", nil))
	_, err := FindInstance(empty)
	assert.ErrorIs(t, err, ErrNoParameterList)

	one := NewList()
	found, err := FindInstance(stageWith(one, &lamp{}))
	require.NoError(t, err)
	assert.Same(t, one, found)

	two := stageWith(NewList(), &lamp{})
	two.Roots = append(two.Roots, scene.NewObject("More", NewList()))
	_, err = FindInstance(two)
	assert.ErrorIs(t, err, ErrMultipleParameterLists)
}

func TestDocument_YAMLRoundTrip(t *testing.T) {
	l := NewList()
	_, _ = l.AddParameter(l.DefaultGroup(), "Intensity", Target{Object: "Rig/Lamp", Member: member.Field("Intensity")})
	g := l.AddGroup("Text")
	p, _ := l.AddParameter(g, "Label", Target{Object: "Rig/Lamp", Member: member.Property("Label")})
	p.Enabled = false
	g.Enabled = false

	var buf bytes.Buffer
	require.NoError(t, l.WriteYAML(&buf))

	loaded, err := LoadYAML(&buf)
	require.NoError(t, err)
	assert.Equal(t, l.Document(), loaded.Document())
	assert.Equal(t, l.ReserveID(), loaded.ReserveID())
}

func TestLoadJSON_Validates(t *testing.T) {
	_, err := LoadJSON(strings.NewReader(`{"groups":[{"name":"d","parameters":[{"id":5,"name":"x"}]}]}`))
	assert.ErrorIs(t, err, ErrReservedID)

	_, err = LoadJSON(strings.NewReader(`{"groups":[{"name":"d","parameters":[{"id":100,"name":"x"},{"id":100,"name":"y"}]}]}`))
	assert.ErrorIs(t, err, ErrDuplicateID)

	l, err := LoadJSON(strings.NewReader(`{"groups":[{"name":"d","parameters":[{"id":140,"name":"x","target":{"object":"A","member":{"kind":"field","name":"X"}}}]}]}`))
	require.NoError(t, err)
	assert.Equal(t, 141, l.ReserveID())
	assert.Equal(t, member.Field("X"), l.DefaultGroup().Parameters[0].Target.Member)
}
