package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type marker struct{ id int }

func buildStage() *Scene {
	return New("Stage", 0,
		NewObject("Rig", nil,
			NewObject("Camera", &marker{id: 1}),
			NewObject("Light", &marker{id: 2}),
		),
		NewObject("Floor", &marker{id: 3}),
	)
}

func TestScene_Find(t *testing.T) {
	s := buildStage()

	o, ok := s.Find("Rig/Light")
	require.True(t, ok)
	assert.Equal(t, 2, o.Value.(*marker).id)

	_, ok = s.Find("Rig/Missing")
	assert.False(t, ok)
	_, ok = s.Find("")
	assert.False(t, ok)
}

func TestScene_WalkOrder(t *testing.T) {
	var paths []string
	buildStage().Walk(func(path string, _ *Object) bool {
		paths = append(paths, path)
		return true
	})
	assert.Equal(t, []string{"Rig", "Rig/Camera", "Rig/Light", "Floor"}, paths)
}

func TestScene_WalkStops(t *testing.T) {
	count := 0
	buildStage().Walk(func(string, *Object) bool {
		count++
		return count < 2
	})
	assert.Equal(t, 2, count)
}

func TestMerge_SkipsDisabled(t *testing.T) {
	a := buildStage()
	b := New("Backstage", 1, NewObject("Crate", &marker{id: 4}))
	c := New("Hidden", 2, NewObject("Ghost", &marker{id: 5}))
	c.Enabled = false

	merged := Merge("Default", a, b, c)
	ids := []int{}
	for _, m := range Collect[*marker](merged) {
		ids = append(ids, m.id)
	}
	assert.Equal(t, []int{1, 2, 3, 4}, ids)
	assert.Equal(t, "Default", merged.Name)
}
