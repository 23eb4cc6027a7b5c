package volume

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParameter_Resolve(t *testing.T) {
	p := New[float32](2)
	assert.Equal(t, float32(1), p.Resolve(1))

	p.Override = true
	assert.Equal(t, float32(2), p.Resolve(1))

	var nilParam *Parameter[float32]
	assert.Equal(t, float32(3), nilParam.Resolve(3))
}

func TestParameter_BoxedType(t *testing.T) {
	p := Clamped(5, 0, 10)
	assert.Equal(t, reflect.TypeFor[int](), p.BoxedType())
	assert.Equal(t, 0, *p.Min)
	assert.Equal(t, 10, *p.Max)
}
