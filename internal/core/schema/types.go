package schema

import "fmt"

// ParameterType is the wire type of a schema field.
type ParameterType int

const (
	TypeNumber ParameterType = iota
	TypeImage
	TypePose
	TypeTransform
	TypeText
)

// MatrixSize is the number of numeric slots a pose or transform consumes.
const MatrixSize = 16

func (t ParameterType) String() string {
	switch t {
	case TypeNumber:
		return "number"
	case TypeImage:
		return "image"
	case TypePose:
		return "pose"
	case TypeTransform:
		return "transform"
	case TypeText:
		return "text"
	default:
		return fmt.Sprintf("ParameterType(%d)", int(t))
	}
}

// NumericSlots is how many numeric buffer entries one field of this type reads.
func (t ParameterType) NumericSlots() int {
	switch t {
	case TypeNumber:
		return 1
	case TypePose, TypeTransform:
		return MatrixSize
	default:
		return 0
	}
}

func (t ParameterType) TextSlots() int {
	if t == TypeText {
		return 1
	}
	return 0
}

func (t ParameterType) ImageSlots() int {
	if t == TypeImage {
		return 1
	}
	return 0
}

type DmxType int

const (
	DmxDefault DmxType = iota
	Dmx8
	Dmx16BE
)

// Parameter is one remotely controllable field. The JSON names are the ones
// the device expects.
type Parameter struct {
	Group        string        `json:"group"`
	DisplayName  string        `json:"displayName"`
	Key          string        `json:"key"`
	Type         ParameterType `json:"type"`
	Min          float32       `json:"min"`
	Max          float32       `json:"max"`
	Step         float32       `json:"step"`
	DefaultValue any           `json:"defaultValue"`
	Options      []string      `json:"options"`
	DmxOffset    int           `json:"dmxOffset"`
	DmxType      DmxType       `json:"dmxType"`
}

// Scene is the parameter block for one scene.
type Scene struct {
	Name       string      `json:"name"`
	Hash       uint64      `json:"hash"`
	Parameters []Parameter `json:"parameters"`
}

type Schema struct {
	Channels []string `json:"channels"`
	Scenes   []Scene  `json:"scenes"`
}

// Counts is the buffer sizing derived from a scene block.
type Counts struct {
	Numeric int
	Text    int
	Image   int
}

func (s *Scene) Counts() Counts {
	var c Counts
	for _, p := range s.Parameters {
		c.Numeric += p.Type.NumericSlots()
		c.Text += p.Type.TextSlots()
		c.Image += p.Type.ImageSlots()
	}
	return c
}

// Default is used when no schema has been generated yet: one empty block
// named "Default".
func Default() *Schema {
	return &Schema{
		Channels: []string{},
		Scenes:   []Scene{NewScene(DefaultSceneName, nil)},
	}
}

const DefaultSceneName = "Default"

func NewScene(name string, params []Parameter) Scene {
	if params == nil {
		params = []Parameter{}
	}
	s := Scene{Name: name, Parameters: params}
	s.Rehash()
	return s
}

// SceneByHash returns the block index for hash, or -1.
func (s *Schema) SceneByHash(hash uint64) int {
	for i := range s.Scenes {
		if s.Scenes[i].Hash == hash {
			return i
		}
	}
	return -1
}
