package schema

import (
	"fmt"
	"strings"
)

// SceneControl selects how scenes map onto schema blocks.
type SceneControl uint8

const (
	// Manual merges every scene into one block; the device cannot switch scenes.
	Manual SceneControl = iota
	// Selection emits one block per build scene and lets the device pick.
	Selection
)

func (m SceneControl) String() string {
	switch m {
	case Manual:
		return "manual"
	case Selection:
		return "selection"
	default:
		return fmt.Sprintf("SceneControl(%d)", uint8(m))
	}
}

func (m SceneControl) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *SceneControl) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "", "manual":
		*m = Manual
	case "selection":
		*m = Selection
	default:
		return fmt.Errorf("unknown scene control %q", text)
	}
	return nil
}
