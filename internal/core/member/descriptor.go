package member

import (
	"fmt"
	"strings"
)

// Kind selects how a Descriptor reaches its value on the target object.
type Kind uint8

const (
	KindInvalid Kind = iota
	// KindField addresses an exported struct field.
	KindField
	// KindProperty addresses a getter method Name() and an optional SetName(v).
	KindProperty
	// KindThis addresses the target object itself. It can never be assigned.
	KindThis
)

func (k Kind) String() string {
	switch k {
	case KindField:
		return "field"
	case KindProperty:
		return "property"
	case KindThis:
		return "this"
	default:
		return "invalid"
	}
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "field":
		*k = KindField
	case "property":
		*k = KindProperty
	case "this":
		*k = KindThis
	case "", "invalid":
		*k = KindInvalid
	default:
		return fmt.Errorf("%w: unknown member kind %q", ErrInvalidDescriptor, text)
	}
	return nil
}

// Descriptor is the persisted, inert description of a member. It holds no
// reflection state; Resolve turns it into an Accessor during the bind phase.
type Descriptor struct {
	Kind Kind   `yaml:"kind" json:"kind"`
	Name string `yaml:"name,omitempty" json:"name,omitempty"`
}

func Field(name string) Descriptor {
	return Descriptor{Kind: KindField, Name: name}
}

func Property(name string) Descriptor {
	return Descriptor{Kind: KindProperty, Name: name}
}

func This() Descriptor {
	return Descriptor{Kind: KindThis}
}

// IsConfigured reports whether the descriptor names something resolvable.
func (d Descriptor) IsConfigured() bool {
	switch d.Kind {
	case KindThis:
		return true
	case KindField, KindProperty:
		return d.Name != ""
	default:
		return false
	}
}

func (d Descriptor) String() string {
	if d.Kind == KindThis {
		return "this"
	}
	return d.Kind.String() + ":" + d.Name
}
