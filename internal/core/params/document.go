package params

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Document is the persisted form of a List. The first group is the default
// group; its name is ignored on load.
type Document struct {
	GUID   string          `json:"guid" yaml:"guid"`
	NextID int             `json:"nextId,omitempty" yaml:"next_id,omitempty"`
	Groups []GroupDocument `json:"groups" yaml:"groups"`
}

type GroupDocument struct {
	Name       string              `json:"name" yaml:"name"`
	Disabled   bool                `json:"disabled,omitempty" yaml:"disabled,omitempty"`
	Parameters []ParameterDocument `json:"parameters" yaml:"parameters"`
}

type ParameterDocument struct {
	ID       int    `json:"id" yaml:"id"`
	Name     string `json:"name" yaml:"name"`
	Disabled bool   `json:"disabled,omitempty" yaml:"disabled,omitempty"`
	Target   Target `json:"target" yaml:"target"`
}

// LoadJSON loads a parameter list from a JSON reader.
func LoadJSON(r io.Reader) (*List, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, err
	}
	return FromDocument(doc)
}

// LoadYAML loads a parameter list from a YAML reader.
func LoadYAML(r io.Reader) (*List, error) {
	var doc Document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, err
	}
	return FromDocument(doc)
}

func FromDocument(doc Document) (*List, error) {
	l := NewList()
	if doc.GUID != "" {
		guid, err := uuid.Parse(doc.GUID)
		if err != nil {
			return nil, fmt.Errorf("params: guid: %w", err)
		}
		l.GUID = guid
	}

	seen := make(map[int]struct{})
	maxID := InternalIDCount - 1
	for i, gd := range doc.Groups {
		g := l.DefaultGroup()
		if i > 0 {
			g = l.AddGroup(gd.Name)
		}
		g.Enabled = !gd.Disabled

		for _, pd := range gd.Parameters {
			if pd.ID < InternalIDCount {
				return nil, fmt.Errorf("%w: %d", ErrReservedID, pd.ID)
			}
			if _, dup := seen[pd.ID]; dup {
				return nil, fmt.Errorf("%w: %d", ErrDuplicateID, pd.ID)
			}
			seen[pd.ID] = struct{}{}
			maxID = max(maxID, pd.ID)

			g.Parameters = append(g.Parameters, &Parameter{
				ID:      pd.ID,
				Name:    pd.Name,
				Enabled: !pd.Disabled,
				Target:  pd.Target,
			})
		}
	}
	l.nextID = max(doc.NextID, maxID+1, InternalIDCount)
	return l, nil
}

func (l *List) Document() Document {
	doc := Document{GUID: l.GUID.String(), NextID: l.nextID}
	for _, g := range l.Groups {
		gd := GroupDocument{Name: g.Name, Disabled: !g.Enabled, Parameters: []ParameterDocument{}}
		for _, p := range g.Parameters {
			gd.Parameters = append(gd.Parameters, ParameterDocument{
				ID:       p.ID,
				Name:     p.Name,
				Disabled: !p.Enabled,
				Target:   p.Target,
			})
		}
		doc.Groups = append(doc.Groups, gd)
	}
	return doc
}

func (l *List) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(l.Document()); err != nil {
		return err
	}
	return enc.Close()
}
