package schema

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

var (
	ErrDecode = errors.New("schema: decode failed")
	ErrEncode = errors.New("schema: encode failed")
)

func Encode(w io.Writer, s *Schema) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("%w: %v", ErrEncode, err)
	}
	return nil
}

func Decode(r io.Reader) (*Schema, error) {
	var s Schema
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	s.normalize()
	return &s, nil
}

// normalize restores the in-memory types JSON decoding loses: numeric
// defaults come back as float64, missing slices as nil.
func (s *Schema) normalize() {
	if s.Channels == nil {
		s.Channels = []string{}
	}
	for i := range s.Scenes {
		sc := &s.Scenes[i]
		if sc.Parameters == nil {
			sc.Parameters = []Parameter{}
		}
		for j := range sc.Parameters {
			p := &sc.Parameters[j]
			if f, ok := p.DefaultValue.(float64); ok {
				p.DefaultValue = float32(f)
			}
		}
	}
}

// Loader reads the schema of the current build.
type Loader interface {
	LoadSchema(ctx context.Context) (*Schema, error)
}

// Saver persists a generated schema.
type Saver interface {
	SaveSchema(ctx context.Context, s *Schema) error
}

var (
	_ Loader = FileStore{}
	_ Saver  = FileStore{}
)

// FileStore persists the schema as a JSON file. It satisfies the schema half
// of the device service for offline generation.
type FileStore struct {
	Path string
}

func (f FileStore) LoadSchema(_ context.Context) (*Schema, error) {
	file, err := os.Open(f.Path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()
	return Decode(file)
}

func (f FileStore) SaveSchema(_ context.Context, s *Schema) error {
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o755); err != nil {
		return err
	}
	tmp := f.Path + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err = Encode(file, s); err != nil {
		_ = file.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err = file.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, f.Path)
}
