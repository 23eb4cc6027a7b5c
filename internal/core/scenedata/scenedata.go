// Package scenedata holds the flat per-frame buffers of one schema block and
// distributes them to the bound adapters.
package scenedata

import (
	"errors"
	"fmt"

	"github.com/zeusync/paramsync/internal/core/adapter"
	"github.com/zeusync/paramsync/internal/core/observability/log"
	"github.com/zeusync/paramsync/internal/core/params"
	"github.com/zeusync/paramsync/internal/core/schema"
	"github.com/zeusync/paramsync/internal/core/texture"
)

var (
	ErrSizeMismatch = errors.New("scenedata: buffer size does not match schema block")
	ErrImageIndex   = errors.New("scenedata: image index out of range")
)

// span is the contiguous run of schema fields owned by one parameter id.
type span struct {
	id      int
	adapter adapter.Adapter

	numeric, numericLen int
	text, textLen       int
	image, imageLen     int
}

type SceneData struct {
	name    string
	hash    uint64
	counts  schema.Counts
	numeric []float32
	text    []string
	images  []*texture.Texture
	spans   []span
}

// New sizes the buffers exactly from block. Fields whose id has no binding
// still occupy their slots so later spans keep their offsets.
func New(block schema.Scene, bindings []params.Binding, logger log.Log) *SceneData {
	if logger == nil {
		logger = log.NewNop()
	}
	byID := make(map[int]adapter.Adapter, len(bindings))
	for _, b := range bindings {
		byID[b.ID] = b.Adapter
	}

	sd := &SceneData{
		name:   block.Name,
		hash:   block.Hash,
		counts: block.Counts(),
	}
	sd.numeric = make([]float32, sd.counts.Numeric)
	sd.text = make([]string, sd.counts.Text)
	sd.images = make([]*texture.Texture, sd.counts.Image)

	seen := make(map[int]bool)
	var off schema.Counts
	for i, p := range block.Parameters {
		id, ok := schema.ResolveID(p.Key)
		if !ok {
			id = -1
			logger.Warn("schema key has no parameter id", log.String("key", p.Key))
		}

		if i == 0 || id < 0 || sd.spans[len(sd.spans)-1].id != id {
			s := span{id: id, numeric: off.Numeric, text: off.Text, image: off.Image}
			if id >= 0 && !seen[id] {
				s.adapter = byID[id]
				seen[id] = true
			} else if id >= 0 {
				logger.Warn("parameter fields are not contiguous in schema block", log.Int("id", id), log.String("scene", block.Name))
			}
			sd.spans = append(sd.spans, s)
		}

		s := &sd.spans[len(sd.spans)-1]
		s.numericLen += p.Type.NumericSlots()
		s.textLen += p.Type.TextSlots()
		s.imageLen += p.Type.ImageSlots()
		off.Numeric += p.Type.NumericSlots()
		off.Text += p.Type.TextSlots()
		off.Image += p.Type.ImageSlots()
	}

	unbound := 0
	for _, s := range sd.spans {
		if s.adapter == nil {
			unbound++
		}
	}
	if unbound > 0 {
		logger.Debug("schema fields without runtime adapter", log.String("scene", block.Name), log.Int("spans", unbound))
	}
	return sd
}

func (sd *SceneData) Name() string { return sd.name }

func (sd *SceneData) Hash() uint64 { return sd.hash }

func (sd *SceneData) Counts() schema.Counts { return sd.counts }

// SetFrame copies one frame of values. Buffers of the wrong size are
// rejected without touching the current contents.
func (sd *SceneData) SetFrame(numeric []float32, text []string) error {
	if len(numeric) != len(sd.numeric) || len(text) != len(sd.text) {
		return fmt.Errorf("%w: got %d numeric/%d text, want %d/%d",
			ErrSizeMismatch, len(numeric), len(text), len(sd.numeric), len(sd.text))
	}
	copy(sd.numeric, numeric)
	copy(sd.text, text)
	return nil
}

// ApplyCPU pushes numeric and text values to adapters in schema order.
func (sd *SceneData) ApplyCPU() error {
	var errs []error
	for _, s := range sd.spans {
		if s.adapter == nil || s.numericLen+s.textLen == 0 {
			continue
		}
		d := adapter.NewCPUData(
			sd.numeric[s.numeric:s.numeric+s.numericLen],
			sd.text[s.text:s.text+s.textLen],
		)
		if err := s.adapter.ApplyCPU(d); err != nil {
			errs = append(errs, fmt.Errorf("parameter %d: %w", s.id, err))
		}
	}
	return errors.Join(errs...)
}

// SetImage stores the filled texture for image slot i. A nil texture marks a
// skipped fill.
func (sd *SceneData) SetImage(i int, t *texture.Texture) error {
	if i < 0 || i >= len(sd.images) {
		return fmt.Errorf("%w: %d", ErrImageIndex, i)
	}
	sd.images[i] = t
	return nil
}

func (sd *SceneData) ClearImages() {
	clear(sd.images)
}

func (sd *SceneData) ApplyGPU() error {
	var errs []error
	for _, s := range sd.spans {
		if s.adapter == nil || s.imageLen == 0 {
			continue
		}
		d := adapter.NewGPUData(sd.images[s.image : s.image+s.imageLen])
		if err := s.adapter.ApplyGPU(d); err != nil {
			errs = append(errs, fmt.Errorf("parameter %d: %w", s.id, err))
		}
	}
	return errors.Join(errs...)
}
