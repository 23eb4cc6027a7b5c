// Package devicetest provides a scripted in-memory device for tests and
// offline runs.
package devicetest

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/zeusync/paramsync/internal/core/device"
	"github.com/zeusync/paramsync/internal/core/schema"
	"github.com/zeusync/paramsync/internal/core/texture"
)

var _ device.Service = (*Service)(nil)

// Await is one scripted AwaitFrameData result.
type Await struct {
	Frame device.FrameData
	Err   error
}

// Frame returns a successful await for scene with the given block hash.
func Frame(scene uint32, hash uint64) Await {
	return Await{Frame: device.FrameData{Scene: scene, Hash: hash}}
}

// Signal returns an await that fails with err.
func Signal(err error) Await {
	return Await{Err: err}
}

type frame struct {
	numeric []float32
	text    []string
	images  []device.ImageFrameData
	err     error
}

// Fill records one FillImageResource call.
type Fill struct {
	ImageID uint64
	Target  texture.Handle
}

// Calls counts invocations per operation.
type Calls struct {
	Load, Save, Channels, Await, Numeric, Images, Fill int
}

// Service replays scripted results. Awaits are consumed in order; once the
// script is exhausted AwaitFrameData waits for the timeout and reports
// device.ErrTimeout. Channel scripts advance per call and stick on the last
// entry.
type Service struct {
	mu sync.Mutex

	schema   *schema.Schema
	loadErr  error
	saveErr  error
	saved    []*schema.Schema
	channels [][]device.StreamDescription
	awaits   []Await
	frames   map[uint64]*frame
	pixels   map[uint64][]byte
	writer   texture.Writer
	fills    []Fill
	calls    Calls
	closed   bool
}

func New(s *schema.Schema) *Service {
	return &Service{
		schema: s,
		frames: make(map[uint64]*frame),
		pixels: make(map[uint64][]byte),
	}
}

func (s *Service) SetLoadError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadErr = err
}

func (s *Service) SetSaveError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveErr = err
}

// ScriptChannels appends channel sets returned by successive
// GetOutputChannels calls.
func (s *Service) ScriptChannels(sets ...[]device.StreamDescription) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.channels = append(s.channels, sets...)
}

func (s *Service) ScriptAwait(results ...Await) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.awaits = append(s.awaits, results...)
}

func (s *Service) SetFrame(hash uint64, numeric []float32, text []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f := s.frameFor(hash)
	f.numeric = slices.Clone(numeric)
	f.text = slices.Clone(text)
}

func (s *Service) SetImages(hash uint64, images ...device.ImageFrameData) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frameFor(hash).images = slices.Clone(images)
}

// SetFrameError makes every parameter fetch for hash fail with err.
func (s *Service) SetFrameError(hash uint64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frameFor(hash).err = err
}

// SetPixels registers the content copied by FillImageResource for imageID.
// Pixels are written through w when the target allocator supports it.
func (s *Service) SetPixels(imageID uint64, pixels []byte, w texture.Writer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pixels[imageID] = slices.Clone(pixels)
	s.writer = w
}

func (s *Service) frameFor(hash uint64) *frame {
	f, ok := s.frames[hash]
	if !ok {
		f = &frame{}
		s.frames[hash] = f
	}
	return f
}

func (s *Service) LoadSchema(_ context.Context) (*schema.Schema, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls.Load++
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	if s.schema == nil {
		return nil, device.StatusNotFound.Err("load schema")
	}
	return s.schema, nil
}

func (s *Service) SaveSchema(_ context.Context, sc *schema.Schema) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls.Save++
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved = append(s.saved, sc)
	s.schema = sc
	return nil
}

func (s *Service) GetOutputChannels(_ context.Context) ([]device.StreamDescription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls.Channels++
	if len(s.channels) == 0 {
		return nil, nil
	}
	out := s.channels[0]
	if len(s.channels) > 1 {
		s.channels = s.channels[1:]
	}
	return slices.Clone(out), nil
}

func (s *Service) AwaitFrameData(ctx context.Context, timeout time.Duration) (device.FrameData, error) {
	s.mu.Lock()
	s.calls.Await++
	if s.closed {
		s.mu.Unlock()
		return device.FrameData{}, device.ErrQuit
	}
	if len(s.awaits) > 0 {
		next := s.awaits[0]
		s.awaits = s.awaits[1:]
		s.mu.Unlock()
		return next.Frame, next.Err
	}
	s.mu.Unlock()

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return device.FrameData{}, ctx.Err()
	case <-timer.C:
		return device.FrameData{}, device.ErrTimeout
	}
}

func (s *Service) GetFrameNumericAndText(_ context.Context, hash uint64, numeric, text int) ([]float32, []string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls.Numeric++
	f, ok := s.frames[hash]
	if !ok {
		return nil, nil, device.StatusNotFound.Err("get frame parameters")
	}
	if f.err != nil {
		return nil, nil, f.err
	}
	if len(f.numeric) != numeric || len(f.text) != text {
		return nil, nil, device.StatusInvalidParameters.Err("get frame parameters")
	}
	return slices.Clone(f.numeric), slices.Clone(f.text), nil
}

func (s *Service) GetFrameImageDescriptors(_ context.Context, hash uint64, n int) ([]device.ImageFrameData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls.Images++
	f, ok := s.frames[hash]
	if !ok {
		return nil, device.StatusNotFound.Err("get frame images")
	}
	if len(f.images) != n {
		return nil, device.StatusInvalidParameters.Err("get frame images")
	}
	return slices.Clone(f.images), nil
}

func (s *Service) FillImageResource(_ context.Context, imageID uint64, dst *texture.Texture) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls.Fill++
	s.fills = append(s.fills, Fill{ImageID: imageID, Target: dst.Handle})
	if px, ok := s.pixels[imageID]; ok && s.writer != nil {
		return s.writer.Write(dst, px)
	}
	return nil
}

func (s *Service) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *Service) Calls() Calls {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func (s *Service) Saved() []*schema.Schema {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.saved)
}

func (s *Service) Fills() []Fill {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.fills)
}

func (s *Service) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
