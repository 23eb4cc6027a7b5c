// Package capture manages the render sources feeding the device output
// streams.
package capture

import (
	"errors"
	"fmt"
	"sync"

	"github.com/zeusync/paramsync/internal/core/device"
	"github.com/zeusync/paramsync/internal/core/observability/log"
	"github.com/zeusync/paramsync/internal/core/scene"
)

var ErrSpawn = errors.New("capture: spawn failed")

// Template is a camera authored in a scene. Enabled templates name the
// output channels published in the schema; at runtime they are only cloned
// and never render themselves.
type Template struct {
	mu      sync.Mutex
	name    string
	enabled bool
	main    bool
}

func NewTemplate(name string, main bool) *Template {
	return &Template{name: name, enabled: true, main: main}
}

func (t *Template) Name() string { return t.name }
func (t *Template) Main() bool   { return t.main }

func (t *Template) Enabled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.enabled
}

func (t *Template) SetEnabled(v bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.enabled = v
}

// Templates collects the templates of a scene in walk order.
func Templates(sc *scene.Scene) []*Template {
	return scene.Collect[*Template](sc)
}

// Channels returns the names of enabled templates across scenes, without
// duplicates, in first seen order.
func Channels(scenes ...*scene.Scene) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, sc := range scenes {
		if sc == nil || !sc.Enabled {
			continue
		}
		for _, t := range Templates(sc) {
			if !t.Enabled() {
				continue
			}
			if _, ok := seen[t.Name()]; ok {
				continue
			}
			seen[t.Name()] = struct{}{}
			out = append(out, t.Name())
		}
	}
	return out
}

// Source renders one output stream.
type Source interface {
	Stream() device.StreamDescription
	// Template is the template the source was cloned from, or nil.
	Template() *Template
	Close() error
}

// Spawner creates the source for a stream from tmpl, which is nil when no
// template could be matched.
type Spawner func(stream device.StreamDescription, tmpl *Template) (Source, error)

type camera struct {
	stream device.StreamDescription
	tmpl   *Template
}

func (c *camera) Stream() device.StreamDescription { return c.stream }
func (c *camera) Template() *Template              { return c.tmpl }
func (c *camera) Close() error                     { return nil }

// DefaultSpawner creates a bare source that only records its stream.
func DefaultSpawner(stream device.StreamDescription, tmpl *Template) (Source, error) {
	return &camera{stream: stream, tmpl: tmpl}, nil
}

// SyncResult reports what a Rig.Sync changed.
type SyncResult struct {
	Kept    int
	Spawned int
	Closed  int
}

// Rig owns one source per output stream.
type Rig struct {
	mu      sync.Mutex
	spawn   Spawner
	sources []Source
	logger  log.Log
}

type RigOption func(*Rig)

func WithSpawner(s Spawner) RigOption {
	return func(r *Rig) {
		r.spawn = s
	}
}

func WithLogger(logger log.Log) RigOption {
	return func(r *Rig) {
		r.logger = logger
	}
}

func NewRig(opts ...RigOption) *Rig {
	r := &Rig{spawn: DefaultSpawner}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = log.NewNop()
	}
	r.logger = r.logger.With(log.String("component", "capture_rig"))
	return r
}

// Sync reconciles the sources with streams. A source whose stream
// description is unchanged and whose template still matches in templates is
// kept as is. Other streams are cloned from the template named like their
// channel, else from the main template, else spawned bare. Every template
// is disabled afterwards.
func (r *Rig) Sync(streams []device.StreamDescription, templates []*Template) (SyncResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var res SyncResult
	existing := make(map[string]Source, len(r.sources))
	for _, s := range r.sources {
		existing[s.Stream().Name] = s
	}

	next := make([]Source, 0, len(streams))
	var errs []error
	for _, stream := range streams {
		tmpl := match(stream.Channel, templates)
		if s, ok := existing[stream.Name]; ok && s.Stream() == stream && s.Template() == tmpl {
			delete(existing, stream.Name)
			next = append(next, s)
			res.Kept++
			continue
		}

		s, err := r.spawn(stream, tmpl)
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: %s: %v", ErrSpawn, stream.Name, err))
			continue
		}
		next = append(next, s)
		res.Spawned++

		fields := []log.Field{log.Stringer("stream", stream)}
		if tmpl != nil {
			fields = append(fields, log.String("template", tmpl.Name()))
		}
		r.logger.Debug("capture source spawned", fields...)
	}

	for _, s := range r.sources {
		if _, stale := existing[s.Stream().Name]; !stale {
			continue
		}
		if err := s.Close(); err != nil {
			r.logger.Warn("failed to close capture source", log.String("stream", s.Stream().Name), log.Error(err))
		}
		res.Closed++
	}
	r.sources = next

	for _, t := range templates {
		t.SetEnabled(false)
	}

	r.logger.Info("capture sources synced",
		log.Int("streams", len(streams)),
		log.Int("kept", res.Kept),
		log.Int("spawned", res.Spawned),
		log.Int("closed", res.Closed),
	)
	return res, errors.Join(errs...)
}

func match(channel string, templates []*Template) *Template {
	var main *Template
	for _, t := range templates {
		if t.Name() == channel {
			return t
		}
		if main == nil && t.Main() {
			main = t
		}
	}
	return main
}

// Sources returns the current sources in stream order.
func (r *Rig) Sources() []Source {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Source, len(r.sources))
	copy(out, r.sources)
	return out
}

// Close releases every source.
func (r *Rig) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var errs []error
	for _, s := range r.sources {
		errs = append(errs, s.Close())
	}
	r.sources = nil
	return errors.Join(errs...)
}
