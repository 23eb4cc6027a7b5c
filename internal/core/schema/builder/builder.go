// Package builder generates the schema published to the device from the
// parameter lists placed in the build scenes.
package builder

import (
	"context"
	"errors"
	"fmt"

	"github.com/zeusync/paramsync/internal/core/adapter"
	"github.com/zeusync/paramsync/internal/core/capture"
	"github.com/zeusync/paramsync/internal/core/observability/log"
	"github.com/zeusync/paramsync/internal/core/params"
	"github.com/zeusync/paramsync/internal/core/presenter"
	"github.com/zeusync/paramsync/internal/core/scene"
	"github.com/zeusync/paramsync/internal/core/schema"
)

var (
	ErrDuplicateKey = errors.New("builder: duplicate schema key")
	ErrSaveSchema   = errors.New("builder: failed to save schema")
)

type Builder struct {
	mode      schema.SceneControl
	registry  *adapter.Registry
	presenter *presenter.Presenter
	logger    log.Log
}

type Option func(*Builder)

func WithMode(mode schema.SceneControl) Option {
	return func(b *Builder) {
		b.mode = mode
	}
}

func WithLogger(logger log.Log) Option {
	return func(b *Builder) {
		b.logger = logger
	}
}

// WithDebugPresenter prepends the presenter fields to every block.
func WithDebugPresenter(p *presenter.Presenter) Option {
	return func(b *Builder) {
		b.presenter = p
	}
}

func New(r *adapter.Registry, opts ...Option) *Builder {
	b := &Builder{registry: r, mode: schema.Manual}
	for _, opt := range opts {
		opt(b)
	}
	if b.logger == nil {
		b.logger = log.NewNop()
	}
	b.logger = b.logger.With(log.String("component", "schema_builder"))
	return b
}

// Build produces the schema for scenes. More than one parameter list in a
// scene aborts the build; everything else that cannot be published is
// skipped with a warning.
func (b *Builder) Build(scenes []*scene.Scene) (*schema.Schema, error) {
	s := &schema.Schema{Channels: capture.Channels(scenes...)}
	keys := make(map[string]string)

	switch b.mode {
	case schema.Selection:
		for i, sc := range scenes {
			if sc == nil || !sc.Enabled {
				name := fmt.Sprintf("scene %d", i)
				if sc != nil {
					name = sc.Name
				}
				s.Scenes = append(s.Scenes, schema.NewScene(name, nil))
				continue
			}
			block, err := b.block(sc, i, s.Channels, keys)
			if err != nil {
				return nil, err
			}
			s.Scenes = append(s.Scenes, block)
		}
	default:
		merged := scene.Merge(schema.DefaultSceneName, scenes...)
		block, err := b.block(merged, 0, s.Channels, keys)
		if err != nil {
			return nil, err
		}
		s.Scenes = append(s.Scenes, block)
	}

	b.logger.Info("schema built",
		log.Stringer("mode", b.mode),
		log.Int("scenes", len(s.Scenes)),
		log.Int("channels", len(s.Channels)),
		log.Int("keys", len(keys)),
	)
	return s, nil
}

func (b *Builder) block(sc *scene.Scene, index int, channels []string, keys map[string]string) (schema.Scene, error) {
	logger := b.logger.With(log.String("scene", sc.Name), log.Int("index", index))

	var fields []schema.Parameter
	list, err := params.FindInstance(sc)
	switch {
	case errors.Is(err, params.ErrNoParameterList):
		logger.Warn("no parameter list found, publishing an empty block")
	case err != nil:
		return schema.Scene{}, err
	default:
		scope := list.GUID.String()
		for _, e := range list.OrderedForSchema() {
			if err := e.Parameter.Bind(sc, b.registry); err != nil {
				logger.Warn("skipping parameter", log.String("parameter", e.Parameter.Name), log.Error(err))
				continue
			}
			fields = append(fields, e.Parameter.SchemaParameters(e.Group, scope)...)
		}
	}

	if b.presenter != nil {
		pp, err := b.presenter.SchemaParameters(b.registry, index, channels, fields)
		if err != nil {
			logger.Warn("skipping debug presenter", log.Error(err))
		} else {
			fields = append(pp, fields...)
		}
	}

	for _, f := range fields {
		if owner, ok := keys[f.Key]; ok {
			return schema.Scene{}, fmt.Errorf("%w: %q in %q and %q", ErrDuplicateKey, f.Key, owner, sc.Name)
		}
		keys[f.Key] = sc.Name
	}

	block := schema.NewScene(sc.Name, fields)
	logger.Debug("schema block built", log.Int("fields", len(fields)), log.Uint64("hash", block.Hash))
	return block, nil
}

// Generate builds the schema and persists it. A save failure is reported
// as ErrSaveSchema.
func (b *Builder) Generate(ctx context.Context, saver schema.Saver, scenes []*scene.Scene) (*schema.Schema, error) {
	s, err := b.Build(scenes)
	if err != nil {
		return nil, err
	}
	if err = saver.SaveSchema(ctx, s); err != nil {
		b.logger.Error("failed to save schema", log.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrSaveSchema, err)
	}
	return s, nil
}
