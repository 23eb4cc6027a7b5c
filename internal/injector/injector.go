//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package injector

import (
	"context"

	"github.com/google/wire"
	"github.com/zeusync/paramsync/internal/config"
	"github.com/zeusync/paramsync/internal/core/engine"
)

// InitializeEngine dials the device and assembles an engine around it.
func InitializeEngine(ctx context.Context, cfg config.Config, loader engine.SceneLoader) (*engine.Engine, func(), error) {
	wire.Build(ProviderSet)
	return nil, nil, nil
}
