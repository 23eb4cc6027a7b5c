package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli"
	"github.com/zeusync/paramsync/internal/config"
	"github.com/zeusync/paramsync/internal/core/observability/log"
	"github.com/zeusync/paramsync/internal/core/params"
	"github.com/zeusync/paramsync/internal/core/scene"
	"github.com/zeusync/paramsync/internal/core/schema"
	"github.com/zeusync/paramsync/internal/demo"
)

// loadConfig reads --config when given and applies the -v / -vv flags on
// top of the configured log level.
func loadConfig(ctx *cli.Context) (config.Config, error) {
	cfg := config.Default()
	if path := ctx.String("config"); path != "" {
		var err error
		if cfg, err = config.LoadFile(path); err != nil {
			return config.Config{}, err
		}
	}
	if ctx.GlobalBool("v") {
		cfg.LogLevel = log.LevelInfo
	}
	if ctx.GlobalBool("vv") {
		cfg.LogLevel = log.LevelDebug
	}
	return cfg, nil
}

func loadParams(path string) (*params.List, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return params.LoadJSON(f)
	case ".yaml", ".yml":
		return params.LoadYAML(f)
	default:
		return nil, fmt.Errorf("unsupported parameter document %q", path)
	}
}

// buildScenes returns the demo scenes for cfg. Manual mode publishes a
// single scene since all scenes share one block.
func buildScenes(ctx *cli.Context, cfg config.Config) ([]*scene.Scene, error) {
	list, err := loadParams(ctx.String("params"))
	if err != nil {
		return nil, err
	}
	n := 1
	if cfg.SceneControl == schema.Selection {
		n = ctx.Int("scenes")
	}
	return demo.Scenes(n, list), nil
}
