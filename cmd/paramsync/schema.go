package main

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
	"github.com/zeusync/paramsync/internal/core/adapter"
	"github.com/zeusync/paramsync/internal/core/device/bridge"
	"github.com/zeusync/paramsync/internal/core/observability/log"
	"github.com/zeusync/paramsync/internal/core/presenter"
	"github.com/zeusync/paramsync/internal/core/schema"
	"github.com/zeusync/paramsync/internal/core/schema/builder"
)

func generateSchema(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	logger := log.New(cfg.LogLevel)
	defer func() { _ = logger.Sync() }()

	scenes, err := buildScenes(ctx, cfg)
	if err != nil {
		return err
	}

	opts := []builder.Option{builder.WithMode(cfg.SceneControl), builder.WithLogger(logger)}
	if cfg.EnableDebugPresenter {
		opts = append(opts, builder.WithDebugPresenter(presenter.New()))
	}
	b := builder.New(adapter.NewDefaultRegistry(), opts...)

	background := context.Background()
	var saver schema.Saver
	switch {
	case ctx.String("out") != "":
		saver = schema.FileStore{Path: filepath.Join(ctx.String("out"), "schema.json")}
	case cfg.Device.Address != "":
		client, err := bridge.Dial(background, cfg.BridgeConfig(), bridge.WithLogger(logger))
		if err != nil {
			return err
		}
		defer client.Close()
		saver = client
	default:
		saver = schema.FileStore{Path: cfg.SchemaPath}
	}

	s, err := b.Generate(background, saver, scenes)
	if err != nil {
		logger.Error("schema generation failed", log.Error(err))
		return err
	}
	fmt.Fprint(ctx.App.Writer, schemaTable(s))
	return nil
}

// schemaTable summarizes every block of s.
func schemaTable(s *schema.Schema) string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Block", "Parameters", "Numeric", "Text", "Image", "Hash"})

	var total int
	for _, sc := range s.Scenes {
		c := sc.Counts()
		total += len(sc.Parameters)
		table.Append([]string{
			sc.Name,
			fmt.Sprintf("%d", len(sc.Parameters)),
			fmt.Sprintf("%d", c.Numeric),
			fmt.Sprintf("%d", c.Text),
			fmt.Sprintf("%d", c.Image),
			fmt.Sprintf("%016x", sc.Hash),
		})
	}
	table.SetFooter([]string{"TOTAL", fmt.Sprintf("%d", total), "", "", "", fmt.Sprintf("%d channels", len(s.Channels))})
	table.Render()
	return buf.String()
}
