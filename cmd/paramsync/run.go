package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
	"github.com/zeusync/paramsync/internal/core/engine"
	"github.com/zeusync/paramsync/internal/core/metrics"
	"github.com/zeusync/paramsync/internal/core/scene"
	"github.com/zeusync/paramsync/internal/core/schema"
	"github.com/zeusync/paramsync/internal/demo"
	"github.com/zeusync/paramsync/internal/injector"
)

var errNoDevice = errors.New("device.address is not configured")

func runEngine(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	if cfg.Device.Address == "" {
		return errNoDevice
	}
	scenes, err := buildScenes(ctx, cfg)
	if err != nil {
		return err
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loader := &demo.Loader{Scenes: scenes}
	e, cleanup, err := injector.InitializeEngine(sigCtx, cfg, loader)
	if err != nil {
		return err
	}
	defer cleanup()
	loader.Target = e

	active := scenes[0]
	if cfg.SceneControl == schema.Manual {
		active = scene.Merge(schema.DefaultSceneName, scenes...)
	}
	if err := e.LoadScene(active); err != nil {
		return err
	}

	if interval := ctx.Duration("stats-interval"); interval > 0 {
		go reportStats(sigCtx, ctx.App.Writer, e, interval)
	}
	return e.Run(sigCtx)
}

func reportStats(ctx context.Context, w io.Writer, e *engine.Engine, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fmt.Fprint(w, statsTable(e.State(), e.Metrics().Snapshot()))
		}
	}
}

func statsTable(state engine.State, s metrics.Snapshot) string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Metric", "Value"})
	table.Append([]string{"State", state.String()})
	table.Append([]string{"Frames", fmt.Sprintf("%d", s.Frames)})
	table.Append([]string{"Avg. latency", s.AvgLatency.String()})
	table.Append([]string{"Timeouts", fmt.Sprintf("%d", s.Timeouts)})
	table.Append([]string{"Dropped frames", fmt.Sprintf("%d", s.DroppedFrames)})
	table.Append([]string{"Skipped images", fmt.Sprintf("%d", s.SkippedImages)})
	table.Append([]string{"Reconfigures", fmt.Sprintf("%d", s.Reconfigures)})
	table.Append([]string{"Errors", fmt.Sprintf("%d", s.Errors)})
	if s.LastError != "" {
		table.Append([]string{"Last error", s.LastError})
	}
	table.Render()
	return buf.String()
}
