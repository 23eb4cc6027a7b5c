package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeusync/paramsync/internal/core/engine"
	"github.com/zeusync/paramsync/internal/core/metrics"
	"github.com/zeusync/paramsync/internal/core/schema"
	"github.com/zeusync/paramsync/internal/demo"
)

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	app := newApp()
	var out bytes.Buffer
	app.Writer = &out
	err := app.Run(append([]string{"paramsync"}, args...))
	return out.String(), err
}

func TestSchemaCommand_WritesFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "paramsync.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("scene_control: selection\nlog_level: error\n"), 0o644))

	out, err := runApp(t, "schema", "--config", cfgPath, "--scenes", "2", "--out", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Studio")
	assert.Contains(t, out, "Arena")

	s, err := schema.FileStore{Path: filepath.Join(dir, "schema.json")}.LoadSchema(context.Background())
	require.NoError(t, err)
	assert.Len(t, s.Scenes, 2)
}

func TestSchemaCommand_ParamsDocument(t *testing.T) {
	dir := t.TempDir()
	paramsPath := filepath.Join(dir, "params.yaml")
	f, err := os.Create(paramsPath)
	require.NoError(t, err)
	require.NoError(t, demo.DefaultList(0).WriteYAML(f))
	require.NoError(t, f.Close())

	_, err = runApp(t, "schema", "--params", paramsPath, "--out", dir)
	require.NoError(t, err)

	_, err = runApp(t, "schema", "--params", filepath.Join(dir, "params.txt"), "--out", dir)
	assert.Error(t, err)
}

func TestRunCommand_RequiresDevice(t *testing.T) {
	_, err := runApp(t, "run")
	assert.ErrorIs(t, err, errNoDevice)
}

func TestStatsTable(t *testing.T) {
	out := statsTable(engine.StateStreamsActive, metrics.Snapshot{Frames: 12, AvgLatency: 3 * time.Millisecond, LastError: "boom"})
	assert.Contains(t, out, "streams_active")
	assert.Contains(t, out, "12")
	assert.Contains(t, out, "boom")
}
