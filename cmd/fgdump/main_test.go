package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/framegraph"
	"github.com/gogpu/framegraph/render"
)

const frameHCL = `
texture "depth" {
  width     = var.width
  height    = var.height
  format    = "depth24plus-stencil8"
  transient = true
}

texture "hdr" {
  width  = var.width
  height = var.height
  format = "rgba16float"
}

buffer "lights" {
  size      = 4096
  transient = true
}

pass "Depth" {
  target {
    depth = "depth"
  }
}

pass "Lighting" {
  reads  = ["depth"]
  writes = ["lights"]
}

pass "Color" {
  reads = ["depth", "lights"]
  draws = 3
  target {
    color = "hdr"
    depth = "depth"
  }
}
`

const cycleHCL = `
texture "x" {
  width  = 1
  height = 1
}
texture "y" {
  width  = 1
  height = 1
}
pass "A" {
  reads  = ["x"]
  writes = ["y"]
}
pass "B" {
  reads  = ["y"]
  writes = ["x"]
}
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func runArgs(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := run(context.Background(), args, &out)
	return out.String(), err
}

func TestRun_Report(t *testing.T) {
	path := writeFile(t, t.TempDir(), "frame.hcl", frameHCL)

	out, err := runArgs(t, "-log", "error", path)
	require.NoError(t, err)
	assert.Contains(t, out, "framegraph: 3 passes, 2 textures, 1 buffers")
	assert.Contains(t, out, "order: Depth -> Lighting -> Color")
	assert.Contains(t, out, "1280x720")
	assert.NotContains(t, out, "executed on")
}

func TestRun_Execute(t *testing.T) {
	path := writeFile(t, t.TempDir(), "frame.hcl", frameHCL)

	for _, name := range []string{"null", "noop"} {
		t.Run(name, func(t *testing.T) {
			out, err := runArgs(t, "-log", "error", "-execute", "-backend", name, path)
			require.NoError(t, err)
			assert.Contains(t, out, "executed on "+name+": 3 command lists")
		})
	}
}

func TestRun_Vars(t *testing.T) {
	path := writeFile(t, t.TempDir(), "frame.hcl", frameHCL)

	out, err := runArgs(t, "-var", "width=1920", "-var", "height=1080", path)
	require.NoError(t, err)
	assert.Contains(t, out, "1920x1080")
}

func TestRun_Config(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "frame.hcl", frameHCL)
	cfg := writeFile(t, dir, "fgdump.toml", `
backend   = "null"
execute   = true
log_level = "error"

[vars]
width = 640
`)

	out, err := runArgs(t, "-config", cfg, path)
	require.NoError(t, err)
	assert.Contains(t, out, "640x720")
	assert.Contains(t, out, "executed on null")

	// Flags win over the file.
	out, err = runArgs(t, "-config", cfg, "-backend", "noop", "-var", "width=320", path)
	require.NoError(t, err)
	assert.Contains(t, out, "320x720")
	assert.Contains(t, out, "executed on noop")
}

func TestRun_Out(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "frame.hcl", frameHCL)
	report := filepath.Join(dir, "report.txt")

	out, err := runArgs(t, "-out", report, path)
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(report)
	require.NoError(t, err)
	assert.Contains(t, string(data), "order: Depth -> Lighting -> Color")
}

func TestRun_Cycles(t *testing.T) {
	path := writeFile(t, t.TempDir(), "cycle.hcl", cycleHCL)

	out, err := runArgs(t, "-log", "error", path)
	require.NoError(t, err)
	assert.Contains(t, out, "CYCLE")

	_, err = runArgs(t, "-log", "error", "-strict", path)
	assert.ErrorIs(t, err, framegraph.ErrCyclicDependency)
}

func TestRun_Errors(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "frame.hcl", frameHCL)
	bad := writeFile(t, dir, "bad.hcl", `pass "P" { reads = ["nope"] }`)
	badConfig := writeFile(t, dir, "bad.toml", `backend = [`)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no file", nil, "expected exactly one graph file"},
		{"unknown backend", []string{"-backend", "vulkan9", path}, "not available"},
		{"bad var", []string{"-var", "nope", path}, "invalid variable assignment"},
		{"missing file", []string{filepath.Join(dir, "missing.hcl")}, "graphfile: parse"},
		{"unknown resource", []string{bad}, "Unknown resource"},
		{"bad log level", []string{"-log", "loud", path}, "log level"},
		{"missing config", []string{"-config", filepath.Join(dir, "none.toml"), path}, "read config"},
		{"bad config", []string{"-config", badConfig, path}, "parse config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runArgs(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

// syncBuffer is a bytes.Buffer safe for the watcher goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestRunner_Watch(t *testing.T) {
	path := writeFile(t, t.TempDir(), "frame.hcl", frameHCL)
	opts, err := parseArgs([]string{path})
	require.NoError(t, err)

	var out syncBuffer
	ready := make(chan struct{})
	r := &runner{
		opts:     opts,
		dev:      &countingDevice{Device: render.NewNullDevice()},
		stdout:   &out,
		watching: func() { close(ready) },
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.watch(ctx) }()

	select {
	case <-ready:
	case err := <-done:
		t.Fatalf("watch returned early: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher not armed")
	}

	writeFile(t, filepath.Dir(path), "frame.hcl", frameHCL+`
pass "Tonemap" {
  reads = ["hdr"]
}
`)
	require.Eventually(t, func() bool {
		return bytes.Contains([]byte(out.String()), []byte("order: Depth -> Lighting -> Color -> Tonemap"))
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}

func TestCountingDevice(t *testing.T) {
	path := writeFile(t, t.TempDir(), "frame.hcl", frameHCL)
	opts, err := parseArgs([]string{"-execute", path})
	require.NoError(t, err)

	null := render.NewNullDevice()
	var out bytes.Buffer
	r := &runner{opts: opts, dev: &countingDevice{Device: null}, stdout: &out}
	require.NoError(t, r.once(context.Background()))

	s := null.Stats()
	assert.Equal(t, int64(s.Lists), r.dev.lists.Load())
	assert.Equal(t, int64(s.Total()), r.dev.commands.Load())
	assert.Equal(t, 1, s.Frames)
}
