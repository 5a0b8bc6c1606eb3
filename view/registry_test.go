// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package view

import (
	"context"
	"slices"
	"sync/atomic"
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/framegraph"
	"github.com/gogpu/framegraph/gpu"
	"github.com/gogpu/framegraph/recording"
	"github.com/gogpu/framegraph/render"
)

// counted is a drawable that counts its draws.
type counted struct {
	tag   Tag
	draws atomic.Int32
}

func (p *counted) Tag() Tag { return p.tag }

func (p *counted) Draw(cl *recording.CommandList, _ *Matrices) {
	p.draws.Add(1)
	cl.Draw(3, 1, 0, 0)
}

func TestRegistry_FiltersByVisibility(t *testing.T) {
	untagged := &counted{}
	editor := &counted{tag: TagEditorOnly}
	preview := &counted{tag: TagPreviewOnly}
	scene := Drawables{untagged, editor, preview}

	dev := render.NewNullDevice()
	reg := NewRegistry(dev)
	reg.Register(Desc{Name: "scene", Scene: scene, Visibility: SceneMask})
	reg.Register(Desc{Name: "preview", Scene: scene, Visibility: PreviewMask})

	if err := reg.RenderFrame(context.Background()); err != nil {
		t.Fatalf("RenderFrame() = %v", err)
	}

	for name, tt := range map[string]struct {
		p    *counted
		want int32
	}{
		"untagged": {untagged, 1},
		"editor":   {editor, 1},
		"preview":  {preview, 1},
	} {
		if got := tt.p.draws.Load(); got != tt.want {
			t.Errorf("%s drawn %d times, want %d", name, got, tt.want)
		}
	}

	s := reg.Stats()
	if s.Rendered != 2 || s.Drawn != 3 || s.Culled != 3 {
		t.Errorf("Stats() = %+v, want 2 rendered, 3 drawn, 3 culled", s)
	}
	ds := dev.Stats()
	if ds.Lists != 2 || ds.Commands[recording.CmdDraw] != 3 {
		t.Errorf("device saw %d lists, %d draws, want 2, 3", ds.Lists, ds.Commands[recording.CmdDraw])
	}
	if ds.Commands[recording.CmdClear] != 2 || ds.Commands[recording.CmdBeginRenderPass] != 2 {
		t.Errorf("device saw %d clears, %d passes, want 2, 2",
			ds.Commands[recording.CmdClear], ds.Commands[recording.CmdBeginRenderPass])
	}
}

func TestRegistry_Helpers(t *testing.T) {
	tests := []struct {
		name     string
		features Feature
		want     int64
	}{
		{"none", FeatureNone, 0},
		{"grid and gizmo", FeatureGrid | FeatureGizmo, 2},
		{"all", FeatureAll, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev := render.NewNullDevice()
			reg := NewRegistry(dev, WithHelpers(BuiltinHelpers(nil)...))
			reg.Register(Desc{Name: "v", Features: tt.features})
			if err := reg.RenderFrame(context.Background()); err != nil {
				t.Fatalf("RenderFrame() = %v", err)
			}
			if got := reg.Stats().Helpers; got != tt.want {
				t.Errorf("helpers run = %d, want %d", got, tt.want)
			}
			if got := dev.Stats().Commands[recording.CmdDraw]; int64(got) != tt.want {
				t.Errorf("draws = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestRegistry_HelperRunsAfterScene(t *testing.T) {
	var order []string
	scene := Drawables{drawFunc(func() { order = append(order, "scene") })}
	reg := NewRegistry(render.NewNullDevice(), WithHelper(Helper{
		Name:    "grid",
		Feature: FeatureGrid,
		Draw: func(*recording.CommandList, *Matrices) {
			order = append(order, "grid")
		},
	}))
	reg.Register(Desc{Name: "v", Scene: scene, Features: FeatureGrid})
	if err := reg.RenderFrame(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(order, []string{"scene", "grid"}) {
		t.Errorf("order = %v, want [scene grid]", order)
	}
}

type drawFunc func()

func (drawFunc) Tag() Tag                                { return 0 }
func (f drawFunc) Draw(*recording.CommandList, *Matrices) { f() }

func TestRegistry_PassNamesAndOrder(t *testing.T) {
	reg := NewRegistry(render.NewNullDevice())
	a := reg.Register(Desc{Name: "a"})
	b := reg.Register(Desc{Name: "b"})
	if a != 1 || b != 2 {
		t.Fatalf("handles = %d, %d, want 1, 2", a, b)
	}
	if name, _ := reg.PassName(b); name != "view/b#2" {
		t.Errorf("PassName(b) = %q, want view/b#2", name)
	}
	if err := reg.RenderFrame(context.Background()); err != nil {
		t.Fatal(err)
	}

	var names []string
	for _, i := range reg.Graph().Order() {
		names = append(names, reg.Graph().Passes()[i].Name)
	}
	if !slices.Equal(names, []string{"view/a#1", "view/b#2"}) {
		t.Errorf("order = %v", names)
	}
	if _, ok := reg.Output(a); !ok {
		t.Error("Output(a) missing")
	}
}

func TestRegistry_ResizesTarget(t *testing.T) {
	dev := render.NewNullDevice()
	w, h := uint32(64), uint32(64)
	reg := NewRegistry(dev)
	v := reg.Register(Desc{Name: "v", DesiredSize: func() (uint32, uint32) { return w, h }})

	frame := func() {
		t.Helper()
		if err := reg.RenderFrame(context.Background()); err != nil {
			t.Fatal(err)
		}
	}
	frame()
	first := reg.Framebuffer(v).Color().(*render.NullTexture)
	frame()
	if got := dev.Stats().Textures; got != 2 {
		t.Errorf("same size reallocated: %d textures, want 2", got)
	}

	w = 128
	frame()
	if got := dev.Stats().Textures; got != 4 {
		t.Errorf("after resize: %d textures, want 4", got)
	}
	if !first.Destroyed() {
		t.Error("old target not destroyed on resize")
	}
	if c := reg.Framebuffer(v).Color(); c.Width() != 128 || c.Height() != 64 {
		t.Errorf("target = %dx%d, want 128x64", c.Width(), c.Height())
	}
}

func TestRegistry_Unregister(t *testing.T) {
	reg := NewRegistry(render.NewNullDevice())
	a := reg.Register(Desc{Name: "a"})
	if err := reg.RenderFrame(context.Background()); err != nil {
		t.Fatal(err)
	}
	color := reg.Framebuffer(a).Color().(*render.NullTexture)

	if !reg.Unregister(a) {
		t.Fatal("Unregister(a) = false")
	}
	if reg.Unregister(a) {
		t.Error("second Unregister(a) = true")
	}
	if !color.Destroyed() {
		t.Error("target not released")
	}
	if _, ok := reg.Output(a); ok {
		t.Error("output survived Unregister")
	}
	if b := reg.Register(Desc{Name: "b"}); b != 2 {
		t.Errorf("handle after Unregister = %d, want 2", b)
	}
	if reg.Len() != 1 {
		t.Errorf("Len() = %d, want 1", reg.Len())
	}
}

func TestRegistry_SkipsViews(t *testing.T) {
	dev := render.NewNullDevice()
	reg := NewRegistry(dev)
	reg.Register(Desc{Name: "hidden", ShouldRender: func() bool { return false }})
	reg.Register(Desc{Name: "empty", DesiredSize: func() (uint32, uint32) { return 0, 0 }})

	if err := reg.RenderFrame(context.Background()); err != nil {
		t.Fatal(err)
	}
	if s := reg.Stats(); s.Rendered != 0 {
		t.Errorf("Rendered = %d, want 0", s.Rendered)
	}
	if got := reg.Graph().PassCount(); got != 1 {
		t.Errorf("PassCount() = %d, want 1 (zero-size view not declared)", got)
	}
	if dev.Stats().Lists != 0 {
		t.Errorf("device executed %d lists", dev.Stats().Lists)
	}
}

func TestRegistry_DeclareOnGraph(t *testing.T) {
	dev := render.NewNullDevice()
	reg := NewRegistry(dev)
	sv := reg.Register(Desc{Name: "scene", Scene: Drawables{&counted{}}})

	g := framegraph.New(framegraph.WithDeviceAllocators(dev))
	if err := reg.Declare(g); err != nil {
		t.Fatal(err)
	}
	color, ok := reg.Output(sv)
	if !ok {
		t.Fatal("Output(scene) missing")
	}
	var sampled gpu.Texture
	g.AddPass(framegraph.PassDesc{
		Name:  "post",
		Setup: func(b *framegraph.Builder) { b.ReadTexture(color, 0) },
		Execute: func(ctx *framegraph.PassContext) {
			sampled = ctx.Texture(color)
		},
	})
	if err := g.Compile(); err != nil {
		t.Fatal(err)
	}

	info := g.Passes()[1]
	if len(info.Transitions) != 1 || info.Transitions[0].Before != framegraph.UsageWrite {
		t.Errorf("post transitions = %v, want one from Write", info.Transitions)
	}

	// Immediate mode: the view pass executes its own list.
	g.Execute(dev)
	if dev.Stats().Lists != 1 {
		t.Errorf("Lists = %d, want 1", dev.Stats().Lists)
	}
	if sampled == nil || sampled.Label() != "scene.color" {
		t.Errorf("post sampled %v, want scene.color", sampled)
	}
}

func TestRegistry_UnregisterAfterDeclare(t *testing.T) {
	dev := render.NewNullDevice()
	reg := NewRegistry(dev)
	d := &counted{}
	a := reg.Register(Desc{Name: "a", Scene: Drawables{d}})

	g := framegraph.New(framegraph.WithDeviceAllocators(dev))
	if err := reg.Declare(g); err != nil {
		t.Fatal(err)
	}
	reg.Unregister(a)
	if err := g.Compile(); err != nil {
		t.Fatal(err)
	}

	g.Execute(dev)
	if err := g.ExecuteRecorded(context.Background(), dev); err != nil {
		t.Fatalf("ExecuteRecorded() = %v", err)
	}
	if s := reg.Stats(); s.Rendered != 0 {
		t.Errorf("Rendered = %d, want 0", s.Rendered)
	}
	if got := d.draws.Load(); got != 0 {
		t.Errorf("drawable drawn %d times after Unregister", got)
	}
	if got := dev.Stats().Lists; got != 0 {
		t.Errorf("Lists = %d, want 0", got)
	}
}

func TestRegistry_OutputPerView(t *testing.T) {
	reg := NewRegistry(render.NewNullDevice())
	first := reg.Register(Desc{Name: "dup"})
	second := reg.Register(Desc{Name: "dup"})
	if err := reg.RenderFrame(context.Background()); err != nil {
		t.Fatal(err)
	}

	c1, ok1 := reg.Output(first)
	c2, ok2 := reg.Output(second)
	if !ok1 || !ok2 || c1 == c2 {
		t.Fatalf("Output() = (%v, %v), (%v, %v), want two distinct textures", c1, ok1, c2, ok2)
	}

	reg.Unregister(first)
	if got, ok := reg.Output(second); !ok || got != c2 {
		t.Errorf("Output(second) = %v, %v after removing first, want %v, true", got, ok, c2)
	}
	if _, ok := reg.Output(first); ok {
		t.Error("Output(first) found after Unregister")
	}
}

// surfaceDevice reports a presentation format.
type surfaceDevice struct {
	*render.NullDevice
}

func (surfaceDevice) SurfaceFormat() gputypes.TextureFormat {
	return gputypes.TextureFormatBGRA8Unorm
}

func TestRegistry_ColorFormat(t *testing.T) {
	tests := []struct {
		name string
		dev  render.Device
		opts []Option
		want gputypes.TextureFormat
	}{
		{"default", render.NewNullDevice(), nil, gputypes.TextureFormatRGBA8Unorm},
		{"surface", surfaceDevice{render.NewNullDevice()}, nil, gputypes.TextureFormatBGRA8Unorm},
		{"option", surfaceDevice{render.NewNullDevice()},
			[]Option{WithColorFormat(gputypes.TextureFormatRGBA16Float)}, gputypes.TextureFormatRGBA16Float},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := NewRegistry(tt.dev, tt.opts...)
			h := reg.Register(Desc{Name: "v"})
			if err := reg.Declare(framegraph.New()); err != nil {
				t.Fatal(err)
			}
			if got := reg.Framebuffer(h).Color().Format(); got != tt.want {
				t.Errorf("color format = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRegistry_Close(t *testing.T) {
	reg := NewRegistry(render.NewNullDevice(), WithDepthFormat(gputypes.TextureFormatDepth32Float))
	h := reg.Register(Desc{Name: "v"})
	if err := reg.RenderFrame(context.Background()); err != nil {
		t.Fatal(err)
	}
	depth := reg.Framebuffer(h).Depth().(*render.NullTexture)
	if depth.Format() != gputypes.TextureFormatDepth32Float {
		t.Errorf("depth format = %v", depth.Format())
	}
	reg.Close()
	if !depth.Destroyed() {
		t.Error("Close() did not release the target")
	}
}
