// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package graphfile

import (
	"github.com/gogpu/gputypes"

	"github.com/gogpu/framegraph"
	"github.com/gogpu/framegraph/gpu"
	"github.com/gogpu/framegraph/recording"
	"github.com/gogpu/framegraph/render"
)

// Bindings maps the names of a File to what Apply declared on a graph.
type Bindings struct {
	Textures map[string]framegraph.TextureHandle
	Buffers  map[string]framegraph.BufferHandle
	Passes   map[string]int

	targets []*passTarget
}

// Apply declares the file's resources and passes on g and binds the
// top-level target, if any. It can be called again after g.Reset.
func (f *File) Apply(g *framegraph.Graph) *Bindings {
	b := &Bindings{
		Textures: make(map[string]framegraph.TextureHandle, len(f.Textures)),
		Buffers:  make(map[string]framegraph.BufferHandle, len(f.Buffers)),
		Passes:   make(map[string]int, len(f.Passes)),
	}
	for _, desc := range f.Textures {
		b.Textures[desc.Name] = g.CreateTexture(desc)
	}
	for _, desc := range f.Buffers {
		b.Buffers[desc.Name] = g.CreateBuffer(desc)
	}
	if !f.Target.IsZero() {
		g.BindRenderTarget(b.Textures[f.Target.Color], b.Textures[f.Target.Depth], nil)
	}

	for _, p := range f.Passes {
		pt := &passTarget{}
		b.targets = append(b.targets, pt)
		desc := framegraph.PassDesc{
			Name:    p.Name,
			Setup:   func(bld *framegraph.Builder) { b.setup(bld, p) },
			Execute: func(ctx *framegraph.PassContext) { pt.execute(ctx, p.Draws) },
		}
		if !p.Enabled {
			desc.Enabled = func() bool { return false }
		}
		b.Passes[p.Name] = g.AddPass(desc)
	}
	return b
}

// Close destroys the framebuffers created for pass render targets.
func (b *Bindings) Close() {
	for _, pt := range b.targets {
		pt.release()
	}
}

func (b *Bindings) setup(bld *framegraph.Builder, p Pass) {
	for _, r := range p.Reads {
		if r.Kind == framegraph.KindBuffer {
			bld.ReadBuffer(b.Buffers[r.Name], 0)
		} else {
			bld.ReadTexture(b.Textures[r.Name], 0)
		}
	}
	for _, r := range p.Writes {
		if r.Kind == framegraph.KindBuffer {
			bld.WriteBuffer(b.Buffers[r.Name], 0)
		} else {
			bld.WriteTexture(b.Textures[r.Name], 0)
		}
	}
	if p.Target != nil {
		color, depth := b.Textures[p.Target.Color], b.Textures[p.Target.Depth]
		for _, h := range []framegraph.TextureHandle{color, depth} {
			if h.IsValid() {
				bld.WriteTexture(h, 0)
			}
		}
		bld.SetRenderTarget(color, depth)
	}
	if !p.Viewport.IsZero() {
		bld.SetViewport(p.Viewport.Width, p.Viewport.Height)
	}
}

// passTarget owns the framebuffer of a pass that renders to its own
// target. Recorded passes run concurrently, but each passTarget is only
// touched by its own pass.
type passTarget struct {
	fb           gpu.Framebuffer
	color, depth gpu.Texture
}

func (pt *passTarget) execute(ctx *framegraph.PassContext, draws uint32) {
	if draws == 0 {
		return
	}
	cl := ctx.Commands()
	immediate := cl == nil
	if immediate {
		if ctx.Device == nil {
			return
		}
		cl = recording.NewCommandList(ctx.Name())
		if err := cl.Begin(); err != nil {
			framegraph.Logger().Warn("graphfile: begin command list", "pass", ctx.Name(), "err", err)
			return
		}
	}

	fb := ctx.Framebuffer()
	if fb == nil {
		fb = pt.framebuffer(ctx)
	}
	if fb != nil {
		cl.BindFramebuffer(fb)
	}
	cl.BeginRenderPass(recording.BeginRenderPassCommand{
		Label:       ctx.Name(),
		Framebuffer: fb,
		StoreOp:     gputypes.StoreOpStore,
	})
	cl.SetViewport(ctx.Viewport.Recording())
	for range draws {
		cl.Draw(3, 1, 0, 0)
	}
	cl.EndRenderPass()

	if immediate {
		submit(ctx.Device, cl)
	}
}

// submit closes cl and executes it on dev.
func submit(dev render.Device, cl *recording.CommandList) {
	if err := cl.End(); err != nil {
		framegraph.Logger().Warn("graphfile: end command list", "pass", cl.Label(), "err", err)
		return
	}
	if err := dev.ExecuteCommandList(cl); err != nil {
		framegraph.Logger().Warn("graphfile: pass execution failed", "pass", cl.Label(), "err", err)
	}
}

// framebuffer returns a framebuffer over the pass's resolved targets,
// creating it on first use and re-pointing it when the pool hands out
// different textures.
func (pt *passTarget) framebuffer(ctx *framegraph.PassContext) gpu.Framebuffer {
	color, depth := ctx.ColorTexture(), ctx.DepthTexture()
	if (color == nil && depth == nil) || ctx.Device == nil {
		return nil
	}
	if pt.fb == nil {
		fb, err := ctx.Device.CreateFramebuffer(ctx.Name())
		if err != nil {
			framegraph.Logger().Warn("graphfile: create framebuffer failed",
				"pass", ctx.Name(), "err", err)
			return nil
		}
		pt.fb = fb
	}
	if pt.color != color || pt.depth != depth {
		pt.fb.SetAttachments(color, depth)
		pt.color, pt.depth = color, depth
	}
	return pt.fb
}

func (pt *passTarget) release() {
	if pt.fb != nil {
		pt.fb.Destroy()
		pt.fb = nil
	}
	pt.color, pt.depth = nil, nil
}
