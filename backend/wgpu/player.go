// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/framegraph"
	"github.com/gogpu/framegraph/gpu"
	"github.com/gogpu/framegraph/recording"
	"github.com/gogpu/framegraph/render"
)

// player encodes one command list into a HAL command encoder.
//
// Pipeline, vertex array, viewport and scissor state set outside a render
// pass is kept and applied when the next pass begins. A Clear outside a
// pass is deferred and becomes the load operation of the next pass on the
// same framebuffer.
type player struct {
	dev *Device
	enc hal.CommandEncoder

	fb   gpu.Framebuffer
	pass hal.RenderPassEncoder

	pipeline    hal.RenderPipeline
	vertexArray *gpu.VertexArray
	viewport    *recording.Viewport
	scissor     *recording.SetScissorCommand
	clear       *recording.ClearCommand
}

func (p *player) Clear(cmd recording.ClearCommand) error {
	if p.pass != nil {
		return ErrClearInPass
	}
	if p.clear != nil {
		cmd.Flags |= p.clear.Flags
	}
	p.clear = &cmd
	return nil
}

func (p *player) Draw(cmd recording.DrawCommand) error {
	if p.pass == nil {
		return render.ErrNoRenderPass
	}
	p.pass.Draw(cmd.VertexCount, cmd.InstanceCount, cmd.FirstVertex, cmd.FirstInstance)
	return nil
}

func (p *player) DrawIndexed(cmd recording.DrawIndexedCommand) error {
	if p.pass == nil {
		return render.ErrNoRenderPass
	}
	p.pass.DrawIndexed(cmd.IndexCount, cmd.InstanceCount, cmd.FirstIndex, cmd.BaseVertex, cmd.FirstInstance)
	return nil
}

func (p *player) BindPipeline(cmd recording.BindPipelineCommand) error {
	pl, ok := cmd.Pipeline.(*Pipeline)
	if !ok {
		return fmt.Errorf("bind pipeline: %w", ErrForeignResource)
	}
	if pl.raw == nil {
		framegraph.Logger().Debug("wgpu: placeholder pipeline skipped", "pipeline", pl.label)
		return nil
	}
	p.pipeline = pl.raw
	if p.pass != nil {
		p.pass.SetPipeline(pl.raw)
	}
	return nil
}

func (p *player) BindVertexArray(cmd recording.BindVertexArrayCommand) error {
	va := cmd.VertexArray
	for _, b := range []gpu.Buffer{va.Vertex, va.Index} {
		if b == nil {
			continue
		}
		if _, ok := b.(*Buffer); !ok {
			return fmt.Errorf("bind vertex array: %w", ErrForeignResource)
		}
	}
	p.vertexArray = &va
	if p.pass != nil {
		p.applyVertexArray()
	}
	return nil
}

func (p *player) applyVertexArray() {
	va := p.vertexArray
	if va == nil {
		return
	}
	if b, ok := va.Vertex.(*Buffer); ok {
		p.pass.SetVertexBuffer(0, b.raw, 0)
	}
	if b, ok := va.Index.(*Buffer); ok {
		format := va.IndexFormat
		if format == 0 {
			format = gputypes.IndexFormatUint16
		}
		p.pass.SetIndexBuffer(b.raw, format, 0)
	}
}

// BindTexture makes sure a sampled view of the texture exists. Shader
// bindings are owned by the pipeline's bind groups, which this package
// does not manage.
func (p *player) BindTexture(cmd recording.BindTextureCommand) error {
	t, ok := cmd.Texture.(*Texture)
	if !ok {
		return fmt.Errorf("bind texture slot %d: %w", cmd.Slot, ErrForeignResource)
	}
	_, err := p.dev.view(t)
	return err
}

func (p *player) BindFramebuffer(cmd recording.BindFramebufferCommand) error {
	if p.pass != nil {
		return render.ErrRenderPassInProgress
	}
	if cmd.Framebuffer != p.fb {
		if err := p.flushClear(); err != nil {
			return err
		}
	}
	p.fb = cmd.Framebuffer
	return nil
}

func (p *player) SetViewport(cmd recording.SetViewportCommand) error {
	v := cmd.Viewport
	p.viewport = &v
	if p.pass != nil {
		p.pass.SetViewport(v.X, v.Y, v.Width, v.Height, v.MinDepth, v.MaxDepth)
	}
	return nil
}

func (p *player) SetScissor(cmd recording.SetScissorCommand) error {
	p.scissor = &cmd
	if p.pass != nil {
		p.pass.SetScissorRect(cmd.X, cmd.Y, cmd.Width, cmd.Height)
	}
	return nil
}

// ResourceBarrier transitions textures between WebGPU usages. Buffer
// hazards are tracked by the HAL, so buffer barriers only get logged.
func (p *player) ResourceBarrier(cmd recording.ResourceBarrierCommand) error {
	if p.pass != nil {
		return render.ErrRenderPassInProgress
	}
	if cmd.Texture == nil {
		if cmd.Buffer != nil {
			framegraph.Logger().Debug("wgpu: buffer barrier is implicit",
				"buffer", cmd.Buffer.Label(), "before", cmd.Before, "after", cmd.After)
		}
		return nil
	}
	t, ok := cmd.Texture.(*Texture)
	if !ok {
		return fmt.Errorf("barrier: %w", ErrForeignResource)
	}
	if err := p.flushClear(); err != nil {
		return err
	}
	p.enc.TransitionTextures([]hal.TextureBarrier{{
		Texture: t.raw,
		Usage: hal.TextureUsageTransition{
			OldUsage: textureUsage(t, cmd.Before),
			NewUsage: textureUsage(t, cmd.After),
		},
	}})
	p.dev.stats.Barriers++
	return nil
}

// textureUsage maps an access mode to the usage the texture is in. A depth
// texture that is both read and written is a depth-tested attachment, not a
// storage texture.
func textureUsage(t *Texture, a gpu.Access) gputypes.TextureUsage {
	if gpu.IsDepthFormat(t.desc.Format) && a == gpu.AccessReadWrite {
		return gputypes.TextureUsageRenderAttachment
	}
	return a.TextureUsage()
}

func (p *player) BeginRenderPass(cmd recording.BeginRenderPassCommand) error {
	if p.pass != nil {
		return render.ErrRenderPassInProgress
	}
	fb := cmd.Framebuffer
	if fb == nil {
		fb = p.fb
	}
	if fb == nil {
		return ErrNoFramebuffer
	}
	if fb != p.fb {
		if err := p.flushClear(); err != nil {
			return err
		}
	}

	pending := p.clear
	p.clear = nil
	desc, err := p.passDescriptor(cmd, fb, pending)
	if err != nil {
		return err
	}
	p.begin(desc, fb)
	return nil
}

func (p *player) begin(desc *hal.RenderPassDescriptor, fb gpu.Framebuffer) {
	p.pass = p.enc.BeginRenderPass(desc)
	p.dev.stats.RenderPasses++

	if p.pipeline != nil {
		p.pass.SetPipeline(p.pipeline)
	}
	p.applyVertexArray()
	switch {
	case p.viewport != nil:
		v := p.viewport
		p.pass.SetViewport(v.X, v.Y, v.Width, v.Height, v.MinDepth, v.MaxDepth)
	default:
		if w, h := framebufferSize(fb); w > 0 && h > 0 {
			p.pass.SetViewport(0, 0, float32(w), float32(h), 0, 1)
		}
	}
	if s := p.scissor; s != nil {
		p.pass.SetScissorRect(s.X, s.Y, s.Width, s.Height)
	}
}

// passDescriptor builds the HAL render pass for fb. A pending clear turns
// the matching load operations into clears.
func (p *player) passDescriptor(cmd recording.BeginRenderPassCommand, fb gpu.Framebuffer, cc *recording.ClearCommand) (*hal.RenderPassDescriptor, error) {
	desc := &hal.RenderPassDescriptor{Label: cmd.Label}

	if c := fb.Color(); c != nil {
		t, ok := c.(*Texture)
		if !ok {
			return nil, fmt.Errorf("color attachment: %w", ErrForeignResource)
		}
		view, err := p.dev.view(t)
		if err != nil {
			return nil, err
		}
		att := hal.RenderPassColorAttachment{
			View:       view,
			LoadOp:     gputypes.LoadOpLoad,
			StoreOp:    storeOp(cmd.StoreOp),
			ClearValue: cmd.ClearColor,
		}
		if cmd.LoadOp == gputypes.LoadOpClear {
			att.LoadOp = gputypes.LoadOpClear
		}
		if cc != nil && cc.Flags&recording.ClearColor != 0 {
			att.LoadOp = gputypes.LoadOpClear
			att.ClearValue = cc.Color
		}
		desc.ColorAttachments = []hal.RenderPassColorAttachment{att}
	}

	if dt := fb.Depth(); dt != nil {
		t, ok := dt.(*Texture)
		if !ok {
			return nil, fmt.Errorf("depth attachment: %w", ErrForeignResource)
		}
		view, err := p.dev.view(t)
		if err != nil {
			return nil, err
		}
		att := &hal.RenderPassDepthStencilAttachment{
			View:            view,
			DepthLoadOp:     gputypes.LoadOpLoad,
			DepthStoreOp:    storeOp(cmd.StoreOp),
			DepthClearValue: cmd.ClearDepth,
		}
		if cmd.LoadOp == gputypes.LoadOpClear {
			att.DepthLoadOp = gputypes.LoadOpClear
		}
		if cc != nil && cc.Flags&recording.ClearDepth != 0 {
			att.DepthLoadOp = gputypes.LoadOpClear
			att.DepthClearValue = cc.Depth
		}
		if t.desc.Format == gputypes.TextureFormatDepth24PlusStencil8 {
			att.StencilLoadOp = gputypes.LoadOpLoad
			att.StencilStoreOp = gputypes.StoreOpStore
			if cc != nil && cc.Flags&recording.ClearStencil != 0 {
				att.StencilLoadOp = gputypes.LoadOpClear
				att.StencilClearValue = cc.Stencil
			}
		}
		desc.DepthStencilAttachment = att
	}
	return desc, nil
}

func storeOp(op gputypes.StoreOp) gputypes.StoreOp {
	if op == gputypes.StoreOpDiscard {
		return gputypes.StoreOpDiscard
	}
	return gputypes.StoreOpStore
}

func framebufferSize(fb gpu.Framebuffer) (w, h uint32) {
	if c := fb.Color(); c != nil {
		return c.Width(), c.Height()
	}
	if d := fb.Depth(); d != nil {
		return d.Width(), d.Height()
	}
	return 0, 0
}

func (p *player) EndRenderPass(recording.EndRenderPassCommand) error {
	if p.pass == nil {
		return render.ErrNoRenderPass
	}
	p.pass.End()
	p.pass = nil
	return nil
}

func (p *player) BlitToScreen(cmd recording.BlitToScreenCommand) error {
	if p.pass != nil {
		return render.ErrRenderPassInProgress
	}
	fb := cmd.Framebuffer
	if fb == nil {
		fb = p.fb
	}
	if err := p.flushClear(); err != nil {
		return err
	}
	p.dev.stats.Presented++
	if p.dev.present == nil {
		framegraph.Logger().Debug("wgpu: blit dropped, no present function", "width", cmd.Width, "height", cmd.Height)
		return nil
	}
	return p.dev.present(fb, cmd.Width, cmd.Height)
}

// flushClear encodes a pending clear as an empty render pass on the bound
// framebuffer. A clear with nothing bound is dropped.
func (p *player) flushClear() error {
	cc := p.clear
	if cc == nil {
		return nil
	}
	p.clear = nil
	if p.fb == nil {
		framegraph.Logger().Debug("wgpu: clear dropped, no framebuffer bound")
		return nil
	}
	desc, err := p.passDescriptor(recording.BeginRenderPassCommand{Label: "clear"}, p.fb, cc)
	if err != nil {
		return err
	}
	pass := p.enc.BeginRenderPass(desc)
	pass.End()
	p.dev.stats.RenderPasses++
	return nil
}

// abort closes a pass left open by a failed list so the encoder can be
// discarded.
func (p *player) abort() {
	if p.pass != nil {
		p.pass.End()
		p.pass = nil
	}
}
