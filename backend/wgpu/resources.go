// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"sync"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/framegraph/gpu"
)

// Texture is a texture created or wrapped by a Device.
type Texture struct {
	id    uint64
	desc  gpu.TextureDescriptor
	raw   hal.Texture
	view  hal.TextureView // set for wrapped textures with a caller view
	dev   *Device
	owned bool
	once  sync.Once
}

func (t *Texture) Label() string                  { return t.desc.Label }
func (t *Texture) Width() uint32                  { return t.desc.Width }
func (t *Texture) Height() uint32                 { return t.desc.Height }
func (t *Texture) Format() gputypes.TextureFormat { return t.desc.Format }

// Raw returns the HAL texture.
func (t *Texture) Raw() hal.Texture { return t.raw }

// Destroy releases the cached view and, for textures the device created,
// the HAL texture. It is safe to call more than once.
func (t *Texture) Destroy() {
	t.once.Do(func() {
		t.dev.views.Delete(t.id)
		if t.owned {
			t.dev.device.DestroyTexture(t.raw)
		}
	})
}

// Buffer is a buffer created by a Device.
type Buffer struct {
	desc gpu.BufferDescriptor
	raw  hal.Buffer
	dev  *Device
	once sync.Once
}

func (b *Buffer) Label() string { return b.desc.Label }
func (b *Buffer) Size() uint64  { return b.desc.Size }

// Raw returns the HAL buffer.
func (b *Buffer) Raw() hal.Buffer { return b.raw }

// Destroy releases the HAL buffer.
func (b *Buffer) Destroy() {
	b.once.Do(func() { b.dev.device.DestroyBuffer(b.raw) })
}

// Framebuffer pairs the attachments of a render pass. It owns no HAL
// object; attachment views come from the device view cache.
type Framebuffer struct {
	label string
	mu    sync.Mutex
	color gpu.Texture
	depth gpu.Texture
}

func (f *Framebuffer) Label() string { return f.label }

func (f *Framebuffer) SetAttachments(color, depth gpu.Texture) {
	f.mu.Lock()
	f.color, f.depth = color, depth
	f.mu.Unlock()
}

func (f *Framebuffer) Color() gpu.Texture {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.color
}

func (f *Framebuffer) Depth() gpu.Texture {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.depth
}

func (f *Framebuffer) Destroy() {}

// Pipeline is a render pipeline. Placeholder pipelines have no HAL object.
type Pipeline struct {
	label string
	raw   hal.RenderPipeline
	dev   *Device
	once  sync.Once
}

func (p *Pipeline) Label() string { return p.label }

// Raw returns the HAL pipeline, or nil for a placeholder.
func (p *Pipeline) Raw() hal.RenderPipeline { return p.raw }

// Destroy releases the HAL pipeline.
func (p *Pipeline) Destroy() {
	p.once.Do(func() {
		if p.raw != nil {
			p.dev.device.DestroyRenderPipeline(p.raw)
		}
	})
}

var (
	_ gpu.Texture     = (*Texture)(nil)
	_ gpu.Buffer      = (*Buffer)(nil)
	_ gpu.Framebuffer = (*Framebuffer)(nil)
	_ gpu.Pipeline    = (*Pipeline)(nil)
)
