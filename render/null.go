// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/framegraph/gpu"
	"github.com/gogpu/framegraph/recording"
)

// NullDevice is a headless Device.
//
// It allocates CPU-side placeholder resources, validates render pass
// nesting while playing command lists back, and counts everything it sees.
// It is the device used by tests, by the fgdump tool and by hosts that want
// to run a graph without a GPU.
//
// NullDevice is safe for concurrent use.
type NullDevice struct {
	multithreaded bool
	nextID        atomic.Uint64

	mu      sync.Mutex
	inFrame bool
	stats   Stats
}

// Stats counts the work a NullDevice has seen.
type Stats struct {
	Textures     int
	Buffers      int
	Framebuffers int
	Pipelines    int

	// Submissions counts ExecuteCommandList and ExecuteCommandLists calls.
	Submissions int
	// Lists counts command lists played back.
	Lists int
	// Commands counts every command played back, by type.
	Commands map[recording.CommandType]int

	Frames   int
	Flushes  int
	Finishes int

	// Presented counts BlitFramebufferToScreen commands.
	Presented int
}

// Total returns the total number of commands played back.
func (s Stats) Total() int {
	n := 0
	for _, c := range s.Commands {
		n += c
	}
	return n
}

// NullOption configures a NullDevice.
type NullOption func(*NullDevice)

// WithMultithreading sets the value reported by SupportsMultithreading.
func WithMultithreading(enabled bool) NullOption {
	return func(d *NullDevice) {
		d.multithreaded = enabled
	}
}

// NewNullDevice creates a headless device.
func NewNullDevice(opts ...NullOption) *NullDevice {
	d := &NullDevice{
		stats: Stats{Commands: make(map[recording.CommandType]int)},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Stats returns a snapshot of the device counters.
func (d *NullDevice) Stats() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()

	s := d.stats
	s.Commands = make(map[recording.CommandType]int, len(d.stats.Commands))
	for k, v := range d.stats.Commands {
		s.Commands[k] = v
	}
	return s
}

// CreateTexture implements Device.
func (d *NullDevice) CreateTexture(desc gpu.TextureDescriptor) (gpu.Texture, error) {
	if desc.Width == 0 || desc.Height == 0 {
		return nil, fmt.Errorf("create texture %q: %w: zero size", desc.Label, ErrInvalidDescriptor)
	}
	d.mu.Lock()
	d.stats.Textures++
	d.mu.Unlock()
	return &NullTexture{id: d.nextID.Add(1), desc: desc}, nil
}

// CreateBuffer implements Device.
func (d *NullDevice) CreateBuffer(desc gpu.BufferDescriptor) (gpu.Buffer, error) {
	if desc.Size == 0 {
		return nil, fmt.Errorf("create buffer %q: %w: zero size", desc.Label, ErrInvalidDescriptor)
	}
	d.mu.Lock()
	d.stats.Buffers++
	d.mu.Unlock()
	return &NullBuffer{id: d.nextID.Add(1), desc: desc}, nil
}

// CreateFramebuffer implements Device.
func (d *NullDevice) CreateFramebuffer(label string) (gpu.Framebuffer, error) {
	d.mu.Lock()
	d.stats.Framebuffers++
	d.mu.Unlock()
	return &NullFramebuffer{id: d.nextID.Add(1), label: label}, nil
}

// CreatePipeline implements Device.
func (d *NullDevice) CreatePipeline(desc gpu.PipelineDescriptor) (gpu.Pipeline, error) {
	d.mu.Lock()
	d.stats.Pipelines++
	d.mu.Unlock()
	return &NullPipeline{id: d.nextID.Add(1), label: desc.Label}, nil
}

// ExecuteCommandList implements Device.
func (d *NullDevice) ExecuteCommandList(list *recording.CommandList) error {
	return d.ExecuteCommandLists([]*recording.CommandList{list})
}

// ExecuteCommandLists implements Device. Lists are played back in order;
// the first failing list aborts the submission.
func (d *NullDevice) ExecuteCommandLists(lists []*recording.CommandList) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stats.Submissions++
	for _, list := range lists {
		if list == nil {
			continue
		}
		p := &nullPlayer{stats: &d.stats}
		if err := recording.Playback(list, p); err != nil {
			return err
		}
		if p.inPass {
			return fmt.Errorf("playback %q: %w", list.Label(), ErrRenderPassInProgress)
		}
		d.stats.Lists++
	}
	return nil
}

// BeginFrame implements Device.
func (d *NullDevice) BeginFrame() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.inFrame {
		return ErrFrameInProgress
	}
	d.inFrame = true
	return nil
}

// EndFrame implements Device.
func (d *NullDevice) EndFrame() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.inFrame {
		return ErrNoFrame
	}
	d.inFrame = false
	d.stats.Frames++
	return nil
}

// Flush implements Device.
func (d *NullDevice) Flush() error {
	d.mu.Lock()
	d.stats.Flushes++
	d.mu.Unlock()
	return nil
}

// Finish implements Device.
func (d *NullDevice) Finish() error {
	d.mu.Lock()
	d.stats.Finishes++
	d.mu.Unlock()
	return nil
}

// SupportsMultithreading implements Device.
func (d *NullDevice) SupportsMultithreading() bool {
	return d.multithreaded
}

// nullPlayer validates pass nesting and counts commands.
type nullPlayer struct {
	stats  *Stats
	inPass bool
}

func (p *nullPlayer) count(t recording.CommandType) {
	p.stats.Commands[t]++
}

func (p *nullPlayer) Clear(recording.ClearCommand) error {
	p.count(recording.CmdClear)
	return nil
}

func (p *nullPlayer) Draw(recording.DrawCommand) error {
	if !p.inPass {
		return ErrNoRenderPass
	}
	p.count(recording.CmdDraw)
	return nil
}

func (p *nullPlayer) DrawIndexed(recording.DrawIndexedCommand) error {
	if !p.inPass {
		return ErrNoRenderPass
	}
	p.count(recording.CmdDrawIndexed)
	return nil
}

func (p *nullPlayer) BindPipeline(recording.BindPipelineCommand) error {
	p.count(recording.CmdBindPipeline)
	return nil
}

func (p *nullPlayer) BindVertexArray(recording.BindVertexArrayCommand) error {
	p.count(recording.CmdBindVertexArray)
	return nil
}

func (p *nullPlayer) BindTexture(recording.BindTextureCommand) error {
	p.count(recording.CmdBindTexture)
	return nil
}

func (p *nullPlayer) BindFramebuffer(recording.BindFramebufferCommand) error {
	if p.inPass {
		return ErrRenderPassInProgress
	}
	p.count(recording.CmdBindFramebuffer)
	return nil
}

func (p *nullPlayer) SetViewport(recording.SetViewportCommand) error {
	p.count(recording.CmdSetViewport)
	return nil
}

func (p *nullPlayer) SetScissor(recording.SetScissorCommand) error {
	p.count(recording.CmdSetScissor)
	return nil
}

func (p *nullPlayer) ResourceBarrier(recording.ResourceBarrierCommand) error {
	if p.inPass {
		return ErrRenderPassInProgress
	}
	p.count(recording.CmdResourceBarrier)
	return nil
}

func (p *nullPlayer) BeginRenderPass(recording.BeginRenderPassCommand) error {
	if p.inPass {
		return ErrRenderPassInProgress
	}
	p.inPass = true
	p.count(recording.CmdBeginRenderPass)
	return nil
}

func (p *nullPlayer) EndRenderPass(recording.EndRenderPassCommand) error {
	if !p.inPass {
		return ErrNoRenderPass
	}
	p.inPass = false
	p.count(recording.CmdEndRenderPass)
	return nil
}

func (p *nullPlayer) BlitToScreen(recording.BlitToScreenCommand) error {
	if p.inPass {
		return ErrRenderPassInProgress
	}
	p.count(recording.CmdBlitToScreen)
	p.stats.Presented++
	return nil
}

// NullTexture is the texture type created by NullDevice.
type NullTexture struct {
	id        uint64
	desc      gpu.TextureDescriptor
	destroyed atomic.Bool
}

func (t *NullTexture) Label() string                   { return t.desc.Label }
func (t *NullTexture) Width() uint32                   { return t.desc.Width }
func (t *NullTexture) Height() uint32                  { return t.desc.Height }
func (t *NullTexture) Format() gputypes.TextureFormat { return t.desc.Format }
func (t *NullTexture) Destroy()                        { t.destroyed.Store(true) }

// ID returns the device-unique identifier of the texture.
func (t *NullTexture) ID() uint64 { return t.id }

// Destroyed reports whether Destroy was called.
func (t *NullTexture) Destroyed() bool { return t.destroyed.Load() }

// NullBuffer is the buffer type created by NullDevice.
type NullBuffer struct {
	id        uint64
	desc      gpu.BufferDescriptor
	destroyed atomic.Bool
}

func (b *NullBuffer) Label() string { return b.desc.Label }
func (b *NullBuffer) Size() uint64  { return b.desc.Size }
func (b *NullBuffer) Destroy()      { b.destroyed.Store(true) }

// ID returns the device-unique identifier of the buffer.
func (b *NullBuffer) ID() uint64 { return b.id }

// Destroyed reports whether Destroy was called.
func (b *NullBuffer) Destroyed() bool { return b.destroyed.Load() }

// NullFramebuffer is the framebuffer type created by NullDevice.
type NullFramebuffer struct {
	id        uint64
	label     string
	mu        sync.Mutex
	color     gpu.Texture
	depth     gpu.Texture
	destroyed atomic.Bool
}

func (f *NullFramebuffer) Label() string { return f.label }

func (f *NullFramebuffer) SetAttachments(color, depth gpu.Texture) {
	f.mu.Lock()
	f.color, f.depth = color, depth
	f.mu.Unlock()
}

func (f *NullFramebuffer) Color() gpu.Texture {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.color
}

func (f *NullFramebuffer) Depth() gpu.Texture {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.depth
}

func (f *NullFramebuffer) Destroy() { f.destroyed.Store(true) }

// Destroyed reports whether Destroy was called.
func (f *NullFramebuffer) Destroyed() bool { return f.destroyed.Load() }

// NullPipeline is the pipeline type created by NullDevice.
type NullPipeline struct {
	id    uint64
	label string
}

func (p *NullPipeline) Label() string { return p.label }
func (p *NullPipeline) Destroy()      {}

// Ensure the null types implement their interfaces.
var (
	_ Device          = (*NullDevice)(nil)
	_ gpu.Texture     = (*NullTexture)(nil)
	_ gpu.Buffer      = (*NullBuffer)(nil)
	_ gpu.Framebuffer = (*NullFramebuffer)(nil)
	_ gpu.Pipeline    = (*NullPipeline)(nil)
)
