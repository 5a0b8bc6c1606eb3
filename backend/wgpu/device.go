// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/framegraph"
	"github.com/gogpu/framegraph/gpu"
	"github.com/gogpu/framegraph/internal/cache"
	"github.com/gogpu/framegraph/recording"
	"github.com/gogpu/framegraph/render"
)

// Errors returned by the wgpu device.
var (
	// ErrForeignResource is returned when a command references a texture,
	// buffer or pipeline created by another device.
	ErrForeignResource = errors.New("wgpu: resource was not created by this device")

	// ErrNoFramebuffer is returned when a render pass begins with no
	// framebuffer bound and none given.
	ErrNoFramebuffer = errors.New("wgpu: render pass without a framebuffer")

	// ErrClearInPass is returned for a Clear inside an open render pass.
	// Clears are folded into the load operation of the next pass.
	ErrClearInPass = errors.New("wgpu: clear inside a render pass")

	// ErrClosed is returned by every operation after Close.
	ErrClosed = errors.New("wgpu: device closed")

	// ErrTimeout is returned when the GPU does not signal a submission in
	// time.
	ErrTimeout = errors.New("wgpu: timed out waiting for GPU")
)

const (
	defaultWaitTimeout   = 5 * time.Second
	defaultViewCacheSize = 256
)

// PresentFunc presents the color attachment of fb. It is called while a
// BlitToScreen command is played back, before the submission is encoded
// further.
type PresentFunc func(fb gpu.Framebuffer, width, height uint32) error

// Option configures a Device.
type Option func(*Device)

// WithPresent sets the function BlitToScreen commands are forwarded to.
// Without it, blits are dropped with a debug log.
func WithPresent(fn PresentFunc) Option {
	return func(d *Device) {
		d.present = fn
	}
}

// WithWaitTimeout sets how long Finish waits for the GPU.
func WithWaitTimeout(timeout time.Duration) Option {
	return func(d *Device) {
		if timeout > 0 {
			d.waitTimeout = timeout
		}
	}
}

// WithViewCacheSize bounds the number of cached texture views.
func WithViewCacheSize(n int) Option {
	return func(d *Device) {
		d.viewCacheSize = n
	}
}

// Stats counts the work a Device has submitted.
type Stats struct {
	Submissions    int
	CommandBuffers int
	RenderPasses   int
	Barriers       int
	Presented      int
	Views          cache.Stats
}

// Device is a render.Device backed by a hal.Device.
//
// Resource creation is safe for concurrent use. Submissions are serialized
// by an internal mutex, so command lists recorded on several goroutines can
// be submitted from any of them.
type Device struct {
	device hal.Device
	queue  hal.Queue

	// Set when the device was opened by this package and must be destroyed
	// by Close.
	instance hal.Instance
	owned    bool

	present       PresentFunc
	surfaceFormat gputypes.TextureFormat
	waitTimeout   time.Duration
	viewCacheSize int

	nextID atomic.Uint64
	views  *cache.Cache[uint64, hal.TextureView]

	mu         sync.Mutex
	closed     bool
	inFrame    bool
	pending    []hal.CommandBuffer
	inflight   []hal.CommandBuffer
	fence      hal.Fence
	fenceValue uint64
	stats      Stats
}

// NewDevice wraps an existing HAL device and queue. The caller keeps
// ownership of both; Close releases only what the Device created.
func NewDevice(device hal.Device, queue hal.Queue, opts ...Option) (*Device, error) {
	if device == nil || queue == nil {
		return nil, fmt.Errorf("wgpu: %w", framegraph.ErrNilDevice)
	}
	d := &Device{
		device:        device,
		queue:         queue,
		waitTimeout:   defaultWaitTimeout,
		viewCacheSize: defaultViewCacheSize,
	}
	for _, opt := range opts {
		opt(d)
	}

	d.views = cache.New[uint64, hal.TextureView](d.viewCacheSize)
	d.views.OnEvict(func(_ uint64, v hal.TextureView) {
		device.DestroyTextureView(v)
	})

	fence, err := device.CreateFence()
	if err != nil {
		return nil, fmt.Errorf("wgpu: create fence: %w", err)
	}
	d.fence = fence
	return d, nil
}

// HAL returns the wrapped HAL device and queue.
func (d *Device) HAL() (hal.Device, hal.Queue) {
	return d.device, d.queue
}

// SurfaceFormat returns the presentation format of the host the device was
// created from, or gputypes.TextureFormatBGRA8Unorm when unknown.
func (d *Device) SurfaceFormat() gputypes.TextureFormat {
	if d.surfaceFormat == gputypes.TextureFormatUndefined {
		return gputypes.TextureFormatBGRA8Unorm
	}
	return d.surfaceFormat
}

// Stats returns a snapshot of the submission counters.
func (d *Device) Stats() Stats {
	d.mu.Lock()
	s := d.stats
	d.mu.Unlock()
	s.Views = d.views.Stats()
	return s
}

// CreateTexture implements render.Device.
func (d *Device) CreateTexture(desc gpu.TextureDescriptor) (gpu.Texture, error) {
	if desc.Width == 0 || desc.Height == 0 {
		return nil, fmt.Errorf("create texture %q: %w: zero size", desc.Label, render.ErrInvalidDescriptor)
	}
	if desc.Usage == 0 {
		desc.Usage = gputypes.TextureUsageTextureBinding | gputypes.TextureUsageRenderAttachment
	}
	if desc.SampleCount == 0 {
		desc.SampleCount = 1
	}

	raw, err := d.device.CreateTexture(&hal.TextureDescriptor{
		Label: desc.Label,
		Size: hal.Extent3D{
			Width:              desc.Width,
			Height:             desc.Height,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   desc.SampleCount,
		Dimension:     gputypes.TextureDimension2D,
		Format:        desc.Format,
		Usage:         desc.Usage,
	})
	if err != nil {
		return nil, fmt.Errorf("create texture %q: %w", desc.Label, err)
	}
	return &Texture{id: d.nextID.Add(1), desc: desc, raw: raw, dev: d, owned: true}, nil
}

// WrapTexture adopts a texture the caller owns, such as a surface texture,
// so it can be bound into a graph. view may be nil to let the device create
// one. Destroying the returned texture releases only the cached view.
func (d *Device) WrapTexture(raw hal.Texture, view hal.TextureView, desc gpu.TextureDescriptor) *Texture {
	return &Texture{id: d.nextID.Add(1), desc: desc, raw: raw, view: view, dev: d}
}

// CreateBuffer implements render.Device. A zero usage is derived from the
// buffer kind.
func (d *Device) CreateBuffer(desc gpu.BufferDescriptor) (gpu.Buffer, error) {
	if desc.Size == 0 {
		return nil, fmt.Errorf("create buffer %q: %w: zero size", desc.Label, render.ErrInvalidDescriptor)
	}
	if desc.Usage == 0 {
		desc.Usage = kindUsage(desc.Kind)
	}
	raw, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: desc.Label,
		Size:  desc.Size,
		Usage: desc.Usage,
	})
	if err != nil {
		return nil, fmt.Errorf("create buffer %q: %w", desc.Label, err)
	}
	return &Buffer{desc: desc, raw: raw, dev: d}, nil
}

func kindUsage(k gpu.BufferKind) gputypes.BufferUsage {
	switch k {
	case gpu.BufferIndex:
		return gputypes.BufferUsageIndex | gputypes.BufferUsageCopyDst
	case gpu.BufferUniform:
		return gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst
	case gpu.BufferStorage:
		return gputypes.BufferUsageStorage | gputypes.BufferUsageCopyDst
	case gpu.BufferStaging:
		return gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst
	default:
		return gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst
	}
}

// CreateFramebuffer implements render.Device.
func (d *Device) CreateFramebuffer(label string) (gpu.Framebuffer, error) {
	return &Framebuffer{label: label}, nil
}

// CreatePipeline implements render.Device. desc.Native must be a
// *hal.RenderPipelineDescriptor for the pipeline to be bindable; any other
// payload yields a placeholder that BindPipeline skips.
func (d *Device) CreatePipeline(desc gpu.PipelineDescriptor) (gpu.Pipeline, error) {
	p := &Pipeline{label: desc.Label, dev: d}
	native, ok := desc.Native.(*hal.RenderPipelineDescriptor)
	if !ok || native == nil {
		return p, nil
	}
	raw, err := d.device.CreateRenderPipeline(native)
	if err != nil {
		return nil, fmt.Errorf("create pipeline %q: %w", desc.Label, err)
	}
	p.raw = raw
	return p, nil
}

// view returns the default view of t, creating and caching it on first use.
func (d *Device) view(t *Texture) (hal.TextureView, error) {
	if t.view != nil {
		return t.view, nil
	}
	return d.views.GetOrCreate(t.id, func() (hal.TextureView, error) {
		v, err := d.device.CreateTextureView(t.raw, &hal.TextureViewDescriptor{
			Label: t.desc.Label + ".view",
		})
		if err != nil {
			return nil, fmt.Errorf("create view of %q: %w", t.desc.Label, err)
		}
		return v, nil
	})
}

// ExecuteCommandList implements render.Device.
func (d *Device) ExecuteCommandList(list *recording.CommandList) error {
	return d.ExecuteCommandLists([]*recording.CommandList{list})
}

// ExecuteCommandLists implements render.Device. The lists are encoded into
// one command buffer in slice order. Outside a frame the buffer is
// submitted and waited for; inside a frame it is queued until EndFrame,
// Flush or Finish.
func (d *Device) ExecuteCommandLists(lists []*recording.CommandList) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrClosed
	}

	encoder, err := d.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "framegraph"})
	if err != nil {
		return fmt.Errorf("wgpu: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("framegraph"); err != nil {
		return fmt.Errorf("wgpu: begin encoding: %w", err)
	}

	for _, list := range lists {
		if list == nil {
			continue
		}
		p := &player{dev: d, enc: encoder}
		if err := recording.Playback(list, p); err != nil {
			p.abort()
			encoder.DiscardEncoding()
			return err
		}
		if p.pass != nil {
			p.abort()
			encoder.DiscardEncoding()
			return fmt.Errorf("playback %q: %w", list.Label(), render.ErrRenderPassInProgress)
		}
		if err := p.flushClear(); err != nil {
			encoder.DiscardEncoding()
			return fmt.Errorf("playback %q: %w", list.Label(), err)
		}
	}

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("wgpu: end encoding: %w", err)
	}
	d.pending = append(d.pending, cmdBuf)
	d.stats.CommandBuffers++

	if d.inFrame {
		return nil
	}
	return d.finishLocked()
}

// BeginFrame implements render.Device.
func (d *Device) BeginFrame() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrClosed
	}
	if d.inFrame {
		return render.ErrFrameInProgress
	}
	d.inFrame = true
	return nil
}

// EndFrame implements render.Device. Work queued during the frame is
// submitted without waiting.
func (d *Device) EndFrame() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.inFrame {
		return render.ErrNoFrame
	}
	d.inFrame = false
	return d.flushLocked()
}

// Flush implements render.Device.
func (d *Device) Flush() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrClosed
	}
	return d.flushLocked()
}

// Finish implements render.Device.
func (d *Device) Finish() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrClosed
	}
	return d.finishLocked()
}

// SupportsMultithreading implements render.Device. Recording never touches
// the HAL, so lists may be recorded on any goroutine.
func (d *Device) SupportsMultithreading() bool {
	return true
}

// flushLocked submits the pending command buffers. Caller must hold d.mu.
func (d *Device) flushLocked() error {
	if len(d.pending) == 0 {
		return nil
	}
	d.fenceValue++
	if err := d.queue.Submit(d.pending, d.fence, d.fenceValue); err != nil {
		for _, cb := range d.pending {
			d.device.FreeCommandBuffer(cb)
		}
		d.pending = d.pending[:0]
		return fmt.Errorf("wgpu: submit: %w", err)
	}
	d.stats.Submissions++
	d.inflight = append(d.inflight, d.pending...)
	d.pending = d.pending[:0]
	return nil
}

// finishLocked submits pending work, waits for the last submission and
// frees every completed command buffer. Caller must hold d.mu.
func (d *Device) finishLocked() error {
	if err := d.flushLocked(); err != nil {
		return err
	}
	if d.fenceValue == 0 {
		return nil
	}
	ok, err := d.device.Wait(d.fence, d.fenceValue, d.waitTimeout)
	if err != nil {
		return fmt.Errorf("wgpu: wait for GPU: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w after %v", ErrTimeout, d.waitTimeout)
	}
	for _, cb := range d.inflight {
		d.device.FreeCommandBuffer(cb)
	}
	d.inflight = d.inflight[:0]
	return nil
}

// Close waits for outstanding work, releases cached views and the fence,
// and destroys the HAL device when this package opened it.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil
	}
	err := d.finishLocked()
	d.closed = true

	d.views.Clear()
	d.device.DestroyFence(d.fence)
	if d.owned {
		d.device.Destroy()
		if d.instance != nil {
			d.instance.Destroy()
		}
	}
	return err
}

var _ render.Device = (*Device)(nil)
