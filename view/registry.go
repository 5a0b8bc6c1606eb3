// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package view

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync/atomic"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/framegraph"
	"github.com/gogpu/framegraph/gpu"
	"github.com/gogpu/framegraph/recording"
	"github.com/gogpu/framegraph/render"
)

// Handle identifies a registered view. Handles start at 1 and are never
// reused by a Registry.
type Handle uint32

// Desc describes a view.
type Desc struct {
	Name   string
	Camera *Camera
	Scene  Scene

	// Visibility selects the drawables drawn. Zero means SceneMask.
	Visibility Mask

	// Features selects the helpers run after the scene.
	Features Feature

	// DesiredSize returns the target size for the frame. Nil uses the
	// registry default size. A zero size skips the view for the frame.
	DesiredSize func() (width, height uint32)

	// ShouldRender is evaluated when the pass executes. Nil always renders.
	ShouldRender func() bool

	ClearColor gputypes.Color
}

// Stats counts the work of the last frame.
type Stats struct {
	Rendered int64 // view passes executed
	Drawn    int64 // drawables that passed the visibility mask
	Culled   int64 // drawables rejected by the visibility mask
	Helpers  int64 // helper draws
}

type view struct {
	id       Handle
	desc     Desc
	passName string
	target   target
	output   framegraph.TextureHandle // published color, valid after Declare
	removed  bool
}

// target is the render target a view owns.
type target struct {
	width, height uint32
	color, depth  gpu.Texture
	fb            gpu.Framebuffer
}

func (t *target) release() {
	for _, tex := range []gpu.Texture{t.color, t.depth} {
		if tex != nil {
			tex.Destroy()
		}
	}
	if t.fb != nil {
		t.fb.Destroy()
	}
	*t = target{}
}

// Registry declares the passes of registered views on a frame graph.
//
// Register, Unregister, Declare and RenderFrame must be called from one
// goroutine. View passes may execute concurrently when the graph records in
// parallel.
type Registry struct {
	dev   render.Device
	graph *framegraph.Graph

	colorFormat gputypes.TextureFormat
	depthFormat gputypes.TextureFormat
	width       uint32
	height      uint32
	helpers     []Helper

	views  []*view
	nextID Handle

	rendered, drawn, culled, helperDraws atomic.Int64
}

// Option configures a Registry.
type Option func(*Registry)

// WithHelper adds a helper pass.
func WithHelper(h Helper) Option {
	return func(r *Registry) {
		r.helpers = append(r.helpers, h)
	}
}

// WithHelpers adds several helper passes, run in the given order.
func WithHelpers(hs ...Helper) Option {
	return func(r *Registry) {
		r.helpers = append(r.helpers, hs...)
	}
}

// WithColorFormat sets the color format of view targets. The default is
// the device surface format when the device reports one, else RGBA8Unorm.
func WithColorFormat(f gputypes.TextureFormat) Option {
	return func(r *Registry) {
		r.colorFormat = f
	}
}

// WithDepthFormat sets the depth format of view targets. The default is
// Depth24PlusStencil8.
func WithDepthFormat(f gputypes.TextureFormat) Option {
	return func(r *Registry) {
		r.depthFormat = f
	}
}

// WithDefaultSize sets the target size of views without a DesiredSize
// callback. The default is 1280x720.
func WithDefaultSize(width, height uint32) Option {
	return func(r *Registry) {
		r.width, r.height = width, height
	}
}

// NewRegistry creates a registry rendering on dev. The registry owns a
// graph that allocates through dev; RenderFrame uses it.
func NewRegistry(dev render.Device, opts ...Option) *Registry {
	r := &Registry{
		dev:         dev,
		graph:       framegraph.New(framegraph.WithDeviceAllocators(dev)),
		depthFormat: gputypes.TextureFormatDepth24PlusStencil8,
		width:       1280,
		height:      720,
	}
	if sf, ok := dev.(interface{ SurfaceFormat() gputypes.TextureFormat }); ok {
		r.colorFormat = sf.SurfaceFormat()
	}
	if r.colorFormat == gputypes.TextureFormatUndefined {
		r.colorFormat = gputypes.TextureFormatRGBA8Unorm
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Graph returns the graph RenderFrame declares on.
func (r *Registry) Graph() *framegraph.Graph { return r.graph }

// Register adds a view and returns its handle. The render target is
// created on the first Declare.
func (r *Registry) Register(desc Desc) Handle {
	if desc.Name == "" {
		desc.Name = "view"
	}
	if desc.Camera == nil {
		desc.Camera = DefaultCamera()
	}
	if desc.Visibility == 0 {
		desc.Visibility = SceneMask
	}
	r.nextID++
	v := &view{
		id:       r.nextID,
		desc:     desc,
		passName: fmt.Sprintf("view/%s#%d", desc.Name, r.nextID),
	}
	r.views = append(r.views, v)
	framegraph.Logger().Debug("view: registered", "view", v.passName)
	return v.id
}

// Unregister removes a view and releases its render target. A pass already
// declared for the view stays in its graph but is disabled. It reports
// whether the handle was registered.
func (r *Registry) Unregister(h Handle) bool {
	i := slices.IndexFunc(r.views, func(v *view) bool { return v.id == h })
	if i < 0 {
		return false
	}
	v := r.views[i]
	v.removed = true
	v.output = 0
	v.target.release()
	r.views = slices.Delete(r.views, i, i+1)
	return true
}

// Len returns the number of registered views.
func (r *Registry) Len() int { return len(r.views) }

// PassName returns the graph pass name of a view, "view/<name>#<id>".
func (r *Registry) PassName(h Handle) (string, bool) {
	for _, v := range r.views {
		if v.id == h {
			return v.passName, true
		}
	}
	return "", false
}

// Output returns the logical color texture a view published in the last
// Declare.
func (r *Registry) Output(h Handle) (framegraph.TextureHandle, bool) {
	for _, v := range r.views {
		if v.id == h {
			return v.output, v.output.IsValid()
		}
	}
	return 0, false
}

// Framebuffer returns the framebuffer of a view's render target, or nil
// before the first Declare.
func (r *Registry) Framebuffer(h Handle) gpu.Framebuffer {
	for _, v := range r.views {
		if v.id == h {
			return v.target.fb
		}
	}
	return nil
}

// Stats returns the counters of the last frame.
func (r *Registry) Stats() Stats {
	return Stats{
		Rendered: r.rendered.Load(),
		Drawn:    r.drawn.Load(),
		Culled:   r.culled.Load(),
		Helpers:  r.helperDraws.Load(),
	}
}

// Declare adds one pass per view to g, in registration order. Each view's
// target is resized to its desired size, and its color and depth textures
// are bound to the logical textures "<name>.color" and "<name>.depth".
// Views whose target cannot be created are skipped and reported in the
// returned error.
func (r *Registry) Declare(g *framegraph.Graph) error {
	r.rendered.Store(0)
	r.drawn.Store(0)
	r.culled.Store(0)
	r.helperDraws.Store(0)

	var errs []error
	for _, v := range r.views {
		v.output = 0
		w, h := r.width, r.height
		if v.desc.DesiredSize != nil {
			w, h = v.desc.DesiredSize()
		}
		if w == 0 || h == 0 {
			framegraph.Logger().Debug("view: zero size, skipped", "view", v.passName)
			continue
		}
		if err := r.ensureTarget(v, w, h); err != nil {
			framegraph.Logger().Warn("view: render target unavailable", "view", v.passName, "error", err)
			errs = append(errs, err)
			continue
		}

		color := g.CreateTexture(framegraph.TextureDesc{
			Name: v.desc.Name + ".color", Width: w, Height: h, Format: r.colorFormat,
		})
		depth := g.CreateTexture(framegraph.TextureDesc{
			Name: v.desc.Name + ".depth", Width: w, Height: h, Format: r.depthFormat,
		})
		g.BindTexture(color, v.target.color)
		g.BindTexture(depth, v.target.depth)
		v.output = color

		g.AddPass(framegraph.PassDesc{
			Name: v.passName,
			Enabled: func() bool {
				if v.removed {
					return false
				}
				return v.desc.ShouldRender == nil || v.desc.ShouldRender()
			},
			Setup: func(b *framegraph.Builder) {
				b.SetRenderTarget(b.WriteTexture(color, 0), b.WriteTexture(depth, 0)).SetViewport(w, h)
			},
			Execute: func(ctx *framegraph.PassContext) {
				r.execute(ctx, v)
			},
		})
	}
	return errors.Join(errs...)
}

// RenderFrame resets the registry graph, declares every view, compiles and
// executes the frame in recorded mode.
func (r *Registry) RenderFrame(ctx context.Context) error {
	r.graph.Reset()
	declErr := r.Declare(r.graph)
	if err := r.graph.Compile(); err != nil {
		return errors.Join(declErr, err)
	}
	return errors.Join(declErr, r.graph.ExecuteRecorded(ctx, r.dev))
}

// Close releases every view target and the graph pool.
func (r *Registry) Close() {
	for _, v := range r.views {
		v.target.release()
	}
	r.graph.Reset()
	r.graph.ClearPool()
}

func (r *Registry) ensureTarget(v *view, w, h uint32) error {
	t := &v.target
	if t.fb != nil && t.width == w && t.height == h {
		return nil
	}
	t.release()

	color, err := r.dev.CreateTexture(gpu.TextureDescriptor{
		Label:  v.desc.Name + ".color",
		Width:  w,
		Height: h,
		Format: r.colorFormat,
		Usage: gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageTextureBinding |
			gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return fmt.Errorf("view %q: %w", v.desc.Name, err)
	}
	depth, err := r.dev.CreateTexture(gpu.TextureDescriptor{
		Label:  v.desc.Name + ".depth",
		Width:  w,
		Height: h,
		Format: r.depthFormat,
		Usage:  gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageTextureBinding,
	})
	if err != nil {
		color.Destroy()
		return fmt.Errorf("view %q: %w", v.desc.Name, err)
	}
	fb, err := r.dev.CreateFramebuffer(v.desc.Name)
	if err != nil {
		color.Destroy()
		depth.Destroy()
		return fmt.Errorf("view %q: %w", v.desc.Name, err)
	}
	fb.SetAttachments(color, depth)

	*t = target{width: w, height: h, color: color, depth: depth, fb: fb}
	framegraph.Logger().Debug("view: target resized", "view", v.passName, "width", w, "height", h)
	return nil
}

// execute records the view pass. In immediate mode the pass records its
// own list and executes it on the device.
func (r *Registry) execute(ctx *framegraph.PassContext, v *view) {
	if v.removed || v.target.fb == nil {
		return
	}
	cl := ctx.Commands()
	immediate := cl == nil
	if immediate {
		cl = recording.NewCommandList(v.passName)
		if err := cl.Begin(); err != nil {
			framegraph.Logger().Warn("view: begin command list", "view", v.passName, "error", err)
			return
		}
	}

	t := v.target
	m := v.desc.Camera.Matrices(t.width, t.height)

	cl.BindFramebuffer(t.fb)
	cl.Clear(recording.ClearAll, v.desc.ClearColor, 1, 0)
	cl.BeginRenderPass(recording.BeginRenderPassCommand{
		Label:       v.passName,
		Framebuffer: t.fb,
		StoreOp:     gputypes.StoreOpStore,
	})
	cl.SetViewport(ctx.Viewport.Recording())

	if v.desc.Scene != nil {
		for _, d := range v.desc.Scene.Drawables() {
			if d == nil {
				continue
			}
			if !v.desc.Visibility.Matches(d.Tag()) {
				r.culled.Add(1)
				continue
			}
			d.Draw(cl, &m)
			r.drawn.Add(1)
		}
	}
	for _, h := range r.helpers {
		if h.Draw != nil && v.desc.Features.Has(h.Feature) {
			h.Draw(cl, &m)
			r.helperDraws.Add(1)
		}
	}
	cl.EndRenderPass()
	r.rendered.Add(1)

	if !immediate {
		return
	}
	if err := cl.End(); err != nil {
		framegraph.Logger().Warn("view: end command list", "view", v.passName, "error", err)
		return
	}
	dev := ctx.Device
	if dev == nil {
		dev = r.dev
	}
	if err := dev.ExecuteCommandList(cl); err != nil {
		framegraph.Logger().Warn("view: execute", "view", v.passName, "error", err)
	}
}
