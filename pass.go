package framegraph

import (
	"context"
	"slices"

	"github.com/gogpu/framegraph/gpu"
	"github.com/gogpu/framegraph/recording"
	"github.com/gogpu/framegraph/render"
)

// PassDesc declares a pass.
type PassDesc struct {
	// Name identifies the pass in logs and reports.
	Name string

	// Enabled, when set, is evaluated at execution time. A pass that
	// reports false is skipped entirely but stays in the graph.
	Enabled func() bool

	// Setup declares resource usages. It runs once per Compile.
	Setup func(b *Builder)

	// Execute runs the pass. It must not add passes to the graph.
	Execute func(ctx *PassContext)
}

// TransitionFunc receives the transitions of a pass before it executes.
type TransitionFunc func(pass *PassInfo, transitions []Transition)

// Viewport is a pass viewport size in pixels.
type Viewport struct {
	Width  uint32
	Height uint32
}

// IsZero reports whether the viewport has no area.
func (v Viewport) IsZero() bool { return v.Width == 0 || v.Height == 0 }

// Recording converts the viewport to a full-depth recorded viewport.
func (v Viewport) Recording() recording.Viewport {
	return recording.Viewport{Width: float32(v.Width), Height: float32(v.Height), MaxDepth: 1}
}

type pass struct {
	desc        PassDesc
	usages      []UsageRecord
	transitions []Transition

	hasTarget bool
	color     TextureHandle
	depth     TextureHandle
	viewport  Viewport
}

// PassInfo is a read-only snapshot of a declared pass.
type PassInfo struct {
	Index       int
	Name        string
	Usages      []UsageRecord
	Transitions []Transition

	// ColorTarget and DepthTarget are the resolved targets: the pass's own
	// when it called SetRenderTarget, otherwise the graph's.
	ColorTarget TextureHandle
	DepthTarget TextureHandle

	// Viewport is the resolved viewport.
	Viewport Viewport
}

func (g *Graph) passInfo(i int) PassInfo {
	p := g.passes[i]
	color, depth := g.targetsOf(p)
	return PassInfo{
		Index:       i,
		Name:        p.desc.Name,
		Usages:      slices.Clone(p.usages),
		Transitions: slices.Clone(p.transitions),
		ColorTarget: color,
		DepthTarget: depth,
		Viewport:    g.viewportOf(p),
	}
}

func (g *Graph) targetsOf(p *pass) (color, depth TextureHandle) {
	if p.hasTarget {
		return p.color, p.depth
	}
	return g.target.color, g.target.depth
}

// viewportOf resolves a pass viewport: explicit, then the size of its color
// target, then the graph default.
func (g *Graph) viewportOf(p *pass) Viewport {
	if !p.viewport.IsZero() {
		return p.viewport
	}
	color, depth := g.targetsOf(p)
	for _, h := range []TextureHandle{color, depth} {
		if e := g.texture(h); e != nil && e.desc.Width > 0 && e.desc.Height > 0 {
			return Viewport{Width: e.desc.Width, Height: e.desc.Height}
		}
	}
	return g.defaultViewport
}

// PassContext is handed to a pass's Execute callback.
type PassContext struct {
	graph    *Graph
	pass     *pass
	index    int
	ctx      context.Context
	commands *recording.CommandList

	// Device is the device the graph executes on. It may be nil in
	// immediate mode.
	Device render.Device

	// Viewport is the resolved pass viewport.
	Viewport Viewport

	// ColorTarget and DepthTarget are the resolved target handles.
	ColorTarget TextureHandle
	DepthTarget TextureHandle
}

func (g *Graph) newPassContext(ctx context.Context, dev render.Device, i int, cl *recording.CommandList) *PassContext {
	p := g.passes[i]
	color, depth := g.targetsOf(p)
	return &PassContext{
		graph:       g,
		pass:        p,
		index:       i,
		ctx:         ctx,
		commands:    cl,
		Device:      dev,
		Viewport:    g.viewportOf(p),
		ColorTarget: color,
		DepthTarget: depth,
	}
}

// Name returns the pass name.
func (c *PassContext) Name() string { return c.pass.desc.Name }

// Index returns the pass declaration index.
func (c *PassContext) Index() int { return c.index }

// Context returns the execution context. It is never nil.
func (c *PassContext) Context() context.Context { return c.ctx }

// Transitions returns the transitions computed for the pass.
func (c *PassContext) Transitions() []Transition { return slices.Clone(c.pass.transitions) }

// Commands returns the pass's command list in recorded mode, nil in
// immediate mode.
func (c *PassContext) Commands() *recording.CommandList { return c.commands }

// Texture returns the physical texture of h, or nil when unresolved.
func (c *PassContext) Texture(h TextureHandle) gpu.Texture { return c.graph.GetTextureResource(h) }

// Buffer returns the physical buffer of h, or nil when unresolved.
func (c *PassContext) Buffer(h BufferHandle) gpu.Buffer { return c.graph.GetBufferResource(h) }

// ColorTexture returns the physical color target, or nil.
func (c *PassContext) ColorTexture() gpu.Texture { return c.Texture(c.ColorTarget) }

// DepthTexture returns the physical depth target, or nil.
func (c *PassContext) DepthTexture() gpu.Texture { return c.Texture(c.DepthTarget) }

// Framebuffer returns the framebuffer bound with BindRenderTarget when the
// pass renders to the graph target, nil otherwise.
func (c *PassContext) Framebuffer() gpu.Framebuffer {
	if c.pass.hasTarget && (c.pass.color != c.graph.target.color || c.pass.depth != c.graph.target.depth) {
		return nil
	}
	return c.graph.target.framebuffer
}
