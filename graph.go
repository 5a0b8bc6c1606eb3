package framegraph

import (
	"slices"

	"github.com/gogpu/framegraph/gpu"
)

// Graph is a per-frame render graph: declared resources, declared passes,
// the compiled order and the transient resource pool that survives frames.
//
// Graph is not safe for concurrent use.
type Graph struct {
	passes   []*pass
	textures []textureEntry
	buffers  []bufferEntry

	texturePool []texturePoolEntry
	bufferPool  []bufferPoolEntry
	hits        int
	misses      int

	order    []int
	cycle    bool
	compiled bool
	edges    int

	target renderTarget

	allocTexture    TextureAllocator
	allocBuffer     BufferAllocator
	onTransition    TransitionFunc
	strictCycles    bool
	defaultViewport Viewport
}

// renderTarget is the graph-wide target set by BindRenderTarget.
type renderTarget struct {
	color       TextureHandle
	depth       TextureHandle
	framebuffer gpu.Framebuffer
}

// New creates an empty graph.
func New(opts ...Option) *Graph {
	g := &Graph{}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// AddPass appends a pass and returns its declaration index.
// Passes execute in dependency order; ties keep declaration order.
func (g *Graph) AddPass(desc PassDesc) int {
	g.passes = append(g.passes, &pass{desc: desc})
	return len(g.passes) - 1
}

// PassCount returns the number of declared passes.
func (g *Graph) PassCount() int { return len(g.passes) }

// BindRenderTarget sets the target used by passes that do not call
// Builder.SetRenderTarget. fb may be nil.
func (g *Graph) BindRenderTarget(color, depth TextureHandle, fb gpu.Framebuffer) {
	g.target = renderTarget{color: color, depth: depth, framebuffer: fb}
}

// Reset clears passes, resource declarations, bindings and the compiled
// order for the next frame. Pooled resources are kept and become free for
// reuse.
func (g *Graph) Reset() {
	clear(g.passes)
	g.passes = g.passes[:0]
	clear(g.textures)
	g.textures = g.textures[:0]
	clear(g.buffers)
	g.buffers = g.buffers[:0]
	g.order = nil
	g.cycle = false
	g.compiled = false
	g.edges = 0
	g.target = renderTarget{}
	g.releasePool()
}

// Compiled reports whether Compile ran since the last Reset.
func (g *Graph) Compiled() bool { return g.compiled }

// HasCycle reports whether the last Compile found a dependency cycle and
// fell back to declaration order.
func (g *Graph) HasCycle() bool { return g.cycle }

// Order returns the pass indices in execution order.
func (g *Graph) Order() []int { return slices.Clone(g.executionOrder()) }

// Passes returns a snapshot of every declared pass in declaration order.
func (g *Graph) Passes() []PassInfo {
	out := make([]PassInfo, len(g.passes))
	for i := range g.passes {
		out[i] = g.passInfo(i)
	}
	return out
}

// executionOrder is the compiled order when it covers every pass, else the
// declaration order.
func (g *Graph) executionOrder() []int {
	if g.compiled && len(g.order) == len(g.passes) {
		return g.order
	}
	return declarationOrder(len(g.passes))
}

func declarationOrder(n int) []int {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	return order
}
