package framegraph

import (
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/framegraph/gpu"
)

// TextureHandle identifies a logical texture within one frame of a Graph.
// Handles are 1-based and dense; the zero value is invalid.
type TextureHandle uint32

// BufferHandle identifies a logical buffer within one frame of a Graph.
// Handles are 1-based and dense; the zero value is invalid.
type BufferHandle uint32

// IsValid reports whether h is non-zero. It does not check the range.
func (h TextureHandle) IsValid() bool { return h != 0 }

// IsValid reports whether h is non-zero. It does not check the range.
func (h BufferHandle) IsValid() bool { return h != 0 }

// ResourceKind distinguishes textures from buffers in usage records.
type ResourceKind uint8

const (
	KindTexture ResourceKind = iota
	KindBuffer
)

// String returns "texture" or "buffer".
func (k ResourceKind) String() string {
	switch k {
	case KindTexture:
		return "texture"
	case KindBuffer:
		return "buffer"
	default:
		return fmt.Sprintf("ResourceKind(%d)", uint8(k))
	}
}

// Usage is how a pass uses a resource. It is a bit set.
type Usage uint8

const (
	UsageRead Usage = 1 << iota
	UsageWrite
	UsageReadWrite = UsageRead | UsageWrite
)

// Writes reports whether the usage modifies the resource.
func (u Usage) Writes() bool { return u&UsageWrite != 0 }

// Access converts the usage to the barrier access mode.
func (u Usage) Access() gpu.Access { return gpu.Access(u & UsageReadWrite) }

// String returns the usage name.
func (u Usage) String() string { return u.Access().String() }

// TextureDesc describes a logical texture.
type TextureDesc struct {
	// Name is a debug name. It does not take part in pool matching.
	Name string

	Width  uint32
	Height uint32
	Format gputypes.TextureFormat

	// Usage is forwarded to the allocator. Zero lets the device pick.
	Usage gputypes.TextureUsage

	// Transient textures may be served from, and returned to, the pool.
	Transient bool
}

// compatible reports whether a pooled texture created for o can serve d.
func (d TextureDesc) compatible(o TextureDesc) bool {
	return d.Width == o.Width && d.Height == o.Height && d.Format == o.Format
}

// BufferDesc describes a logical buffer.
type BufferDesc struct {
	// Name is a debug name. It does not take part in pool matching.
	Name string

	Size  uint64
	Kind  gpu.BufferKind
	Usage gputypes.BufferUsage

	// Transient buffers may be served from, and returned to, the pool.
	Transient bool
}

func (d BufferDesc) compatible(o BufferDesc) bool {
	return d.Size == o.Size && d.Kind == o.Kind && d.Usage == o.Usage
}

// UsageRecord is one resource use declared by a pass.
type UsageRecord struct {
	Kind   ResourceKind
	Handle uint32
	Usage  Usage
}

// Transition is a usage change of one resource at the start of a pass.
type Transition struct {
	Kind   ResourceKind
	Handle uint32
	Before Usage
	After  Usage
}

// String formats the transition as "texture#1 Write->Read".
func (t Transition) String() string {
	return fmt.Sprintf("%s#%d %s->%s", t.Kind, t.Handle, t.Before, t.After)
}

type textureEntry struct {
	desc     TextureDesc
	resource gpu.Texture
	external bool // bound through BindTexture
	pool     int  // index into Graph.texturePool, or -1
}

type bufferEntry struct {
	desc     BufferDesc
	resource gpu.Buffer
	external bool
	pool     int
}

// CreateTexture declares a logical texture and returns its handle.
// No physical allocation happens until Compile.
func (g *Graph) CreateTexture(desc TextureDesc) TextureHandle {
	g.textures = append(g.textures, textureEntry{desc: desc, pool: -1})
	return TextureHandle(len(g.textures))
}

// CreateBuffer declares a logical buffer and returns its handle.
// No physical allocation happens until Compile.
func (g *Graph) CreateBuffer(desc BufferDesc) BufferHandle {
	g.buffers = append(g.buffers, bufferEntry{desc: desc, pool: -1})
	return BufferHandle(len(g.buffers))
}

func (g *Graph) texture(h TextureHandle) *textureEntry {
	if h == 0 || int(h) > len(g.textures) {
		return nil
	}
	return &g.textures[h-1]
}

func (g *Graph) buffer(h BufferHandle) *bufferEntry {
	if h == 0 || int(h) > len(g.buffers) {
		return nil
	}
	return &g.buffers[h-1]
}

// TextureCount returns the number of declared textures.
func (g *Graph) TextureCount() int { return len(g.textures) }

// BufferCount returns the number of declared buffers.
func (g *Graph) BufferCount() int { return len(g.buffers) }

// TextureDesc returns the descriptor of h.
func (g *Graph) TextureDesc(h TextureHandle) (TextureDesc, error) {
	e := g.texture(h)
	if e == nil {
		return TextureDesc{}, fmt.Errorf("texture %d: %w", h, ErrInvalidHandle)
	}
	return e.desc, nil
}

// BufferDesc returns the descriptor of h.
func (g *Graph) BufferDesc(h BufferHandle) (BufferDesc, error) {
	e := g.buffer(h)
	if e == nil {
		return BufferDesc{}, fmt.Errorf("buffer %d: %w", h, ErrInvalidHandle)
	}
	return e.desc, nil
}

// BindTexture attaches an externally owned texture to h. A bound texture
// takes precedence over pooled allocation. Binding nil clears the binding.
// Invalid handles are ignored.
func (g *Graph) BindTexture(h TextureHandle, tex gpu.Texture) {
	e := g.texture(h)
	if e == nil {
		Logger().Warn("framegraph: BindTexture on invalid handle", "handle", uint32(h))
		return
	}
	g.releaseTexture(e)
	e.resource = tex
	e.external = tex != nil
}

// BindBuffer attaches an externally owned buffer to h. A bound buffer takes
// precedence over pooled allocation. Binding nil clears the binding.
// Invalid handles are ignored.
func (g *Graph) BindBuffer(h BufferHandle, buf gpu.Buffer) {
	e := g.buffer(h)
	if e == nil {
		Logger().Warn("framegraph: BindBuffer on invalid handle", "handle", uint32(h))
		return
	}
	g.releaseBuffer(e)
	e.resource = buf
	e.external = buf != nil
}

// GetTextureResource returns the physical texture behind h, or nil when h
// is invalid or unresolved.
func (g *Graph) GetTextureResource(h TextureHandle) gpu.Texture {
	if e := g.texture(h); e != nil {
		return e.resource
	}
	return nil
}

// GetBufferResource returns the physical buffer behind h, or nil when h is
// invalid or unresolved.
func (g *Graph) GetBufferResource(h BufferHandle) gpu.Buffer {
	if e := g.buffer(h); e != nil {
		return e.resource
	}
	return nil
}

// UnresolvedTextures returns the handles without a physical texture.
func (g *Graph) UnresolvedTextures() []TextureHandle {
	var out []TextureHandle
	for i := range g.textures {
		if g.textures[i].resource == nil {
			out = append(out, TextureHandle(i+1))
		}
	}
	return out
}

// UnresolvedBuffers returns the handles without a physical buffer.
func (g *Graph) UnresolvedBuffers() []BufferHandle {
	var out []BufferHandle
	for i := range g.buffers {
		if g.buffers[i].resource == nil {
			out = append(out, BufferHandle(i+1))
		}
	}
	return out
}

// CheckResolved returns an error naming every logical resource left without
// physical backing by the last Compile.
func (g *Graph) CheckResolved() error {
	if !g.compiled {
		return ErrNotCompiled
	}
	var names []string
	for _, h := range g.UnresolvedTextures() {
		names = append(names, fmt.Sprintf("texture %q", g.textures[h-1].desc.Name))
	}
	for _, h := range g.UnresolvedBuffers() {
		names = append(names, fmt.Sprintf("buffer %q", g.buffers[h-1].desc.Name))
	}
	if len(names) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrUnresolvedResource, names)
}
