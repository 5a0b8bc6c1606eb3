package framegraph

import (
	"github.com/gogpu/framegraph/gpu"
)

// TextureAllocator creates the physical texture for a logical one.
// Returning a nil texture or an error leaves the handle unresolved.
type TextureAllocator func(desc TextureDesc) (gpu.Texture, error)

// BufferAllocator creates the physical buffer for a logical one.
// Returning a nil buffer or an error leaves the handle unresolved.
type BufferAllocator func(desc BufferDesc) (gpu.Buffer, error)

// Pool entries outlive Reset. An entry is claimed by at most one logical
// handle per frame and released only by Reset.
type texturePoolEntry struct {
	desc     TextureDesc
	resource gpu.Texture
	inUse    bool
}

type bufferPoolEntry struct {
	desc     BufferDesc
	resource gpu.Buffer
	inUse    bool
}

// PoolStats describes the transient resource pool.
type PoolStats struct {
	// Textures and Buffers count pooled physical resources.
	Textures int
	Buffers  int

	// InUse counts entries claimed for the current frame.
	InUse int

	// Hits counts allocations served from the pool, Misses those that
	// invoked an allocator. Both are cumulative.
	Hits   int
	Misses int
}

// PoolStats returns pool occupancy and hit counters.
func (g *Graph) PoolStats() PoolStats {
	s := PoolStats{
		Textures: len(g.texturePool),
		Buffers:  len(g.bufferPool),
		Hits:     g.hits,
		Misses:   g.misses,
	}
	for i := range g.texturePool {
		if g.texturePool[i].inUse {
			s.InUse++
		}
	}
	for i := range g.bufferPool {
		if g.bufferPool[i].inUse {
			s.InUse++
		}
	}
	return s
}

// SetTextureAllocator replaces the texture allocator. Pooled textures were
// created by the previous allocator and are destroyed.
func (g *Graph) SetTextureAllocator(fn TextureAllocator) {
	g.clearTexturePool()
	g.allocTexture = fn
}

// SetBufferAllocator replaces the buffer allocator. Pooled buffers were
// created by the previous allocator and are destroyed.
func (g *Graph) SetBufferAllocator(fn BufferAllocator) {
	g.clearBufferPool()
	g.allocBuffer = fn
}

// ClearPool destroys every pooled resource. Logical handles that were
// served from the pool become unresolved.
func (g *Graph) ClearPool() {
	g.clearTexturePool()
	g.clearBufferPool()
}

func (g *Graph) clearTexturePool() {
	for i := range g.textures {
		if e := &g.textures[i]; e.pool >= 0 {
			e.resource = nil
			e.pool = -1
		}
	}
	for i := range g.texturePool {
		if r := g.texturePool[i].resource; r != nil {
			r.Destroy()
		}
	}
	g.texturePool = nil
}

func (g *Graph) clearBufferPool() {
	for i := range g.buffers {
		if e := &g.buffers[i]; e.pool >= 0 {
			e.resource = nil
			e.pool = -1
		}
	}
	for i := range g.bufferPool {
		if r := g.bufferPool[i].resource; r != nil {
			r.Destroy()
		}
	}
	g.bufferPool = nil
}

// releasePool marks every entry free for the next frame.
func (g *Graph) releasePool() {
	for i := range g.texturePool {
		g.texturePool[i].inUse = false
	}
	for i := range g.bufferPool {
		g.bufferPool[i].inUse = false
	}
}

func (g *Graph) releaseTexture(e *textureEntry) {
	if e.pool >= 0 {
		g.texturePool[e.pool].inUse = false
		e.pool = -1
	}
}

func (g *Graph) releaseBuffer(e *bufferEntry) {
	if e.pool >= 0 {
		g.bufferPool[e.pool].inUse = false
		e.pool = -1
	}
}

// allocateResources resolves every logical resource without a physical one.
// Transient resources first try a free compatible pool entry; everything
// else goes to the allocator.
func (g *Graph) allocateResources() {
	log := Logger()

	for i := range g.textures {
		e := &g.textures[i]
		if e.resource != nil {
			continue
		}
		if e.desc.Transient {
			if idx := g.claimTexture(e.desc); idx >= 0 {
				e.resource = g.texturePool[idx].resource
				e.pool = idx
				g.hits++
				log.Debug("framegraph: texture from pool", "name", e.desc.Name, "entry", idx)
				continue
			}
		}
		if g.allocTexture == nil {
			log.Warn("framegraph: unresolved texture, no allocator", "name", e.desc.Name, "handle", i+1)
			continue
		}
		tex, err := g.allocTexture(e.desc)
		if err != nil || tex == nil {
			log.Warn("framegraph: unresolved texture", "name", e.desc.Name, "handle", i+1, "err", err)
			continue
		}
		g.misses++
		e.resource = tex
		if e.desc.Transient {
			g.texturePool = append(g.texturePool, texturePoolEntry{desc: e.desc, resource: tex, inUse: true})
			e.pool = len(g.texturePool) - 1
		}
	}

	for i := range g.buffers {
		e := &g.buffers[i]
		if e.resource != nil {
			continue
		}
		if e.desc.Transient {
			if idx := g.claimBuffer(e.desc); idx >= 0 {
				e.resource = g.bufferPool[idx].resource
				e.pool = idx
				g.hits++
				log.Debug("framegraph: buffer from pool", "name", e.desc.Name, "entry", idx)
				continue
			}
		}
		if g.allocBuffer == nil {
			log.Warn("framegraph: unresolved buffer, no allocator", "name", e.desc.Name, "handle", i+1)
			continue
		}
		buf, err := g.allocBuffer(e.desc)
		if err != nil || buf == nil {
			log.Warn("framegraph: unresolved buffer", "name", e.desc.Name, "handle", i+1, "err", err)
			continue
		}
		g.misses++
		e.resource = buf
		if e.desc.Transient {
			g.bufferPool = append(g.bufferPool, bufferPoolEntry{desc: e.desc, resource: buf, inUse: true})
			e.pool = len(g.bufferPool) - 1
		}
	}
}

func (g *Graph) claimTexture(desc TextureDesc) int {
	for i := range g.texturePool {
		p := &g.texturePool[i]
		if !p.inUse && p.desc.compatible(desc) {
			p.inUse = true
			return i
		}
	}
	return -1
}

func (g *Graph) claimBuffer(desc BufferDesc) int {
	for i := range g.bufferPool {
		p := &g.bufferPool[i]
		if !p.inUse && p.desc.compatible(desc) {
			p.inUse = true
			return i
		}
	}
	return -1
}
