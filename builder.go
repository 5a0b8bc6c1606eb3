package framegraph

// Builder records the resource usages of the pass whose Setup is running.
// It is only valid inside Setup; later calls are ignored.
type Builder struct {
	g      *Graph
	p      *pass
	active bool
}

// ReadTexture records that the pass reads h. extra is OR-ed into the usage,
// so ReadTexture(h, UsageWrite) declares a read-write use.
func (b *Builder) ReadTexture(h TextureHandle, extra Usage) TextureHandle {
	if b.g.texture(h) == nil {
		b.invalid("ReadTexture", uint32(h))
		return h
	}
	b.record(KindTexture, uint32(h), UsageRead|extra)
	return h
}

// WriteTexture records that the pass writes h. extra is OR-ed into the usage.
func (b *Builder) WriteTexture(h TextureHandle, extra Usage) TextureHandle {
	if b.g.texture(h) == nil {
		b.invalid("WriteTexture", uint32(h))
		return h
	}
	b.record(KindTexture, uint32(h), UsageWrite|extra)
	return h
}

// ReadBuffer records that the pass reads h. extra is OR-ed into the usage.
func (b *Builder) ReadBuffer(h BufferHandle, extra Usage) BufferHandle {
	if b.g.buffer(h) == nil {
		b.invalid("ReadBuffer", uint32(h))
		return h
	}
	b.record(KindBuffer, uint32(h), UsageRead|extra)
	return h
}

// WriteBuffer records that the pass writes h. extra is OR-ed into the usage.
func (b *Builder) WriteBuffer(h BufferHandle, extra Usage) BufferHandle {
	if b.g.buffer(h) == nil {
		b.invalid("WriteBuffer", uint32(h))
		return h
	}
	b.record(KindBuffer, uint32(h), UsageWrite|extra)
	return h
}

// SetRenderTarget sets the pass's color and depth targets. Either may be
// zero. Out-of-range handles are replaced by zero.
func (b *Builder) SetRenderTarget(color, depth TextureHandle) *Builder {
	if !b.active {
		return b
	}
	if color != 0 && b.g.texture(color) == nil {
		b.invalid("SetRenderTarget", uint32(color))
		color = 0
	}
	if depth != 0 && b.g.texture(depth) == nil {
		b.invalid("SetRenderTarget", uint32(depth))
		depth = 0
	}
	b.p.hasTarget = true
	b.p.color, b.p.depth = color, depth
	return b
}

// SetViewport sets an explicit pass viewport.
func (b *Builder) SetViewport(width, height uint32) *Builder {
	if b.active {
		b.p.viewport = Viewport{Width: width, Height: height}
	}
	return b
}

// record merges repeated uses of one resource into a single record.
func (b *Builder) record(kind ResourceKind, h uint32, u Usage) {
	if !b.active {
		Logger().Warn("framegraph: builder used outside Setup", "pass", b.p.desc.Name)
		return
	}
	for i := range b.p.usages {
		r := &b.p.usages[i]
		if r.Kind == kind && r.Handle == h {
			r.Usage |= u
			return
		}
	}
	b.p.usages = append(b.p.usages, UsageRecord{Kind: kind, Handle: h, Usage: u})
}

func (b *Builder) invalid(op string, h uint32) {
	Logger().Warn("framegraph: invalid handle", "op", op, "pass", b.p.desc.Name, "handle", h)
}
