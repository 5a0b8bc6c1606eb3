package framegraph

// Option configures a Graph during creation.
//
// Example:
//
//	dev := render.NewNullDevice()
//	g := framegraph.New(
//	    framegraph.WithDeviceAllocators(dev),
//	    framegraph.WithTransitionCallback(insertBarriers),
//	)
type Option func(*Graph)

// WithTextureAllocator sets the callback that creates physical textures.
func WithTextureAllocator(fn TextureAllocator) Option {
	return func(g *Graph) {
		g.allocTexture = fn
	}
}

// WithBufferAllocator sets the callback that creates physical buffers.
func WithBufferAllocator(fn BufferAllocator) Option {
	return func(g *Graph) {
		g.allocBuffer = fn
	}
}

// WithTransitionCallback sets the callback invoked before a pass whose
// transition list is non-empty. This is where a backend inserts barriers.
func WithTransitionCallback(fn TransitionFunc) Option {
	return func(g *Graph) {
		g.onTransition = fn
	}
}

// WithStrictCycles makes Compile return ErrCyclicDependency when passes
// cannot be ordered. The graph still falls back to declaration order, so
// Execute remains usable.
func WithStrictCycles() Option {
	return func(g *Graph) {
		g.strictCycles = true
	}
}

// WithDefaultViewport sets the viewport of passes that neither declare one
// nor render to a sized target.
func WithDefaultViewport(width, height uint32) Option {
	return func(g *Graph) {
		g.defaultViewport = Viewport{Width: width, Height: height}
	}
}
