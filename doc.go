// Package framegraph schedules rendering passes over logical GPU resources.
//
// # Overview
//
// A Graph holds a frame's worth of declared passes and logical resources.
// Passes declare which textures and buffers they read and write from a setup
// callback; Compile derives an execution order from those declarations,
// computes the usage transitions each pass needs, and resolves every logical
// resource to a physical one, reusing pooled resources across frames.
//
// # Quick Start
//
//	dev := render.NewNullDevice()
//	g := framegraph.New(framegraph.WithDeviceAllocators(dev))
//
//	depth := g.CreateTexture(framegraph.TextureDesc{
//	    Name: "depth", Width: 1280, Height: 720,
//	    Format: gputypes.TextureFormatDepth24PlusStencil8, Transient: true,
//	})
//	hdr := g.CreateTexture(framegraph.TextureDesc{
//	    Name: "hdr", Width: 1280, Height: 720,
//	    Format: gputypes.TextureFormatRGBA8Unorm, Transient: true,
//	})
//
//	g.AddPass(framegraph.PassDesc{
//	    Name:  "Depth",
//	    Setup: func(b *framegraph.Builder) { b.WriteTexture(depth, 0) },
//	    Execute: func(ctx *framegraph.PassContext) { ... },
//	})
//	g.AddPass(framegraph.PassDesc{
//	    Name: "Color",
//	    Setup: func(b *framegraph.Builder) {
//	        b.ReadTexture(depth, 0)
//	        b.WriteTexture(hdr, 0)
//	    },
//	    Execute: func(ctx *framegraph.PassContext) { ... },
//	})
//
//	if err := g.Compile(); err != nil { ... }
//	g.Execute(dev)
//	g.Reset() // next frame; pooled textures are reused
//
// # Ordering
//
// A pass that writes a resource runs before every later pass that uses it.
// When several passes are ready at once they keep their declaration order,
// so an identical set of declarations always compiles to the same order.
// A dependency cycle is not fatal: the graph records it (HasCycle) and runs
// passes in declaration order. WithStrictCycles turns the cycle into an
// ErrCyclicDependency from Compile.
//
// # Execution Modes
//
// Execute calls pass callbacks directly (immediate mode). ExecuteRecorded
// gives each pass its own recording.CommandList, records them in parallel
// when the device supports it, and submits all lists at once.
//
// # Error Handling
//
// The graph prefers degradation over aborting a frame. Unresolved resources,
// invalid handles and cycles are logged at [slog.LevelWarn] through Logger
// and reported by introspection (UnresolvedTextures, HasCycle, CheckResolved).
//
// # Thread Safety
//
// A Graph is not safe for concurrent use. Compile and Execute run on one
// goroutine per frame; only command list recording may fan out.
package framegraph
