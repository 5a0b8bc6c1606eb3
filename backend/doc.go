// Package backend selects the render.Device a frame graph executes on.
//
// Devices are registered by name from init() functions and opened at
// runtime. The headless "null" device is always available; importing
// backend/wgpu adds "noop", a device driven through the gogpu/wgpu HAL with
// its no-op backend:
//
//	import _ "github.com/gogpu/framegraph/backend/wgpu"
//
// # Backend Selection
//
// Use Default to open the best available device, or Open to request one
// by name:
//
//	dev, err := backend.Open("noop")
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer backend.Close(dev)
//
// # Available Backends
//
//   - "null": render.NullDevice, validates and counts commands
//   - "noop": gogpu/wgpu HAL noop device (backend/wgpu)
package backend
