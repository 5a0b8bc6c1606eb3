package framegraph

import (
	"github.com/gogpu/gputypes"

	"github.com/gogpu/framegraph/gpu"
	"github.com/gogpu/framegraph/render"
)

// DeviceAllocators returns allocators that create resources on dev.
// Textures without an explicit usage are created as sampled render
// attachments.
func DeviceAllocators(dev render.Device) (TextureAllocator, BufferAllocator) {
	textures := func(desc TextureDesc) (gpu.Texture, error) {
		usage := desc.Usage
		if usage == 0 {
			usage = gputypes.TextureUsageTextureBinding | gputypes.TextureUsageRenderAttachment
		}
		return dev.CreateTexture(gpu.TextureDescriptor{
			Label:       desc.Name,
			Width:       desc.Width,
			Height:      desc.Height,
			Format:      desc.Format,
			Usage:       usage,
			SampleCount: 1,
		})
	}
	buffers := func(desc BufferDesc) (gpu.Buffer, error) {
		return dev.CreateBuffer(gpu.BufferDescriptor{
			Label: desc.Name,
			Size:  desc.Size,
			Kind:  desc.Kind,
			Usage: desc.Usage,
		})
	}
	return textures, buffers
}

// WithDeviceAllocators allocates every logical resource on dev.
func WithDeviceAllocators(dev render.Device) Option {
	return func(g *Graph) {
		g.allocTexture, g.allocBuffer = DeviceAllocators(dev)
	}
}
