// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package gpu defines the descriptors and physical resource interfaces shared
// by the frame graph, the command recorder and device implementations.
//
// Descriptors mirror the WebGPU vocabulary through gputypes so that a backend
// built on gogpu/wgpu can forward them without translation. The interfaces are
// deliberately narrow: the graph only needs to identify, size and destroy the
// resources it pools, and command lists only carry them as opaque references.
package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
)

// Access describes how a pass or a barrier touches a resource.
// It is a bit set: AccessReadWrite is AccessRead|AccessWrite.
type Access uint8

const (
	// AccessRead marks a resource that is sampled, read or copied from.
	AccessRead Access = 1 << iota

	// AccessWrite marks a resource that is rendered to or written.
	AccessWrite

	// AccessReadWrite marks a resource that is both read and written,
	// for example a storage texture or a read-modify-write buffer.
	AccessReadWrite = AccessRead | AccessWrite
)

// String returns the access mode name.
func (a Access) String() string {
	switch a {
	case AccessRead:
		return "Read"
	case AccessWrite:
		return "Write"
	case AccessReadWrite:
		return "ReadWrite"
	case 0:
		return "None"
	default:
		return fmt.Sprintf("Access(%d)", uint8(a))
	}
}

// TextureUsage maps an access mode to the WebGPU usage a texture is expected
// to be in. Depth formats written by a pass stay render attachments.
func (a Access) TextureUsage() gputypes.TextureUsage {
	switch a {
	case AccessRead:
		return gputypes.TextureUsageTextureBinding
	case AccessWrite:
		return gputypes.TextureUsageRenderAttachment
	case AccessReadWrite:
		return gputypes.TextureUsageStorageBinding
	default:
		return 0
	}
}

// TextureDescriptor describes a texture to create.
type TextureDescriptor struct {
	// Label is an optional debug label.
	Label string

	// Width and Height are the texture size in pixels.
	Width  uint32
	Height uint32

	// Format is the texel format.
	Format gputypes.TextureFormat

	// Usage is the set of WebGPU usages the texture is created with.
	// Zero means TextureBinding|RenderAttachment.
	Usage gputypes.TextureUsage

	// SampleCount is the multisample count. Zero means 1.
	SampleCount uint32
}

// BufferKind is the role a buffer plays in a pipeline.
type BufferKind uint8

const (
	BufferVertex BufferKind = iota
	BufferIndex
	BufferUniform
	BufferStorage
	BufferStaging
)

var bufferKindNames = [...]string{
	BufferVertex:  "Vertex",
	BufferIndex:   "Index",
	BufferUniform: "Uniform",
	BufferStorage: "Storage",
	BufferStaging: "Staging",
}

// String returns the buffer kind name.
func (k BufferKind) String() string {
	if int(k) < len(bufferKindNames) {
		return bufferKindNames[k]
	}
	return "Unknown"
}

// BufferDescriptor describes a buffer to create.
type BufferDescriptor struct {
	Label string
	Size  uint64
	Kind  BufferKind
	Usage gputypes.BufferUsage
}

// PipelineDescriptor describes a pipeline to create.
//
// Shader compilation is not part of this module, so the descriptor carries a
// backend specific payload in Native (for the wgpu backend a
// *hal.RenderPipelineDescriptor). Backends that do not understand the payload
// create a placeholder pipeline that only carries the label.
type PipelineDescriptor struct {
	Label  string
	Native any
}

// Texture is a physical texture owned by a device.
type Texture interface {
	Label() string
	Width() uint32
	Height() uint32
	Format() gputypes.TextureFormat

	// Destroy releases the GPU memory behind the texture.
	Destroy()
}

// Buffer is a physical buffer owned by a device.
type Buffer interface {
	Label() string
	Size() uint64
	Destroy()
}

// Framebuffer groups the color and depth attachments a render pass draws into.
type Framebuffer interface {
	Label() string

	// SetAttachments replaces the attachments. Either may be nil.
	SetAttachments(color, depth Texture)

	Color() Texture
	Depth() Texture
	Destroy()
}

// Pipeline is a compiled render pipeline.
type Pipeline interface {
	Label() string
	Destroy()
}

// VertexArray binds the vertex and optional index buffer of a draw.
type VertexArray struct {
	Vertex      Buffer
	Index       Buffer
	IndexFormat gputypes.IndexFormat
}

// IsDepthFormat reports whether f is a depth or depth/stencil format.
func IsDepthFormat(f gputypes.TextureFormat) bool {
	switch f {
	case gputypes.TextureFormatDepth24PlusStencil8, gputypes.TextureFormatDepth32Float:
		return true
	}
	return false
}
