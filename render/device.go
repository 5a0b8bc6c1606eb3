// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"

	"github.com/gogpu/framegraph/gpu"
	"github.com/gogpu/framegraph/recording"
)

// Device errors shared by implementations.
var (
	// ErrFrameInProgress is returned by BeginFrame while a frame is open.
	ErrFrameInProgress = errors.New("render: frame already in progress")

	// ErrNoFrame is returned by EndFrame without a matching BeginFrame.
	ErrNoFrame = errors.New("render: no frame in progress")

	// ErrNoRenderPass is returned when a draw or EndRenderPass is played
	// outside a render pass.
	ErrNoRenderPass = errors.New("render: no render pass in progress")

	// ErrRenderPassInProgress is returned when a render pass is begun inside
	// another one, or a list ends with a pass still open.
	ErrRenderPassInProgress = errors.New("render: render pass already in progress")

	// ErrInvalidDescriptor is returned for zero-sized textures and buffers.
	ErrInvalidDescriptor = errors.New("render: invalid descriptor")
)

// Device creates GPU resources and executes command lists.
//
// Example:
//
//	dev := render.NewNullDevice()
//	tex, err := dev.CreateTexture(gpu.TextureDescriptor{
//	    Label:  "scene.color",
//	    Width:  1280,
//	    Height: 720,
//	    Format: gputypes.TextureFormatRGBA8Unorm,
//	})
type Device interface {
	// CreateTexture creates a texture.
	CreateTexture(desc gpu.TextureDescriptor) (gpu.Texture, error)

	// CreateBuffer creates a buffer.
	CreateBuffer(desc gpu.BufferDescriptor) (gpu.Buffer, error)

	// CreateFramebuffer creates an empty framebuffer; attach textures with
	// gpu.Framebuffer.SetAttachments.
	CreateFramebuffer(label string) (gpu.Framebuffer, error)

	// CreatePipeline creates a render pipeline.
	CreatePipeline(desc gpu.PipelineDescriptor) (gpu.Pipeline, error)

	// ExecuteCommandList plays back one closed command list.
	ExecuteCommandList(list *recording.CommandList) error

	// ExecuteCommandLists plays back closed command lists in slice order
	// as a single submission.
	ExecuteCommandLists(lists []*recording.CommandList) error

	// BeginFrame and EndFrame bracket the work of one frame.
	BeginFrame() error
	EndFrame() error

	// Flush submits any buffered work without waiting for it.
	Flush() error

	// Finish submits buffered work and waits until the GPU is idle.
	Finish() error

	// SupportsMultithreading reports whether command lists may be recorded
	// on goroutines other than the submission goroutine.
	SupportsMultithreading() bool
}
