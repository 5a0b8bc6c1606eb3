// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package wgpu implements render.Device on top of the gogpu/wgpu hardware
// abstraction layer.
//
// A Device wraps a hal.Device and its hal.Queue. Command lists are encoded
// through a hal.CommandEncoder: render passes become hal render passes,
// texture barriers become TransitionTextures calls, and every submission is
// fenced so Finish can wait for the GPU.
//
// # Opening a device
//
// Hosts that already own a GPU device (for example a gogpu window) pass it
// in through NewFromProvider, which accepts any value exposing
// HalDevice() any and HalQueue() any:
//
//	dev, err := wgpu.NewFromProvider(provider)
//
// Tests and tools open the headless noop HAL backend:
//
//	dev, err := wgpu.OpenNoop()
//	defer dev.Close()
//
// Importing the package registers the noop device with the backend registry
// under backend.BackendNoop, so backend.Default prefers it over the null
// device.
//
// # Command mapping
//
//	Clear            deferred, folded into the next render pass as LoadOpClear
//	BeginRenderPass  encoder.BeginRenderPass with the framebuffer attachments
//	SetViewport      applied to the open pass, or to the next one
//	BindPipeline     pipelines created from a *hal.RenderPipelineDescriptor
//	ResourceBarrier  encoder.TransitionTextures (buffer barriers are implicit)
//	BlitToScreen     forwarded to the PresentFunc set by WithPresent
//
// Texture views are created lazily and kept in a bounded LRU cache keyed by
// texture.
package wgpu
