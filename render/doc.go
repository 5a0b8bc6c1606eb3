// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package render defines the Device a frame graph executes against.
//
// The graph never talks to a graphics API directly. It asks a Device to
// create textures, buffers, framebuffers and pipelines, and hands it closed
// command lists to execute. Concrete devices live elsewhere:
//
//   - NullDevice: headless device that validates and counts commands
//   - backend/wgpu.Device: device on top of gogpu/wgpu HAL
//
// # Key Principle
//
// The graph RECEIVES a device from the host application, it does NOT create
// one. Hosts that already own a GPU device (a windowing framework, an editor)
// wrap it and pass it in, so graph resources and host resources share one
// device and one queue.
//
// # Architecture
//
//	                 Host Application
//	                       │
//	      ┌────────────────┼────────────────┐
//	      ▼                ▼                ▼
//	 view.Registry   framegraph.Graph   recording.CommandList
//	 (cameras)       (scheduling)       (deferred commands)
//	      │                │                │
//	      └────────────────┼────────────────┘
//	                       ▼
//	                 render.Device
//	      ┌────────────────┴────────────────┐
//	      ▼                                 ▼
//	  NullDevice                     backend/wgpu.Device
//	  (headless)                     (gogpu/wgpu HAL)
//
// # Thread Safety
//
// A Device is driven from a single submission goroutine. When
// SupportsMultithreading reports true, command lists may be recorded on other
// goroutines, but ExecuteCommandList and ExecuteCommandLists are still called
// from one goroutine in submission order.
package render
