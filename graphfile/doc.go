// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package graphfile loads declarative frame graph descriptions written in
// HCL and declares them on a [framegraph.Graph].
//
// A description declares textures, buffers and passes by name:
//
//	variable "shadows" {
//	  default = true
//	}
//
//	texture "depth" {
//	  width     = var.width
//	  height    = var.height
//	  format    = "depth24plus-stencil8"
//	  transient = true
//	}
//
//	texture "hdr" {
//	  width  = var.width
//	  height = var.height
//	  format = "rgba16float"
//	  usage  = ["render-attachment", "texture-binding"]
//	}
//
//	buffer "lights" {
//	  size      = 4096
//	  kind      = "storage"
//	  usage     = ["storage", "copy-dst"]
//	  transient = true
//	}
//
//	pass "Depth" {
//	  target {
//	    depth = "depth"
//	  }
//	}
//
//	pass "Lighting" {
//	  enabled = var.shadows
//	  reads   = ["depth"]
//	  writes  = ["lights"]
//	}
//
//	pass "Color" {
//	  reads = ["depth", "lights"]
//	  draws = 3
//	  target {
//	    color = "hdr"
//	    depth = "depth"
//	  }
//	}
//
// The variables width and height default to 1280 and 720. Variables
// declared with a variable block take their default unless the caller
// overrides them. A pass render target is written by the pass, so it does
// not need to be listed in writes.
//
// Names are resolved while decoding: an unknown or mistyped name is
// reported with the source range of the offending list element.
//
// When executed in recorded mode, a pass that declares draws records a
// render pass with that many Draw commands into its command list.
package graphfile
