// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package view composes per-camera render passes on top of a frame graph.
//
// A Registry holds registered views. Each view pairs a camera with a scene,
// a visibility mask and a feature mask, and owns a render target sized by
// its DesiredSize callback. Every frame the registry declares one graph
// pass per view; the pass clears the target, draws the drawables whose tag
// intersects the visibility mask, then runs every helper (skybox, grid,
// axis, gizmo) whose feature bit is set.
//
//	reg := view.NewRegistry(dev, view.WithHelpers(view.BuiltinHelpers(nil)...))
//	reg.Register(view.Desc{
//	    Name:       "scene",
//	    Camera:     view.DefaultCamera(),
//	    Scene:      drawables,
//	    Visibility: view.SceneMask,
//	    Features:   view.FeatureGrid | view.FeatureGizmo,
//	})
//	err := reg.RenderFrame(ctx)
//
// Views render in registration order. The color output of a view is
// published as the logical texture "<name>.color" and can be read by
// passes added to the same graph after Declare.
package view
