// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package view

import (
	"github.com/gogpu/framegraph/gpu"
	"github.com/gogpu/framegraph/recording"
)

// Helper is an optional pass drawn after the scene of every view whose
// feature mask contains Feature.
type Helper struct {
	Name    string
	Feature Feature
	Draw    func(cl *recording.CommandList, m *Matrices)
}

// Vertex counts of the built-in helpers. Their vertex shaders generate the
// geometry from the vertex index.
const (
	skyboxVertices = 36 // cube, 12 triangles
	gridVertices   = 6  // ground quad, 2 triangles
	axisVertices   = 6  // 3 line segments
	gizmoVertices  = 54 // 3 arrows, 6 triangles each
)

// BuiltinHelpers returns the skybox, grid, axis and gizmo helpers. Each
// binds the pipeline registered for its feature in ps, if any, and issues
// one non-indexed draw. ps may be nil.
func BuiltinHelpers(ps map[Feature]gpu.Pipeline) []Helper {
	return []Helper{
		fixedHelper("skybox", FeatureSkybox, ps[FeatureSkybox], skyboxVertices),
		fixedHelper("grid", FeatureGrid, ps[FeatureGrid], gridVertices),
		fixedHelper("axis", FeatureAxis, ps[FeatureAxis], axisVertices),
		fixedHelper("gizmo", FeatureGizmo, ps[FeatureGizmo], gizmoVertices),
	}
}

func fixedHelper(name string, f Feature, p gpu.Pipeline, vertices uint32) Helper {
	return Helper{
		Name:    name,
		Feature: f,
		Draw: func(cl *recording.CommandList, _ *Matrices) {
			if p != nil {
				cl.BindPipeline(p)
			}
			cl.Draw(vertices, 1, 0, 0)
		},
	}
}
