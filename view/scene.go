// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package view

import (
	"github.com/gogpu/framegraph/gpu"
	"github.com/gogpu/framegraph/recording"
)

// Drawable is an entity a view can draw.
type Drawable interface {
	// Tag returns the visibility tag. Zero means TagUntagged.
	Tag() Tag

	// Draw records the commands that draw the entity. It is called inside
	// the view's render pass.
	Draw(cl *recording.CommandList, m *Matrices)
}

// Scene supplies the drawables of a frame.
type Scene interface {
	Drawables() []Drawable
}

// Drawables is a Scene backed by a slice.
type Drawables []Drawable

// Drawables implements Scene.
func (d Drawables) Drawables() []Drawable { return d }

// Mesh is a Drawable that binds a pipeline and vertex array and issues one
// draw. IndexCount selects an indexed draw.
type Mesh struct {
	Name        string
	Tagged      Tag
	Pipeline    gpu.Pipeline
	VertexArray gpu.VertexArray
	VertexCount uint32
	IndexCount  uint32
	Instances   uint32
}

// Tag implements Drawable.
func (m *Mesh) Tag() Tag { return m.Tagged }

// Draw implements Drawable.
func (m *Mesh) Draw(cl *recording.CommandList, _ *Matrices) {
	if m.Pipeline != nil {
		cl.BindPipeline(m.Pipeline)
	}
	if m.VertexArray.Vertex != nil {
		cl.BindVertexArray(m.VertexArray)
	}
	instances := m.Instances
	if instances == 0 {
		instances = 1
	}
	if m.IndexCount > 0 {
		cl.DrawIndexed(m.IndexCount, instances, 0, 0, 0)
		return
	}
	cl.Draw(m.VertexCount, instances, 0, 0)
}
