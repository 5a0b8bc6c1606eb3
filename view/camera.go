// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package view

import "github.com/chewxy/math32"

// Vec3 is a 3D vector.
type Vec3 [3]float32

func (a Vec3) sub(b Vec3) Vec3 { return Vec3{a[0] - b[0], a[1] - b[1], a[2] - b[2]} }

func (a Vec3) dot(b Vec3) float32 { return a[0]*b[0] + a[1]*b[1] + a[2]*b[2] }

func (a Vec3) cross(b Vec3) Vec3 {
	return Vec3{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

// normalize returns a unit vector, or a unchanged when it has zero length.
func (a Vec3) normalize() Vec3 {
	l := math32.Sqrt(a.dot(a))
	if l == 0 {
		return a
	}
	return Vec3{a[0] / l, a[1] / l, a[2] / l}
}

// Mat4 is a column-major 4x4 matrix.
type Mat4 [16]float32

// Identity returns the identity matrix.
func Identity() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Mul returns m * n.
func (m Mat4) Mul(n Mat4) Mat4 {
	var out Mat4
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			var sum float32
			for k := 0; k < 4; k++ {
				sum += m[k*4+row] * n[col*4+k]
			}
			out[col*4+row] = sum
		}
	}
	return out
}

// Transform returns m * (p, 1) after the perspective divide.
func (m Mat4) Transform(p Vec3) Vec3 {
	x := m[0]*p[0] + m[4]*p[1] + m[8]*p[2] + m[12]
	y := m[1]*p[0] + m[5]*p[1] + m[9]*p[2] + m[13]
	z := m[2]*p[0] + m[6]*p[1] + m[10]*p[2] + m[14]
	w := m[3]*p[0] + m[7]*p[1] + m[11]*p[2] + m[15]
	if w != 0 && w != 1 {
		return Vec3{x / w, y / w, z / w}
	}
	return Vec3{x, y, z}
}

// LookAt returns a right-handed view matrix for a camera at eye looking at
// target.
func LookAt(eye, target, up Vec3) Mat4 {
	z := eye.sub(target).normalize()
	x := up.cross(z).normalize()
	y := z.cross(x)
	return Mat4{
		x[0], y[0], z[0], 0,
		x[1], y[1], z[1], 0,
		x[2], y[2], z[2], 0,
		-x.dot(eye), -y.dot(eye), -z.dot(eye), 1,
	}
}

// Perspective returns a right-handed projection matrix mapping depth to the
// WebGPU clip range [0, 1]. fovY is in radians.
func Perspective(fovY, aspect, near, far float32) Mat4 {
	f := 1 / math32.Tan(fovY/2)
	m := Mat4{}
	m[0] = f / aspect
	m[5] = f
	m[10] = far / (near - far)
	m[11] = -1
	m[14] = near * far / (near - far)
	return m
}

// Camera is a perspective camera.
type Camera struct {
	Eye    Vec3
	Target Vec3
	Up     Vec3

	// FovY is the vertical field of view in radians.
	FovY float32
	Near float32
	Far  float32
}

// DefaultCamera returns a camera five units back on +Z looking at the
// origin with a 60 degree field of view.
func DefaultCamera() *Camera {
	return &Camera{
		Eye:  Vec3{0, 0, 5},
		Up:   Vec3{0, 1, 0},
		FovY: math32.Pi / 3,
		Near: 0.1,
		Far:  100,
	}
}

// Matrices are the camera transforms handed to drawables and helpers.
type Matrices struct {
	View           Mat4
	Projection     Mat4
	ViewProjection Mat4
}

// Matrices computes the camera transforms for a target of the given size.
func (c *Camera) Matrices(width, height uint32) Matrices {
	aspect := float32(1)
	if height > 0 {
		aspect = float32(width) / float32(height)
	}
	up := c.Up
	if up == (Vec3{}) {
		up = Vec3{0, 1, 0}
	}
	v := LookAt(c.Eye, c.Target, up)
	p := Perspective(c.FovY, aspect, c.Near, c.Far)
	return Matrices{View: v, Projection: p, ViewProjection: p.Mul(v)}
}
