// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package mesh builds vbo attribute data from vector types.
//
// Positions are golang.org/x/image/math/f32 Vec3 values and colors are
// Vec4 (RGBA in [0,1]). A Mesh flattens them into the per-slot float
// arrays consumed by vbo.Primitive.Draw.
package mesh

import (
	"fmt"

	"golang.org/x/image/math/f32"

	"github.com/gogpu/vbo"
)

// Mesh is an indexed triangle list with optional per-vertex colors.
type Mesh struct {
	Positions []f32.Vec3
	Colors    []f32.Vec4
	Indices   []uint32
}

// Triangle returns the tutorial triangle: apex at the top, one primary
// color per vertex.
func Triangle() Mesh {
	return Mesh{
		Positions: []f32.Vec3{
			{0.0, 0.5, 0.0},
			{-0.5, -0.5, 0.0},
			{0.5, -0.5, 0.0},
		},
		Colors: []f32.Vec4{
			{1, 0, 0, 1},
			{0, 1, 0, 1},
			{0, 0, 1, 1},
		},
		Indices: []uint32{0, 1, 2},
	}
}

// Quad returns an axis-aligned square of the given half extent centered
// on the origin, split into two triangles.
func Quad(half float32, color f32.Vec4) Mesh {
	return Mesh{
		Positions: []f32.Vec3{
			{-half, -half, 0},
			{half, -half, 0},
			{half, half, 0},
			{-half, half, 0},
		},
		Colors:  []f32.Vec4{color, color, color, color},
		Indices: []uint32{0, 1, 2, 2, 3, 0},
	}
}

// VertexCount returns the number of vertices.
func (m Mesh) VertexCount() int { return len(m.Positions) }

// Validate reports whether colors match positions and every index refers
// to a vertex.
func (m Mesh) Validate() error {
	if len(m.Colors) != 0 && len(m.Colors) != len(m.Positions) {
		return fmt.Errorf("mesh: %d colors for %d positions", len(m.Colors), len(m.Positions))
	}
	for i, idx := range m.Indices {
		if int(idx) >= len(m.Positions) {
			return fmt.Errorf("mesh: index %d at %d out of range (%d vertices)", idx, i, len(m.Positions))
		}
	}
	return nil
}

// Attributes returns the position data for positionSlot and, when the mesh
// has colors, the color data for colorSlot.
func (m Mesh) Attributes(positionSlot, colorSlot int) []vbo.AttributeData {
	attrs := []vbo.AttributeData{{Slot: positionSlot, Data: Positions(m.Positions)}}
	if len(m.Colors) > 0 {
		attrs = append(attrs, vbo.AttributeData{Slot: colorSlot, Data: Colors(m.Colors)})
	}
	return attrs
}

// Positions flattens vectors into x,y,z triples.
func Positions(vs []f32.Vec3) []float32 {
	out := make([]float32, 0, len(vs)*3)
	for _, v := range vs {
		out = append(out, v[:]...)
	}
	return out
}

// Colors flattens vectors into r,g,b,a quadruples.
func Colors(vs []f32.Vec4) []float32 {
	out := make([]float32, 0, len(vs)*4)
	for _, v := range vs {
		out = append(out, v[:]...)
	}
	return out
}

// Transform applies an affine 2D transform to the x,y components of every
// position in place. z is left unchanged.
func (m Mesh) Transform(a f32.Aff3) {
	for i, p := range m.Positions {
		m.Positions[i] = f32.Vec3{
			a[0]*p[0] + a[1]*p[1] + a[2],
			a[3]*p[0] + a[4]*p[1] + a[5],
			p[2],
		}
	}
}
