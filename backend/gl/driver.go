// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogl

// Package gl implements vbo.Driver on OpenGL through go-gl.
//
// The driver targets the 4.1 core profile, which is a superset of the
// OpenGL ES 2/3 buffer object API (including GL_FIXED attributes). Core
// profiles require a bound vertex array object, so New creates one and keeps
// it bound for the lifetime of the driver.
//
// All methods must be called on the thread that owns the current GL context.
package gl

import (
	"errors"
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/gogpu/vbo"
)

// ErrOutOfMemory is returned when the GL reports GL_OUT_OF_MEMORY.
var ErrOutOfMemory = errors.New("gl: out of memory")

// Driver issues vbo driver calls against the current OpenGL context.
type Driver struct {
	vao uint32
}

var (
	_ vbo.Driver         = (*Driver)(nil)
	_ vbo.ConstantDriver = (*Driver)(nil)
)

// New loads the GL function pointers for the current context and binds a
// vertex array object. A context must be current on the calling thread.
func New() (*Driver, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("gl: init: %w", err)
	}
	d := &Driver{}
	gl.GenVertexArrays(1, &d.vao)
	gl.BindVertexArray(d.vao)

	vbo.Logger().Info("gl: driver ready",
		"version", gl.GoStr(gl.GetString(gl.VERSION)),
		"renderer", gl.GoStr(gl.GetString(gl.RENDERER)),
	)
	return d, nil
}

// Close deletes the vertex array object. Buffers and programs are owned by
// their creators and must be released first.
func (d *Driver) Close() {
	if d.vao == 0 {
		return
	}
	gl.BindVertexArray(0)
	gl.DeleteVertexArrays(1, &d.vao)
	d.vao = 0
}

// GenBuffers implements vbo.Driver.
func (d *Driver) GenBuffers(n int) ([]vbo.Handle, error) {
	if n <= 0 {
		return nil, nil
	}
	ids := make([]uint32, n)
	gl.GenBuffers(int32(n), &ids[0])
	if err := checkError("glGenBuffers"); err != nil {
		return nil, err
	}
	hs := make([]vbo.Handle, n)
	for i, id := range ids {
		hs[i] = vbo.Handle(id)
	}
	return hs, nil
}

// DeleteBuffers implements vbo.Driver.
func (d *Driver) DeleteBuffers(handles []vbo.Handle) {
	if len(handles) == 0 {
		return
	}
	ids := make([]uint32, len(handles))
	for i, h := range handles {
		ids[i] = uint32(h)
	}
	gl.DeleteBuffers(int32(len(ids)), &ids[0])
}

// BindBuffer implements vbo.Driver.
func (d *Driver) BindBuffer(target vbo.BufferTarget, h vbo.Handle) {
	gl.BindBuffer(bufferTarget(target), uint32(h))
}

// BufferData implements vbo.Driver.
func (d *Driver) BufferData(target vbo.BufferTarget, data []byte, usage vbo.Usage) error {
	if len(data) == 0 {
		gl.BufferData(bufferTarget(target), 0, nil, bufferUsage(usage))
	} else {
		gl.BufferData(bufferTarget(target), len(data), gl.Ptr(data), bufferUsage(usage))
	}
	return checkError("glBufferData")
}

// UseProgram implements vbo.Driver.
func (d *Driver) UseProgram(p vbo.Program) {
	gl.UseProgram(uint32(p))
}

// EnableVertexAttribArray implements vbo.Driver.
func (d *Driver) EnableVertexAttribArray(location uint32) {
	gl.EnableVertexAttribArray(location)
}

// DisableVertexAttribArray implements vbo.Driver.
func (d *Driver) DisableVertexAttribArray(location uint32) {
	gl.DisableVertexAttribArray(location)
}

// VertexAttribPointer implements vbo.Driver.
func (d *Driver) VertexAttribPointer(location uint32, l vbo.AttributeLayout) {
	gl.VertexAttribPointer(location, int32(l.Components), elementType(l.Type), l.Normalized,
		int32(l.Stride), gl.PtrOffset(l.Offset))
}

// VertexAttrib4f implements vbo.ConstantDriver.
func (d *Driver) VertexAttrib4f(location uint32, v [4]float32) {
	gl.VertexAttrib4f(location, v[0], v[1], v[2], v[3])
}

// DrawElements implements vbo.Driver.
func (d *Driver) DrawElements(mode vbo.Topology, count int, format vbo.IndexFormat, offset int) error {
	gl.DrawElements(topology(mode), int32(count), indexType(format), gl.PtrOffset(offset))
	return checkError("glDrawElements")
}

// checkError drains the GL error queue and reports the first error.
func checkError(call string) error {
	first := uint32(gl.NO_ERROR)
	for e := gl.GetError(); e != gl.NO_ERROR; e = gl.GetError() {
		if first == gl.NO_ERROR {
			first = e
		}
	}
	switch first {
	case gl.NO_ERROR:
		return nil
	case gl.OUT_OF_MEMORY:
		return fmt.Errorf("%s: %w", call, ErrOutOfMemory)
	default:
		return fmt.Errorf("gl: %s: error 0x%04X", call, first)
	}
}

func bufferTarget(t vbo.BufferTarget) uint32 {
	if t == vbo.ElementArrayBuffer {
		return gl.ELEMENT_ARRAY_BUFFER
	}
	return gl.ARRAY_BUFFER
}

func bufferUsage(vbo.Usage) uint32 {
	return gl.STATIC_DRAW
}

func topology(vbo.Topology) uint32 {
	return gl.TRIANGLES
}

func indexType(f vbo.IndexFormat) uint32 {
	if f == vbo.IndexUint32 {
		return gl.UNSIGNED_INT
	}
	return gl.UNSIGNED_SHORT
}

func elementType(t vbo.ElementType) uint32 {
	switch t {
	case vbo.Fixed:
		return gl.FIXED
	case vbo.Int8:
		return gl.BYTE
	case vbo.Uint8:
		return gl.UNSIGNED_BYTE
	case vbo.Int16:
		return gl.SHORT
	case vbo.Uint16:
		return gl.UNSIGNED_SHORT
	case vbo.Int32:
		return gl.INT
	case vbo.Uint32:
		return gl.UNSIGNED_INT
	default:
		return gl.FLOAT
	}
}
