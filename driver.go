// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package vbo

// Handle is a driver-assigned buffer object identifier. The zero value is
// never a valid buffer.
type Handle uint32

// Program is a linked shader program handle. Programs are owned by the
// rendering context; a Primitive only makes its program current.
type Program uint32

// Driver is the graphics API surface used by a Primitive. The method set
// follows the OpenGL ES buffer object model; backends translate it to their
// native API.
//
// Implementations are not required to be safe for concurrent use.
type Driver interface {
	// GenBuffers returns n new buffer handles in a single batch.
	GenBuffers(n int) ([]Handle, error)

	// DeleteBuffers releases the given handles. Zero handles are ignored.
	DeleteBuffers(handles []Handle)

	// BindBuffer binds h to target. A zero handle unbinds the target.
	BindBuffer(target BufferTarget, h Handle)

	// BufferData uploads data to the buffer bound to target.
	BufferData(target BufferTarget, data []byte, usage Usage) error

	// UseProgram makes p the current program.
	UseProgram(p Program)

	// EnableVertexAttribArray enables the attribute array at location.
	EnableVertexAttribArray(location uint32)

	// DisableVertexAttribArray disables the attribute array at location.
	DisableVertexAttribArray(location uint32)

	// VertexAttribPointer describes the layout of the attribute at location,
	// sourced from the buffer currently bound to ArrayBuffer.
	VertexAttribPointer(location uint32, layout AttributeLayout)

	// DrawElements draws count indices from the bound ElementArrayBuffer,
	// starting at byte offset.
	DrawElements(mode Topology, count int, format IndexFormat, offset int) error
}

// ConstantDriver is implemented by drivers that can feed an attribute
// location from a generic value instead of an array.
type ConstantDriver interface {
	VertexAttrib4f(location uint32, v [4]float32)
}
