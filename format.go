// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package vbo

import "fmt"

// ElementType is the scalar type of one attribute component as stored in
// the GPU buffer.
type ElementType uint8

const (
	// Float32 stores IEEE-754 single precision values.
	Float32 ElementType = iota + 1
	// Fixed stores signed 16.16 fixed-point values.
	Fixed
	// Int8 stores signed bytes.
	Int8
	// Uint8 stores unsigned bytes.
	Uint8
	// Int16 stores signed 16-bit integers.
	Int16
	// Uint16 stores unsigned 16-bit integers.
	Uint16
	// Int32 stores signed 32-bit integers.
	Int32
	// Uint32 stores unsigned 32-bit integers.
	Uint32
)

// Size returns the size of one component in bytes, or 0 for an unknown type.
func (t ElementType) Size() int {
	switch t {
	case Int8, Uint8:
		return 1
	case Int16, Uint16:
		return 2
	case Float32, Fixed, Int32, Uint32:
		return 4
	default:
		return 0
	}
}

// IsInteger reports whether t is one of the integer types.
func (t ElementType) IsInteger() bool {
	switch t {
	case Int8, Uint8, Int16, Uint16, Int32, Uint32:
		return true
	default:
		return false
	}
}

// String returns the string representation of ElementType.
func (t ElementType) String() string {
	switch t {
	case Float32:
		return "Float32"
	case Fixed:
		return "Fixed"
	case Int8:
		return "Int8"
	case Uint8:
		return "Uint8"
	case Int16:
		return "Int16"
	case Uint16:
		return "Uint16"
	case Int32:
		return "Int32"
	case Uint32:
		return "Uint32"
	default:
		return fmt.Sprintf("Unknown(%d)", int(t))
	}
}

// ParseElementType returns the ElementType named by s. Names are the
// lower-case forms of the String values ("float32", "uint8", ...).
func ParseElementType(s string) (ElementType, error) {
	switch s {
	case "float32", "float", "":
		return Float32, nil
	case "fixed":
		return Fixed, nil
	case "int8":
		return Int8, nil
	case "uint8":
		return Uint8, nil
	case "int16":
		return Int16, nil
	case "uint16":
		return Uint16, nil
	case "int32":
		return Int32, nil
	case "uint32":
		return Uint32, nil
	}
	return 0, fmt.Errorf("vbo: unknown element type %q", s)
}

// IndexFormat is the encoding of the index buffer.
type IndexFormat uint8

const (
	// IndexUint16 stores 16-bit indices. This is the default.
	IndexUint16 IndexFormat = iota
	// IndexUint32 stores 32-bit indices.
	IndexUint32
)

// Size returns the size of one index in bytes.
func (f IndexFormat) Size() int {
	if f == IndexUint32 {
		return 4
	}
	return 2
}

// MaxIndex returns the largest index representable in the format.
func (f IndexFormat) MaxIndex() uint32 {
	if f == IndexUint32 {
		return ^uint32(0)
	}
	return 0xFFFF
}

// String returns the string representation of IndexFormat.
func (f IndexFormat) String() string {
	switch f {
	case IndexUint16:
		return "Uint16"
	case IndexUint32:
		return "Uint32"
	default:
		return fmt.Sprintf("Unknown(%d)", int(f))
	}
}

// ParseIndexFormat returns the IndexFormat named by s ("uint16" or "uint32").
// An empty string selects IndexUint16.
func ParseIndexFormat(s string) (IndexFormat, error) {
	switch s {
	case "", "uint16":
		return IndexUint16, nil
	case "uint32":
		return IndexUint32, nil
	}
	return 0, fmt.Errorf("vbo: unknown index format %q", s)
}

// BufferTarget selects the binding point a buffer is bound to.
type BufferTarget uint8

const (
	// ArrayBuffer is the binding point for vertex attribute data.
	ArrayBuffer BufferTarget = iota
	// ElementArrayBuffer is the binding point for index data.
	ElementArrayBuffer
)

// String returns the string representation of BufferTarget.
func (t BufferTarget) String() string {
	switch t {
	case ArrayBuffer:
		return "ArrayBuffer"
	case ElementArrayBuffer:
		return "ElementArrayBuffer"
	default:
		return fmt.Sprintf("Unknown(%d)", int(t))
	}
}

// Usage is the upload hint passed with buffer contents.
type Usage uint8

const (
	// StaticDraw marks contents that are uploaded once and drawn many times.
	StaticDraw Usage = iota
)

// String returns the string representation of Usage.
func (u Usage) String() string {
	if u == StaticDraw {
		return "StaticDraw"
	}
	return fmt.Sprintf("Unknown(%d)", int(u))
}

// Topology is the primitive assembly mode of a draw call.
type Topology uint8

const (
	// Triangles assembles every three indices into one triangle.
	Triangles Topology = iota
)

// String returns the string representation of Topology.
func (t Topology) String() string {
	if t == Triangles {
		return "Triangles"
	}
	return fmt.Sprintf("Unknown(%d)", int(t))
}
