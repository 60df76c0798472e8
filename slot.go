// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package vbo

import "fmt"

// AttributeSlot describes one vertex attribute consumed by the shader.
// Each slot is backed by its own buffer, so attribute data always starts at
// offset zero.
type AttributeSlot struct {
	// Name is an optional debug name ("pos", "color").
	Name string

	// Location is the shader input location.
	Location uint32

	// Components is the number of components per vertex (1-4).
	Components int

	// Type is the component type stored in the buffer.
	Type ElementType

	// Normalized maps integer types to [0,1] (unsigned) or [-1,1] (signed)
	// when the shader reads them.
	Normalized bool

	// Stride is the byte distance between consecutive vertices.
	// Zero means tightly packed.
	Stride int
}

// Float32Slot returns a tightly packed float slot.
func Float32Slot(name string, location uint32, components int) AttributeSlot {
	return AttributeSlot{
		Name:       name,
		Location:   location,
		Components: components,
		Type:       Float32,
	}
}

// PackedSize returns the byte size of one vertex worth of components.
func (s AttributeSlot) PackedSize() int {
	return s.Components * s.Type.Size()
}

// EffectiveStride returns the stride used in the buffer: Stride if set,
// otherwise the packed size.
func (s AttributeSlot) EffectiveStride() int {
	if s.Stride == 0 {
		return s.PackedSize()
	}
	return s.Stride
}

// Validate reports whether the slot layout is usable.
func (s AttributeSlot) Validate() error {
	if s.Components < 1 || s.Components > 4 {
		return fmt.Errorf("%w: %s: component count %d not in 1..4", ErrInvalidSlot, s.label(), s.Components)
	}
	if s.Type.Size() == 0 {
		return fmt.Errorf("%w: %s: unknown element type %v", ErrInvalidSlot, s.label(), s.Type)
	}
	if s.Normalized && !s.Type.IsInteger() {
		return fmt.Errorf("%w: %s: normalized requires an integer type, got %v", ErrInvalidSlot, s.label(), s.Type)
	}
	if s.Stride < 0 || (s.Stride != 0 && s.Stride < s.PackedSize()) {
		return fmt.Errorf("%w: %s: stride %d smaller than packed size %d", ErrInvalidSlot, s.label(), s.Stride, s.PackedSize())
	}
	return nil
}

// Layout returns the driver-facing description of the slot.
func (s AttributeSlot) Layout() AttributeLayout {
	return AttributeLayout{
		Components: s.Components,
		Type:       s.Type,
		Normalized: s.Normalized,
		Stride:     s.EffectiveStride(),
		Offset:     0,
	}
}

func (s AttributeSlot) label() string {
	if s.Name != "" {
		return fmt.Sprintf("slot %q (location %d)", s.Name, s.Location)
	}
	return fmt.Sprintf("slot at location %d", s.Location)
}

// AttributeLayout is the vertex attribute pointer description passed to the
// driver.
type AttributeLayout struct {
	Components int
	Type       ElementType
	Normalized bool
	Stride     int
	Offset     int
}

// AttributeData pairs a slot index (position in the slot list given to New)
// with the values for that slot. Values are converted to the slot's element
// type when uploaded.
type AttributeData struct {
	Slot int
	Data []float32
}

// ConstantAttribute is a vertex input fed from a single generic value rather
// than a buffer, for example a flat color shared by every vertex.
type ConstantAttribute struct {
	Location uint32
	Value    [4]float32
}
