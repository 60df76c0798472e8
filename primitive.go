// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package vbo

import (
	"fmt"
	"log/slog"
	"slices"
)

// State is the allocation state of a Primitive.
type State int

const (
	// StateUnallocated means no buffer handles exist yet.
	StateUnallocated State = iota
	// StateAllocated means every handle exists and holds uploaded data.
	StateAllocated
	// StateReleased means the buffers were deleted at context teardown.
	StateReleased
	// StateFailed means allocation or upload failed. No handles are held
	// and every later Draw returns the same error.
	StateFailed
)

// String returns the string representation of State.
func (s State) String() string {
	switch s {
	case StateUnallocated:
		return "Unallocated"
	case StateAllocated:
		return "Allocated"
	case StateReleased:
		return "Released"
	case StateFailed:
		return "Failed"
	default:
		return fmt.Sprintf("Unknown(%d)", int(s))
	}
}

// Stats counts driver work performed by a Primitive.
type Stats struct {
	// Allocations is the number of GenBuffers batches issued (at most 1).
	Allocations int
	// Uploads is the number of BufferData calls issued.
	Uploads int
	// Draws is the number of DrawElements calls that succeeded.
	Draws int
}

// handleSet holds one handle per attribute slot followed by the index buffer
// handle. It is either empty or completely filled.
type handleSet struct {
	handles []Handle
}

func (h *handleSet) attribute(i int) Handle { return h.handles[i] }
func (h *handleSet) index() Handle          { return h.handles[len(h.handles)-1] }

// Primitive is a static indexed draw call backed by GPU buffers: one vertex
// buffer per attribute slot and one index buffer.
//
// The buffers are created and filled on the first Draw. Later calls reuse
// them; the data passed to those calls must have the same shape and is not
// uploaded again.
//
// A Primitive borrows its driver and program from the rendering context and
// must be used on the goroutine that owns that context.
type Primitive struct {
	driver  Driver
	program Program
	slots   []AttributeSlot
	opts    options

	state   State
	handles handleSet
	failure error

	// Shape of the uploaded data, valid once allocated.
	vertexCount int
	indexCount  int

	stats Stats
}

// New creates a primitive with the given attribute slots. No driver calls are
// made until the first Draw.
func New(driver Driver, program Program, slots []AttributeSlot, opts ...Option) (*Primitive, error) {
	if driver == nil {
		return nil, ErrNilDriver
	}
	if len(slots) == 0 {
		return nil, ErrNoSlots
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.indexFormat != IndexUint16 && o.indexFormat != IndexUint32 {
		return nil, fmt.Errorf("vbo: unknown index format %v", o.indexFormat)
	}

	used := make(map[uint32]bool, len(slots)+len(o.constants))
	for _, s := range slots {
		if err := s.Validate(); err != nil {
			return nil, err
		}
		if used[s.Location] {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateLocation, s.Location)
		}
		used[s.Location] = true
	}
	for _, c := range o.constants {
		if used[c.Location] {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateLocation, c.Location)
		}
		used[c.Location] = true
	}
	if len(o.constants) > 0 {
		if _, ok := driver.(ConstantDriver); !ok {
			return nil, ErrConstantsUnsupported
		}
	}

	return &Primitive{
		driver:  driver,
		program: program,
		slots:   slices.Clone(slots),
		opts:    o,
	}, nil
}

// Draw issues the indexed triangle draw. On the first call it allocates
// len(slots)+1 buffers in one batch and uploads attrs and indices with a
// static usage hint; later calls only bind and draw.
//
// attrs must contain exactly one entry per slot. Input that violates the
// slot layout is rejected before any driver call. Resource errors
// (ErrResourceExhausted, ErrUploadFailed) are fatal: the primitive moves to
// StateFailed and later calls return the same error without driver calls.
//
// Attribute arrays and buffer bindings are reset before Draw returns.
func (p *Primitive) Draw(attrs []AttributeData, indices []uint32) error {
	switch p.state {
	case StateReleased:
		return ErrReleased
	case StateFailed:
		return p.failure
	}

	ordered, vertices, err := p.checkShape(attrs, indices)
	if err != nil {
		p.logger().Debug("vbo: draw rejected", "primitive", p.name(), "err", err)
		return err
	}

	if p.state == StateUnallocated {
		if err := p.allocate(ordered, indices, vertices); err != nil {
			p.state = StateFailed
			p.failure = err
			return err
		}
	}
	return p.bindAndDraw()
}

// checkShape validates attrs and indices against the slots and returns the
// attribute data in slot order together with the vertex count.
func (p *Primitive) checkShape(attrs []AttributeData, indices []uint32) ([][]float32, int, error) {
	if len(attrs) != len(p.slots) {
		return nil, 0, fmt.Errorf("%w: got %d, want %d", ErrAttributeCount, len(attrs), len(p.slots))
	}
	if len(indices) == 0 {
		return nil, 0, ErrNoIndices
	}

	ordered := make([][]float32, len(p.slots))
	seen := make([]bool, len(p.slots))
	for _, a := range attrs {
		if a.Slot < 0 || a.Slot >= len(p.slots) {
			return nil, 0, fmt.Errorf("%w: slot index %d out of range", ErrShapeMismatch, a.Slot)
		}
		if seen[a.Slot] {
			return nil, 0, fmt.Errorf("%w: slot index %d given twice", ErrShapeMismatch, a.Slot)
		}
		seen[a.Slot] = true
		ordered[a.Slot] = a.Data
	}

	vertices := -1
	for i, data := range ordered {
		s := p.slots[i]
		if len(data)%s.Components != 0 {
			return nil, 0, fmt.Errorf("%w: %s: %d values is not a multiple of %d components",
				ErrShapeMismatch, s.label(), len(data), s.Components)
		}
		n := len(data) / s.Components
		if vertices >= 0 && n != vertices {
			return nil, 0, fmt.Errorf("%w: %s: %d vertices, other slots have %d",
				ErrShapeMismatch, s.label(), n, vertices)
		}
		vertices = n
	}

	limit := p.opts.indexFormat.MaxIndex()
	for i, idx := range indices {
		if idx >= uint32(vertices) {
			return nil, 0, fmt.Errorf("%w: index %d at position %d references one of %d vertices",
				ErrShapeMismatch, idx, i, vertices)
		}
		if idx > limit {
			return nil, 0, fmt.Errorf("%w: index %d does not fit %v", ErrShapeMismatch, idx, p.opts.indexFormat)
		}
	}

	if p.state == StateAllocated {
		if vertices != p.vertexCount || len(indices) != p.indexCount {
			return nil, 0, fmt.Errorf("%w: uploaded %d vertices and %d indices, got %d and %d",
				ErrShapeMismatch, p.vertexCount, p.indexCount, vertices, len(indices))
		}
	}
	return ordered, vertices, nil
}

// allocate requests every handle in one batch and uploads the data. On any
// failure the handles are deleted before the error is returned.
func (p *Primitive) allocate(ordered [][]float32, indices []uint32, vertices int) error {
	d := p.driver
	n := len(p.slots) + 1

	handles, err := d.GenBuffers(n)
	p.stats.Allocations++
	if err != nil {
		p.discard(handles)
		p.logger().Warn("vbo: buffer allocation failed", "primitive", p.name(), "count", n, "err", err)
		return fmt.Errorf("%w: requested %d buffers: %w", ErrResourceExhausted, n, err)
	}
	if len(handles) != n || slices.Contains(handles, 0) {
		p.discard(handles)
		p.logger().Warn("vbo: driver returned invalid buffer handles", "primitive", p.name(), "count", n, "got", handles)
		return fmt.Errorf("%w: requested %d buffers, got %v", ErrResourceExhausted, n, handles)
	}
	p.handles = handleSet{handles: handles}

	for i, data := range ordered {
		s := p.slots[i]
		d.BindBuffer(ArrayBuffer, p.handles.attribute(i))
		if err := p.upload(ArrayBuffer, encodeAttribute(s, data)); err != nil {
			return p.failUpload(s.label(), err)
		}
	}
	d.BindBuffer(ElementArrayBuffer, p.handles.index())
	if err := p.upload(ElementArrayBuffer, encodeIndices(p.opts.indexFormat, indices)); err != nil {
		return p.failUpload("index buffer", err)
	}

	p.vertexCount = vertices
	p.indexCount = len(indices)
	p.state = StateAllocated
	p.logger().Info("vbo: buffers allocated",
		"primitive", p.name(),
		"buffers", n,
		"vertices", vertices,
		"indices", len(indices),
	)
	return nil
}

func (p *Primitive) upload(target BufferTarget, data []byte) error {
	p.stats.Uploads++
	p.logger().Debug("vbo: upload", "primitive", p.name(), "target", target, "bytes", len(data))
	return p.driver.BufferData(target, data, StaticDraw)
}

func (p *Primitive) failUpload(what string, err error) error {
	d := p.driver
	d.BindBuffer(ArrayBuffer, 0)
	d.BindBuffer(ElementArrayBuffer, 0)
	p.discard(p.handles.handles)
	p.handles = handleSet{}
	p.logger().Warn("vbo: upload failed", "primitive", p.name(), "buffer", what, "err", err)
	return fmt.Errorf("%w: %s: %w", ErrUploadFailed, what, err)
}

// discard deletes the non-zero handles in hs.
func (p *Primitive) discard(hs []Handle) {
	valid := make([]Handle, 0, len(hs))
	for _, h := range hs {
		if h != 0 {
			valid = append(valid, h)
		}
	}
	if len(valid) > 0 {
		p.driver.DeleteBuffers(valid)
	}
}

// bindAndDraw binds every slot buffer, issues the draw and restores neutral
// binding state.
func (p *Primitive) bindAndDraw() error {
	d := p.driver
	d.UseProgram(p.program)

	defer func() {
		for _, s := range p.slots {
			d.DisableVertexAttribArray(s.Location)
		}
		d.BindBuffer(ArrayBuffer, 0)
		d.BindBuffer(ElementArrayBuffer, 0)
	}()

	for i, s := range p.slots {
		d.BindBuffer(ArrayBuffer, p.handles.attribute(i))
		d.EnableVertexAttribArray(s.Location)
		d.VertexAttribPointer(s.Location, s.Layout())
	}
	if len(p.opts.constants) > 0 {
		cd := d.(ConstantDriver)
		for _, c := range p.opts.constants {
			cd.VertexAttrib4f(c.Location, c.Value)
		}
	}

	d.BindBuffer(ElementArrayBuffer, p.handles.index())
	if err := d.DrawElements(Triangles, p.indexCount, p.opts.indexFormat, 0); err != nil {
		return fmt.Errorf("vbo: draw %s: %w", p.name(), err)
	}
	p.stats.Draws++
	return nil
}

// Release deletes the buffers. It is called when the owning context shuts
// down and is safe to call more than once. The program is not deleted.
func (p *Primitive) Release() {
	switch p.state {
	case StateReleased:
		return
	case StateAllocated:
		p.driver.DeleteBuffers(p.handles.handles)
		p.logger().Info("vbo: buffers released", "primitive", p.name(), "buffers", len(p.handles.handles))
	case StateFailed:
		p.logger().Debug("vbo: released after failure", "primitive", p.name(), "err", p.failure)
	default:
		p.logger().Debug("vbo: released before first draw", "primitive", p.name())
	}
	p.handles = handleSet{}
	p.state = StateReleased
}

// State returns the allocation state.
func (p *Primitive) State() State { return p.state }

// Handles returns a copy of the handle set: one handle per slot followed by
// the index buffer handle. It is nil until the first successful Draw.
func (p *Primitive) Handles() []Handle { return slices.Clone(p.handles.handles) }

// Slots returns a copy of the configured attribute slots.
func (p *Primitive) Slots() []AttributeSlot { return slices.Clone(p.slots) }

// Program returns the borrowed program handle.
func (p *Primitive) Program() Program { return p.program }

// IndexFormat returns the index buffer encoding.
func (p *Primitive) IndexFormat() IndexFormat { return p.opts.indexFormat }

// VertexCount returns the number of uploaded vertices, or 0 before upload.
func (p *Primitive) VertexCount() int { return p.vertexCount }

// IndexCount returns the number of uploaded indices, or 0 before upload.
func (p *Primitive) IndexCount() int { return p.indexCount }

// Stats returns the driver work counters.
func (p *Primitive) Stats() Stats { return p.stats }

func (p *Primitive) name() string {
	if p.opts.label != "" {
		return p.opts.label
	}
	return "primitive"
}

func (p *Primitive) logger() *slog.Logger {
	if p.opts.logger != nil {
		return p.opts.logger
	}
	return Logger()
}
