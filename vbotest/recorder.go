// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package vbotest provides a recording vbo.Driver for tests and traces.
//
// The Recorder keeps the binding state a real driver would (bound buffer per
// target, enabled attribute locations, buffer contents) and logs every call
// in order, so tests can assert both on "what was called" and on "what state
// is left behind".
package vbotest

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/gogpu/vbo"
	"github.com/gogpu/vbo/backend"
)

// ErrInjected is returned by calls configured to fail.
var ErrInjected = errors.New("vbotest: injected failure")

// Op identifies a recorded driver call.
type Op int

// Recorded calls, one per vbo.Driver and vbo.ConstantDriver method.
const (
	OpGenBuffers Op = iota     // GenBuffers
	OpDeleteBuffers            // DeleteBuffers
	OpBindBuffer               // BindBuffer
	OpBufferData               // BufferData
	OpUseProgram               // UseProgram
	OpEnableVertexAttribArray  // EnableVertexAttribArray
	OpDisableVertexAttribArray // DisableVertexAttribArray
	OpVertexAttribPointer      // VertexAttribPointer
	OpVertexAttrib4f           // VertexAttrib4f
	OpDrawElements             // DrawElements
)

// String returns the GL-style name of the call.
func (o Op) String() string {
	switch o {
	case OpGenBuffers:
		return "GenBuffers"
	case OpDeleteBuffers:
		return "DeleteBuffers"
	case OpBindBuffer:
		return "BindBuffer"
	case OpBufferData:
		return "BufferData"
	case OpUseProgram:
		return "UseProgram"
	case OpEnableVertexAttribArray:
		return "EnableVertexAttribArray"
	case OpDisableVertexAttribArray:
		return "DisableVertexAttribArray"
	case OpVertexAttribPointer:
		return "VertexAttribPointer"
	case OpVertexAttrib4f:
		return "VertexAttrib4f"
	case OpDrawElements:
		return "DrawElements"
	default:
		return fmt.Sprintf("Op(%d)", int(o))
	}
}

// Call is one recorded driver call. Only the fields relevant to Op are set.
type Call struct {
	Op       Op
	Target   vbo.BufferTarget
	Handle   vbo.Handle
	Handles  []vbo.Handle
	Count    int
	Location uint32
	Layout   vbo.AttributeLayout
	Format   vbo.IndexFormat
	Program  vbo.Program
	Bytes    int
	Value    [4]float32
}

// String formats the call for traces.
func (c Call) String() string {
	switch c.Op {
	case OpGenBuffers:
		return fmt.Sprintf("GenBuffers(%d) -> %v", c.Count, c.Handles)
	case OpDeleteBuffers:
		return fmt.Sprintf("DeleteBuffers(%v)", c.Handles)
	case OpBindBuffer:
		return fmt.Sprintf("BindBuffer(%v, %d)", c.Target, c.Handle)
	case OpBufferData:
		return fmt.Sprintf("BufferData(%v, %d bytes, StaticDraw) -> buffer %d", c.Target, c.Bytes, c.Handle)
	case OpUseProgram:
		return fmt.Sprintf("UseProgram(%d)", c.Program)
	case OpEnableVertexAttribArray:
		return fmt.Sprintf("EnableVertexAttribArray(%d)", c.Location)
	case OpDisableVertexAttribArray:
		return fmt.Sprintf("DisableVertexAttribArray(%d)", c.Location)
	case OpVertexAttribPointer:
		return fmt.Sprintf("VertexAttribPointer(%d, %d, %v, normalized=%t, stride=%d, offset=%d) <- buffer %d",
			c.Location, c.Layout.Components, c.Layout.Type, c.Layout.Normalized, c.Layout.Stride, c.Layout.Offset, c.Handle)
	case OpVertexAttrib4f:
		return fmt.Sprintf("VertexAttrib4f(%d, %v)", c.Location, c.Value)
	case OpDrawElements:
		return fmt.Sprintf("DrawElements(Triangles, %d, %v, 0)", c.Count, c.Format)
	default:
		return c.Op.String()
	}
}

// Recorder is a vbo.Driver and vbo.ConstantDriver that records calls and
// tracks binding state. The zero value is ready to use.
type Recorder struct {
	// FailGenBuffers makes GenBuffers return ErrInjected.
	FailGenBuffers bool
	// ShortGenBuffers makes GenBuffers return one handle fewer than asked.
	ShortGenBuffers bool
	// ZeroHandleAt makes GenBuffers return a zero handle at this position
	// when it is greater than zero (1-based).
	ZeroHandleAt int
	// FailBufferDataAt makes the n-th BufferData call (1-based) fail.
	FailBufferDataAt int
	// FailDraw makes DrawElements return ErrInjected.
	FailDraw bool

	calls   []Call
	next    vbo.Handle
	live    map[vbo.Handle]bool
	data    map[vbo.Handle][]byte
	bound   [2]vbo.Handle
	enabled map[uint32]bool
	pointer map[uint32]vbo.Handle
	uploads int
	program vbo.Program
}

var (
	_ vbo.Driver         = (*Recorder)(nil)
	_ vbo.ConstantDriver = (*Recorder)(nil)
	_ backend.Headless   = (*Recorder)(nil)
)

func init() {
	backend.Register("recorder", func() (backend.Headless, error) {
		return NewRecorder(), nil
	})
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) init() {
	if r.live == nil {
		r.live = make(map[vbo.Handle]bool)
		r.data = make(map[vbo.Handle][]byte)
		r.enabled = make(map[uint32]bool)
		r.pointer = make(map[uint32]vbo.Handle)
	}
}

func (r *Recorder) record(c Call) {
	r.calls = append(r.calls, c)
}

// GenBuffers implements vbo.Driver.
func (r *Recorder) GenBuffers(n int) ([]vbo.Handle, error) {
	r.init()
	if r.FailGenBuffers {
		r.record(Call{Op: OpGenBuffers, Count: n})
		return nil, ErrInjected
	}
	count := n
	if r.ShortGenBuffers && count > 0 {
		count--
	}
	hs := make([]vbo.Handle, count)
	for i := range hs {
		if r.ZeroHandleAt == i+1 {
			continue
		}
		r.next++
		hs[i] = r.next
		r.live[r.next] = true
	}
	r.record(Call{Op: OpGenBuffers, Count: n, Handles: slices.Clone(hs)})
	return hs, nil
}

// DeleteBuffers implements vbo.Driver.
func (r *Recorder) DeleteBuffers(handles []vbo.Handle) {
	r.init()
	for _, h := range handles {
		delete(r.live, h)
		delete(r.data, h)
		for t, b := range r.bound {
			if b == h {
				r.bound[t] = 0
			}
		}
	}
	r.record(Call{Op: OpDeleteBuffers, Handles: slices.Clone(handles)})
}

// BindBuffer implements vbo.Driver.
func (r *Recorder) BindBuffer(target vbo.BufferTarget, h vbo.Handle) {
	r.init()
	r.bound[target] = h
	r.record(Call{Op: OpBindBuffer, Target: target, Handle: h})
}

// BufferData implements vbo.Driver.
func (r *Recorder) BufferData(target vbo.BufferTarget, data []byte, _ vbo.Usage) error {
	r.init()
	r.uploads++
	h := r.bound[target]
	r.record(Call{Op: OpBufferData, Target: target, Handle: h, Bytes: len(data)})
	if r.FailBufferDataAt == r.uploads {
		return ErrInjected
	}
	if h == 0 {
		return fmt.Errorf("vbotest: BufferData with no buffer bound to %v", target)
	}
	r.data[h] = slices.Clone(data)
	return nil
}

// UseProgram implements vbo.Driver.
func (r *Recorder) UseProgram(p vbo.Program) {
	r.program = p
	r.record(Call{Op: OpUseProgram, Program: p})
}

// EnableVertexAttribArray implements vbo.Driver.
func (r *Recorder) EnableVertexAttribArray(location uint32) {
	r.init()
	r.enabled[location] = true
	r.record(Call{Op: OpEnableVertexAttribArray, Location: location})
}

// DisableVertexAttribArray implements vbo.Driver.
func (r *Recorder) DisableVertexAttribArray(location uint32) {
	r.init()
	delete(r.enabled, location)
	r.record(Call{Op: OpDisableVertexAttribArray, Location: location})
}

// VertexAttribPointer implements vbo.Driver.
func (r *Recorder) VertexAttribPointer(location uint32, layout vbo.AttributeLayout) {
	r.init()
	r.pointer[location] = r.bound[vbo.ArrayBuffer]
	r.record(Call{Op: OpVertexAttribPointer, Location: location, Layout: layout, Handle: r.bound[vbo.ArrayBuffer]})
}

// VertexAttrib4f implements vbo.ConstantDriver.
func (r *Recorder) VertexAttrib4f(location uint32, v [4]float32) {
	r.record(Call{Op: OpVertexAttrib4f, Location: location, Value: v})
}

// DrawElements implements vbo.Driver.
func (r *Recorder) DrawElements(_ vbo.Topology, count int, format vbo.IndexFormat, _ int) error {
	r.init()
	r.record(Call{Op: OpDrawElements, Count: count, Format: format, Handle: r.bound[vbo.ElementArrayBuffer]})
	if r.FailDraw {
		return ErrInjected
	}
	if r.bound[vbo.ElementArrayBuffer] == 0 {
		return fmt.Errorf("vbotest: DrawElements with no index buffer bound")
	}
	return nil
}

// Calls returns a copy of the recorded calls.
func (r *Recorder) Calls() []Call {
	return slices.Clone(r.calls)
}

// Count returns how many times op was called.
func (r *Recorder) Count(op Op) int {
	n := 0
	for _, c := range r.calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

// Reset clears the call log. Driver state is kept.
func (r *Recorder) Reset() {
	r.calls = nil
}

// Bound returns the handle bound to target.
func (r *Recorder) Bound(target vbo.BufferTarget) vbo.Handle {
	return r.bound[target]
}

// Enabled returns the sorted list of enabled attribute locations.
func (r *Recorder) Enabled() []uint32 {
	locs := make([]uint32, 0, len(r.enabled))
	for loc := range r.enabled {
		locs = append(locs, loc)
	}
	slices.Sort(locs)
	return locs
}

// Live returns the number of buffers that exist.
func (r *Recorder) Live() int {
	return len(r.live)
}

// Data returns a copy of the uploaded contents of h.
func (r *Recorder) Data(h vbo.Handle) []byte {
	return slices.Clone(r.data[h])
}

// Source returns the buffer the attribute at location was last pointed at.
func (r *Recorder) Source(location uint32) vbo.Handle {
	return r.pointer[location]
}

// CurrentProgram returns the program passed to the last UseProgram.
func (r *Recorder) CurrentProgram() vbo.Program {
	return r.program
}

// Neutral reports whether no attribute array is enabled and no buffer is
// bound, as required between unrelated draws.
func (r *Recorder) Neutral() bool {
	return len(r.enabled) == 0 && r.bound[vbo.ArrayBuffer] == 0 && r.bound[vbo.ElementArrayBuffer] == 0
}

// Name implements backend.Headless.
func (r *Recorder) Name() string { return "recorder" }

// Close forgets every live buffer and the binding state. It is not
// recorded.
func (r *Recorder) Close() {
	r.live = nil
	r.data = nil
	r.enabled = nil
	r.pointer = nil
	r.bound = [2]vbo.Handle{}
	r.program = 0
}

// Trace returns the recorded calls one per line.
func (r *Recorder) Trace() string {
	var b strings.Builder
	for _, c := range r.calls {
		b.WriteString(c.String())
		b.WriteByte('\n')
	}
	return b.String()
}
