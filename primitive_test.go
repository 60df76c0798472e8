// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package vbo_test

import (
	"bytes"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"testing"

	"github.com/gogpu/vbo"
	"github.com/gogpu/vbo/vbotest"
)

var (
	trianglePositions = []float32{
		0.0, 0.5, 0.0,
		-0.5, -0.5, 0.0,
		0.5, -0.5, 0.0,
	}
	triangleColors = []float32{
		1, 0, 0, 1,
		0, 1, 0, 1,
		0, 0, 1, 1,
	}
	triangleIndices = []uint32{0, 1, 2}
)

const testProgram vbo.Program = 7

func positionSlots() []vbo.AttributeSlot {
	return []vbo.AttributeSlot{vbo.Float32Slot("pos", 0, 3)}
}

func colorSlots() []vbo.AttributeSlot {
	return []vbo.AttributeSlot{
		vbo.Float32Slot("pos", 0, 3),
		vbo.Float32Slot("color", 1, 4),
	}
}

func colorAttrs() []vbo.AttributeData {
	return []vbo.AttributeData{
		{Slot: 0, Data: trianglePositions},
		{Slot: 1, Data: triangleColors},
	}
}

func newPrimitive(t *testing.T, drv vbo.Driver, slots []vbo.AttributeSlot, opts ...vbo.Option) *vbo.Primitive {
	t.Helper()
	p, err := vbo.New(drv, testProgram, slots, opts...)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return p
}

// Scenario A: one 3-component slot, one triangle.
func TestDrawSinglePositionSlot(t *testing.T) {
	rec := vbotest.NewRecorder()
	p := newPrimitive(t, rec, positionSlots())

	if err := p.Draw([]vbo.AttributeData{{Slot: 0, Data: trianglePositions}}, triangleIndices); err != nil {
		t.Fatalf("Draw failed: %v", err)
	}

	if got := rec.Count(vbotest.OpGenBuffers); got != 1 {
		t.Fatalf("GenBuffers calls = %d, want 1", got)
	}
	gen := rec.Calls()[0]
	if gen.Op != vbotest.OpGenBuffers || gen.Count != 2 {
		t.Errorf("first call = %v, want GenBuffers(2)", gen)
	}
	if got := rec.Count(vbotest.OpDrawElements); got != 1 {
		t.Errorf("DrawElements calls = %d, want 1", got)
	}
	for _, c := range rec.Calls() {
		if c.Op == vbotest.OpDrawElements && c.Count != 3 {
			t.Errorf("DrawElements count = %d, want 3", c.Count)
		}
	}
	if p.State() != vbo.StateAllocated {
		t.Errorf("State = %v, want Allocated", p.State())
	}
	if !rec.Neutral() {
		t.Errorf("binding state not reset: bound=%d/%d enabled=%v",
			rec.Bound(vbo.ArrayBuffer), rec.Bound(vbo.ElementArrayBuffer), rec.Enabled())
	}
}

// Scenario B: position + color, five frames.
func TestDrawFiveFramesAllocatesOnce(t *testing.T) {
	rec := vbotest.NewRecorder()
	p := newPrimitive(t, rec, colorSlots())

	for frame := range 5 {
		if err := p.Draw(colorAttrs(), triangleIndices); err != nil {
			t.Fatalf("frame %d: Draw failed: %v", frame, err)
		}
	}

	if got := rec.Count(vbotest.OpGenBuffers); got != 1 {
		t.Errorf("GenBuffers calls = %d, want 1", got)
	}
	if c := rec.Calls()[0]; c.Count != 3 {
		t.Errorf("GenBuffers requested %d handles, want 3", c.Count)
	}
	if got := rec.Count(vbotest.OpBufferData); got != 3 {
		t.Errorf("BufferData calls = %d, want 3 (uploaded once)", got)
	}
	if got := rec.Count(vbotest.OpDrawElements); got != 5 {
		t.Errorf("DrawElements calls = %d, want 5", got)
	}
	if got := rec.Count(vbotest.OpUseProgram); got != 5 {
		t.Errorf("UseProgram calls = %d, want 5", got)
	}

	stats := p.Stats()
	want := vbo.Stats{Allocations: 1, Uploads: 3, Draws: 5}
	if stats != want {
		t.Errorf("Stats = %+v, want %+v", stats, want)
	}
}

// Scenario C: 7 floats for a 3-component slot.
func TestDrawRejectsPartialVertex(t *testing.T) {
	rec := vbotest.NewRecorder()
	p := newPrimitive(t, rec, positionSlots())

	err := p.Draw([]vbo.AttributeData{{Slot: 0, Data: make([]float32, 7)}}, triangleIndices)
	if !errors.Is(err, vbo.ErrShapeMismatch) {
		t.Fatalf("Draw error = %v, want ErrShapeMismatch", err)
	}
	if n := len(rec.Calls()); n != 0 {
		t.Errorf("driver received %d calls, want 0:\n%s", n, rec.Trace())
	}
	if p.State() != vbo.StateUnallocated {
		t.Errorf("State = %v, want Unallocated", p.State())
	}
}

func TestDrawRedrawSequenceIsIdentical(t *testing.T) {
	rec := vbotest.NewRecorder()
	p := newPrimitive(t, rec, colorSlots())

	if err := p.Draw(colorAttrs(), triangleIndices); err != nil {
		t.Fatalf("first Draw failed: %v", err)
	}

	var frames []string
	for range 3 {
		rec.Reset()
		if err := p.Draw(colorAttrs(), triangleIndices); err != nil {
			t.Fatalf("Draw failed: %v", err)
		}
		if rec.Count(vbotest.OpBufferData) != 0 || rec.Count(vbotest.OpGenBuffers) != 0 {
			t.Fatalf("redraw uploaded data:\n%s", rec.Trace())
		}
		frames = append(frames, rec.Trace())
	}
	for i := 1; i < len(frames); i++ {
		if frames[i] != frames[0] {
			t.Errorf("frame %d trace differs:\n%s\nwant:\n%s", i, frames[i], frames[0])
		}
	}

	want := []string{
		"UseProgram(7)",
		"BindBuffer(ArrayBuffer, 1)",
		"EnableVertexAttribArray(0)",
		"VertexAttribPointer(0, 3, Float32, normalized=false, stride=12, offset=0) <- buffer 1",
		"BindBuffer(ArrayBuffer, 2)",
		"EnableVertexAttribArray(1)",
		"VertexAttribPointer(1, 4, Float32, normalized=false, stride=16, offset=0) <- buffer 2",
		"BindBuffer(ElementArrayBuffer, 3)",
		"DrawElements(Triangles, 3, Uint16, 0)",
		"DisableVertexAttribArray(0)",
		"DisableVertexAttribArray(1)",
		"BindBuffer(ArrayBuffer, 0)",
		"BindBuffer(ElementArrayBuffer, 0)",
	}
	got := strings.Split(strings.TrimSpace(frames[0]), "\n")
	if !slices.Equal(got, want) {
		t.Errorf("redraw trace:\n%s\nwant:\n%s", strings.Join(got, "\n"), strings.Join(want, "\n"))
	}
}

func TestDrawUploadsSlotOrderThenIndices(t *testing.T) {
	rec := vbotest.NewRecorder()
	p := newPrimitive(t, rec, colorSlots())

	// Attribute data given out of slot order still maps by slot index.
	attrs := []vbo.AttributeData{
		{Slot: 1, Data: triangleColors},
		{Slot: 0, Data: trianglePositions},
	}
	if err := p.Draw(attrs, triangleIndices); err != nil {
		t.Fatalf("Draw failed: %v", err)
	}

	hs := p.Handles()
	if len(hs) != 3 {
		t.Fatalf("Handles = %v, want 3 handles", hs)
	}
	var uploads []vbotest.Call
	for _, c := range rec.Calls() {
		if c.Op == vbotest.OpBufferData {
			uploads = append(uploads, c)
		}
	}
	wantBytes := []int{9 * 4, 12 * 4, 3 * 2}
	wantTargets := []vbo.BufferTarget{vbo.ArrayBuffer, vbo.ArrayBuffer, vbo.ElementArrayBuffer}
	for i, u := range uploads {
		if u.Handle != hs[i] {
			t.Errorf("upload %d went to buffer %d, want %d", i, u.Handle, hs[i])
		}
		if u.Bytes != wantBytes[i] {
			t.Errorf("upload %d size = %d, want %d", i, u.Bytes, wantBytes[i])
		}
		if u.Target != wantTargets[i] {
			t.Errorf("upload %d target = %v, want %v", i, u.Target, wantTargets[i])
		}
	}
	if rec.Source(0) != hs[0] || rec.Source(1) != hs[1] {
		t.Errorf("attribute sources = %d,%d, want %d,%d", rec.Source(0), rec.Source(1), hs[0], hs[1])
	}
	if got := rec.Data(hs[2]); !bytes.Equal(got, []byte{0, 0, 1, 0, 2, 0}) {
		t.Errorf("index buffer contents = %v", got)
	}
}

func TestDrawPreconditions(t *testing.T) {
	tests := []struct {
		name    string
		attrs   []vbo.AttributeData
		indices []uint32
		want    error
	}{
		{"missing slot", []vbo.AttributeData{{Slot: 0, Data: trianglePositions}}, triangleIndices, vbo.ErrAttributeCount},
		{"too many slots", append(colorAttrs(), vbo.AttributeData{Slot: 1}), triangleIndices, vbo.ErrAttributeCount},
		{"no indices", colorAttrs(), nil, vbo.ErrNoIndices},
		{"duplicate slot", []vbo.AttributeData{{Slot: 0, Data: trianglePositions}, {Slot: 0, Data: trianglePositions}}, triangleIndices, vbo.ErrShapeMismatch},
		{"slot out of range", []vbo.AttributeData{{Slot: 0, Data: trianglePositions}, {Slot: 2, Data: triangleColors}}, triangleIndices, vbo.ErrShapeMismatch},
		{"color not multiple of 4", []vbo.AttributeData{{Slot: 0, Data: trianglePositions}, {Slot: 1, Data: triangleColors[:10]}}, triangleIndices, vbo.ErrShapeMismatch},
		{"vertex count differs", []vbo.AttributeData{{Slot: 0, Data: trianglePositions}, {Slot: 1, Data: triangleColors[:8]}}, triangleIndices, vbo.ErrShapeMismatch},
		{"index out of range", colorAttrs(), []uint32{0, 1, 3}, vbo.ErrShapeMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := vbotest.NewRecorder()
			p := newPrimitive(t, rec, colorSlots())

			err := p.Draw(tt.attrs, tt.indices)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Draw error = %v, want %v", err, tt.want)
			}
			if n := len(rec.Calls()); n != 0 {
				t.Errorf("driver received %d calls before rejection", n)
			}
		})
	}
}

func TestDrawRejectsIndexBeyondUint16(t *testing.T) {
	rec := vbotest.NewRecorder()
	p := newPrimitive(t, rec, []vbo.AttributeSlot{vbo.Float32Slot("x", 0, 1)})

	data := make([]float32, 0x10001)
	err := p.Draw([]vbo.AttributeData{{Slot: 0, Data: data}}, []uint32{0, 1, 0x10000})
	if !errors.Is(err, vbo.ErrShapeMismatch) {
		t.Fatalf("Draw error = %v, want ErrShapeMismatch", err)
	}

	p32 := newPrimitive(t, rec, []vbo.AttributeSlot{vbo.Float32Slot("x", 0, 1)}, vbo.WithIndexFormat(vbo.IndexUint32))
	if err := p32.Draw([]vbo.AttributeData{{Slot: 0, Data: data}}, []uint32{0, 1, 0x10000}); err != nil {
		t.Fatalf("Uint32 Draw failed: %v", err)
	}
	for _, c := range rec.Calls() {
		if c.Op == vbotest.OpDrawElements && c.Format != vbo.IndexUint32 {
			t.Errorf("DrawElements format = %v, want Uint32", c.Format)
		}
	}
}

func TestDrawRejectsShapeChangeAfterUpload(t *testing.T) {
	rec := vbotest.NewRecorder()
	p := newPrimitive(t, rec, positionSlots())

	if err := p.Draw([]vbo.AttributeData{{Slot: 0, Data: trianglePositions}}, triangleIndices); err != nil {
		t.Fatalf("Draw failed: %v", err)
	}
	rec.Reset()

	quad := append(slices.Clone(trianglePositions), 0.5, 0.5, 0)
	err := p.Draw([]vbo.AttributeData{{Slot: 0, Data: quad}}, []uint32{0, 1, 2, 2, 1, 3})
	if !errors.Is(err, vbo.ErrShapeMismatch) {
		t.Fatalf("Draw error = %v, want ErrShapeMismatch", err)
	}
	if len(rec.Calls()) != 0 {
		t.Errorf("driver called after rejected reshape:\n%s", rec.Trace())
	}

	// Same shape with different values draws the uploaded data.
	moved := []float32{1, 1, 1, 2, 2, 2, 3, 3, 3}
	if err := p.Draw([]vbo.AttributeData{{Slot: 0, Data: moved}}, triangleIndices); err != nil {
		t.Fatalf("Draw with same shape failed: %v", err)
	}
	if rec.Count(vbotest.OpBufferData) != 0 {
		t.Error("values were uploaded again")
	}
}

func TestAllocationFailures(t *testing.T) {
	tests := []struct {
		name      string
		configure func(*vbotest.Recorder)
	}{
		{"driver error", func(r *vbotest.Recorder) { r.FailGenBuffers = true }},
		{"short result", func(r *vbotest.Recorder) { r.ShortGenBuffers = true }},
		{"zero handle", func(r *vbotest.Recorder) { r.ZeroHandleAt = 2 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := vbotest.NewRecorder()
			tt.configure(rec)
			p := newPrimitive(t, rec, colorSlots())

			err := p.Draw(colorAttrs(), triangleIndices)
			if !errors.Is(err, vbo.ErrResourceExhausted) {
				t.Fatalf("Draw error = %v, want ErrResourceExhausted", err)
			}
			if p.State() != vbo.StateFailed {
				t.Errorf("State = %v, want Failed", p.State())
			}
			if p.Handles() != nil {
				t.Errorf("Handles = %v, want nil", p.Handles())
			}
			if rec.Live() != 0 {
				t.Errorf("%d buffers leaked after failed allocation", rec.Live())
			}
			if rec.Count(vbotest.OpDrawElements) != 0 {
				t.Error("draw issued after failed allocation")
			}
			if !rec.Neutral() {
				t.Error("binding state not neutral after failed allocation")
			}
		})
	}
}

func TestUploadFailureReleasesHandles(t *testing.T) {
	for at := 1; at <= 3; at++ {
		rec := vbotest.NewRecorder()
		rec.FailBufferDataAt = at
		p := newPrimitive(t, rec, colorSlots())

		err := p.Draw(colorAttrs(), triangleIndices)
		if !errors.Is(err, vbo.ErrUploadFailed) {
			t.Fatalf("upload %d: Draw error = %v, want ErrUploadFailed", at, err)
		}
		if !errors.Is(err, vbotest.ErrInjected) {
			t.Errorf("upload %d: cause not wrapped: %v", at, err)
		}
		if rec.Live() != 0 {
			t.Errorf("upload %d: %d buffers leaked", at, rec.Live())
		}
		if !rec.Neutral() {
			t.Errorf("upload %d: binding state not neutral", at)
		}
		if p.State() != vbo.StateFailed {
			t.Errorf("upload %d: State = %v, want Failed", at, p.State())
		}
	}
}

func TestFailedPrimitiveIsNotRetried(t *testing.T) {
	tests := []struct {
		name      string
		configure func(*vbotest.Recorder)
		want      error
	}{
		{"allocation", func(r *vbotest.Recorder) { r.FailGenBuffers = true }, vbo.ErrResourceExhausted},
		{"upload", func(r *vbotest.Recorder) { r.FailBufferDataAt = 2 }, vbo.ErrUploadFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := vbotest.NewRecorder()
			tt.configure(rec)
			p := newPrimitive(t, rec, colorSlots())

			first := p.Draw(colorAttrs(), triangleIndices)
			if !errors.Is(first, tt.want) {
				t.Fatalf("first Draw error = %v, want %v", first, tt.want)
			}
			calls := len(rec.Calls())

			for i := 0; i < 2; i++ {
				err := p.Draw(colorAttrs(), triangleIndices)
				if err != first {
					t.Errorf("Draw %d error = %v, want the first error %v", i+2, err, first)
				}
			}
			if n := rec.Count(vbotest.OpGenBuffers); n != 1 {
				t.Errorf("GenBuffers called %d times, want 1", n)
			}
			if got := len(rec.Calls()); got != calls {
				t.Errorf("driver received %d calls after failure:\n%s", got-calls, rec.Trace())
			}
			if a := p.Stats().Allocations; a != 1 {
				t.Errorf("Allocations = %d, want 1", a)
			}

			p.Release()
			if p.State() != vbo.StateReleased {
				t.Errorf("State after Release = %v, want Released", p.State())
			}
			if err := p.Draw(colorAttrs(), triangleIndices); !errors.Is(err, vbo.ErrReleased) {
				t.Errorf("Draw after Release = %v, want ErrReleased", err)
			}
		})
	}
}

func TestDrawFailureResetsState(t *testing.T) {
	rec := vbotest.NewRecorder()
	rec.FailDraw = true
	p := newPrimitive(t, rec, colorSlots())

	err := p.Draw(colorAttrs(), triangleIndices)
	if !errors.Is(err, vbotest.ErrInjected) {
		t.Fatalf("Draw error = %v, want injected failure", err)
	}
	if !rec.Neutral() {
		t.Errorf("binding state not reset after draw failure: enabled=%v", rec.Enabled())
	}
	if p.Stats().Draws != 0 {
		t.Errorf("Draws = %d, want 0", p.Stats().Draws)
	}
}

func TestRelease(t *testing.T) {
	rec := vbotest.NewRecorder()
	p := newPrimitive(t, rec, colorSlots())

	if err := p.Draw(colorAttrs(), triangleIndices); err != nil {
		t.Fatalf("Draw failed: %v", err)
	}
	if rec.Live() != 3 {
		t.Fatalf("Live = %d, want 3", rec.Live())
	}

	p.Release()
	p.Release()

	if rec.Live() != 0 {
		t.Errorf("Live = %d after Release, want 0", rec.Live())
	}
	if got := rec.Count(vbotest.OpDeleteBuffers); got != 1 {
		t.Errorf("DeleteBuffers calls = %d, want 1", got)
	}
	if p.State() != vbo.StateReleased {
		t.Errorf("State = %v, want Released", p.State())
	}
	if err := p.Draw(colorAttrs(), triangleIndices); !errors.Is(err, vbo.ErrReleased) {
		t.Errorf("Draw after Release = %v, want ErrReleased", err)
	}
}

func TestReleaseBeforeDraw(t *testing.T) {
	rec := vbotest.NewRecorder()
	p := newPrimitive(t, rec, colorSlots())
	p.Release()
	if len(rec.Calls()) != 0 {
		t.Errorf("Release of unallocated primitive made driver calls:\n%s", rec.Trace())
	}
}

func TestConstantAttribute(t *testing.T) {
	rec := vbotest.NewRecorder()
	red := [4]float32{1, 0, 0, 1}
	p := newPrimitive(t, rec, []vbo.AttributeSlot{vbo.Float32Slot("pos", 1, 3)}, vbo.WithConstant(0, red))

	if err := p.Draw([]vbo.AttributeData{{Slot: 0, Data: trianglePositions}}, triangleIndices); err != nil {
		t.Fatalf("Draw failed: %v", err)
	}
	var found bool
	for _, c := range rec.Calls() {
		if c.Op == vbotest.OpVertexAttrib4f {
			found = true
			if c.Location != 0 || c.Value != red {
				t.Errorf("VertexAttrib4f(%d, %v), want (0, %v)", c.Location, c.Value, red)
			}
		}
	}
	if !found {
		t.Error("constant attribute was not applied")
	}
}

// plainDriver hides the ConstantDriver methods of the recorder.
type plainDriver struct{ vbo.Driver }

func TestNewValidation(t *testing.T) {
	rec := vbotest.NewRecorder()
	tests := []struct {
		name   string
		driver vbo.Driver
		slots  []vbo.AttributeSlot
		opts   []vbo.Option
		want   error
	}{
		{"nil driver", nil, positionSlots(), nil, vbo.ErrNilDriver},
		{"no slots", rec, nil, nil, vbo.ErrNoSlots},
		{"zero components", rec, []vbo.AttributeSlot{{Location: 0, Type: vbo.Float32}}, nil, vbo.ErrInvalidSlot},
		{"five components", rec, []vbo.AttributeSlot{{Location: 0, Components: 5, Type: vbo.Float32}}, nil, vbo.ErrInvalidSlot},
		{"unknown type", rec, []vbo.AttributeSlot{{Location: 0, Components: 3}}, nil, vbo.ErrInvalidSlot},
		{"normalized float", rec, []vbo.AttributeSlot{{Location: 0, Components: 3, Type: vbo.Float32, Normalized: true}}, nil, vbo.ErrInvalidSlot},
		{"stride too small", rec, []vbo.AttributeSlot{{Location: 0, Components: 3, Type: vbo.Float32, Stride: 8}}, nil, vbo.ErrInvalidSlot},
		{"duplicate location", rec, []vbo.AttributeSlot{vbo.Float32Slot("a", 0, 3), vbo.Float32Slot("b", 0, 4)}, nil, vbo.ErrDuplicateLocation},
		{"constant on slot location", rec, positionSlots(), []vbo.Option{vbo.WithConstant(0, [4]float32{})}, vbo.ErrDuplicateLocation},
		{"constant unsupported", plainDriver{rec}, positionSlots(), []vbo.Option{vbo.WithConstant(1, [4]float32{})}, vbo.ErrConstantsUnsupported},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := vbo.New(tt.driver, testProgram, tt.slots, tt.opts...)
			if !errors.Is(err, tt.want) {
				t.Errorf("New error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestNewCopiesSlots(t *testing.T) {
	slots := colorSlots()
	p := newPrimitive(t, vbotest.NewRecorder(), slots)
	slots[0].Components = 1

	if got := p.Slots()[0].Components; got != 3 {
		t.Errorf("slot mutated through caller slice: Components = %d", got)
	}
	if p.Program() != testProgram {
		t.Errorf("Program = %d, want %d", p.Program(), testProgram)
	}
}

func TestPrimitiveLogging(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	p := newPrimitive(t, vbotest.NewRecorder(), colorSlots(), vbo.WithLogger(l), vbo.WithLabel("tri"))

	if err := p.Draw(colorAttrs(), triangleIndices); err != nil {
		t.Fatalf("Draw failed: %v", err)
	}
	p.Release()

	out := buf.String()
	for _, want := range []string{"buffers allocated", "buffers released", "primitive=tri"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

func TestStateString(t *testing.T) {
	tests := []struct {
		s    vbo.State
		want string
	}{
		{vbo.StateUnallocated, "Unallocated"},
		{vbo.StateAllocated, "Allocated"},
		{vbo.StateReleased, "Released"},
		{vbo.StateFailed, "Failed"},
		{vbo.State(9), "Unknown(9)"},
	}
	for _, tt := range tests {
		if got := tt.s.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", int(tt.s), got, tt.want)
		}
	}
}
