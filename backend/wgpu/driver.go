// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package wgpu

import (
	"errors"
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"

	"github.com/gogpu/vbo"
	"github.com/gogpu/vbo/backend"
	"github.com/gogpu/vbo/internal/cache"
)

// Driver errors.
var (
	// ErrNoRenderPass is returned by DrawElements outside Begin/End.
	ErrNoRenderPass = errors.New("wgpu: no render pass; call Begin first")

	// ErrNoBufferBound is returned by BufferData when the target has no buffer.
	ErrNoBufferBound = errors.New("wgpu: no buffer bound to target")

	// ErrUnknownProgram is returned when drawing with a program this driver
	// did not create.
	ErrUnknownProgram = errors.New("wgpu: unknown program")

	// ErrLayoutMismatch is returned when the attribute arrays set up for a
	// draw do not match the vertex layout the program was built with.
	ErrLayoutMismatch = errors.New("wgpu: vertex layout does not match program")

	// ErrBufferLimit is returned by GenBuffers when the configured limit
	// would be exceeded.
	ErrBufferLimit = errors.New("wgpu: buffer limit reached")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("wgpu: driver closed")
)

// RenderPass is the part of hal.RenderPassEncoder used for drawing.
type RenderPass interface {
	SetPipeline(pipeline hal.RenderPipeline)
	SetVertexBuffer(slot uint32, buffer hal.Buffer, offset uint64)
	SetIndexBuffer(buffer hal.Buffer, format gputypes.IndexFormat, offset uint64)
	DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32)
}

// buffer is a reserved handle. The GPU buffer is created by BufferData
// because WebGPU buffers are sized at creation.
type buffer struct {
	raw  hal.Buffer
	size uint64
}

// Driver maps the vbo buffer object model onto gogpu/wgpu HAL.
//
// Handles are keys into a table of buffers; bind and enable calls only
// update driver-side state, which DrawElements turns into
// SetVertexBuffer/SetIndexBuffer calls on the active render pass. Each
// attribute slot maps to its own vertex buffer slot in the pipeline.
//
// Driver is not safe for concurrent use.
type Driver struct {
	device hal.Device
	queue  hal.Queue

	// release destroys the device when the driver created it.
	release func()
	closed  bool

	limit   int
	next    vbo.Handle
	buffers map[vbo.Handle]*buffer

	nextProgram vbo.Program
	programs    map[vbo.Program]*program
	modules     *cache.LRU[string, []uint32]

	bound   [2]vbo.Handle
	current vbo.Program
	enabled map[uint32]bool
	arrays  map[uint32]attribArray

	pass     RenderPass
	onUpload func(Upload)
}

// Upload describes one BufferData call: a CreateBuffer of Size bytes
// followed by a WriteBuffer into it.
type Upload struct {
	Handle vbo.Handle
	Target vbo.BufferTarget
	Size   uint64
}

// attribArray is the buffer and layout recorded by VertexAttribPointer.
type attribArray struct {
	buffer vbo.Handle
	layout vbo.AttributeLayout
}

var (
	_ vbo.Driver       = (*Driver)(nil)
	_ backend.Headless = (*Driver)(nil)
)

func init() {
	backend.Register("noop", func() (backend.Headless, error) {
		d, err := NewNoop()
		if err != nil {
			return nil, err
		}
		return d, nil
	})
}

// DriverOption configures a Driver.
type DriverOption func(*Driver)

// WithBufferLimit caps the number of live buffer handles. Zero means no
// limit.
func WithBufferLimit(n int) DriverOption {
	return func(d *Driver) {
		d.limit = n
	}
}

// WithShaderCache sets how many compiled WGSL modules are kept for reuse
// by CreateProgram. The default is 16.
func WithShaderCache(n int) DriverOption {
	return func(d *Driver) {
		d.modules = cache.New[string, []uint32](n)
	}
}

// New creates a driver on an existing device and queue. The caller keeps
// ownership of both.
func New(device hal.Device, queue hal.Queue, opts ...DriverOption) *Driver {
	d := &Driver{
		device:   device,
		queue:    queue,
		buffers:  make(map[vbo.Handle]*buffer),
		programs: make(map[vbo.Program]*program),
		enabled:  make(map[uint32]bool),
		arrays:   make(map[uint32]attribArray),
		modules:  cache.New[string, []uint32](16),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// NewFromProvider creates a driver on the device shared by a host
// application. The provider must expose HalDevice() and HalQueue()
// returning hal.Device and hal.Queue.
func NewFromProvider(provider gpucontext.DeviceProvider, opts ...DriverOption) (*Driver, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, fmt.Errorf("wgpu: provider does not expose HAL types")
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("wgpu: provider HalDevice is not hal.Device")
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("wgpu: provider HalQueue is not hal.Queue")
	}
	return New(device, queue, opts...), nil
}

// NewNoop creates a driver on a headless noop device. The device is
// destroyed by Close.
func NewNoop(opts ...DriverOption) (*Driver, error) {
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		return nil, fmt.Errorf("wgpu: create noop instance: %w", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, fmt.Errorf("wgpu: noop instance has no adapters")
	}
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("wgpu: open noop device: %w", err)
	}

	d := New(openDev.Device, openDev.Queue, opts...)
	d.release = func() {
		openDev.Device.Destroy()
		instance.Destroy()
	}
	return d, nil
}

// OnUpload sets a function called after every buffer upload. A nil fn
// removes it.
func (d *Driver) OnUpload(fn func(Upload)) {
	d.onUpload = fn
}

// Name implements backend.Headless.
func (d *Driver) Name() string { return "wgpu" }

// Device returns the HAL device.
func (d *Driver) Device() hal.Device { return d.device }

// Begin directs subsequent draws into pass.
func (d *Driver) Begin(pass RenderPass) {
	d.pass = pass
}

// End detaches the render pass. The caller ends the pass itself.
func (d *Driver) End() {
	d.pass = nil
}

// GenBuffers implements vbo.Driver.
func (d *Driver) GenBuffers(n int) ([]vbo.Handle, error) {
	if d.closed {
		return nil, ErrClosed
	}
	if d.limit > 0 && len(d.buffers)+n > d.limit {
		return nil, fmt.Errorf("%w: %d live, %d requested, limit %d", ErrBufferLimit, len(d.buffers), n, d.limit)
	}
	hs := make([]vbo.Handle, n)
	for i := range hs {
		d.next++
		hs[i] = d.next
		d.buffers[d.next] = &buffer{}
	}
	return hs, nil
}

// DeleteBuffers implements vbo.Driver.
func (d *Driver) DeleteBuffers(handles []vbo.Handle) {
	for _, h := range handles {
		b, ok := d.buffers[h]
		if !ok {
			continue
		}
		if b.raw != nil && d.device != nil {
			d.device.DestroyBuffer(b.raw)
		}
		delete(d.buffers, h)
		for t, bh := range d.bound {
			if bh == h {
				d.bound[t] = 0
			}
		}
	}
}

// BindBuffer implements vbo.Driver.
func (d *Driver) BindBuffer(target vbo.BufferTarget, h vbo.Handle) {
	d.bound[target] = h
}

// BufferData implements vbo.Driver. Any previous storage of the bound buffer
// is destroyed and replaced.
func (d *Driver) BufferData(target vbo.BufferTarget, data []byte, _ vbo.Usage) error {
	if d.closed {
		return ErrClosed
	}
	h := d.bound[target]
	b, ok := d.buffers[h]
	if h == 0 || !ok {
		return fmt.Errorf("%w: %v", ErrNoBufferBound, target)
	}

	usage := gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst
	if target == vbo.ElementArrayBuffer {
		usage = gputypes.BufferUsageIndex | gputypes.BufferUsageCopyDst
	}

	// WriteBuffer requires 4-byte aligned sizes.
	size := max((len(data)+3)&^3, 4)
	padded := data
	if size != len(data) {
		padded = make([]byte, size)
		copy(padded, data)
	}

	raw, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: fmt.Sprintf("vbo_buffer_%d", h),
		Size:  uint64(len(padded)),
		Usage: usage,
	})
	if err != nil {
		return fmt.Errorf("wgpu: create buffer %d: %w", h, err)
	}
	if b.raw != nil {
		d.device.DestroyBuffer(b.raw)
	}
	d.queue.WriteBuffer(raw, 0, padded)
	b.raw = raw
	b.size = uint64(len(padded))

	vbo.Logger().Debug("wgpu: buffer uploaded", "handle", h, "target", target, "size", b.size)
	if d.onUpload != nil {
		d.onUpload(Upload{Handle: h, Target: target, Size: b.size})
	}
	return nil
}

// UseProgram implements vbo.Driver.
func (d *Driver) UseProgram(p vbo.Program) {
	d.current = p
}

// EnableVertexAttribArray implements vbo.Driver.
func (d *Driver) EnableVertexAttribArray(location uint32) {
	d.enabled[location] = true
}

// DisableVertexAttribArray implements vbo.Driver.
func (d *Driver) DisableVertexAttribArray(location uint32) {
	delete(d.enabled, location)
}

// VertexAttribPointer implements vbo.Driver.
func (d *Driver) VertexAttribPointer(location uint32, layout vbo.AttributeLayout) {
	d.arrays[location] = attribArray{buffer: d.bound[vbo.ArrayBuffer], layout: layout}
}

// DrawElements implements vbo.Driver. It records the pipeline, vertex
// buffers, index buffer and an indexed draw into the active render pass.
func (d *Driver) DrawElements(_ vbo.Topology, count int, format vbo.IndexFormat, offset int) error {
	if d.pass == nil {
		return ErrNoRenderPass
	}
	prog, ok := d.programs[d.current]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownProgram, d.current)
	}

	vertexBuffers := make([]hal.Buffer, len(prog.inputs))
	for i, in := range prog.inputs {
		if !d.enabled[in.location] {
			return fmt.Errorf("%w: location %d is not enabled", ErrLayoutMismatch, in.location)
		}
		arr := d.arrays[in.location]
		if arr.layout != in.layout {
			return fmt.Errorf("%w: location %d has %+v, program expects %+v",
				ErrLayoutMismatch, in.location, arr.layout, in.layout)
		}
		b, ok := d.buffers[arr.buffer]
		if !ok || b.raw == nil {
			return fmt.Errorf("%w: location %d has no uploaded buffer", ErrLayoutMismatch, in.location)
		}
		vertexBuffers[i] = b.raw
	}

	ib, ok := d.buffers[d.bound[vbo.ElementArrayBuffer]]
	if !ok || ib.raw == nil {
		return fmt.Errorf("wgpu: no index buffer bound")
	}

	d.pass.SetPipeline(prog.pipeline)
	for i, raw := range vertexBuffers {
		d.pass.SetVertexBuffer(uint32(i), raw, 0)
	}
	d.pass.SetIndexBuffer(ib.raw, indexFormat(format), 0)
	d.pass.DrawIndexed(uint32(count), 1, uint32(offset/format.Size()), 0, 0)
	return nil
}

// ShaderCacheStats reports reuse of compiled shader modules.
func (d *Driver) ShaderCacheStats() cache.Stats { return d.modules.Stats() }

// Live returns the number of reserved buffer handles.
func (d *Driver) Live() int { return len(d.buffers) }

// Close destroys every buffer and program still owned by the driver, and
// the device if NewNoop created it. Close is idempotent.
func (d *Driver) Close() {
	if d.closed {
		return
	}
	for h := range d.buffers {
		d.DeleteBuffers([]vbo.Handle{h})
	}
	for p := range d.programs {
		d.DestroyProgram(p)
	}
	d.modules.Clear()
	d.pass = nil
	d.closed = true
	if d.release != nil {
		d.release()
		d.release = nil
	}
}

func indexFormat(f vbo.IndexFormat) gputypes.IndexFormat {
	if f == vbo.IndexUint32 {
		return gputypes.IndexFormatUint32
	}
	return gputypes.IndexFormatUint16
}
