// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package wgpu

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/vbo"
)

// ErrUnsupportedFormat is returned for attribute layouts WebGPU has no
// vertex format for (Fixed, three-component 8/16-bit types, normalized
// 32-bit integers).
var ErrUnsupportedFormat = errors.New("wgpu: unsupported vertex format")

// ProgramDescriptor describes a render pipeline for a vbo.Primitive.
type ProgramDescriptor struct {
	// Label is an optional debug name.
	Label string

	// Source is the WGSL source holding both entry points.
	Source string

	// VertexEntry and FragmentEntry default to "vs_main" and "fs_main".
	VertexEntry   string
	FragmentEntry string

	// Slots are the attribute slots of the primitives drawn with this
	// program, in slot order. Each slot becomes one vertex buffer.
	Slots []vbo.AttributeSlot

	// Format is the color target format. Defaults to BGRA8Unorm.
	Format gputypes.TextureFormat
}

// programInput is one vertex buffer slot of a pipeline.
type programInput struct {
	location uint32
	layout   vbo.AttributeLayout
}

type program struct {
	source     string
	shader     hal.ShaderModule
	pipeLayout hal.PipelineLayout
	pipeline   hal.RenderPipeline
	inputs     []programInput
}

// CreateProgram compiles the WGSL source to SPIR-V with naga and builds a
// triangle-list render pipeline whose vertex buffers follow desc.Slots.
func (d *Driver) CreateProgram(desc ProgramDescriptor) (vbo.Program, error) {
	if d.closed {
		return 0, ErrClosed
	}
	if desc.Source == "" {
		return 0, fmt.Errorf("wgpu: program %q: shader source is empty", desc.Label)
	}
	layouts, inputs, err := vertexLayouts(desc.Slots)
	if err != nil {
		return 0, fmt.Errorf("wgpu: program %q: %w", desc.Label, err)
	}

	spirv, err := d.modules.GetOrCompute(desc.Source, func() ([]uint32, error) {
		b, err := naga.Compile(desc.Source)
		if err != nil {
			return nil, err
		}
		return spirvWords(b), nil
	})
	if err != nil {
		vbo.Logger().Warn("wgpu: shader compile failed", "label", desc.Label, "err", err)
		return 0, fmt.Errorf("wgpu: program %q: compile shader: %w", desc.Label, err)
	}

	p := &program{source: desc.Source, inputs: inputs}
	if err := d.buildProgram(p, desc, spirv, layouts); err != nil {
		d.destroyProgram(p)
		return 0, err
	}

	d.nextProgram++
	d.programs[d.nextProgram] = p
	vbo.Logger().Debug("wgpu: program created", "label", desc.Label, "program", d.nextProgram, "inputs", len(inputs))
	return d.nextProgram, nil
}

func (d *Driver) buildProgram(p *program, desc ProgramDescriptor, spirv []uint32, layouts []gputypes.VertexBufferLayout) error {
	vsEntry, fsEntry := desc.VertexEntry, desc.FragmentEntry
	if vsEntry == "" {
		vsEntry = "vs_main"
	}
	if fsEntry == "" {
		fsEntry = "fs_main"
	}
	format := desc.Format
	if format == gputypes.TextureFormatUndefined {
		format = gputypes.TextureFormatBGRA8Unorm
	}

	shader, err := d.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  desc.Label + "_shader",
		Source: hal.ShaderSource{SPIRV: spirv},
	})
	if err != nil {
		return fmt.Errorf("wgpu: program %q: create shader module: %w", desc.Label, err)
	}
	p.shader = shader

	pipeLayout, err := d.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label: desc.Label + "_pipe_layout",
	})
	if err != nil {
		return fmt.Errorf("wgpu: program %q: create pipeline layout: %w", desc.Label, err)
	}
	p.pipeLayout = pipeLayout

	pipeline, err := d.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  desc.Label + "_pipeline",
		Layout: p.pipeLayout,
		Vertex: hal.VertexState{
			Module:     p.shader,
			EntryPoint: vsEntry,
			Buffers:    layouts,
		},
		Fragment: &hal.FragmentState{
			Module:     p.shader,
			EntryPoint: fsEntry,
			Targets: []gputypes.ColorTargetState{
				{
					Format:    format,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return fmt.Errorf("wgpu: program %q: create render pipeline: %w", desc.Label, err)
	}
	p.pipeline = pipeline
	return nil
}

// DestroyProgram releases a program created by CreateProgram. Unknown
// programs are ignored. The compiled module is dropped from the shader cache
// once no remaining program uses its source.
func (d *Driver) DestroyProgram(id vbo.Program) {
	p, ok := d.programs[id]
	if !ok {
		return
	}
	d.destroyProgram(p)
	delete(d.programs, id)
	if d.current == id {
		d.current = 0
	}
	if p.source != "" && !d.sourceInUse(p.source) {
		d.modules.Delete(p.source)
	}
}

func (d *Driver) sourceInUse(source string) bool {
	for _, p := range d.programs {
		if p.source == source {
			return true
		}
	}
	return false
}

// destroyProgram releases pipeline resources in reverse creation order.
func (d *Driver) destroyProgram(p *program) {
	if d.device == nil {
		return
	}
	if p.pipeline != nil {
		d.device.DestroyRenderPipeline(p.pipeline)
		p.pipeline = nil
	}
	if p.pipeLayout != nil {
		d.device.DestroyPipelineLayout(p.pipeLayout)
		p.pipeLayout = nil
	}
	if p.shader != nil {
		d.device.DestroyShaderModule(p.shader)
		p.shader = nil
	}
}

// vertexLayouts returns one single-attribute buffer layout per slot.
func vertexLayouts(slots []vbo.AttributeSlot) ([]gputypes.VertexBufferLayout, []programInput, error) {
	if len(slots) == 0 {
		return nil, nil, vbo.ErrNoSlots
	}
	layouts := make([]gputypes.VertexBufferLayout, len(slots))
	inputs := make([]programInput, len(slots))
	for i, s := range slots {
		if err := s.Validate(); err != nil {
			return nil, nil, err
		}
		l := s.Layout()
		vf, err := vertexFormat(l)
		if err != nil {
			return nil, nil, err
		}
		layouts[i] = gputypes.VertexBufferLayout{
			ArrayStride: uint64(l.Stride),
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: vf, Offset: 0, ShaderLocation: s.Location},
			},
		}
		inputs[i] = programInput{location: s.Location, layout: l}
	}
	return layouts, inputs, nil
}

// vertexFormat maps an attribute layout to a WebGPU vertex format.
func vertexFormat(l vbo.AttributeLayout) (gputypes.VertexFormat, error) {
	var none gputypes.VertexFormat
	unsupported := fmt.Errorf("%w: %d x %v (normalized=%t)", ErrUnsupportedFormat, l.Components, l.Type, l.Normalized)

	// pick looks up the format for l.Components; absent counts have no
	// WebGPU equivalent.
	pick := func(formats map[int]gputypes.VertexFormat) (gputypes.VertexFormat, error) {
		f, ok := formats[l.Components]
		if !ok {
			return none, unsupported
		}
		return f, nil
	}

	switch {
	case l.Type == vbo.Float32:
		return pick(map[int]gputypes.VertexFormat{
			1: gputypes.VertexFormatFloat32, 2: gputypes.VertexFormatFloat32x2,
			3: gputypes.VertexFormatFloat32x3, 4: gputypes.VertexFormatFloat32x4,
		})
	case l.Type == vbo.Uint32 && !l.Normalized:
		return pick(map[int]gputypes.VertexFormat{
			1: gputypes.VertexFormatUint32, 2: gputypes.VertexFormatUint32x2,
			3: gputypes.VertexFormatUint32x3, 4: gputypes.VertexFormatUint32x4,
		})
	case l.Type == vbo.Int32 && !l.Normalized:
		return pick(map[int]gputypes.VertexFormat{
			1: gputypes.VertexFormatSint32, 2: gputypes.VertexFormatSint32x2,
			3: gputypes.VertexFormatSint32x3, 4: gputypes.VertexFormatSint32x4,
		})
	case l.Type == vbo.Uint8 && l.Normalized:
		return pick(map[int]gputypes.VertexFormat{2: gputypes.VertexFormatUnorm8x2, 4: gputypes.VertexFormatUnorm8x4})
	case l.Type == vbo.Uint8:
		return pick(map[int]gputypes.VertexFormat{2: gputypes.VertexFormatUint8x2, 4: gputypes.VertexFormatUint8x4})
	case l.Type == vbo.Int8 && l.Normalized:
		return pick(map[int]gputypes.VertexFormat{2: gputypes.VertexFormatSnorm8x2, 4: gputypes.VertexFormatSnorm8x4})
	case l.Type == vbo.Int8:
		return pick(map[int]gputypes.VertexFormat{2: gputypes.VertexFormatSint8x2, 4: gputypes.VertexFormatSint8x4})
	case l.Type == vbo.Uint16 && l.Normalized:
		return pick(map[int]gputypes.VertexFormat{2: gputypes.VertexFormatUnorm16x2, 4: gputypes.VertexFormatUnorm16x4})
	case l.Type == vbo.Uint16:
		return pick(map[int]gputypes.VertexFormat{2: gputypes.VertexFormatUint16x2, 4: gputypes.VertexFormatUint16x4})
	case l.Type == vbo.Int16 && l.Normalized:
		return pick(map[int]gputypes.VertexFormat{2: gputypes.VertexFormatSnorm16x2, 4: gputypes.VertexFormatSnorm16x4})
	case l.Type == vbo.Int16:
		return pick(map[int]gputypes.VertexFormat{2: gputypes.VertexFormatSint16x2, 4: gputypes.VertexFormatSint16x4})
	default:
		return none, unsupported
	}
}

// spirvWords converts little-endian SPIR-V bytes to words.
func spirvWords(b []byte) []uint32 {
	words := make([]uint32, len(b)/4)
	for i := range words {
		words[i] = uint32(b[i*4]) |
			uint32(b[i*4+1])<<8 |
			uint32(b[i*4+2])<<16 |
			uint32(b[i*4+3])<<24
	}
	return words
}
