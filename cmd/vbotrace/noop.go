// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package main

import (
	"fmt"
	"io"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/vbo"
	"github.com/gogpu/vbo/backend"
	"github.com/gogpu/vbo/backend/wgpu"
	"github.com/gogpu/vbo/internal/scene"
)

// tracePass prints render pass commands as they are recorded. Buffer uploads
// are printed through wgpu.Driver.OnUpload.
type tracePass struct {
	w io.Writer
}

func (p tracePass) SetPipeline(hal.RenderPipeline) {
	fmt.Fprintln(p.w, "SetPipeline")
}

func (p tracePass) SetVertexBuffer(slot uint32, _ hal.Buffer, offset uint64) {
	fmt.Fprintf(p.w, "SetVertexBuffer(%d, offset=%d)\n", slot, offset)
}

func (p tracePass) SetIndexBuffer(_ hal.Buffer, format gputypes.IndexFormat, offset uint64) {
	fmt.Fprintf(p.w, "SetIndexBuffer(%v, offset=%d)\n", format, offset)
}

func (p tracePass) DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32) {
	fmt.Fprintf(p.w, "DrawIndexed(%d, %d, %d, %d, %d)\n", indexCount, instanceCount, firstIndex, baseVertex, firstInstance)
}

type noopFrames struct {
	sc      *scene.Scene
	driver  *wgpu.Driver
	program vbo.Program
	prim    *vbo.Primitive
}

func init() {
	framers = append(framers, func(sc *scene.Scene, d backend.Headless) (frameDriver, bool, error) {
		drv, ok := d.(*wgpu.Driver)
		if !ok {
			return nil, false, nil
		}
		fd, err := newNoopFrames(sc, drv)
		if err != nil {
			return nil, true, err
		}
		return fd, true, nil
	})
}

func newNoopFrames(sc *scene.Scene, d *wgpu.Driver) (*noopFrames, error) {
	if sc.Shaders.WGSL.Source == "" {
		return nil, fmt.Errorf("scene %q has no WGSL shader", sc.Name)
	}
	slots, err := sc.Slots()
	if err != nil {
		return nil, err
	}
	program, err := d.CreateProgram(wgpu.ProgramDescriptor{
		Label:         sc.Name,
		Source:        sc.Shaders.WGSL.Source,
		VertexEntry:   sc.Shaders.WGSL.VertexEntry,
		FragmentEntry: sc.Shaders.WGSL.FragmentEntry,
		Slots:         slots,
	})
	if err != nil {
		return nil, err
	}
	prim, err := vbo.New(d, program, slots, sc.Options()...)
	if err != nil {
		d.DestroyProgram(program)
		return nil, err
	}
	return &noopFrames{sc: sc, driver: d, program: program, prim: prim}, nil
}

func (f *noopFrames) frame(w io.Writer, _ int) error {
	f.driver.OnUpload(func(u wgpu.Upload) {
		fmt.Fprintf(w, "CreateBuffer(%d, %v, size=%d) + WriteBuffer\n", u.Handle, u.Target, u.Size)
	})
	defer f.driver.OnUpload(nil)
	f.driver.Begin(tracePass{w: w})
	defer f.driver.End()
	return f.prim.Draw(f.sc.AttributeData(), f.sc.Indices)
}

func (f *noopFrames) close(w io.Writer) {
	f.prim.Release()
	fmt.Fprintln(w, "-- release")
	writeStats(w, f.prim)
	fmt.Fprintf(w, "live buffers: %d\n", f.driver.Live())
	f.driver.DestroyProgram(f.program)
	f.driver.Close()
}
