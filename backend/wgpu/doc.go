// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

// Package wgpu implements vbo.Driver on the gogpu/wgpu HAL.
//
// It uses the gogpu/wgpu Pure Go WebGPU implementation, which supports
// Vulkan, Metal, and DX12 backends depending on the platform, and a noop
// backend for headless runs.
//
// # Buffer Model
//
// WebGPU has no bind points or generic vertex attribute state. The driver
// keeps that state on the CPU side:
//
//   - GenBuffers reserves handles; the hal.Buffer is created by BufferData
//     because WebGPU buffers are sized at creation
//   - BindBuffer, EnableVertexAttribArray and VertexAttribPointer only
//     update driver state
//   - DrawElements checks that state against the program's vertex layout
//     and records SetPipeline, SetVertexBuffer, SetIndexBuffer and
//     DrawIndexed on the active render pass
//
// Every attribute slot maps to its own vertex buffer slot, in slot order.
//
// # Programs
//
// CreateProgram compiles WGSL to SPIR-V with gogpu/naga and builds a
// triangle-list render pipeline. Compiled modules are cached by source.
//
//	d, err := wgpu.NewNoop()
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer d.Close()
//
//	prog, err := d.CreateProgram(wgpu.ProgramDescriptor{
//		Source: wgsl,
//		Slots:  slots,
//	})
//
//	d.Begin(pass)
//	err = prim.Draw(attrs, indices)
//	d.End()
//
// # Device Sharing
//
// NewFromProvider reuses the device of a host application through a
// gpucontext.DeviceProvider that also exposes HalDevice and HalQueue.
//
// Generic constant attributes (vbo.ConstantDriver) are not supported.
package wgpu
