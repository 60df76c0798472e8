// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package vbo provides a buffer-backed draw primitive for static geometry.
//
// # Overview
//
// A [Primitive] owns one GPU buffer per vertex attribute plus one index
// buffer. The buffers are created and uploaded lazily on the first call to
// [Primitive.Draw]; every later call only rebinds them and issues the same
// indexed draw. Callers invoke the same operation on every frame regardless
// of whether GPU storage exists yet.
//
// # Quick Start
//
//	drv, err := gl.New()
//	if err != nil {
//	    return err
//	}
//	prog, err := drv.LinkProgram(vertexSrc, fragmentSrc)
//	if err != nil {
//	    return err
//	}
//
//	prim, err := vbo.New(drv, prog, []vbo.AttributeSlot{
//	    vbo.Float32Slot("pos", 0, 3),
//	    vbo.Float32Slot("color", 1, 4),
//	})
//	if err != nil {
//	    return err
//	}
//	defer prim.Release()
//
//	// once per frame
//	err = prim.Draw([]vbo.AttributeData{
//	    {Slot: 0, Data: positions},
//	    {Slot: 1, Data: colors},
//	}, []uint32{0, 1, 2})
//
// # Lifecycle
//
// A primitive starts in [StateUnallocated]. The first successful Draw moves it
// to [StateAllocated]; there is no transition back. [Primitive.Release] deletes
// the buffers when the owning context shuts down and leaves the primitive in
// [StateReleased].
//
// The handle set is all-or-nothing: the driver is asked for every handle in a
// single batch call, and a short or partially invalid result is released and
// reported as [ErrResourceExhausted]. Allocation and upload failures move the
// primitive to [StateFailed]; later draws return the same error and make no
// driver calls.
//
// # Drivers
//
// The graphics API is reached through the [Driver] interface. Implementations
// live in sub-packages:
//   - backend/gl: OpenGL via go-gl
//   - backend/wgpu: gogpu/wgpu HAL (Vulkan, Metal, DX12, GLES, noop)
//   - vbotest: a recording driver for tests and traces
//
// # Threading
//
// A Primitive is not safe for concurrent use. All calls must happen on the
// goroutine that owns the graphics context.
package vbo
